// Package message implements DNS message wire format primitives per RFC 1035,
// extended with the mDNS conventions of RFC 6762: the header, the question
// section, and the label-compression name codec. Typed resource-record
// decoding (the tagged RDATA sum and the Frame it assembles into) lives in
// the sibling internal/frame package, which builds on ParseName and
// ParseQuestion directly so it can resolve compression pointers against the
// whole enclosing packet rather than a re-based RDATA slice.
package message

// DNSHeader represents the DNS message header per RFC 1035 §4.1.1.
//
// The header is always 12 bytes and contains metadata about the message.
//
// Wire format (big-endian):
//
//	                                1  1  1  1  1  1
//	  0  1  2  3  4  5  6  7  8  9  0  1  2  3  4  5
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                      ID                       |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA|   Z    |   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    QDCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ANCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    NSCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ARCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
type DNSHeader struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// IsQuery returns true if this is a query message (QR bit = 0).
func (h *DNSHeader) IsQuery() bool {
	return (h.Flags & 0x8000) == 0
}

// IsResponse returns true if this is a response message (QR bit = 1).
func (h *DNSHeader) IsResponse() bool {
	return (h.Flags & 0x8000) != 0
}

// GetRCODE extracts the response code (bits 0-3) from Flags.
func (h *DNSHeader) GetRCODE() uint8 {
	return uint8(h.Flags & 0x000F) //nolint:gosec // bounds checked: mask limits to 0-15
}

// GetOPCODE extracts the operation code (bits 11-14) from Flags.
func (h *DNSHeader) GetOPCODE() uint8 {
	return uint8((h.Flags >> 11) & 0x0F) //nolint:gosec // bounds checked: mask limits to 0-15
}

// Question represents a DNS question section entry per RFC 1035 §4.1.2.
type Question struct {
	// Name is the dotted, trailing-dot-stripped name being queried.
	Name string

	// Type is the query type (16 bits).
	Type uint16

	// Class is the query class (16 bits); the top bit (0x8000) is the
	// RFC 6762 §5.4 "QU" unicast-response-requested bit.
	Class uint16
}

// Unicast reports whether the QU bit is set on this question, requesting a
// unicast rather than multicast reply per RFC 6762 §5.4.
func (q Question) Unicast() bool {
	return q.Class&0x8000 != 0
}
