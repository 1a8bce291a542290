// Package protocol defines mDNS/DNS-SD wire constants shared by the codec,
// the socket backend, and the discovery controller.
//
// PRIMARY TECHNICAL AUTHORITY: RFC 1035 (DNS), RFC 6762 (mDNS), RFC 6763 (DNS-SD)
package protocol

import (
	"net"
	"time"
)

// Network constants per RFC 6762 §5.
const (
	// Port is the mDNS port number (5353) for both IPv4 and IPv6.
	Port = 5353

	// MulticastAddrIPv4 is the mDNS IPv4 multicast group address.
	MulticastAddrIPv4 = "224.0.0.251"

	// MulticastAddrIPv6 is the mDNS IPv6 multicast group address.
	MulticastAddrIPv6 = "ff02::fb"
)

// MulticastGroupIPv4 returns the mDNS IPv4 multicast group address and port.
func MulticastGroupIPv4() *net.UDPAddr {
	return &net.UDPAddr{
		IP:   net.ParseIP(MulticastAddrIPv4), // nosemgrep: beacon-hardcoded-multicast-address
		Port: Port,
	}
}

// MulticastGroupIPv6 returns the mDNS IPv6 multicast group address and port.
func MulticastGroupIPv6() *net.UDPAddr {
	return &net.UDPAddr{
		IP:   net.ParseIP(MulticastAddrIPv6), // nosemgrep: beacon-hardcoded-multicast-address
		Port: Port,
	}
}

// RecordType represents a DNS resource record type per RFC 1035 §3.2.2 and
// RFC 3596 (AAAA) / RFC 4034 (NSEC).
type RecordType uint16

// Supported DNS record types.
const (
	RecordTypeA    RecordType = 1
	RecordTypePTR  RecordType = 12
	RecordTypeTXT  RecordType = 16
	RecordTypeAAAA RecordType = 28
	RecordTypeSRV  RecordType = 33
	RecordTypeNSEC RecordType = 47
	RecordTypeANY  RecordType = 255
)

// String returns the human-readable name for a RecordType.
func (rt RecordType) String() string {
	switch rt {
	case RecordTypeA:
		return "A"
	case RecordTypePTR:
		return "PTR"
	case RecordTypeTXT:
		return "TXT"
	case RecordTypeAAAA:
		return "AAAA"
	case RecordTypeSRV:
		return "SRV"
	case RecordTypeNSEC:
		return "NSEC"
	case RecordTypeANY:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// DNSClass represents a DNS class per RFC 1035 §3.2.4.
type DNSClass uint16

// ClassIN is the Internet (IN) class, the only class this engine uses.
const ClassIN DNSClass = 1

// DNS header flag bits per RFC 1035 §4.1.1 and RFC 6762 §18.
const (
	// FlagQR is the Query/Response bit (bit 15). Zero in queries, one in responses.
	FlagQR uint16 = 1 << 15

	// FlagAA is the Authoritative Answer bit (bit 10). MUST be zero in queries per RFC 6762 §18.4.
	FlagAA uint16 = 1 << 10

	// FlagTC is the Truncated bit (bit 9).
	FlagTC uint16 = 1 << 9

	// FlagRD is the Recursion Desired bit (bit 8). MUST be zero per RFC 6762 §18.6.
	FlagRD uint16 = 1 << 8
)

// ClassUnicastResponse is the top bit of a question's QCLASS field (the "QU"
// bit), requesting a unicast rather than multicast response per RFC 6762 §5.4.
const ClassUnicastResponse uint16 = 1 << 15

// ClassCacheFlush is the top bit of an RR's CLASS field per RFC 6762 §10.2.
const ClassCacheFlush uint16 = 1 << 15

// OpcodeQuery is the standard query OPCODE (0); RFC 6762 §18.3 requires it on
// every mDNS message.
const OpcodeQuery uint16 = 0

// RCodeNoError is the no-error RCODE (0). RFC 6762 §18.11 requires responses
// with any other RCODE to be silently ignored.
const RCodeNoError uint16 = 0

// DNS name constraints per RFC 1035 §3.1.
const (
	// MaxLabelLength is the maximum length of a single DNS label.
	MaxLabelLength = 63

	// MaxNameLength is the 255-byte DNS name limit. ParseName applies it to
	// the decoded dotted name; EncodeName and ValidateName apply it to the
	// wire-format length.
	MaxNameLength = 255

	// MaxCompressionJumps bounds the number of pointer hops ParseName will
	// follow before declaring a loop. Ten is the threshold this engine uses;
	// it is a deliberately generous ceiling for well-formed packets, not a
	// structural limit (a legitimate packet rarely chains more than two or
	// three pointers).
	MaxCompressionJumps = 10
)

// CompressionMask identifies a compression pointer: the top two bits of a
// label-length byte being set to 1 per RFC 1035 §4.1.4.
const CompressionMask byte = 0xC0

// TTL values recommended by RFC 6762 §10.
const (
	// TTLService is the recommended TTL for service records (SRV, TXT).
	TTLService = 120

	// TTLHostname is the recommended TTL for hostname records (A, AAAA).
	TTLHostname = 4500
)

// Discovery Controller timing constants.
const (
	// QueryInterval is the period between periodic follow-up queries.
	QueryInterval = 2500 * time.Millisecond

	// ReceiveBudget bounds how long receive_once waits for a ready socket
	// before returning control to the worker loop.
	ReceiveBudget = 100 * time.Millisecond

	// WorkerSleep is the cooperative pacing floor applied once per worker
	// iteration, distinct from the receive budget above.
	WorkerSleep = 10 * time.Millisecond
)

// MaxSockets bounds the size of a browse session's socket set.
const MaxSockets = 32

// MaxQuestionCardEntries bounds the length of the aggregator's intercepted
// question list; the oldest entry is evicted once this is exceeded.
const MaxQuestionCardEntries = 15

// ServicesMetaQueryName is the canonical DNS-SD meta-query name used to
// enumerate service types present on the network per RFC 6763 §4.1, and
// the default (sole) member of a fresh follow-up query set.
const ServicesMetaQueryName = "_services._dns-sd._udp.local."
