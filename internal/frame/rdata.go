// Package frame holds the Response Model: the typed representation of a
// decoded mDNS datagram (a Frame) and the tagged sum of RDATA variants that
// answer/authority/additional records carry. It is the output type of the
// wire parser and the input type of the aggregator.
package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/message"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// RData is a decoded resource record payload. Exactly one of the
// concrete types below implements it for any given record. Two RData
// values are structurally equal iff their concrete type matches and
// their decoded fields compare equal (TXT and NSEC element-wise, in
// order).
type RData interface {
	// Equal reports whether other is the same concrete RData type with
	// equal contents.
	Equal(other RData) bool

	// recordType returns the DNS TYPE code this variant was decoded from.
	recordType() uint16
}

// PTRData is the payload of a PTR record: the name this pointer resolves to.
type PTRData struct {
	Target string
}

func (d PTRData) Equal(other RData) bool {
	o, ok := other.(PTRData)
	return ok && d.Target == o.Target
}

func (d PTRData) recordType() uint16 { return uint16(protocol.RecordTypePTR) }

// TXTData is the payload of a TXT record: an ordered list of key=value (or
// bare) strings, each at most 255 bytes. An empty list is a valid TXT RR.
type TXTData struct {
	Entries []string
}

func (d TXTData) Equal(other RData) bool {
	o, ok := other.(TXTData)
	if !ok || len(d.Entries) != len(o.Entries) {
		return false
	}
	for i := range d.Entries {
		if d.Entries[i] != o.Entries[i] {
			return false
		}
	}
	return true
}

func (d TXTData) recordType() uint16 { return uint16(protocol.RecordTypeTXT) }

// SRVData is the payload of an SRV record per RFC 2782.
type SRVData struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (d SRVData) Equal(other RData) bool {
	o, ok := other.(SRVData)
	return ok && d == o
}

func (d SRVData) recordType() uint16 { return uint16(protocol.RecordTypeSRV) }

// AData is the payload of an A record: a dotted-quad IPv4 address string.
type AData struct {
	Address string
}

func (d AData) Equal(other RData) bool {
	o, ok := other.(AData)
	return ok && d.Address == o.Address
}

func (d AData) recordType() uint16 { return uint16(protocol.RecordTypeA) }

// AAAAData is the payload of an AAAA record: a canonical IPv6 address string.
type AAAAData struct {
	Address string
}

func (d AAAAData) Equal(other RData) bool {
	o, ok := other.(AAAAData)
	return ok && d.Address == o.Address
}

func (d AAAAData) recordType() uint16 { return uint16(protocol.RecordTypeAAAA) }

// NSECData is the payload of an NSEC record per RFC 4034 §4, restricted to
// the fields this engine decodes: the next-domain name and the set of
// record-type codes the type bitmap claims are present.
type NSECData struct {
	NextDomain string
	Types      []uint16
}

func (d NSECData) Equal(other RData) bool {
	o, ok := other.(NSECData)
	if !ok || d.NextDomain != o.NextDomain || len(d.Types) != len(o.Types) {
		return false
	}
	for i := range d.Types {
		if d.Types[i] != o.Types[i] {
			return false
		}
	}
	return true
}

func (d NSECData) recordType() uint16 { return uint16(protocol.RecordTypeNSEC) }

// UnknownData preserves the raw RDATA bytes of a record type this engine
// has no typed decoder for, verbatim, for display purposes.
type UnknownData struct {
	Type uint16
	Raw  []byte
}

func (d UnknownData) Equal(other RData) bool {
	o, ok := other.(UnknownData)
	return ok && d.Type == o.Type && bytes.Equal(d.Raw, o.Raw)
}

func (d UnknownData) recordType() uint16 { return d.Type }

// decodeRData decodes the RDATA of a single resource record into its typed
// variant. msg is always the whole enclosing packet (never a sub-slice of
// RDATA) so that PTR/SRV/NSEC target names can dereference compression
// pointers anywhere in the frame, per message.ParseName's contract.
// start/end bound the RDATA region within msg.
func decodeRData(recordType uint16, msg []byte, start, end int) (RData, error) {
	rdata := msg[start:end]

	switch recordType {
	case uint16(protocol.RecordTypePTR):
		target, _, err := message.ParseName(msg, start)
		if err != nil {
			return nil, err
		}
		return PTRData{Target: target}, nil

	case uint16(protocol.RecordTypeTXT):
		entries := make([]string, 0)
		offset := 0
		for offset < len(rdata) {
			length := int(rdata[offset])
			offset++
			if offset+length > len(rdata) {
				return nil, &errors.WireFormatError{
					Operation: "parse TXT rdata",
					Offset:    start + offset,
					Message:   fmt.Sprintf("truncated TXT string: wants %d bytes, only %d available", length, len(rdata)-offset),
				}
			}
			entries = append(entries, string(rdata[offset:offset+length]))
			offset += length
		}
		return TXTData{Entries: entries}, nil

	case uint16(protocol.RecordTypeSRV):
		if len(rdata) < 6 {
			// A short SRV doesn't invalidate the frame. The RR is retained
			// with its raw bytes and parsing continues at rdata_end.
			raw := make([]byte, len(rdata))
			copy(raw, rdata)
			return UnknownData{Type: recordType, Raw: raw}, nil
		}
		priority := binary.BigEndian.Uint16(rdata[0:2])
		weight := binary.BigEndian.Uint16(rdata[2:4])
		port := binary.BigEndian.Uint16(rdata[4:6])
		target, _, err := message.ParseName(msg, start+6)
		if err != nil {
			return nil, err
		}
		return SRVData{Priority: priority, Weight: weight, Port: port, Target: target}, nil

	case uint16(protocol.RecordTypeA):
		if len(rdata) != 4 {
			return nil, &errors.WireFormatError{
				Operation: "parse A rdata",
				Offset:    start,
				Message:   fmt.Sprintf("invalid A record length: %d bytes, expected 4", len(rdata)),
			}
		}
		return AData{Address: net.IPv4(rdata[0], rdata[1], rdata[2], rdata[3]).String()}, nil

	case uint16(protocol.RecordTypeAAAA):
		if len(rdata) != 16 {
			return nil, &errors.WireFormatError{
				Operation: "parse AAAA rdata",
				Offset:    start,
				Message:   fmt.Sprintf("invalid AAAA record length: %d bytes, expected 16", len(rdata)),
			}
		}
		ip := net.IP(append([]byte(nil), rdata...))
		return AAAAData{Address: ip.String()}, nil

	case uint16(protocol.RecordTypeNSEC):
		return decodeNSEC(msg, start, end)

	default:
		raw := make([]byte, len(rdata))
		copy(raw, rdata)
		return UnknownData{Type: recordType, Raw: raw}, nil
	}
}

// decodeNSEC decodes an NSEC record per RFC 4034 §4.1: a next-domain name
// followed by one or more (window, length, bitmap) blocks, each bit of the
// bitmap implying a present record type code.
func decodeNSEC(msg []byte, start, end int) (RData, error) {
	nextDomain, nameEnd, err := message.ParseName(msg, start)
	if err != nil {
		return nil, err
	}

	var types []uint16
	pos := nameEnd
	for pos < end {
		if pos+2 > end {
			return nil, &errors.WireFormatError{
				Operation: "parse NSEC rdata",
				Offset:    pos,
				Message:   "truncated type-bitmap block header",
			}
		}
		window := int(msg[pos])
		blockLen := int(msg[pos+1])
		pos += 2

		if pos+blockLen > end {
			return nil, &errors.WireFormatError{
				Operation: "parse NSEC rdata",
				Offset:    pos,
				Message:   fmt.Sprintf("type-bitmap block overruns rdata: wants %d bytes", blockLen),
			}
		}

		for i := 0; i < blockLen; i++ {
			b := msg[pos+i]
			for bit := 0; bit < 8; bit++ {
				if b&(0x80>>uint(bit)) != 0 {
					types = append(types, uint16(window*256+i*8+bit))
				}
			}
		}
		pos += blockLen
	}

	return NSECData{NextDomain: nextDomain, Types: types}, nil
}
