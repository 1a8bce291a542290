package frame

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/message"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// RR is a fully decoded resource record: its owner name, type, class, TTL,
// and typed RDATA.
type RR struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  RData
}

// CacheFlush reports whether the cache-flush bit (the top bit of Class) is
// set, per RFC 6762 §10.2. Preserved for display; this engine performs no
// caching and does not act on it.
func (rr RR) CacheFlush() bool {
	return rr.Class&protocol.ClassCacheFlush != 0
}

// Equal reports structural equality between two RRs: matching type and
// element-wise-equal decoded RDATA.
func (rr RR) Equal(other RR) bool {
	if rr.Type != other.Type {
		return false
	}
	if rr.Data == nil || other.Data == nil {
		return rr.Data == other.Data
	}
	return rr.Data.Equal(other.Data)
}

// Frame is a single decoded mDNS datagram: header fields, the three
// sections of resource records, and the metadata the controller attaches
// when it hands the frame to the aggregator.
type Frame struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16

	Questions   []message.Question
	Answers     []RR
	Authorities []RR
	Additionals []RR

	// SourceIP and SourcePort are the datagram's sender, as reported by the
	// socket backend.
	SourceIP   string
	SourcePort int

	// AdvertisedIP is populated from the first A/AAAA record encountered
	// while decoding this frame's RRs, if any. Empty if none was present.
	AdvertisedIP string

	// Timestamp is a steady-clock reading taken when this frame was first
	// decoded.
	Timestamp time.Time

	// Raw holds the original packet bytes. Retained because later
	// processing may need to re-resolve a compression pointer into an
	// earlier region of this same frame.
	Raw []byte
}

// Decode parses a raw mDNS datagram into a Frame. sourceIP/sourcePort are
// the UDP datagram's sender, attached to the result. A decode failure
// invalidates the entire frame: nothing is returned and the caller should
// drop the datagram.
func Decode(raw []byte, sourceIP string, sourcePort int, timestamp time.Time) (*Frame, error) {
	header, err := message.ParseHeader(raw)
	if err != nil {
		return nil, err
	}

	offset := 12

	questions := make([]message.Question, 0, header.QDCount)
	for i := uint16(0); i < header.QDCount; i++ {
		q, newOffset, err := message.ParseQuestion(raw, offset)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
		offset = newOffset
	}

	f := &Frame{
		ID:         header.ID,
		Flags:      header.Flags,
		QDCount:    header.QDCount,
		ANCount:    header.ANCount,
		NSCount:    header.NSCount,
		ARCount:    header.ARCount,
		Questions:  questions,
		SourceIP:   sourceIP,
		SourcePort: sourcePort,
		Timestamp:  timestamp,
		Raw:        raw,
	}

	sections := []struct {
		count uint16
		out   *[]RR
	}{
		{header.ANCount, &f.Answers},
		{header.NSCount, &f.Authorities},
		{header.ARCount, &f.Additionals},
	}

	for _, section := range sections {
		rrs := make([]RR, 0, section.count)
		for i := uint16(0); i < section.count; i++ {
			rr, newOffset, err := parseRR(raw, offset)
			if err != nil {
				return nil, err
			}
			offset = newOffset

			if rr.Type == uint16(protocol.RecordTypeA) {
				if a, ok := rr.Data.(AData); ok && f.AdvertisedIP == "" {
					f.AdvertisedIP = a.Address
				}
			} else if rr.Type == uint16(protocol.RecordTypeAAAA) {
				if a, ok := rr.Data.(AAAAData); ok && f.AdvertisedIP == "" {
					f.AdvertisedIP = a.Address
				}
			}

			rrs = append(rrs, rr)
		}
		*section.out = rrs
	}

	return f, nil
}

// EffectiveSourceIP returns the frame's advertised IP if present, otherwise
// the datagram's source IP. Advertised addresses take priority because the
// sender knows its own addresses better than the multicast route does.
func (f *Frame) EffectiveSourceIP() string {
	if f.AdvertisedIP != "" {
		return f.AdvertisedIP
	}
	return f.SourceIP
}

// parseRR parses one answer/authority/additional section entry starting at
// offset, returning the offset immediately after it. The cursor always
// advances to rdata_end regardless of how far the typed RDATA decoder got,
// so a single record's partial typed decode can never desynchronize the
// rest of the frame (name and RDATA bounds failures still invalidate the
// whole frame: see decodeRData).
func parseRR(msg []byte, offset int) (RR, int, error) {
	name, newOffset, err := message.ParseName(msg, offset)
	if err != nil {
		return RR{}, offset, err
	}

	if newOffset+10 > len(msg) {
		return RR{}, offset, &errors.WireFormatError{
			Operation: "parse RR",
			Offset:    newOffset,
			Message:   "truncated RR: not enough bytes for fixed fields",
		}
	}

	rtype := binary.BigEndian.Uint16(msg[newOffset : newOffset+2])
	class := binary.BigEndian.Uint16(msg[newOffset+2 : newOffset+4])
	ttl := binary.BigEndian.Uint32(msg[newOffset+4 : newOffset+8])
	rdlen := binary.BigEndian.Uint16(msg[newOffset+8 : newOffset+10])

	rdataStart := newOffset + 10
	rdataEnd := rdataStart + int(rdlen)

	if rdataEnd > len(msg) {
		return RR{}, offset, &errors.WireFormatError{
			Operation: "parse RR",
			Offset:    rdataStart,
			Message:   fmt.Sprintf("truncated RDATA: expected %d bytes, only %d available", rdlen, len(msg)-rdataStart),
		}
	}

	data, err := decodeRData(rtype, msg, rdataStart, rdataEnd)
	if err != nil {
		return RR{}, offset, err
	}

	return RR{
		Name:  name,
		Type:  rtype,
		Class: class,
		TTL:   ttl,
		Data:  data,
	}, rdataEnd, nil
}
