// Package message implements DNS header and question parsing per RFC 1035.
package message

import (
	"encoding/binary"
	"fmt"

	"github.com/hittsya/mdns-tool/internal/errors"
)

// ParseHeader parses the 12-byte DNS message header per RFC 1035 §4.1.1.
func ParseHeader(msg []byte) (DNSHeader, error) {
	if len(msg) < 12 {
		return DNSHeader{}, &errors.WireFormatError{
			Operation: "parse header",
			Offset:    0,
			Message:   fmt.Sprintf("message too short for header: %d bytes, expected at least 12", len(msg)),
		}
	}

	return DNSHeader{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		Flags:   binary.BigEndian.Uint16(msg[2:4]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// ParseQuestion parses one question section entry per RFC 1035 §4.1.2,
// returning the offset immediately after it.
func ParseQuestion(msg []byte, offset int) (Question, int, error) {
	name, newOffset, err := ParseName(msg, offset)
	if err != nil {
		return Question{}, offset, err
	}

	if newOffset+4 > len(msg) {
		return Question{}, offset, &errors.WireFormatError{
			Operation: "parse question",
			Offset:    newOffset,
			Message:   "truncated question: not enough bytes for QTYPE and QCLASS",
		}
	}

	q := Question{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[newOffset : newOffset+2]),
		Class: binary.BigEndian.Uint16(msg[newOffset+2 : newOffset+4]),
	}

	return q, newOffset + 4, nil
}
