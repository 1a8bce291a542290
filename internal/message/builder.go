// Package message implements mDNS query construction per RFC 6762 §18.
package message

import (
	"encoding/binary"

	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// canonicalServicesQuery is the baked-in PTR/IN query for
// "_services._dns-sd._udp.local." with the QU bit set, sent whenever the
// follow-up query set is empty.
var canonicalServicesQuery []byte

func init() {
	q, err := BuildQuery([]string{protocol.ServicesMetaQueryName})
	if err != nil {
		panic("message: failed to build canonical services query: " + err.Error())
	}
	// Set the QU bit (unicast-response-requested) on the lone question's
	// class field, the last two bytes of the message.
	binary.BigEndian.PutUint16(q[len(q)-2:], uint16(protocol.ClassIN)|protocol.ClassUnicastResponse)
	canonicalServicesQuery = q
}

// BuildQuery constructs an mDNS query message per RFC 6762 §18 asking about
// every name in names, each as a PTR/IN question. The header's transaction
// ID is always zero per RFC 6762 §18.1. If names is empty, the canonical
// "_services._dns-sd._udp.local." meta-query is returned instead, with the
// QU bit set on its class field.
func BuildQuery(names []string) ([]byte, error) {
	if len(names) == 0 {
		if canonicalServicesQuery != nil {
			out := make([]byte, len(canonicalServicesQuery))
			copy(out, canonicalServicesQuery)
			return out, nil
		}
		names = []string{protocol.ServicesMetaQueryName}
	}

	if len(names) > 0xFFFF {
		return nil, &errors.ValidationError{
			Field:   "names",
			Value:   len(names),
			Message: "too many names for a single query's QDCOUNT",
		}
	}

	questions := make([][]byte, 0, len(names))
	for _, name := range names {
		encodedName, err := EncodeName(name)
		if err != nil {
			return nil, err
		}
		questions = append(questions, buildQuestionSection(encodedName, uint16(protocol.RecordTypePTR)))
	}

	header := buildQueryHeader(uint16(len(names)))

	total := len(header)
	for _, q := range questions {
		total += len(q)
	}

	out := make([]byte, 0, total)
	out = append(out, header...)
	for _, q := range questions {
		out = append(out, q...)
	}

	return out, nil
}

// buildQueryHeader constructs the 12-byte header for an mDNS query per
// RFC 6762 §18: ID=0, all flag bits zero, QDCOUNT=n, every other count zero.
func buildQueryHeader(qdcount uint16) []byte {
	header := make([]byte, 12)
	binary.BigEndian.PutUint16(header[4:6], qdcount)
	return header
}

// buildQuestionSection constructs one question section entry: the already
// label-encoded name, the record type, and CLASS=IN.
func buildQuestionSection(encodedName []byte, recordType uint16) []byte {
	question := make([]byte, 0, len(encodedName)+4)
	question = append(question, encodedName...)

	typeBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(typeBytes, recordType)
	question = append(question, typeBytes...)

	classBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(classBytes, uint16(protocol.ClassIN))
	question = append(question, classBytes...)

	return question
}
