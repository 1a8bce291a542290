// Package message implements DNS name encoding and decoding, including
// compression pointers, per RFC 1035 §4.1.4.
package message

import (
	"fmt"
	"strings"

	"github.com/hittsya/mdns-tool/internal/errors"
	"github.com/hittsya/mdns-tool/internal/protocol"
)

// ParseName decodes a DNS name starting at offset within msg, following
// compression pointers per RFC 1035 §4.1.4.
//
// msg is always the enclosing packet, never a sub-slice of RDATA — the
// parser must be able to dereference a pointer into any earlier region of
// the same frame, including the header and question section. Passing a
// sub-slice silently breaks pointers that target bytes outside it.
//
// A pointer is a label-length byte whose top two bits are both set
// (0xC0); the remaining 14 bits, combined with the next byte, are an
// offset from the start of msg. The cursor returned to the caller
// (newOffset) reflects the position immediately after the *first*
// pointer encountered, since later jumps don't consume any more bytes of
// the original wire position.
//
// Unlike a strict resolver, this parser does not reject a pointer merely
// for pointing forward; RFC 1035 recommends backward references but
// nothing here can rely on that for loop safety in a hostile packet, so
// the only loop guard is a hard cap on jump count
// (protocol.MaxCompressionJumps). A forward-pointing but otherwise
// well-formed chain that exceeds the cap is reported as ErrPointerLoop.
func ParseName(msg []byte, offset int) (name string, newOffset int, err error) {
	if offset < 0 || offset >= len(msg) {
		return "", offset, &errors.WireFormatError{
			Operation: "parse name",
			Offset:    offset,
			Message:   "offset out of bounds",
		}
	}

	var labels []string
	jumps := 0
	pos := offset
	jumped := false

	for {
		if pos >= len(msg) {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   "unexpected end of message while parsing name",
				Err:       errors.ErrUnterminatedName,
			}
		}

		length := msg[pos]

		if (length & protocol.CompressionMask) == protocol.CompressionMask {
			if pos+1 >= len(msg) {
				return "", offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   "truncated compression pointer",
					Err:       errors.ErrTruncatedPointer,
				}
			}

			pointerOffset := int(msg[pos]&0x3F)<<8 | int(msg[pos+1])

			if pointerOffset < 0 || pointerOffset >= len(msg) {
				return "", offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   fmt.Sprintf("compression pointer targets offset %d outside a %d-byte packet", pointerOffset, len(msg)),
					Err:       errors.ErrBadPointerOffset,
				}
			}

			if !jumped {
				newOffset = pos + 2
				jumped = true
			}

			pos = pointerOffset

			jumps++
			if jumps > protocol.MaxCompressionJumps {
				return "", offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   fmt.Sprintf("exceeded %d compression pointer jumps", protocol.MaxCompressionJumps),
					Err:       errors.ErrPointerLoop,
				}
			}

			continue
		}

		if length == 0 {
			if !jumped {
				newOffset = pos + 1
			}
			break
		}

		if length > protocol.MaxLabelLength {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   fmt.Sprintf("label length %d exceeds maximum %d bytes", length, protocol.MaxLabelLength),
				Err:       errors.ErrLabelOverrun,
			}
		}

		if pos+1+int(length) > len(msg) {
			return "", offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   fmt.Sprintf("label overruns packet: wants %d bytes, only %d available", length, len(msg)-pos-1),
				Err:       errors.ErrLabelOverrun,
			}
		}

		labels = append(labels, string(msg[pos+1:pos+1+int(length)]))
		pos += 1 + int(length)
	}

	name = strings.Join(labels, ".")

	if len(name) > protocol.MaxNameLength {
		return "", offset, &errors.WireFormatError{
			Operation: "parse name",
			Offset:    offset,
			Message:   fmt.Sprintf("name length %d exceeds maximum %d bytes", len(name), protocol.MaxNameLength),
		}
	}

	return name, newOffset, nil
}

// EncodeName encodes a dotted DNS name into label-prefixed wire format
// per RFC 1035 §3.1. It never emits compression; that is only meaningful
// when building a multi-name packet and the response side of that
// concern is out of scope here.
func EncodeName(name string) ([]byte, error) {
	if name == "" || name == "." {
		return []byte{0}, nil
	}

	labels := strings.Split(name, ".")
	if len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}

	encoded := make([]byte, 0, 256)
	for _, label := range labels {
		if len(label) == 0 {
			return nil, &errors.ValidationError{
				Field:   "name",
				Value:   name,
				Message: "empty label (consecutive dots)",
			}
		}

		if len(label) > protocol.MaxLabelLength {
			return nil, &errors.ValidationError{
				Field:   "name",
				Value:   name,
				Message: fmt.Sprintf("label %q exceeds maximum length %d bytes", label, protocol.MaxLabelLength),
			}
		}

		for i, ch := range label {
			valid := (ch >= 'a' && ch <= 'z') ||
				(ch >= 'A' && ch <= 'Z') ||
				(ch >= '0' && ch <= '9') ||
				ch == '-' ||
				ch == '_' // service names use a leading underscore, e.g. "_http._tcp"

			if !valid {
				return nil, &errors.ValidationError{
					Field:   "name",
					Value:   name,
					Message: fmt.Sprintf("invalid character %q in label %q (position %d)", ch, label, i),
				}
			}

			if ch == '-' && (i == 0 || i == len(label)-1) {
				return nil, &errors.ValidationError{
					Field:   "name",
					Value:   name,
					Message: fmt.Sprintf("hyphen cannot be first or last character in label %q", label),
				}
			}
		}

		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, []byte(label)...)
	}

	encoded = append(encoded, 0)

	if len(encoded) > protocol.MaxNameLength {
		return nil, &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("encoded name length %d exceeds maximum %d bytes", len(encoded), protocol.MaxNameLength),
		}
	}

	return encoded, nil
}
