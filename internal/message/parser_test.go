package message

import (
	goerrors "errors"
	"testing"

	"github.com/hittsya/mdns-tool/internal/errors"
)

func TestParseHeader(t *testing.T) {
	raw := []byte{0x00, 0x2a, 0x84, 0x00, 0x00, 0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00}

	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}

	if h.ID != 0x2a || h.Flags != 0x8400 || h.QDCount != 1 || h.ANCount != 2 || h.NSCount != 0 || h.ARCount != 0 {
		t.Errorf("ParseHeader() = %+v, unexpected fields", h)
	}
}

func TestParseHeader_TooShort(t *testing.T) {
	_, err := ParseHeader([]byte{0x00, 0x00})
	if err == nil {
		t.Fatal("expected error for truncated header")
	}

	var wireErr *errors.WireFormatError
	if !goerrors.As(err, &wireErr) {
		t.Errorf("expected *errors.WireFormatError, got %T", err)
	}
}

func TestParseQuestion(t *testing.T) {
	name, err := EncodeName("_http._tcp.local.")
	if err != nil {
		t.Fatalf("EncodeName() error = %v", err)
	}

	raw := append(append([]byte{}, name...), 0x00, 0x0c, 0x00, 0x01)

	q, newOffset, err := ParseQuestion(raw, 0)
	if err != nil {
		t.Fatalf("ParseQuestion() error = %v", err)
	}

	if q.Name != "_http._tcp.local" {
		t.Errorf("Name = %q, want %q", q.Name, "_http._tcp.local")
	}
	if q.Type != 12 || q.Class != 1 {
		t.Errorf("Type/Class = %d/%d, want 12/1", q.Type, q.Class)
	}
	if newOffset != len(raw) {
		t.Errorf("newOffset = %d, want %d", newOffset, len(raw))
	}
}

func TestParseQuestion_TruncatedFixedFields(t *testing.T) {
	name, err := EncodeName("local.")
	if err != nil {
		t.Fatalf("EncodeName() error = %v", err)
	}

	raw := append(append([]byte{}, name...), 0x00) // only one byte of TYPE/CLASS

	_, _, err = ParseQuestion(raw, 0)
	if err == nil {
		t.Fatal("expected error for truncated question")
	}
}
