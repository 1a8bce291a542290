package frame

import (
	"testing"
	"time"

	"github.com/hittsya/mdns-tool/internal/message"
)

func encName(t *testing.T, name string) []byte {
	t.Helper()
	b, err := message.EncodeName(name)
	if err != nil {
		t.Fatalf("EncodeName(%q) error = %v", name, err)
	}
	return b
}

func TestDecode_HeaderOnly(t *testing.T) {
	raw := make([]byte, 12)
	f, err := Decode(raw, "192.0.2.1", 5353, time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.ID != 0 || f.Flags != 0 {
		t.Errorf("unexpected header fields: %+v", f)
	}
	if len(f.Questions) != 0 || len(f.Answers) != 0 || len(f.Authorities) != 0 || len(f.Additionals) != 0 {
		t.Error("expected all sections empty")
	}
}

func TestDecode_SinglePTRWithCompression(t *testing.T) {
	owner := encName(t, "_http._tcp.local.")

	// Header: QR=1, ancount=1.
	header := []byte{0x00, 0x00, 0x84, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}

	ownerOffset := len(header)
	raw := append(append([]byte{}, header...), owner...)

	fixedOffset := len(raw)
	// TYPE=PTR(12), CLASS=IN(1), TTL=120, RDLENGTH placeholder.
	raw = append(raw, 0x00, 0x0c, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x00)
	rdlenOffset := fixedOffset + 8

	rdataStart := len(raw)
	// "printer" label, then a pointer back to the owner name ("_http._tcp.local").
	raw = append(raw, 7, 'p', 'r', 'i', 'n', 't', 'e', 'r')
	ptr := 0xC000 | uint16(ownerOffset)
	raw = append(raw, byte(ptr>>8), byte(ptr&0xFF))

	rdlen := len(raw) - rdataStart
	raw[rdlenOffset] = byte(rdlen >> 8)
	raw[rdlenOffset+1] = byte(rdlen & 0xFF)

	f, err := Decode(raw, "192.0.2.1", 5353, time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(f.Answers) != 1 {
		t.Fatalf("len(Answers) = %d, want 1", len(f.Answers))
	}

	ptrData, ok := f.Answers[0].Data.(PTRData)
	if !ok {
		t.Fatalf("Data = %T, want PTRData", f.Answers[0].Data)
	}
	if want := "printer._http._tcp.local"; ptrData.Target != want {
		t.Errorf("Target = %q, want %q", ptrData.Target, want)
	}
}

func TestDecode_AdvertisedIPFromA(t *testing.T) {
	header := []byte{0x00, 0x00, 0x84, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	owner := encName(t, "host.local.")
	raw := append(append([]byte{}, header...), owner...)
	raw = append(raw, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x04)
	raw = append(raw, 192, 0, 2, 200)

	f, err := Decode(raw, "192.0.2.10", 5353, time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.AdvertisedIP != "192.0.2.200" {
		t.Errorf("AdvertisedIP = %q, want 192.0.2.200", f.AdvertisedIP)
	}
	if got := f.EffectiveSourceIP(); got != "192.0.2.200" {
		t.Errorf("EffectiveSourceIP() = %q, want advertised IP", got)
	}
}

func TestDecode_EffectiveSourceIPFallsBackWithoutAdvertisedIP(t *testing.T) {
	raw := make([]byte, 12)
	f, err := Decode(raw, "192.0.2.10", 5353, time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := f.EffectiveSourceIP(); got != "192.0.2.10" {
		t.Errorf("EffectiveSourceIP() = %q, want datagram source", got)
	}
}

func TestDecode_ShortSRVPreservedAsUnknownRawAndParsingContinues(t *testing.T) {
	header := []byte{0x00, 0x00, 0x84, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00}
	owner := encName(t, "svc.local.")
	raw := append(append([]byte{}, header...), owner...)
	// SRV RR with RDLENGTH=3 (too short for priority/weight/port).
	raw = append(raw, 0x00, 0x21, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x03)
	raw = append(raw, 0x00, 0x01, 0x02)

	// A second RR follows immediately; parsing must resynchronize at rdata_end.
	owner2 := encName(t, "svc.local.")
	raw = append(raw, owner2...)
	raw = append(raw, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x04)
	raw = append(raw, 10, 0, 0, 1)

	f, err := Decode(raw, "192.0.2.1", 5353, time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(f.Answers) != 2 {
		t.Fatalf("len(Answers) = %d, want 2", len(f.Answers))
	}

	unk, ok := f.Answers[0].Data.(UnknownData)
	if !ok {
		t.Fatalf("Answers[0].Data = %T, want UnknownData", f.Answers[0].Data)
	}
	if len(unk.Raw) != 3 {
		t.Errorf("len(Raw) = %d, want 3", len(unk.Raw))
	}

	a, ok := f.Answers[1].Data.(AData)
	if !ok || a.Address != "10.0.0.1" {
		t.Errorf("Answers[1].Data = %+v, want AData{10.0.0.1}", f.Answers[1].Data)
	}
}

func TestDecode_EmptyTXTAccepted(t *testing.T) {
	header := []byte{0x00, 0x00, 0x84, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	owner := encName(t, "svc.local.")
	raw := append(append([]byte{}, header...), owner...)
	// TXT RR with RDLENGTH=0.
	raw = append(raw, 0x00, 0x10, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x00)

	f, err := Decode(raw, "192.0.2.1", 5353, time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	txt, ok := f.Answers[0].Data.(TXTData)
	if !ok {
		t.Fatalf("Data = %T, want TXTData", f.Answers[0].Data)
	}
	if len(txt.Entries) != 0 {
		t.Errorf("Entries = %v, want empty", txt.Entries)
	}
}

func TestDecode_PointerLoopRejected(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x84, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	loopOffset := len(raw)
	ptr := uint16(0xC000) | uint16(loopOffset)
	raw = append(raw, byte(ptr>>8), byte(ptr&0xFF))
	raw = append(raw, 0x00, 0x0c, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x00)

	_, err := Decode(raw, "192.0.2.1", 5353, time.Now())
	if err == nil {
		t.Fatal("expected pointer loop error")
	}
}

func TestRR_Equal(t *testing.T) {
	a := RR{Type: 1, Data: AData{Address: "10.0.0.1"}}
	b := RR{Type: 1, Data: AData{Address: "10.0.0.1"}}
	c := RR{Type: 1, Data: AData{Address: "10.0.0.2"}}

	if !a.Equal(b) {
		t.Error("expected equal RRs")
	}
	if a.Equal(c) {
		t.Error("expected unequal RRs")
	}
}

func TestTXTData_Equal_ElementWiseOrdered(t *testing.T) {
	a := TXTData{Entries: []string{"k=v", "a=b"}}
	b := TXTData{Entries: []string{"k=v", "a=b"}}
	c := TXTData{Entries: []string{"a=b", "k=v"}}

	if !a.Equal(b) {
		t.Error("expected equal TXT entries")
	}
	if a.Equal(c) {
		t.Error("expected order to matter for TXT equality")
	}
}
