package protocol

import (
	goerrors "errors"
	"strings"
	"testing"

	"github.com/hittsya/mdns-tool/internal/errors"
)

func TestValidateName_ValidNames(t *testing.T) {
	tests := []string{
		"printer.local",
		"printer.local.",
		"_http._tcp.local",
		"_services._dns-sd._udp.local.",
		"my-device.local",
		"host123.local",
		"localhost",
		"a.b.c.d.e",
		strings.Repeat("a", 63) + ".local", // label at the 63-byte limit
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if err := ValidateName(name); err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", name, err)
			}
		})
	}
}

func TestValidateName_InvalidNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"consecutive dots", "bad..name"},
		{"leading hyphen", "-bad.local"},
		{"trailing hyphen", "bad-.local"},
		{"space", "bad name.local"},
		{"label too long", strings.Repeat("a", 64) + ".local"},
		{"wire length too long", strings.Repeat("abcdefgh.", 32) + "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if err == nil {
				t.Fatalf("ValidateName(%q) = nil, want error", tt.input)
			}

			var vErr *errors.ValidationError
			if !goerrors.As(err, &vErr) {
				t.Errorf("ValidateName(%q) error = %T, want *ValidationError", tt.input, err)
			}
		})
	}
}

func TestValidateName_TrailingDotIsCanonicalForm(t *testing.T) {
	// The dotted and dotless spellings of one name must agree: both go
	// through the same wire encoding.
	if err := ValidateName("printer.local"); err != nil {
		t.Errorf("dotless form rejected: %v", err)
	}
	if err := ValidateName("printer.local."); err != nil {
		t.Errorf("dotted form rejected: %v", err)
	}
}
