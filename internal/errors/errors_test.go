package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNetworkError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *NetworkError
		wantAll []string
	}{
		{
			name: "with details",
			err: &NetworkError{
				Operation: "bind socket",
				Err:       fmt.Errorf("permission denied"),
				Details:   "requires root or CAP_NET_RAW",
			},
			wantAll: []string{"network error", "bind socket", "permission denied", "requires root or CAP_NET_RAW"},
		},
		{
			name: "without details",
			err: &NetworkError{
				Operation: "send query",
				Err:       fmt.Errorf("network unreachable"),
			},
			wantAll: []string{"network error", "send query", "network unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.wantAll {
				if !strings.Contains(got, want) {
					t.Errorf("NetworkError.Error() missing substring:\ngot:  %q\nwant: %q", got, want)
				}
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := &NetworkError{Operation: "connect", Err: underlying}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is(NetworkError, underlying) = false, want true")
	}
}

func TestSocketInitError_Error(t *testing.T) {
	err := &SocketInitError{
		Operation: "enumerate interfaces",
		Err:       fmt.Errorf("operation not permitted"),
		Details:   "failed to list network interfaces",
	}

	got := err.Error()
	for _, want := range []string{"socket init error", "enumerate interfaces", "operation not permitted", "failed to list"} {
		if !strings.Contains(got, want) {
			t.Errorf("SocketInitError.Error() missing substring %q in %q", want, got)
		}
	}
}

func TestSocketInitError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("no such device")
	err := &SocketInitError{Operation: "enumerate interfaces", Err: underlying}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is(SocketInitError, underlying) = false, want true")
	}

	var target *SocketInitError
	if !errors.As(error(err), &target) {
		t.Error("errors.As failed to match *SocketInitError")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantAll []string
	}{
		{
			name: "with value",
			err: &ValidationError{
				Field:   "name",
				Value:   "bad..name",
				Message: "empty label (consecutive dots)",
			},
			wantAll: []string{"validation error", "name", "empty label", "bad..name"},
		},
		{
			name: "without value",
			err: &ValidationError{
				Field:   "queryInterval",
				Message: "interval must be greater than 0",
			},
			wantAll: []string{"validation error", "queryInterval", "greater than 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.wantAll {
				if !strings.Contains(got, want) {
					t.Errorf("ValidationError.Error() missing substring:\ngot:  %q\nwant: %q", got, want)
				}
			}
		})
	}
}

func TestWireFormatError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *WireFormatError
		wantAll []string
	}{
		{
			name: "with offset",
			err: &WireFormatError{
				Operation: "parse header",
				Offset:    4,
				Message:   "message too short",
			},
			wantAll: []string{"wire format error", "parse header", "offset 4", "too short"},
		},
		{
			name: "without offset",
			err: &WireFormatError{
				Operation: "parse name",
				Offset:    -1,
				Message:   "name has no terminator",
			},
			wantAll: []string{"wire format error", "parse name", "no terminator"},
		},
		{
			name: "with sentinel",
			err: &WireFormatError{
				Operation: "parse name",
				Offset:    20,
				Message:   "exceeded 10 compression pointer jumps",
				Err:       ErrPointerLoop,
			},
			wantAll: []string{"wire format error", "offset 20", "pointer jumps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.wantAll {
				if !strings.Contains(got, want) {
					t.Errorf("WireFormatError.Error() missing substring:\ngot:  %q\nwant: %q", got, want)
				}
			}
		})
	}
}

// The named decompression failure modes must be reachable through
// errors.Is on a wrapping WireFormatError, so callers can distinguish a
// pointer loop from a truncated packet without string matching.
func TestWireFormatError_SentinelUnwrapping(t *testing.T) {
	sentinels := []error{
		ErrTruncatedPointer,
		ErrBadPointerOffset,
		ErrLabelOverrun,
		ErrUnterminatedName,
		ErrPointerLoop,
	}

	for _, sentinel := range sentinels {
		wrapped := &WireFormatError{
			Operation: "parse name",
			Offset:    7,
			Message:   "decode failure",
			Err:       sentinel,
		}

		if !errors.Is(wrapped, sentinel) {
			t.Errorf("errors.Is(wrapped, %v) = false, want true", sentinel)
		}

		// A wrapped sentinel must not match any of the other four.
		for _, other := range sentinels {
			if other == sentinel {
				continue
			}
			if errors.Is(wrapped, other) {
				t.Errorf("errors.Is matched the wrong sentinel: wrapped %v, matched %v", sentinel, other)
			}
		}
	}
}

func TestWireFormatError_NoSentinel(t *testing.T) {
	err := &WireFormatError{
		Operation: "parse RR",
		Offset:    30,
		Message:   "truncated RDATA",
	}

	if errors.Is(err, ErrPointerLoop) {
		t.Error("sentinel matched an error with no underlying cause")
	}
	if err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
}

func TestErrorTypes_AsError(t *testing.T) {
	var err error

	err = &NetworkError{Operation: "x"}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Error("errors.As failed for *NetworkError")
	}

	err = &ValidationError{Field: "x"}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Error("errors.As failed for *ValidationError")
	}

	err = &WireFormatError{Operation: "x", Offset: -1}
	var wireErr *WireFormatError
	if !errors.As(err, &wireErr) {
		t.Error("errors.As failed for *WireFormatError")
	}
}
