// Package errors defines the error taxonomy used across the discovery
// engine: network failures, caller input validation, and wire format
// decode failures. NetworkError, SocketInitError and WireFormatError carry
// operation context and wrap their underlying cause so callers can use
// errors.Is/errors.As; ValidationError names the offending field and has no
// underlying cause.
package errors

import (
	"errors"
	"fmt"
)

// NetworkError represents a failure creating, binding, or using a socket.
type NetworkError struct {
	// Operation describes what network operation failed (e.g. "bind socket", "send query")
	Operation string

	// Err is the underlying error from the network stack
	Err error

	// Details provides additional context for troubleshooting
	Details string
}

func (e *NetworkError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("network error during %s: %v (%s)", e.Operation, e.Err, e.Details)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error, enabling error chain inspection with errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SocketInitError represents a failure of interface enumeration itself,
// as opposed to a single socket failing to bind (which is soft and only
// drops that one interface). Returned when the socket backend cannot
// produce a usable socket set at all.
type SocketInitError struct {
	// Operation describes the enumeration step that failed (e.g. "enumerate interfaces")
	Operation string

	// Err is the underlying error, if any
	Err error

	// Details provides additional context
	Details string
}

func (e *SocketInitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("socket init error during %s: %v (%s)", e.Operation, e.Err, e.Details)
	}
	return fmt.Sprintf("socket init error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error, enabling error chain inspection with errors.Is/As.
func (e *SocketInitError) Unwrap() error {
	return e.Err
}

// ValidationError represents validation failures for caller-supplied
// input: an invalid query name, an empty option argument, an
// out-of-range duration.
type ValidationError struct {
	// Field identifies which input field failed validation (e.g., "name", "timeout")
	Field string

	// Value is the invalid value that was provided (if safe to include)
	Value interface{}

	// Message describes why the validation failed
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// WireFormatError represents errors parsing DNS wire format messages:
// malformed packets, invalid compression pointers, truncated data. A
// received frame that produces a WireFormatError is discarded whole —
// there is no partial result.
type WireFormatError struct {
	// Operation describes what parsing operation failed (e.g., "parse header", "parse name")
	Operation string

	// Offset indicates the byte offset in the message where the error occurred, or -1
	Offset int

	// Message describes why the wire format is invalid
	Message string

	// Err is the underlying sentinel error, when this failure matches one
	// of the named wire-format failure modes below
	Err error
}

func (e *WireFormatError) Error() string {
	if e.Offset >= 0 {
		if e.Err != nil {
			return fmt.Sprintf("wire format error during %s at offset %d: %s (%v)", e.Operation, e.Offset, e.Message, e.Err)
		}
		return fmt.Sprintf("wire format error during %s at offset %d: %s", e.Operation, e.Offset, e.Message)
	}

	if e.Err != nil {
		return fmt.Sprintf("wire format error during %s: %s (%v)", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("wire format error during %s: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error, enabling error chain inspection with errors.Is/As.
func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// Named wire-format failure modes for DNS name decompression. A
// WireFormatError produced while walking a compressed name wraps exactly
// one of these, so callers can errors.Is against the specific cause. The
// two checks outside the walk (a start offset outside the packet and a
// decoded name over the length limit) wrap none.
var (
	// ErrTruncatedPointer means a compression pointer's second byte was
	// missing at the end of the buffer.
	ErrTruncatedPointer = errors.New("truncated compression pointer")

	// ErrBadPointerOffset means a compression pointer's target offset lies
	// outside the packet.
	ErrBadPointerOffset = errors.New("compression pointer targets an invalid offset")

	// ErrLabelOverrun means a label's length byte claims more bytes than
	// remain in the packet.
	ErrLabelOverrun = errors.New("label length overruns the packet")

	// ErrUnterminatedName means the buffer ended before a zero-length
	// terminator label was seen.
	ErrUnterminatedName = errors.New("name has no terminating label")

	// ErrPointerLoop means more than protocol.MaxCompressionJumps pointer
	// hops were followed while decoding a single name.
	ErrPointerLoop = errors.New("too many compression pointer jumps, possible loop")
)
