// Package xerrors classifies the error kinds the core engine surfaces to its
// callers. It intentionally stays small: a Kind plus a wrapped cause, in the
// style of gRPC's codes.Code/status.Status pairing, without pulling in a live
// gRPC dependency just to tag an error.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Unknown is the zero value; it should never be returned deliberately.
	Unknown Kind = iota

	// InvalidArgument covers programmer-visible misuse: sending to self,
	// allocating a zero-length sharing range, looking up a nonexistent id.
	InvalidArgument

	// ProtocolViolation covers OT output shapes or batch orderings that
	// don't match what the protocol requires.
	ProtocolViolation

	// TransportFailure wraps an unrecoverable error from a transport
	// handler.
	TransportFailure

	// NotReady covers access to state that is gated on a completion
	// condition that hasn't fired yet.
	NotReady
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case ProtocolViolation:
		return "protocol_violation"
	case TransportFailure:
		return "transport_failure"
	case NotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a Kind-tagged error for operation op, optionally wrapping
// cause (which may be nil).
func New(kind Kind, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
