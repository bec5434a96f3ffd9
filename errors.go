package custody

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-faster/errors"
)

// Rejection kinds. Every error returned by a component matches exactly one of
// these through errors.Is
var (
	// ErrUnauthorized indicates the caller lacks the required identity or role
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the referenced call index or fingerprint does not exist
	ErrNotFound = errors.New("not found")

	// ErrStateConflict indicates the operation is invalid in the current state
	ErrStateConflict = errors.New("state conflict")

	// ErrTiming indicates a scheduled time is too early, not reached or stale
	ErrTiming = errors.New("timing violation")

	// ErrInvocation indicates a downstream call failed
	ErrInvocation = errors.New("invocation failed")

	// ErrValidation indicates malformed input
	ErrValidation = errors.New("validation failed")
)

var kinds = []error{
	ErrUnauthorized,
	ErrNotFound,
	ErrStateConflict,
	ErrTiming,
	ErrInvocation,
	ErrValidation,
}

// Error is a distinct rejection cause of a given kind
type Error struct {
	kind error
	msg  string
}

// NewError returns a rejection cause that matches kind
func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Kind returns the rejection kind of this error
func (e *Error) Kind() error {
	return e.kind
}

// KindOf returns the rejection kind err belongs to, or nil if it belongs to none.
// Invocation failures report ErrInvocation regardless of their cause
func KindOf(err error) error {
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return ErrInvocation
	}

	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}

	return nil
}

// InvocationError is the failure of a call made on behalf of a component.
// The downstream cause remains reachable through errors.Is and errors.As
type InvocationError struct {
	Target common.Address
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("call to %s failed: %v", e.Target.Hex(), e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrInvocation
func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocation
}
