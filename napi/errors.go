package napi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// ErrValueOutOfScope is returned when a Value is used after the handle
// scope that produced it has closed.
var ErrValueOutOfScope = errors.New("napi: value used outside its handle scope")

// Error is a host status failure together with the diagnostic the host
// reported for it.
type Error struct {
	Op      string
	Message string
	Status  hostabi.Status
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("napi: %s (%s)", e.Message, e.Status.String())
	}
	return fmt.Sprintf("napi: %s: %s (%s)", e.Op, e.Message, e.Status.String())
}

// Unwrap exposes the status so callers can use errors.Is(err, hostabi.StatusX).
func (e *Error) Unwrap() error {
	return e.Status
}

// Code is the error code attached to host errors raised from an *Error.
func (e *Error) Code() string {
	return "ERR_NAPI_" + strings.ToUpper(e.Status.String())
}

// Exception carries a host value that a Callback wants thrown as-is.
type Exception struct {
	Value Value
}

func (e *Exception) Error() string {
	return "napi: exception thrown by callback"
}

// ThrowValue returns an error that makes the trampoline throw v unchanged.
// A zero v throws undefined. If a host call inside the callback already left
// an exception pending, that exception is kept and v is dropped.
func ThrowValue(v Value) error {
	return &Exception{Value: v}
}

// InvariantError reports a failure of a primitive host call the binding
// cannot continue without. It is only ever raised with panic.
type InvariantError struct {
	Err error
	Op  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("napi: invariant violated in %s: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func fatal(op string, err error) {
	panic(&InvariantError{Op: op, Err: err})
}

func must[T any](op string, v T, err error) T {
	if err != nil {
		fatal(op, err)
	}
	return v
}

// localError builds an *Error for argument problems caught before any host
// call is made.
func localError(op string, status hostabi.Status, msg string) *Error {
	if msg == "" {
		msg = status.Message()
	}
	return &Error{Op: op, Status: status, Message: msg}
}
