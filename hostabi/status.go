// Package hostabi describes the raw host ABI that native functions are bound
// against: opaque handles, status codes, the extended error record and the
// function table every binding call goes through.
//
// The table follows the wasm32 data model. Handles and sizes are 32-bit and
// results are written through out-pointers while the status is returned.
// Nothing in this package checks anything; it is the contract the napi
// package and host implementations agree on.
package hostabi

import "fmt"

// Status is the code returned by every host ABI call.
type Status uint32

// Status codes, in host ABI order.
const (
	StatusOK Status = iota
	StatusInvalidArg
	StatusObjectExpected
	StatusStringExpected
	StatusNameExpected
	StatusFunctionExpected
	StatusNumberExpected
	StatusBooleanExpected
	StatusArrayExpected
	StatusGenericFailure
	StatusPendingException
	StatusCancelled
	StatusEscapeCalledTwice
	StatusHandleScopeMismatch
	StatusCallbackScopeMismatch
	StatusQueueFull
	StatusClosing
	StatusBigintExpected
	StatusDateExpected
	StatusArraybufferExpected
	StatusDetachableArraybufferExpected
	StatusWouldDeadlock
)

var statusNames = [...]string{
	StatusOK:                            "ok",
	StatusInvalidArg:                    "invalid_arg",
	StatusObjectExpected:                "object_expected",
	StatusStringExpected:                "string_expected",
	StatusNameExpected:                  "name_expected",
	StatusFunctionExpected:              "function_expected",
	StatusNumberExpected:                "number_expected",
	StatusBooleanExpected:               "boolean_expected",
	StatusArrayExpected:                 "array_expected",
	StatusGenericFailure:                "generic_failure",
	StatusPendingException:              "pending_exception",
	StatusCancelled:                     "cancelled",
	StatusEscapeCalledTwice:             "escape_called_twice",
	StatusHandleScopeMismatch:           "handle_scope_mismatch",
	StatusCallbackScopeMismatch:         "callback_scope_mismatch",
	StatusQueueFull:                     "queue_full",
	StatusClosing:                       "closing",
	StatusBigintExpected:                "bigint_expected",
	StatusDateExpected:                  "date_expected",
	StatusArraybufferExpected:           "arraybuffer_expected",
	StatusDetachableArraybufferExpected: "detachable_arraybuffer_expected",
	StatusWouldDeadlock:                 "would_deadlock",
}

// statusMessages are the diagnostics a host reports through the extended
// error record for each status.
var statusMessages = [...]string{
	StatusOK:                            "",
	StatusInvalidArg:                    "Invalid argument",
	StatusObjectExpected:                "An object was expected",
	StatusStringExpected:                "A string was expected",
	StatusNameExpected:                  "A string or symbol was expected",
	StatusFunctionExpected:              "A function was expected",
	StatusNumberExpected:                "A number was expected",
	StatusBooleanExpected:               "A boolean was expected",
	StatusArrayExpected:                 "An array was expected",
	StatusGenericFailure:                "Unknown failure",
	StatusPendingException:              "An exception is pending",
	StatusCancelled:                     "The async work item was cancelled",
	StatusEscapeCalledTwice:             "napi_escape_handle already called on scope",
	StatusHandleScopeMismatch:           "Invalid handle scope usage",
	StatusCallbackScopeMismatch:         "Invalid callback scope usage",
	StatusQueueFull:                     "Thread-safe function queue is full",
	StatusClosing:                       "Thread-safe function handle is closing",
	StatusBigintExpected:                "A bigint was expected",
	StatusDateExpected:                  "A date was expected",
	StatusArraybufferExpected:           "An arraybuffer was expected",
	StatusDetachableArraybufferExpected: "A detachable arraybuffer was expected",
	StatusWouldDeadlock:                 "Main thread would deadlock",
}

// OK reports whether s is the success sentinel.
func (s Status) OK() bool {
	return s == StatusOK
}

// String returns the short name of the status, e.g. "string_expected".
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint32(s))
}

// Message returns the standard host diagnostic for the status.
func (s Status) Message() string {
	if int(s) < len(statusMessages) {
		return statusMessages[s]
	}
	return "Unknown status"
}

// Error implements error so a Status can be matched with errors.Is.
func (s Status) Error() string {
	return "napi status " + s.String()
}
