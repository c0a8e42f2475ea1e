package napi

import "github.com/reglet-dev/reglet-napi/hostabi"

// Value references a host-managed value. It owns nothing: the host keeps
// the value alive while the handle scope the Value came from is open.
// Operations given a Value from a closed scope fail with ErrValueOutOfScope
// without reaching the host.
type Value struct {
	raw   hostabi.Value
	scope uint64
}

// Raw returns the host handle.
func (v Value) Raw() hostabi.Value {
	return v.raw
}

// IsZero reports whether v is the null handle, which is what a zero Value
// holds.
func (v Value) IsZero() bool {
	return v.raw == 0
}
