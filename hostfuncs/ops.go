package hostfuncs

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// The methods below are the semantic half of the napi imports. Adapters
// decode guest memory, call one of them from inside Invoke and write the
// results back.

// CreateString stores the UTF-8 text in b. Invalid sequences become U+FFFD.
func (e *Env) CreateString(b []byte) (hostabi.Value, hostabi.Status) {
	if len(b) > e.maxString {
		return 0, e.Fail(hostabi.StatusInvalidArg, "string of %d bytes exceeds limit of %d", len(b), e.maxString)
	}
	return e.Store(strings.ToValidUTF8(string(b), "\uFFFD")), hostabi.StatusOK
}

// StringValue returns the string behind h.
func (e *Env) StringValue(h hostabi.Value) (string, hostabi.Status) {
	v, st := e.load(h)
	if !st.OK() {
		return "", st
	}
	s, ok := v.(string)
	if !ok {
		return "", e.Fail(hostabi.StatusStringExpected, "expected a string, got %s", TypeOf(v))
	}
	return s, hostabi.StatusOK
}

// CopyString copies as much of s into dst as fits while leaving room for a
// NUL terminator, never splitting a UTF-8 sequence, and returns the number
// of bytes copied excluding the terminator.
func CopyString(dst []byte, s string) uint32 {
	if len(dst) == 0 {
		return 0
	}
	n := min(len(s), len(dst)-1)
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	copy(dst, s[:n])
	dst[n] = 0
	return uint32(n)
}

// CreateInt32 stores n as a number.
func (e *Env) CreateInt32(n int32) hostabi.Value {
	return e.Store(float64(n))
}

// Int32Value converts the number behind h to int32 the way the engine
// does: truncated and wrapped modulo 2^32, with NaN and infinities as 0.
func (e *Env) Int32Value(h hostabi.Value) (int32, hostabi.Status) {
	v, st := e.load(h)
	if !st.OK() {
		return 0, st
	}
	f, ok := v.(float64)
	if !ok {
		return 0, e.Fail(hostabi.StatusNumberExpected, "expected a number, got %s", TypeOf(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, hostabi.StatusOK
	}
	return int32(uint32(int64(math.Mod(math.Trunc(f), 1<<32)))), hostabi.StatusOK
}

// BoolValue returns the boolean behind h.
func (e *Env) BoolValue(h hostabi.Value) (bool, hostabi.Status) {
	v, st := e.load(h)
	if !st.OK() {
		return false, st
	}
	b, ok := v.(bool)
	if !ok {
		return false, e.Fail(hostabi.StatusBooleanExpected, "expected a boolean, got %s", TypeOf(v))
	}
	return b, hostabi.StatusOK
}

// TypeOf classifies the value behind h.
func (e *Env) TypeOf(h hostabi.Value) (hostabi.ValueType, hostabi.Status) {
	v, st := e.load(h)
	if !st.OK() {
		return 0, st
	}
	return TypeOf(v), hostabi.StatusOK
}

func objectOf(v any) (*Object, bool) {
	switch o := v.(type) {
	case *Object:
		return o, true
	case *Function:
		return o.Object, true
	default:
		return nil, false
	}
}

func (e *Env) object(h hostabi.Value) (*Object, hostabi.Status) {
	v, st := e.load(h)
	if !st.OK() {
		return nil, st
	}
	o, ok := objectOf(v)
	if !ok {
		return nil, e.Fail(hostabi.StatusObjectExpected, "expected an object, got %s", TypeOf(v))
	}
	return o, hostabi.StatusOK
}

// SetNamed sets property name of the object behind obj.
func (e *Env) SetNamed(obj hostabi.Value, name string, value hostabi.Value) hostabi.Status {
	o, st := e.object(obj)
	if !st.OK() {
		return st
	}
	v, st := e.load(value)
	if !st.OK() {
		return st
	}
	o.Set(name, v)
	return hostabi.StatusOK
}

// GetNamed reads property name of the object behind obj.
func (e *Env) GetNamed(obj hostabi.Value, name string) (hostabi.Value, hostabi.Status) {
	o, st := e.object(obj)
	if !st.OK() {
		return 0, st
	}
	return e.Store(o.Get(name)), hostabi.StatusOK
}

// CbInfo describes the callback call info. It returns the real argument
// count and capacity handles: the arguments, padded with undefined.
func (e *Env) CbInfo(info hostabi.CallbackInfo, capacity uint32) (args []hostabi.Value, argc uint32, this hostabi.Value, data uint32, st hostabi.Status) {
	rec, ok := e.infos[info]
	if !ok {
		return nil, 0, 0, 0, e.Fail(hostabi.StatusInvalidArg, "unknown callback info %d", info)
	}
	args = make([]hostabi.Value, capacity)
	for i := range args {
		if i < len(rec.args) {
			args[i] = e.Store(rec.args[i])
		} else {
			args[i] = e.Store(Undefined{})
		}
	}
	return args, uint32(len(rec.args)), e.Store(rec.this), rec.data, hostabi.StatusOK
}

// NewTarget returns new.target of the callback call info.
func (e *Env) NewTarget(info hostabi.CallbackInfo) (hostabi.Value, hostabi.Status) {
	rec, ok := e.infos[info]
	if !ok {
		return 0, e.Fail(hostabi.StatusInvalidArg, "unknown callback info %d", info)
	}
	return e.Store(rec.newTarget), hostabi.StatusOK
}

// Throw makes the value behind h the pending exception.
func (e *Env) Throw(h hostabi.Value) hostabi.Status {
	v, st := e.load(h)
	if !st.OK() {
		return st
	}
	e.setPending(v)
	return hostabi.StatusOK
}

// ThrowError makes a new Error the pending exception.
func (e *Env) ThrowError(code, message string) hostabi.Status {
	e.setPending(NewError(code, message))
	return hostabi.StatusOK
}

// GetAndClearException stores and clears the pending exception. It fails
// with GenericFailure when none is pending.
func (e *Env) GetAndClearException() (hostabi.Value, hostabi.Status) {
	v, ok := e.TakeException()
	if !ok {
		return 0, e.Fail(hostabi.StatusGenericFailure, "no exception is pending")
	}
	return e.Store(v), hostabi.StatusOK
}
