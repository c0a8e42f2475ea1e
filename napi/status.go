package napi

import (
	"errors"
	"unsafe"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// check turns the status of a host call made through e into an error.
// A successful status costs nothing. A failed one costs exactly one more
// host call, GetLastErrorInfo, whose message is copied before anything else
// can touch the environment.
func (e Env) check(op string, status hostabi.Status) error {
	if status.OK() {
		return nil
	}
	return e.lastError(op, status)
}

// translate pairs a status with the value the call produced.
func translate[T any](e Env, op string, status hostabi.Status, value T) (T, error) {
	if err := e.check(op, status); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func (e Env) lastError(op string, observed hostabi.Status) *Error {
	var info *hostabi.ExtendedErrorInfo
	if st := e.m.table.GetLastErrorInfo(e.raw, &info); !st.OK() {
		fatal("get_last_error_info", st)
	}
	if info == nil {
		fatal("get_last_error_info", errors.New("host returned no error record"))
	}

	// The record is only valid until the next call on this environment.
	msg := goString(info.ErrorMessage)
	code := info.ErrorCode
	if code.OK() {
		code = observed
	}
	if msg == "" {
		msg = code.Message()
	}
	return &Error{Op: op, Status: code, Message: msg}
}

// goString copies a NUL-terminated host string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	//nolint:gosec // G103: host strings are NUL-terminated byte runs
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// cString returns a NUL-terminated copy of s and its length in bytes.
// The length is taken from s itself, not from the terminator, so interior
// NUL bytes and multi-byte sequences survive.
func cString(s string) (buf []byte, length uint32) {
	length = uint32(len(s))
	buf = make([]byte, len(s)+1)
	copy(buf, s)
	return buf, length
}

// cName is cString for property and function names, which the host reads
// up to the terminator and so may not contain NUL.
func cName(op, name string) ([]byte, error) {
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return nil, localError(op, hostabi.StatusNameExpected, "name contains a NUL byte")
		}
	}
	buf, _ := cString(name)
	return buf, nil
}
