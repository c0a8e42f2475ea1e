package host

import (
	"bytes"
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/hostfuncs"
)

// call is one host function invocation: the guest it came from and the
// environment it runs against. Pointers are offsets into the guest's
// linear memory.
type call struct {
	ctx   context.Context
	mod   api.Module
	addon *Addon
	env   *hostfuncs.Env
}

func (c *call) putU32(ptr, v uint32) hostabi.Status {
	if ptr == 0 {
		return c.env.Fail(hostabi.StatusInvalidArg, "result pointer is null")
	}
	if !c.mod.Memory().WriteUint32Le(ptr, v) {
		return c.env.Fail(hostabi.StatusInvalidArg, "result pointer %d is out of range", ptr)
	}
	return hostabi.StatusOK
}

func (c *call) putValue(ptr uint32, h hostabi.Value) hostabi.Status {
	return c.putU32(ptr, uint32(h))
}

// putBool writes a single byte, the size of a bool in the guest.
func (c *call) putBool(ptr uint32, b bool) hostabi.Status {
	if ptr == 0 {
		return c.env.Fail(hostabi.StatusInvalidArg, "result pointer is null")
	}
	var v byte
	if b {
		v = 1
	}
	if !c.mod.Memory().WriteByte(ptr, v) {
		return c.env.Fail(hostabi.StatusInvalidArg, "result pointer %d is out of range", ptr)
	}
	return hostabi.StatusOK
}

// text copies length bytes at ptr, or up to the first NUL for
// hostabi.AutoLength. A null pointer is only valid for an empty string.
func (c *call) text(ptr, length uint32) ([]byte, hostabi.Status) {
	if ptr == 0 {
		if length == 0 || length == hostabi.AutoLength {
			return nil, hostabi.StatusOK
		}
		return nil, c.env.Fail(hostabi.StatusInvalidArg, "string pointer is null")
	}
	if length == hostabi.AutoLength {
		s, st := c.cstring(ptr)
		return []byte(s), st
	}
	b, ok := c.mod.Memory().Read(ptr, length)
	if !ok {
		return nil, c.env.Fail(hostabi.StatusInvalidArg, "string at %d+%d is out of range", ptr, length)
	}
	return bytes.Clone(b), hostabi.StatusOK
}

// cstring reads a NUL-terminated string, at most the remaining memory.
func (c *call) cstring(ptr uint32) (string, hostabi.Status) {
	if ptr == 0 {
		return "", c.env.Fail(hostabi.StatusInvalidArg, "string pointer is null")
	}
	mem := c.mod.Memory()
	size := mem.Size()
	if ptr >= size {
		return "", c.env.Fail(hostabi.StatusInvalidArg, "string at %d is out of range", ptr)
	}
	b, _ := mem.Read(ptr, size-ptr)
	end := bytes.IndexByte(b, 0)
	if end < 0 {
		return "", c.env.Fail(hostabi.StatusInvalidArg, "string at %d is not terminated", ptr)
	}
	return string(b[:end]), hostabi.StatusOK
}
