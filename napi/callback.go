package napi

import (
	"fmt"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// Callback is the single shape of a native function. Returning a nil error
// hands the Value to the host as the call's result; a zero Value means
// undefined. Returning an error throws: an *Exception throws its Value
// unchanged, anything else becomes a host Error carrying err's message.
type Callback func(info *CallbackInfo) (Value, error)

// CallbackInfo describes one invocation of a native function. It is valid
// only until the Callback returns.
type CallbackInfo struct {
	env       Env
	name      string
	this      Value
	undefined Value
	args      []Value
	raw       hostabi.CallbackInfo
}

// newCallbackInfo asks the host about the call twice: once for the argument
// count, receiver and data key, then again with a buffer of exactly that
// many slots. A host that changes its answer between the two is broken.
func newCallbackInfo(env Env, raw hostabi.CallbackInfo) (*CallbackInfo, uint32) {
	const op = "get_cb_info"
	t := env.table()

	var (
		argc uint32
		this hostabi.Value
		data uint32
	)
	if err := env.check(op, t.GetCbInfo(env.raw, raw, &argc, nil, &this, &data)); err != nil {
		fatal(op, err)
	}

	rawArgs := make([]hostabi.Value, argc)
	var first *hostabi.Value
	if argc > 0 {
		first = &rawArgs[0]
	}
	n := argc
	if err := env.check(op, t.GetCbInfo(env.raw, raw, &n, first, nil, nil)); err != nil {
		fatal(op, err)
	}
	if n != argc {
		fatal(op, fmt.Errorf("argument count changed from %d to %d", argc, n))
	}

	args := make([]Value, argc)
	for i, a := range rawArgs {
		args[i] = env.wrap(a)
	}
	return &CallbackInfo{
		env:       env,
		raw:       raw,
		this:      env.wrap(this),
		args:      args,
		undefined: env.Undefined(),
	}, data
}

// Env returns the environment of the call.
func (c *CallbackInfo) Env() Env {
	return c.env
}

// Name returns the name the function was registered under.
func (c *CallbackInfo) Name() string {
	return c.name
}

// Len returns the number of arguments the host passed.
func (c *CallbackInfo) Len() int {
	return len(c.args)
}

// This returns the receiver of the call.
func (c *CallbackInfo) This() Value {
	return c.this
}

// Arg returns argument i, or undefined when i is out of range.
func (c *CallbackInfo) Arg(i int) Value {
	if i < 0 || i >= len(c.args) {
		return c.undefined
	}
	return c.args[i]
}

// Args returns a copy of the arguments.
func (c *CallbackInfo) Args() []Value {
	out := make([]Value, len(c.args))
	copy(out, c.args)
	return out
}

// NewTarget returns new.target for constructor calls and undefined
// otherwise.
func (c *CallbackInfo) NewTarget() Value {
	var raw hostabi.Value
	st := c.env.table().GetNewTarget(c.env.raw, c.raw, &raw)
	return c.env.wrap(must("get_new_target", raw, c.env.check("get_new_target", st)))
}
