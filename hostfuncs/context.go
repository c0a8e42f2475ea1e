package hostfuncs

import (
	"context"
)

// HostContext wraps a standard context.Context with host function-specific helpers.
// It provides access to the invoked function name and the environment it runs against.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string

	// Env returns the environment of the call.
	Env() *Env
}

// hostContext is the concrete implementation of HostContext.
type hostContext struct {
	context.Context
	env      *Env
	funcName string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, funcName string, env *Env) HostContext {
	return &hostContext{
		Context:  ctx,
		funcName: funcName,
		env:      env,
	}
}

// FunctionName returns the name of the host function being invoked.
func (c *hostContext) FunctionName() string {
	return c.funcName
}

// Env returns the environment of the call.
func (c *hostContext) Env() *Env {
	return c.env
}

// FunctionNameFrom returns the host function name carried by ctx, or
// "unknown" when ctx is not a HostContext.
func FunctionNameFrom(ctx context.Context) string {
	if hc, ok := ctx.(HostContext); ok {
		return hc.FunctionName()
	}
	return "unknown"
}
