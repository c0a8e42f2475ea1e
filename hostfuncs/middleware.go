package hostfuncs

import (
	"context"
	"log/slog"
	"slices"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// Handler implements one host ABI call against env.
type Handler func(ctx context.Context, env *Env) hostabi.Status

// Middleware is a function that wraps a Handler to add cross-cutting
// behavior. Middleware executes in FIFO order (first registered wraps
// first, onion model).
//
// Example usage:
//
//	tracing := func(next Handler) Handler {
//	    return func(ctx context.Context, env *Env) hostabi.Status {
//	        slog.Debug("calling", "func", FunctionNameFrom(ctx))
//	        return next(ctx, env)
//	    }
//	}
type Middleware func(next Handler) Handler

// BypassCalls are the calls that still run while an exception is pending.
var BypassCalls = []string{
	"napi_get_last_error_info",
	"napi_is_exception_pending",
	"napi_get_and_clear_last_exception",
	"napi_close_handle_scope",
}

func chain(mws []Middleware) Middleware {
	return func(h Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

// LastErrorMiddleware records the status and message of every call except
// napi_get_last_error_info, which reads them.
func LastErrorMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, env *Env) hostabi.Status {
			if FunctionNameFrom(ctx) == "napi_get_last_error_info" {
				return next(ctx, env)
			}
			env.detail = ""
			st := next(ctx, env)
			var msg string
			if !st.OK() {
				msg = env.detail
				if msg == "" {
					msg = st.Message()
				}
			}
			env.last = LastError{Status: st, Message: msg}
			return st
		}
	}
}

// PanicRecoveryMiddleware returns a middleware that catches panics and
// converts them to StatusGenericFailure instead of crashing the host. A
// *TrapError keeps unwinding.
func PanicRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, env *Env) (st hostabi.Status) {
			defer func() {
				if r := recover(); r != nil {
					if trap, ok := r.(*TrapError); ok {
						panic(trap)
					}
					st = env.Fail(hostabi.StatusGenericFailure, "%s: %v", FunctionNameFrom(ctx), PanicError(r))
				}
			}()
			return next(ctx, env)
		}
	}
}

// ExceptionGuardMiddleware fails every call not named in bypass with
// StatusPendingException while an exception is pending.
func ExceptionGuardMiddleware(bypass ...string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, env *Env) hostabi.Status {
			if env.IsExceptionPending() && !slices.Contains(bypass, FunctionNameFrom(ctx)) {
				return hostabi.StatusPendingException
			}
			return next(ctx, env)
		}
	}
}

// LoggingMiddleware logs every host ABI call at debug level and failures
// at warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, env *Env) hostabi.Status {
			attrs := []any{"function", FunctionNameFrom(ctx)}
			if hc, ok := ctx.(HostContext); ok && hc.Env() != nil {
				attrs = append(attrs, "env", uint32(hc.Env().ID()))
			}
			st := next(ctx, env)
			switch st {
			case hostabi.StatusOK:
				logger.DebugContext(ctx, "host function completed", attrs...)
			case hostabi.StatusPendingException:
				logger.DebugContext(ctx, "host function left an exception pending", attrs...)
			default:
				logger.WarnContext(ctx, "host function failed", append(attrs, "status", st.String(), "detail", env.detail)...)
			}
			return st
		}
	}
}
