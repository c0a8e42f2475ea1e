package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/hostfuncs"
	"github.com/reglet-dev/reglet-napi/internal/abi"
	"github.com/reglet-dev/reglet-napi/log"
)

// Import module names.
const (
	napiModule = "napi"
	logModule  = "napi_host"
)

// hostImport is one function of the napi import module. Every function takes
// the env as its first i32 parameter and returns an i32 status; fn gets the
// remaining parameters.
type hostImport struct {
	fn     func(c *call, args []uint64) hostabi.Status
	name   string
	params int
}

var napiImports = []hostImport{
	{name: "napi_get_last_error_info", params: 2, fn: getLastErrorInfo},
	{name: "napi_is_exception_pending", params: 2, fn: isExceptionPending},
	{name: "napi_get_undefined", params: 2, fn: storeConst(func(*hostfuncs.Env) any { return hostfuncs.Undefined{} })},
	{name: "napi_get_null", params: 2, fn: storeConst(func(*hostfuncs.Env) any { return hostfuncs.Null{} })},
	{name: "napi_get_global", params: 2, fn: storeConst(func(e *hostfuncs.Env) any { return e.Global() })},
	{name: "napi_get_boolean", params: 3, fn: getBoolean},
	{name: "napi_create_object", params: 2, fn: storeConst(func(*hostfuncs.Env) any { return hostfuncs.NewObject() })},
	{name: "napi_create_int32", params: 3, fn: createInt32},
	{name: "napi_create_string_utf8", params: 4, fn: createStringUTF8},
	{name: "napi_get_value_string_utf8", params: 5, fn: getValueStringUTF8},
	{name: "napi_get_value_int32", params: 3, fn: getValueInt32},
	{name: "napi_get_value_bool", params: 3, fn: getValueBool},
	{name: "napi_typeof", params: 3, fn: typeOf},
	{name: "napi_set_named_property", params: 4, fn: setNamedProperty},
	{name: "napi_get_named_property", params: 4, fn: getNamedProperty},
	{name: "napi_create_function", params: 6, fn: createFunction},
	{name: "napi_get_cb_info", params: 6, fn: getCbInfo},
	{name: "napi_get_new_target", params: 3, fn: getNewTarget},
	{name: "napi_call_function", params: 6, fn: callFunction},
	{name: "napi_throw", params: 2, fn: throw},
	{name: "napi_throw_error", params: 3, fn: throwError},
	{name: "napi_get_and_clear_last_exception", params: 2, fn: getAndClearLastException},
	{name: "napi_open_handle_scope", params: 2, fn: openHandleScope},
	{name: "napi_close_handle_scope", params: 2, fn: closeHandleScope},
}

func (e *Executor) registerHostFunctions(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(napiModule)
	for _, imp := range napiImports {
		params := make([]api.ValueType, imp.params)
		for i := range params {
			params[i] = api.ValueTypeI32
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(e.hostFunc(imp), params, []api.ValueType{api.ValueTypeI32}).
			Export(imp.name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return err
	}

	_, err := e.runtime.NewHostModuleBuilder(logModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.logMessage), []api.ValueType{api.ValueTypeI64}, nil).
		Export("log_message").
		Instantiate(ctx)
	return err
}

// hostFunc adapts imp to wazero. The calling addon travels in ctx; a call
// naming another env fails without touching any environment.
func (e *Executor) hostFunc(imp hostImport) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		a := addonFrom(ctx)
		if a == nil || hostabi.Env(api.DecodeU32(stack[0])) != a.env.ID() {
			stack[0] = uint64(hostabi.StatusInvalidArg)
			return
		}
		args := stack[1:imp.params]
		st := a.env.Invoke(ctx, imp.name, func(ctx context.Context, env *hostfuncs.Env) hostabi.Status {
			return imp.fn(&call{ctx: ctx, mod: mod, addon: a, env: env}, args)
		})
		stack[0] = uint64(st)
	}
}

func (e *Executor) logMessage(ctx context.Context, mod api.Module, stack []uint64) {
	logger := e.logger
	if a := addonFrom(ctx); a != nil {
		logger = a.logger
	}
	ptr, length := abi.UnpackPtrLen(stack[0])
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		logger.WarnContext(ctx, "napi-host: guest log record out of range", "ptr", ptr, "length", length)
		return
	}
	if err := log.Replay(ctx, logger, data); err != nil {
		logger.WarnContext(ctx, "napi-host: malformed guest log record", "error", err)
	}
}

func u32(v uint64) uint32 {
	return api.DecodeU32(v)
}

func getLastErrorInfo(c *call, args []uint64) hostabi.Status {
	ptr, err := c.addon.writeErrorRecord(c.ctx, c.mod, c.env.LastError())
	if err != nil {
		c.addon.logger.ErrorContext(c.ctx, "napi-host: cannot place error record", "error", err)
		return hostabi.StatusGenericFailure
	}
	return c.putU32(u32(args[0]), ptr)
}

func isExceptionPending(c *call, args []uint64) hostabi.Status {
	return c.putBool(u32(args[0]), c.env.IsExceptionPending())
}

func storeConst(v func(*hostfuncs.Env) any) func(*call, []uint64) hostabi.Status {
	return func(c *call, args []uint64) hostabi.Status {
		return c.putValue(u32(args[0]), c.env.Store(v(c.env)))
	}
}

func getBoolean(c *call, args []uint64) hostabi.Status {
	return c.putValue(u32(args[1]), c.env.Store(u32(args[0]) != 0))
}

func createInt32(c *call, args []uint64) hostabi.Status {
	return c.putValue(u32(args[1]), c.env.CreateInt32(api.DecodeI32(args[0])))
}

func createStringUTF8(c *call, args []uint64) hostabi.Status {
	b, st := c.text(u32(args[0]), u32(args[1]))
	if !st.OK() {
		return st
	}
	h, st := c.env.CreateString(b)
	if !st.OK() {
		return st
	}
	return c.putValue(u32(args[2]), h)
}

func getValueStringUTF8(c *call, args []uint64) hostabi.Status {
	s, st := c.env.StringValue(hostabi.Value(u32(args[0])))
	if !st.OK() {
		return st
	}
	buf, size, result := u32(args[1]), u32(args[2]), u32(args[3])
	if buf == 0 {
		return c.putU32(result, uint32(len(s)))
	}
	n := min(uint64(size), uint64(len(s))+1)
	dst := make([]byte, n)
	written := hostfuncs.CopyString(dst, s)
	if n > 0 && !c.mod.Memory().Write(buf, dst[:written+1]) {
		return c.env.Fail(hostabi.StatusInvalidArg, "buffer at %d is out of range", buf)
	}
	if result == 0 {
		return hostabi.StatusOK
	}
	return c.putU32(result, written)
}

func getValueInt32(c *call, args []uint64) hostabi.Status {
	n, st := c.env.Int32Value(hostabi.Value(u32(args[0])))
	if !st.OK() {
		return st
	}
	return c.putU32(u32(args[1]), uint32(n))
}

func getValueBool(c *call, args []uint64) hostabi.Status {
	b, st := c.env.BoolValue(hostabi.Value(u32(args[0])))
	if !st.OK() {
		return st
	}
	return c.putBool(u32(args[1]), b)
}

func typeOf(c *call, args []uint64) hostabi.Status {
	t, st := c.env.TypeOf(hostabi.Value(u32(args[0])))
	if !st.OK() {
		return st
	}
	return c.putU32(u32(args[1]), uint32(t))
}

func setNamedProperty(c *call, args []uint64) hostabi.Status {
	name, st := c.cstring(u32(args[1]))
	if !st.OK() {
		return st
	}
	return c.env.SetNamed(hostabi.Value(u32(args[0])), name, hostabi.Value(u32(args[2])))
}

func getNamedProperty(c *call, args []uint64) hostabi.Status {
	name, st := c.cstring(u32(args[1]))
	if !st.OK() {
		return st
	}
	h, st := c.env.GetNamed(hostabi.Value(u32(args[0])), name)
	if !st.OK() {
		return st
	}
	return c.putValue(u32(args[2]), h)
}

func createFunction(c *call, args []uint64) hostabi.Status {
	name, st := c.text(u32(args[0]), u32(args[1]))
	if !st.OK() {
		return st
	}
	return c.putValue(u32(args[4]), c.env.CreateFunction(string(name), nil, u32(args[3])))
}

func getCbInfo(c *call, args []uint64) hostabi.Status {
	info := hostabi.CallbackInfo(u32(args[0]))
	argcPtr, argvPtr, thisPtr, dataPtr := u32(args[1]), u32(args[2]), u32(args[3]), u32(args[4])

	var capacity uint32
	if argcPtr != 0 && argvPtr != 0 {
		var ok bool
		if capacity, ok = c.mod.Memory().ReadUint32Le(argcPtr); !ok {
			return c.env.Fail(hostabi.StatusInvalidArg, "argc at %d is out of range", argcPtr)
		}
		if int(capacity) > c.addon.maxArgs {
			return c.env.Fail(hostabi.StatusInvalidArg, "argv capacity %d exceeds limit of %d", capacity, c.addon.maxArgs)
		}
	}

	argv, argc, this, data, st := c.env.CbInfo(info, capacity)
	if !st.OK() {
		return st
	}
	for i, h := range argv {
		if st := c.putU32(argvPtr+uint32(i)*4, uint32(h)); !st.OK() {
			return st
		}
	}
	if argcPtr != 0 {
		if st := c.putU32(argcPtr, argc); !st.OK() {
			return st
		}
	}
	if thisPtr != 0 {
		if st := c.putValue(thisPtr, this); !st.OK() {
			return st
		}
	}
	if dataPtr != 0 {
		return c.putU32(dataPtr, data)
	}
	return hostabi.StatusOK
}

func getNewTarget(c *call, args []uint64) hostabi.Status {
	h, st := c.env.NewTarget(hostabi.CallbackInfo(u32(args[0])))
	if !st.OK() {
		return st
	}
	return c.putValue(u32(args[1]), h)
}

func callFunction(c *call, args []uint64) hostabi.Status {
	recv, fn := hostabi.Value(u32(args[0])), hostabi.Value(u32(args[1]))
	argc, argvPtr, result := u32(args[2]), u32(args[3]), u32(args[4])
	if int(argc) > c.addon.maxArgs {
		return c.env.Fail(hostabi.StatusInvalidArg, "%d arguments exceed limit of %d", argc, c.addon.maxArgs)
	}
	argv := make([]hostabi.Value, argc)
	for i := range argv {
		v, ok := c.mod.Memory().ReadUint32Le(argvPtr + uint32(i)*4)
		if !ok {
			return c.env.Fail(hostabi.StatusInvalidArg, "argv at %d is out of range", argvPtr)
		}
		argv[i] = hostabi.Value(v)
	}
	h, st := c.env.CallFunction(c.ctx, recv, fn, argv)
	if !st.OK() {
		return st
	}
	if result == 0 {
		return hostabi.StatusOK
	}
	return c.putValue(result, h)
}

func throw(c *call, args []uint64) hostabi.Status {
	return c.env.Throw(hostabi.Value(u32(args[0])))
}

func throwError(c *call, args []uint64) hostabi.Status {
	var code string
	if ptr := u32(args[0]); ptr != 0 {
		var st hostabi.Status
		if code, st = c.cstring(ptr); !st.OK() {
			return st
		}
	}
	msg, st := c.cstring(u32(args[1]))
	if !st.OK() {
		return st
	}
	return c.env.ThrowError(code, msg)
}

func getAndClearLastException(c *call, args []uint64) hostabi.Status {
	h, st := c.env.GetAndClearException()
	if !st.OK() {
		return st
	}
	return c.putValue(u32(args[0]), h)
}

func openHandleScope(c *call, args []uint64) hostabi.Status {
	return c.putU32(u32(args[0]), uint32(c.env.OpenScope()))
}

func closeHandleScope(c *call, args []uint64) hostabi.Status {
	return c.env.CloseScope(hostabi.HandleScope(u32(args[0])))
}
