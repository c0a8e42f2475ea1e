package hostabi

// Callback is the shape of the single entry point a host calls for every
// registered native function.
type Callback func(env Env, info CallbackInfo) Value

// Table is the host function table. Every method mirrors one host ABI
// symbol (napi_<name>): the environment comes first, results are written
// through the trailing out-pointers and the status is returned.
//
// Pointer arguments that the host ABI allows to be NULL may be nil.
// Implementations must not retain any pointer beyond the call.
type Table interface {
	GetLastErrorInfo(env Env, result **ExtendedErrorInfo) Status
	IsExceptionPending(env Env, result *bool) Status

	GetUndefined(env Env, result *Value) Status
	GetNull(env Env, result *Value) Status
	GetGlobal(env Env, result *Value) Status
	GetBoolean(env Env, value bool, result *Value) Status

	CreateObject(env Env, result *Value) Status
	CreateInt32(env Env, value int32, result *Value) Status
	// CreateStringUTF8 reads length bytes at str; AutoLength reads up to NUL.
	CreateStringUTF8(env Env, str *byte, length uint32, result *Value) Status

	// GetValueStringUTF8 with a nil buf stores the byte length in result.
	// Otherwise it copies at most bufSize-1 bytes, NUL-terminates and stores
	// the number of bytes copied.
	GetValueStringUTF8(env Env, value Value, buf *byte, bufSize uint32, result *uint32) Status
	GetValueInt32(env Env, value Value, result *int32) Status
	GetValueBool(env Env, value Value, result *bool) Status
	TypeOf(env Env, value Value, result *ValueType) Status

	SetNamedProperty(env Env, object Value, utf8name *byte, value Value) Status
	GetNamedProperty(env Env, object Value, utf8name *byte, result *Value) Status

	// CreateFunction binds cb and data into a callable host value. Hosts
	// that cannot hold cb (a wasm host has no table slot for it) dispatch
	// through the module's exported trampoline instead.
	CreateFunction(env Env, utf8name *byte, length uint32, cb Callback, data uint32, result *Value) Status
	// GetCbInfo stores the actual argument count in argc. When argv is non-nil
	// it fills at most the incoming *argc entries.
	GetCbInfo(env Env, info CallbackInfo, argc *uint32, argv *Value, thisArg *Value, data *uint32) Status
	GetNewTarget(env Env, info CallbackInfo, result *Value) Status
	CallFunction(env Env, recv Value, fn Value, argc uint32, argv *Value, result *Value) Status

	Throw(env Env, err Value) Status
	ThrowError(env Env, code *byte, msg *byte) Status
	GetAndClearLastException(env Env, result *Value) Status

	OpenHandleScope(env Env, result *HandleScope) Status
	CloseHandleScope(env Env, scope HandleScope) Status
}
