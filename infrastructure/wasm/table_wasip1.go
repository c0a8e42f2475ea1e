//go:build wasip1

package wasm

import (
	"unsafe"

	"github.com/reglet-dev/reglet-napi/hostabi"
	"github.com/reglet-dev/reglet-napi/internal/abi"
)

// errorRecordWire is the extended error record as the host lays it out in
// linear memory.
type errorRecordWire struct {
	message         uint32
	reserved        uint32
	engineErrorCode uint32
	errorCode       uint32
}

// Table calls the napi host imports.
type Table struct{}

var _ hostabi.Table = Table{}

// NewTable returns the import-backed table.
func NewTable() hostabi.Table {
	return Table{}
}

func ptr[T any](p *T) unsafe.Pointer {
	return unsafe.Pointer(p)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// GetLastErrorInfo implements hostabi.Table. The host writes the address of
// a record in module memory; it is decoded into a Go record.
func (Table) GetLastErrorInfo(env hostabi.Env, result **hostabi.ExtendedErrorInfo) hostabi.Status {
	addr := new(uint32)
	st := hostabi.Status(napi_get_last_error_info(uint32(env), ptr(addr)))
	if !st.OK() {
		return st
	}
	if *addr == 0 {
		*result = nil
		return st
	}
	wire := (*errorRecordWire)(abi.At(*addr))
	*result = &hostabi.ExtendedErrorInfo{
		ErrorMessage:    (*byte)(abi.At(wire.message)),
		EngineErrorCode: wire.engineErrorCode,
		ErrorCode:       hostabi.Status(wire.errorCode),
	}
	return st
}

// IsExceptionPending implements hostabi.Table.
func (Table) IsExceptionPending(env hostabi.Env, result *bool) hostabi.Status {
	return hostabi.Status(napi_is_exception_pending(uint32(env), ptr(result)))
}

// GetUndefined implements hostabi.Table.
func (Table) GetUndefined(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_undefined(uint32(env), ptr(result)))
}

// GetNull implements hostabi.Table.
func (Table) GetNull(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_null(uint32(env), ptr(result)))
}

// GetGlobal implements hostabi.Table.
func (Table) GetGlobal(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_global(uint32(env), ptr(result)))
}

// GetBoolean implements hostabi.Table.
func (Table) GetBoolean(env hostabi.Env, value bool, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_boolean(uint32(env), b2u(value), ptr(result)))
}

// CreateObject implements hostabi.Table.
func (Table) CreateObject(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_create_object(uint32(env), ptr(result)))
}

// CreateInt32 implements hostabi.Table.
func (Table) CreateInt32(env hostabi.Env, value int32, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_create_int32(uint32(env), value, ptr(result)))
}

// CreateStringUTF8 implements hostabi.Table.
func (Table) CreateStringUTF8(env hostabi.Env, str *byte, length uint32, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_create_string_utf8(uint32(env), ptr(str), length, ptr(result)))
}

// GetValueStringUTF8 implements hostabi.Table.
func (Table) GetValueStringUTF8(env hostabi.Env, value hostabi.Value, buf *byte, bufSize uint32, result *uint32) hostabi.Status {
	return hostabi.Status(napi_get_value_string_utf8(uint32(env), uint32(value), ptr(buf), bufSize, ptr(result)))
}

// GetValueInt32 implements hostabi.Table.
func (Table) GetValueInt32(env hostabi.Env, value hostabi.Value, result *int32) hostabi.Status {
	return hostabi.Status(napi_get_value_int32(uint32(env), uint32(value), ptr(result)))
}

// GetValueBool implements hostabi.Table.
func (Table) GetValueBool(env hostabi.Env, value hostabi.Value, result *bool) hostabi.Status {
	return hostabi.Status(napi_get_value_bool(uint32(env), uint32(value), ptr(result)))
}

// TypeOf implements hostabi.Table.
func (Table) TypeOf(env hostabi.Env, value hostabi.Value, result *hostabi.ValueType) hostabi.Status {
	return hostabi.Status(napi_typeof(uint32(env), uint32(value), ptr(result)))
}

// SetNamedProperty implements hostabi.Table.
func (Table) SetNamedProperty(env hostabi.Env, object hostabi.Value, utf8name *byte, value hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_set_named_property(uint32(env), uint32(object), ptr(utf8name), uint32(value)))
}

// GetNamedProperty implements hostabi.Table.
func (Table) GetNamedProperty(env hostabi.Env, object hostabi.Value, utf8name *byte, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_named_property(uint32(env), uint32(object), ptr(utf8name), ptr(result)))
}

// CreateFunction implements hostabi.Table. A wasm host cannot call cb; it
// calls the module's napi_callback_dispatch export, so no table index is
// passed.
func (Table) CreateFunction(env hostabi.Env, utf8name *byte, length uint32, _ hostabi.Callback, data uint32, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_create_function(uint32(env), ptr(utf8name), length, 0, data, ptr(result)))
}

// GetCbInfo implements hostabi.Table.
func (Table) GetCbInfo(env hostabi.Env, info hostabi.CallbackInfo, argc *uint32, argv *hostabi.Value, thisArg *hostabi.Value, data *uint32) hostabi.Status {
	return hostabi.Status(napi_get_cb_info(uint32(env), uint32(info), ptr(argc), ptr(argv), ptr(thisArg), ptr(data)))
}

// GetNewTarget implements hostabi.Table.
func (Table) GetNewTarget(env hostabi.Env, info hostabi.CallbackInfo, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_new_target(uint32(env), uint32(info), ptr(result)))
}

// CallFunction implements hostabi.Table.
func (Table) CallFunction(env hostabi.Env, recv hostabi.Value, fn hostabi.Value, argc uint32, argv *hostabi.Value, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_call_function(uint32(env), uint32(recv), uint32(fn), argc, ptr(argv), ptr(result)))
}

// Throw implements hostabi.Table.
func (Table) Throw(env hostabi.Env, err hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_throw(uint32(env), uint32(err)))
}

// ThrowError implements hostabi.Table.
func (Table) ThrowError(env hostabi.Env, code *byte, msg *byte) hostabi.Status {
	return hostabi.Status(napi_throw_error(uint32(env), ptr(code), ptr(msg)))
}

// GetAndClearLastException implements hostabi.Table.
func (Table) GetAndClearLastException(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	return hostabi.Status(napi_get_and_clear_last_exception(uint32(env), ptr(result)))
}

// OpenHandleScope implements hostabi.Table.
func (Table) OpenHandleScope(env hostabi.Env, result *hostabi.HandleScope) hostabi.Status {
	return hostabi.Status(napi_open_handle_scope(uint32(env), ptr(result)))
}

// CloseHandleScope implements hostabi.Table.
func (Table) CloseHandleScope(env hostabi.Env, scope hostabi.HandleScope) hostabi.Status {
	return hostabi.Status(napi_close_handle_scope(uint32(env), uint32(scope)))
}
