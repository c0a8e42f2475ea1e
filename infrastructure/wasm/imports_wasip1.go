//go:build wasip1

package wasm

import "unsafe"

// Host functions of the "napi" import module. Handles, sizes and statuses
// are i32; pointers are wasm32 linear memory offsets.

//go:wasmimport napi napi_get_last_error_info
func napi_get_last_error_info(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_is_exception_pending
func napi_is_exception_pending(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_undefined
func napi_get_undefined(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_null
func napi_get_null(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_global
func napi_get_global(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_boolean
func napi_get_boolean(env uint32, value uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_create_object
func napi_create_object(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_create_int32
func napi_create_int32(env uint32, value int32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_create_string_utf8
func napi_create_string_utf8(env uint32, str unsafe.Pointer, length uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_value_string_utf8
func napi_get_value_string_utf8(env uint32, value uint32, buf unsafe.Pointer, bufSize uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_value_int32
func napi_get_value_int32(env uint32, value uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_value_bool
func napi_get_value_bool(env uint32, value uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_typeof
func napi_typeof(env uint32, value uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_set_named_property
func napi_set_named_property(env uint32, object uint32, name unsafe.Pointer, value uint32) uint32

//go:wasmimport napi napi_get_named_property
func napi_get_named_property(env uint32, object uint32, name unsafe.Pointer, result unsafe.Pointer) uint32

//go:wasmimport napi napi_create_function
func napi_create_function(env uint32, name unsafe.Pointer, length uint32, cb uint32, data uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_get_cb_info
func napi_get_cb_info(env uint32, info uint32, argc unsafe.Pointer, argv unsafe.Pointer, thisArg unsafe.Pointer, data unsafe.Pointer) uint32

//go:wasmimport napi napi_get_new_target
func napi_get_new_target(env uint32, info uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_call_function
func napi_call_function(env uint32, recv uint32, fn uint32, argc uint32, argv unsafe.Pointer, result unsafe.Pointer) uint32

//go:wasmimport napi napi_throw
func napi_throw(env uint32, value uint32) uint32

//go:wasmimport napi napi_throw_error
func napi_throw_error(env uint32, code unsafe.Pointer, msg unsafe.Pointer) uint32

//go:wasmimport napi napi_get_and_clear_last_exception
func napi_get_and_clear_last_exception(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_open_handle_scope
func napi_open_handle_scope(env uint32, result unsafe.Pointer) uint32

//go:wasmimport napi napi_close_handle_scope
func napi_close_handle_scope(env uint32, scope uint32) uint32
