package hostabi

import "unsafe"

// Env is the opaque host environment pointer.
type Env uint32

// Value is an opaque reference to a host-managed value. The zero Value is
// the null handle.
type Value uint32

// CallbackInfo is the opaque per-call record handed to a callback.
type CallbackInfo uint32

// HandleScope is the opaque handle of an open host handle scope.
type HandleScope uint32

// AutoLength tells CreateStringUTF8 to stop at the first NUL byte instead
// of using an explicit length.
const AutoLength = ^uint32(0)

// ValueType is the result of TypeOf.
type ValueType uint32

// Value types, in host ABI order.
const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol
	TypeObject
	TypeFunction
	TypeExternal
	TypeBigint
)

var valueTypeNames = [...]string{
	TypeUndefined: "undefined",
	TypeNull:      "null",
	TypeBoolean:   "boolean",
	TypeNumber:    "number",
	TypeString:    "string",
	TypeSymbol:    "symbol",
	TypeObject:    "object",
	TypeFunction:  "function",
	TypeExternal:  "external",
	TypeBigint:    "bigint",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// ExtendedErrorInfo is the host-owned record returned by GetLastErrorInfo.
// ErrorMessage points at a NUL-terminated string that stays valid only until
// the next call on the same environment.
type ExtendedErrorInfo struct {
	ErrorMessage    *byte
	EngineReserved  unsafe.Pointer
	EngineErrorCode uint32
	ErrorCode       Status
}

// ErrorInfoSize is the size of the extended error record in wasm32 linear
// memory: message pointer, reserved pointer, engine code, status.
const ErrorInfoSize = 16
