//go:build !wasip1

package wasm

import "github.com/reglet-dev/reglet-napi/hostabi"

// unavailable is the diagnostic of every call in non-wasm builds.
var unavailable = append([]byte("napi host not available outside wasip1"), 0)

// Table is the import-backed table. Outside wasip1 there is no host to
// import from, so every call fails with StatusGenericFailure.
type Table struct{}

var _ hostabi.Table = Table{}

// NewTable returns the table.
func NewTable() hostabi.Table {
	return Table{}
}

// GetLastErrorInfo implements hostabi.Table.
func (Table) GetLastErrorInfo(_ hostabi.Env, result **hostabi.ExtendedErrorInfo) hostabi.Status {
	*result = &hostabi.ExtendedErrorInfo{
		ErrorMessage: &unavailable[0],
		ErrorCode:    hostabi.StatusGenericFailure,
	}
	return hostabi.StatusOK
}

func (Table) IsExceptionPending(hostabi.Env, *bool) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetUndefined(hostabi.Env, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetNull(hostabi.Env, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetGlobal(hostabi.Env, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetBoolean(hostabi.Env, bool, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) CreateObject(hostabi.Env, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) CreateInt32(hostabi.Env, int32, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) CreateStringUTF8(hostabi.Env, *byte, uint32, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetValueStringUTF8(hostabi.Env, hostabi.Value, *byte, uint32, *uint32) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetValueInt32(hostabi.Env, hostabi.Value, *int32) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetValueBool(hostabi.Env, hostabi.Value, *bool) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) TypeOf(hostabi.Env, hostabi.Value, *hostabi.ValueType) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) SetNamedProperty(hostabi.Env, hostabi.Value, *byte, hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetNamedProperty(hostabi.Env, hostabi.Value, *byte, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) CreateFunction(hostabi.Env, *byte, uint32, hostabi.Callback, uint32, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetCbInfo(hostabi.Env, hostabi.CallbackInfo, *uint32, *hostabi.Value, *hostabi.Value, *uint32) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetNewTarget(hostabi.Env, hostabi.CallbackInfo, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) CallFunction(hostabi.Env, hostabi.Value, hostabi.Value, uint32, *hostabi.Value, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) Throw(hostabi.Env, hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) ThrowError(hostabi.Env, *byte, *byte) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) GetAndClearLastException(hostabi.Env, *hostabi.Value) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) OpenHandleScope(hostabi.Env, *hostabi.HandleScope) hostabi.Status {
	return hostabi.StatusGenericFailure
}

func (Table) CloseHandleScope(hostabi.Env, hostabi.HandleScope) hostabi.Status {
	return hostabi.StatusGenericFailure
}
