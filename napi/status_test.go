package napi

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// mockTable implements the calls the translator tests need; anything else
// panics on the nil embedded interface.
type mockTable struct {
	hostabi.Table
	mock.Mock
}

func (m *mockTable) GetLastErrorInfo(env hostabi.Env, result **hostabi.ExtendedErrorInfo) hostabi.Status {
	args := m.Called(env)
	if info, ok := args.Get(0).(*hostabi.ExtendedErrorInfo); ok {
		*result = info
	}
	return args.Get(1).(hostabi.Status)
}

func (m *mockTable) CreateObject(env hostabi.Env, result *hostabi.Value) hostabi.Status {
	args := m.Called(env)
	*result = args.Get(0).(hostabi.Value)
	return args.Get(1).(hostabi.Status)
}

func errorRecord(status hostabi.Status, msg string) *hostabi.ExtendedErrorInfo {
	info := &hostabi.ExtendedErrorInfo{ErrorCode: status}
	if msg != "" {
		buf := append([]byte(msg), 0)
		info.ErrorMessage = &buf[0]
	}
	return info
}

func mockEnv(table *mockTable) Env {
	m := NewModule(table, nil, WithLogger(slog.New(slog.DiscardHandler)))
	return m.Env(7)
}

func TestCheck_OKMakesNoExtraCall(t *testing.T) {
	table := &mockTable{}
	table.On("CreateObject", hostabi.Env(7)).Return(hostabi.Value(3), hostabi.StatusOK).Once()

	v, err := CreateObject(mockEnv(table))

	require.NoError(t, err)
	assert.Equal(t, hostabi.Value(3), v.Raw())
	table.AssertExpectations(t)
	table.AssertNotCalled(t, "GetLastErrorInfo", mock.Anything)
}

func TestCheck_FailureReadsErrorInfoOnce(t *testing.T) {
	table := &mockTable{}
	table.On("CreateObject", hostabi.Env(7)).Return(hostabi.Value(0), hostabi.StatusGenericFailure).Once()
	table.On("GetLastErrorInfo", hostabi.Env(7)).Return(errorRecord(hostabi.StatusGenericFailure, "out of memory"), hostabi.StatusOK).Once()

	_, err := CreateObject(mockEnv(table))

	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "out of memory", herr.Message)
	assert.Equal(t, hostabi.StatusGenericFailure, herr.Status)
	assert.Equal(t, "create_object", herr.Op)
	assert.True(t, errors.Is(err, hostabi.StatusGenericFailure))
	assert.Equal(t, "ERR_NAPI_GENERIC_FAILURE", herr.Code())
	table.AssertNumberOfCalls(t, "GetLastErrorInfo", 1)
}

func TestCheck_CopiesDiagnosticBeforeNextCall(t *testing.T) {
	buf := append([]byte("first failure"), 0)
	record := &hostabi.ExtendedErrorInfo{ErrorCode: hostabi.StatusGenericFailure, ErrorMessage: &buf[0]}
	table := &mockTable{}
	table.On("CreateObject", hostabi.Env(7)).Return(hostabi.Value(0), hostabi.StatusGenericFailure).Once()
	table.On("GetLastErrorInfo", hostabi.Env(7)).Return(record, hostabi.StatusOK).Once()
	// The host reuses its record storage on the next call.
	table.On("CreateObject", hostabi.Env(7)).Run(func(mock.Arguments) {
		copy(buf, "reused buffer")
		record.ErrorCode = hostabi.StatusOK
	}).Return(hostabi.Value(4), hostabi.StatusOK).Once()
	env := mockEnv(table)

	_, err := CreateObject(env)
	_, next := CreateObject(env)

	require.NoError(t, next)
	assert.Equal(t, "reused buffer", goString(&buf[0]))
	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "first failure", herr.Message)
	assert.Equal(t, hostabi.StatusGenericFailure, herr.Status)
	table.AssertExpectations(t)
}

func TestCheck_FallbackMessageAndStatus(t *testing.T) {
	table := &mockTable{}
	table.On("CreateObject", hostabi.Env(7)).Return(hostabi.Value(0), hostabi.StatusObjectExpected).Once()
	table.On("GetLastErrorInfo", hostabi.Env(7)).Return(errorRecord(hostabi.StatusOK, ""), hostabi.StatusOK).Once()

	_, err := CreateObject(mockEnv(table))

	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, hostabi.StatusObjectExpected, herr.Status, "the observed status wins over an OK record")
	assert.Equal(t, hostabi.StatusObjectExpected.Message(), herr.Message)
}

func TestCheck_BrokenErrorInfoIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		record *hostabi.ExtendedErrorInfo
		status hostabi.Status
	}{
		{name: "failing call", record: nil, status: hostabi.StatusInvalidArg},
		{name: "nil record", record: nil, status: hostabi.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &mockTable{}
			table.On("CreateObject", hostabi.Env(7)).Return(hostabi.Value(0), hostabi.StatusGenericFailure)
			table.On("GetLastErrorInfo", hostabi.Env(7)).Return(tt.record, tt.status)

			defer func() {
				r := recover()
				inv, ok := r.(*InvariantError)
				require.True(t, ok, "expected *InvariantError, got %v", r)
				assert.Equal(t, "get_last_error_info", inv.Op)
			}()
			_, _ = CreateObject(mockEnv(table))
		})
	}
}

func TestCStringHelpers(t *testing.T) {
	buf, n := cString("a\x00é")
	assert.Equal(t, uint32(4), n)
	assert.Equal(t, []byte{'a', 0, 0xc3, 0xa9, 0}, buf)
	assert.Equal(t, "a", goString(&buf[0]))
	assert.Equal(t, "", goString(nil))

	_, err := cName("set_named_property", "bad\x00name")
	assert.True(t, errors.Is(err, hostabi.StatusNameExpected))
}
