package hostabi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "pending_exception", StatusPendingException.String())
	assert.Equal(t, "would_deadlock", StatusWouldDeadlock.String())
	assert.Equal(t, "status(99)", Status(99).String())
}

func TestStatus_Message(t *testing.T) {
	assert.Equal(t, "Invalid argument", StatusInvalidArg.Message())
	assert.Equal(t, "A string was expected", StatusStringExpected.Message())
	assert.Equal(t, "Unknown status", Status(99).Message())
	assert.Empty(t, StatusOK.Message())
}

func TestStatus_OK(t *testing.T) {
	assert.True(t, StatusOK.OK())
	assert.False(t, StatusGenericFailure.OK())
}

func TestStatus_ErrorsIs(t *testing.T) {
	err := fmt.Errorf("create string: %w", StatusStringExpected)
	assert.True(t, errors.Is(err, StatusStringExpected))
	assert.False(t, errors.Is(err, StatusObjectExpected))
}

func TestValueType_String(t *testing.T) {
	assert.Equal(t, "function", TypeFunction.String())
	assert.Equal(t, "unknown", ValueType(42).String())
}
