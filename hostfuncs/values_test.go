package hostfuncs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		v    any
		want hostabi.ValueType
	}{
		{v: nil, want: hostabi.TypeUndefined},
		{v: Undefined{}, want: hostabi.TypeUndefined},
		{v: Null{}, want: hostabi.TypeNull},
		{v: true, want: hostabi.TypeBoolean},
		{v: 1.5, want: hostabi.TypeNumber},
		{v: "s", want: hostabi.TypeString},
		{v: NewObject(), want: hostabi.TypeObject},
		{v: NewFunction("f", nil), want: hostabi.TypeFunction},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeOf(tt.v), "TypeOf(%#v)", tt.v)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, float64(3), Normalize(3))
	assert.Equal(t, Undefined{}, Normalize(nil))

	obj, ok := Normalize(map[string]any{"b": 2, "a": "x"}).(*Object)
	if assert.True(t, ok) {
		assert.Equal(t, []string{"a", "b"}, obj.Keys())
		assert.Equal(t, float64(2), obj.Get("b"))
	}
}

func TestDescribe(t *testing.T) {
	obj := NewObject()
	obj.Set("n", float64(1))
	obj.Set("s", "x")

	assert.Equal(t, "undefined", Describe(Undefined{}))
	assert.Equal(t, "null", Describe(Null{}))
	assert.Equal(t, "42", Describe(float64(42)))
	assert.Equal(t, "0.5", Describe(0.5))
	assert.Equal(t, `{n: 1, s: "x"}`, Describe(obj))
	assert.Equal(t, "[Function: add]", Describe(NewFunction("add", nil)))
	assert.Equal(t, "Error: boom", Describe(NewError("", "boom")))
}

func TestObject_KeepsInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("z", 1)
	obj.Set("a", 2)
	obj.Set("z", 3)

	assert.Equal(t, []string{"z", "a"}, obj.Keys())
	assert.Equal(t, 3, obj.Get("z"))
	assert.False(t, obj.Has("missing"))
}
