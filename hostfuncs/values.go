package hostfuncs

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/reglet-dev/reglet-napi/hostabi"
)

// Undefined is the undefined value.
type Undefined struct{}

// Null is the null value.
type Null struct{}

// Object is a host object: string-keyed properties kept in insertion order.
type Object struct {
	props map[string]any
	keys  []string
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]any)}
}

// Get returns the property, or Undefined when it is not set.
func (o *Object) Get(name string) any {
	if v, ok := o.props[name]; ok {
		return v
	}
	return Undefined{}
}

// Has reports whether the property is set.
func (o *Object) Has(name string) bool {
	_, ok := o.props[name]
	return ok
}

// Set sets the property.
func (o *Object) Set(name string, v any) {
	if _, ok := o.props[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.props[name] = v
}

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Invocation is one call of a Function.
type Invocation struct {
	This      any
	NewTarget any
	Args      []any
}

// NativeFunc implements a Function. A thrown value is returned as
// *Exception.
type NativeFunc func(ctx context.Context, inv *Invocation) (any, error)

// Function is a callable object.
type Function struct {
	*Object
	call NativeFunc
	Name string
}

// NewFunction returns a function backed by fn.
func NewFunction(name string, fn NativeFunc) *Function {
	f := &Function{Object: NewObject(), Name: name, call: fn}
	f.Set("name", name)
	return f
}

// NewError returns an Error object with the given message and, when not
// empty, code.
func NewError(code, message string) *Object {
	e := NewObject()
	e.Set("name", "Error")
	e.Set("message", message)
	if code != "" {
		e.Set("code", code)
	}
	return e
}

// TypeOf classifies v.
func TypeOf(v any) hostabi.ValueType {
	switch v.(type) {
	case nil, Undefined:
		return hostabi.TypeUndefined
	case Null:
		return hostabi.TypeNull
	case bool:
		return hostabi.TypeBoolean
	case float64:
		return hostabi.TypeNumber
	case string:
		return hostabi.TypeString
	case *Function:
		return hostabi.TypeFunction
	case *Object:
		return hostabi.TypeObject
	default:
		return hostabi.TypeExternal
	}
}

// Normalize converts plain Go values into the value model: integers become
// float64 numbers, nil becomes Undefined and map[string]any becomes an
// *Object.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return Undefined{}
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint32:
		return float64(x)
	case float32:
		return float64(x)
	case map[string]any:
		o := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.Set(k, Normalize(x[k]))
		}
		return o
	default:
		return v
	}
}

// Describe renders v for diagnostics.
func Describe(v any) string {
	switch x := v.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return strconv.Quote(x)
	case *Function:
		return fmt.Sprintf("[Function: %s]", x.Name)
	case *Object:
		if isError(x) {
			return fmt.Sprintf("%s: %s", plain(x.Get("name")), plain(x.Get("message")))
		}
		parts := make([]string, 0, len(x.keys))
		for _, k := range x.keys {
			parts = append(parts, k+": "+Describe(x.props[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func plain(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Describe(v)
}

func isError(o *Object) bool {
	name, ok := o.Get("name").(string)
	return ok && strings.HasSuffix(name, "Error") && o.Has("message")
}
