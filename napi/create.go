package napi

import "github.com/reglet-dev/reglet-napi/hostabi"

// CreateString converts text into a host string. The byte length is
// passed explicitly, so multi-byte UTF-8 and embedded NUL bytes are carried
// through intact.
func CreateString(env Env, text string) (Value, error) {
	buf, length := cString(text)
	var raw hostabi.Value
	st := env.table().CreateStringUTF8(env.raw, &buf[0], length, &raw)
	raw, err := translate(env, "create_string_utf8", st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}

// CreateInt32 converts n into a host number.
func CreateInt32(env Env, n int32) (Value, error) {
	var raw hostabi.Value
	st := env.table().CreateInt32(env.raw, n, &raw)
	raw, err := translate(env, "create_int32", st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}

// CreateObject creates an empty host object.
func CreateObject(env Env) (Value, error) {
	var raw hostabi.Value
	st := env.table().CreateObject(env.raw, &raw)
	raw, err := translate(env, "create_object", st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}

// SetNamedProperty sets object[name] = value. An object that the host does
// not treat as object-like fails with a translated *Error.
func SetNamedProperty(env Env, object Value, name string, value Value) error {
	const op = "set_named_property"
	if err := env.live(op, object, value); err != nil {
		return err
	}
	key, err := cName(op, name)
	if err != nil {
		return err
	}
	return env.check(op, env.table().SetNamedProperty(env.raw, object.raw, &key[0], value.raw))
}

// GetNamedProperty returns object[name].
func GetNamedProperty(env Env, object Value, name string) (Value, error) {
	const op = "get_named_property"
	if err := env.live(op, object); err != nil {
		return Value{}, err
	}
	key, err := cName(op, name)
	if err != nil {
		return Value{}, err
	}
	var raw hostabi.Value
	st := env.table().GetNamedProperty(env.raw, object.raw, &key[0], &raw)
	raw, err = translate(env, op, st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}

// CreateFunction registers cb under name and returns a host function that
// calls it. The host's data slot receives a registration key, never a
// pointer, and the key is not reused even if the host call fails.
func CreateFunction(env Env, name string, cb Callback) (Value, error) {
	const op = "create_function"
	if cb == nil {
		return Value{}, localError(op, hostabi.StatusInvalidArg, "callback is nil")
	}
	cname, err := cName(op, name)
	if err != nil {
		return Value{}, err
	}
	key := env.m.registry.add(name, cb)

	var raw hostabi.Value
	st := env.table().CreateFunction(env.raw, &cname[0], uint32(len(name)), env.m.Dispatch, key, &raw)
	raw, err = translate(env, op, st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}

// CallFunction calls fn with recv as its receiver. If the host function
// throws, the error wraps hostabi.StatusPendingException and the exception
// stays pending; GetAndClearLastException retrieves it.
func CallFunction(env Env, recv Value, fn Value, args ...Value) (Value, error) {
	const op = "call_function"
	if err := env.live(op, recv, fn); err != nil {
		return Value{}, err
	}
	if err := env.live(op, args...); err != nil {
		return Value{}, err
	}
	argv := make([]hostabi.Value, len(args))
	for i, a := range args {
		argv[i] = a.raw
	}
	var first *hostabi.Value
	if len(argv) > 0 {
		first = &argv[0]
	}
	var raw hostabi.Value
	st := env.table().CallFunction(env.raw, recv.raw, fn.raw, uint32(len(argv)), first, &raw)
	raw, err := translate(env, op, st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}

// Throw makes v the host's pending exception.
func Throw(env Env, v Value) error {
	if err := env.live("throw", v); err != nil {
		return err
	}
	return env.check("throw", env.table().Throw(env.raw, v.raw))
}

// ThrowError makes a new host Error with the given message (and code, if
// not empty) the pending exception.
func ThrowError(env Env, code, msg string) error {
	const op = "throw_error"
	cmsg, _ := cString(msg)
	var ccode *byte
	if code != "" {
		buf, err := cName(op, code)
		if err != nil {
			return err
		}
		ccode = &buf[0]
	}
	return env.check(op, env.table().ThrowError(env.raw, ccode, &cmsg[0]))
}

// GetAndClearLastException returns the pending exception and clears it.
// With nothing pending the host reports a failure.
func GetAndClearLastException(env Env) (Value, error) {
	var raw hostabi.Value
	st := env.table().GetAndClearLastException(env.raw, &raw)
	raw, err := translate(env, "get_and_clear_last_exception", st, raw)
	if err != nil {
		return Value{}, err
	}
	return env.wrap(raw), nil
}
