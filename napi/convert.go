package napi

import "github.com/reglet-dev/reglet-napi/hostabi"

// TypeOf reports the host type of v.
func TypeOf(env Env, v Value) (hostabi.ValueType, error) {
	if err := env.live("typeof", v); err != nil {
		return 0, err
	}
	var t hostabi.ValueType
	st := env.table().TypeOf(env.raw, v.raw, &t)
	return translate(env, "typeof", st, t)
}

// StringValue copies a host string into Go. The host is asked for the byte
// length first, then for the bytes.
func StringValue(env Env, v Value) (string, error) {
	const op = "get_value_string_utf8"
	if err := env.live(op, v); err != nil {
		return "", err
	}
	var n uint32
	st := env.table().GetValueStringUTF8(env.raw, v.raw, nil, 0, &n)
	if err := env.check(op, st); err != nil {
		return "", err
	}
	buf := make([]byte, n+1)
	var copied uint32
	st = env.table().GetValueStringUTF8(env.raw, v.raw, &buf[0], n+1, &copied)
	if err := env.check(op, st); err != nil {
		return "", err
	}
	if copied > n {
		fatal(op, localError(op, hostabi.StatusGenericFailure, "host wrote past the reported length"))
	}
	return string(buf[:copied]), nil
}

// Int32Value converts a host number to int32.
func Int32Value(env Env, v Value) (int32, error) {
	if err := env.live("get_value_int32", v); err != nil {
		return 0, err
	}
	var n int32
	st := env.table().GetValueInt32(env.raw, v.raw, &n)
	return translate(env, "get_value_int32", st, n)
}

// BoolValue converts a host boolean to bool.
func BoolValue(env Env, v Value) (bool, error) {
	if err := env.live("get_value_bool", v); err != nil {
		return false, err
	}
	var b bool
	st := env.table().GetValueBool(env.raw, v.raw, &b)
	return translate(env, "get_value_bool", st, b)
}
