package core

import "dacx0501-go/errcode"

// As asserts a control payload to the value type T. A nil payload is the
// zero value of T; pointers are not accepted.
func As[T any](v any) (T, errcode.Code) {
	var zero T
	if v == nil {
		return zero, ""
	}
	t, ok := v.(T)
	if !ok {
		return zero, errcode.InvalidPayload
	}
	return t, ""
}
