package model

import (
	"encoding/json"
	"errors"
)

// Result is the uniform outcome of every gateway operation. A Result is
// either a success carrying a value of type T, or a failure carrying an
// error; the zero value is a failure. Construct it with Ok or Fail.
type Result[T any] struct {
	ok   bool
	data T
	err  error
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{ok: true, data: v}
}

// Fail returns a failed Result carrying err. A nil err or one with an empty
// message is reported as "unknown error" so that a failure never has an
// empty message.
func Fail[T any](err error) Result[T] {
	if err == nil || err.Error() == "" {
		return FailMsg[T]("unknown error")
	}
	return Result[T]{err: err}
}

// FailMsg returns a failed Result with the given message.
func FailMsg[T any](msg string) Result[T] {
	if msg == "" {
		msg = "unknown error"
	}
	return Result[T]{err: errors.New(msg)}
}

// Success reports whether r holds a value.
func (r Result[T]) Success() bool {
	return r.ok
}

// Data returns the value and true on success, or the zero T and false.
func (r Result[T]) Data() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.data, true
}

// Error returns the failure message, or "" on success.
func (r Result[T]) Error() string {
	if r.ok {
		return ""
	}
	if r.err == nil {
		return "unknown error"
	}
	return r.err.Error()
}

// Err returns the error the Result was failed with, or nil on success.
// errors.Is and errors.As see through it.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return errors.New(r.Error())
	}
	return r.err
}

// MapResult converts a successful Result[T] into Result[U] using f; failures
// keep their error.
func MapResult[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Fail[U](r.Err())
	}
	return Ok(f(r.data))
}

type resultWire[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Error   string `json:"error,omitempty"`
}

// MarshalJSON encodes r as {"success":true,"data":...} or
// {"success":false,"data":null,"error":"..."}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	w := resultWire[T]{Success: r.ok}
	if r.ok {
		w.Data = &r.data
	} else {
		w.Error = r.Error()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form and rejects payloads that carry both or
// neither of the success and failure shapes.
func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var w resultWire[T]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch {
	case w.Success && w.Error != "":
		return errors.New("result: success with error message")
	case !w.Success && w.Error == "":
		return errors.New("result: failure without error message")
	case w.Success:
		var v T
		if w.Data != nil {
			v = *w.Data
		}
		*r = Ok(v)
	default:
		*r = FailMsg[T](w.Error)
	}
	return nil
}
