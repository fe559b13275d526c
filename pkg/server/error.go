package server

import (
	"errors"
	"fmt"
)

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	ErrNotFound
	ErrBadParamInput
	ErrInternalServerError
	ErrConflict
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrBadParamInput:
		return "bad_param_input"
	case ErrInternalServerError:
		return "internal_server_error"
	case ErrConflict:
		return "conflict"
	}
	return "unknown"
}

// Error carries a user facing message and an error code on top of the original error.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

func (e *Error) Message() string {
	return e.msg
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		orig: orig,
		code: code,
		msg:  fmt.Sprintf(format, a...),
	}
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

// GetErrorCode returns the code of the first coded error in the chain of err.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ErrUnknown
}
