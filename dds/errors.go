package dds

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure surfaced by the pipeline.
//
// ErrorCode implements error so that errors.Is(err, ErrCancelled) matches any
// *Error carrying the same code.
type ErrorCode uint32

const (
	// Success is the zero code; it is never carried by a non-nil error.
	Success ErrorCode = 0

	// ErrInvalidArgument reports nil or zero-sized inputs and malformed containers.
	ErrInvalidArgument ErrorCode = 1

	// ErrOutOfMemory reports buffer sizes that overflow or cannot be allocated.
	ErrOutOfMemory ErrorCode = 2

	// ErrUnsupportedFormat reports a format that is not representable by this pipeline.
	ErrUnsupportedFormat ErrorCode = 3

	// ErrConversionFailed reports a format remap that could not be performed,
	// e.g. an impossible planar merge.
	ErrConversionFailed ErrorCode = 4

	// ErrInvalidLayout reports cubemap cross dimensions that are inconsistent
	// with the declared face size.
	ErrInvalidLayout ErrorCode = 5

	// ErrCancelled reports a caller-requested abort through a progress callback.
	ErrCancelled ErrorCode = 6

	// ErrDeviceLost reports a compute device failure after acquisition.
	ErrDeviceLost ErrorCode = 7
)

// ErrorString returns the stable name of code, or "" for unknown codes.
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "SUCCESS"
	case ErrInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrOutOfMemory:
		return "OUT_OF_MEMORY"
	case ErrUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case ErrConversionFailed:
		return "CONVERSION_FAILED"
	case ErrInvalidLayout:
		return "INVALID_LAYOUT"
	case ErrCancelled:
		return "CANCELLED"
	case ErrDeviceLost:
		return "DEVICE_LOST"
	default:
		return ""
	}
}

func (c ErrorCode) Error() string {
	if s := ErrorString(c); s != "" {
		return "dds: " + s
	}
	return fmt.Sprintf("dds: error %d", uint32(c))
}

// Error is a typed error that carries an ErrorCode and an optional cause.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Code.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same ErrorCode or an *Error with the same code.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *Error:
		return t != nil && e.Code == t.Code && t.Msg == "" && t.Err == nil
	}
	return false
}

// ErrorCodeOf returns the code carried by err, or Success for nil.
//
// Errors that carry no code map to ErrConversionFailed.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c ErrorCode
	if errors.As(err, &c) {
		return c
	}
	return ErrConversionFailed
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

func newErrorf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, msg string, err error) error {
	return &Error{Code: code, Msg: msg, Err: err}
}
