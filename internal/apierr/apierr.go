package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine codes for expected business outcomes. Handlers map these to
// HTTP responses; callers branch on them with Is.
const (
	CodeValidationFailed  = "validation_failed"
	CodeDuplicateDemand   = "duplicate_demand"
	CodeStepFinalized     = "step_finalized"
	CodeInsufficientStock = "insufficient_stock"
	CodeAlreadyProcessed  = "already_processed"
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeInternal          = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidationFailed, fmt.Errorf(format, args...))
}

func DuplicateDemand(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeDuplicateDemand, fmt.Errorf(format, args...))
}

func StepFinalized(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeStepFinalized, fmt.Errorf(format, args...))
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeInsufficientStock, fmt.Errorf(format, args...))
}

func AlreadyProcessed(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeAlreadyProcessed, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodeForbidden, fmt.Errorf(format, args...))
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// Is reports whether err is (or wraps) an *Error carrying the given code.
func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// From extracts the *Error out of err, wrapping unexpected errors as internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
