package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies an AppError. The handler maps each type to an HTTP
// status and the CLI prints it in brackets.
type ErrorType string

const (
	ErrTypeLoad         ErrorType = "LOAD"
	ErrTypeWrite        ErrorType = "WRITE"
	ErrTypePrecondition ErrorType = "PRECONDITION"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// AppError is a domain failure raised below the transport layer. Context
// holds the offending path, column or row for logs and problem bodies.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *AppError) Error() string {
	msg := "[" + string(e.Type) + "] " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext records key=value on e and returns e
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewLoadError reports a source that is missing, unreadable or malformed.
func NewLoadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLoad, message, cause)
}

func NewWriteError(message string, cause error) *AppError {
	return NewAppError(ErrTypeWrite, message, cause)
}

// NewPreconditionError reports an operation invoked before the dataset was cleaned.
func NewPreconditionError(message string) *AppError {
	return NewAppError(ErrTypePrecondition, message, nil)
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing column, group or metric.
func NewNotFoundError(what string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", what), nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf is the Type of the outermost AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
