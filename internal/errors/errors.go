package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// API error codes. The handler maps each onto a problem type.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidJSON     = "INVALID_JSON"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeValidation      = "VALIDATION_FAILED"
	CodeNotFound        = "NOT_FOUND"
	CodeNotCleaned      = "NOT_CLEANED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// APIError is a request-level failure raised by the HTTP layer itself, as
// opposed to an AppError coming out of the cleaner or the analyses.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError is one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an APIError without details
func New(statusCode int, errorCode, message string) *APIError {
	return NewWithDetails(statusCode, errorCode, message, nil)
}

// NewWithDetails creates an APIError carrying details in the response
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	ErrNotCleaned = New(http.StatusConflict, CodeNotCleaned, "clean() must run first")
	ErrInternal   = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
)

// InvalidRequestWithError reports a body that could not be read or decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// InvalidJSON reports a body that is not well-formed JSON
func InvalidJSON() *APIError {
	return New(http.StatusBadRequest, CodeInvalidJSON, "Request body contains invalid JSON")
}

// PayloadTooLarge reports a body above the accepted size
func PayloadTooLarge(limit, size int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		"Request body exceeds maximum allowed size",
		map[string]int64{"max_size": limit, "size": size})
}

// FieldError rejects a single request field
func FieldError(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors rejects one or more request fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidation, "Request validation failed", errs)
}

// NotFoundError reports a missing resource such as a disabled endpoint
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}
