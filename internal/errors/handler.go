package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"

	"fincleaner/internal/infrastructure"
)

// Problem types, relative URIs under /errors
const (
	TypeValidation   = "/errors/validation"
	TypeNotFound     = "/errors/not-found"
	TypeInternal     = "/errors/internal"
	TypeTimeout      = "/errors/timeout"
	TypeRateLimit    = "/errors/rate-limit"
	TypeMethod       = "/errors/method-not-allowed"
	TypeLoadFailed   = "/errors/data/load-failed"
	TypeWriteFailed  = "/errors/data/write-failed"
	TypeNotCleaned   = "/errors/data/not-cleaned"
	TypeConfigFailed = "/errors/config"
)

type problemKind struct {
	status int
	uri    string
}

// appErrorKinds maps each AppError type onto its HTTP rendition
var appErrorKinds = map[ErrorType]problemKind{
	ErrTypeLoad:         {http.StatusUnprocessableEntity, TypeLoadFailed},
	ErrTypeWrite:        {http.StatusInternalServerError, TypeWriteFailed},
	ErrTypePrecondition: {http.StatusConflict, TypeNotCleaned},
	ErrTypeValidation:   {http.StatusBadRequest, TypeValidation},
	ErrTypeNotFound:     {http.StatusNotFound, TypeNotFound},
	ErrTypeConfig:       {http.StatusInternalServerError, TypeConfigFailed},
}

// apiErrorTypes maps APIError codes onto problem types; unknown codes are
// internal
var apiErrorTypes = map[string]string{
	CodeValidation:      TypeValidation,
	CodeInvalidRequest:  TypeValidation,
	CodeInvalidJSON:     TypeValidation,
	CodePayloadTooLarge: TypeValidation,
	CodeNotFound:        TypeNotFound,
	CodeNotCleaned:      TypeNotCleaned,
}

// ErrorHandler renders every handler error as an RFC 7807 problem
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds the goroutine
// stack to each problem and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       infrastructure.WithComponent(logger, "error_handler"),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes it as a problem. Server-side failures are
// logged at error level, client errors at warn.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", problem.Status))

	if traceID := infrastructure.GetTraceID(r.Context()); traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}
	render.Render(w, r, problem)
}

// ErrorToProblem converts err without writing it. Cancellation and
// deadline errors become 504s.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	var (
		apiErr *APIError
		appErr *AppError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)

	case errors.As(err, &apiErr):
		problemType, ok := apiErrorTypes[apiErr.ErrorCode]
		if !ok {
			problemType = TypeInternal
		}
		problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode),
			apiErr.Message, r.URL.Path).WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem

	case errors.As(err, &appErr):
		kind, ok := appErrorKinds[appErr.Type]
		if !ok {
			kind = problemKind{http.StatusInternalServerError, TypeInternal}
		}
		problem := NewProblemDetails(kind.status, kind.uri, http.StatusText(kind.status),
			appErr.Error(), r.URL.Path).WithExtension("error_type", string(appErr.Type))
		if len(appErr.Context) > 0 {
			problem.WithExtension("context", appErr.Context)
		}
		return problem
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", r.URL.Path)
}

// NotFound is the router's 404 handler
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed is the router's 405 handler
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethod, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path))
}
