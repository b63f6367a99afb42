package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/infrastructure"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID adopts the client's X-Request-ID or mints one, echoes it back and
// makes it the trace ID of everything logged for the request. Mount it first.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = infrastructure.NewTraceID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(infrastructure.WithTraceID(r.Context(), id)))
	})
}

// requestAttrs are the attributes shared by every per-request log line
func requestAttrs(r *http.Request, extra ...any) []any {
	return append([]any{"method", r.Method, "path", r.URL.Path}, extra...)
}

// StructuredLogger writes one access line per request, plus a debug line
// when it starts.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			logger.DebugContext(r.Context(), "request started",
				requestAttrs(r, "remote_addr", r.RemoteAddr, "user_agent", r.UserAgent())...)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "request completed",
				requestAttrs(r,
					"status", statusOf(ww),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(began).String())...)
		})
	}
}

// statusOf treats a handler that never wrote a header as 200
func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}

// Recoverer answers a panicking handler with a 500 problem. http.ErrAbortHandler
// is re-raised so net/http can drop the connection.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				switch v {
				case nil:
					return
				case http.ErrAbortHandler:
					panic(v)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					requestAttrs(r, "panic", v, "stack", string(debug.Stack()))...)
				writeProblem(w, r, http.StatusInternalServerError, apierrors.TypeInternal,
					"Internal Server Error", "An unexpected error occurred")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter throttles the whole server with a single token bucket.
type RateLimiter struct {
	bucket *rate.Limiter
	logger *slog.Logger
}

func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{bucket: rate.NewLimiter(rate.Limit(rps), burst), logger: logger}
}

// Handler answers 429 once the bucket is empty.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.bucket.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			requestAttrs(r, "remote_addr", r.RemoteAddr)...)

		w.Header().Set("Retry-After", "1")
		writeProblem(w, r, http.StatusTooManyRequests, apierrors.TypeRateLimit,
			"Too Many Requests", "Rate limit exceeded")
	})
}

// Timeout puts a deadline on the request context. It does not race the
// handler: a handler that gives up on ctx without answering gets a 504.
func Timeout(timeout time.Duration, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))
			if ww.Status() != 0 || ctx.Err() != context.DeadlineExceeded {
				return
			}

			logger.ErrorContext(r.Context(), "request timeout",
				requestAttrs(r, "timeout", timeout.String())...)
			writeProblem(ww, r, http.StatusGatewayTimeout, apierrors.TypeTimeout,
				"Request Timeout", "The request took too long to process")
		})
	}
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, typeURI, title, detail string) {
	problem := apierrors.NewProblemDetails(status, typeURI, title, detail, r.URL.Path)
	if id := infrastructure.GetTraceID(r.Context()); id != "" {
		problem.WithExtension("trace_id", id)
	}
	render.Render(w, r, problem)
}
