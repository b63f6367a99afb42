package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincleaner/internal/config"
	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/infrastructure"
	"fincleaner/internal/shared/testutil"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func decodeProblem(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&problem))
	return problem
}

func TestRequestID(t *testing.T) {
	var seen, traceID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = infrastructure.GetTraceID(r.Context())
		traceID = seen
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, traceID)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagated from client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-id-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "client-id-1", seen)
		assert.Equal(t, "client-id-1", w.Header().Get(RequestIDHeader))
	})

	assert.Empty(t, infrastructure.GetTraceID(context.Background()))
}

func TestStructuredLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := RequestID(StructuredLogger(logger)(http.HandlerFunc(okHandler)))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/table", nil))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "request completed")
	testutil.AssertLogAttr(t, handler, "path", "/api/table")
	testutil.AssertLogAttr(t, handler, "status", int64(http.StatusOK))
}

func TestRecoverer(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(w, req) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	problem := decodeProblem(t, w.Body)
	assert.Equal(t, apierrors.TypeInternal, problem["type"])
	assert.Equal(t, "req-42", problem["trace_id"])
	testutil.AssertLogContains(t, handler, slog.LevelError, "panic recovered")
}

func TestRateLimiter(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	rl := NewRateLimiter(0.001, 2, logger)
	h := rl.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
			assert.Equal(t, apierrors.TypeRateLimit, decodeProblem(t, w.Body)["type"])
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "rate limit exceeded")
}

func TestTimeout(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	t.Run("handler honours deadline", func(t *testing.T) {
		h := Timeout(10*time.Millisecond, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Equal(t, apierrors.TypeTimeout, decodeProblem(t, w.Body)["type"])
		testutil.AssertLogContains(t, handler, slog.LevelError, "request timeout")
	})

	t.Run("fast handler untouched", func(t *testing.T) {
		h := Timeout(time.Second, logger)(http.HandlerFunc(okHandler))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})
}

func TestOTelMiddleware(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(
		metricsOnlyTelemetry(), io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	m, err := NewOTelMiddleware(providers)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/items/{id}", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items/7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	metrics := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metrics.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.True(t, strings.Contains(body, `route="/api/items/{id}"`), "metrics use the route pattern")
}

type saveBody struct {
	Path string `json:"path" validate:"omitempty,datafile"`
	Mode string `json:"mode" validate:"omitempty,oneof=csv xlsx"`
}

func TestValidationMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	vm := NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("rejects invalid JSON", func(t *testing.T) {
		h := vm.ValidateRequest(http.HandlerFunc(okHandler))
		req := httptest.NewRequest(http.MethodPost, "/api/save", strings.NewReader("{nope"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		h := vm.ValidateRequest(http.HandlerFunc(okHandler))
		req := httptest.NewRequest(http.MethodPost, "/api/save", strings.NewReader(`{}`))
		req.ContentLength = DefaultMaxBodySize + 1
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("passes valid and empty bodies", func(t *testing.T) {
		h := vm.ValidateRequest(http.HandlerFunc(okHandler))
		for _, body := range []string{`{"path":"out.csv"}`, ""} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/save", strings.NewReader(body)))
			assert.Equal(t, http.StatusOK, w.Code, body)
		}
	})

	t.Run("decode and validate", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			wantErr bool
			field   string
		}{
			{"valid csv", `{"path":"reports/out.csv"}`, false, ""},
			{"valid xlsx uppercase", `{"path":"OUT.XLSX"}`, false, ""},
			{"empty body", ``, false, ""},
			{"traversal", `{"path":"../etc/out.csv"}`, true, "path"},
			{"inner traversal", `{"path":"reports/../../out.csv"}`, true, "path"},
			{"absolute", `{"path":"/tmp/out.csv"}`, true, "path"},
			{"wrong extension", `{"path":"out.json"}`, true, "path"},
			{"bad enum", `{"mode":"pdf"}`, true, "mode"},
			{"unknown field", `{"other":1}`, true, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var body saveBody
				req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
				err := vm.DecodeAndValidate(req, &body)
				if !tt.wantErr {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
				if tt.field != "" {
					details, ok := apiErr.Details.([]apierrors.ValidationError)
					require.True(t, ok)
					require.Len(t, details, 1)
					assert.Equal(t, tt.field, details[0].Field)
				}
			})
		}
	})
}

func metricsOnlyTelemetry() config.TelemetryConfig {
	return config.TelemetryConfig{ServiceName: "middleware-test", MetricsEnabled: true}
}
