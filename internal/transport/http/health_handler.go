package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"fincleaner/internal/infrastructure"
	"fincleaner/internal/services"
)

// HealthServiceInterface is what the probes read from services.HealthService
type HealthServiceInterface interface {
	LivenessCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	Version() services.VersionInfo
}

// HealthHandler serves the probe and version endpoints. They sit outside
// /api and never go through the error handler.
type HealthHandler struct {
	service HealthServiceInterface
	logger  *slog.Logger
}

func NewHealthHandler(service HealthServiceInterface, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{service: service, logger: infrastructure.WithComponent(logger, "health_handler")}
}

// LivenessCheck handles GET /healthz
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// ReadinessCheck handles GET /readyz and answers 503 until the source is readable
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != services.StatusReady {
		h.logger.DebugContext(r.Context(), "not ready", slog.Any("checks", status.Checks))
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
