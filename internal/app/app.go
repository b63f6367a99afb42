package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"fincleaner/internal/config"
	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/infrastructure"
	customMiddleware "fincleaner/internal/middleware"
	"fincleaner/internal/services"
	handlers "fincleaner/internal/transport/http"
)

// Application represents the HTTP front of a single cleaner instance
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Dataset       *services.DatasetService
	Health        *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication wires the router and server around an existing dataset
// service. providers may be nil, in which case tracing middleware and the
// metrics endpoint are left out.
func NewApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, dataset *services.DatasetService) (*Application, error) {
	if cfg == nil {
		return nil, apierrors.NewConfigError("application requires a configuration", nil)
	}
	if dataset == nil {
		return nil, apierrors.NewConfigError("application requires a dataset service", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	a := &Application{
		Config:        cfg,
		Dataset:       dataset,
		Health:        services.NewHealthService(config.AppVersion, dataset, logger),
		Logger:        logger,
		OTelProviders: providers,
	}

	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()
	return a, nil
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID → OTel → Logger → Recoverer → Timeout → RateLimit
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	if a.OTelProviders != nil {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
		}
		r.Use(otelMiddleware.Handler)
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Get("/healthz", healthHandler.LivenessCheck)
	r.Get("/readyz", healthHandler.ReadinessCheck)
	r.Get("/api/version", healthHandler.Version)

	validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
	datasetHandler := handlers.NewDatasetHandler(a.Dataset, a.Config.Server.SaveDir, validator, a.Logger, errorHandler)
	r.Mount("/api", datasetHandler.Routes())

	var prom http.Handler
	if a.OTelProviders != nil {
		prom = a.OTelProviders.PrometheusHTTP
	}
	r.Handle("/metrics", handlers.NewMetricsHandler(prom, errorHandler))

	a.Router = r
	return nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr is the configured listen address
func (a *Application) Addr() string {
	return fmt.Sprintf(":%d", a.Config.Server.Port)
}

// Run listens on the configured address and serves until ctx is cancelled
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled, then shuts the server
// down within the configured shutdown timeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", ln.Addr().String()),
		slog.String("source", a.Dataset.Source()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})
	return g.Wait()
}

// Stop gracefully stops the server
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Server shutdown complete")
	return nil
}
