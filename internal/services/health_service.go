package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"fincleaner/internal/cleaner"
	"fincleaner/internal/infrastructure"
)

// Probe results
const (
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// DatasetState is the part of DatasetService the health checks need
type DatasetState interface {
	State() cleaner.State
	Source() string
}

// Check is the verdict of one readiness dependency
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RuntimeInfo describes the running process
type RuntimeInfo struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	GoVersion     string  `json:"go_version"`
	Goroutines    int     `json:"goroutines"`
}

// HealthStatus is the body of /healthz and /readyz
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Runtime   *RuntimeInfo     `json:"runtime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// VersionInfo is the body of /api/version
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	StartedAt string `json:"started_at"`
}

type HealthService struct {
	version string
	dataset DatasetState
	started time.Time
	logger  *slog.Logger
}

func NewHealthService(version string, dataset DatasetState, logger *slog.Logger) *HealthService {
	return &HealthService{
		version: version,
		dataset: dataset,
		started: time.Now(),
		logger:  infrastructure.WithComponent(logger, "health_service"),
	}
}

// LivenessCheck always reports alive while the process can answer.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: &RuntimeInfo{
			UptimeSeconds: time.Since(hs.started).Seconds(),
			GoVersion:     runtime.Version(),
			Goroutines:    runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck is ready when the source file can be read. The dataset
// check only reports the lifecycle state; an uncleaned dataset is ready to
// be cleaned.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	source := sourceCheck(hs.dataset.Source())
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Checks: map[string]Check{
			"source":  source,
			"dataset": {Status: hs.dataset.State().String()},
		},
	}
	if source.Status != StatusReady {
		status.Status = StatusNotReady
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("reason", source.Message))
	}
	return status
}

func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		Version:   hs.version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		StartedAt: hs.started.Format(time.RFC3339),
	}
}

func sourceCheck(path string) Check {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return Check{Status: StatusNotReady, Message: fmt.Sprintf("source not readable: %v", err)}
	case info.IsDir():
		return Check{Status: StatusNotReady, Message: "source is a directory: " + path}
	}
	return Check{Status: StatusReady}
}
