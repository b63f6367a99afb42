package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincleaner/internal/cleaner"
	"fincleaner/internal/shared/testutil"
)

type stubDataset struct {
	state  cleaner.State
	source string
}

func (s stubDataset) State() cleaner.State { return s.state }
func (s stubDataset) Source() string       { return s.source }

func TestHealthService(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteFile(t, dir, "input.csv", "a\n1\n")
	logger, logs := testutil.NewTestLogger(t)
	ctx := context.Background()

	t.Run("liveness", func(t *testing.T) {
		hs := NewHealthService("1.2.3", stubDataset{source: source}, logger)
		status := hs.LivenessCheck(ctx)
		assert.Equal(t, StatusAlive, status.Status)
		assert.Equal(t, "1.2.3", status.Version)
		require.NotNil(t, status.Runtime)
		assert.NotEmpty(t, status.Runtime.GoVersion)
	})

	t.Run("ready with readable source", func(t *testing.T) {
		hs := NewHealthService("1.2.3", stubDataset{state: cleaner.StateCleaned, source: source}, logger)
		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, StatusReady, status.Status)
		assert.Equal(t, Check{Status: "cleaned"}, status.Checks["dataset"])
		assert.Equal(t, Check{Status: StatusReady}, status.Checks["source"])
	})

	t.Run("not ready without source", func(t *testing.T) {
		hs := NewHealthService("1.2.3", stubDataset{source: filepath.Join(dir, "missing.csv")}, logger)
		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, StatusNotReady, status.Status)
		assert.Contains(t, status.Checks["source"].Message, "source not readable")
		assert.True(t, logs.ContainsMessage("readiness check failed"))
	})

	t.Run("not ready when source is a directory", func(t *testing.T) {
		hs := NewHealthService("1.2.3", stubDataset{source: dir}, logger)
		assert.Equal(t, StatusNotReady, hs.ReadinessCheck(ctx).Status)
	})

	t.Run("version", func(t *testing.T) {
		hs := NewHealthService("1.2.3", stubDataset{source: source}, logger)
		v := hs.Version()
		assert.Equal(t, "1.2.3", v.Version)
		assert.NotEmpty(t, v.StartedAt)
	})
}
