package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("records messages and attributes", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.Info("dataset loaded", slog.String("source", "in.csv"))
		logger.Error("write failed", slog.Int("status", 500))

		assert.Len(t, logs.GetRecords(), 2)
		assert.True(t, logs.ContainsMessage("dataset loaded"))
		assert.True(t, logs.ContainsAttr("source", "in.csv"))
		assert.True(t, logs.ContainsAttr("status", int64(500)))
		assert.False(t, logs.ContainsAttr("source", "out.csv"))
	})

	t.Run("level filter is exact", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelInfo, slog.LevelWarn} {
			logger.Log(context.Background(), level, "step")
		}

		assert.Len(t, logs.GetRecordsByLevel(slog.LevelDebug), 1)
		assert.Len(t, logs.GetRecordsByLevel(slog.LevelInfo), 2)
		assert.Empty(t, logs.GetRecordsByLevel(slog.LevelError))
		AssertNoErrors(t, logs)
	})

	t.Run("derived loggers share the buffer", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.With(slog.String("component", "cleaner")).Info("cleaned")

		assert.Equal(t, 1, logs.Count())
		AssertLogAttr(t, logs, "component", "cleaner")
		AssertLogContains(t, logs, slog.LevelInfo, "clean")
	})

	t.Run("groups qualify keys", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.WithGroup("request").Info("served", slog.Int("status", 200))
		logger.Info("filled", slog.Group("cells", slog.Int("count", 5)))

		AssertLogAttr(t, logs, "request.status", 200)
		AssertLogAttr(t, logs, "cells.count", int64(5))
		assert.False(t, logs.ContainsAttr("status", 200))
	})

	t.Run("clear empties the buffer", func(t *testing.T) {
		logger, logs := NewTestLogger(t)

		logger.Info("first")
		logger.Info("second")
		logs.Clear()

		assert.Zero(t, logs.Count())
		assert.False(t, logs.ContainsMessage("first"))
	})
}
