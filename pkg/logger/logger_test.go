package logger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kioskreg/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}

	t.Run("with creates a new instance", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)

		child := log.With(zap.String("component", "test"))
		assert.NotSame(t, log, child)
	})

	t.Run("logging methods do not panic", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewRequestIDContext(context.Background(), "req-1")
		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug message")
			log.Info(ctx, "info message")
			log.Warn(ctx, "warn message")
			log.Error(ctx, "error message")
		})
	})
}

func TestContext(t *testing.T) {
	t.Run("from context returns stored logger", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), log)

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, log, got)
		assert.Same(t, log, logger.Log(ctx))
	})

	t.Run("from context without logger", func(t *testing.T) {
		got, err := logger.FromContext(context.Background())
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})

	t.Run("log falls back to global logger", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Production, "info")
		require.NoError(t, err)

		logger.SetGlobalLogger(log)
		t.Cleanup(func() { logger.SetGlobalLogger(nil) })

		assert.Same(t, log, logger.Log(context.Background()))
	})

	t.Run("log without global logger returns fallback", func(t *testing.T) {
		logger.SetGlobalLogger(nil)
		assert.NotNil(t, logger.Log(context.Background()))
	})

	t.Run("init global logger keeps the first instance", func(t *testing.T) {
		logger.SetGlobalLogger(nil)
		t.Cleanup(func() { logger.SetGlobalLogger(nil) })

		require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Development, "debug"))
		first := logger.Log(context.Background())

		require.NoError(t, logger.InitGlobalLogger(logger.Production))
		assert.Same(t, first, logger.Log(context.Background()))
	})
}

func TestRequestID(t *testing.T) {
	t.Run("explicit id is kept", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "abc")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("empty id is generated", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		_, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
	})

	t.Run("with request id", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		assert.Same(t, log, log.WithRequestID(context.Background()))

		ctx := logger.NewRequestIDContext(context.Background(), "req-2")
		assert.NotSame(t, log, log.WithRequestID(ctx))
	})
}
