package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("known environments", func(t *testing.T) {
		for _, env := range []string{EnvDevelopment, EnvProduction} {
			l, err := New(env, LevelInfo)

			require.NoError(t, err)
			require.NotNil(t, l)
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)

		require.Error(t, err)
	})
}

func TestNoOpLoggerDoesNotPanic(t *testing.T) {
	t.Parallel()

	l := NewNoOp()
	l.Debug("msg", "key", "value")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg", "error", "boom")
	l.With("key", "value").WithGroup("group").Info("msg")
}

func TestParseLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "ERROR", want: slog.LevelError},
		{level: "bogus", want: slog.LevelInfo},
		{level: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, parseLevelString(tt.level), "level %q", tt.level)
	}
}
