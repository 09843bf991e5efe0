package common

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	require.NoError(t, SetupLogger("debug", "json"))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	require.NoError(t, SetupLogger("error", "console"))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelError))
}

func TestSetupLoggerRejectsBadInput(t *testing.T) {
	assert.ErrorIs(t, SetupLogger("verbose", "console"), ErrInvalidConfig)
	assert.ErrorIs(t, SetupLogger("info", "xml"), ErrInvalidConfig)
}
