package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithNameAndKV verifies that scoped loggers keep their name and fields.
func TestWithNameAndKV(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "monitor")
	ctx = WithKV(ctx, "category", "distance")

	InfoKV(ctx, "Alert fired", "severity", "warning")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "monitor", entries[0].LoggerName)
	require.Equal(t, "Alert fired", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "distance", fields["category"])
	require.Equal(t, "warning", fields["severity"])
}
