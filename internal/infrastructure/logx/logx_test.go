package logx

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestContextIDs(t *testing.T) {
	ctx := WithTraceID(WithRequestID(context.Background(), "r1"), "t1")
	require.Equal(t, "r1", RequestID(ctx))
	require.Equal(t, "t1", TraceID(ctx))
	require.Empty(t, RequestID(context.Background()))
	require.NotNil(t, WithFields(ctx))
	require.Same(t, L(), WithFields(context.Background()))
}

func TestBuild_Level(t *testing.T) {
	l, err := build("DEBUG")
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = build("error")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = build("loud")
	require.Error(t, err)
}

func TestL_ReadsLevelOnFirstUse(t *testing.T) {
	once, logger = sync.Once{}, nil
	t.Cleanup(func() { once, logger = sync.Once{}, nil })

	// set after package init, as godotenv does in main
	t.Setenv("LOG_LEVEL", "debug")
	require.True(t, L().Core().Enabled(zapcore.DebugLevel))

	t.Setenv("LOG_LEVEL", "error")
	require.True(t, L().Core().Enabled(zapcore.DebugLevel), "built once")
}

func TestL_BadLevelFallsBackToInfo(t *testing.T) {
	once, logger = sync.Once{}, nil
	t.Cleanup(func() { once, logger = sync.Once{}, nil })

	t.Setenv("LOG_LEVEL", "loud")
	require.True(t, L().Core().Enabled(zapcore.InfoLevel))
	require.False(t, L().Core().Enabled(zapcore.DebugLevel))
}
