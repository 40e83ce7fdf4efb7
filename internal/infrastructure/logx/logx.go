package logx

import (
	"context"
	"strings"
	"sync"

	"rubconv-service/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.Logger
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceIDKey
)

func build(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, err
		}
	}
	return zapCfg.Build(zap.AddCaller(), zap.AddCallerSkip(0))
}

// L returns the package-level logger. It is built on first use so that
// LOG_LEVEL from a .env file loaded in main is honored.
func L() *zap.Logger {
	once.Do(func() {
		l, err := build(config.Load().LogLevel)
		if err != nil {
			l, err = build("")
		}
		if err != nil {
			panic(err)
		}
		logger = l
	})
	return logger
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// WithFields enriches logs with request and trace IDs from context.
func WithFields(ctx context.Context) *zap.Logger {
	l := L()
	if rid := RequestID(ctx); rid != "" {
		l = l.With(zap.String("request_id", rid))
	}
	if tid := TraceID(ctx); tid != "" {
		l = l.With(zap.String("trace_id", tid))
	}
	return l
}
