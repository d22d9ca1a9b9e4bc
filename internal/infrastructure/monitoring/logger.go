// Package monitoring wires the observability stack: the zap-backed logger
// and the Prometheus metric set.
package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/embedpro/pids-licensing/internal/config"
	"github.com/embedpro/pids-licensing/pkg/constants"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

// zapLogger implements logger.Logger on zap. Entries are enriched with the
// request ID and, when a span is recording, the trace ID from the context.
type zapLogger struct {
	zl *zap.Logger
}

// NewLogger builds the production logger from configuration.
func NewLogger(cfg config.LogConfig) (logger.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: parse level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := zapCfg.Build(zap.AddCallerSkip(1),
		zap.Fields(zap.String("service", constants.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return &zapLogger{zl: zl}, nil
}

func (l *zapLogger) Debug(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Debug(message, l.convert(ctx, nil, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Info(message, l.convert(ctx, nil, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Warn(message, l.convert(ctx, nil, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, message string, err error, fields ...logger.Field) {
	l.zl.Error(message, l.convert(ctx, err, fields)...)
}

func (l *zapLogger) Fatal(ctx context.Context, message string, err error, fields ...logger.Field) {
	l.zl.Fatal(message, l.convert(ctx, err, fields)...)
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{zl: l.zl.With(zap.String("component", component))}
}

func (l *zapLogger) convert(ctx context.Context, err error, fields []logger.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+3)
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
		out = append(out, zap.String("request_id", requestID))
	}
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		out = append(out, zap.String("trace_id", span.TraceID().String()))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
