package bdapp

import (
	"github.com/advdv/bdispatch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding, BD_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogHandlerError(err error) {
	l.Logger.Error("unhandled error", zap.Error(err))
}

func (l zapLogger) LogFallbackError(err error) {
	l.Logger.Warn("error while handling error", zap.Error(err))
}

func (l zapLogger) LogBadRequest(err error) {
	l.Logger.Warn("bad request", zap.Error(err))
}

// NewDispatchLogger adapts a zap logger to the dispatcher's error and warning channels.
func NewDispatchLogger(l *zap.Logger) bdispatch.Logger {
	return zapLogger{l.Named("bdispatch").Named("bdapp")}
}
