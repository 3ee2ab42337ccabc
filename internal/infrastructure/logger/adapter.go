package logger

import (
	"io"
	"os"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/infrastructure/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

// LoggerAdapter exposes a zap SugaredLogger through output.LoggerPort.
// Args are alternating key/value pairs.
type LoggerAdapter struct {
	sugar  *zap.SugaredLogger
	closer io.Closer
}

func NewLoggerAdapter(cfg config.LoggerConfig) (*LoggerAdapter, error) {
	return NewLoggerAdapterWithWriter(cfg, zapcore.Lock(os.Stderr))
}

func NewLoggerAdapterWithWriter(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) (*LoggerAdapter, error) {
	core, rotator, err := newCore(cfg, consoleWriter)
	if err != nil {
		return nil, err
	}

	options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		options = append(options, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	l := zap.New(core, options...)
	if cfg.ServiceName != "" {
		l = l.Named(cfg.ServiceName)
	}

	adapter := &LoggerAdapter{sugar: l.Sugar()}
	if rotator != nil {
		adapter.closer = rotator
	}
	return adapter, nil
}

// NewFromZap wraps an existing zap logger. Close only syncs it.
func NewFromZap(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{sugar: l.Sugar()}
}

func NewNop() *LoggerAdapter {
	return NewFromZap(zap.NewNop())
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.With(key, value), closer: l.closer}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{sugar: l.sugar.With(args...), closer: l.closer}
}

// Zap returns the underlying logger for libraries that take one directly.
func (l *LoggerAdapter) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

func (l *LoggerAdapter) Close() error {
	_ = l.sugar.Sync()
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
