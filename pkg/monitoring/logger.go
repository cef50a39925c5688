// Package monitoring provides the engine's structured logging and
// metrics surface: a zap-backed Logger with the reference node's
// WithField/WithFields chaining, and a prometheus Metrics registry.
package monitoring

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger, accumulating structured fields
// across WithField/WithFields calls the way the reference node's
// hand-rolled logger did, but backed by zap's leveled, structured core.
type Logger struct {
	base *zap.SugaredLogger
}

// NewLogger builds a Logger writing JSON-structured logs to stdout at
// the given level.
func NewLogger(level zapcore.Level) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.Lock(os.Stdout),
		level,
	)
	return &Logger{base: zap.New(core).Sugar()}
}

// WithField returns a Logger with key=value added to every subsequent
// entry, leaving the receiver unchanged.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{base: l.base.With(key, value)}
}

// WithFields returns a Logger with every key=value pair added,
// leaving the receiver unchanged.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{base: l.base.With(args...)}
}

func (l *Logger) Debug(msg string)                          { l.base.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.base.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.base.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.base.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.base.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.base.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.base.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.base.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.base.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.base.Fatalf(format, args...) }

// Sync flushes any buffered log entries; callers should defer it in
// cmd/ledgerd's entry point.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

var global = NewLogger(zapcore.InfoLevel)

// SetGlobalLevel rebuilds the package-level logger at the given level.
func SetGlobalLevel(level zapcore.Level) {
	global = NewLogger(level)
}

func Debug(msg string)                          { global.Debug(msg) }
func Debugf(format string, args ...interface{}) { global.Debugf(format, args...) }
func Info(msg string)                           { global.Info(msg) }
func Infof(format string, args ...interface{})  { global.Infof(format, args...) }
func Warn(msg string)                           { global.Warn(msg) }
func Warnf(format string, args ...interface{})  { global.Warnf(format, args...) }
func Error(msg string)                          { global.Error(msg) }
func Errorf(format string, args ...interface{}) { global.Errorf(format, args...) }
func Fatal(msg string)                          { global.Fatal(msg) }
func Fatalf(format string, args ...interface{}) { global.Fatalf(format, args...) }
