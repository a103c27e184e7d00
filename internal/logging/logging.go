// Package logging wraps go.uber.org/zap behind a small interface so the
// rest of miniresp never imports zap directly. There's no log-file
// rotation here — just stdout/stderr through zap's console encoder — since
// this server never writes logs to a file.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the subset of zap's SugaredLogger miniresp's server/router
// layers and CLI actually call.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}

type zapLogger struct {
	sugared *zap.SugaredLogger
}

func (l zapLogger) Debugf(template string, args ...any) { l.sugared.Debugf(template, args...) }
func (l zapLogger) Infof(template string, args ...any)  { l.sugared.Infof(template, args...) }
func (l zapLogger) Warnf(template string, args ...any)  { l.sugared.Warnf(template, args...) }
func (l zapLogger) Errorf(template string, args ...any) { l.sugared.Errorf(template, args...) }

// New builds a Logger writing console-formatted lines to stderr at the
// given level ("debug", "info", "warn", or "error"; anything else falls
// back to "info").
func New(level string) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), toZapLevel(level))
	return zapLogger{sugared: zap.New(core).Sugar()}
}

func toZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Nop returns a Logger that discards everything, useful in tests that
// don't care about log output.
func Nop() Logger { return zapLogger{sugared: zap.NewNop().Sugar()} }
