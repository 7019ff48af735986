package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Fatal(format string, v ...interface{})
}

type logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger returns a Logger writing to stderr at the given level
// (debug, info, warn or error). Unknown levels fall back to info.
func NewLogger(level string) Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), lvl)
	return &logger{sugar: zap.New(core).Sugar()}
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return &logger{sugar: zap.NewNop().Sugar()}
}

func (l *logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l *logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

func (l *logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *logger) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// otelErrorHandler routes errors from the OpenTelemetry SDK (failed exports,
// mostly) to our logger. They are never fatal for a mock generator.
type otelErrorHandler struct {
	Logger
}

func (h otelErrorHandler) Handle(err error) {
	h.Logger.Warn("telemetry export: %v", err)
}
