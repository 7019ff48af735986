package main

import (
	"fmt"
	"sync"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordingLogger keeps every formatted line by level.
type recordingLogger struct {
	mut   sync.Mutex
	lines map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{lines: make(map[string][]string)}
}

func (r *recordingLogger) record(level, format string, v ...interface{}) {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.lines[level] = append(r.lines[level], fmt.Sprintf(format, v...))
}

func (r *recordingLogger) Lines(level string) []string {
	r.mut.Lock()
	defer r.mut.Unlock()
	return append([]string(nil), r.lines[level]...)
}

func (r *recordingLogger) Debug(format string, v ...interface{}) { r.record("debug", format, v...) }
func (r *recordingLogger) Info(format string, v ...interface{})  { r.record("info", format, v...) }
func (r *recordingLogger) Warn(format string, v ...interface{})  { r.record("warn", format, v...) }
func (r *recordingLogger) Error(format string, v ...interface{}) { r.record("error", format, v...) }
func (r *recordingLogger) Fatal(format string, v ...interface{}) { r.record("fatal", format, v...) }

func noSleep(time.Duration) {}

func newRecordingSender() (*SenderOTel, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	return newSenderOTel(sdktrace.WithSpanProcessor(sr)), sr
}
