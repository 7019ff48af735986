package main

import (
	"context"
	"fmt"
	"time"
)

var logServices = []string{"api-gateway", "user-service", "order-service", "payment-service"}

// Labels identify a log stream. Entries with equal labels share a stream.
type Labels struct {
	Service     string
	Level       string
	Environment string
}

func (l Labels) Map() map[string]string {
	return map[string]string{
		"service":     l.Service,
		"level":       l.Level,
		"environment": l.Environment,
	}
}

type LogValue struct {
	Timestamp time.Time
	Message   string
}

type LogEntry struct {
	Labels Labels
	LogValue
}

type LogStream struct {
	Labels Labels
	Values []LogValue
}

// GroupStreams coalesces entries with identical labels into one stream each.
// Streams come out in the order their labels first appear, and values keep
// their relative order.
func GroupStreams(entries []LogEntry) []LogStream {
	index := make(map[Labels]int)
	var streams []LogStream
	for _, e := range entries {
		i, ok := index[e.Labels]
		if !ok {
			i = len(streams)
			index[e.Labels] = i
			streams = append(streams, LogStream{Labels: e.Labels})
		}
		streams[i].Values = append(streams[i].Values, e.LogValue)
	}
	return streams
}

// LogGenerator produces count log lines per batch and hands them to its
// sink in a single push.
type LogGenerator struct {
	sink  LogSink
	count int
	env   string
	rng   Rng
	log   Logger
	now   func() time.Time
}

// make sure it implements Generator
var _ Generator = (*LogGenerator)(nil)

func NewLogGenerator(sink LogSink, count int, env string, rng Rng, log Logger) *LogGenerator {
	return &LogGenerator{
		sink:  sink,
		count: count,
		env:   env,
		rng:   rng,
		log:   log,
		now:   time.Now,
	}
}

func (g *LogGenerator) Name() string {
	return "Logs"
}

func (g *LogGenerator) Generate(ctx context.Context) {
	streams := GroupStreams(g.entries())
	if err := g.sink.Push(ctx, streams); err != nil {
		g.log.Warn("failed to send logs: %v", err)
		return
	}
	g.log.Debug("sent %d log lines in %d streams", g.count, len(streams))
}

func (g *LogGenerator) entries() []LogEntry {
	entries := make([]LogEntry, 0, g.count)
	for i := 0; i < g.count; i++ {
		level := LogLevels.Sample(g.rng)
		entries = append(entries, LogEntry{
			Labels: Labels{
				Service:     g.rng.Choice(logServices),
				Level:       level,
				Environment: g.env,
			},
			LogValue: LogValue{
				Timestamp: g.now(),
				Message:   g.message(level),
			},
		})
	}
	return entries
}

func (g *LogGenerator) message(level string) string {
	switch level {
	case LevelDebug:
		return fmt.Sprintf("Processing request for user %s", g.rng.UUID())
	case LevelInfo:
		return fmt.Sprintf("%s logged in from %s", g.rng.UserName(), g.rng.IPv4())
	case LevelWarn:
		return fmt.Sprintf("High latency detected: %dms", g.rng.Int(1000, 3000))
	case LevelError:
		return fmt.Sprintf("Failed to connect to database: %s", g.rng.Word())
	default:
		return "Generic log message"
	}
}
