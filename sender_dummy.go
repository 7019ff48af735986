package main

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type dummySpan struct {
	sender *SenderDummy
	root   bool
	failed bool
}

func (s *dummySpan) StartChild(name string) Span {
	s.sender.spancount.Add(1)
	return &dummySpan{sender: s.sender}
}

func (s *dummySpan) SetAttributes(attrs ...attribute.KeyValue) {}

func (s *dummySpan) SetStatus(code codes.Code, description string) {
	s.failed = code == codes.Error
}

func (s *dummySpan) Send() {
	if s.root && s.failed {
		s.sender.errcount.Add(1)
	}
}

// SenderDummy throws spans away, only counting them. Useful for measuring
// the generators without a collector.
type SenderDummy struct {
	tracecount atomic.Int64
	spancount  atomic.Int64
	errcount   atomic.Int64
	log        Logger
}

// make sure it implements Sender
var _ Sender = (*SenderDummy)(nil)

func NewSenderDummy(log Logger) *SenderDummy {
	return &SenderDummy{log: log}
}

func (t *SenderDummy) Close(ctx context.Context) error {
	t.log.Info("sender sent %d traces with %d spans (%d errors)", t.tracecount.Load(), t.spancount.Load(), t.errcount.Load())
	return nil
}

func (t *SenderDummy) StartTrace(ctx context.Context, name string) Span {
	t.tracecount.Add(1)
	t.spancount.Add(1)
	return &dummySpan{sender: t, root: true}
}
