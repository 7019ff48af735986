package main

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func splitRoots(spans []sdktrace.ReadOnlySpan) (roots []sdktrace.ReadOnlySpan, children map[trace.SpanID][]sdktrace.ReadOnlySpan) {
	children = make(map[trace.SpanID][]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		if s.Parent().IsValid() {
			children[s.Parent().SpanID()] = append(children[s.Parent().SpanID()], s)
		} else {
			roots = append(roots, s)
		}
	}
	return roots, children
}

func TestTraceGenerator_Generate(t *testing.T) {
	sender, sr := newRecordingSender()
	gen := NewTraceGenerator(sender, 7, NewRng("traces"), NewNopLogger())
	gen.sleep = noSleep

	gen.Generate(context.Background())

	roots, children := splitRoots(sr.Ended())
	require.Len(t, roots, 7)
	require.Len(t, sr.Ended(), 14)

	namePattern := regexp.MustCompile(`^(GET|POST|PUT|DELETE) /api/(users|products|orders|payments|inventory)$`)
	for _, root := range roots {
		assert.Regexp(t, namePattern, root.Name())
		assert.Equal(t, trace.SpanKindServer, root.SpanKind())

		attrs := attrMap(root.Attributes())
		assert.Contains(t, traceMethods, attrs["http.method"].AsString())
		assert.Regexp(t, `^https://api\.example\.com/api/`, attrs["http.url"].AsString())
		assert.Contains(t, StatusCodes.Values(), int(attrs["http.status_code"].AsInt64()))
		assert.NotEmpty(t, attrs["user.id"].AsString())
		assert.NotEmpty(t, attrs["client.ip"].AsString())

		kids := children[root.SpanContext().SpanID()]
		require.Len(t, kids, 1, "root %s", root.Name())
		query := kids[0]
		assert.Equal(t, "db.query", query.Name())
		assert.Equal(t, root.SpanContext().TraceID(), query.SpanContext().TraceID())
		assert.Equal(t, trace.SpanKindClient, query.SpanKind())

		qattrs := attrMap(query.Attributes())
		assert.Equal(t, "postgresql", qattrs["db.system"].AsString())
		assert.Regexp(t, `^SELECT \* FROM (users|products|orders|payments|inventory) WHERE id = \$1$`, qattrs["db.statement"].AsString())
	}
}

func TestTraceGenerator_ZeroCount(t *testing.T) {
	sender, sr := newRecordingSender()
	gen := NewTraceGenerator(sender, 0, NewRng("none"), NewNopLogger())
	gen.sleep = noSleep
	gen.Generate(context.Background())
	assert.Empty(t, sr.Ended())
}

func TestTraceGenerator_Status(t *testing.T) {
	sender, sr := newRecordingSender()
	const n = 3000
	gen := NewTraceGenerator(sender, n, NewRng("status"), NewNopLogger())
	gen.sleep = noSleep
	gen.Generate(context.Background())

	roots, _ := splitRoots(sr.Ended())
	require.Len(t, roots, n)
	errs := 0
	for _, root := range roots {
		attrs := attrMap(root.Attributes())
		switch root.Status().Code {
		case codes.Error:
			errs++
			assert.Equal(t, traceErrorMessage, root.Status().Description)
			assert.True(t, attrs["error"].AsBool())
		case codes.Ok:
			_, hasError := attrs["error"]
			assert.False(t, hasError)
		default:
			t.Fatalf("root %s left with status %v", root.Name(), root.Status().Code)
		}
	}
	assert.InDelta(t, traceErrorRate, float64(errs)/n, 0.03)
}

func TestTraceGenerator_Sleeps(t *testing.T) {
	sender, _ := newRecordingSender()
	gen := NewTraceGenerator(sender, 50, NewRng("sleeps"), NewNopLogger())
	var mut sync.Mutex
	var sleeps []time.Duration
	gen.sleep = func(d time.Duration) {
		mut.Lock()
		sleeps = append(sleeps, d)
		mut.Unlock()
	}
	gen.Generate(context.Background())

	// request work then query work, once per trace
	require.Len(t, sleeps, 100)
	for i := 0; i < len(sleeps); i += 2 {
		assert.GreaterOrEqual(t, sleeps[i], 10*time.Millisecond)
		assert.Less(t, sleeps[i], 500*time.Millisecond)
		assert.GreaterOrEqual(t, sleeps[i+1], 5*time.Millisecond)
		assert.Less(t, sleeps[i+1], 100*time.Millisecond)
	}
}
