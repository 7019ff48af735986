package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	name     string
	mut      sync.Mutex
	calls    int
	generate func(ctx context.Context)
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(ctx context.Context) {
	f.mut.Lock()
	f.calls++
	f.mut.Unlock()
	if f.generate != nil {
		f.generate(ctx)
	}
}

func (f *fakeGenerator) Calls() int {
	f.mut.Lock()
	defer f.mut.Unlock()
	return f.calls
}

func TestDriver_RunsForDuration(t *testing.T) {
	traces := &fakeGenerator{name: "Traces"}
	metrics := &fakeGenerator{name: "Metrics"}
	logs := &fakeGenerator{name: "Logs"}
	var out bytes.Buffer

	// the same shape as duration=10 interval=5, scaled down
	d := NewDriver(NewNopLogger(), &out, 100*time.Millisecond, 50*time.Millisecond, traces, metrics, logs)
	require.Equal(t, Running, d.State())

	start := time.Now()
	sum := d.Run(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, Stopped, d.State())
	assert.False(t, sum.Interrupted)
	assert.GreaterOrEqual(t, sum.Iterations, 2)
	assert.LessOrEqual(t, sum.Iterations, 3)
	assert.Equal(t, sum.Iterations, traces.Calls())
	assert.Equal(t, sum.Iterations, metrics.Calls())
	assert.Equal(t, sum.Iterations, logs.Calls())
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)

	assert.Contains(t, out.String(), "Batch #1 | Traces ✓ | Metrics ✓ | Logs ✓ | ")
	assert.Regexp(t, `^\[\d\d:\d\d:\d\d\] Batch #1 `, out.String())
}

func TestDriver_OnlyEnabledGenerators(t *testing.T) {
	metrics := &fakeGenerator{name: "Metrics"}
	var out bytes.Buffer
	d := NewDriver(NewNopLogger(), &out, 10*time.Millisecond, 20*time.Millisecond, metrics)
	sum := d.Run(context.Background())

	assert.Equal(t, 1, sum.Iterations)
	assert.Contains(t, out.String(), "Batch #1 | Metrics ✓ | ")
	assert.NotContains(t, out.String(), "Traces")
	assert.NotContains(t, out.String(), "Logs")
}

func TestDriver_SlowBatchSkipsSleep(t *testing.T) {
	slow := &fakeGenerator{name: "Traces", generate: func(context.Context) {
		time.Sleep(30 * time.Millisecond)
	}}
	d := NewDriver(NewNopLogger(), &bytes.Buffer{}, 100*time.Millisecond, 10*time.Millisecond, slow)
	sum := d.Run(context.Background())

	// back to back batches of 30ms fit at most 4 times into 100ms
	assert.GreaterOrEqual(t, sum.Iterations, 2)
	assert.LessOrEqual(t, sum.Iterations, 4)
	assert.Equal(t, sum.Iterations, slow.Calls())
}

func TestDriver_InterruptDuringSleep(t *testing.T) {
	batchDone := make(chan struct{}, 1)
	gen := &fakeGenerator{name: "Logs", generate: func(context.Context) {
		select {
		case batchDone <- struct{}{}:
		default:
		}
	}}
	d := NewDriver(NewNopLogger(), &bytes.Buffer{}, 10*time.Second, 5*time.Second, gen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan Summary)
	go func() { done <- d.Run(ctx) }()

	<-batchDone
	start := time.Now()
	cancel()

	select {
	case sum := <-done:
		assert.Less(t, time.Since(start), time.Second)
		assert.True(t, sum.Interrupted)
		assert.Equal(t, 1, sum.Iterations)
		assert.Equal(t, Stopped, d.State())
	case <-time.After(5 * time.Second):
		t.Fatal("driver kept sleeping after the interrupt")
	}
}

func TestDriver_InterruptDuringBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &fakeGenerator{name: "Traces", generate: func(context.Context) { cancel() }}
	var laterErr error
	second := &fakeGenerator{name: "Metrics", generate: func(ctx context.Context) { laterErr = ctx.Err() }}

	d := NewDriver(NewNopLogger(), &bytes.Buffer{}, 10*time.Second, 5*time.Second, first, second)
	sum := d.Run(ctx)

	// the batch that saw the interrupt still finishes and counts
	assert.Equal(t, 1, second.Calls())
	assert.NoError(t, laterErr)
	assert.Equal(t, 1, sum.Iterations)
	assert.True(t, sum.Interrupted)
}

func TestDriver_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{name: "Traces"}
	sum := NewDriver(NewNopLogger(), &bytes.Buffer{}, time.Second, time.Second, gen).Run(ctx)
	assert.Zero(t, sum.Iterations)
	assert.True(t, sum.Interrupted)
	assert.Zero(t, gen.Calls())
}

func TestDriver_FakeClock(t *testing.T) {
	// batches that take exactly one interval leave no sleep, so duration=10
	// interval=5 runs two batches
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gen := &fakeGenerator{name: "Traces"}
	d := NewDriver(NewNopLogger(), &bytes.Buffer{}, 10*time.Second, 5*time.Second, gen)
	d.now = func() time.Time { return now }
	gen.generate = func(context.Context) { now = now.Add(5 * time.Second) }

	sum := d.Run(context.Background())
	assert.Equal(t, 2, sum.Iterations)
	assert.Equal(t, 10*time.Second, sum.Elapsed)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, Summary{Iterations: 3, Elapsed: 12340 * time.Millisecond})
	assert.Equal(t, "\nGenerated 3 batches in 12.3s\n", out.String())

	out.Reset()
	PrintSummary(&out, Summary{Iterations: 1, Elapsed: 2 * time.Second, Interrupted: true})
	assert.Equal(t, "\n\nInterrupted by user\n\nGenerated 1 batches in 2.0s\n", out.String())
}

func TestDriverState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "DriverState(7)", DriverState(7).String())
}
