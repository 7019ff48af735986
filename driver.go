package main

import (
	"context"
	"fmt"
	"io"
	"time"
)

type DriverState int

const (
	Running DriverState = iota
	Stopped
)

func (s DriverState) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("DriverState(%d)", int(s))
	}
}

// Summary describes a finished run. Iterations counts only batches that
// ran to completion.
type Summary struct {
	Iterations  int
	Elapsed     time.Duration
	Interrupted bool
}

// Driver runs its generators once per interval until the duration is used
// up or its context is cancelled.
type Driver struct {
	generators []Generator
	duration   time.Duration
	interval   time.Duration
	out        io.Writer
	log        Logger
	now        func() time.Time
	state      DriverState
}

func NewDriver(log Logger, out io.Writer, duration, interval time.Duration, generators ...Generator) *Driver {
	return &Driver{
		generators: generators,
		duration:   duration,
		interval:   interval,
		out:        out,
		log:        log,
		now:        time.Now,
		state:      Running,
	}
}

func (d *Driver) State() DriverState {
	return d.state
}

// Run blocks until the driver stops. A cancelled context stops it at once
// while it's sleeping; a batch that has already started is allowed to
// finish first.
func (d *Driver) Run(ctx context.Context) Summary {
	var sum Summary
	start := d.now()
	// an interrupt shouldn't abort the batch it lands in
	batchCtx := context.WithoutCancel(ctx)

	for d.state == Running {
		if ctx.Err() != nil {
			sum.Interrupted = true
			break
		}
		if d.now().Sub(start) >= d.duration {
			break
		}

		elapsed := d.batch(batchCtx, sum.Iterations+1)
		sum.Iterations++

		if !d.wait(ctx, d.interval-elapsed) {
			sum.Interrupted = true
			break
		}
	}

	d.state = Stopped
	sum.Elapsed = d.now().Sub(start)
	d.log.Debug("driver stopped after %d batches (interrupted: %t)", sum.Iterations, sum.Interrupted)
	return sum
}

// batch runs every generator once, printing a progress line, and returns
// how long it took.
func (d *Driver) batch(ctx context.Context, n int) time.Duration {
	batchStart := d.now()
	fmt.Fprintf(d.out, "[%s] Batch #%d", batchStart.Format("15:04:05"), n)
	for _, g := range d.generators {
		g.Generate(ctx)
		fmt.Fprintf(d.out, " | %s ✓", g.Name())
	}
	elapsed := d.now().Sub(batchStart)
	fmt.Fprintf(d.out, " | %.2fs\n", elapsed.Seconds())
	return elapsed
}

// wait sleeps for dur, returning false if ctx was cancelled first.
func (d *Driver) wait(ctx context.Context, dur time.Duration) bool {
	if dur <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func PrintSummary(out io.Writer, sum Summary) {
	if sum.Interrupted {
		fmt.Fprintln(out, "\n\nInterrupted by user")
	}
	fmt.Fprintf(out, "\nGenerated %d batches in %.1fs\n", sum.Iterations, sum.Elapsed.Seconds())
}
