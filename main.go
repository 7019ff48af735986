package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.opentelemetry.io/otel"
)

const shutdownTimeout = 10 * time.Second

func check(enabled bool) string {
	if enabled {
		return "✓"
	}
	return "✗"
}

func printBanner(out io.Writer, opts *Options) {
	fmt.Fprintln(out, "Mock Telemetry Generator")
	fmt.Fprintf(out, "   Service: %s\n", opts.Telemetry.Service)
	fmt.Fprintf(out, "   Duration: %ds | Interval: %ds\n", opts.Quantity.Duration, opts.Quantity.Interval)
	fmt.Fprintf(out, "   OTLP Endpoint: %s (%s)\n", opts.apihost, opts.Output.Protocol)
	fmt.Fprintf(out, "   Logs: %s", opts.Output.LogSink)
	if opts.Output.LogSink == "loki" {
		fmt.Fprintf(out, " %s", opts.lokihost)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "   Traces: %s | Metrics: %s | Logs: %s\n\n",
		check(!opts.Signals.NoTraces), check(!opts.Signals.NoMetrics), check(!opts.Signals.NoLogs))
}

func main() {
	cmdopts := newOptions()

	parser := flags.NewParser(cmdopts, flags.Default)
	parser.Usage = `[OPTIONS]

	mocktelemetry generates fake traces, metrics and logs for exercising an
	observability stack in development. Every interval it sends a batch of
	simulated API request traces (each with a database child span), a burst of
	request metrics and a set of structured log lines, until the duration runs
	out or it is interrupted.

	Traces and metrics go to an OTLP collector over gRPC or HTTP. Logs go to a
	Loki push endpoint by default, or through the collector as OTLP logs with
	--logsink=otlp. Use --sender=print to see everything on stdout instead.

	Options can be set in a config file, or on the command line; to specify them in the
	config file, specify it on the command line with "--config=FILENAME". The config file
	format is YAML; use --writecfg to produce one from the current options.

	Note: If a config file is used, it MUST be used for all options, except for the ones
	marked in the help text with (*) -- these fields CANNOT be set in the config file.
	`

	// read the command line and envvars into cmdargs
	args, err := parser.Parse()
	if err != nil {
		switch flagsErr := err.(type) {
		case *flags.Error:
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		log.Fatalf("error reading command line: %v", err)
	}
	if len(args) > 0 {
		log.Fatalf("unexpected arguments: %v", args)
	}

	opts := newOptions()
	if cmdopts.Global.Config != "" {
		if err := ReadConfig(opts, cmdopts.Global.Config); err != nil {
			log.Fatalf("err %v -- unable to read config file %s", err, cmdopts.Global.Config)
		}
		opts.CopyStarredFieldsFrom(cmdopts)
	} else {
		opts = cmdopts // we don't have to read from a file
	}

	if opts.Global.WriteCfg != "" {
		err := WriteConfig(opts, opts.Global.WriteCfg)
		if err != nil {
			log.Fatalf("unable to write config: %s\n", err)
		}
		os.Exit(0)
	}

	log := NewLogger(opts.Global.LogLevel)

	if err := opts.Validate(); err != nil {
		log.Fatal("invalid options: %v", err)
	}
	if err := opts.ResolveHosts(); err != nil {
		log.Fatal("%v", err)
	}

	if opts.Global.Seed == "" {
		opts.Global.Seed = newSeed()
	}

	if opts.Global.DebugPort > 0 {
		go func() {
			http.ListenAndServe(fmt.Sprintf("localhost:%d", opts.Global.DebugPort), nil)
		}()
	}

	log.Debug("host: %s, loki: %s, seed: %s, apikey: ...%4.4s", opts.apihost, opts.lokihost, opts.Global.Seed, opts.Telemetry.APIKey)
	printBanner(os.Stdout, opts)

	// catch ctrl-c and cancel the context so we can shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otel.SetErrorHandler(otelErrorHandler{log})

	emitter, err := NewEmitter(ctx, log, opts)
	if err != nil {
		log.Fatal("unable to set up telemetry: %v", err)
	}

	driver := NewDriver(log, os.Stdout, opts.RunTime(), opts.BatchInterval(),
		buildGenerators(log, opts, emitter, opts.Global.Seed)...)
	summary := driver.Run(ctx)
	PrintSummary(os.Stdout, summary)

	// the signal context may already be done, so flush with a fresh one
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := emitter.Shutdown(shutdownCtx); err != nil {
		log.Warn("error flushing telemetry: %v", err)
	}
}
