package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/honeycombio/mocktelemetry/internal/sink"
	collectorlogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetrics "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	collectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
)

// Options defines the command line arguments
type Options struct {
	Port int `long:"port" description:"Port number to listen on for HTTP" default:"4318"`
}

// readBody returns the request body, decompressed if needed.
func readBody(r *http.Request) ([]byte, error) {
	var reader io.ReadCloser = r.Body
	switch r.Header.Get("Content-Encoding") {
	case "gzip":
		var err error
		reader, err = gzip.NewReader(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip data: %w", err)
		}
		defer reader.Close()
	}
	return io.ReadAll(reader)
}

// otlpHandler decodes an OTLP export request of either encoding into a fresh
// msg from newMsg and hands it to add.
func otlpHandler[T proto.Message](log *zap.SugaredLogger, newMsg func() T, add func(T)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		log.Debugf("received request on %s", r.URL.Path)
		defer r.Body.Close()

		body, err := readBody(r)
		if err != nil {
			http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		msg := newMsg()
		// Process based on content type, defaulting to protobuf
		contentType := r.Header.Get("Content-Type")
		switch contentType {
		case "application/json":
			if err := protojson.Unmarshal(body, msg); err != nil {
				http.Error(w, "Invalid JSON data", http.StatusBadRequest)
				return
			}
			add(msg)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
		default:
			if err := proto.Unmarshal(body, msg); err != nil {
				http.Error(w, "Invalid protobuf data", http.StatusBadRequest)
				return
			}
			add(msg)
			w.Header().Set("Content-Type", "application/x-protobuf")
			w.WriteHeader(http.StatusOK)
		}
	}
}

// lokiHandler accepts Loki JSON pushes and answers 204 like Loki does.
func lokiHandler(log *zap.SugaredLogger, tally *sink.Tally) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		body, err := readBody(r)
		if err != nil {
			http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		var push sink.LokiPush
		if err := json.Unmarshal(body, &push); err != nil {
			http.Error(w, "Invalid JSON data", http.StatusBadRequest)
			return
		}
		log.Debugf("received %d loki streams", len(push.Streams))
		tally.AddLoki(&push)
		w.WriteHeader(http.StatusNoContent)
	}
}

func newMux(log *zap.SugaredLogger, tally *sink.Tally) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/traces", otlpHandler(log,
		func() *collectortrace.ExportTraceServiceRequest { return &collectortrace.ExportTraceServiceRequest{} },
		tally.AddTraces))
	mux.HandleFunc("/v1/metrics", otlpHandler(log,
		func() *collectormetrics.ExportMetricsServiceRequest {
			return &collectormetrics.ExportMetricsServiceRequest{}
		},
		tally.AddMetrics))
	mux.HandleFunc("/v1/logs", otlpHandler(log,
		func() *collectorlogs.ExportLogsServiceRequest { return &collectorlogs.ExportLogsServiceRequest{} },
		tally.AddLogs))
	mux.HandleFunc("/loki/api/v1/push", lokiHandler(log, tally))
	return mux
}

func initHTTPReceiver(ctx context.Context, log *zap.SugaredLogger, opts Options, tally *sink.Tally) {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: newMux(log, tally),
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("HTTP server listening on port %d", opts.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	// Handle shutdown
	go func() {
		<-ctx.Done()
		log.Info("Stopping HTTP server...")

		// Create a timeout context for shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error during server shutdown: %v", err)
		}
	}()
}

func main() {
	var opts Options

	// Parse command line arguments
	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	log.Infof("Starting HTTP sink server on port %d", opts.Port)

	// Create context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tally := sink.NewTally(log)
	initHTTPReceiver(ctx, log, opts, tally)

	// Wait for termination signal
	<-ctx.Done()

	fmt.Printf("\n%s received this session\n", tally.Counts())
	log.Info("Shutting down gracefully...")
}
