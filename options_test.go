package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseHost(t *testing.T) {
	tests := []struct {
		name        string
		host        string
		insecure    bool
		defaultPort string
		want        string
	}{
		{"honeycomb alias", "honeycomb", false, "4317", "https://api.honeycomb.io:443"},
		{"dogfood alias", "dogfood", false, "4317", "https://api-dogfood.honeycomb.io:443"},
		{"local grpc", "local", false, "4317", "http://localhost:4317"},
		{"local http", "local", false, "4318", "http://localhost:4318"},
		{"scheme kept", "http://collector:4317", false, "4317", "http://collector:4317"},
		{"secure default", "collector", false, "4317", "https://collector:4317"},
		{"insecure default", "collector", true, "4318", "http://collector:4318"},
		{"explicit port", "Collector.Example.com:9999", true, "4317", "http://collector.example.com:9999"},
		{"loki path", "http://localhost:3100/loki/api/v1/push", false, "3100", "http://localhost:3100/loki/api/v1/push"},
		{"loki no port", "loki/loki/api/v1/push", true, "3100", "http://loki:3100/loki/api/v1/push"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := parseHost(tt.host, tt.insecure, tt.defaultPort)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := parseHost("not a host!", false, "4317")
		assert.Error(t, err)
		_, err = parseHost("", false, "4317")
		assert.Error(t, err)
	})
}

func validOptions() *Options {
	opts := newOptions()
	opts.Telemetry.Host = "http://localhost:4317"
	opts.Telemetry.Loki = "http://localhost:3100/loki/api/v1/push"
	opts.Telemetry.Service = "mock-telemetry-generator"
	opts.Telemetry.Environment = "development"
	opts.Quantity.Duration = 300
	opts.Quantity.Interval = 5
	opts.Quantity.Traces = 5
	opts.Quantity.Logs = 10
	opts.Output.Sender = "otel"
	opts.Output.Protocol = "grpc"
	opts.Output.LogSink = "loki"
	opts.Output.MetricInterval = 10 * time.Second
	return opts
}

func TestOptions_Defaults(t *testing.T) {
	opts := newOptions()
	_, err := flags.ParseArgs(opts, []string{})
	require.NoError(t, err)

	assert.Equal(t, 300, opts.Quantity.Duration)
	assert.Equal(t, 5, opts.Quantity.Interval)
	assert.Equal(t, 5, opts.Quantity.Traces)
	assert.Equal(t, 10, opts.Quantity.Logs)
	assert.Equal(t, "mock-telemetry-generator", opts.Telemetry.Service)
	assert.Equal(t, "development", opts.Telemetry.Environment)
	assert.Equal(t, "otel", opts.Output.Sender)
	assert.Equal(t, "loki", opts.Output.LogSink)
	assert.Equal(t, 10*time.Second, opts.Output.MetricInterval)
	assert.False(t, opts.Signals.NoTraces || opts.Signals.NoMetrics || opts.Signals.NoLogs)
	assert.Equal(t, 300*time.Second, opts.RunTime())
	assert.Equal(t, 5*time.Second, opts.BatchInterval())
}

func TestOptions_Flags(t *testing.T) {
	opts := newOptions()
	_, err := flags.ParseArgs(opts, []string{
		"--duration=10", "--interval=2", "--traces=1", "--logs=0",
		"--service=checkout", "--no-metrics", "--sender=print",
	})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, opts.RunTime())
	assert.Equal(t, 2*time.Second, opts.BatchInterval())
	assert.Equal(t, 1, opts.Quantity.Traces)
	assert.Equal(t, 0, opts.Quantity.Logs)
	assert.Equal(t, "checkout", opts.Telemetry.Service)
	assert.True(t, opts.Signals.NoMetrics)

	_, err = flags.ParseArgs(newOptions(), []string{"--sender=pigeon"})
	assert.Error(t, err)
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, validOptions().Validate())

	tests := []struct {
		name   string
		modify func(*Options)
		want   string
	}{
		{"zero duration", func(o *Options) { o.Quantity.Duration = 0 }, "duration"},
		{"negative interval", func(o *Options) { o.Quantity.Interval = -1 }, "interval"},
		{"negative traces", func(o *Options) { o.Quantity.Traces = -2 }, "traces"},
		{"negative logs", func(o *Options) { o.Quantity.Logs = -2 }, "logs"},
		{"honeycomb without key", func(o *Options) { o.Output.Sender = "honeycomb" }, "API key"},
		{"no metric interval", func(o *Options) { o.Output.MetricInterval = 0 }, "metricinterval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.modify(opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("all problems reported", func(t *testing.T) {
		opts := validOptions()
		opts.Quantity.Duration = 0
		opts.Quantity.Interval = 0
		err := opts.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duration")
		assert.Contains(t, err.Error(), "interval")
	})

	t.Run("zero counts are fine", func(t *testing.T) {
		opts := validOptions()
		opts.Quantity.Traces = 0
		opts.Quantity.Logs = 0
		assert.NoError(t, opts.Validate())
	})
}

func TestOptions_ResolveHosts(t *testing.T) {
	opts := validOptions()
	opts.Telemetry.Host = "collector"
	opts.Telemetry.Insecure = true
	opts.Output.Protocol = "http"
	require.NoError(t, opts.ResolveHosts())
	assert.Equal(t, "collector:4318", opts.apihost.Host)
	assert.True(t, opts.isInsecure())
	assert.Equal(t, "localhost:3100", opts.lokihost.Host)

	opts = validOptions()
	opts.Telemetry.Host = "honeycomb"
	require.NoError(t, opts.ResolveHosts())
	assert.False(t, opts.isInsecure())

	opts = validOptions()
	opts.Telemetry.Loki = "bad host!"
	assert.Error(t, opts.ResolveHosts())
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "config.yaml")

	opts := validOptions()
	opts.Quantity.Duration = 60
	opts.Signals.NoLogs = true
	opts.Telemetry.APIKey = "secret"
	require.NoError(t, WriteConfig(opts, filename))

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret", "starred options stay out of the config file")

	read := newOptions()
	require.NoError(t, ReadConfig(read, filename))
	assert.Equal(t, 60, read.Quantity.Duration)
	assert.True(t, read.Signals.NoLogs)
	assert.Empty(t, read.Telemetry.APIKey)

	read.CopyStarredFieldsFrom(opts)
	assert.Equal(t, "secret", read.Telemetry.APIKey)

	assert.Error(t, ReadConfig(newOptions(), filepath.Join(dir, "missing.yaml")))
}
