package main

// mocktelemetry generates fake telemetry for exercising an observability stack
// in development. Every interval it runs a batch made of three independent
// parts, each of which can be switched off:
//
// - traces: a number of simulated API requests. Each is a root span
// ("GET /api/orders" and so on) carrying http attributes, a user id and a
// client ip, with one db.query child span. Roughly one request in ten ends
// in error.
//
// - metrics: 10 to 30 simulated requests recorded on http_requests_total,
// http_errors_total (status 400 and up) and http_request_duration_seconds,
// labelled by endpoint, method and status. An active_connections gauge is
// sampled by the metric reader whenever it exports.
//
// - logs: a number of log lines from a handful of made-up services, grouped
// into streams by their labels and pushed to Loki in one request.
//
// Randomness is seeded (--seed), so two runs with the same seed produce the
// same data apart from timestamps and ids assigned by the SDK.
//
// Functionally, a single goroutine drives the batches. Simulated latency is a
// real sleep; exporters flush in the background on their own schedule. Log
// delivery is the only synchronous network call and is never retried.

// cmd/grpcsink and cmd/httpsink are small receivers that count what arrives,
// for trying things out without a collector.
