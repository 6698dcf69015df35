// Package tracing integrates OpenTelemetry with the task runtime: every task
// run is recorded as a span named after the task. Without an installed
// provider spans are no-ops.
package tracing
