// Package server holds the process-wide state behind the MCP tools.
//
// ServerContext keeps one assistant.Engine per chat session. Engines are
// created on first use from a shared template and start from a copy of
// the shared mailbox, so every session has its own conversation log,
// pagination state and action menu. A janitor goroutine drops sessions
// that have been idle longer than the configured timeout.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed, and
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
