// Package instrumentation provides OpenTelemetry instrumentation for the
// inboxchat assistant.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - chat_active_sessions: Gauge of chat sessions held by the server
//
// Chat Metrics:
//   - chat_utterances_total: Counter of utterances by route and status
//   - chat_utterance_duration_seconds: Histogram of utterance handling time
//   - chat_query_result_size: Histogram of query match counts by intent
//   - chat_fallback_menus_total: Counter of zero-result menus by intent
//   - chat_actions_chosen_total: Counter of fallback actions by action and status
//   - chat_load_more_total: Counter of load more requests by outcome
//   - chat_pagination_evicted_total: Counter of idle pagination states dropped
//
// Mail provider and LLM Metrics:
//   - mail_provider_operations_total: Counter of provider calls by operation and status
//   - mail_provider_operation_duration_seconds: Histogram of provider call durations
//   - llm_requests_total: Counter of LLM completions by model and status
//   - llm_request_duration_seconds: Histogram of LLM completion durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Route and path labels pass through NormalizeRoute and NormalizePath.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>), mail provider
// calls (mail.<operation>) and LLM completions (llm.complete).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics, host:port without a scheme
//   - OTEL_EXPORTER_OTLP_INSECURE: Send OTLP without TLS (default: false)
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: inboxchat)
//   - METRICS_DETAILED_LABELS: Add the hashed session label to tool metrics (default: false)
//   - AUDIT_LOGGING_ENABLED: Write tool invocations to the audit log (default: true)
//   - AUDIT_LOGGING_INCLUDE_PII: Write utterance text to audit logs (default: false)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordUtterance(ctx, "unread", instrumentation.StatusSuccess, time.Since(start))
//	metrics.RecordMailOperation(ctx, instrumentation.MailOperationSearch, instrumentation.StatusTimeout, elapsed)
package instrumentation
