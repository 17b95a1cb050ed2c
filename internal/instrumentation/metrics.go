package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrRoute     = "route"
	attrIntent    = "intent"
	attrTool      = "tool"
	attrSession   = "session"
	attrAction    = "action"
	attrModel     = "model"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// Chat engine metrics
	utterancesTotal    metric.Int64Counter
	utteranceDuration  metric.Float64Histogram
	queryResultSize    metric.Int64Histogram
	fallbackMenusTotal metric.Int64Counter
	actionsChosenTotal metric.Int64Counter
	loadMoreTotal      metric.Int64Counter
	paginationEvicted  metric.Int64Counter

	// Mail provider metrics
	mailOperationsTotal   metric.Int64Counter
	mailOperationDuration metric.Float64Histogram

	// LLM metrics
	llmRequestsTotal   metric.Int64Counter
	llmRequestDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"chat_active_sessions",
		metric.WithDescription("Number of live chat sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_active_sessions gauge: %w", err)
	}

	// Chat engine metrics
	m.utterancesTotal, err = meter.Int64Counter(
		"chat_utterances_total",
		metric.WithDescription("Total number of processed utterances by route"),
		metric.WithUnit("{utterance}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_utterances_total counter: %w", err)
	}

	m.utteranceDuration, err = meter.Float64Histogram(
		"chat_utterance_duration_seconds",
		metric.WithDescription("Time to produce the assistant turn for an utterance"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_utterance_duration_seconds histogram: %w", err)
	}

	m.queryResultSize, err = meter.Int64Histogram(
		"chat_query_result_size",
		metric.WithDescription("Total matches per executed query"),
		metric.WithUnit("{email}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_query_result_size histogram: %w", err)
	}

	m.fallbackMenusTotal, err = meter.Int64Counter(
		"chat_fallback_menus_total",
		metric.WithDescription("Total number of zero-result queries answered with an action menu"),
		metric.WithUnit("{menu}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_fallback_menus_total counter: %w", err)
	}

	m.actionsChosenTotal, err = meter.Int64Counter(
		"chat_actions_chosen_total",
		metric.WithDescription("Total number of fallback actions run"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_actions_chosen_total counter: %w", err)
	}

	m.loadMoreTotal, err = meter.Int64Counter(
		"chat_load_more_total",
		metric.WithDescription("Total number of load more requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_load_more_total counter: %w", err)
	}

	m.paginationEvicted, err = meter.Int64Counter(
		"chat_pagination_evicted_total",
		metric.WithDescription("Total number of pagination states dropped by the janitor"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_pagination_evicted_total counter: %w", err)
	}

	// Mail provider metrics
	m.mailOperationsTotal, err = meter.Int64Counter(
		"mail_provider_operations_total",
		metric.WithDescription("Total number of mail provider operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_provider_operations_total counter: %w", err)
	}

	m.mailOperationDuration, err = meter.Float64Histogram(
		"mail_provider_operation_duration_seconds",
		metric.WithDescription("Mail provider operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_provider_operation_duration_seconds histogram: %w", err)
	}

	// LLM metrics
	m.llmRequestsTotal, err = meter.Int64Counter(
		"llm_requests_total",
		metric.WithDescription("Total number of LLM completion requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_requests_total counter: %w", err)
	}

	m.llmRequestDuration, err = meter.Float64Histogram(
		"llm_request_duration_seconds",
		metric.WithDescription("LLM completion latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm_request_duration_seconds histogram: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, NormalizePath(path)),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUtterance records one processed utterance.
//
// Parameters:
//   - route: how the utterance was handled (an intent kind, "load_more",
//     "action", "resolved", "generic", "clear")
//   - status: "success" or "error"
//   - duration: time until the assistant turn was appended
func (m *Metrics) RecordUtterance(ctx context.Context, route, status string, duration time.Duration) {
	if m == nil || m.utterancesTotal == nil || m.utteranceDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrRoute, NormalizeRoute(route)),
		attribute.String(attrStatus, status),
	}

	m.utterancesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.utteranceDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordQueryResult records the total match count of an executed query.
func (m *Metrics) RecordQueryResult(ctx context.Context, intent string, total int) {
	if m == nil || m.queryResultSize == nil {
		return // Instrumentation not initialized
	}

	m.queryResultSize.Record(ctx, int64(total), metric.WithAttributes(attribute.String(attrIntent, intent)))
}

// RecordFallbackMenu records a zero-result query answered with a menu.
func (m *Metrics) RecordFallbackMenu(ctx context.Context, intent string) {
	if m == nil || m.fallbackMenusTotal == nil {
		return // Instrumentation not initialized
	}

	m.fallbackMenusTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrIntent, intent)))
}

// RecordActionChosen records a fallback action being run.
func (m *Metrics) RecordActionChosen(ctx context.Context, action, status string) {
	if m == nil || m.actionsChosenTotal == nil {
		return // Instrumentation not initialized
	}

	m.actionsChosenTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrStatus, status),
	))
}

// RecordLoadMore records a load more request. Status is "success",
// "exhausted" or "error".
func (m *Metrics) RecordLoadMore(ctx context.Context, status string) {
	if m == nil || m.loadMoreTotal == nil {
		return // Instrumentation not initialized
	}

	m.loadMoreTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordPaginationEvicted records pagination states dropped by the janitor.
func (m *Metrics) RecordPaginationEvicted(ctx context.Context, n int) {
	if m == nil || m.paginationEvicted == nil || n <= 0 {
		return
	}

	m.paginationEvicted.Add(ctx, int64(n))
}

// RecordMailOperation records a mail provider operation.
//
// Parameters:
//   - operation: "search", "refresh", "get"
//   - status: Result status ("success", "error" or "timeout")
//   - duration: Time taken for the operation
func (m *Metrics) RecordMailOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.mailOperationsTotal == nil || m.mailOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.mailOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.mailOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordLLMRequest records one completion request.
func (m *Metrics) RecordLLMRequest(ctx context.Context, model, status string, duration time.Duration) {
	if m == nil || m.llmRequestsTotal == nil || m.llmRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrModel, model),
		attribute.String(attrStatus, status),
	}

	m.llmRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.llmRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithSession(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithSession records an MCP tool invocation with the
// session id. The session label is only added when detailedLabels is set.
func (m *Metrics) RecordToolInvocationWithSession(ctx context.Context, toolName, status, session string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && session != "" {
		attrs = append(attrs, attribute.String(attrSession, session))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, -1)
}
