package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/inboxchat/internal/logging"
)

// ToolInvocation captures one chat tool call for audit logging.
//
// # Privacy Considerations
//
// Session and Utterance identify what a user asked. LogAttrs hashes the
// session and drops the utterance text; only LogAuditAttrs writes them.
type ToolInvocation struct {
	Tool string

	// Chat context
	Session   string
	Utterance string
	Route     string // intent kind or follow-up route the engine took
	QueryID   string
	Results   int
	Response  string // response kind: text, emails, actions

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns attributes safe for operational logs.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Session != "" {
		attrs = append(attrs, slog.String("session", logging.SessionHash(ti.Session)))
	}
	if ti.Utterance != "" {
		attrs = append(attrs, slog.Int("utterance_len", len(ti.Utterance)))
	}
	attrs = append(attrs, ti.commonAttrs()...)
	return attrs
}

// LogAuditAttrs returns attributes for the audit stream, including the raw
// session id and the utterance text.
//
// # Security Warning
//
// Utterances may contain names, addresses and other personal data. Route
// audit logs to storage with appropriate access controls.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Session != "" {
		attrs = append(attrs, slog.String("session", ti.Session))
	}
	if ti.Utterance != "" {
		attrs = append(attrs, slog.String("utterance", ti.Utterance))
	}
	attrs = append(attrs, ti.commonAttrs()...)
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

func (ti *ToolInvocation) commonAttrs() []slog.Attr {
	var attrs []slog.Attr
	if ti.Route != "" {
		attrs = append(attrs, slog.String("route", ti.Route))
	}
	if ti.Response != "" {
		attrs = append(attrs, slog.String("response", ti.Response))
	}
	if ti.QueryID != "" {
		attrs = append(attrs, slog.String("query_id", ti.QueryID))
		attrs = append(attrs, slog.Int("results", ti.Results))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithSession sets the chat session id.
func (ti *ToolInvocation) WithSession(session string) *ToolInvocation {
	ti.Session = session
	return ti
}

// WithUtterance sets the text the user sent.
func (ti *ToolInvocation) WithUtterance(text string) *ToolInvocation {
	ti.Utterance = text
	return ti
}

// WithResult records what the engine answered.
func (ti *ToolInvocation) WithResult(response, queryID string, results int) *ToolInvocation {
	ti.Response = response
	ti.QueryID = queryID
	ti.Results = results
	return ti
}

// WithRoute sets the route the engine took.
func (ti *ToolInvocation) WithRoute(route string) *ToolInvocation {
	ti.Route = route
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger writes tool invocations as structured log records.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an AuditLogger that hashes sessions and omits
// utterance text.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// WithLogger returns a copy writing to logger.
func (al *AuditLogger) WithLogger(logger *slog.Logger) *AuditLogger {
	if al == nil || logger == nil {
		return al
	}
	cp := *al
	cp.logger = logger
	return &cp
}

// SetIncludePII sets whether utterance text and raw sessions are logged.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs ti with the attributes the PII setting allows.
// A nil logger is a no-op.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled || ti == nil {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = ti.LogAuditAttrs()
	} else {
		attrs = ti.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
