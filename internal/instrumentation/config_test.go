package instrumentation

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	c := ConfigFromEnv(envMap(nil))

	if c.ServiceName != "inboxchat" {
		t.Errorf("ServiceName = %q, want inboxchat", c.ServiceName)
	}
	if !c.Enabled {
		t.Error("instrumentation should default to enabled")
	}
	if c.MetricsExporter != ExporterPrometheus || c.TracingExporter != ExporterNone {
		t.Errorf("exporters = %q/%q, want prometheus/none", c.MetricsExporter, c.TracingExporter)
	}
	if c.TraceSamplingRate != 0.1 {
		t.Errorf("TraceSamplingRate = %g, want 0.1", c.TraceSamplingRate)
	}
	if c.DetailedLabels {
		t.Error("detailed labels add the session label and must be opt-in")
	}
	if !c.AuditLogging.Enabled || c.AuditLogging.IncludePII {
		t.Errorf("audit = %+v, want enabled without utterance text", c.AuditLogging)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	c := ConfigFromEnv(envMap(map[string]string{
		EnvServiceName:       "chat-dev",
		EnvEnabled:           "false",
		EnvMetricsExporter:   ExporterOTLP,
		EnvTracingExporter:   ExporterStdout,
		EnvOTLPEndpoint:      " collector:4318 ",
		EnvOTLPInsecure:      "1",
		EnvTraceSamplingRate: "0.5",
		EnvDetailedLabels:    "true",
		EnvAuditEnabled:      "false",
		EnvAuditIncludePII:   "true",
	}))

	want := Config{
		ServiceName:       "chat-dev",
		ServiceVersion:    "unknown",
		Enabled:           false,
		MetricsExporter:   ExporterOTLP,
		TracingExporter:   ExporterStdout,
		OTLPEndpoint:      "collector:4318",
		OTLPInsecure:      true,
		TraceSamplingRate: 0.5,
		DetailedLabels:    true,
		AuditLogging:      AuditLoggingConfig{Enabled: false, IncludePII: true},
	}
	if c != want {
		t.Errorf("got %+v\nwant %+v", c, want)
	}
}

func TestConfigFromEnv_UnparsableFallsBack(t *testing.T) {
	c := ConfigFromEnv(envMap(map[string]string{
		EnvEnabled:           "sometimes",
		EnvTraceSamplingRate: "lots",
		EnvAuditIncludePII:   "maybe",
	}))

	if !c.Enabled {
		t.Error("unparsable bool should keep the default")
	}
	if c.TraceSamplingRate != 0.1 {
		t.Errorf("TraceSamplingRate = %g, want default 0.1", c.TraceSamplingRate)
	}
	if c.AuditLogging.IncludePII {
		t.Error("unparsable PII flag must not enable utterance logging")
	}
}

func TestDefaultConfig_ReadsProcessEnv(t *testing.T) {
	t.Setenv(EnvServiceName, "from-env")
	t.Setenv(EnvAuditIncludePII, "true")

	c := DefaultConfig()
	if c.ServiceName != "from-env" {
		t.Errorf("ServiceName = %q, want from-env", c.ServiceName)
	}
	if !c.AuditLogging.IncludePII {
		t.Error("AUDIT_LOGGING_INCLUDE_PII not applied")
	}
}

// The PII flag decides whether the audit stream carries the utterance text
// or only its length.
func TestConfigFromEnv_IncludePIIControlsUtteranceText(t *testing.T) {
	for _, tt := range []struct {
		value    string
		wantText bool
	}{
		{value: "", wantText: false},
		{value: "false", wantText: false},
		{value: "true", wantText: true},
	} {
		t.Run("pii="+tt.value, func(t *testing.T) {
			c := ConfigFromEnv(envMap(map[string]string{EnvAuditIncludePII: tt.value}))

			var buf bytes.Buffer
			al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), c.AuditLogging)
			al.LogToolInvocation(NewToolInvocation(testToolSend).
				WithSession(testSession).
				WithUtterance(testUtterance).
				CompleteSuccess())

			out := buf.String()
			if got := strings.Contains(out, testUtterance); got != tt.wantText {
				t.Errorf("utterance text logged = %v, want %v:\n%s", got, tt.wantText, out)
			}
			if !tt.wantText && !strings.Contains(out, `"utterance_len"`) {
				t.Errorf("redacted record should carry utterance_len:\n%s", out)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr []string
	}{
		{
			name:   "prometheus without tracing",
			config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1},
		},
		{
			name:   "otlp with endpoint",
			config: Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318", TraceSamplingRate: 1},
		},
		{
			name:    "sampling rate out of range",
			config:  Config{TraceSamplingRate: 1.5},
			wantErr: []string{"sampling rate"},
		},
		{
			name:    "otlp without endpoint",
			config:  Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP},
			wantErr: []string{"otlp metrics exporter", "otlp tracing exporter"},
		},
		{
			name:    "endpoint with scheme",
			config:  Config{TracingExporter: ExporterOTLP, OTLPEndpoint: "http://localhost:4318"},
			wantErr: []string{"must not carry a scheme"},
		},
		{
			name:    "every problem reported",
			config:  Config{MetricsExporter: "graphite", TracingExporter: "zipkin", TraceSamplingRate: -1},
			wantErr: []string{"sampling rate", "graphite", "zipkin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestNewProvider_RejectsInvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 2,
	})
	if err == nil || !strings.Contains(err.Error(), "sampling rate") {
		t.Errorf("expected sampling rate error, got %v", err)
	}
}

func TestLabelValues(t *testing.T) {
	// Dashboards and alerts select on these strings.
	for got, want := range map[string]string{
		StatusSuccess:        "success",
		StatusError:          "error",
		StatusTimeout:        "timeout",
		LoadMoreExhausted:    "exhausted",
		RouteLoadMore:        "load_more",
		RouteAction:          "action",
		RouteResolved:        "resolved",
		RouteGeneric:         "generic",
		RouteClear:           "clear",
		MailOperationSearch:  "search",
		MailOperationRefresh: "refresh",
		MailOperationGet:     "get",
	} {
		if got != want {
			t.Errorf("label %q, want %q", got, want)
		}
	}
}
