package instrumentation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvServiceName       = "OTEL_SERVICE_NAME"
	EnvServiceInstanceID = "OTEL_SERVICE_INSTANCE_ID"
	EnvEnabled           = "INSTRUMENTATION_ENABLED"
	EnvMetricsExporter   = "METRICS_EXPORTER"
	EnvTracingExporter   = "TRACING_EXPORTER"
	EnvOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvTraceSamplingRate = "OTEL_TRACES_SAMPLER_ARG"
	EnvDetailedLabels    = "METRICS_DETAILED_LABELS"
	EnvAuditEnabled      = "AUDIT_LOGGING_ENABLED"
	EnvAuditIncludePII   = "AUDIT_LOGGING_INCLUDE_PII"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// ServiceInstanceID defaults to the hostname when empty.
	ServiceInstanceID string

	// Enabled turns metrics and tracing on. A disabled provider still hands
	// out a no-op Metrics and the audit logger.
	Enabled bool

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string
	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string

	// OTLPEndpoint is host:port without a scheme, e.g. "localhost:4318".
	OTLPEndpoint string
	// OTLPInsecure sends OTLP over plain HTTP. Local collectors only.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based ratio sampler argument.
	TraceSamplingRate float64

	// DetailedLabels adds the hashed session label to tool metrics.
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	Enabled bool

	// IncludePII writes utterance text and raw session ids. Off by default:
	// sessions are hashed and only the utterance length is logged.
	IncludePII bool
}

// DefaultConfig reads the configuration from the process environment.
func DefaultConfig() Config {
	return ConfigFromEnv(os.Getenv)
}

// ConfigFromEnv builds a Config from getenv. Unset or unparsable values
// fall back to the defaults.
func ConfigFromEnv(getenv func(string) string) Config {
	e := env(getenv)
	return Config{
		ServiceName:       e.str(EnvServiceName, "inboxchat"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: e.str(EnvServiceInstanceID, ""),
		Enabled:           e.boolean(EnvEnabled, true),
		MetricsExporter:   e.str(EnvMetricsExporter, ExporterPrometheus),
		TracingExporter:   e.str(EnvTracingExporter, ExporterNone),
		OTLPEndpoint:      e.str(EnvOTLPEndpoint, ""),
		OTLPInsecure:      e.boolean(EnvOTLPInsecure, false),
		TraceSamplingRate: e.float(EnvTraceSamplingRate, 0.1),
		DetailedLabels:    e.boolean(EnvDetailedLabels, false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    e.boolean(EnvAuditEnabled, true),
			IncludePII: e.boolean(EnvAuditIncludePII, false),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		errs = append(errs, fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.TraceSamplingRate))
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterStdout:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			errs = append(errs, fmt.Errorf("%s is required for the otlp metrics exporter", EnvOTLPEndpoint))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter))
	}

	switch c.TracingExporter {
	case "", ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			errs = append(errs, fmt.Errorf("%s is required for the otlp tracing exporter", EnvOTLPEndpoint))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter))
	}

	if strings.Contains(c.OTLPEndpoint, "://") {
		errs = append(errs, fmt.Errorf("OTLP endpoint %q must not carry a scheme", c.OTLPEndpoint))
	}

	return errors.Join(errs...)
}

type env func(string) string

func (e env) str(key, def string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return def
}

func (e env) boolean(key string, def bool) bool {
	v, err := strconv.ParseBool(e.str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func (e env) float(key string, def float64) float64 {
	v, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}
