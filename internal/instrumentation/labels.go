package instrumentation

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
	StatusUnknown = "unknown"
)

// LoadMoreExhausted is the load more outcome when nothing was left to page.
const LoadMoreExhausted = "exhausted"

// Utterance routes besides intent kinds.
const (
	RouteLoadMore = "load_more"
	RouteAction   = "action"
	RouteResolved = "resolved"
	RouteGeneric  = "generic"
	RouteClear    = "clear"
)

// Mail provider operations.
const (
	MailOperationSearch  = "search"
	MailOperationRefresh = "refresh"
	MailOperationGet     = "get"
)

// Exporter types.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)
