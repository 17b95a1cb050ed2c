package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// Routes, paths and account names come from user input or configuration
// and are folded into a fixed set of label values before recording.

// RouteOther replaces route labels that are not known.
const RouteOther = "other"

var knownRoutes = map[string]bool{
	"unread":      true,
	"starred":     true,
	"recent":      true,
	"by_sender":   true,
	"by_content":  true,
	RouteLoadMore: true,
	RouteAction:   true,
	RouteResolved: true,
	RouteGeneric:  true,
	RouteClear:    true,
}

// NormalizeRoute maps a route to itself when it is known and to
// RouteOther otherwise.
func NormalizeRoute(route string) string {
	if knownRoutes[route] {
		return route
	}
	return RouteOther
}

var knownPaths = []string{"/mcp", "/metrics", "/healthz", "/readyz", "/chat"}

// NormalizePath keeps the first known path prefix of an HTTP request path.
//
//	NormalizePath("/mcp")          // "/mcp"
//	NormalizePath("/chat/abc/send") // "/chat"
//	NormalizePath("/favicon.ico")  // "other"
func NormalizePath(path string) string {
	for _, p := range knownPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return p
		}
	}
	return RouteOther
}

// ExtractUserDomain extracts the domain part from an email address.
// Account scopes are usually addresses; their domain is a safe label.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return StatusUnknown
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return StatusUnknown
}
