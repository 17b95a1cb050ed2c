package actions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/teemow/inboxchat/internal/intent"
	"github.com/teemow/inboxchat/internal/mail"
)

// Kind identifies an alternate action.
type Kind string

const (
	KindExpandedSearchAll     Kind = "expanded_search_all"
	KindExpandedSearchAccount Kind = "expanded_search_account"
	KindFilterCurrent         Kind = "filter_current"
	KindRefresh               Kind = "refresh"
	KindSwitchView            Kind = "switch_view"
)

// Payload is everything needed to run an option.
type Payload struct {
	RequestKind intent.Kind `json:"requestKind"`
	ValueText   string      `json:"valueText"`
	Scope       string      `json:"scope,omitempty"`
	PageSize    int         `json:"pageSize"`
}

// Request rebuilds the request the option was generated for.
func (p Payload) Request() intent.Request {
	return intent.Request{
		Kind:      p.RequestKind,
		ValueText: p.ValueText,
		PageSize:  p.PageSize,
	}
}

// Option is one entry of the recovery menu.
type Option struct {
	Kind        Kind    `json:"kind"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Payload     Payload `json:"payload"`
}

// Context describes the mailbox the empty query ran against.
type Context struct {
	AccountScopes      []string
	CurrentFilterScope string
	LoadedCount        int
}

// Generate returns the recovery options for req. The result is never empty.
func Generate(req intent.Request, c Context) []Option {
	what := req.Describe()
	payload := func(scope string) Payload {
		return Payload{
			RequestKind: req.Kind,
			ValueText:   req.ValueText,
			Scope:       scope,
			PageSize:    req.PageSize,
		}
	}

	options := []Option{{
		Kind:        KindExpandedSearchAll,
		Title:       "Search entire mailbox",
		Description: fmt.Sprintf("Search all accounts and folders for %s.", what),
		Payload:     payload(mail.ScopeAll),
	}}

	if len(c.AccountScopes) > 1 {
		for _, scope := range c.AccountScopes {
			options = append(options, Option{
				Kind:        KindExpandedSearchAccount,
				Title:       "Search " + scope + " only",
				Description: fmt.Sprintf("Search the %s account for %s.", scope, what),
				Payload:     payload(scope),
			})
		}
	}

	if c.LoadedCount > 0 {
		options = append(options, Option{
			Kind:        KindFilterCurrent,
			Title:       "Filter loaded emails",
			Description: fmt.Sprintf("Look for close matches among the %d emails already loaded.", c.LoadedCount),
			Payload:     payload(c.CurrentFilterScope),
		})
	}

	if c.CurrentFilterScope != "" && c.CurrentFilterScope != mail.ScopeAll {
		options = append(options, Option{
			Kind:        KindSwitchView,
			Title:       "Switch to all categories",
			Description: fmt.Sprintf("Leave the %s view and try again across all categories.", c.CurrentFilterScope),
			Payload:     payload(mail.ScopeAll),
		})
	}

	options = append(options, Option{
		Kind:        KindRefresh,
		Title:       "Refresh and retry",
		Description: "Reload the mailbox and run the same query again.",
		Payload:     payload(c.CurrentFilterScope),
	})

	return options
}

// Without returns options minus every entry equal in kind and scope to
// tried. Refresh is kept so the menu never runs dry.
func Without(options []Option, tried Option) []Option {
	out := make([]Option, 0, len(options))
	for _, o := range options {
		if o.Kind == tried.Kind && o.Payload.Scope == tried.Payload.Scope && o.Kind != KindRefresh {
			continue
		}
		out = append(out, o)
	}
	return out
}

var (
	indexRe       = regexp.MustCompile(`^\s*(?:option\s+|#)?(\d{1,2})\s*[.)]?\s*$`)
	affirmativeRe = regexp.MustCompile(`(?i)^\s*(?:yes|yeah|yep|sure|ok(?:ay)?|do it|go ahead|please do)\b[\s.!]*$`)
)

// keywords maps free text to option kinds for replies like "refresh".
var keywords = []struct {
	re   *regexp.Regexp
	kind Kind
}{
	{regexp.MustCompile(`(?i)\brefresh\b|\breload\b|\bretry\b`), KindRefresh},
	{regexp.MustCompile(`(?i)\bswitch\b|\ball\s+categories\b`), KindSwitchView},
	{regexp.MustCompile(`(?i)\bfilter\b|\bloaded\b`), KindFilterCurrent},
	{regexp.MustCompile(`(?i)\bentire\b|\beverywhere\b|\bwhole\b|\bexpand`), KindExpandedSearchAll},
}

// Choose maps a reply to an index into options. Accepted replies are a
// 1-based number, an affirmative (first option), an exact title, or a
// keyword naming the action.
func Choose(reply string, options []Option) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}
	text := strings.TrimSpace(reply)

	if m := indexRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}

	if affirmativeRe.MatchString(text) {
		return 0, true
	}

	for i, o := range options {
		if strings.EqualFold(text, o.Title) {
			return i, true
		}
	}

	lower := strings.ToLower(text)
	for i, o := range options {
		if o.Kind == KindExpandedSearchAccount && o.Payload.Scope != "" &&
			strings.Contains(lower, strings.ToLower(o.Payload.Scope)) {
			return i, true
		}
	}

	for _, k := range keywords {
		if !k.re.MatchString(text) {
			continue
		}
		for i, o := range options {
			if o.Kind == k.kind {
				return i, true
			}
		}
	}

	return 0, false
}

// Menu renders options as a numbered list.
func Menu(options []Option) string {
	var sb strings.Builder
	for i, o := range options {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, o.Title, o.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
