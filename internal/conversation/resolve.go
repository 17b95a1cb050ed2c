package conversation

import (
	"regexp"
	"strings"
)

// LoadMoreSentinel is returned by Resolve when the utterance asks for the
// next page of the most recent query.
const LoadMoreSentinel = "__load_more__"

// ExpandedSearchPrefix starts every resolution of the expand shape.
const ExpandedSearchPrefix = "perform expanded search: "

// ResolutionKind tells which follow-up shape matched.
type ResolutionKind string

const (
	ResolutionScoped   ResolutionKind = "scoped"
	ResolutionExpand   ResolutionKind = "expand"
	ResolutionLoadMore ResolutionKind = "load_more"
)

// Resolution is the structured result of ResolveDetailed.
type Resolution struct {
	Kind ResolutionKind
	// Text is the rewritten utterance, or LoadMoreSentinel.
	Text string
	// Base is the earlier user turn the follow-up refers to.
	Base string
	// Scope is set for the scoped shape.
	Scope string
}

var (
	loadMoreRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:(?:load|show|see|get|give)\s+(?:me\s+)?more|next\s+page|more)(?:\s+(?:emails|results|messages|please))?\s*[.!?]*\s*$`)
	expandRe   = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:(?:expand|broaden|widen)(?:\s+(?:the\s+|my\s+)?search)?|search\s+(?:all|everywhere|everything)(?:\s+(?:accounts|mail|emails|folders))?|look\s+everywhere)\s*[.!?]*\s*$`)
	scopedRe   = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:(?:do|try|run|repeat|redo|check)(?:\s+(?:that|it|this|the\s+same|again))*|(?:search|find|look)\s+(?:that|it|again)(?:\s+again)?)\s+(?:on|for|in)\s+(.+?)\s*[.!?]*\s*$`)
	searchRe   = regexp.MustCompile(`(?i)\b(?:find|search|fetch|look|show)`)

	scopeNoiseRe = regexp.MustCompile(`(?i)^(?:the|my)\s+|\s+(?:account|accounts|inbox|mailbox)$`)
)

// IsLoadMore reports whether the utterance asks for more results.
func IsLoadMore(utterance string) bool {
	return loadMoreRe.MatchString(utterance)
}

// IsFollowUp reports whether the utterance has one of the follow-up shapes.
func IsFollowUp(utterance string) bool {
	return loadMoreRe.MatchString(utterance) ||
		expandRe.MatchString(utterance) ||
		scopedRe.MatchString(utterance)
}

// Resolve rewrites a follow-up utterance using the recent turns. It
// returns false when the utterance should be taken at face value.
func Resolve(utterance string, recentTurns []Turn) (string, bool) {
	r, ok := ResolveDetailed(utterance, recentTurns)
	if !ok {
		return "", false
	}
	return r.Text, true
}

// ResolveDetailed is Resolve with the matched shape and its parts.
func ResolveDetailed(utterance string, recentTurns []Turn) (Resolution, bool) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Resolution{}, false
	}

	if loadMoreRe.MatchString(text) {
		if _, ok := lastQueryID(recentTurns); !ok {
			return Resolution{}, false
		}
		return Resolution{Kind: ResolutionLoadMore, Text: LoadMoreSentinel}, true
	}

	if expandRe.MatchString(text) {
		base, ok := lastSearch(recentTurns)
		if !ok {
			return Resolution{}, false
		}
		return Resolution{
			Kind: ResolutionExpand,
			Text: ExpandedSearchPrefix + base,
			Base: base,
		}, true
	}

	if m := scopedRe.FindStringSubmatch(text); m != nil {
		scope := cleanScope(m[1])
		if scope == "" {
			return Resolution{}, false
		}
		base, ok := lastSearch(recentTurns)
		if !ok {
			return Resolution{}, false
		}
		return Resolution{
			Kind:  ResolutionScoped,
			Text:  base + " in " + scope,
			Base:  base,
			Scope: scope,
		}, true
	}

	return Resolution{}, false
}

// lastSearch finds the most recent user turn that looks like a search and
// is not itself a follow-up.
func lastSearch(turns []Turn) (string, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role != RoleUser {
			continue
		}
		text := strings.TrimSpace(t.Text)
		if searchRe.MatchString(text) && !IsFollowUp(text) {
			return text, true
		}
	}
	return "", false
}

func cleanScope(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := strings.TrimSpace(scopeNoiseRe.ReplaceAllString(s, ""))
		if next == s {
			return strings.Trim(s, `"'`)
		}
		s = next
	}
}
