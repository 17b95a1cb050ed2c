package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// rule pairs a predicate with an extractor. A nil extractor means the rule
// carries no value.
type rule struct {
	kind      Kind
	predicate *regexp.Regexp
	extract   func(utterance string) (string, bool)
}

var (
	senderRe        = regexp.MustCompile(`(?i)\bfrom\s+(.+)$`)
	contentRe       = regexp.MustCompile(`(?i)\b(?:about|containing|regarding|mentioning|with\s+subject)\s+(.+)$`)
	searchVerbRe    = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:find|search(?:\s+for)?|look\s+for|fetch)\s+(.+)$`)
	unreadRe        = regexp.MustCompile(`(?i)\bunread\b|\bnew\s+(?:e-?mails?|mails?|messages?)\b`)
	starredRe       = regexp.MustCompile(`(?i)\bstarred\b|\bflagged\b|\bimportant\b`)
	recentRe        = regexp.MustCompile(`(?i)\brecent\b|\blatest\b|\ball\s+(?:my\s+)?(?:e-?mails?|mails?|messages?)\b|\blist\s+(?:my\s+)?(?:e-?mails?|mails?|messages?)\b|\binbox\b`)
	topicClauseRe   = regexp.MustCompile(`(?i)\s+(?:about|containing|regarding|mentioning)\s+`)
	countRe         = regexp.MustCompile(`\b(\d{1,3})\b`)
	leadingNounsRe  = regexp.MustCompile(`(?i)^(?:(?:my|the|all|any|some|new|recent)\s+)*(?:e-?mails?|mails?|messages?)\b\s*`)
	trailingNoiseRe = regexp.MustCompile(`(?i)\s+(?:please|for\s+me|thanks?)$`)
)

// rules is evaluated top to bottom. Most specific first.
var rules = []rule{
	{kind: KindBySender, predicate: senderRe, extract: extractSender},
	{kind: KindByContent, predicate: contentRe, extract: extractAfter(contentRe)},
	{kind: KindByContent, predicate: searchVerbRe, extract: extractSearchTerm},
	{kind: KindUnread, predicate: unreadRe},
	{kind: KindStarred, predicate: starredRe},
	{kind: KindRecent, predicate: recentRe},
}

// Classify maps an utterance to a request. It returns false when no rule
// applies.
func Classify(utterance string) (*Request, bool) {
	text := strings.TrimSpace(utterance)
	r, value, ok := match(text)
	if !ok {
		return nil, false
	}
	return &Request{
		Kind:      r.kind,
		ValueText: value,
		PageSize:  pageSize(text, value),
	}, true
}

// IsQuery reports whether utterance states a mail query of its own. A bare
// verb phrase like "search everywhere" classifies, but only makes sense as
// a reply to an earlier question, so it does not count.
func IsQuery(utterance string) bool {
	r, _, ok := match(strings.TrimSpace(utterance))
	return ok && r.predicate != searchVerbRe
}

// match returns the first rule that applies to text with its value.
func match(text string) (rule, string, bool) {
	if text == "" {
		return rule{}, "", false
	}
	for _, r := range rules {
		if !r.predicate.MatchString(text) {
			continue
		}
		if r.extract == nil {
			return r, "", true
		}
		if v, ok := r.extract(text); ok {
			return r, v, true
		}
	}
	return rule{}, "", false
}

// MustClassify is Classify for callers that already know the text carries
// a search, such as an expanded search. Unclassifiable text becomes a
// generic content request.
func MustClassify(text string) Request {
	if req, ok := Classify(text); ok {
		return *req
	}
	return Request{
		Kind:      KindGeneric,
		ValueText: cleanValue(text),
		PageSize:  DefaultPageSize,
	}
}

func extractAfter(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			return "", false
		}
		v := cleanValue(m[1])
		return v, v != ""
	}
}

// extractSender stops at a trailing topic clause, so "from work about
// budget" names the sender "work".
func extractSender(text string) (string, bool) {
	v, ok := extractAfter(senderRe)(text)
	if !ok {
		return "", false
	}
	if loc := topicClauseRe.FindStringIndex(v); loc != nil {
		v = cleanValue(v[:loc[0]])
	}
	return v, v != ""
}

// extractSearchTerm handles bare "find invoice" style utterances. The noun
// phrase that follows the verb is dropped so "find emails" on its own does
// not become a content search for "emails".
func extractSearchTerm(text string) (string, bool) {
	m := searchVerbRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := leadingNounsRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
	v = cleanValue(v)
	if v == "" || unreadRe.MatchString(v) || starredRe.MatchString(v) || recentRe.MatchString(v) {
		return "", false
	}
	return v, true
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = trailingNoiseRe.ReplaceAllString(v, "")
	v = strings.TrimRight(v, ".!?,;: ")
	v = strings.Trim(v, `"'`+"`")
	return strings.TrimSpace(v)
}

// pageSize reads an explicit count ("show me 5 unread emails") from the
// part of the utterance that is not the extracted value.
func pageSize(text, value string) int {
	rest := text
	if value != "" {
		if i := strings.Index(strings.ToLower(text), strings.ToLower(value)); i >= 0 {
			rest = text[:i]
		}
	}
	m := countRe.FindStringSubmatch(rest)
	if len(m) < 2 {
		return DefaultPageSize
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
