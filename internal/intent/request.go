package intent

import "fmt"

// Kind identifies the type of a request.
type Kind string

const (
	KindUnread    Kind = "unread"
	KindStarred   Kind = "starred"
	KindRecent    Kind = "recent"
	KindBySender  Kind = "by_sender"
	KindByContent Kind = "by_content"
	KindGeneric   Kind = "generic"
)

// DefaultPageSize is used when the utterance does not name a count.
const DefaultPageSize = 10

// MaxPageSize caps counts named in an utterance.
const MaxPageSize = 50

// Request is a classified utterance. It is created once per utterance and
// never modified afterwards.
type Request struct {
	Kind      Kind   `json:"kind"`
	ValueText string `json:"valueText,omitempty"`
	PageSize  int    `json:"pageSize"`
}

// Describe renders the request for assistant replies.
func (r Request) Describe() string {
	switch r.Kind {
	case KindUnread:
		return "unread emails"
	case KindStarred:
		return "starred emails"
	case KindRecent:
		return "recent emails"
	case KindBySender:
		return fmt.Sprintf("emails from %q", r.ValueText)
	case KindByContent, KindGeneric:
		return fmt.Sprintf("emails about %q", r.ValueText)
	default:
		return "emails"
	}
}

// SearchQuery renders the request in Gmail search syntax for the external
// mail provider.
func (r Request) SearchQuery() string {
	switch r.Kind {
	case KindUnread:
		return "is:unread"
	case KindStarred:
		return "is:starred"
	case KindRecent:
		return ""
	case KindBySender:
		return "from:" + quoteTerm(r.ValueText)
	default:
		return quoteTerm(r.ValueText)
	}
}

func quoteTerm(term string) string {
	for _, c := range term {
		if c == ' ' || c == '\t' {
			return `"` + term + `"`
		}
	}
	return term
}
