package gmail

import (
	"html"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"

	inbox "github.com/teemow/inboxchat/internal/mail"
)

// Gmail system label ids.
const (
	LabelUnread  = "UNREAD"
	LabelStarred = "STARRED"
	LabelInbox   = "INBOX"
)

// Categories are the inbox tabs a refresh can be limited to.
var Categories = []string{"primary", "social", "promotions", "updates", "forums"}

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if strings.EqualFold(mph.Name, header) {
			return mph.Value
		}
	}
	return ""
}

// ToRecord converts a message fetched with GetMessageMetadata.
func ToRecord(m *gmail.Message, account string) inbox.EmailRecord {
	labels := inbox.NewLabelSet(m.LabelIds...)
	_, unread := labels[LabelUnread]
	_, starred := labels[LabelStarred]

	return inbox.EmailRecord{
		ID:           m.Id,
		Subject:      strings.TrimSpace(HeaderValue(m, "Subject")),
		Sender:       strings.TrimSpace(HeaderValue(m, "From")),
		ReceivedAt:   receivedAt(m),
		Snippet:      html.UnescapeString(m.Snippet),
		IsUnread:     unread,
		IsStarred:    starred,
		AccountScope: account,
		Labels:       labels,
	}
}

// receivedAt prefers the internal date, which Gmail sets on delivery,
// over the sender controlled Date header.
func receivedAt(m *gmail.Message) time.Time {
	if m.InternalDate > 0 {
		return time.UnixMilli(m.InternalDate).UTC()
	}
	if t, err := mail.ParseDate(HeaderValue(m, "Date")); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// InboxQuery returns the Gmail query loading the inbox view filterScope.
// ScopeAll and the empty string load the whole inbox; a category name
// limits it to that tab.
func InboxQuery(filterScope string) string {
	scope := strings.ToLower(strings.TrimSpace(filterScope))
	if scope == "" || scope == inbox.ScopeAll {
		return "in:inbox"
	}
	for _, c := range Categories {
		if scope == c {
			return "in:inbox category:" + c
		}
	}
	return "in:inbox label:" + quoteLabel(scope)
}

func quoteLabel(label string) string {
	return strings.ReplaceAll(label, " ", "-")
}
