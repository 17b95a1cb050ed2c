package mail

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ScopeAll is the scope that spans every account and every category.
const ScopeAll = "all"

// ErrSearchUnavailable is returned by mail providers when a search cannot
// reach the remote service.
var ErrSearchUnavailable = errors.New("mail search unavailable")

// EmailRecord is a single email as seen by the assistant. Records are
// immutable once fetched.
type EmailRecord struct {
	ID           string              `json:"id"`
	Subject      string              `json:"subject"`
	Sender       string              `json:"sender"`
	ReceivedAt   time.Time           `json:"receivedAt"`
	Snippet      string              `json:"snippet"`
	IsUnread     bool                `json:"isUnread"`
	IsStarred    bool                `json:"isStarred"`
	AccountScope string              `json:"accountScope"`
	Labels       map[string]struct{} `json:"-"`
}

// HasLabel reports whether the record carries the given label.
func (r EmailRecord) HasLabel(label string) bool {
	_, ok := r.Labels[label]
	return ok
}

// LabelList returns the record labels in sorted order.
func (r EmailRecord) LabelList() []string {
	labels := make([]string, 0, len(r.Labels))
	for l := range r.Labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// NewLabelSet builds a label set from a list of label ids.
func NewLabelSet(labels ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

// Snapshot is the full content handed over on every refresh.
type Snapshot struct {
	Records            []EmailRecord
	AccountScopes      []string
	CurrentFilterScope string
}
