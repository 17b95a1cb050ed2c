package query

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/teemow/inboxchat/internal/intent"
	"github.com/teemow/inboxchat/internal/mail"
)

// RecentLimit caps the result set of a recent listing before pagination.
const RecentLimit = 50

// Result is the outcome of one query invocation.
type Result struct {
	Matches    []mail.EmailRecord `json:"matches"`
	TotalCount int                `json:"totalCount"`
	QueryID    string             `json:"queryId"`
}

// Empty reports whether the query found nothing.
func (r Result) Empty() bool {
	return r.TotalCount == 0
}

// Execute runs req against records. The records slice is not modified.
func Execute(req intent.Request, records []mail.EmailRecord) Result {
	matches := make([]mail.EmailRecord, 0)
	for _, r := range records {
		if matchesRequest(req, r) {
			matches = append(matches, r)
		}
	}

	SortNewestFirst(matches)

	if req.Kind == intent.KindRecent && len(matches) > RecentLimit {
		matches = matches[:RecentLimit]
	}

	return Result{
		Matches:    matches,
		TotalCount: len(matches),
		QueryID:    NewQueryID(req.Kind),
	}
}

// Wrap turns records found by an external search into a result. The
// provider already filtered them, so only ordering and the id are applied.
func Wrap(req intent.Request, records []mail.EmailRecord) Result {
	matches := make([]mail.EmailRecord, len(records))
	copy(matches, records)
	SortNewestFirst(matches)

	return Result{
		Matches:    matches,
		TotalCount: len(matches),
		QueryID:    NewQueryID(req.Kind),
	}
}

// FilterLoose keeps the records LooseMatch accepts, newest first.
func FilterLoose(req intent.Request, records []mail.EmailRecord) Result {
	matches := make([]mail.EmailRecord, 0)
	for _, r := range records {
		if LooseMatch(req.ValueText, r) {
			matches = append(matches, r)
		}
	}
	SortNewestFirst(matches)

	return Result{
		Matches:    matches,
		TotalCount: len(matches),
		QueryID:    NewQueryID(req.Kind),
	}
}

// SortNewestFirst orders records by ReceivedAt descending. Records received
// at the same instant keep their relative order.
func SortNewestFirst(records []mail.EmailRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReceivedAt.After(records[j].ReceivedAt)
	})
}

// NewQueryID returns an opaque id that is never reused.
func NewQueryID(kind intent.Kind) string {
	return string(kind) + "-" + uuid.NewString()
}

func matchesRequest(req intent.Request, r mail.EmailRecord) bool {
	switch req.Kind {
	case intent.KindUnread:
		return r.IsUnread
	case intent.KindStarred:
		return r.IsStarred
	case intent.KindRecent:
		return true
	case intent.KindBySender:
		return containsFold(r.Sender, req.ValueText)
	case intent.KindByContent, intent.KindGeneric:
		return containsFold(r.Subject, req.ValueText) ||
			containsFold(r.Snippet, req.ValueText) ||
			containsFold(r.Sender, req.ValueText)
	default:
		return false
	}
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
