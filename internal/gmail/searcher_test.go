package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxchat/internal/mail"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeGmail serves the two Gmail endpoints the searcher uses.
type fakeGmail struct {
	mu       sync.Mutex
	messages []*gmail.Message
	queries  []string
	fail     bool
	block    bool
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	fail, block := f.fail, f.block
	f.mu.Unlock()

	if block {
		<-r.Context().Done()
		return
	}
	if fail {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
		return
	}

	const prefix = "/gmail/v1/users/me/messages"
	path := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")

	if path == "" || path == "/" {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		f.mu.Unlock()

		max, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
		list := &gmail.ListMessagesResponse{}
		for _, m := range f.messages {
			if max > 0 && len(list.Messages) >= max {
				break
			}
			list.Messages = append(list.Messages, &gmail.Message{Id: m.Id})
		}
		_ = json.NewEncoder(w).Encode(list)
		return
	}

	id := strings.TrimPrefix(path, "/")
	for _, m := range f.messages {
		if m.Id == id {
			_ = json.NewEncoder(w).Encode(m)
			return
		}
	}
	http.NotFound(w, r)
}

func (f *fakeGmail) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func message(id, from, subject string, age time.Duration, labels ...string) *gmail.Message {
	return &gmail.Message{
		Id:           id,
		LabelIds:     labels,
		Snippet:      "snippet of " + id,
		InternalDate: t0.Add(-age).UnixMilli(),
		Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
			{Name: "From", Value: from},
			{Name: "Subject", Value: subject},
		}},
	}
}

func newTestClient(t *testing.T, account string, fake *fakeGmail) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return NewClientWithService(svc, account)
}

func TestSearcher_SearchMergesAccountsNewestFirst(t *testing.T) {
	work := &fakeGmail{messages: []*gmail.Message{
		message("w1", "GitHub <noreply@github.com>", "PR merged", 2*time.Hour, LabelUnread),
		message("w2", "ci@example.com", "Build failed", 10*time.Minute),
	}}
	personal := &fakeGmail{messages: []*gmail.Message{
		message("p1", "Jane <jane@example.com>", "Dinner", time.Hour, LabelStarred),
	}}

	s := NewSearcher([]*Client{
		newTestClient(t, "work", work),
		newTestClient(t, "personal", personal),
	}, SearcherConfig{})

	records, err := s.Search(context.Background(), "from:github", mail.ScopeAll)
	require.NoError(t, err)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"w2", "p1", "w1"}, ids)
	assert.Equal(t, []string{"in:anywhere from:github"}, work.Queries())

	assert.Equal(t, "personal", records[1].AccountScope)
	assert.True(t, records[1].IsStarred)
	assert.True(t, records[2].IsUnread)
	assert.Equal(t, "GitHub <noreply@github.com>", records[2].Sender)
}

func TestSearcher_SearchSingleAccount(t *testing.T) {
	work := &fakeGmail{messages: []*gmail.Message{message("w1", "a@b.c", "x", time.Minute)}}
	personal := &fakeGmail{messages: []*gmail.Message{message("p1", "a@b.c", "y", time.Minute)}}

	s := NewSearcher([]*Client{
		newTestClient(t, "work", work),
		newTestClient(t, "personal", personal),
	}, SearcherConfig{})

	records, err := s.Search(context.Background(), "invoice", "personal")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0].ID)
	assert.Empty(t, work.Queries())
	assert.Equal(t, []string{"invoice"}, personal.Queries())

	_, err = s.Search(context.Background(), "invoice", "school")
	assert.ErrorIs(t, err, mail.ErrSearchUnavailable)
}

func TestSearcher_Refresh(t *testing.T) {
	work := &fakeGmail{messages: []*gmail.Message{
		message("w1", "a@b.c", "one", time.Minute, LabelInbox, LabelUnread),
		message("w2", "a@b.c", "two", 2*time.Minute, LabelInbox),
		message("w3", "a@b.c", "three", 3*time.Minute, LabelInbox),
	}}

	s := NewSearcher([]*Client{newTestClient(t, "work", work)}, SearcherConfig{RefreshResults: 2})

	snap, err := s.Refresh(context.Background(), "primary")
	require.NoError(t, err)

	assert.Len(t, snap.Records, 2)
	assert.Equal(t, []string{"work"}, snap.AccountScopes)
	assert.Equal(t, "primary", snap.CurrentFilterScope)
	assert.Equal(t, []string{"in:inbox category:primary"}, work.Queries())
}

func TestSearcher_FailureIsUnavailable(t *testing.T) {
	fake := &fakeGmail{fail: true}
	s := NewSearcher([]*Client{newTestClient(t, "work", fake)}, SearcherConfig{})

	_, err := s.Search(context.Background(), "invoice", mail.ScopeAll)
	require.Error(t, err)
	assert.ErrorIs(t, err, mail.ErrSearchUnavailable)
}

func TestSearcher_DeadlineIsNotUnavailable(t *testing.T) {
	fake := &fakeGmail{block: true}
	s := NewSearcher([]*Client{newTestClient(t, "work", fake)}, SearcherConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Search(ctx, "invoice", mail.ScopeAll)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, mail.ErrSearchUnavailable))
}

func TestSearcher_NoAccounts(t *testing.T) {
	s := NewSearcher(nil, SearcherConfig{})

	_, err := s.Search(context.Background(), "x", mail.ScopeAll)
	assert.ErrorIs(t, err, mail.ErrSearchUnavailable)
	_, err = s.Refresh(context.Background(), mail.ScopeAll)
	assert.ErrorIs(t, err, mail.ErrSearchUnavailable)
}

func TestNewSearcher_DropsDuplicateAccounts(t *testing.T) {
	fake := &fakeGmail{}
	s := NewSearcher([]*Client{
		newTestClient(t, "work", fake),
		newTestClient(t, "work", fake),
		newTestClient(t, "home", fake),
	}, SearcherConfig{})

	assert.Equal(t, []string{"work", "home"}, s.Accounts())
}
