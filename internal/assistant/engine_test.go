package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxchat/internal/actions"
	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/llm"
	"github.com/teemow/inboxchat/internal/mail"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []searchCall
	records []mail.EmailRecord
	err     error
	// block makes Search wait for its context after signalling started.
	block   bool
	started chan struct{}
}

type searchCall struct {
	query string
	scope string
}

func (f *fakeSearcher) Search(ctx context.Context, query, scope string) ([]mail.EmailRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query: query, scope: scope})
	block, started := f.block, f.started
	f.mu.Unlock()

	if block {
		if started != nil {
			started <- struct{}{}
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.records, f.err
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

type fakeRefresher struct {
	snap  mail.Snapshot
	err   error
	scope string
}

func (f *fakeRefresher) Refresh(_ context.Context, filterScope string) (mail.Snapshot, error) {
	f.scope = filterScope
	return f.snap, f.err
}

type fakeCompleter struct {
	reply string
	err   error
	req   llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.req = req
	return f.reply, f.err
}

func record(id string, age int, mutate func(*mail.EmailRecord)) mail.EmailRecord {
	r := mail.EmailRecord{
		ID:           id,
		Subject:      "subject " + id,
		Sender:       "someone@example.com",
		ReceivedAt:   baseTime.Add(-time.Duration(age) * time.Minute),
		AccountScope: "work",
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

// mailbox has 5 unread, 3 starred and 2 GitHub records, none overlapping.
func mailbox() mail.Snapshot {
	var records []mail.EmailRecord
	for i := 1; i <= 5; i++ {
		records = append(records, record(fmt.Sprintf("u%d", i), i*10, func(r *mail.EmailRecord) { r.IsUnread = true }))
	}
	for i := 1; i <= 3; i++ {
		records = append(records, record(fmt.Sprintf("s%d", i), i*10+1, func(r *mail.EmailRecord) { r.IsStarred = true }))
	}
	records = append(records,
		record("g1", 100, func(r *mail.EmailRecord) { r.Sender = "GitHub Notifications <noreply@github.com>" }),
		record("g2", 200, func(r *mail.EmailRecord) { r.Sender = "notifications@GITHUB.com" }),
	)
	return mail.Snapshot{
		Records:            records,
		AccountScopes:      []string{"work", "personal"},
		CurrentFilterScope: mail.ScopeAll,
	}
}

func newEngine(t *testing.T, snap mail.Snapshot, opts Options) *Engine {
	t.Helper()
	store := mail.NewStore()
	store.Replace(snap)
	return New(store, opts)
}

func ids(records []mail.EmailRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertAlternating(t *testing.T, history []conversation.Turn) {
	t.Helper()
	require.Zero(t, len(history)%2, "history must pair every utterance with one answer")
	for i, turn := range history {
		want := conversation.RoleUser
		if i%2 == 1 {
			want = conversation.RoleAssistant
		}
		assert.Equal(t, want, turn.Role, "turn %d", i)
	}
}

func TestEngine_UnreadEmails(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})

	resp := e.ProcessUtterance(context.Background(), "show me unread emails")

	assert.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, []string{"u1", "u2", "u3", "u4", "u5"}, ids(resp.Matches))
	assert.False(t, resp.HasMore)
	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, StateIdle, e.State())

	history := e.History()
	require.Len(t, history, 2)
	assert.Equal(t, resp.QueryID, history[1].QueryID)
}

func TestEngine_SenderIsCaseInsensitive(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})

	resp := e.ProcessUtterance(context.Background(), "find emails from github")

	assert.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, []string{"g1", "g2"}, ids(resp.Matches))
}

func TestEngine_EmptyResultOffersActions(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})

	resp := e.ProcessUtterance(context.Background(), "emails about invoice")

	require.Equal(t, ResponseActions, resp.Kind)
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, actions.KindExpandedSearchAll, resp.Actions[0].Kind)
	assert.Equal(t, "invoice", resp.Actions[0].Payload.ValueText)
	assert.Contains(t, resp.Text, `emails about "invoice"`)
	assert.Equal(t, StateAwaitingActionChoice, e.State())
	assert.Equal(t, resp.Actions, e.PendingActions())
}

func TestEngine_LoadMorePages(t *testing.T) {
	var records []mail.EmailRecord
	for i := 1; i <= 12; i++ {
		records = append(records, record(fmt.Sprintf("e%d", i), i, nil))
	}
	e := newEngine(t, mail.Snapshot{Records: records}, Options{})
	ctx := context.Background()

	first := e.ProcessUtterance(ctx, "show me recent emails")
	require.Equal(t, ResponseEmails, first.Kind)
	assert.Equal(t, 12, first.TotalCount)
	assert.Equal(t, []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8", "e9", "e10"}, ids(first.Matches))
	assert.True(t, first.HasMore)

	second := e.ProcessUtterance(ctx, "load more")
	require.Equal(t, ResponseEmails, second.Kind)
	assert.Equal(t, []string{"e11", "e12"}, ids(second.Matches))
	assert.Equal(t, first.QueryID, second.QueryID)
	assert.False(t, second.HasMore)
	assert.Equal(t, "Showing 11 to 12 of 12.", second.Text)

	third := e.LoadMore(ctx)
	assert.Equal(t, ResponseText, third.Kind)
	assert.Empty(t, third.Matches)
	assert.Contains(t, third.Text, "no more results")

	assertAlternating(t, e.History())
}

func TestEngine_LoadMoreWithoutQuery(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})

	resp := e.ProcessUtterance(context.Background(), "load more")

	assert.Equal(t, ResponseText, resp.Kind)
	assert.Equal(t, noQueryText, resp.Text)
	assertAlternating(t, e.History())
}

func TestEngine_LoadMoreUnknownQuery(t *testing.T) {
	var records []mail.EmailRecord
	for i := 1; i <= 12; i++ {
		records = append(records, record(fmt.Sprintf("e%d", i), i, nil))
	}
	e := newEngine(t, mail.Snapshot{Records: records}, Options{})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "show me recent emails")
	e.pages.Clear()

	resp := e.ProcessUtterance(ctx, "load more")
	assert.Equal(t, lostQueryText, resp.Text)
	assertAlternating(t, e.History())
}

func TestEngine_PageSizeFromUtterance(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})

	ctx := context.Background()
	resp := e.ProcessUtterance(ctx, "show me 2 unread emails")

	assert.Equal(t, []string{"u1", "u2"}, ids(resp.Matches))
	assert.Equal(t, 5, resp.TotalCount)
	assert.True(t, resp.HasMore)

	next := e.ProcessUtterance(ctx, "load more")
	assert.Equal(t, []string{"u3", "u4"}, ids(next.Matches))
	assert.True(t, next.HasMore)

	last := e.LoadMore(ctx)
	assert.Equal(t, []string{"u5"}, ids(last.Matches))
	assert.False(t, last.HasMore)
}

func TestEngine_ClearBetweenUserAndAssistantTurn(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})
	ctx := context.Background()

	gen, clears, _ := e.beginTurn("show me unread emails")
	e.Clear()
	e.finish(ctx, gen, clears, textResponse("Found 5 unread emails."), "unread", nil, time.Now())
	assert.Empty(t, e.History(), "a cleared turn leaves neither half behind")

	e.Clear()
	gen, clears, history := e.beginTurn("show me unread emails")
	assert.Empty(t, history)
	e.finish(ctx, gen, clears, textResponse("Found 5 unread emails."), "unread", nil, time.Now())
	assert.Len(t, e.History(), 2)
	assertAlternating(t, e.History())
}

func TestEngine_OneAssistantTurnPerUtterance(t *testing.T) {
	searcher := &fakeSearcher{err: mail.ErrSearchUnavailable}
	e := newEngine(t, mailbox(), Options{Searcher: searcher, Completer: &fakeCompleter{reply: "hi"}})
	ctx := context.Background()

	utterances := []string{
		"show me unread emails",
		"load more",
		"emails about invoice",
		"1",
		"what's the weather like",
		"",
		"starred emails",
		"search everywhere",
		"try that in nowhere",
	}
	for _, u := range utterances {
		e.ProcessUtterance(ctx, u)
	}

	history := e.History()
	assert.Len(t, history, 2*len(utterances))
	assertAlternating(t, history)
}

func TestEngine_SelectActionRunsExpandedSearch(t *testing.T) {
	found := record("inv", 5, func(r *mail.EmailRecord) { r.Subject = "Invoice #42" })
	searcher := &fakeSearcher{records: []mail.EmailRecord{found}}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	require.Equal(t, StateAwaitingActionChoice, e.State())

	resp := e.ProcessUtterance(ctx, "1")

	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, []string{"inv"}, ids(resp.Matches))
	assert.Contains(t, resp.Text, "across all mail")
	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.PendingActions())

	calls := searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, mail.ScopeAll, calls[0].scope)
	assert.Contains(t, calls[0].query, "invoice")
}

func TestEngine_SelectActionByIndex(t *testing.T) {
	searcher := &fakeSearcher{}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	resp := e.SelectAction(ctx, 0)
	assert.Equal(t, ResponseText, resp.Kind)
	assert.Contains(t, resp.Text, "no such option")

	e.ProcessUtterance(ctx, "emails about invoice")
	options := e.PendingActions()
	require.Len(t, options, 5)
	assert.Equal(t, actions.KindExpandedSearchAccount, options[1].Kind)

	resp = e.SelectAction(ctx, 1)

	// the account search found nothing, so the menu comes back without it
	require.Equal(t, ResponseActions, resp.Kind)
	for _, o := range resp.Actions {
		assert.False(t, o.Kind == actions.KindExpandedSearchAccount && o.Payload.Scope == "work")
	}
	calls := searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "work", calls[0].scope)

	assertAlternating(t, e.History())
}

func TestEngine_UnrelatedReplyLeavesMenu(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	require.Equal(t, StateAwaitingActionChoice, e.State())

	resp := e.ProcessUtterance(ctx, "show starred emails")

	assert.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, StateIdle, e.State())
}

func TestEngine_QueryNamingMenuKeywordsLeavesMenu(t *testing.T) {
	snap := mailbox()
	snap.Records = append(snap.Records, record("rl", 4, func(r *mail.EmailRecord) { r.Subject = "Server reload finished" }))
	searcher := &fakeSearcher{}
	refresher := &fakeRefresher{snap: snap}
	e := newEngine(t, snap, Options{Searcher: searcher, Refresher: refresher})
	ctx := context.Background()

	first := e.ProcessUtterance(ctx, "emails about invoice")
	require.Equal(t, ResponseActions, first.Kind)

	resp := e.ProcessUtterance(ctx, "emails about reload")
	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, []string{"rl"}, ids(resp.Matches))
	assert.Equal(t, StateIdle, e.State())

	again := e.ProcessUtterance(ctx, "emails about invoice")
	require.Equal(t, ResponseActions, again.Kind)

	// names the "work" account but is a sender search
	resp = e.ProcessUtterance(ctx, "unread emails from work")
	require.Equal(t, ResponseActions, resp.Kind)
	assert.Contains(t, resp.Text, `emails from "work"`)
	require.NotNil(t, e.PendingActions())
	assert.Equal(t, "work", e.PendingActions()[0].Payload.ValueText)

	assert.Empty(t, searcher.Calls())
	assert.Empty(t, refresher.scope)
	assertAlternating(t, e.History())
}

func TestEngine_SearchUnavailableFiltersLoaded(t *testing.T) {
	snap := mailbox()
	snap.Records = append(snap.Records, record("typo", 3, func(r *mail.EmailRecord) { r.Subject = "invoce reminder" }))
	searcher := &fakeSearcher{err: fmt.Errorf("gmail: %w", mail.ErrSearchUnavailable)}
	e := newEngine(t, snap, Options{Searcher: searcher})
	ctx := context.Background()

	first := e.ProcessUtterance(ctx, "emails about invoice")
	require.Equal(t, ResponseActions, first.Kind)

	resp := e.ProcessUtterance(ctx, "search entire mailbox")

	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, []string{"typo"}, ids(resp.Matches))
	assert.Equal(t, unavailableWarning, resp.Warning)
	assert.True(t, strings.HasPrefix(resp.Text, unavailableWarning))
}

func TestEngine_SearchUnavailableWithoutCloseMatches(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	resp := e.ProcessUtterance(ctx, "yes")

	require.Equal(t, ResponseActions, resp.Kind)
	assert.Equal(t, unavailableWarning, resp.Warning)
	require.NotEmpty(t, resp.Actions)
	for _, o := range resp.Actions {
		assert.NotEqual(t, actions.KindExpandedSearchAll, o.Kind)
		assert.NotEqual(t, actions.KindFilterCurrent, o.Kind)
	}
	assert.Equal(t, StateAwaitingActionChoice, e.State())
}

func TestEngine_NoSearcherFiltersLoaded(t *testing.T) {
	snap := mailbox()
	snap.Records = append(snap.Records, record("typo", 3, func(r *mail.EmailRecord) { r.Subject = "invoce reminder" }))
	e := newEngine(t, snap, Options{})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	resp := e.ProcessUtterance(ctx, "1")

	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, noSearcherWarning, resp.Warning)
}

func TestEngine_SearchTimeout(t *testing.T) {
	searcher := &fakeSearcher{block: true}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	e.searchTimeout = 20 * time.Millisecond
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	resp := e.ProcessUtterance(ctx, "1")

	assert.Equal(t, ResponseActions, resp.Kind)
	assert.True(t, resp.Retryable)
	assert.Contains(t, resp.Text, "did not answer")
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, actions.KindExpandedSearchAll, resp.Actions[0].Kind)
	assert.Equal(t, StateAwaitingActionChoice, e.State())
	assertAlternating(t, e.History())
}

func TestEngine_ClearDiscardsInflightSearch(t *testing.T) {
	searcher := &fakeSearcher{block: true, started: make(chan struct{}, 1)}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")

	done := make(chan Response, 1)
	go func() { done <- e.ProcessUtterance(ctx, "1") }()

	<-searcher.started
	e.Clear()

	select {
	case resp := <-done:
		assert.Equal(t, "Search cancelled.", resp.Text)
		assert.Empty(t, resp.Matches)
	case <-time.After(5 * time.Second):
		t.Fatal("search was not cancelled by Clear")
	}

	assert.Empty(t, e.History())
	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.PendingActions())
}

func TestEngine_NewerUtteranceSupersedesSearch(t *testing.T) {
	searcher := &fakeSearcher{block: true, started: make(chan struct{}, 1)}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")

	done := make(chan Response, 1)
	go func() { done <- e.ProcessUtterance(ctx, "1") }()
	<-searcher.started

	resp := e.ProcessUtterance(ctx, "show me unread emails")
	stale := <-done

	assert.Equal(t, "Search cancelled.", stale.Text)
	assert.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, 5, resp.TotalCount)

	history := e.History()
	assertAlternating(t, history)
	require.Len(t, history, 6)
	assert.Equal(t, "Search cancelled.", history[3].Text)
	assert.Equal(t, resp.QueryID, history[5].QueryID)
}

func TestEngine_ClearCommand(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "show me unread emails")
	resp := e.ProcessUtterance(ctx, "clear chat")

	assert.Equal(t, "Chat cleared.", resp.Text)
	history := e.History()
	require.Len(t, history, 1)
	assert.Equal(t, conversation.RoleAssistant, history[0].Role)

	more := e.ProcessUtterance(ctx, "load more")
	assert.Equal(t, noQueryText, more.Text)
}

func TestEngine_ExpandFollowUp(t *testing.T) {
	searcher := &fakeSearcher{records: []mail.EmailRecord{record("far", 1000, nil)}}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "find emails from github")
	resp := e.ProcessUtterance(ctx, "search everywhere")

	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, []string{"far"}, ids(resp.Matches))

	calls := searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, mail.ScopeAll, calls[0].scope)
	assert.Contains(t, calls[0].query, "github")
}

func TestEngine_ScopedFollowUp(t *testing.T) {
	searcher := &fakeSearcher{records: []mail.EmailRecord{record("w", 5, nil)}}
	e := newEngine(t, mailbox(), Options{Searcher: searcher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "find emails from github")

	resp := e.ProcessUtterance(ctx, "try that in the Work account")
	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Contains(t, resp.Text, "in work")

	calls := searcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "work", calls[0].scope)

	resp = e.ProcessUtterance(ctx, "try that in school")
	assert.Equal(t, ResponseText, resp.Kind)
	assert.Contains(t, resp.Text, "Known accounts: work, personal")
	assert.Len(t, searcher.Calls(), 1)
}

func TestEngine_RefreshAction(t *testing.T) {
	refreshed := mailbox()
	refreshed.Records = append(refreshed.Records, record("new", 0, func(r *mail.EmailRecord) { r.Subject = "Invoice due" }))
	refresher := &fakeRefresher{snap: refreshed}
	e := newEngine(t, mailbox(), Options{Refresher: refresher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	resp := e.ProcessUtterance(ctx, "refresh")

	require.Equal(t, ResponseEmails, resp.Kind)
	assert.Equal(t, []string{"new"}, ids(resp.Matches))
	assert.Equal(t, mail.ScopeAll, refresher.scope)
	assert.Equal(t, 11, e.Store().Len())
}

func TestEngine_RefreshFailureKeepsLoadedMail(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("token expired")}
	e := newEngine(t, mailbox(), Options{Refresher: refresher})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "emails about invoice")
	resp := e.ProcessUtterance(ctx, "refresh")

	require.Equal(t, ResponseActions, resp.Kind)
	assert.Equal(t, refreshWarning, resp.Warning)
	assert.Equal(t, 10, e.Store().Len())
}

func TestEngine_GenericUsesCompleter(t *testing.T) {
	completer := &fakeCompleter{reply: "**Hello** there, see [docs](https://example.com)"}
	e := newEngine(t, mailbox(), Options{Completer: completer})
	ctx := context.Background()

	e.ProcessUtterance(ctx, "show me unread emails")
	resp := e.ProcessUtterance(ctx, "how are you today")

	assert.Equal(t, ResponseText, resp.Kind)
	assert.NotContains(t, resp.Text, "**")
	assert.Contains(t, resp.Text, "Hello there")

	assert.Equal(t, "how are you today", completer.req.Utterance)
	assert.Contains(t, completer.req.SystemPrompt, "Loaded emails: 10 (5 unread, 3 starred)")
	require.Len(t, completer.req.Turns, 2)
	assert.Equal(t, llm.RoleUser, completer.req.Turns[0].Role)
	assert.Equal(t, llm.RoleAssistant, completer.req.Turns[1].Role)
}

func TestEngine_GenericWithoutCompleter(t *testing.T) {
	e := newEngine(t, mailbox(), Options{})

	resp := e.ProcessUtterance(context.Background(), "how are you today")

	assert.Equal(t, noCompleterText, resp.Text)
}

func TestEngine_GenericCompleterFailure(t *testing.T) {
	e := newEngine(t, mailbox(), Options{Completer: &fakeCompleter{err: errors.New("overloaded")}})

	resp := e.ProcessUtterance(context.Background(), "how are you today")

	assert.Equal(t, llmFailedText, resp.Text)
	assertAlternating(t, e.History())
}

func TestClampSearchTimeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, DefaultSearchTimeout},
		{-time.Second, DefaultSearchTimeout},
		{time.Second, MinSearchTimeout},
		{25 * time.Second, 25 * time.Second},
		{time.Minute, MaxSearchTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClampSearchTimeout(tt.in))
		})
	}
}

func TestIsClearCommand(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"clear chat", true},
		{"Clear the conversation.", true},
		{"please reset history", true},
		{"clear", false},
		{"clear my inbox", false},
		{"show unread emails", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClearCommand(tt.text))
		})
	}
}
