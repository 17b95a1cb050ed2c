package assistant

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/teemow/inboxchat/internal/actions"
	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/intent"
	"github.com/teemow/inboxchat/internal/llm"
	"github.com/teemow/inboxchat/internal/logging"
	"github.com/teemow/inboxchat/internal/mail"
	"github.com/teemow/inboxchat/internal/pagination"
)

// ErrSearchTimeout is reported when a mail provider call exceeds the
// configured search timeout.
var ErrSearchTimeout = errors.New("mail search timed out")

// errSuperseded marks a turn whose search was cancelled by Clear or by a
// newer utterance.
var errSuperseded = errors.New("turn superseded")

const (
	DefaultSearchTimeout = 20 * time.Second
	MinSearchTimeout     = 15 * time.Second
	MaxSearchTimeout     = 30 * time.Second

	// DefaultHistoryTurns is how many turns are sent to the LLM.
	DefaultHistoryTurns = 10
)

// Searcher runs a query against the external mail provider.
type Searcher interface {
	Search(ctx context.Context, query, scope string) ([]mail.EmailRecord, error)
}

// Refresher reloads the mailbox for a filter scope.
type Refresher interface {
	Refresh(ctx context.Context, filterScope string) (mail.Snapshot, error)
}

// Completer answers conversational utterances.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// State of the action menu state machine.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingActionChoice State = "awaiting_action_choice"
)

// ResponseKind discriminates Response.
type ResponseKind string

const (
	ResponseText    ResponseKind = "text"
	ResponseEmails  ResponseKind = "emails"
	ResponseActions ResponseKind = "actions"
)

// Response is the result of one utterance.
type Response struct {
	Kind       ResponseKind       `json:"kind"`
	Text       string             `json:"text"`
	Matches    []mail.EmailRecord `json:"matches,omitempty"`
	TotalCount int                `json:"totalCount,omitempty"`
	QueryID    string             `json:"queryId,omitempty"`
	HasMore    bool               `json:"hasMore,omitempty"`
	Actions    []actions.Option   `json:"actions,omitempty"`
	Warning    string             `json:"warning,omitempty"`
	Retryable  bool               `json:"retryable,omitempty"`
}

// Options configures an Engine. Searcher, Refresher and Completer are
// optional.
type Options struct {
	Searcher  Searcher
	Refresher Refresher
	Completer Completer

	// PageSize overrides intent.DefaultPageSize for utterances that do
	// not name a count.
	PageSize           int
	SearchTimeout      time.Duration
	ConversationWindow int
	HistoryTurns       int

	// Session names the engine in logs and metrics.
	Session string
	// LogUtterances writes utterance text to logs instead of its length.
	LogUtterances bool

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

type pendingChoice struct {
	request intent.Request
	options []actions.Option
}

// Engine processes utterances for one chat session.
type Engine struct {
	store *mail.Store
	pages *pagination.Manager
	log   *conversation.Log

	searcher  Searcher
	refresher Refresher
	completer Completer

	pageSize      int
	searchTimeout time.Duration
	historyTurns  int
	logUtterances bool
	logger        *slog.Logger
	metrics       *instrumentation.Metrics

	// turnMu serializes utterances.
	turnMu sync.Mutex

	// mu guards the fields below and the commit of assistant turns.
	mu           sync.Mutex
	state        State
	pending      *pendingChoice
	lastQueryID  string
	lastPageSize int
	generation   uint64
	clears       uint64
	cancelSearch context.CancelFunc
	lastActive   time.Time
}

// New creates an engine over store.
func New(store *mail.Store, opts Options) *Engine {
	if store == nil {
		store = mail.NewStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "chat")
	if opts.Session != "" {
		logger = logging.WithSession(logger, opts.Session)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = intent.DefaultPageSize
	}
	if pageSize > intent.MaxPageSize {
		pageSize = intent.MaxPageSize
	}
	historyTurns := opts.HistoryTurns
	if historyTurns <= 0 {
		historyTurns = DefaultHistoryTurns
	}

	return &Engine{
		store:         store,
		pages:         pagination.NewManager(),
		log:           conversation.NewLog(opts.ConversationWindow),
		searcher:      opts.Searcher,
		refresher:     opts.Refresher,
		completer:     opts.Completer,
		pageSize:      pageSize,
		searchTimeout: ClampSearchTimeout(opts.SearchTimeout),
		historyTurns:  historyTurns,
		logUtterances: opts.LogUtterances,
		logger:        logger,
		metrics:       opts.Metrics,
		state:         StateIdle,
		lastActive:    time.Now(),
	}
}

// ClampSearchTimeout maps zero to the default and keeps other values in
// the supported range.
func ClampSearchTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultSearchTimeout
	case d < MinSearchTimeout:
		return MinSearchTimeout
	case d > MaxSearchTimeout:
		return MaxSearchTimeout
	default:
		return d
	}
}

var clearRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:clear|reset|wipe)\s+(?:the\s+)?(?:chat|conversation|history)\s*[.!]*\s*$`)

// IsClearCommand reports whether text asks to clear the chat.
func IsClearCommand(text string) bool {
	return clearRe.MatchString(text)
}

// ProcessUtterance handles one user utterance and returns the assistant's
// answer. It never fails: errors become the text of the answer.
func (e *Engine) ProcessUtterance(ctx context.Context, text string) Response {
	start := time.Now()
	text = strings.TrimSpace(text)

	if IsClearCommand(text) {
		e.Clear()
		resp := Response{Kind: ResponseText, Text: "Chat cleared."}
		e.log.Append(conversation.Turn{Role: conversation.RoleAssistant, Text: resp.Text})
		e.metrics.RecordUtterance(ctx, instrumentation.RouteClear, instrumentation.StatusSuccess, time.Since(start))
		return resp
	}

	// A newer utterance wins over a search still in flight.
	e.cancelInflight()

	e.turnMu.Lock()
	defer e.turnMu.Unlock()

	gen, clears, history := e.beginTurn(text)

	e.logger.Debug("processing utterance", logging.Utterance(text, e.logUtterances))

	resp, route, err := e.route(ctx, gen, text, history)
	return e.finish(ctx, gen, clears, resp, route, err, start)
}

// SelectAction runs option index (0-based) of the pending action menu.
func (e *Engine) SelectAction(ctx context.Context, index int) Response {
	start := time.Now()
	e.cancelInflight()

	e.turnMu.Lock()
	defer e.turnMu.Unlock()

	gen, clears, _ := e.beginTurn("option " + strconv.Itoa(index+1))

	e.mu.Lock()
	pending := e.pending
	awaiting := e.state == StateAwaitingActionChoice
	e.mu.Unlock()

	if !awaiting || pending == nil || index < 0 || index >= len(pending.options) {
		resp := textResponse("There is no such option to choose right now. Ask me for some emails first.")
		return e.finish(ctx, gen, clears, resp, instrumentation.RouteAction, nil, start)
	}

	resp, err := e.runAction(ctx, gen, pending, index)
	return e.finish(ctx, gen, clears, resp, instrumentation.RouteAction, err, start)
}

// LoadMore returns the next page of the most recent query.
func (e *Engine) LoadMore(ctx context.Context) Response {
	return e.ProcessUtterance(ctx, "load more")
}

// Clear wipes the conversation, pagination state and any pending menu,
// and cancels a search in flight.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelSearch != nil {
		e.cancelSearch()
		e.cancelSearch = nil
	}
	e.generation++
	e.clears++
	e.state = StateIdle
	e.pending = nil
	e.lastQueryID = ""
	e.lastPageSize = 0
	e.lastActive = time.Now()

	e.log.Clear()
	e.pages.Clear()
}

// State returns the current state of the action menu state machine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PendingActions returns the menu awaiting a choice, if any.
func (e *Engine) PendingActions() []actions.Option {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	out := make([]actions.Option, len(e.pending.options))
	copy(out, e.pending.options)
	return out
}

// History returns a copy of the conversation log.
func (e *Engine) History() []conversation.Turn {
	return e.log.Turns()
}

// Store returns the mail store the engine reads.
func (e *Engine) Store() *mail.Store {
	return e.store
}

// LastActive returns when the engine last handled a turn.
func (e *Engine) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// EvictPagesOlderThan drops pagination state opened before age ago.
func (e *Engine) EvictPagesOlderThan(age time.Duration) int {
	return e.pages.EvictOlderThan(age)
}

// Refresh reloads the mailbox through the Refresher, keeping the current
// filter scope.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.RefreshScope(ctx, e.store.Snapshot().CurrentFilterScope)
}

// RefreshScope reloads the mailbox for filterScope.
func (e *Engine) RefreshScope(ctx context.Context, filterScope string) error {
	if e.refresher == nil {
		return errors.New("no mail refresher configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := e.refresher.Refresh(ctx, filterScope)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = instrumentation.StatusTimeout
			err = errors.Join(ErrSearchTimeout, err)
		}
	}
	e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationRefresh, status, time.Since(start))
	if err != nil {
		e.logger.Warn("mailbox refresh failed", logging.Scope(filterScope), logging.Err(err))
		return err
	}

	e.store.Replace(snap)
	e.logger.Info("mailbox refreshed",
		logging.Scope(e.store.Snapshot().CurrentFilterScope),
		slog.Int("records", len(snap.Records)))
	return nil
}

// cancelInflight cancels a search registered by the running turn.
func (e *Engine) cancelInflight() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelSearch != nil {
		e.cancelSearch()
		e.cancelSearch = nil
		e.generation++
	}
}

// beginTurn records the user turn and returns the history before it. The
// turn and the counters are taken together so a concurrent Clear either
// wipes both or neither.
func (e *Engine) beginTurn(text string) (gen, clears uint64, history []conversation.Turn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActive = time.Now()
	history = e.log.Turns()
	e.log.Append(conversation.Turn{Role: conversation.RoleUser, Text: text})
	return e.generation, e.clears, history
}

// finish commits the assistant turn unless the turn was superseded. A turn
// wiped by Clear leaves nothing behind; one superseded by a newer
// utterance records that it was cancelled.
func (e *Engine) finish(ctx context.Context, gen, clears uint64, resp Response, route string, err error, start time.Time) Response {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}

	e.mu.Lock()
	stale := e.generation != gen || errors.Is(err, errSuperseded)
	cleared := e.clears != clears
	if stale {
		resp = textResponse("Search cancelled.")
		status = instrumentation.StatusError
	}
	if !cleared {
		e.log.Append(conversation.Turn{
			Role:    conversation.RoleAssistant,
			Text:    resp.Text,
			Matches: resp.Matches,
			Actions: resp.Actions,
			QueryID: resp.QueryID,
		})
	}
	e.lastActive = time.Now()
	e.mu.Unlock()

	if stale {
		e.logger.Info("discarded stale turn", slog.String("route", route), slog.Bool("cleared", cleared))
	} else if err != nil {
		e.logger.Warn("turn completed with error", slog.String("route", route), logging.Err(err))
	}
	e.metrics.RecordUtterance(ctx, route, status, time.Since(start))

	return resp
}

func textResponse(text string) Response {
	return Response{Kind: ResponseText, Text: text}
}
