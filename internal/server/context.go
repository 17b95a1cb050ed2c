package server

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/teemow/inboxchat/internal/assistant"
	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/logging"
	"github.com/teemow/inboxchat/internal/mail"
)

// DefaultSession is used when a caller names no session.
const DefaultSession = "default"

// Options configures a ServerContext.
type Options struct {
	// Engine is the template for every session engine. Session and
	// Logger are filled in per session.
	Engine assistant.Options

	// Mailbox holds the snapshot new sessions start from. Nil means an
	// empty mailbox.
	Mailbox *mail.Store

	// IdleTimeout drops sessions without a turn for that long. Zero
	// keeps sessions until shutdown.
	IdleTimeout time.Duration

	// JanitorInterval is how often idle sessions are swept. Defaults to
	// a minute.
	JanitorInterval time.Duration

	Logger *slog.Logger
	Audit  *instrumentation.AuditLogger
}

// ServerContext owns the chat sessions served by one process.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	engineOpts assistant.Options
	mailbox    *mail.Store
	logger     *slog.Logger
	audit      *instrumentation.AuditLogger

	mu       sync.RWMutex
	sessions map[string]*assistant.Engine
	shutdown bool

	janitor *janitor
}

// NewServerContext creates a server context. A janitor goroutine runs
// while the context is alive when opts.IdleTimeout is set.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mailbox := opts.Mailbox
	if mailbox == nil {
		mailbox = mail.NewStore()
	}

	sc := &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		engineOpts: opts.Engine,
		mailbox:    mailbox,
		logger:     logger,
		audit:      opts.Audit,
		sessions:   make(map[string]*assistant.Engine),
	}

	if opts.IdleTimeout > 0 {
		sc.janitor = startJanitor(sc, opts.IdleTimeout, opts.JanitorInterval)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics shared by all sessions. May be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.engineOpts.Metrics
}

// AuditLogger returns the tool audit logger. May be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Mailbox returns the store new sessions are seeded from.
func (sc *ServerContext) Mailbox() *mail.Store {
	return sc.mailbox
}

// Engine returns the engine of session, creating it on first use. New
// engines start from a copy of the shared mailbox.
func (sc *ServerContext) Engine(session string) *assistant.Engine {
	if session == "" {
		session = DefaultSession
	}

	sc.mu.RLock()
	e, ok := sc.sessions[session]
	sc.mu.RUnlock()
	if ok {
		return e
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if e, ok := sc.sessions[session]; ok {
		return e
	}

	store := mail.NewStore()
	store.Replace(sc.mailbox.Snapshot())

	opts := sc.engineOpts
	opts.Session = session
	opts.Logger = sc.logger
	e = assistant.New(store, opts)
	sc.sessions[session] = e

	sc.engineOpts.Metrics.IncrementActiveSessions(sc.ctx)
	sc.logger.Debug("session started", logging.Session(session))
	return e
}

// Lookup returns the engine of an existing session.
func (sc *ServerContext) Lookup(session string) (*assistant.Engine, bool) {
	if session == "" {
		session = DefaultSession
	}
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	e, ok := sc.sessions[session]
	return e, ok
}

// RemoveSession clears and forgets a session. It reports whether the
// session existed.
func (sc *ServerContext) RemoveSession(session string) bool {
	sc.mu.Lock()
	e, ok := sc.sessions[session]
	delete(sc.sessions, session)
	sc.mu.Unlock()

	if !ok {
		return false
	}
	e.Clear()
	sc.engineOpts.Metrics.DecrementActiveSessions(sc.ctx)
	return true
}

// Sessions returns the active session names in sorted order.
func (sc *ServerContext) Sessions() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	names := make([]string, 0, len(sc.sessions))
	for name := range sc.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvictIdle removes sessions idle for longer than timeout and drops
// pagination state older than timeout from the others. It returns the
// number of removed sessions.
func (sc *ServerContext) EvictIdle(timeout time.Duration) int {
	now := time.Now()

	sc.mu.RLock()
	var idle []string
	var active []*assistant.Engine
	for name, e := range sc.sessions {
		if now.Sub(e.LastActive()) > timeout {
			idle = append(idle, name)
		} else {
			active = append(active, e)
		}
	}
	sc.mu.RUnlock()

	removed := 0
	for _, name := range idle {
		if sc.RemoveSession(name) {
			removed++
		}
	}
	for _, e := range active {
		if n := e.EvictPagesOlderThan(timeout); n > 0 {
			sc.engineOpts.Metrics.RecordPaginationEvicted(sc.ctx, n)
		}
	}
	return removed
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown stops the janitor and clears every session.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	sc.mu.Unlock()

	if sc.janitor != nil {
		sc.janitor.stop()
	}
	for _, name := range sc.Sessions() {
		sc.RemoveSession(name)
	}
	sc.cancel()
	return nil
}
