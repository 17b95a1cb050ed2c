package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/logging"
	"github.com/teemow/inboxchat/internal/mail"
)

const (
	// DefaultSearchResults caps messages fetched per account for a search.
	DefaultSearchResults = 50
	// DefaultRefreshResults caps messages loaded per account on refresh.
	DefaultRefreshResults = 200
	// DefaultConcurrency bounds parallel metadata fetches per account.
	DefaultConcurrency = 8
)

// SearcherConfig tunes a Searcher. Zero values use the defaults.
type SearcherConfig struct {
	SearchResults  int
	RefreshResults int
	Concurrency    int
	Logger         *slog.Logger
	Metrics        *instrumentation.Metrics
}

// Searcher runs queries and inbox refreshes across several accounts.
type Searcher struct {
	accounts       []string
	clients        map[string]*Client
	searchResults  int64
	refreshResults int64
	concurrency    int
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
}

// NewSearcher creates a Searcher over clients. Account order is kept for
// the scopes reported by Refresh.
func NewSearcher(clients []*Client, cfg SearcherConfig) *Searcher {
	s := &Searcher{
		clients:        make(map[string]*Client, len(clients)),
		searchResults:  int64(cfg.SearchResults),
		refreshResults: int64(cfg.RefreshResults),
		concurrency:    cfg.Concurrency,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
	}
	if s.searchResults <= 0 {
		s.searchResults = DefaultSearchResults
	}
	if s.refreshResults <= 0 {
		s.refreshResults = DefaultRefreshResults
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = logging.WithOperation(s.logger, "gmail")

	for _, c := range clients {
		if _, dup := s.clients[c.Account()]; dup {
			continue
		}
		s.accounts = append(s.accounts, c.Account())
		s.clients[c.Account()] = c
	}
	return s
}

// Accounts returns the account names in configuration order.
func (s *Searcher) Accounts() []string {
	return append([]string(nil), s.accounts...)
}

// Search runs a Gmail query in scope, which is mail.ScopeAll or an account
// name. Results of all accounts are merged newest first.
func (s *Searcher) Search(ctx context.Context, query, scope string) ([]mail.EmailRecord, error) {
	clients, err := s.clientsFor(scope)
	if err != nil {
		return nil, err
	}

	q := query
	if scope == mail.ScopeAll {
		// Search outside the inbox too.
		q = "in:anywhere " + query
	}

	records, err := s.collect(ctx, clients, q, s.searchResults)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search finished",
		logging.Scope(scope),
		slog.Int("accounts", len(clients)),
		slog.Int("records", len(records)))
	return records, nil
}

// Refresh reloads the inbox of every account, limited to the filterScope
// view.
func (s *Searcher) Refresh(ctx context.Context, filterScope string) (mail.Snapshot, error) {
	clients, err := s.clientsFor(mail.ScopeAll)
	if err != nil {
		return mail.Snapshot{}, err
	}

	records, err := s.collect(ctx, clients, InboxQuery(filterScope), s.refreshResults)
	if err != nil {
		return mail.Snapshot{}, err
	}

	if filterScope == "" {
		filterScope = mail.ScopeAll
	}
	s.logger.Info("inbox refreshed",
		logging.Scope(filterScope),
		slog.Int("accounts", len(clients)),
		slog.Int("records", len(records)))

	return mail.Snapshot{
		Records:            records,
		AccountScopes:      s.Accounts(),
		CurrentFilterScope: filterScope,
	}, nil
}

func (s *Searcher) clientsFor(scope string) ([]*Client, error) {
	if len(s.accounts) == 0 {
		return nil, fmt.Errorf("%w: no Gmail accounts configured", mail.ErrSearchUnavailable)
	}
	if scope == "" || scope == mail.ScopeAll {
		out := make([]*Client, 0, len(s.accounts))
		for _, a := range s.accounts {
			out = append(out, s.clients[a])
		}
		return out, nil
	}
	c, ok := s.clients[scope]
	if !ok {
		return nil, fmt.Errorf("%w: unknown account %q", mail.ErrSearchUnavailable, scope)
	}
	return []*Client{c}, nil
}

// collect queries every client in parallel. One failing account fails the
// whole call.
func (s *Searcher) collect(ctx context.Context, clients []*Client, q string, limit int64) ([]mail.EmailRecord, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		records []mail.EmailRecord
	)
	for _, c := range clients {
		g.Go(func() error {
			found, err := s.fetch(gctx, c, q, limit)
			if err != nil {
				return err
			}
			mu.Lock()
			records = append(records, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, classify(ctx, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReceivedAt.After(records[j].ReceivedAt)
	})
	return records, nil
}

// fetch lists message ids for one account and loads their metadata.
func (s *Searcher) fetch(ctx context.Context, c *Client, q string, limit int64) ([]mail.EmailRecord, error) {
	start := time.Now()
	ids, err := c.ListMessageIDs(ctx, q, limit)
	if err != nil {
		s.metrics.RecordMailOperation(ctx, instrumentation.MailOperationSearch, instrumentation.StatusError, time.Since(start))
		return nil, err
	}

	records := make([]mail.EmailRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			msg, err := c.GetMessageMetadata(gctx, id)
			if err != nil {
				return err
			}
			records[i] = ToRecord(msg, c.Account())
			return nil
		})
	}

	status := instrumentation.StatusSuccess
	err = g.Wait()
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordMailOperation(ctx, instrumentation.MailOperationGet, status, time.Since(start))
	if err != nil {
		s.logger.Warn("fetching message metadata failed",
			logging.Account(c.Account()),
			logging.Err(err))
		return nil, err
	}
	return records, nil
}

// classify keeps context errors intact and marks everything else as the
// provider being unavailable.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("gmail: %w", ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gmail: %w", err)
	}
	if errors.Is(err, mail.ErrSearchUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", mail.ErrSearchUnavailable, err)
}
