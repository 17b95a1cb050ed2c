package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/inboxchat/internal/actions"
	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/intent"
	"github.com/teemow/inboxchat/internal/logging"
	"github.com/teemow/inboxchat/internal/mail"
	"github.com/teemow/inboxchat/internal/query"
)

const (
	unavailableWarning = "Mail search is unavailable right now, so I looked through the emails already loaded instead."
	noSearcherWarning  = "Searching the mail provider is not set up, so I looked through the emails already loaded instead."
	refreshWarning     = "Reloading the mailbox failed, so I used the emails already loaded."
	noRefresherWarning = "Reloading the mailbox is not set up, so I used the emails already loaded."
)

// searchProvider runs req against the external mail provider in scope.
// tried lists the options that led here so a second empty result does not
// offer them again.
func (e *Engine) searchProvider(ctx context.Context, gen uint64, req intent.Request, scope string, tried ...actions.Option) (Response, error) {
	if len(tried) == 0 {
		tried = []actions.Option{searchOption(scope)}
	}
	if e.searcher == nil {
		return e.filterLoaded(ctx, req, noSearcherWarning, tried...), nil
	}

	sctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()
	if !e.registerSearch(gen, cancel) {
		return Response{}, errSuperseded
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithIntent(string(req.Kind)).
		WithScope(scope).
		Build()
	spanCtx, span := instrumentation.StartMailSpan(sctx, instrumentation.MailOperationSearch, attrs...)

	start := time.Now()
	records, err := e.searcher.Search(spanCtx, req.SearchQuery(), scope)
	elapsed := time.Since(start)

	if e.unregisterSearch(gen) {
		instrumentation.SetSpanError(span, errSuperseded)
		span.End()
		e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationSearch, instrumentation.StatusError, elapsed)
		return Response{}, errSuperseded
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		span.End()

		if errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationSearch, instrumentation.StatusTimeout, elapsed)
			return e.timedOut(ctx, req), fmt.Errorf("%w after %s: %w", ErrSearchTimeout, e.searchTimeout, err)
		}
		e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationSearch, instrumentation.StatusError, elapsed)
		if ctx.Err() != nil {
			return textResponse("Search cancelled."), ctx.Err()
		}

		if !errors.Is(err, mail.ErrSearchUnavailable) {
			err = fmt.Errorf("%w: %w", mail.ErrSearchUnavailable, err)
		}
		e.logger.Warn("mail search failed, filtering loaded mail",
			logging.Intent(string(req.Kind)),
			logging.Scope(scope),
			logging.Err(err))
		return e.filterLoaded(ctx, req, unavailableWarning, tried...), nil
	}

	instrumentation.SetSpanSuccess(span)
	span.End()
	e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationSearch, instrumentation.StatusSuccess, elapsed)

	result := query.Wrap(req, records)
	e.metrics.RecordQueryResult(ctx, string(req.Kind), result.TotalCount)
	e.logger.Info("mail search completed",
		logging.Intent(string(req.Kind)),
		logging.Scope(scope),
		logging.QueryID(result.QueryID),
		"total", result.TotalCount)

	if result.Empty() {
		return e.offer(ctx, req, e.store.Snapshot(), "", tried...), nil
	}

	lead := fmt.Sprintf("Found %d %s", result.TotalCount, describeCount(req, result.TotalCount))
	if scope == mail.ScopeAll {
		lead += " across all mail."
	} else {
		lead += fmt.Sprintf(" in %s.", scope)
	}
	return e.present(req, result, lead, ""), nil
}

// filterLoaded looks for close matches among the loaded mail.
func (e *Engine) filterLoaded(ctx context.Context, req intent.Request, warning string, tried ...actions.Option) Response {
	snap := e.store.Snapshot()

	var result query.Result
	if req.ValueText == "" {
		result = query.Execute(req, snap.Records)
	} else {
		result = query.FilterLoose(req, snap.Records)
	}
	e.metrics.RecordQueryResult(ctx, string(req.Kind), result.TotalCount)

	tried = append(tried, actions.Option{Kind: actions.KindFilterCurrent, Payload: actions.Payload{Scope: snap.CurrentFilterScope}})
	if result.Empty() {
		return e.offer(ctx, req, snap, warning, tried...)
	}

	lead := fmt.Sprintf("Found %d loaded %s that come close.", result.TotalCount, describeCount(req, result.TotalCount))
	return e.present(req, result, lead, warning)
}

// refreshAndRetry reloads the mailbox for filterScope and runs req again.
func (e *Engine) refreshAndRetry(ctx context.Context, gen uint64, req intent.Request, filterScope string, tried ...actions.Option) (Response, error) {
	if e.refresher == nil {
		return e.runQuery(ctx, req, noRefresherWarning, tried...), nil
	}

	rctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()
	if !e.registerSearch(gen, cancel) {
		return Response{}, errSuperseded
	}

	spanCtx, span := instrumentation.StartMailSpan(rctx, instrumentation.MailOperationRefresh,
		instrumentation.NewSpanAttributeBuilder().WithScope(filterScope).Build()...)
	defer span.End()

	start := time.Now()
	snap, err := e.refresher.Refresh(spanCtx, filterScope)
	elapsed := time.Since(start)

	if e.unregisterSearch(gen) {
		instrumentation.SetSpanError(span, errSuperseded)
		return Response{}, errSuperseded
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		if errors.Is(rctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationRefresh, instrumentation.StatusTimeout, elapsed)
			return e.timedOut(ctx, req), fmt.Errorf("%w after %s: %w", ErrSearchTimeout, e.searchTimeout, err)
		}
		e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationRefresh, instrumentation.StatusError, elapsed)
		if ctx.Err() != nil {
			return textResponse("Search cancelled."), ctx.Err()
		}
		e.logger.Warn("mailbox refresh failed, using loaded mail", logging.Scope(filterScope), logging.Err(err))
		return e.runQuery(ctx, req, refreshWarning, tried...), nil
	}

	instrumentation.SetSpanSuccess(span)
	e.metrics.RecordMailOperation(ctx, instrumentation.MailOperationRefresh, instrumentation.StatusSuccess, elapsed)
	e.store.Replace(snap)

	return e.runQuery(ctx, req, "", tried...), nil
}

// timedOut keeps the full menu so the user can retry.
func (e *Engine) timedOut(ctx context.Context, req intent.Request) Response {
	resp := e.offer(ctx, req, e.store.Snapshot(), "")
	resp.Text = fmt.Sprintf("The mail provider did not answer within %s. You can try again:\n%s",
		e.searchTimeout, actions.Menu(resp.Actions))
	resp.Retryable = true
	return resp
}

// registerSearch makes cancel reachable from Clear and newer utterances.
// It fails when the turn was already superseded.
func (e *Engine) registerSearch(gen uint64, cancel context.CancelFunc) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		return false
	}
	e.cancelSearch = cancel
	return true
}

// unregisterSearch reports whether the turn was superseded while the
// call was running.
func (e *Engine) unregisterSearch(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		return true
	}
	e.cancelSearch = nil
	return false
}

func searchOption(scope string) actions.Option {
	kind := actions.KindExpandedSearchAccount
	if scope == mail.ScopeAll {
		kind = actions.KindExpandedSearchAll
	}
	return actions.Option{Kind: kind, Payload: actions.Payload{Scope: scope}}
}
