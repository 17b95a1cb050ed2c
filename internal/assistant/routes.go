package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/inboxchat/internal/actions"
	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/intent"
	"github.com/teemow/inboxchat/internal/logging"
	"github.com/teemow/inboxchat/internal/mail"
	"github.com/teemow/inboxchat/internal/pagination"
	"github.com/teemow/inboxchat/internal/query"
)

const (
	helpText = `I can help you find emails. Try "show unread emails", "starred emails", ` +
		`"emails from github" or "emails about invoice".`
	noQueryText = `There is no earlier search to continue. Ask for some emails first, ` +
		`for example "show unread emails".`
	lostQueryText = "I lost track of that search. Please retry your search."
)

func (e *Engine) route(ctx context.Context, gen uint64, text string, history []conversation.Turn) (Response, string, error) {
	if text == "" {
		return textResponse(helpText), instrumentation.RouteGeneric, nil
	}

	e.mu.Lock()
	pending := e.pending
	awaiting := e.state == StateAwaitingActionChoice
	e.mu.Unlock()

	// A reply that is a query of its own leaves the menu.
	if awaiting && pending != nil {
		if !intent.IsQuery(text) {
			if idx, ok := actions.Choose(text, pending.options); ok {
				resp, err := e.runAction(ctx, gen, pending, idx)
				return resp, instrumentation.RouteAction, err
			}
		}
		e.setIdle()
	}

	if res, ok := conversation.ResolveDetailed(text, history); ok {
		switch res.Kind {
		case conversation.ResolutionLoadMore:
			resp, err := e.loadMore(ctx)
			return resp, instrumentation.RouteLoadMore, err
		case conversation.ResolutionExpand:
			req := e.requestFor(res.Base)
			resp, err := e.searchProvider(ctx, gen, req, mail.ScopeAll)
			return resp, instrumentation.RouteResolved, err
		case conversation.ResolutionScoped:
			scope, known := e.matchScope(res.Scope)
			if !known {
				return textResponse(e.unknownScopeText(res.Scope)), instrumentation.RouteResolved, nil
			}
			req := e.requestFor(res.Base)
			resp, err := e.searchProvider(ctx, gen, req, scope)
			return resp, instrumentation.RouteResolved, err
		}
	}

	if conversation.IsLoadMore(text) {
		return textResponse(noQueryText), instrumentation.RouteLoadMore, nil
	}

	if req, ok := intent.Classify(text); ok {
		r := e.withPageSize(*req)
		return e.runQuery(ctx, r, ""), string(r.Kind), nil
	}

	resp, err := e.generic(ctx, text, history)
	return resp, instrumentation.RouteGeneric, err
}

// requestFor classifies the text of an earlier turn. Text no rule matches
// becomes a content search for the cleaned text.
func (e *Engine) requestFor(text string) intent.Request {
	return e.withPageSize(intent.MustClassify(text))
}

func (e *Engine) withPageSize(req intent.Request) intent.Request {
	if req.PageSize == intent.DefaultPageSize {
		req.PageSize = e.pageSize
	}
	if req.Kind == intent.KindGeneric {
		req.Kind = intent.KindByContent
	}
	return req
}

// runQuery executes req against the loaded mail.
func (e *Engine) runQuery(ctx context.Context, req intent.Request, warning string, tried ...actions.Option) Response {
	snap := e.store.Snapshot()
	result := query.Execute(req, snap.Records)
	e.metrics.RecordQueryResult(ctx, string(req.Kind), result.TotalCount)

	e.logger.Info("query executed",
		logging.Intent(string(req.Kind)),
		logging.QueryID(result.QueryID),
		logging.Scope(snap.CurrentFilterScope),
		"total", result.TotalCount)

	if result.Empty() {
		return e.offer(ctx, req, snap, warning, tried...)
	}
	return e.present(req, result, "", warning)
}

// present opens pagination for result and returns its first page.
func (e *Engine) present(req intent.Request, result query.Result, lead, warning string) Response {
	first := e.pages.Open(result.QueryID, result.Matches, req.PageSize)

	e.mu.Lock()
	e.lastQueryID = result.QueryID
	e.lastPageSize = req.PageSize
	e.state = StateIdle
	e.pending = nil
	e.mu.Unlock()

	hasMore := len(first) < result.TotalCount
	if lead == "" {
		lead = fmt.Sprintf("Found %d %s.", result.TotalCount, describeCount(req, result.TotalCount))
	}
	text := lead
	if hasMore {
		text += fmt.Sprintf(` Showing the newest %d. Say "load more" for the rest.`, len(first))
	}
	if warning != "" {
		text = warning + " " + text
	}

	return Response{
		Kind:       ResponseEmails,
		Text:       text,
		Matches:    first,
		TotalCount: result.TotalCount,
		QueryID:    result.QueryID,
		HasMore:    hasMore,
		Warning:    warning,
	}
}

// offer answers an empty result with the action menu and waits for a
// choice. Options equal to one in tried are left out.
func (e *Engine) offer(ctx context.Context, req intent.Request, snap mail.Snapshot, warning string, tried ...actions.Option) Response {
	options := actions.Generate(req, actionContext(snap))
	for _, t := range tried {
		options = actions.Without(options, t)
	}

	e.mu.Lock()
	e.state = StateAwaitingActionChoice
	e.pending = &pendingChoice{request: req, options: options}
	e.mu.Unlock()

	e.metrics.RecordFallbackMenu(ctx, string(req.Kind))

	text := fmt.Sprintf("I couldn't find any %s. Would you like me to:\n%s", req.Describe(), actions.Menu(options))
	if warning != "" {
		text = warning + "\n" + text
	}
	return Response{
		Kind:    ResponseActions,
		Text:    text,
		Actions: options,
		Warning: warning,
	}
}

// runAction executes option idx of a pending menu.
func (e *Engine) runAction(ctx context.Context, gen uint64, pending *pendingChoice, idx int) (Response, error) {
	opt := pending.options[idx]
	req := opt.Payload.Request()
	e.setIdle()

	e.logger.Info("running fallback action",
		"action", string(opt.Kind),
		logging.Intent(string(req.Kind)),
		logging.Scope(opt.Payload.Scope))

	var (
		resp Response
		err  error
	)
	switch opt.Kind {
	case actions.KindExpandedSearchAll, actions.KindExpandedSearchAccount:
		resp, err = e.searchProvider(ctx, gen, req, opt.Payload.Scope, opt)
	case actions.KindFilterCurrent:
		resp = e.filterLoaded(ctx, req, "", opt)
	case actions.KindSwitchView:
		resp, err = e.refreshAndRetry(ctx, gen, req, mail.ScopeAll, opt)
	case actions.KindRefresh:
		resp, err = e.refreshAndRetry(ctx, gen, req, opt.Payload.Scope, opt)
	default:
		resp = textResponse("I don't know how to do that.")
	}

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	e.metrics.RecordActionChosen(ctx, string(opt.Kind), status)
	return resp, err
}

// loadMore pages the most recent query.
func (e *Engine) loadMore(ctx context.Context) (Response, error) {
	e.mu.Lock()
	id := e.lastQueryID
	size := e.lastPageSize
	e.mu.Unlock()
	if size <= 0 {
		size = e.pageSize
	}
	if id == "" {
		id, _ = e.log.LastQueryID()
	}
	if id == "" {
		return textResponse(noQueryText), nil
	}

	page, err := e.pages.LoadMore(id, size)
	if err != nil {
		if errors.Is(err, pagination.ErrUnknownQuery) {
			e.logger.Error("load more for unknown query", logging.QueryID(id), logging.Err(err))
		}
		e.metrics.RecordLoadMore(ctx, instrumentation.StatusError)
		return textResponse(lostQueryText), err
	}

	cursor, total, err := e.pages.Progress(id)
	if err != nil {
		e.metrics.RecordLoadMore(ctx, instrumentation.StatusError)
		return textResponse(lostQueryText), err
	}

	if len(page) == 0 {
		e.metrics.RecordLoadMore(ctx, instrumentation.LoadMoreExhausted)
		return Response{
			Kind:       ResponseText,
			Text:       "That's all: there are no more results for this search.",
			TotalCount: total,
			QueryID:    id,
		}, nil
	}

	e.metrics.RecordLoadMore(ctx, instrumentation.StatusSuccess)
	return Response{
		Kind:       ResponseEmails,
		Text:       fmt.Sprintf("Showing %d to %d of %d.", cursor-len(page)+1, cursor, total),
		Matches:    page,
		TotalCount: total,
		QueryID:    id,
		HasMore:    cursor < total,
	}, nil
}

func (e *Engine) setIdle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateIdle
	e.pending = nil
}

// matchScope finds the account scope a follow-up names.
func (e *Engine) matchScope(name string) (string, bool) {
	if strings.EqualFold(name, mail.ScopeAll) {
		return mail.ScopeAll, true
	}
	for _, scope := range e.store.Snapshot().AccountScopes {
		if strings.EqualFold(scope, name) {
			return scope, true
		}
	}
	return "", false
}

func (e *Engine) unknownScopeText(name string) string {
	scopes := e.store.Snapshot().AccountScopes
	if len(scopes) == 0 {
		return fmt.Sprintf("I don't know an account called %q.", name)
	}
	return fmt.Sprintf("I don't know an account called %q. Known accounts: %s.", name, strings.Join(scopes, ", "))
}

func actionContext(snap mail.Snapshot) actions.Context {
	return actions.Context{
		AccountScopes:      snap.AccountScopes,
		CurrentFilterScope: snap.CurrentFilterScope,
		LoadedCount:        len(snap.Records),
	}
}

func describeCount(req intent.Request, n int) string {
	desc := req.Describe()
	if n == 1 {
		desc = strings.Replace(desc, "emails", "email", 1)
	}
	return desc
}
