package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/teemow/inboxchat/internal/assistant"
	"github.com/teemow/inboxchat/internal/config"
	"github.com/teemow/inboxchat/internal/credential"
	"github.com/teemow/inboxchat/internal/gmail"
	"github.com/teemow/inboxchat/internal/google"
	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/llm"
	"github.com/teemow/inboxchat/internal/logging"
	"github.com/teemow/inboxchat/internal/mail"
)

// app holds everything a chat session needs, built from the config file.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	searcher  *gmail.Searcher
	completer *llm.Client
	mailbox   *mail.Store
}

// googleCredentials prefers the config file and falls back to the
// GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars.
func googleCredentials(cfg *config.Config) google.Credentials {
	creds := google.Credentials{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
	}
	if creds.ClientID == "" {
		creds.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if creds.ClientSecret == "" {
		creds.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	return creds
}

// newApp wires the Gmail searcher, the LLM client and the initial mailbox.
// Missing tokens or API keys degrade the app instead of failing it.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		mailbox: mail.NewStore(),
	}

	provider := google.NewFileTokenProvider(googleCredentials(cfg))
	var clients []*gmail.Client
	for _, account := range cfg.Accounts {
		if !provider.HasTokenForAccount(account) {
			logger.Warn(google.GetAuthenticationErrorMessage(account), logging.Account(account))
			continue
		}
		client, err := gmail.NewClient(ctx, provider, account)
		if err != nil {
			logger.Warn("failed to create Gmail client", logging.Account(account), logging.Err(err))
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) > 0 {
		a.searcher = gmail.NewSearcher(clients, gmail.SearcherConfig{
			SearchResults:  cfg.SearchLimit,
			RefreshResults: cfg.InboxLimit,
			Logger:         logger,
			Metrics:        metrics,
		})
	}

	if !cfg.LLM.Disabled {
		completer, err := newCompleter(cfg, metrics)
		switch {
		case err == nil:
			a.completer = completer
		case errors.Is(err, credential.ErrNotFound), errors.Is(err, llm.ErrMissingAPIKey):
			logger.Info("no LLM API key configured, conversational answers are off",
				"hint", "inboxchat credential set "+credential.KeyLLMAPIKey)
		default:
			return nil, err
		}
	}

	if err := a.loadMailbox(ctx); err != nil {
		logger.Warn("initial mailbox load failed", logging.Err(err))
	}
	return a, nil
}

func newCompleter(cfg *config.Config, metrics *instrumentation.Metrics) (*llm.Client, error) {
	store, err := credential.Open()
	if err != nil {
		// env var still works without a keyring
		store = nil
	}
	key, err := credential.LLMAPIKey(store)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(llm.Config{
		Endpoint:          cfg.LLM.Endpoint,
		APIKey:            key,
		Model:             cfg.LLM.Model,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		Timeout:           cfg.LLM.Timeout,
		Metrics:           metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}
	return client, nil
}

// loadMailbox fills the shared mailbox with the inbox of every account.
func (a *app) loadMailbox(ctx context.Context) error {
	if a.searcher == nil {
		a.mailbox.Replace(mail.Snapshot{AccountScopes: a.cfg.Accounts})
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SearchTimeout)
	defer cancel()

	snap, err := a.searcher.Refresh(ctx, mail.ScopeAll)
	if err != nil {
		a.mailbox.Replace(mail.Snapshot{AccountScopes: a.searcher.Accounts()})
		return err
	}
	a.mailbox.Replace(snap)
	a.logger.Info("mailbox loaded", "records", len(snap.Records), "accounts", len(a.searcher.Accounts()))
	return nil
}

// engineOptions is the template for every chat session. Optional
// collaborators are left nil rather than set to typed nil pointers.
func (a *app) engineOptions() assistant.Options {
	opts := assistant.Options{
		PageSize:           a.cfg.PageSize,
		SearchTimeout:      a.cfg.SearchTimeout,
		ConversationWindow: a.cfg.ConversationWindow,
		LogUtterances:      a.cfg.LogUtterances,
		Logger:             a.logger,
		Metrics:            a.metrics,
	}
	if a.searcher != nil {
		opts.Searcher = a.searcher
		opts.Refresher = a.searcher
	}
	if a.completer != nil {
		opts.Completer = a.completer
	}
	return opts
}

// newEngine creates a standalone engine seeded from the shared mailbox.
func (a *app) newEngine(session string) *assistant.Engine {
	store := mail.NewStore()
	store.Replace(a.mailbox.Snapshot())
	opts := a.engineOptions()
	opts.Session = session
	return assistant.New(store, opts)
}
