// Package gmail reads mail from one or more Gmail accounts for the
// assistant.
//
// A Client wraps the Gmail users service of a single account. A Searcher
// fans queries and inbox refreshes out over several clients and converts
// Gmail messages into mail.EmailRecord values. Transport and API failures
// are reported wrapped in mail.ErrSearchUnavailable so the assistant can
// fall back to the mail it already loaded.
//
// Authentication:
// Tokens come from a google.TokenProvider, normally the file based provider
// filled by `inboxchat auth` (~/.cache/inboxchat/google-<account>.token).
//
// Example usage:
//
//	provider := google.NewFileTokenProvider(creds)
//	work, err := gmail.NewClient(ctx, provider, "work")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	searcher := gmail.NewSearcher([]*gmail.Client{work}, gmail.SearcherConfig{})
//	snap, err := searcher.Refresh(ctx, mail.ScopeAll)
//	records, err := searcher.Search(ctx, "from:github", mail.ScopeAll)
package gmail
