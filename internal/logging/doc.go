// Package logging provides structured logging helpers shared by the chat
// engine, the MCP tools and the CLI.
//
// All logging goes through log/slog. The helpers here fix attribute names
// (operation, session, query_id, intent, scope, status, error, tool) so log
// lines from different packages can be joined.
//
// # Usage Patterns
//
//	logger := logging.WithSession(logging.WithOperation(slog.Default(), "chat.send"), session)
//	logger.Info("query executed",
//	    logging.Intent(string(req.Kind)),
//	    logging.QueryID(result.QueryID),
//	    logging.Status(logging.StatusSuccess))
//
// # Privacy
//
// Session ids are hashed before they are logged and utterances are reduced
// to their length unless the caller opts in. API keys and OAuth tokens are
// never logged; use SanitizeToken when a token must be mentioned.
package logging
