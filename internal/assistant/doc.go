// Package assistant is the chat engine: it turns one user utterance into
// exactly one assistant turn.
//
// An utterance is routed in this order:
//
//  1. "clear chat" wipes the conversation and pagination state.
//  2. While an action menu is pending, a reply that picks an option runs it.
//  3. Follow-ups ("load more", "expand", "do that in work") are resolved
//     against the conversation log.
//  4. The intent classifier maps the text to a mail query, which runs
//     against the loaded mail. Results are paginated; an empty result
//     produces the action menu and the engine waits for a choice.
//  5. Everything else goes to the LLM relay, or gets a help text when no
//     relay is configured.
//
// Searches against the mail provider are bounded by a timeout and can be
// cancelled by Clear or by a newer utterance. A result that arrives after
// its turn was superseded is dropped. When the provider is unavailable the
// engine falls back to a loose filter over the loaded mail and says so.
package assistant
