// Package chat_tools exposes the email chat assistant as MCP tools.
//
// Every tool takes an optional "session" argument. Calls without it use
// the MCP client session, or "default" on transports without one. Each
// session has its own conversation, result pages and action menu.
//
// Tools:
//   - chat_send: send one utterance and get the assistant's answer
//   - chat_load_more: next page of the most recent search
//   - chat_select_action: pick an entry of the pending action menu
//   - chat_clear: wipe the conversation and cancel a running search
//   - chat_refresh: reload the mailbox from the provider
//   - chat_history: the conversation so far
//   - chat_list_sessions: active sessions
//
// Answers are JSON objects with a "kind" of text, emails or actions.
package chat_tools
