// Package llm relays conversational utterances that match no mail intent
// to an external completion endpoint speaking the Anthropic Messages API.
//
// The reply is treated as plain text: HTML and markdown markup are removed
// before it becomes an assistant turn. Requests are rate limited per client.
package llm
