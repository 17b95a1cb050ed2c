package common

import (
	"context"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxchat/internal/server"
)

// SessionArg is the optional tool argument naming a chat session.
const SessionArg = "session"

// GetSessionFromArgs resolves the chat session of a tool call.
//
// Priority order:
//  1. Explicit "session" argument in request
//  2. MCP client session id (one per connected client)
//  3. "default"
func GetSessionFromArgs(ctx context.Context, args map[string]interface{}) string {
	if v, ok := args[SessionArg].(string); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	if cs := mcpserver.ClientSessionFromContext(ctx); cs != nil && cs.SessionID() != "" {
		return cs.SessionID()
	}
	return server.DefaultSession
}
