package chat_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxchat/internal/assistant"
	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/instrumentation"
	"github.com/teemow/inboxchat/internal/server"
	"github.com/teemow/inboxchat/internal/tools/common"
)

const sessionDescription = "Chat session name (default: the MCP client session). Sessions keep separate conversations."

// RegisterChatTools registers all chat tools with the MCP server
func RegisterChatTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendTool := mcp.NewTool("chat_send",
		mcp.WithDescription("Send a message to the email assistant. Understands requests such as "+
			"'show unread emails', 'emails from github', 'emails about invoice', 'load more' "+
			"and follow-ups like 'search all mail' or 'in work'."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What the user said"),
		),
		mcp.WithString(common.SessionArg, mcp.Description(sessionDescription)),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("chat_send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSend(ctx, request, sc)
		}))

	loadMoreTool := mcp.NewTool("chat_load_more",
		mcp.WithDescription("Show the next page of the most recent email search"),
		mcp.WithString(common.SessionArg, mcp.Description(sessionDescription)),
	)
	s.AddTool(loadMoreTool, common.InstrumentedToolHandler("chat_load_more", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLoadMore(ctx, request, sc)
		}))

	selectTool := mcp.NewTool("chat_select_action",
		mcp.WithDescription("Choose an entry of the action menu the assistant offered after a search without results"),
		mcp.WithNumber("option",
			mcp.Required(),
			mcp.Description("Menu entry, starting at 1"),
		),
		mcp.WithString(common.SessionArg, mcp.Description(sessionDescription)),
	)
	s.AddTool(selectTool, common.InstrumentedToolHandler("chat_select_action", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSelectAction(ctx, request, sc)
		}))

	clearTool := mcp.NewTool("chat_clear",
		mcp.WithDescription("Clear the conversation. Cancels a search that is still running and forgets result pages."),
		mcp.WithString(common.SessionArg, mcp.Description(sessionDescription)),
	)
	s.AddTool(clearTool, common.InstrumentedToolHandler("chat_clear", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClear(ctx, request, sc)
		}))

	refreshTool := mcp.NewTool("chat_refresh",
		mcp.WithDescription("Reload the mailbox from the mail provider"),
		mcp.WithString("scope",
			mcp.Description("Account or category to show (default: keep the current view, 'all' for everything)"),
		),
		mcp.WithString(common.SessionArg, mcp.Description(sessionDescription)),
	)
	s.AddTool(refreshTool, common.InstrumentedToolHandler("chat_refresh", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRefresh(ctx, request, sc)
		}))

	historyTool := mcp.NewTool("chat_history",
		mcp.WithDescription("Return the conversation of a session, oldest turn first"),
		mcp.WithNumber("limit",
			mcp.Description("Return only the last N turns (default: all)"),
		),
		mcp.WithString(common.SessionArg, mcp.Description(sessionDescription)),
	)
	s.AddTool(historyTool, common.InstrumentedToolHandler("chat_history", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleHistory(ctx, request, sc)
		}))

	sessionsTool := mcp.NewTool("chat_list_sessions",
		mcp.WithDescription("List the active chat sessions"),
	)
	s.AddTool(sessionsTool, common.InstrumentedToolHandler("chat_list_sessions", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSessions(ctx, request, sc)
		}))

	return nil
}

func handleSend(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	text, ok := args["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	engine := sc.Engine(common.GetSessionFromArgs(ctx, args))
	resp := engine.ProcessUtterance(ctx, text)
	return responseResult(ctx, "", resp)
}

func handleLoadMore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	engine := sc.Engine(common.GetSessionFromArgs(ctx, request.GetArguments()))
	resp := engine.LoadMore(ctx)
	return responseResult(ctx, instrumentation.RouteLoadMore, resp)
}

func handleSelectAction(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	option, ok := args["option"].(float64)
	if !ok {
		return mcp.NewToolResultError("option is required"), nil
	}
	if option < 1 || option != float64(int(option)) {
		return mcp.NewToolResultError(fmt.Sprintf("option must be a whole number starting at 1, got %v", option)), nil
	}

	engine := sc.Engine(common.GetSessionFromArgs(ctx, args))
	resp := engine.SelectAction(ctx, int(option)-1)
	return responseResult(ctx, instrumentation.RouteAction, resp)
}

func handleClear(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	session := common.GetSessionFromArgs(ctx, request.GetArguments())
	engine, ok := sc.Lookup(session)
	if ok {
		engine.Clear()
	}
	common.RecordResult(ctx, instrumentation.RouteClear, string(assistant.ResponseText), "", 0)
	return mcp.NewToolResultText(fmt.Sprintf("Chat session %q cleared.", session)), nil
}

type refreshResult struct {
	Session     string    `json:"session"`
	Records     int       `json:"records"`
	FilterScope string    `json:"filterScope"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

func handleRefresh(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	session := common.GetSessionFromArgs(ctx, args)
	engine := sc.Engine(session)

	var err error
	if scope, ok := args["scope"].(string); ok && strings.TrimSpace(scope) != "" {
		err = engine.RefreshScope(ctx, strings.TrimSpace(scope))
	} else {
		err = engine.Refresh(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to refresh the mailbox: %v", err)), nil
	}

	store := engine.Store()
	return jsonResult(refreshResult{
		Session:     session,
		Records:     store.Len(),
		FilterScope: store.Snapshot().CurrentFilterScope,
		RefreshedAt: store.RefreshedAt(),
	})
}

type historyResult struct {
	Session string              `json:"session"`
	State   assistant.State     `json:"state"`
	Turns   []conversation.Turn `json:"turns"`
}

func handleHistory(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	session := common.GetSessionFromArgs(ctx, args)

	limit := 0
	if v, ok := args["limit"].(float64); ok {
		if v < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}
		limit = int(v)
	}

	result := historyResult{Session: session, State: assistant.StateIdle, Turns: []conversation.Turn{}}
	if engine, ok := sc.Lookup(session); ok {
		turns := engine.History()
		if limit > 0 && len(turns) > limit {
			turns = turns[len(turns)-limit:]
		}
		result.State = engine.State()
		result.Turns = turns
	}
	return jsonResult(result)
}

func handleListSessions(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return jsonResult(map[string][]string{"sessions": sc.Sessions()})
}

func responseResult(ctx context.Context, route string, resp assistant.Response) (*mcp.CallToolResult, error) {
	common.RecordResult(ctx, route, string(resp.Kind), resp.QueryID, len(resp.Matches))
	return jsonResult(resp)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
