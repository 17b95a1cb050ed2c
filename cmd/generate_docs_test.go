package cmd

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "chat_send", want: "Chat Tools"},
		{name: "chat_list_sessions", want: "Chat Tools"},
		{name: "gmail_list", want: "Other"},
		{name: "", want: "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getCategoryFromToolName(tt.name))
		})
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("chat_send",
		mcp.WithDescription("Send a message"),
		mcp.WithString("text", mcp.Required(), mcp.Description("What to ask")),
		mcp.WithString("session"),
	)

	md := generateToolMarkdown(tool)
	assert.Contains(t, md, "### chat_send")
	assert.Contains(t, md, "Send a message")
	assert.Contains(t, md, "- `text` (required): What to ask")
	assert.Contains(t, md, "- `session` (optional): string parameter")
}

func TestToolsMarkdown(t *testing.T) {
	md, err := toolsMarkdown()
	require.NoError(t, err)
	assert.Contains(t, md, "## Chat Tools")
	assert.Contains(t, md, "### chat_send")
	assert.Contains(t, md, "### chat_select_action")
	assert.NotContains(t, md, "## Other")
}
