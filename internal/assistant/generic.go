package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/llm"
	"github.com/teemow/inboxchat/internal/logging"
)

const (
	noCompleterText = `I can only search your mail right now. ` + helpText
	llmFailedText   = "I couldn't come up with an answer just now. You can still ask me for emails, " +
		`for example "show unread emails".`
)

// generic relays utterances no rule understood to the LLM. Its reply is
// plain text with markup already removed.
func (e *Engine) generic(ctx context.Context, text string, history []conversation.Turn) (Response, error) {
	if e.completer == nil {
		return textResponse(noCompleterText), nil
	}

	req := llm.Request{
		SystemPrompt: e.systemPrompt(),
		Turns:        toMessages(recentTurns(history, e.historyTurns)),
		Utterance:    text,
	}
	reply, err := e.completer.Complete(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return textResponse("Search cancelled."), ctx.Err()
		}
		e.logger.Warn("llm completion failed", logging.Err(err))
		return textResponse(llmFailedText), fmt.Errorf("completing generic utterance: %w", err)
	}

	reply = strings.TrimSpace(llm.StripMarkup(reply))
	if reply == "" {
		return textResponse(llmFailedText), llm.ErrEmptyCompletion
	}
	return textResponse(reply), nil
}

// systemPrompt describes the assistant and the loaded mailbox.
func (e *Engine) systemPrompt() string {
	snap := e.store.Snapshot()

	var unread, starred int
	for _, r := range snap.Records {
		if r.IsUnread {
			unread++
		}
		if r.IsStarred {
			starred++
		}
	}

	var b strings.Builder
	b.WriteString("You are an email assistant inside a mail client. ")
	b.WriteString("Answer briefly in plain text without markdown or HTML. ")
	b.WriteString("You cannot send, delete or modify email. ")
	b.WriteString(`If the user wants to find emails, suggest phrases such as "unread emails", `)
	b.WriteString(`"emails from <sender>" or "emails about <topic>".`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Loaded emails: %d (%d unread, %d starred).\n", len(snap.Records), unread, starred)
	if len(snap.AccountScopes) > 0 {
		fmt.Fprintf(&b, "Accounts: %s.\n", strings.Join(snap.AccountScopes, ", "))
	}
	if snap.CurrentFilterScope != "" {
		fmt.Fprintf(&b, "Current view: %s.\n", snap.CurrentFilterScope)
	}
	return b.String()
}

func recentTurns(turns []conversation.Turn, n int) []conversation.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func toMessages(turns []conversation.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := llm.RoleUser
		if t.Role == conversation.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Text: t.Text})
	}
	return msgs
}
