package chatui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/teemow/inboxchat/internal/assistant"
	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/mail"
)

const (
	moreHint    = "Type :more for the next page."
	chooseHint  = "Reply with a number to choose."
	retryHint   = "The provider may answer if you try again."
	timeLayout  = "Jan 2 15:04"
	subjectCap  = 72
	unreadMark  = "●"
	starredMark = "★"
)

// Renderer formats answers for one output writer.
type Renderer struct {
	styles styles
	now    func() time.Time
}

// NewRenderer returns a renderer whose color profile matches w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		styles: newStyles(lipgloss.NewRenderer(w)),
		now:    time.Now,
	}
}

// Response formats one assistant answer.
func (r *Renderer) Response(resp assistant.Response) string {
	var lines []string

	text := resp.Text
	if resp.Warning != "" && strings.HasPrefix(text, resp.Warning) {
		lines = append(lines, r.styles.warning.Render(resp.Warning))
		text = strings.TrimSpace(strings.TrimPrefix(text, resp.Warning))
	}
	if text != "" {
		lines = append(lines, r.styles.text.Render(text))
	}

	switch resp.Kind {
	case assistant.ResponseEmails:
		for i, m := range resp.Matches {
			lines = append(lines, r.record(i+1, m))
		}
		if resp.HasMore {
			lines = append(lines, r.styles.hint.Render(moreHint))
		}
	case assistant.ResponseActions:
		if len(resp.Actions) > 0 {
			lines = append(lines, r.styles.hint.Render(chooseHint))
		}
		if resp.Retryable {
			lines = append(lines, r.styles.hint.Render(retryHint))
		}
	}

	return strings.Join(lines, "\n")
}

// Turn formats a logged turn with its role label.
func (r *Renderer) Turn(t conversation.Turn) string {
	label := r.styles.assistant.Render("Assistant:")
	if t.Role == conversation.RoleUser {
		label = r.styles.user.Render("You:")
	}
	body := r.styles.text.Render(t.Text)
	if len(t.Matches) > 0 {
		body += " " + r.styles.meta.Render(fmt.Sprintf("(%d emails)", len(t.Matches)))
	}
	return label + " " + body
}

// Prompt is the label printed before user input.
func (r *Renderer) Prompt() string {
	return r.styles.user.Render("You:") + " "
}

// Info formats a status line such as "Chat cleared.".
func (r *Renderer) Info(text string) string {
	return r.styles.hint.Render(text)
}

func (r *Renderer) record(n int, m mail.EmailRecord) string {
	marks := " "
	if m.IsUnread {
		marks = r.styles.unread.Render(unreadMark)
	}
	if m.IsStarred {
		marks += r.styles.warning.Render(starredMark)
	} else {
		marks += " "
	}

	subject := m.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	subject = truncate(subject, subjectCap)

	meta := r.when(m.ReceivedAt)
	if m.AccountScope != "" {
		meta += ", " + m.AccountScope
	}

	return fmt.Sprintf("%3d. %s %s  %s  %s",
		n, marks,
		r.styles.sender.Render(m.Sender),
		r.styles.subject.Render(subject),
		r.styles.meta.Render("("+meta+")"))
}

func (r *Renderer) when(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	now := r.now()
	if y, m, d := now.Date(); t.Year() == y && t.Month() == m && t.Day() == d {
		return t.Format("15:04")
	}
	if t.Year() != now.Year() {
		return t.Format("Jan 2 2006")
	}
	return t.Format(timeLayout)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
