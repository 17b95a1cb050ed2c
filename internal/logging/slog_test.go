package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{"text info", false, "text", false, false},
		{"text debug", true, "", true, false},
		{"json", false, "JSON", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.debug, tt.format)

			logger.Debug("debug line")
			logger.Info("info line", "k", "v")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.HasPrefix(out, "{") || strings.Contains(out, "\n{"); got != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %q", got, tt.wantJSON, out)
			}
		})
	}
}

func TestWithHelpers(t *testing.T) {
	logger := slog.Default()
	if WithOperation(logger, "chat.send") == nil {
		t.Error("WithOperation returned nil")
	}
	if WithTool(logger, "chat_send") == nil {
		t.Error("WithTool returned nil")
	}
	if WithSession(logger, "default") == nil {
		t.Error("WithSession returned nil")
	}
	if WithAccount(logger, "work") == nil {
		t.Error("WithAccount returned nil")
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{Operation("chat.send"), KeyOperation, "chat.send"},
		{QueryID("unread-1"), KeyQueryID, "unread-1"},
		{Intent("by_sender"), KeyIntent, "by_sender"},
		{Scope("all"), KeyScope, "all"},
		{Account("work"), KeyAccount, "work"},
		{Tool("chat_send"), KeyTool, "chat_send"},
		{Status(StatusSuccess), KeyStatus, "success"},
		{Err(errors.New("boom")), KeyError, "boom"},
		{Utterance("find invoices", true), KeyUtterance, "find invoices"},
		{Utterance("find invoices", false), KeyUtterance, "[13 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.wantKey, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestErr_Nil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("op", Err(nil))

	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("nil error should be omitted, got %q", buf.String())
	}
}

func TestSessionHash(t *testing.T) {
	if SessionHash("") != "" {
		t.Error("empty session should hash to empty string")
	}

	a := SessionHash("default")
	b := SessionHash("default")
	c := SessionHash("other")

	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different sessions should not collide")
	}
	if !strings.HasPrefix(a, "session:") || len(a) != len("session:")+12 {
		t.Errorf("unexpected hash format %q", a)
	}
	if strings.Contains(Session("default").Value.String(), "default") {
		t.Error("Session attr must not contain the raw id")
	}
}

func TestAnonymizeEmail(t *testing.T) {
	if AnonymizeEmail("") != "" {
		t.Error("empty email should anonymize to empty string")
	}
	if AnonymizeEmail("Jane@Example.com") != AnonymizeEmail("jane@example.com") {
		t.Error("anonymization should ignore case")
	}
	if !strings.HasPrefix(AnonymizeEmail("jane@example.com"), "user:") {
		t.Error("expected user: prefix")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q", got)
	}
	if got := SanitizeToken("sk-abcdef"); got != "[token:9 chars]" {
		t.Errorf("SanitizeToken = %q", got)
	}
}
