package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeySession   = "session"
	KeyQueryID   = "query_id"
	KeyIntent    = "intent"
	KeyScope     = "scope"
	KeyAccount   = "account"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
	KeyUtterance = "utterance"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// New builds the process logger. Format is "text" or "json".
func New(w io.Writer, debug bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithSession returns a logger carrying the hashed session id.
func WithSession(logger *slog.Logger, session string) *slog.Logger {
	return logger.With(Session(session))
}

// WithAccount returns a logger with the account attribute set.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Session returns a slog attribute with the hashed session id.
func Session(session string) slog.Attr {
	return slog.String(KeySession, SessionHash(session))
}

// QueryID returns a slog attribute for a query id.
func QueryID(id string) slog.Attr {
	return slog.String(KeyQueryID, id)
}

// Intent returns a slog attribute for a classified request kind.
func Intent(kind string) slog.Attr {
	return slog.String(KeyIntent, kind)
}

// Scope returns a slog attribute for a mail scope.
func Scope(scope string) slog.Attr {
	return slog.String(KeyScope, scope)
}

// Account returns a slog attribute for the account name.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Utterance returns a slog attribute for user text. Unless includeText is
// set only the length is logged, since utterances may quote mail content.
func Utterance(text string, includeText bool) slog.Attr {
	if includeText {
		return slog.String(KeyUtterance, text)
	}
	return slog.String(KeyUtterance, fmt.Sprintf("[%d chars]", len(text)))
}

// SessionHash returns a stable short hash of a session id so log lines can
// be correlated without exposing the id.
func SessionHash(session string) string {
	if session == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(session))
	return "session:" + hex.EncodeToString(hash[:6])
}

// AnonymizeEmail returns a hashed representation of an email for logging purposes.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(email)))
	return "user:" + hex.EncodeToString(hash[:8])
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
