package conversation

import (
	"sync"
	"time"

	"github.com/teemow/inboxchat/internal/actions"
	"github.com/teemow/inboxchat/internal/mail"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultWindow is the number of turns a log keeps before dropping the
// oldest.
const DefaultWindow = 200

// Turn is one entry of the conversation log.
type Turn struct {
	Role      Role               `json:"role"`
	Text      string             `json:"text"`
	Matches   []mail.EmailRecord `json:"matches,omitempty"`
	Actions   []actions.Option   `json:"actions,omitempty"`
	QueryID   string             `json:"queryId,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Log is an ordered, bounded conversation history. It is safe for
// concurrent use.
type Log struct {
	mu     sync.RWMutex
	turns  []Turn
	window int
	now    func() time.Time
}

// NewLog creates a log keeping at most window turns. A non-positive window
// uses DefaultWindow.
func NewLog(window int) *Log {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Log{
		window: window,
		now:    time.Now,
	}
}

// Append adds a turn, stamping it when Timestamp is zero.
func (l *Log) Append(t Turn) Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Timestamp.IsZero() {
		t.Timestamp = l.now()
	}
	l.turns = append(l.turns, t)
	if over := len(l.turns) - l.window; over > 0 {
		l.turns = append([]Turn(nil), l.turns[over:]...)
	}
	return t
}

// Turns returns a copy of the log, oldest first.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Recent returns a copy of the last n turns, oldest first.
func (l *Log) Recent(n int) []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		return []Turn{}
	}
	start := len(l.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(l.turns)-start)
	copy(out, l.turns[start:])
	return out
}

// LastQueryID returns the query id of the most recent assistant turn that
// carried one.
func (l *Log) LastQueryID() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lastQueryID(l.turns)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}

// Len returns the number of turns held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// LastActivity returns the timestamp of the newest turn.
func (l *Log) LastActivity() (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.turns) == 0 {
		return time.Time{}, false
	}
	return l.turns[len(l.turns)-1].Timestamp, true
}

func lastQueryID(turns []Turn) (string, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant && turns[i].QueryID != "" {
			return turns[i].QueryID, true
		}
	}
	return "", false
}
