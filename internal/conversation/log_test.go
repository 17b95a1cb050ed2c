package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAndTurns(t *testing.T) {
	l := NewLog(0)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	got := l.Append(Turn{Role: RoleUser, Text: "show unread"})
	assert.Equal(t, fixed, got.Timestamp)

	stamped := fixed.Add(-time.Hour)
	l.Append(Turn{Role: RoleAssistant, Text: "none", Timestamp: stamped})

	turns := l.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, stamped, turns[1].Timestamp)

	turns[0].Text = "changed"
	assert.Equal(t, "show unread", l.Turns()[0].Text)
}

func TestLog_Window(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Append(Turn{Role: RoleUser, Text: fmt.Sprint(i)})
	}

	require.Equal(t, 3, l.Len())
	turns := l.Turns()
	assert.Equal(t, "2", turns[0].Text)
	assert.Equal(t, "4", turns[2].Text)
}

func TestLog_Recent(t *testing.T) {
	l := NewLog(10)
	for i := 0; i < 4; i++ {
		l.Append(Turn{Role: RoleUser, Text: fmt.Sprint(i)})
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{-1, []string{}},
		{2, []string{"2", "3"}},
		{4, []string{"0", "1", "2", "3"}},
		{9, []string{"0", "1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			got := []string{}
			for _, turn := range l.Recent(tt.n) {
				got = append(got, turn.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLog_LastQueryID(t *testing.T) {
	l := NewLog(10)
	_, ok := l.LastQueryID()
	assert.False(t, ok)

	l.Append(Turn{Role: RoleAssistant, Text: "a", QueryID: "q1"})
	l.Append(Turn{Role: RoleUser, Text: "b", QueryID: "ignored"})
	l.Append(Turn{Role: RoleAssistant, Text: "c"})

	id, ok := l.LastQueryID()
	require.True(t, ok)
	assert.Equal(t, "q1", id)
}

func TestLog_Clear(t *testing.T) {
	l := NewLog(10)
	l.Append(Turn{Role: RoleUser, Text: "x"})
	_, ok := l.LastActivity()
	require.True(t, ok)

	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Turns())
	_, ok = l.LastActivity()
	assert.False(t, ok)
}
