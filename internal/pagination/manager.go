package pagination

import (
	"errors"
	"sync"
	"time"

	"github.com/teemow/inboxchat/internal/mail"
)

// ErrUnknownQuery is returned for query ids that were never opened or whose
// state was already collected.
var ErrUnknownQuery = errors.New("unknown query")

// state is the cursor of one query. mu guards cursor; allMatches and
// totalCount never change after Open.
type state struct {
	mu         sync.Mutex
	queryID    string
	allMatches []mail.EmailRecord
	cursor     int
	totalCount int
	openedAt   time.Time
}

// Manager holds the pagination state of one session.
type Manager struct {
	mu      sync.RWMutex
	queries map[string]*state
	now     func() time.Time
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		queries: make(map[string]*state),
		now:     time.Now,
	}
}

// Open stores the state for queryID and returns the first page. Opening an
// id twice replaces the earlier state.
func (m *Manager) Open(queryID string, allMatches []mail.EmailRecord, pageSize int) []mail.EmailRecord {
	matches := make([]mail.EmailRecord, len(allMatches))
	copy(matches, allMatches)

	first := clampPage(0, pageSize, len(matches))
	st := &state{
		queryID:    queryID,
		allMatches: matches,
		cursor:     first,
		totalCount: len(matches),
		openedAt:   m.now(),
	}

	m.mu.Lock()
	m.queries[queryID] = st
	m.mu.Unlock()

	return page(matches, 0, first)
}

// LoadMore returns up to count records after the cursor and advances the
// cursor by the number returned.
func (m *Manager) LoadMore(queryID string, count int) ([]mail.EmailRecord, error) {
	st, err := m.get(queryID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	end := clampPage(st.cursor, count, st.totalCount)
	next := page(st.allMatches, st.cursor, end)
	st.cursor = end
	return next, nil
}

// HasMore reports whether records remain after the cursor.
func (m *Manager) HasMore(queryID string) (bool, error) {
	st, err := m.get(queryID)
	if err != nil {
		return false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cursor < st.totalCount, nil
}

// Progress returns the cursor and total count of a query.
func (m *Manager) Progress(queryID string) (cursor, total int, err error) {
	st, err := m.get(queryID)
	if err != nil {
		return 0, 0, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cursor, st.totalCount, nil
}

// Close collects the state of a single query.
func (m *Manager) Close(queryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queries, queryID)
}

// Clear collects every query.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = make(map[string]*state)
}

// EvictOlderThan collects queries opened more than age ago and returns how
// many were removed.
func (m *Manager) EvictOlderThan(age time.Duration) int {
	cutoff := m.now().Add(-age)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, st := range m.queries {
		if st.openedAt.Before(cutoff) {
			delete(m.queries, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live queries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queries)
}

func (m *Manager) get(queryID string) (*state, error) {
	m.mu.RLock()
	st, ok := m.queries[queryID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownQuery
	}
	return st, nil
}

func clampPage(start, count, total int) int {
	if count < 0 {
		count = 0
	}
	if count > total-start {
		count = total - start
	}
	return start + count
}

func page(records []mail.EmailRecord, start, end int) []mail.EmailRecord {
	out := make([]mail.EmailRecord, end-start)
	copy(out, records[start:end])
	return out
}
