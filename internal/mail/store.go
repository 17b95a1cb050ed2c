package mail

import (
	"sync"
	"time"
)

// Store owns the email records of one session. Readers always get copies so
// a refresh never changes a slice somebody else is iterating.
type Store struct {
	mu          sync.RWMutex
	records     []EmailRecord
	scopes      []string
	filterScope string
	refreshedAt time.Time
}

// NewStore returns an empty store showing every scope.
func NewStore() *Store {
	return &Store{filterScope: ScopeAll}
}

// Replace swaps the store content for the given snapshot.
func (s *Store) Replace(snap Snapshot) {
	records := make([]EmailRecord, len(snap.Records))
	copy(records, snap.Records)
	scopes := make([]string, len(snap.AccountScopes))
	copy(scopes, snap.AccountScopes)

	filter := snap.CurrentFilterScope
	if filter == "" {
		filter = ScopeAll
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.scopes = scopes
	s.filterScope = filter
	s.refreshedAt = time.Now()
}

// Snapshot returns a copy of the current content.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]EmailRecord, len(s.records))
	copy(records, s.records)
	scopes := make([]string, len(s.scopes))
	copy(scopes, s.scopes)

	return Snapshot{
		Records:            records,
		AccountScopes:      scopes,
		CurrentFilterScope: s.filterScope,
	}
}

// Records returns a copy of the loaded records in store order.
func (s *Store) Records() []EmailRecord {
	return s.Snapshot().Records
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// RefreshedAt returns when the store was last replaced. The zero time means
// it was never filled.
func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
