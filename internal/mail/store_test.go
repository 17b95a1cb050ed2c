package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReplaceIsWholesale(t *testing.T) {
	store := NewStore()
	assert.Equal(t, 0, store.Len())
	assert.True(t, store.RefreshedAt().IsZero())
	assert.Equal(t, ScopeAll, store.Snapshot().CurrentFilterScope)

	store.Replace(Snapshot{
		Records:            []EmailRecord{{ID: "a"}, {ID: "b"}},
		AccountScopes:      []string{"work"},
		CurrentFilterScope: "primary",
	})
	require.Equal(t, 2, store.Len())

	store.Replace(Snapshot{Records: []EmailRecord{{ID: "c"}}})
	snap := store.Snapshot()
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "c", snap.Records[0].ID)
	assert.Empty(t, snap.AccountScopes)
	assert.Equal(t, ScopeAll, snap.CurrentFilterScope, "empty filter scope falls back to all")
	assert.False(t, store.RefreshedAt().IsZero())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	records := []EmailRecord{{ID: "a", Subject: "hello"}}
	store := NewStore()
	store.Replace(Snapshot{Records: records, AccountScopes: []string{"work"}})

	records[0].Subject = "changed by caller"
	got := store.Records()
	assert.Equal(t, "hello", got[0].Subject)

	got[0].Subject = "changed by reader"
	assert.Equal(t, "hello", store.Records()[0].Subject)
}

func TestEmailRecord_Labels(t *testing.T) {
	r := EmailRecord{
		ID:         "a",
		ReceivedAt: time.Now(),
		Labels:     NewLabelSet("INBOX", " UNREAD ", "", "CATEGORY_UPDATES"),
	}

	assert.True(t, r.HasLabel("INBOX"))
	assert.True(t, r.HasLabel("UNREAD"))
	assert.False(t, r.HasLabel("STARRED"))
	assert.Equal(t, []string{"CATEGORY_UPDATES", "INBOX", "UNREAD"}, r.LabelList())
}
