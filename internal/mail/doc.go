// Package mail holds the email records the chat assistant queries and the
// store that owns them.
//
// The store is filled by an external collaborator (the Gmail searcher in
// production, fixtures in tests) and is always replaced wholesale: a refresh
// supplies the complete record list together with the known account scopes
// and the filter scope currently shown to the user.
//
//	store := mail.NewStore()
//	store.Replace(mail.Snapshot{
//	    Records:            records,
//	    AccountScopes:      []string{"work", "personal"},
//	    CurrentFilterScope: mail.ScopeAll,
//	})
//	snap := store.Snapshot()
package mail
