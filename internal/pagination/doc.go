// Package pagination keeps the cursor of every live query and serves its
// results page by page.
//
// A query is opened once with its full ordered match list. Each LoadMore
// returns the next slice and advances the cursor by exactly the number of
// records returned. The read, slice, advance sequence for one query id is a
// critical section, so two LoadMore calls racing on the same id return
// disjoint, adjacent ranges.
package pagination
