// Package query applies a classified request to the loaded emails.
//
// Execute filters, orders newest first with a stable sort, and stamps every
// result with a fresh query id. It never decides what to do about an empty
// result; callers check TotalCount and ask the actions package for
// alternatives.
package query
