// Package actions builds the recovery menu shown when a query finds
// nothing.
//
// Generate always returns at least two options: an expanded search across
// all mail and a refresh followed by a retry. Every option carries a
// payload that re-runs the original request without parsing the utterance
// again; the payload keeps the request value byte for byte.
package actions
