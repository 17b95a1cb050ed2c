// Package intent turns a free-text chat utterance into a typed request.
//
// Classification runs an ordered table of rules. Each rule is a predicate
// plus an extractor; the first rule whose predicate matches and whose
// extractor yields a usable value wins. The table is ordered from most to
// least specific:
//
//	BySender > ByContent > Unread > Starred > Recent
//
// so "unread emails from github" is a sender search, not an unread listing.
// Utterances no rule accepts are reported with ok == false and belong to the
// generic conversational path.
package intent
