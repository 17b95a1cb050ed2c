// Package conversation holds the per-session conversation log and the
// resolver that rewrites short follow-up utterances against it.
//
// The resolver only reads the log. It understands three shapes:
//
//   - "do that in work", "try it for home": the last search is repeated in
//     the named scope.
//   - "expand", "search everywhere": the last search is repeated across all
//     mail.
//   - "load more", "show more": the caller should page the most recent
//     query instead of classifying the utterance.
//
// Anything else, or a follow-up with nothing earlier to refer to, resolves
// to nothing and the utterance is taken at face value.
package conversation
