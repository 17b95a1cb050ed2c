package query

import (
	"strings"
	"unicode"

	"github.com/teemow/inboxchat/internal/mail"
)

// minTokenLen drops single characters that would match almost anything.
const minTokenLen = 2

// fuzzyTokenLen is the shortest token compared by edit distance.
const fuzzyTokenLen = 4

// LooseMatch is the near-miss matcher behind "filter currently loaded
// emails". It works on tokens instead of raw substrings: a record matches
// when any query token is a prefix of one of its tokens, or differs from
// one by a single edit.
func LooseMatch(value string, r mail.EmailRecord) bool {
	queryTokens := Tokenize(value)
	if len(queryTokens) == 0 {
		return false
	}

	recordTokens := Tokenize(r.Subject + " " + r.Snippet + " " + r.Sender)
	for _, q := range queryTokens {
		for _, t := range recordTokens {
			if tokenMatches(q, t) {
				return true
			}
		}
	}
	return false
}

// Tokenize lowercases s and splits it on anything that is not a letter or
// a digit.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func tokenMatches(q, t string) bool {
	if strings.HasPrefix(t, q) || strings.HasPrefix(q, t) && len([]rune(t)) >= fuzzyTokenLen {
		return true
	}
	qr, tr := []rune(q), []rune(t)
	if len(qr) < fuzzyTokenLen || len(tr) < fuzzyTokenLen {
		return false
	}
	return withinOneEdit(qr, tr)
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion, or substitution.
func withinOneEdit(a, b []rune) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > 1 {
		return false
	}

	i, j, edits := 0, 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(a) == len(b) {
			i++
		}
		j++
	}
	return edits+(len(b)-j)+(len(a)-i) <= 1
}
