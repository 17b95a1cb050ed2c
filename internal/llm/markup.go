package llm

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

var (
	fenceRe      = regexp.MustCompile("(?m)^\\s*```[\\w+-]*\\s*$")
	headingRe    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	boldRe       = regexp.MustCompile(`\*\*([^*\n]+)\*\*|__([^_\n]+)__`)
	italicRe     = regexp.MustCompile(`(^|[\s(])[*_]([^*_\n]+)[*_]([\s).,!?:;]|$)`)
	inlineCodeRe = regexp.MustCompile("`([^`\\n]+)`")
	linkRe       = regexp.MustCompile(`\[([^\]\n]+)\]\((https?://[^)\s]+)\)`)
	bulletRe     = regexp.MustCompile(`(?m)^(\s*)[*+]\s+`)
	ruleRe       = regexp.MustCompile(`(?m)^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// StripMarkup removes HTML tags and markdown decoration from model output.
func StripMarkup(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))

	s = fenceRe.ReplaceAllString(s, "")
	s = ruleRe.ReplaceAllString(s, "")
	s = headingRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1 ($2)")
	s = boldRe.ReplaceAllString(s, "$1$2")
	s = italicRe.ReplaceAllString(s, "$1$2$3")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = bulletRe.ReplaceAllString(s, "$1- ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
