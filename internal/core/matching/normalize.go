// Package matching scores catalog candidates against a request and picks
// the winning position.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var annotationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(\d{4}\s*remaster(?:ed)?\)`),
	regexp.MustCompile(`(?i)\s*\(live[^()]*(?:\([^()]*\))?[^()]*\)`), // one nested level, e.g. (Live at Massey (1971))
	regexp.MustCompile(`(?i)\s*\[explicit\]`),
	regexp.MustCompile(`(?i)\s*-\s*live\s*$`),
}

var punctRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Normalize lower-cases s, strips remaster/live/explicit annotations and
// collapses whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	out := collapseWhitespace(strings.ToLower(s))
	for {
		next := out
		for _, re := range annotationPatterns {
			next = re.ReplaceAllString(next, "")
		}
		next = collapseWhitespace(next)
		if next == out {
			return out
		}
		out = next
	}
}

// NormalizeStrict is Normalize plus accent folding and punctuation removal.
// Only used to detect exact matches.
func NormalizeStrict(s string) string {
	folded := foldMarks(Normalize(s))
	return collapseWhitespace(punctRegex.ReplaceAllString(folded, ""))
}

func foldMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
