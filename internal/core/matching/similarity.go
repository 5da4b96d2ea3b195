package matching

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Similarity returns the LCS ratio 2*LCS(a,b)/(len(a)+len(b)) over runes.
// Identical strings score 1 and strings with nothing in common score 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(edlib.LCS(a, b)) / float64(total)
}
