package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// UnknownAlbum is used for legacy three-field result lines.
const UnknownAlbum = "Unknown Album"

var (
	fullLineRegex   = regexp.MustCompile(`^(\d+)\.\s+(.+?)-(.+?)-(.+)$`)
	legacyLineRegex = regexp.MustCompile(`^(\d+)\.\s+(.+?)-(.+)$`)
)

// ParseResults reads a numbered catalog listing. Lines that match neither
// "<pos>. <title>-<artist>-<album>" nor "<pos>. <title>-<artist>" are
// dropped, as are repeated or zero positions.
func ParseResults(raw string) []domain.SearchCandidate {
	var out []domain.SearchCandidate
	seen := make(map[int]struct{})

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		c, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, dup := seen[c.Position]; dup {
			continue
		}
		seen[c.Position] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ParseBatch parses raw into a batch tagged with the query that produced it.
func ParseBatch(query, raw string) domain.Batch {
	return domain.Batch{Query: query, Candidates: ParseResults(raw)}
}

// FormatCandidate renders c in the four-field listing format.
func FormatCandidate(c domain.SearchCandidate) string {
	return fmt.Sprintf("%d. %s-%s-%s", c.Position, c.Title, c.Artist, c.Album)
}

func parseLine(line string) (domain.SearchCandidate, bool) {
	var title, artist, album, posText string
	if m := fullLineRegex.FindStringSubmatch(line); m != nil {
		posText, title, artist, album = m[1], m[2], m[3], m[4]
	} else if m := legacyLineRegex.FindStringSubmatch(line); m != nil {
		posText, title, artist, album = m[1], m[2], m[3], UnknownAlbum
	} else {
		return domain.SearchCandidate{}, false
	}

	pos, err := strconv.Atoi(posText)
	if err != nil || pos < 1 {
		return domain.SearchCandidate{}, false
	}

	return domain.SearchCandidate{
		Position: pos,
		Title:    strings.TrimSpace(title),
		Artist:   strings.TrimSpace(artist),
		Album:    strings.TrimSpace(album),
		RawLine:  line,
	}, true
}
