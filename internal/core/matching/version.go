package matching

import (
	"regexp"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

var livePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blive\b`),
	regexp.MustCompile(`(?i)\bconcert\b`),
	regexp.MustCompile(`(?i)live\s+from`),
	regexp.MustCompile(`(?i)live\s+at`),
	regexp.MustCompile(`(?i)artists\s+den`),
	regexp.MustCompile(`(?i)live\s+recording`),
	regexp.MustCompile(`(?i)concert\s+version`),
}

var acousticPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bacoustic\b`),
	regexp.MustCompile(`(?i)\bunplugged\b`),
	regexp.MustCompile(`(?i)stripped`),
	regexp.MustCompile(`(?i)solo\s+acoustic`),
}

// DetectVersion classifies a candidate from its title and album.
func DetectVersion(title, album string) domain.Version {
	text := title + " " + album
	return domain.Version{
		Live:     anyMatch(livePatterns, text),
		Acoustic: anyMatch(acousticPatterns, text),
	}
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
