// Package parsing turns free text into structured requests and raw catalog
// listings into candidate batches.
package parsing

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

var (
	livePhraseRegex     = phraseRegex(`live\s+(?:version|recording|performance)|concert\s+version`)
	acousticPhraseRegex = phraseRegex(`(?:acoustic|unplugged)\s+(?:version|recording)`)
	studioPhraseRegex   = phraseRegex(`(?:studio|original)\s+(?:version|recording)`)

	fillerRegex     = regexp.MustCompile(`(?i)^(?:play|i want to hear|i'd like to hear|i’d like to hear|put on|find|can you play)(?:\s+|$)`)
	possessiveRegex = regexp.MustCompile(`(?i)^(.+?)['’]s\s+(.+)$`)
	byRegex         = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)
)

// phraseRegex matches a preference phrase together with an optional leading
// article and a trailing "of".
func phraseRegex(core string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:(?:a|an|the|some)\s+)?(?:` + core + `)(?:\s+of)?\b`)
}

// RuleParser is the regex-based RequestParser. It needs no external service.
type RuleParser struct{}

var _ ports.RequestParser = RuleParser{}

// NewRuleParser returns a RuleParser.
func NewRuleParser() RuleParser {
	return RuleParser{}
}

// Parse implements ports.RequestParser.
func (RuleParser) Parse(_ context.Context, raw string) (domain.MusicRequest, error) {
	return ParseRequest(raw)
}

// ParseRequest splits a free-text request into title, artist and version
// preferences. Title and artist come back lower-cased.
//
// Order: preference phrases are stripped, then a leading filler such as
// "play", then possessive, "by" and capitalised-name splits are tried.
// When none fits, the whole text becomes the title.
func ParseRequest(raw string) (domain.MusicRequest, error) {
	text := collapse(raw)

	var prefs domain.Preferences
	text, prefs.PreferLive = stripPhrase(text, livePhraseRegex)
	text, prefs.PreferAcoustic = stripPhrase(text, acousticPhraseRegex)
	text, prefs.PreferStudio = stripPhrase(text, studioPhraseRegex)

	text = collapse(fillerRegex.ReplaceAllString(text, ""))
	if text == "" {
		return domain.MusicRequest{}, domain.ErrEmptyRequest
	}

	req := domain.MusicRequest{Raw: raw, Preferences: prefs}

	if artist, title, ok := splitPossessive(text); ok {
		req.Artist, req.Title = artist, title
		req.Method = domain.MethodPossessive
		return req, nil
	}
	if m := byRegex.FindStringSubmatch(text); m != nil {
		req.Title, req.Artist = lower(m[1]), lower(m[2])
		req.Method = domain.MethodBy
		return req, nil
	}
	if artist, title, ok := splitCapitalisedArtist(text); ok {
		req.Artist, req.Title = lower(artist), lower(title)
		req.Method = domain.MethodHeuristic
		return req, nil
	}

	req.Title = lower(text)
	req.Method = domain.MethodTitleOnly
	return req, nil
}

// contractionStems are words whose "'s" is "is" or "us", never a possessive.
var contractionStems = map[string]struct{}{
	"it": {}, "let": {}, "that": {}, "what": {}, "here": {},
	"there": {}, "he": {}, "she": {}, "who": {}, "where": {},
}

// splitPossessive reads "<artist>'s <title>". It declines contractions such
// as "let's", and titles that still hold a " by " split.
func splitPossessive(text string) (string, string, bool) {
	m := possessiveRegex.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	artist, title := lower(m[1]), lower(m[2])
	if _, contraction := contractionStems[artist]; contraction {
		return "", "", false
	}
	if byRegex.MatchString(title) {
		return "", "", false
	}
	return artist, title, true
}

func stripPhrase(text string, re *regexp.Regexp) (string, bool) {
	if !re.MatchString(text) {
		return text, false
	}
	return collapse(re.ReplaceAllString(text, " ")), true
}

// splitCapitalisedArtist treats a leading run of capitalised words as the
// artist when at least two words remain for the title. A run of exactly
// three is taken whole; any other run of two or more yields a two-word artist.
func splitCapitalisedArtist(text string) (string, string, bool) {
	words := strings.Fields(text)
	run := 0
	for run < len(words) && startsUpper(words[run]) {
		run++
	}
	if run < 2 {
		return "", "", false
	}

	n := 2
	if run == 3 {
		n = 3
	}
	for ; n >= 2; n-- {
		if len(words)-n >= 2 {
			return strings.Join(words[:n], " "), strings.Join(words[n:], " "), true
		}
	}
	return "", "", false
}

func startsUpper(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func lower(s string) string {
	return collapse(strings.ToLower(s))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
