// Package domain holds the request, candidate and resolution types shared by
// the resolver core and its adapters.
package domain

import "strings"

// Preference is a soft version preference carried by a request.
type Preference string

const (
	PreferenceNone     Preference = ""
	PreferenceLive     Preference = "live"
	PreferenceAcoustic Preference = "acoustic"
	PreferenceStudio   Preference = "studio"
)

// Preferences is the set of version flags a request may carry.
// The flags are independent; scoring only honours the highest-priority one.
type Preferences struct {
	PreferLive     bool `json:"prefer_live"`
	PreferAcoustic bool `json:"prefer_acoustic"`
	PreferStudio   bool `json:"prefer_studio"`
}

// Active returns the highest-priority flag: live, then acoustic, then studio.
func (p Preferences) Active() Preference {
	switch {
	case p.PreferLive:
		return PreferenceLive
	case p.PreferAcoustic:
		return PreferenceAcoustic
	case p.PreferStudio:
		return PreferenceStudio
	default:
		return PreferenceNone
	}
}

// Count reports how many flags are set.
func (p Preferences) Count() int {
	n := 0
	for _, set := range []bool{p.PreferLive, p.PreferAcoustic, p.PreferStudio} {
		if set {
			n++
		}
	}
	return n
}

// ParseMethod records how a MusicRequest was derived from user input.
type ParseMethod string

const (
	MethodStructured ParseMethod = "structured"
	MethodPossessive ParseMethod = "possessive"
	MethodBy         ParseMethod = "by"
	MethodHeuristic  ParseMethod = "heuristic"
	MethodTitleOnly  ParseMethod = "title_only"
	MethodLLM        ParseMethod = "llm"
)

// MusicRequest is the structured form of a track request.
type MusicRequest struct {
	Raw         string      `json:"raw,omitempty"`
	Title       string      `json:"title"`
	Artist      string      `json:"artist,omitempty"`
	Preferences Preferences `json:"preferences"`
	Method      ParseMethod `json:"method"`
}

// NewStructuredRequest builds a request from caller-supplied fields,
// bypassing free-text parsing.
func NewStructuredRequest(title, artist string, prefs Preferences) MusicRequest {
	return MusicRequest{
		Title:       collapse(strings.ToLower(title)),
		Artist:      collapse(strings.ToLower(artist)),
		Preferences: prefs,
		Method:      MethodStructured,
	}
}

// HasArtist reports whether an artist was identified.
func (r MusicRequest) HasArtist() bool {
	return r.Artist != ""
}

// Ambiguous reports whether no artist/title split could be found and the
// whole input was taken as the title.
func (r MusicRequest) Ambiguous() bool {
	return r.Method == MethodTitleOnly
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
