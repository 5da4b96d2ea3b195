// Package llm holds the prompts and reply decoding shared by the
// language-model adapters.
package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

// ParseSystemPrompt instructs a model to turn a free-text request into the
// MusicRequest JSON shape.
const ParseSystemPrompt = `You parse natural language music requests into structured components.

Extract:
1. title: the song title (lowercase, no annotations like "remaster" or "live")
2. artist: the artist name (no possessive 's, no "by"), or null if not clearly given
3. preferences: boolean flags prefer_live, prefer_acoustic, prefer_studio

Patterns:
- Play indicators to drop: "I'd like to hear", "play", "put on", "I want to hear", "can you play"
- "[Artist]'s [Song]" gives artist and title
- "[Song] by [Artist]" gives title and artist
- "live version of", "concert version", "live recording" set prefer_live
- "acoustic version", "unplugged version", "acoustic" set prefer_acoustic
- "studio version", "original version", "studio recording" set prefer_studio
Never keep version words in the title.

Examples:
"Neil Young's Harvest" -> {"title": "harvest", "artist": "neil young", "preferences": {}}
"play a live version of harvest by neil young" -> {"title": "harvest", "artist": "neil young", "preferences": {"prefer_live": true}}

Return ONLY a JSON object with exactly the keys title, artist, preferences.`

// SelectionSystemPrompt instructs a model to pick one numbered search result.
const SelectionSystemPrompt = `You are a music expert selecting the best track from catalog search results.

Rules:
- Match the exact song title, not similar songs with different titles.
- Prefer the requested artist over covers or tributes.
- Apply the version preference: "(Live)" or venue albums for live, "Acoustic" or "Unplugged" for acoustic.
- Prefer original albums over compilations when no preference is given.
- Avoid covers, tributes and instrumentals unless requested.

Return ONLY a JSON object {"position": n} where n is the chosen result number, or {"position": null} if none fits.`

// ParsedRequest is the JSON reply expected for ParseSystemPrompt.
type ParsedRequest struct {
	Title       string             `json:"title"`
	Artist      *string            `json:"artist"`
	Preferences domain.Preferences `json:"preferences"`
}

// DecodeRequest converts a model reply into a MusicRequest tagged with the
// llm parse method.
func DecodeRequest(raw, content string) (domain.MusicRequest, error) {
	var parsed ParsedRequest
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return domain.MusicRequest{}, fmt.Errorf("decode parsed request: %w", err)
	}
	artist := ""
	if parsed.Artist != nil {
		artist = *parsed.Artist
	}
	req := domain.NewStructuredRequest(parsed.Title, artist, parsed.Preferences)
	if req.Title == "" {
		return domain.MusicRequest{}, fmt.Errorf("model returned no title: %w", domain.ErrParseAmbiguous)
	}
	req.Raw = raw
	req.Method = domain.MethodLLM
	return req, nil
}

// SelectionPrompt renders the user message for a disambiguation call.
func SelectionPrompt(in ports.DisambiguationInput) string {
	var b strings.Builder

	artist := in.Request.Artist
	if artist == "" {
		artist = "unknown artist"
	}
	fmt.Fprintf(&b, "TARGET SONG: %q by %s\n", in.Request.Title, artist)
	fmt.Fprintf(&b, "PREFERENCES: %s\n\n", preferenceText(in.Request.Preferences))

	b.WriteString("SEARCH RESULTS:\n")
	for _, c := range in.Candidates {
		fmt.Fprintf(&b, "%d. %s-%s-%s\n", c.Position, c.Title, c.Artist, c.Album)
	}

	maxPos := 0
	for _, c := range in.Candidates {
		if c.Position > maxPos {
			maxPos = c.Position
		}
	}
	fmt.Fprintf(&b, "\nWhich position number (1-%d) best matches the request?", maxPos)
	return b.String()
}

func preferenceText(p domain.Preferences) string {
	var prefs []string
	if p.PreferLive {
		prefs = append(prefs, "live version")
	}
	if p.PreferAcoustic {
		prefs = append(prefs, "acoustic version")
	}
	if p.PreferStudio {
		prefs = append(prefs, "studio version")
	}
	if len(prefs) == 0 {
		return "no specific version preference"
	}
	return strings.Join(prefs, ", ")
}

type positionReply struct {
	Position *json.Number `json:"position"`
}

// DecodePosition reads a {"position": n} reply. A bare number is accepted
// too. Null or missing positions decode as 0.
func DecodePosition(content string) (int, error) {
	content = strings.TrimSpace(content)
	if n, err := strconv.Atoi(content); err == nil {
		return max(n, 0), nil
	}

	var reply positionReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return 0, fmt.Errorf("decode position: %w", err)
	}
	if reply.Position == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(reply.Position.String())
	if err != nil {
		return 0, fmt.Errorf("decode position %q: %w", reply.Position.String(), err)
	}
	return max(n, 0), nil
}
