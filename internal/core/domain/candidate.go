package domain

// SearchCandidate is one entry of a catalog result list. Position is the
// 1-based index the catalog assigned and is only meaningful inside the
// batch that produced it.
type SearchCandidate struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	RawLine  string `json:"raw_line,omitempty"`
}

// Batch is the parsed response to a single catalog query.
type Batch struct {
	Query      string            `json:"query"`
	Candidates []SearchCandidate `json:"candidates"`
}

// Empty reports whether the batch holds no candidates.
func (b Batch) Empty() bool {
	return len(b.Candidates) == 0
}

// Has reports whether position exists in the batch.
func (b Batch) Has(position int) bool {
	_, ok := b.Find(position)
	return ok
}

// Find returns the candidate at position.
func (b Batch) Find(position int) (SearchCandidate, bool) {
	for _, c := range b.Candidates {
		if c.Position == position {
			return c, true
		}
	}
	return SearchCandidate{}, false
}

// Version is the recording-version classification of a candidate.
// Live and Acoustic may both be set; neither set means studio.
type Version struct {
	Live     bool `json:"live"`
	Acoustic bool `json:"acoustic"`
}

// Studio reports whether the candidate looks like a studio recording.
func (v Version) Studio() bool {
	return !v.Live && !v.Acoustic
}

// Matches reports whether the version satisfies the given preference.
func (v Version) Matches(p Preference) bool {
	switch p {
	case PreferenceLive:
		return v.Live
	case PreferenceAcoustic:
		return v.Acoustic
	case PreferenceStudio:
		return v.Studio()
	default:
		return false
	}
}

// ScoredCandidate pairs a candidate with its match scores.
type ScoredCandidate struct {
	Position     int             `json:"position"`
	Score        float64         `json:"score"`
	TitleScore   float64         `json:"title_score"`
	ArtistScore  float64         `json:"artist_score"`
	VersionScore float64         `json:"version_score"`
	Version      Version         `json:"version"`
	Candidate    SearchCandidate `json:"candidate"`
}
