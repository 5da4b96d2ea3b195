package matching

import (
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// ViabilityThreshold is the lowest combined score still treated as a match.
const ViabilityThreshold = 0.3

const (
	containmentFloor = 0.8

	preferredMatchBonus  = 0.3
	preferredMissPenalty = -0.1

	defaultStudioBias   = 0.1
	defaultLiveBias     = -0.05
	defaultAcousticBias = 0.05
)

// Score rates one candidate against the target title, artist and preferences.
// The result is always within [0, 1].
func Score(c domain.SearchCandidate, targetTitle, targetArtist string, prefs domain.Preferences) domain.ScoredCandidate {
	title := TitleScore(c.Title, targetTitle)
	artist := ArtistScore(c.Artist, targetArtist)
	version := DetectVersion(c.Title, c.Album)
	vs := VersionScore(version, prefs)

	var combined float64
	if strings.TrimSpace(targetArtist) != "" {
		combined = 0.6*title + 0.3*artist + vs + 0.1
	} else {
		combined = 0.8*title + vs + 0.2
	}

	return domain.ScoredCandidate{
		Position:     c.Position,
		Score:        clamp01(combined),
		TitleScore:   title,
		ArtistScore:  artist,
		VersionScore: vs,
		Version:      version,
		Candidate:    c,
	}
}

// TitleScore compares normalized titles. Equal titles, or titles equal once
// punctuation and accents are dropped, score 1.
func TitleScore(candidate, target string) float64 {
	c, t := Normalize(candidate), Normalize(target)
	if c == t {
		return 1.0
	}
	if sc, st := NormalizeStrict(c), NormalizeStrict(t); sc != "" && sc == st {
		return 1.0
	}
	return Similarity(c, t)
}

// ArtistScore compares normalized artists. An empty target scores 0; one
// name containing the other scores at least 0.8.
func ArtistScore(candidate, target string) float64 {
	t := Normalize(target)
	if t == "" {
		return 0
	}
	c := Normalize(candidate)
	if c == t {
		return 1.0
	}
	score := Similarity(c, t)
	if c != "" && (strings.Contains(c, t) || strings.Contains(t, c)) && score < containmentFloor {
		score = containmentFloor
	}
	return score
}

// VersionScore applies the preference bonus or penalty. Only the
// highest-priority preference flag is considered.
func VersionScore(v domain.Version, prefs domain.Preferences) float64 {
	if active := prefs.Active(); active != domain.PreferenceNone {
		if v.Matches(active) {
			return preferredMatchBonus
		}
		return preferredMissPenalty
	}

	switch {
	case v.Studio():
		return defaultStudioBias
	case v.Live:
		return defaultLiveBias
	default:
		return defaultAcousticBias
	}
}

// ScoreBatch scores every candidate in the batch, keeping batch order.
func ScoreBatch(b domain.Batch, req domain.MusicRequest) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(b.Candidates))
	for _, c := range b.Candidates {
		scored = append(scored, Score(c, req.Title, req.Artist, req.Preferences))
	}
	return scored
}

// Viable drops candidates below ViabilityThreshold.
func Viable(scored []domain.ScoredCandidate) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.Score >= ViabilityThreshold {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
