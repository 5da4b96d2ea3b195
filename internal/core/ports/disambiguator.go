package ports

import (
	"context"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// DisambiguationInput is everything an external chooser sees.
type DisambiguationInput struct {
	Request    domain.MusicRequest
	Query      string
	Candidates []domain.SearchCandidate
	Scored     []domain.ScoredCandidate
}

// Disambiguator picks a position out of an ambiguous batch.
// A zero position means no opinion.
type Disambiguator interface {
	Choose(ctx context.Context, in DisambiguationInput) (int, error)
}
