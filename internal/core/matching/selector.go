package matching

import (
	"context"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

const (
	crowdedScore   = 0.7
	crowdedCount   = 3
	confidentScore = 0.8
)

var ambiguousAlbumRegex = regexp.MustCompile(`(?i)greatest\s+hits|anthology|deluxe|best\s+of|collection|essential`)

// Selection is the outcome of picking a winner from one batch.
type Selection struct {
	Position      int
	Winner        domain.ScoredCandidate
	Viable        []domain.ScoredCandidate
	Consulted     bool
	Disambiguated bool
}

// Selector picks the best-scoring candidate of a batch. Exact ties at the
// top score are broken uniformly at random.
type Selector struct {
	disambiguator ports.Disambiguator
	logger        *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithDisambiguator sets the external chooser consulted on ambiguous batches.
func WithDisambiguator(d ports.Disambiguator) SelectorOption {
	return func(s *Selector) { s.disambiguator = d }
}

// WithRand sets the random source used for tie-breaks.
func WithRand(r *rand.Rand) SelectorOption {
	return func(s *Selector) { s.rng = r }
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(l *zap.Logger) SelectorOption {
	return func(s *Selector) { s.logger = l }
}

// NewSelector builds a Selector.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- tie-break, not security sensitive
	}
	return s
}

// Select scores the batch and returns the winning position. It returns a
// *domain.NoViableMatchError when nothing clears ViabilityThreshold.
// The returned position always exists in the batch.
func (s *Selector) Select(ctx context.Context, b domain.Batch, req domain.MusicRequest) (Selection, error) {
	scored := ScoreBatch(b, req)
	for _, sc := range scored {
		s.logger.Debug("candidate scored",
			zap.String("query", b.Query),
			zap.Int("position", sc.Position),
			zap.String("title", sc.Candidate.Title),
			zap.String("artist", sc.Candidate.Artist),
			zap.Float64("score", sc.Score),
		)
	}

	viable := Viable(scored)
	if len(viable) == 0 {
		return Selection{}, &domain.NoViableMatchError{Title: req.Title, Artist: req.Artist}
	}

	winner := s.pickMax(viable)
	sel := Selection{Position: winner.Position, Winner: winner, Viable: viable}

	if s.disambiguator == nil || !NeedsDisambiguation(viable, req.Preferences, b.Candidates) {
		return sel, nil
	}

	sel.Consulted = true
	pos, err := s.disambiguator.Choose(ctx, ports.DisambiguationInput{
		Request:    req,
		Query:      b.Query,
		Candidates: b.Candidates,
		Scored:     viable,
	})
	if err != nil {
		s.logger.Warn("disambiguator failed, keeping programmatic winner", zap.Error(err))
		return sel, nil
	}
	if pos == 0 || !b.Has(pos) {
		if pos != 0 {
			s.logger.Warn("disambiguator returned unknown position", zap.Int("position", pos))
		}
		return sel, nil
	}

	for _, sc := range scored {
		if sc.Position == pos {
			sel.Winner = sc
			break
		}
	}
	sel.Position = pos
	sel.Disambiguated = true
	return sel, nil
}

// NeedsDisambiguation reports whether the batch looks ambiguous enough to
// ask an external chooser.
func NeedsDisambiguation(viable []domain.ScoredCandidate, prefs domain.Preferences, candidates []domain.SearchCandidate) bool {
	if len(viable) == 0 {
		return false
	}

	crowded := 0
	top := 0.0
	for _, sc := range viable {
		if sc.Score > crowdedScore {
			crowded++
		}
		if sc.Score > top {
			top = sc.Score
		}
	}
	if crowded >= crowdedCount || top < confidentScore {
		return true
	}
	if prefs.Count() > 1 {
		return true
	}
	for _, c := range candidates {
		if ambiguousAlbumRegex.MatchString(c.Album) {
			return true
		}
	}
	return false
}

func (s *Selector) pickMax(viable []domain.ScoredCandidate) domain.ScoredCandidate {
	best := viable[0].Score
	for _, sc := range viable[1:] {
		if sc.Score > best {
			best = sc.Score
		}
	}

	tied := make([]domain.ScoredCandidate, 0, 1)
	for _, sc := range viable {
		if sc.Score == best {
			tied = append(tied, sc)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(tied))
	s.mu.Unlock()
	return tied[idx]
}
