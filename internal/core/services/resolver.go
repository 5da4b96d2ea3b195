// Package services wires the resolver core: query generation, catalog
// search, and candidate selection.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/matching"
	"github.com/ewilliams-labs/trackfinder/internal/core/parsing"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/core/query"
	"github.com/ewilliams-labs/trackfinder/internal/logger"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

// Resolver turns a track request into one position of a catalog result list.
type Resolver struct {
	searcher  *Searcher
	selector  *matching.Selector
	generator *query.Generator
	parser    ports.RequestParser
	journal   ports.ResolutionJournal
	logger    *zap.Logger
	now       func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithParser sets the free-text parser used by ResolveText.
func WithParser(p ports.RequestParser) ResolverOption {
	return func(r *Resolver) { r.parser = p }
}

// WithGenerator sets the query generator.
func WithGenerator(g *query.Generator) ResolverOption {
	return func(r *Resolver) { r.generator = g }
}

// WithJournal records every finished resolution.
func WithJournal(j ports.ResolutionJournal) ResolverOption {
	return func(r *Resolver) { r.journal = j }
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver constructs a Resolver. Without options it parses with the
// rule parser, uses the default album fallbacks and keeps no journal.
func NewResolver(searcher *Searcher, selector *matching.Selector, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		searcher:  searcher,
		selector:  selector,
		generator: query.NewGenerator(query.DefaultAlbumFallbacks()),
		parser:    parsing.NewRuleParser(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan parses raw and returns the queries Resolve would try, without
// touching the catalog.
func (r *Resolver) Plan(ctx context.Context, raw string) (domain.MusicRequest, []string, error) {
	req, err := r.parse(ctx, raw)
	if err != nil {
		return domain.MusicRequest{}, nil, err
	}
	return req, r.Queries(req), nil
}

// Queries returns the catalog queries Resolve would try for req.
func (r *Resolver) Queries(req domain.MusicRequest) []string {
	return r.generator.Generate(req.Title, req.Artist, req.Preferences)
}

// ResolveText parses raw with the configured parser and resolves it.
func (r *Resolver) ResolveText(ctx context.Context, raw string) (domain.Resolution, error) {
	req, err := r.parse(ctx, raw)
	if err != nil {
		res := domain.Resolution{
			Message: fmt.Sprintf("Could not understand %q. Try \"<title> by <artist>\".", strings.TrimSpace(raw)),
			Details: domain.ResolutionDetails{Failure: domain.FailureParse},
		}
		r.finish(ctx, domain.MusicRequest{Raw: raw}, res, nil, time.Time{})
		return res, err
	}
	return r.Resolve(ctx, req)
}

// Resolve searches the catalog for req and selects the best candidate.
//
// The returned Resolution is always populated. On failure the error is a
// *domain.QueryExhaustedError when no query produced results, a
// *domain.NoViableMatchError when results came back but none scored high
// enough, or a *domain.CatalogFatalError.
func (r *Resolver) Resolve(ctx context.Context, req domain.MusicRequest) (domain.Resolution, error) {
	start := r.now()
	res := domain.Resolution{Details: domain.ResolutionDetails{
		Title:       req.Title,
		Artist:      req.Artist,
		Preferences: req.Preferences,
		ParseMethod: req.Method,
	}}

	queries := r.Queries(req)
	if len(queries) == 0 {
		res.Message = "Nothing to search for: the request has no title."
		res.Details.Failure = domain.FailureParse
		r.finish(ctx, req, res, nil, start)
		return res, fmt.Errorf("resolve: %w", domain.ErrEmptyRequest)
	}

	var (
		sel     matching.Selection
		chosen  domain.Batch
		batches int
	)
	tried, err := r.searcher.Each(ctx, queries, func(b domain.Batch) bool {
		batches++
		s, selErr := r.selector.Select(ctx, b, req)
		if selErr != nil {
			r.logger.Debug("no viable candidate in batch",
				zap.String("query", b.Query),
				zap.Int("candidates", len(b.Candidates)),
			)
			return false
		}
		sel, chosen = s, b
		return true
	})
	res.Details.QueriesTried = tried

	if err != nil {
		if errors.Is(err, domain.ErrQueryExhausted) && batches > 0 {
			err = &domain.NoViableMatchError{Title: req.Title, Artist: req.Artist, Queries: tried}
		}
		res.Message, res.Details.Failure = failureMessage(req, err)
		r.finish(ctx, req, res, nil, start)
		return res, err
	}

	if sel.Consulted {
		outcome := "kept"
		if sel.Disambiguated {
			outcome = "override"
		}
		metrics.DisambiguationsTotal.WithLabelValues(outcome).Inc()
	}

	track := sel.Winner.Candidate
	res.Success = true
	res.Message = fmt.Sprintf("Selected: %s by %s", track.Title, track.Artist)
	res.Details.QueryUsed = chosen.Query
	res.Details.Position = sel.Position
	res.Details.TotalCandidates = len(chosen.Candidates)
	res.Details.Track = &track
	res.Details.Disambiguated = sel.Disambiguated

	r.finish(ctx, req, res, sel.Viable, start)
	return res, nil
}

func (r *Resolver) parse(ctx context.Context, raw string) (domain.MusicRequest, error) {
	req, err := r.parser.Parse(ctx, raw)
	if err != nil {
		return domain.MusicRequest{}, fmt.Errorf("resolve: parse request: %w", err)
	}
	if req.Raw == "" {
		req.Raw = raw
	}
	if req.Ambiguous() {
		r.logger.Info("request parsed as title only", zap.String("raw", raw), zap.NamedError("note", domain.ErrParseAmbiguous))
	}
	return req, nil
}

func (r *Resolver) finish(ctx context.Context, req domain.MusicRequest, res domain.Resolution, scored []domain.ScoredCandidate, start time.Time) {
	result := "success"
	if !res.Success {
		result = string(res.Details.Failure)
	}
	metrics.ResolutionsTotal.WithLabelValues(result).Inc()
	if !start.IsZero() {
		metrics.ResolveDuration.Observe(r.now().Sub(start).Seconds())
	}

	log := logger.Tag(ctx, r.logger)
	log.Info("resolution finished",
		zap.Bool("success", res.Success),
		zap.String("title", req.Title),
		zap.String("artist", req.Artist),
		zap.String("result", result),
		zap.Int("position", res.Details.Position),
		zap.Int("queries_tried", len(res.Details.QueriesTried)),
	)

	if r.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		ID:         uuid.NewString(),
		CreatedAt:  r.now().UTC(),
		Request:    req,
		Resolution: res,
		Scored:     scored,
	}
	if err := r.journal.Record(ctx, entry); err != nil {
		log.Warn("journal record failed", zap.String("id", entry.ID), zap.Error(err))
	}
}

func failureMessage(req domain.MusicRequest, err error) (string, domain.FailureKind) {
	target := describe(req)
	switch {
	case errors.Is(err, domain.ErrNoViableMatch):
		return fmt.Sprintf("Could not find a good match for %q. Try being more specific or using different search terms.", target), domain.FailureNoViableMatch
	case errors.Is(err, domain.ErrQueryExhausted):
		return fmt.Sprintf("No results for %q from any search query.", target), domain.FailureQueryExhausted
	case errors.Is(err, domain.ErrCatalogFatal):
		return fmt.Sprintf("Catalog search failed: %v", err), domain.FailureCatalogFatal
	default:
		return fmt.Sprintf("Search interrupted: %v", err), domain.FailureCanceled
	}
}

func describe(req domain.MusicRequest) string {
	if req.Raw != "" {
		return strings.TrimSpace(req.Raw)
	}
	if req.Artist != "" {
		return req.Title + " by " + req.Artist
	}
	return req.Title
}
