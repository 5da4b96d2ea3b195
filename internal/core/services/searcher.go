package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/parsing"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

const (
	// DefaultMaxAttempts is the total number of tries per query on
	// transient auth failures, the first one included.
	DefaultMaxAttempts = 5
	DefaultBackoff     = time.Second
)

// Searcher runs queries against a catalog strictly one at a time, retrying
// transient auth failures and simplifying queries the catalog cannot parse.
type Searcher struct {
	catalog     ports.CatalogSearcher
	logger      *zap.Logger
	maxAttempts int
	backoff     time.Duration
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SearcherOption {
	return func(s *Searcher) { s.logger = l }
}

// WithMaxAttempts sets the per-query attempt budget for transient failures.
func WithMaxAttempts(n int) SearcherOption {
	return func(s *Searcher) { s.maxAttempts = n }
}

// WithBackoff sets the fixed delay between transient retries.
func WithBackoff(d time.Duration) SearcherOption {
	return func(s *Searcher) { s.backoff = d }
}

// NewSearcher builds a Searcher over catalog.
func NewSearcher(catalog ports.CatalogSearcher, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		catalog:     catalog,
		logger:      zap.NewNop(),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	if s.backoff < 0 {
		s.backoff = 0
	}
	return s
}

// Search returns the first non-empty batch along with every distinct query
// sent. When nothing comes back it returns a *domain.QueryExhaustedError.
func (s *Searcher) Search(ctx context.Context, queries []string) (domain.Batch, []string, error) {
	var found domain.Batch
	tried, err := s.Each(ctx, queries, func(b domain.Batch) bool {
		found = b
		return true
	})
	if err != nil {
		return domain.Batch{}, tried, err
	}
	return found, tried, nil
}

// Each runs queries in order and hands every non-empty batch to visit until
// visit returns true. It returns the distinct queries sent, in order.
//
// Errors: a *domain.QueryExhaustedError when visit never accepted a batch,
// a *domain.CatalogFatalError for unclassified catalog failures, or the
// context error when ctx ends.
func (s *Searcher) Each(ctx context.Context, queries []string, visit func(domain.Batch) bool) ([]string, error) {
	tried := &queryLog{}

	for _, q := range queries {
		accepted, err := s.try(ctx, q, tried, visit)
		if err != nil || accepted {
			return tried.list(), err
		}
	}

	return tried.list(), &domain.QueryExhaustedError{Queries: tried.list()}
}

// try runs one primary query and, when the catalog reports a malformed
// response, its simplified fallbacks.
func (s *Searcher) try(ctx context.Context, q string, tried *queryLog, visit func(domain.Batch) bool) (bool, error) {
	batch, err := s.run(ctx, q, tried)
	if err == nil {
		return !batch.Empty() && visit(batch), nil
	}

	var malformed *ports.MalformedResponseError
	var transient *ports.TransientAuthError
	switch {
	case isContextErr(ctx, err):
		return false, fmt.Errorf("search: %w", ctx.Err())
	case errors.As(err, &transient):
		s.logger.Warn("query abandoned after transient failures",
			zap.String("query", q),
			zap.Int("attempts", s.maxAttempts),
			zap.Error(err),
		)
		return false, nil
	case errors.As(err, &malformed):
		s.logger.Warn("malformed response, trying simplified queries", zap.String("query", q), zap.Error(err))
		return s.tryFallbacks(ctx, q, tried, visit)
	default:
		return false, s.fatal(q, tried, err)
	}
}

func (s *Searcher) tryFallbacks(ctx context.Context, q string, tried *queryLog, visit func(domain.Batch) bool) (bool, error) {
	for _, fb := range FallbackQueries(q) {
		batch, err := s.run(ctx, fb, tried)
		if err == nil {
			if !batch.Empty() && visit(batch) {
				return true, nil
			}
			continue
		}

		var malformed *ports.MalformedResponseError
		var transient *ports.TransientAuthError
		switch {
		case isContextErr(ctx, err):
			return false, fmt.Errorf("search: %w", ctx.Err())
		case errors.As(err, &transient), errors.As(err, &malformed):
			s.logger.Debug("fallback query failed", zap.String("query", fb), zap.Error(err))
		default:
			return false, s.fatal(fb, tried, err)
		}
	}
	return false, nil
}

// run sends one query, retrying transient auth failures with a fixed delay.
func (s *Searcher) run(ctx context.Context, q string, tried *queryLog) (domain.Batch, error) {
	tried.add(q)

	for attempt := 1; ; attempt++ {
		raw, err := s.catalog.Search(ctx, q)
		if err == nil {
			batch := parsing.ParseBatch(q, raw)
			if batch.Empty() {
				metrics.CatalogQueriesTotal.WithLabelValues("empty").Inc()
			} else {
				metrics.CatalogQueriesTotal.WithLabelValues("hit").Inc()
			}
			s.logger.Debug("catalog query",
				zap.String("query", q),
				zap.Int("candidates", len(batch.Candidates)),
			)
			return batch, nil
		}

		var transient *ports.TransientAuthError
		if !errors.As(err, &transient) {
			var malformed *ports.MalformedResponseError
			if errors.As(err, &malformed) {
				metrics.CatalogQueriesTotal.WithLabelValues("malformed").Inc()
			} else {
				metrics.CatalogQueriesTotal.WithLabelValues("fatal").Inc()
			}
			return domain.Batch{}, err
		}

		metrics.CatalogQueriesTotal.WithLabelValues("transient").Inc()
		if attempt >= s.maxAttempts {
			return domain.Batch{}, err
		}

		s.logger.Warn("transient catalog failure, retrying",
			zap.String("query", q),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Duration("backoff", s.backoff),
		)
		metrics.CatalogRetriesTotal.Inc()
		if err := sleepWithContext(ctx, s.backoff); err != nil {
			return domain.Batch{}, err
		}
	}
}

func (s *Searcher) fatal(q string, tried *queryLog, err error) error {
	s.logger.Error("catalog failure", zap.String("query", q), zap.Error(err))
	return &domain.CatalogFatalError{Query: q, Queries: tried.list(), Err: err}
}

// FallbackQueries lists simplified forms of a query the catalog failed to
// parse: the first word dropped, then each interior word dropped in turn,
// then only the last two words. Queries of two words or fewer have none.
func FallbackQueries(q string) []string {
	words := strings.Fields(q)
	n := len(words)
	if n <= 2 {
		return nil
	}

	out := make([]string, 0, n)
	add := func(parts []string) {
		candidate := strings.Join(parts, " ")
		for _, existing := range out {
			if existing == candidate {
				return
			}
		}
		out = append(out, candidate)
	}

	add(words[1:])
	for i := 1; i < n-1; i++ {
		parts := make([]string, 0, n-1)
		parts = append(parts, words[:i]...)
		parts = append(parts, words[i+1:]...)
		add(parts)
	}
	add(words[n-2:])
	return out
}

type queryLog struct {
	queries []string
	seen    map[string]struct{}
}

func (l *queryLog) add(q string) {
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, ok := l.seen[q]; ok {
		return
	}
	l.seen[q] = struct{}{}
	l.queries = append(l.queries, q)
}

func (l *queryLog) list() []string {
	return append([]string(nil), l.queries...)
}

// isContextErr reports whether err stems from ctx ending. A deadline hit
// inside the catalog adapter alone is a catalog failure.
func isContextErr(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("search: canceled during backoff: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
