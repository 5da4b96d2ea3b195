package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

const harvestListing = "1. Harvest-Neil Young-Harvest\n2. Harvest (Live)-Neil Young-Live at Massey Hall"

func transient(q string) catalogReply {
	return catalogReply{err: &ports.TransientAuthError{Query: q, Err: errors.New("AuthTokenExpired")}}
}

func malformed(q string) catalogReply {
	return catalogReply{err: &ports.MalformedResponseError{Query: q, Err: errors.New("string indices must be integers")}}
}

func newTestSearcher(c ports.CatalogSearcher) *Searcher {
	return NewSearcher(c, WithBackoff(0))
}

func TestSearcherSearch(t *testing.T) {
	tests := []struct {
		name         string
		catalog      *scriptedCatalog
		queries      []string
		wantQuery    string
		wantTried    []string
		wantErr      error
		wantCallsFor map[string]int
	}{
		{
			name:      "first hit wins",
			catalog:   newScriptedCatalog().on("q1", catalogReply{raw: harvestListing}),
			queries:   []string{"q1", "q2"},
			wantQuery: "q1",
			wantTried: []string{"q1"},
		},
		{
			name:      "empty batch moves on",
			catalog:   newScriptedCatalog().on("q2", catalogReply{raw: harvestListing}),
			queries:   []string{"q1", "q2"},
			wantQuery: "q2",
			wantTried: []string{"q1", "q2"},
		},
		{
			name: "transient retried until success",
			catalog: newScriptedCatalog().on("q1",
				transient("q1"), transient("q1"), catalogReply{raw: harvestListing}),
			queries:      []string{"q1"},
			wantQuery:    "q1",
			wantTried:    []string{"q1"},
			wantCallsFor: map[string]int{"q1": 3},
		},
		{
			name:         "transient exhausted moves on",
			catalog:      newScriptedCatalog().on("q1", transient("q1")).on("q2", catalogReply{raw: harvestListing}),
			queries:      []string{"q1", "q2"},
			wantQuery:    "q2",
			wantTried:    []string{"q1", "q2"},
			wantCallsFor: map[string]int{"q1": DefaultMaxAttempts, "q2": 1},
		},
		{
			name: "malformed falls back to simplified query",
			catalog: newScriptedCatalog().
				on("fixing her hair ani difranco", malformed("fixing her hair ani difranco")).
				on("fixing hair ani difranco", catalogReply{raw: "1. Fixing Her Hair-Ani DiFranco-Imperfectly"}),
			queries:   []string{"fixing her hair ani difranco", "ani difranco"},
			wantQuery: "fixing hair ani difranco",
			wantTried: []string{"fixing her hair ani difranco", "her hair ani difranco", "fixing hair ani difranco"},
		},
		{
			name: "malformed fallbacks that fail move to next query",
			catalog: newScriptedCatalog().
				on("a b c", malformed("a b c")).
				on("b c", malformed("b c")).
				on("a c", transient("a c")).
				on("next", catalogReply{raw: harvestListing}),
			queries:      []string{"a b c", "next"},
			wantQuery:    "next",
			wantTried:    []string{"a b c", "b c", "a c", "next"},
			wantCallsFor: map[string]int{"a c": DefaultMaxAttempts},
		},
		{
			name:      "short malformed query has no fallbacks",
			catalog:   newScriptedCatalog().on("a b", malformed("a b")),
			queries:   []string{"a b"},
			wantTried: []string{"a b"},
			wantErr:   domain.ErrQueryExhausted,
		},
		{
			name:      "exhaustion lists every query once",
			catalog:   newScriptedCatalog(),
			queries:   []string{"q1", "q2", "q1"},
			wantTried: []string{"q1", "q2"},
			wantErr:   domain.ErrQueryExhausted,
		},
		{
			name:      "fatal error propagates",
			catalog:   newScriptedCatalog().on("q2", catalogReply{err: errors.New("sonos: command not found")}),
			queries:   []string{"q1", "q2", "q3"},
			wantTried: []string{"q1", "q2"},
			wantErr:   domain.ErrCatalogFatal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, tried, err := newTestSearcher(tt.catalog).Search(context.Background(), tt.queries)

			assert.Equal(t, tt.wantTried, tried)
			for q, n := range tt.wantCallsFor {
				assert.Equal(t, n, tt.catalog.callsFor(q), "calls for %q", q)
			}
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, batch.Query)
			assert.NotEmpty(t, batch.Candidates)
		})
	}
}

func TestSearcherErrorsCarryQueries(t *testing.T) {
	c := newScriptedCatalog().on("q2", catalogReply{err: errors.New("boom")})
	_, _, err := newTestSearcher(c).Search(context.Background(), []string{"q1", "q2"})

	var fatal *domain.CatalogFatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "q2", fatal.Query)
	assert.Equal(t, []string{"q1", "q2"}, fatal.Queries)
	assert.EqualError(t, errors.Unwrap(fatal), "boom")

	_, _, err = newTestSearcher(newScriptedCatalog()).Search(context.Background(), []string{"x", "y"})
	var exhausted *domain.QueryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, []string{"x", "y"}, exhausted.Queries)
}

func TestSearcherEachContinuesWhenRejected(t *testing.T) {
	c := newScriptedCatalog().
		on("q1", catalogReply{raw: "1. Nope-Nobody-Nothing"}).
		on("q2", catalogReply{raw: harvestListing})

	var seen []string
	tried, err := newTestSearcher(c).Each(context.Background(), []string{"q1", "q2", "q3"}, func(b domain.Batch) bool {
		seen = append(seen, b.Query)
		return b.Query == "q2"
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, seen)
	assert.Equal(t, []string{"q1", "q2"}, tried)
}

func TestSearcherCancelledDuringBackoff(t *testing.T) {
	c := newScriptedCatalog().on("q1", transient("q1"))
	ctx, cancel := context.WithCancel(context.Background())

	s := NewSearcher(c, WithBackoff(time.Hour))
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := s.Search(ctx, []string{"q1", "q2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, c.callsFor("q1"))
	assert.Zero(t, c.callsFor("q2"))
}

func TestSearcherMaxAttemptsOption(t *testing.T) {
	c := newScriptedCatalog().on("q1", transient("q1"))
	_, _, err := NewSearcher(c, WithBackoff(0), WithMaxAttempts(2)).Search(context.Background(), []string{"q1"})

	assert.ErrorIs(t, err, domain.ErrQueryExhausted)
	assert.Equal(t, 2, c.callsFor("q1"))
}

func TestFallbackQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "single word", query: "harvest", want: nil},
		{name: "two words", query: "neil young", want: nil},
		{name: "three words dedupes", query: "a b c", want: []string{"b c", "a c"}},
		{
			name:  "five words",
			query: "fixing her hair ani difranco",
			want: []string{
				"her hair ani difranco",
				"fixing hair ani difranco",
				"fixing her ani difranco",
				"fixing her hair difranco",
				"ani difranco",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackQueries(tt.query))
		})
	}
}
