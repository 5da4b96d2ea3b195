// Package query expands a structured request into the ordered list of
// catalog search strings tried by the resolver.
package query

import (
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

var stopWords = map[string]struct{}{
	"the":   {},
	"a":     {},
	"an":    {},
	"her":   {},
	"his":   {},
	"my":    {},
	"your":  {},
	"our":   {},
	"their": {},
}

// AlbumFallback maps titles the catalog struggles with to an album query.
// A rule applies when the title contains every word in TitleContains.
type AlbumFallback struct {
	TitleContains []string `yaml:"title_contains" json:"title_contains"`
	Query         string   `yaml:"query" json:"query"`
}

// Matches reports whether the rule applies to title.
func (f AlbumFallback) Matches(title string) bool {
	if len(f.TitleContains) == 0 || strings.TrimSpace(f.Query) == "" {
		return false
	}
	lowered := strings.ToLower(title)
	for _, word := range f.TitleContains {
		if !strings.Contains(lowered, strings.ToLower(word)) {
			return false
		}
	}
	return true
}

// DefaultAlbumFallbacks is the built-in rule table.
func DefaultAlbumFallbacks() []AlbumFallback {
	return []AlbumFallback{
		{TitleContains: []string{"fixing", "hair"}, Query: "imperfectly"},
	}
}

// Generator builds query lists. The zero value has no album rules.
type Generator struct {
	fallbacks []AlbumFallback
}

// NewGenerator returns a Generator using the given album rules.
func NewGenerator(fallbacks []AlbumFallback) *Generator {
	return &Generator{fallbacks: fallbacks}
}

// Generate returns the ordered, de-duplicated queries for a request.
// Preference-prefixed variants come first, then base variants, then album
// fallbacks, then the artist alone. An empty title yields no queries.
func (g *Generator) Generate(title, artist string, prefs domain.Preferences) []string {
	title = collapse(strings.ToLower(title))
	artist = collapse(strings.ToLower(artist))
	if title == "" {
		return nil
	}

	variants := titleVariants(title)
	word := string(prefs.Active())

	var queries []string
	if word != "" {
		for _, t := range variants {
			queries = append(queries, dedupe(preferenceQueries(word, t, artist))...)
		}
	}
	for _, t := range variants {
		queries = append(queries, dedupe(baseQueries(t, artist))...)
	}

	for _, f := range g.fallbacks {
		if f.Matches(title) {
			queries = appendUnique(queries, collapse(strings.ToLower(f.Query)))
		}
	}
	if artist != "" {
		queries = appendUnique(queries, artist)
	}

	return queries
}

// Generate runs the default rule table.
func Generate(title, artist string, prefs domain.Preferences) []string {
	return NewGenerator(DefaultAlbumFallbacks()).Generate(title, artist, prefs)
}

func titleVariants(title string) []string {
	variants := []string{title}
	words := strings.Fields(title)
	if len(words) <= 2 {
		return variants
	}

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	stripped := strings.Join(kept, " ")
	if stripped != "" && stripped != title {
		variants = append(variants, stripped)
	}
	return variants
}

func preferenceQueries(word, title, artist string) []string {
	if artist == "" {
		return []string{word + " " + title, title + " " + word}
	}
	return []string{
		word + " " + title + " " + artist,
		title + " " + word + " " + artist,
		artist + " " + title + " " + word,
	}
}

func baseQueries(title, artist string) []string {
	if artist == "" {
		return []string{title}
	}
	return []string{
		title + " by " + artist,
		title + " " + artist,
		artist + " " + title,
	}
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = appendUnique(out, s)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
