package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func TestGenerateBaseOrder(t *testing.T) {
	got := Generate("harvest", "neil young", domain.Preferences{})

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []string{"harvest by neil young", "harvest neil young", "neil young harvest"}, got[:3])
	assert.Equal(t, "neil young", got[len(got)-1])
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		artist string
		prefs  domain.Preferences
		want   []string
	}{
		{
			name:  "title only",
			title: "harvest",
			want:  []string{"harvest"},
		},
		{
			name:  "title only with live preference",
			title: "harvest",
			prefs: domain.Preferences{PreferLive: true},
			want:  []string{"live harvest", "harvest live", "harvest"},
		},
		{
			name:   "live preference with artist",
			title:  "harvest",
			artist: "neil young",
			prefs:  domain.Preferences{PreferLive: true},
			want: []string{
				"live harvest neil young",
				"harvest live neil young",
				"neil young harvest live",
				"harvest by neil young",
				"harvest neil young",
				"neil young harvest",
				"neil young",
			},
		},
		{
			name:   "acoustic preference uses its own word",
			title:  "harvest",
			artist: "neil young",
			prefs:  domain.Preferences{PreferAcoustic: true},
			want: []string{
				"acoustic harvest neil young",
				"harvest acoustic neil young",
				"neil young harvest acoustic",
				"harvest by neil young",
				"harvest neil young",
				"neil young harvest",
				"neil young",
			},
		},
		{
			name:   "stop word variant and album fallback",
			title:  "fixing her hair",
			artist: "ani difranco",
			want: []string{
				"fixing her hair by ani difranco",
				"fixing her hair ani difranco",
				"ani difranco fixing her hair",
				"fixing hair by ani difranco",
				"fixing hair ani difranco",
				"ani difranco fixing hair",
				"imperfectly",
				"ani difranco",
			},
		},
		{
			name:  "album fallback applies without artist",
			title: "fixing her hair",
			want:  []string{"fixing her hair", "fixing hair", "imperfectly"},
		},
		{
			name:   "two word title has no stop word variant",
			title:  "the boxer",
			artist: "simon & garfunkel",
			want: []string{
				"the boxer by simon & garfunkel",
				"the boxer simon & garfunkel",
				"simon & garfunkel the boxer",
				"simon & garfunkel",
			},
		},
		{
			name:  "all stop words keeps single variant",
			title: "the a an",
			want:  []string{"the a an"},
		},
		{
			name:   "input is lower-cased and collapsed",
			title:  "  Harvest  ",
			artist: "Neil   Young",
			want:   []string{"harvest by neil young", "harvest neil young", "neil young harvest", "neil young"},
		},
		{
			name: "empty title",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.title, tt.artist, tt.prefs))
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	prefs := domain.Preferences{PreferLive: true, PreferStudio: true}
	first := Generate("heart of gold", "neil young", prefs)
	second := Generate("heart of gold", "neil young", prefs)
	assert.Equal(t, first, second)
}

func TestGeneratePreferenceBlockPrecedesBase(t *testing.T) {
	got := Generate("fixing her hair", "ani difranco", domain.Preferences{PreferLive: true})

	require.Len(t, got, 14)
	assert.Equal(t, "live fixing her hair ani difranco", got[0])
	assert.Equal(t, "live fixing hair ani difranco", got[3])
	assert.Equal(t, "fixing her hair by ani difranco", got[6])
}

func TestGeneratorCustomFallbacks(t *testing.T) {
	g := NewGenerator([]AlbumFallback{
		{TitleContains: []string{"heart", "gold"}, Query: "Harvest"},
		{TitleContains: nil, Query: "ignored"},
	})

	got := g.Generate("heart of gold", "", domain.Preferences{})
	assert.Equal(t, []string{"heart of gold", "harvest"}, got)
}

func TestGeneratorZeroValueHasNoFallbacks(t *testing.T) {
	var g Generator
	assert.Equal(t, []string{"fixing her hair", "fixing hair"}, g.Generate("fixing her hair", "", domain.Preferences{}))
}
