package parsing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTitle  string
		wantArtist string
		wantPrefs  domain.Preferences
		wantMethod domain.ParseMethod
	}{
		{
			name:       "possessive",
			input:      "ani difranco's fixing her hair",
			wantTitle:  "fixing her hair",
			wantArtist: "ani difranco",
			wantMethod: domain.MethodPossessive,
		},
		{
			name:       "curly apostrophe possessive",
			input:      "Neil Young’s Harvest Moon",
			wantTitle:  "harvest moon",
			wantArtist: "neil young",
			wantMethod: domain.MethodPossessive,
		},
		{
			name:       "contraction is not a possessive",
			input:      "Let's Dance by David Bowie",
			wantTitle:  "let's dance",
			wantArtist: "david bowie",
			wantMethod: domain.MethodBy,
		},
		{
			name:       "it's contraction with by",
			input:      "It's My Life by Bon Jovi",
			wantTitle:  "it's my life",
			wantArtist: "bon jovi",
			wantMethod: domain.MethodBy,
		},
		{
			name:       "curly contraction with by",
			input:      "What’s Going On by Marvin Gaye",
			wantTitle:  "what’s going on",
			wantArtist: "marvin gaye",
			wantMethod: domain.MethodBy,
		},
		{
			name:       "contraction alone is title only",
			input:      "Let's Dance",
			wantTitle:  "let's dance",
			wantMethod: domain.MethodTitleOnly,
		},
		{
			name:       "possessive with contraction in title",
			input:      "David Bowie's Let's Dance",
			wantTitle:  "let's dance",
			wantArtist: "david bowie",
			wantMethod: domain.MethodPossessive,
		},
		{
			name:       "live version with by",
			input:      "I want to hear a live version of harvest by neil young",
			wantTitle:  "harvest",
			wantArtist: "neil young",
			wantPrefs:  domain.Preferences{PreferLive: true},
			wantMethod: domain.MethodBy,
		},
		{
			name:       "play prefix",
			input:      "play harvest by neil young",
			wantTitle:  "harvest",
			wantArtist: "neil young",
			wantMethod: domain.MethodBy,
		},
		{
			name:       "concert version",
			input:      "play the concert version of heart of gold by neil young",
			wantTitle:  "heart of gold",
			wantArtist: "neil young",
			wantPrefs:  domain.Preferences{PreferLive: true},
			wantMethod: domain.MethodBy,
		},
		{
			name:       "acoustic version",
			input:      "find an acoustic version of layla by eric clapton",
			wantTitle:  "layla",
			wantArtist: "eric clapton",
			wantPrefs:  domain.Preferences{PreferAcoustic: true},
			wantMethod: domain.MethodBy,
		},
		{
			name:       "unplugged version",
			input:      "unplugged version of about a girl by nirvana",
			wantTitle:  "about a girl",
			wantArtist: "nirvana",
			wantPrefs:  domain.Preferences{PreferAcoustic: true},
			wantMethod: domain.MethodBy,
		},
		{
			name:       "studio recording",
			input:      "can you play the studio recording of harvest by neil young",
			wantTitle:  "harvest",
			wantArtist: "neil young",
			wantPrefs:  domain.Preferences{PreferStudio: true},
			wantMethod: domain.MethodBy,
		},
		{
			name:       "several preferences",
			input:      "live recording of the original version of harvest by neil young",
			wantTitle:  "harvest",
			wantArtist: "neil young",
			wantPrefs:  domain.Preferences{PreferLive: true, PreferStudio: true},
			wantMethod: domain.MethodBy,
		},
		{
			name:       "capitalised two word artist",
			input:      "Neil Young heart of gold",
			wantTitle:  "heart of gold",
			wantArtist: "neil young",
			wantMethod: domain.MethodHeuristic,
		},
		{
			name:       "capitalised three word artist",
			input:      "Crosby Stills Nash helplessly hoping",
			wantTitle:  "helplessly hoping",
			wantArtist: "crosby stills nash",
			wantMethod: domain.MethodHeuristic,
		},
		{
			name:       "capitalised four word run takes two",
			input:      "Neil Young Crazy Horse cortez the killer",
			wantTitle:  "crazy horse cortez the killer",
			wantArtist: "neil young",
			wantMethod: domain.MethodHeuristic,
		},
		{
			name:       "capitalised but too short",
			input:      "Neil Young Harvest",
			wantTitle:  "neil young harvest",
			wantMethod: domain.MethodTitleOnly,
		},
		{
			name:       "title only",
			input:      "comfortably numb",
			wantTitle:  "comfortably numb",
			wantMethod: domain.MethodTitleOnly,
		},
		{
			name:       "whitespace collapsed",
			input:      "  play   harvest   by  neil   young ",
			wantTitle:  "harvest",
			wantArtist: "neil young",
			wantMethod: domain.MethodBy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantArtist, got.Artist)
			assert.Equal(t, tt.wantPrefs, got.Preferences)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.input, got.Raw)
		})
	}
}

func TestParseRequestAmbiguous(t *testing.T) {
	got, err := ParseRequest("here comes the sun")
	require.NoError(t, err)
	assert.True(t, got.Ambiguous())
	assert.False(t, got.HasArtist())
}

func TestParseRequestEmpty(t *testing.T) {
	inputs := []string{"", "   ", "play ", "a live version of"}
	for _, in := range inputs {
		_, err := ParseRequest(in)
		assert.ErrorIs(t, err, domain.ErrEmptyRequest, "input %q", in)
	}
}

func TestRuleParserImplementsPort(t *testing.T) {
	got, err := NewRuleParser().Parse(context.Background(), "harvest by neil young")
	require.NoError(t, err)
	assert.Equal(t, "harvest", got.Title)
}
