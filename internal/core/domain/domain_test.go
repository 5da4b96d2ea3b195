package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestPreferences_Active(t *testing.T) {
	tests := []struct {
		name      string
		prefs     Preferences
		want      Preference
		wantCount int
	}{
		{name: "none set", prefs: Preferences{}, want: PreferenceNone, wantCount: 0},
		{name: "studio only", prefs: Preferences{PreferStudio: true}, want: PreferenceStudio, wantCount: 1},
		{name: "acoustic beats studio", prefs: Preferences{PreferAcoustic: true, PreferStudio: true}, want: PreferenceAcoustic, wantCount: 2},
		{name: "live beats everything", prefs: Preferences{PreferLive: true, PreferAcoustic: true, PreferStudio: true}, want: PreferenceLive, wantCount: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.prefs.Active(); got != tc.want {
				t.Errorf("Active() = %q, want %q", got, tc.want)
			}
			if got := tc.prefs.Count(); got != tc.wantCount {
				t.Errorf("Count() = %d, want %d", got, tc.wantCount)
			}
		})
	}
}

func TestNewStructuredRequest(t *testing.T) {
	req := NewStructuredRequest("  Harvest   Moon ", "NEIL  Young", Preferences{PreferLive: true})

	if req.Title != "harvest moon" {
		t.Errorf("Title = %q, want %q", req.Title, "harvest moon")
	}
	if req.Artist != "neil young" {
		t.Errorf("Artist = %q, want %q", req.Artist, "neil young")
	}
	if req.Method != MethodStructured {
		t.Errorf("Method = %q, want %q", req.Method, MethodStructured)
	}
	if !req.HasArtist() || req.Ambiguous() {
		t.Errorf("HasArtist/Ambiguous = %v/%v, want true/false", req.HasArtist(), req.Ambiguous())
	}
	if !req.Preferences.PreferLive {
		t.Error("expected live preference to be kept")
	}
}

func TestVersion_Matches(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		pref    Preference
		want    bool
	}{
		{"studio matches studio", Version{}, PreferenceStudio, true},
		{"live does not match studio", Version{Live: true}, PreferenceStudio, false},
		{"live and acoustic matches acoustic", Version{Live: true, Acoustic: true}, PreferenceAcoustic, true},
		{"live and acoustic matches live", Version{Live: true, Acoustic: true}, PreferenceLive, true},
		{"no preference never matches", Version{}, PreferenceNone, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.version.Matches(tc.pref); got != tc.want {
				t.Errorf("Matches(%q) = %v, want %v", tc.pref, got, tc.want)
			}
		})
	}
}

func TestBatch_Find(t *testing.T) {
	b := Batch{Query: "harvest", Candidates: []SearchCandidate{
		{Position: 1, Title: "Harvest"},
		{Position: 3, Title: "Harvest Moon"},
	}}

	if b.Empty() {
		t.Fatal("expected non-empty batch")
	}
	if c, ok := b.Find(3); !ok || c.Title != "Harvest Moon" {
		t.Errorf("Find(3) = %+v, %v", c, ok)
	}
	if _, ok := b.Find(2); ok {
		t.Error("Find(2) should miss: positions are not indices")
	}
	if !(Batch{}).Empty() {
		t.Error("zero batch should be empty")
	}
}

func TestErrors_Is(t *testing.T) {
	cause := errors.New("exit status 1")

	tests := []struct {
		name   string
		err    error
		target error
		text   string
	}{
		{
			name:   "query exhausted lists queries",
			err:    &QueryExhaustedError{Queries: []string{"harvest", "neil young"}},
			target: ErrQueryExhausted,
			text:   `tried "harvest", "neil young"`,
		},
		{
			name:   "no viable match names the request",
			err:    &NoViableMatchError{Title: "harvest", Artist: "neil young"},
			target: ErrNoViableMatch,
			text:   `title "harvest" artist "neil young"`,
		},
		{
			name:   "catalog fatal wraps cause",
			err:    &CatalogFatalError{Query: "harvest", Err: cause},
			target: cause,
			text:   "exit status 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.target) {
				t.Errorf("errors.Is(%v, %v) = false", tc.err, tc.target)
			}
			if !strings.Contains(tc.err.Error(), tc.text) {
				t.Errorf("Error() = %q, want substring %q", tc.err.Error(), tc.text)
			}
		})
	}
}
