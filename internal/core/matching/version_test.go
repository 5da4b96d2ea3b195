package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name  string
		title string
		album string
		want  domain.Version
	}{
		{name: "studio", title: "Harvest", album: "Harvest", want: domain.Version{}},
		{name: "live album", title: "Harvest", album: "Live at Massey Hall 1971", want: domain.Version{Live: true}},
		{name: "concert in title", title: "Harvest (Concert Version)", album: "", want: domain.Version{Live: true}},
		{name: "artists den", title: "Song", album: "Live from the Artists Den", want: domain.Version{Live: true}},
		{name: "unplugged", title: "Song", album: "MTV Unplugged", want: domain.Version{Acoustic: true}},
		{name: "stripped", title: "Song (Stripped)", album: "", want: domain.Version{Acoustic: true}},
		{name: "both flags", title: "Song (Live Acoustic)", album: "", want: domain.Version{Live: true, Acoustic: true}},
		{name: "alive is not live", title: "Alive", album: "Ten", want: domain.Version{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectVersion(tt.title, tt.album))
		})
	}
}
