package spotify

import (
	"fmt"
	"strings"
)

// Listing fields are separated by '-', so hyphens inside names are swapped
// for an en dash to keep the columns intact.
var fieldReplacer = strings.NewReplacer("-", "–", "\n", " ", "\r", " ", "\t", " ")

func formatListing(tracks []spotifyTrack) string {
	var b strings.Builder
	for i, tr := range tracks {
		fmt.Fprintf(&b, "%d. %s-%s-%s\n",
			i+1,
			cleanField(tr.Name),
			cleanField(joinArtistNames(tr)),
			cleanField(tr.Album.Name),
		)
	}
	return b.String()
}

func cleanField(s string) string {
	cleaned := strings.Join(strings.Fields(fieldReplacer.Replace(s)), " ")
	if cleaned == "" {
		return "Unknown"
	}
	return cleaned
}

func joinArtistNames(track spotifyTrack) string {
	parts := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		if name := strings.TrimSpace(artist.Name); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
