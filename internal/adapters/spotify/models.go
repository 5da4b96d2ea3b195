package spotify

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyTrack represents the Spotify API response for a track.
type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
}

type searchResponse struct {
	Tracks *struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
