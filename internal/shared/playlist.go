package shared

import (
	"fmt"
	"net/url"
	"strings"
)

const playlistIDLength = 22

// ExtractPlaylistID returns the playlist ID from a Spotify playlist URL, URI, or bare ID.
//
// Accepted forms:
//   - https://open.spotify.com/playlist/{id}?si=...
//   - https://open.spotify.com/intl-de/playlist/{id}
//   - spotify:playlist:{id}
//   - {id} (22 base62 characters)
func ExtractPlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidPlaylistURL)
	}

	var id string
	switch {
	case strings.HasPrefix(input, "spotify:playlist:"):
		id = strings.TrimPrefix(input, "spotify:playlist:")
	case strings.Contains(input, "open.spotify.com/"):
		raw := input
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPlaylistURL, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, seg := range segments {
			if seg == "playlist" && i+1 < len(segments) {
				id = segments[i+1]
				break
			}
		}
	default:
		id = input
	}

	if !isPlaylistID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistURL, input)
	}
	return id, nil
}

// PlaylistURL returns the open.spotify.com URL for a playlist ID.
func PlaylistURL(id string) string {
	return "https://open.spotify.com/playlist/" + id
}

// TrackURL returns the open.spotify.com URL for a track ID.
func TrackURL(id string) string {
	return "https://open.spotify.com/track/" + id
}

func isPlaylistID(s string) bool {
	if len(s) != playlistIDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
