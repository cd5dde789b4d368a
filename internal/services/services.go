// package services defines interface Service for reading playlists, audio features and recommendations from a
// music platform
package services

import (
	"context"

	"github.com/desertthunder/genify/internal/models"
)

// Service defines the read-only operations the playlist engine needs from a music platform.
type Service interface {
	// Playlist retrieves playlist metadata by ID.
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// PlaylistTracks retrieves every item in the playlist, following pagination.
	// Local files and episodes are returned without an ID.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// AudioFeatures fetches features for the given track IDs. Tracks the platform has no analysis for are
	// absent from the result.
	AudioFeatures(ctx context.Context, trackIDs []string) (map[string]models.FeatureVector, error)

	// GenreSeeds lists the genres accepted as recommendation seeds.
	GenreSeeds(ctx context.Context) ([]string, error)

	// Recommendations asks the platform for tracks similar to the request's seeds and targets.
	Recommendations(ctx context.Context, req RecommendationRequest) ([]models.Recommendation, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// MaxSeeds is the upper bound on combined track, artist and genre seeds per recommendation request.
const MaxSeeds = 5

// RecommendationRequest carries seeds and tunable targets for [Service.Recommendations].
type RecommendationRequest struct {
	SeedTracks  []string
	SeedArtists []string
	SeedGenres  []string
	Targets     models.FeatureVector
	Limit       int
	Market      string
}

// SeedCount returns the total number of seeds.
func (r RecommendationRequest) SeedCount() int {
	return len(r.SeedTracks) + len(r.SeedArtists) + len(r.SeedGenres)
}
