// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/services"
)

// MockPlaylistID is a syntactically valid playlist ID served by [NewMockService].
const MockPlaylistID = "37i9dQZF1DXcBWIGoYBM5M"

// MockService is a test double for [services.Service].
//
// Each *Err field, when set, is returned by the matching method.
type MockService struct {
	PlaylistInfo *models.Playlist
	Tracks       []models.Track
	Features     map[string]models.FeatureVector
	Genres       []string
	Recs         []models.Recommendation

	PlaylistErr        error
	TracksErr          error
	FeaturesErr        error
	GenresErr          error
	RecommendationsErr error

	mu       sync.Mutex
	requests []services.RecommendationRequest
	calls    int
}

var _ services.Service = (*MockService)(nil)

// NewMockService returns a mock holding a five-track playlist from three contributors.
//
// One recommendation ("t1") is already in the playlist and one item ("Voice Memo") has no track ID.
func NewMockService() *MockService {
	tracks := []models.Track{
		{ID: "t1", Name: "Alpha", Artists: []string{"Ana"}, ArtistIDs: []string{"ar1"}, Contributor: "alice", ContributorName: "Alice"},
		{ID: "t2", Name: "Bravo", Artists: []string{"Ben"}, ArtistIDs: []string{"ar2"}, Contributor: "bob"},
		{ID: "t3", Name: "Charlie", Artists: []string{"Ana", "Cy"}, ArtistIDs: []string{"ar1", "ar3"}, Contributor: "alice", ContributorName: "Alice"},
		{ID: "t4", Name: "Delta", Artists: []string{"Dee"}, ArtistIDs: []string{"ar4"}, Contributor: "carol"},
		{Name: "Voice Memo", Contributor: "bob"},
	}

	return &MockService{
		PlaylistInfo: &models.Playlist{ID: MockPlaylistID, Name: "Road Trip", Owner: "Alice"},
		Tracks:       tracks,
		Features: map[string]models.FeatureVector{
			"t1": {models.Danceability: 0.8, models.Energy: 0.7, models.Valence: 0.6, models.Tempo: 120, models.Loudness: -5},
			"t2": {models.Danceability: 0.6, models.Energy: 0.9, models.Valence: 0.3, models.Tempo: 140, models.Loudness: -4},
			"t3": {models.Danceability: 0.7, models.Energy: 0.5, models.Valence: 0.8, models.Tempo: 100, models.Loudness: -8},
			"t4": {models.Danceability: 0.3, models.Energy: 0.2, models.Valence: 0.1, models.Tempo: 70, models.Loudness: -20},
		},
		Genres: []string{"indie", "pop", "rock"},
		Recs: []models.Recommendation{
			{ID: "t1", Name: "Alpha", Artists: []string{"Ana"}, URL: "https://open.spotify.com/track/t1"},
			{ID: "r1", Name: "Echo", Artists: []string{"Eve"}, URL: "https://open.spotify.com/track/r1"},
			{ID: "r2", Name: "Foxtrot", Artists: []string{"Fay", "Gus"}, URL: "https://open.spotify.com/track/r2"},
			{ID: "r3", Name: "Golf", Artists: []string{"Hal"}, URL: "https://open.spotify.com/track/r3"},
		},
	}
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	m.record(nil)
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	if m.PlaylistInfo == nil {
		return &models.Playlist{ID: playlistID}, nil
	}
	p := *m.PlaylistInfo
	p.ID = playlistID
	return &p, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	m.record(nil)
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return append([]models.Track(nil), m.Tracks...), nil
}

func (m *MockService) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]models.FeatureVector, error) {
	m.record(nil)
	if m.FeaturesErr != nil {
		return nil, m.FeaturesErr
	}
	out := make(map[string]models.FeatureVector, len(trackIDs))
	for _, id := range trackIDs {
		if fv, ok := m.Features[id]; ok {
			out[id] = fv
		}
	}
	return out, nil
}

func (m *MockService) GenreSeeds(ctx context.Context) ([]string, error) {
	m.record(nil)
	if m.GenresErr != nil {
		return nil, m.GenresErr
	}
	return m.Genres, nil
}

// Recommendations returns up to req.Limit of the configured recommendations.
func (m *MockService) Recommendations(ctx context.Context, req services.RecommendationRequest) ([]models.Recommendation, error) {
	m.record(&req)
	if m.RecommendationsErr != nil {
		return nil, m.RecommendationsErr
	}
	if req.SeedCount() == 0 || req.SeedCount() > services.MaxSeeds {
		return nil, fmt.Errorf("mock: bad seed count %d", req.SeedCount())
	}
	recs := m.Recs
	if req.Limit > 0 && req.Limit < len(recs) {
		recs = recs[:req.Limit]
	}
	return append([]models.Recommendation(nil), recs...), nil
}

func (m *MockService) record(req *services.RecommendationRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if req != nil {
		m.requests = append(m.requests, *req)
	}
}

// Requests returns every recommendation request received so far.
func (m *MockService) Requests() []services.RecommendationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.RecommendationRequest(nil), m.requests...)
}

// Calls returns the number of service calls made.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
