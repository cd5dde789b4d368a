// Spotify Web API implementation of [Service]
//
// Uses client-credentials auth; no user authorization is involved.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	pageSize          = 100
	audioFeatureBatch = 100
)

// SpotifyOpts configures [NewSpotifyService].
type SpotifyOpts struct {
	Config *shared.Config
	Logger *log.Logger
	// BaseURL and TokenURL override the Spotify endpoints, for tests.
	BaseURL  string
	TokenURL string
}

// SpotifyService implements [Service] on top of the zmb3/spotify client.
type SpotifyService struct {
	client *spotify.Client
	logger *log.Logger
	market string
}

// NewSpotifyService builds an authenticated client from explicit configuration.
//
// Requests go through a retryablehttp transport whose retry budget comes from spotify.max_retries; with the
// default of zero every upstream failure is returned to the caller as-is.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: config is required", shared.ErrMissingConfig)
	}
	creds := opts.Config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	logger := shared.WithLogger(opts.Logger, "service", "spotify")

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	base := newRetryClient(opts.Config.Spotify, logger)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	cc := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
	}

	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}

	return &SpotifyService{
		client: spotify.New(cc.Client(ctx), clientOpts...),
		logger: logger,
		market: opts.Config.Spotify.Market,
	}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Playlist retrieves playlist metadata.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	fp, err := s.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, mapError("get playlist", err, shared.ErrPlaylistNotFound)
	}

	return &models.Playlist{
		ID:          fp.ID.String(),
		Name:        fp.Name,
		Description: fp.Description,
		Owner:       ownerName(fp.Owner),
	}, nil
}

// PlaylistTracks pages through every playlist item, 100 at a time.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track

	for offset := 0; ; offset += pageSize {
		page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageSize), spotify.Offset(offset))
		if err != nil {
			return nil, mapError("get playlist items", err, shared.ErrPlaylistNotFound)
		}

		for _, item := range page.Items {
			tracks = append(tracks, trackFromItem(item))
		}

		s.logger.Debug("fetched playlist page", "playlist", playlistID, "offset", offset, "items", len(page.Items), "total", page.Total)

		if len(page.Items) == 0 || offset+len(page.Items) >= int(page.Total) {
			break
		}
	}

	return tracks, nil
}

// AudioFeatures fetches features in batches of 100 IDs.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]models.FeatureVector, error) {
	out := make(map[string]models.FeatureVector, len(trackIDs))

	for start := 0; start < len(trackIDs); start += audioFeatureBatch {
		end := min(start+audioFeatureBatch, len(trackIDs))
		ids := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			ids = append(ids, spotify.ID(id))
		}

		features, err := s.client.GetAudioFeatures(ctx, ids...)
		if err != nil {
			return nil, mapError("get audio features", err, shared.ErrAPIRequest)
		}

		for _, af := range features {
			if af == nil {
				continue
			}
			out[af.ID.String()] = featureVector(af)
		}
	}

	return out, nil
}

// GenreSeeds lists the available recommendation genres.
func (s *SpotifyService) GenreSeeds(ctx context.Context) ([]string, error) {
	genres, err := s.client.GetAvailableGenreSeeds(ctx)
	if err != nil {
		return nil, mapError("get genre seeds", err, shared.ErrAPIRequest)
	}
	return genres, nil
}

// Recommendations calls the recommendations endpoint with seeds and target attributes.
func (s *SpotifyService) Recommendations(ctx context.Context, req RecommendationRequest) ([]models.Recommendation, error) {
	if req.SeedCount() == 0 {
		return nil, fmt.Errorf("%w: at least one seed is required", shared.ErrInvalidArgument)
	}
	if req.SeedCount() > MaxSeeds {
		return nil, fmt.Errorf("%w: at most %d seeds are allowed, got %d", shared.ErrInvalidArgument, MaxSeeds, req.SeedCount())
	}

	seeds := spotify.Seeds{Genres: req.SeedGenres}
	for _, id := range req.SeedTracks {
		seeds.Tracks = append(seeds.Tracks, spotify.ID(id))
	}
	for _, id := range req.SeedArtists {
		seeds.Artists = append(seeds.Artists, spotify.ID(id))
	}

	var reqOpts []spotify.RequestOption
	if req.Limit > 0 {
		reqOpts = append(reqOpts, spotify.Limit(req.Limit))
	}
	market := req.Market
	if market == "" {
		market = s.market
	}
	if market != "" {
		reqOpts = append(reqOpts, spotify.Market(market))
	}

	recs, err := s.client.GetRecommendations(ctx, seeds, trackAttributes(req.Targets), reqOpts...)
	if err != nil {
		return nil, mapError("get recommendations", err, shared.ErrAPIRequest)
	}

	out := make([]models.Recommendation, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		out = append(out, models.Recommendation{
			ID:      t.ID.String(),
			Name:    t.Name,
			Artists: artistNames(t.Artists),
			URL:     t.ExternalURLs["spotify"],
		})
	}
	return out, nil
}

func trackFromItem(item spotify.PlaylistItem) models.Track {
	t := models.Track{
		Contributor:     item.AddedBy.ID,
		ContributorName: item.AddedBy.DisplayName,
	}

	if ft := item.Track.Track; ft != nil {
		// Local files come back with an empty ID and stay unscored.
		t.ID = ft.ID.String()
		t.Name = ft.Name
		t.URI = string(ft.URI)
		t.Artists = artistNames(ft.Artists)
		for _, a := range ft.Artists {
			if a.ID != "" {
				t.ArtistIDs = append(t.ArtistIDs, a.ID.String())
			}
		}
	}

	return t
}

func featureVector(af *spotify.AudioFeatures) models.FeatureVector {
	return models.FeatureVector{
		models.Danceability:     float64(af.Danceability),
		models.Energy:           float64(af.Energy),
		models.Valence:          float64(af.Valence),
		models.Acousticness:     float64(af.Acousticness),
		models.Instrumentalness: float64(af.Instrumentalness),
		models.Liveness:         float64(af.Liveness),
		models.Speechiness:      float64(af.Speechiness),
		models.Tempo:            float64(af.Tempo),
		models.Loudness:         float64(af.Loudness),
	}
}

func trackAttributes(targets models.FeatureVector) *spotify.TrackAttributes {
	if len(targets) == 0 {
		return nil
	}

	ta := spotify.NewTrackAttributes()
	for f, v := range targets {
		switch f {
		case models.Danceability:
			ta = ta.TargetDanceability(v)
		case models.Energy:
			ta = ta.TargetEnergy(v)
		case models.Valence:
			ta = ta.TargetValence(v)
		case models.Acousticness:
			ta = ta.TargetAcousticness(v)
		case models.Instrumentalness:
			ta = ta.TargetInstrumentalness(v)
		case models.Liveness:
			ta = ta.TargetLiveness(v)
		case models.Speechiness:
			ta = ta.TargetSpeechiness(v)
		case models.Tempo:
			ta = ta.TargetTempo(v)
		case models.Loudness:
			ta = ta.TargetLoudness(v)
		}
	}
	return ta
}

func artistNames(artists []spotify.SimpleArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

func ownerName(u spotify.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// mapError translates client and token errors into shared sentinels. notFound is used for 404 responses.
func mapError(op string, err error, notFound error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, op, retrieveErr)
	}

	status := 0
	var spErr spotify.Error
	if errors.As(err, &spErr) {
		status = spErr.Status
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, op, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s: %v", notFound, op, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: %v", shared.ErrRateLimited, op, err)
	case 0:
		return fmt.Errorf("%w: %s: %v", shared.ErrServiceUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
	}
}
