// package tasks implements the playlist analysis pipeline.
//
// The core abstraction is PlaylistEngine, which turns a playlist reference into a target profile, ranked
// tracks, recommendations and a contributor tally. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/scorer"
	"github.com/desertthunder/genify/internal/services"
	"github.com/desertthunder/genify/internal/shared"
)

// maxRecommendationLimit is the largest page the recommendations endpoint accepts.
const maxRecommendationLimit = 100

// AnalyzeOpts tunes a single analysis.
type AnalyzeOpts struct {
	Weights     models.FeatureWeights // Feature weights; defaults apply when empty
	Suggestions int                   // Number of new tracks to return
	SeedTracks  int                   // Random playlist tracks used as seeds
	SeedArtists int                   // Random distinct first artists used as seeds
	SeedGenres  int                   // Random genres used as seeds
	Market      string                // Optional ISO market code
}

// OptsFromConfig builds [AnalyzeOpts] from the recommendations and weights config sections.
func OptsFromConfig(cfg *shared.Config) (AnalyzeOpts, error) {
	weights, err := models.WeightsFromMap(cfg.Weights)
	if err != nil {
		return AnalyzeOpts{}, err
	}
	return AnalyzeOpts{
		Weights:     weights,
		Suggestions: cfg.Recommendations.Suggestions,
		SeedTracks:  cfg.Recommendations.SeedTracks,
		SeedArtists: cfg.Recommendations.SeedArtists,
		SeedGenres:  cfg.Recommendations.SeedGenres,
		Market:      cfg.Spotify.Market,
	}, nil
}

func (o AnalyzeOpts) withDefaults() AnalyzeOpts {
	if len(o.Weights) == 0 {
		o.Weights = models.DefaultWeights()
	}
	if o.Suggestions <= 0 {
		o.Suggestions = 6
	}
	if o.SeedTracks == 0 && o.SeedArtists == 0 && o.SeedGenres == 0 {
		o.SeedTracks, o.SeedArtists, o.SeedGenres = 2, 2, 1
	}
	return o
}

// AnalysisResult contains everything produced by one lookup.
type AnalysisResult struct {
	Playlist        *models.Playlist               // Playlist metadata; TrackCount is the number of items
	Tracks          []models.Track                 // Every playlist item, with features attached where available
	Weights         models.FeatureWeights          // Weights the profile was computed with
	Profile         *scorer.TargetProfile          // Similarity-weighted target profile
	Ranked          []scorer.TrackScore            // Tracks ordered by similarity to the profile
	Tally           *scorer.ContributorTally       // Tracks per contributor
	Request         services.RecommendationRequest // Seeds and targets sent upstream
	Recommendations []models.Recommendation        // New tracks, none already in the playlist
	LookupID        string                         // History row ID; empty when history is disabled
}

// TallyResult is the outcome of a contributor-only lookup.
type TallyResult struct {
	Playlist *models.Playlist
	Tally    *scorer.ContributorTally
}

// Analyzer defines the operations exposed to the web, terminal and CLI front-ends.
type Analyzer interface {
	// Analyze runs the full lookup: fetch, score, seed, recommend, tally.
	Analyze(ctx context.Context, input string, opts AnalyzeOpts, progress chan<- ProgressUpdate) (*AnalysisResult, error)

	// Tally counts tracks per contributor without touching audio features or recommendations.
	Tally(ctx context.Context, input string, progress chan<- ProgressUpdate) (*TallyResult, error)
}

// LookupRecorder persists completed lookups.
type LookupRecorder interface {
	Create(lookup *models.Lookup) error
}

// EngineOpts configures [NewPlaylistEngine].
type EngineOpts struct {
	Recorder LookupRecorder // Optional; nil disables history
	Logger   *log.Logger
	Rand     *rand.Rand // Seed selection source; time-seeded when nil
}

// PlaylistEngine implements [Analyzer] on top of a [services.Service].
type PlaylistEngine struct {
	service  services.Service
	recorder LookupRecorder
	logger   *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Analyzer = (*PlaylistEngine)(nil)

// NewPlaylistEngine creates a new PlaylistEngine with the provided service.
func NewPlaylistEngine(service services.Service, opts EngineOpts) *PlaylistEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PlaylistEngine{
		service:  service,
		recorder: opts.Recorder,
		logger:   shared.WithLogger(opts.Logger, "component", "engine"),
		rng:      opts.Rand,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Analyze performs a full playlist lookup.
func (e *PlaylistEngine) Analyze(ctx context.Context, input string, opts AnalyzeOpts, progress chan<- ProgressUpdate) (*AnalysisResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	opts = opts.withDefaults()
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}

	playlist, tracks, err := e.fetch(ctx, input, progress)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Playlist: playlist,
		Weights:  opts.Weights,
		Tally:    scorer.TallyContributors(tracks),
	}

	ids := trackIDs(tracks)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %d items, none with a track ID", shared.ErrNoValidTracks, len(tracks))
	}

	e.sendProgress(progress, fetchFeaturesUpdate(len(ids)))
	features, err := e.service.AudioFeatures(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features returned for %d tracks", shared.ErrNoAudioFeatures, len(ids))
	}
	for i := range tracks {
		if fv, ok := features[tracks[i].ID]; ok {
			tracks[i].Features = fv
		}
	}
	result.Tracks = tracks

	profile, err := scorer.ComputeTargetProfile(tracks, opts.Weights)
	if err != nil {
		return nil, err
	}
	ranked, err := scorer.RankTracks(tracks, opts.Weights)
	if err != nil {
		return nil, err
	}
	result.Profile = profile
	result.Ranked = ranked
	e.sendProgress(progress, scoreTracksUpdate(profile.Sampled, len(tracks)))

	var genres []string
	if opts.SeedGenres > 0 {
		if genres, err = e.service.GenreSeeds(ctx); err != nil {
			return nil, err
		}
	}

	req := e.seedRequest(tracks, genres, opts)
	for f, v := range profile.Targets {
		if profile.Influence[f] > 0 {
			req.Targets[f] = v
		}
	}
	req.Limit = min(opts.Suggestions+len(ids), maxRecommendationLimit)
	result.Request = req

	e.sendProgress(progress, recommendationsUpdate(req.SeedCount()))
	recs, err := e.service.Recommendations(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Recommendations = filterKnown(recs, ids, opts.Suggestions)

	e.sendProgress(progress, tallyUpdate(result.Tally.Len()))

	e.logger.Info("analyzed playlist",
		"playlist", playlist.ID,
		"tracks", playlist.TrackCount,
		"sampled", profile.Sampled,
		"seeds", req.SeedCount(),
		"suggestions", len(result.Recommendations),
	)

	e.record(result, progress)
	return result, nil
}

// Tally fetches the playlist and counts tracks per contributor.
func (e *PlaylistEngine) Tally(ctx context.Context, input string, progress chan<- ProgressUpdate) (*TallyResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	playlist, tracks, err := e.fetch(ctx, input, progress)
	if err != nil {
		return nil, err
	}

	tally := scorer.TallyContributors(tracks)
	e.sendProgress(progress, tallyUpdate(tally.Len()))
	return &TallyResult{Playlist: playlist, Tally: tally}, nil
}

// fetch parses input and loads playlist metadata plus every item.
func (e *PlaylistEngine) fetch(ctx context.Context, input string, progress chan<- ProgressUpdate) (*models.Playlist, []models.Track, error) {
	id, err := shared.ExtractPlaylistID(input)
	if err != nil {
		return nil, nil, err
	}

	e.sendProgress(progress, fetchPlaylistUpdate(id))
	playlist, err := e.service.Playlist(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	tracks, err := e.service.PlaylistTracks(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	playlist.TrackCount = len(tracks)
	e.sendProgress(progress, foundPlaylistUpdate(playlist))

	if len(tracks) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrEmptyPlaylist, playlist.Name)
	}
	return playlist, tracks, nil
}

// seedRequest picks random seeds, never exceeding [services.MaxSeeds] in total.
//
// Genres are dropped first, then artists, when the configured counts add up to more than the cap.
func (e *PlaylistEngine) seedRequest(tracks []models.Track, genres []string, opts AnalyzeOpts) services.RecommendationRequest {
	var ids, artists []string
	seenTrack := map[string]bool{}
	seenArtist := map[string]bool{}
	for _, t := range tracks {
		if t.ID != "" && !seenTrack[t.ID] {
			seenTrack[t.ID] = true
			ids = append(ids, t.ID)
		}
		if len(t.ArtistIDs) > 0 && !seenArtist[t.ArtistIDs[0]] {
			seenArtist[t.ArtistIDs[0]] = true
			artists = append(artists, t.ArtistIDs[0])
		}
	}

	nTracks := min(opts.SeedTracks, len(ids))
	nArtists := min(opts.SeedArtists, len(artists))
	nGenres := min(opts.SeedGenres, len(genres))
	if nTracks+nArtists+nGenres == 0 && len(ids) > 0 {
		nTracks = 1
	}
	for nTracks+nArtists+nGenres > services.MaxSeeds {
		switch {
		case nGenres > 0:
			nGenres--
		case nArtists > 0:
			nArtists--
		default:
			nTracks--
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return services.RecommendationRequest{
		SeedTracks:  sample(e.rng, ids, nTracks),
		SeedArtists: sample(e.rng, artists, nArtists),
		SeedGenres:  sample(e.rng, genres, nGenres),
		Targets:     models.FeatureVector{},
		Market:      opts.Market,
	}
}

func (e *PlaylistEngine) record(result *AnalysisResult, progress chan<- ProgressUpdate) {
	if e.recorder == nil {
		return
	}

	recIDs := make([]string, 0, len(result.Recommendations))
	for _, r := range result.Recommendations {
		recIDs = append(recIDs, r.ID)
	}

	lookup := models.NewLookup(result.Playlist.ID, result.Playlist.Name, result.Playlist.TrackCount, result.Tally.Len(), recIDs)
	if err := e.recorder.Create(lookup); err != nil {
		e.logger.Warn("failed to record lookup", "playlist", result.Playlist.ID, "error", err)
		return
	}
	result.LookupID = lookup.ID()
	e.sendProgress(progress, recordLookupUpdate(lookup.ID()))
}

// sample returns k distinct random elements of s, or nil when k is zero.
func sample(r *rand.Rand, s []string, k int) []string {
	if k <= 0 || len(s) == 0 {
		return nil
	}
	out := make([]string, 0, k)
	for _, i := range r.Perm(len(s))[:min(k, len(s))] {
		out = append(out, s[i])
	}
	return out
}

func trackIDs(tracks []models.Track) []string {
	seen := map[string]bool{}
	var ids []string
	for _, t := range tracks {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	return ids
}

// filterKnown drops recommendations already in the playlist and truncates to limit.
func filterKnown(recs []models.Recommendation, known []string, limit int) []models.Recommendation {
	skip := make(map[string]bool, len(known))
	for _, id := range known {
		skip[id] = true
	}

	out := make([]models.Recommendation, 0, limit)
	for _, r := range recs {
		if skip[r.ID] {
			continue
		}
		skip[r.ID] = true
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}
