package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
	th "github.com/desertthunder/genify/internal/testing"
)

type memoryRecorder struct {
	lookups []*models.Lookup
	err     error
}

func (r *memoryRecorder) Create(lookup *models.Lookup) error {
	if r.err != nil {
		return r.err
	}
	lookup.SetID(fmt.Sprintf("lookup-%d", len(r.lookups)+1))
	r.lookups = append(r.lookups, lookup)
	return nil
}

func newTestEngine(svc *th.MockService, rec LookupRecorder) *PlaylistEngine {
	return NewPlaylistEngine(svc, EngineOpts{
		Recorder: rec,
		Logger:   log.New(io.Discard),
		Rand:     rand.New(rand.NewSource(1)),
	})
}

func TestPlaylistEngine_Analyze(t *testing.T) {
	ctx := context.Background()
	url := "https://open.spotify.com/playlist/" + th.MockPlaylistID + "?si=abc"

	t.Run("Success", func(t *testing.T) {
		svc := th.NewMockService()
		engine := newTestEngine(svc, nil)

		res, err := engine.Analyze(ctx, url, AnalyzeOpts{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if res.Playlist.ID != th.MockPlaylistID || res.Playlist.TrackCount != 5 {
			t.Errorf("unexpected playlist %+v", res.Playlist)
		}
		if res.Tally.Total() != 5 || res.Tally.Len() != 3 {
			t.Errorf("expected 5 tracks from 3 contributors, got %d from %d", res.Tally.Total(), res.Tally.Len())
		}
		if res.Profile.Sampled != 4 {
			t.Errorf("expected 4 sampled tracks, got %d", res.Profile.Sampled)
		}
		if len(res.Ranked) != 4 {
			t.Errorf("expected 4 ranked tracks, got %d", len(res.Ranked))
		}

		var got []string
		for _, r := range res.Recommendations {
			got = append(got, r.ID)
		}
		if !slices.Equal(got, []string{"r1", "r2", "r3"}) {
			t.Errorf("expected playlist track t1 filtered out, got %v", got)
		}
		if res.LookupID != "" {
			t.Errorf("expected no lookup ID without a recorder, got %q", res.LookupID)
		}
	})

	t.Run("Request Seeds And Targets", func(t *testing.T) {
		svc := th.NewMockService()
		engine := newTestEngine(svc, nil)

		if _, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		reqs := svc.Requests()
		if len(reqs) != 1 {
			t.Fatalf("expected 1 recommendation request, got %d", len(reqs))
		}
		req := reqs[0]

		if len(req.SeedTracks) != 2 || len(req.SeedArtists) != 2 || len(req.SeedGenres) != 1 {
			t.Errorf("expected 2/2/1 seeds, got %v %v %v", req.SeedTracks, req.SeedArtists, req.SeedGenres)
		}
		if req.SeedTracks[0] == req.SeedTracks[1] || req.SeedArtists[0] == req.SeedArtists[1] {
			t.Error("seeds should be distinct")
		}
		if !slices.Contains(svc.Genres, req.SeedGenres[0]) {
			t.Errorf("genre seed %q not from the genre list", req.SeedGenres[0])
		}

		if len(req.Targets) != 3 {
			t.Errorf("expected targets for the 3 weighted features, got %v", req.Targets)
		}
		for _, f := range []models.Feature{models.Danceability, models.Energy, models.Valence} {
			if _, ok := req.Targets[f]; !ok {
				t.Errorf("missing target for %s", f)
			}
		}
		if req.Limit != 10 {
			t.Errorf("expected limit of suggestions plus known tracks (10), got %d", req.Limit)
		}
	})

	t.Run("Seeds Capped At Five", func(t *testing.T) {
		svc := th.NewMockService()
		engine := newTestEngine(svc, nil)

		opts := AnalyzeOpts{SeedTracks: 4, SeedArtists: 3, SeedGenres: 1}
		res, err := engine.Analyze(ctx, th.MockPlaylistID, opts, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := res.Request
		if req.SeedCount() != 5 {
			t.Fatalf("expected 5 seeds, got %d", req.SeedCount())
		}
		if len(req.SeedTracks) != 4 || len(req.SeedArtists) != 1 || len(req.SeedGenres) != 0 {
			t.Errorf("expected genres then artists trimmed, got %d/%d/%d",
				len(req.SeedTracks), len(req.SeedArtists), len(req.SeedGenres))
		}
	})

	t.Run("Suggestions Truncated", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)

		res, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{Suggestions: 2}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Recommendations) != 2 {
			t.Errorf("expected 2 suggestions, got %d", len(res.Recommendations))
		}
	})

	t.Run("Custom Weights", func(t *testing.T) {
		svc := th.NewMockService()
		engine := newTestEngine(svc, nil)

		weights := models.FeatureWeights{models.Tempo: 2, models.Energy: 1}
		res, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{Weights: weights}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, ok := res.Request.Targets[models.Tempo]; !ok {
			t.Error("expected tempo target")
		}
		if _, ok := res.Request.Targets[models.Danceability]; ok {
			t.Error("unweighted danceability should not be targeted")
		}
		if res.Profile.Influence[models.Tempo] <= res.Profile.Influence[models.Energy] {
			t.Error("tempo should carry more influence than energy")
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name      string
			input     string
			opts      AnalyzeOpts
			setup     func(*th.MockService)
			want      error
			wantCalls bool
		}{
			{
				name:  "invalid url",
				input: "https://example.com/not-a-playlist",
				want:  shared.ErrInvalidPlaylistURL,
			},
			{
				name:  "invalid weights",
				input: th.MockPlaylistID,
				opts:  AnalyzeOpts{Weights: models.FeatureWeights{models.Energy: -1}},
				want:  shared.ErrInvalidWeights,
			},
			{
				name:      "empty playlist",
				input:     th.MockPlaylistID,
				setup:     func(m *th.MockService) { m.Tracks = nil },
				want:      shared.ErrEmptyPlaylist,
				wantCalls: true,
			},
			{
				name:  "no valid tracks",
				input: th.MockPlaylistID,
				setup: func(m *th.MockService) {
					m.Tracks = []models.Track{{Name: "Local File", Contributor: "alice"}}
				},
				want:      shared.ErrNoValidTracks,
				wantCalls: true,
			},
			{
				name:      "no audio features",
				input:     th.MockPlaylistID,
				setup:     func(m *th.MockService) { m.Features = nil },
				want:      shared.ErrNoAudioFeatures,
				wantCalls: true,
			},
			{
				name:  "playlist not found",
				input: th.MockPlaylistID,
				setup: func(m *th.MockService) {
					m.PlaylistErr = fmt.Errorf("%w: get playlist: 404", shared.ErrPlaylistNotFound)
				},
				want:      shared.ErrPlaylistNotFound,
				wantCalls: true,
			},
			{
				name:  "rate limited",
				input: th.MockPlaylistID,
				setup: func(m *th.MockService) {
					m.RecommendationsErr = fmt.Errorf("%w: get recommendations", shared.ErrRateLimited)
				},
				want:      shared.ErrRateLimited,
				wantCalls: true,
			},
			{
				name:  "genre seeds failure",
				input: th.MockPlaylistID,
				setup: func(m *th.MockService) {
					m.GenresErr = fmt.Errorf("%w: get genre seeds", shared.ErrAuthFailed)
				},
				want:      shared.ErrAuthFailed,
				wantCalls: true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := th.NewMockService()
				if tt.setup != nil {
					tt.setup(svc)
				}
				engine := newTestEngine(svc, nil)

				res, err := engine.Analyze(ctx, tt.input, tt.opts, nil)
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
				if res != nil {
					t.Error("expected nil result on error")
				}
				if !tt.wantCalls && svc.Calls() != 0 {
					t.Errorf("expected no upstream calls, got %d", svc.Calls())
				}
			})
		}
	})

	t.Run("Nil Service", func(t *testing.T) {
		engine := NewPlaylistEngine(nil, EngineOpts{Logger: log.New(io.Discard)})
		if _, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{}, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Records Lookup", func(t *testing.T) {
		rec := &memoryRecorder{}
		engine := newTestEngine(th.NewMockService(), rec)

		res, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(rec.lookups) != 1 {
			t.Fatalf("expected 1 recorded lookup, got %d", len(rec.lookups))
		}
		l := rec.lookups[0]
		if l.PlaylistID != th.MockPlaylistID || l.TrackCount != 5 || l.ContributorCount != 3 {
			t.Errorf("unexpected lookup %+v", l)
		}
		if len(l.Recommendations) != len(res.Recommendations) {
			t.Errorf("expected %d recommendation IDs, got %d", len(res.Recommendations), len(l.Recommendations))
		}
		if res.LookupID != "lookup-1" {
			t.Errorf("expected lookup ID on result, got %q", res.LookupID)
		}
	})

	t.Run("Recorder Failure Is Not Surfaced", func(t *testing.T) {
		rec := &memoryRecorder{err: errors.New("disk full")}
		engine := newTestEngine(th.NewMockService(), rec)

		res, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{}, nil)
		if err != nil {
			t.Fatalf("expected lookup to succeed, got %v", err)
		}
		if res.LookupID != "" {
			t.Errorf("expected empty lookup ID, got %q", res.LookupID)
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), &memoryRecorder{})
		progress := make(chan ProgressUpdate, 20)

		if _, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{}, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
			if u.Message == "" {
				t.Errorf("empty message for phase %s", u.Phase)
			}
		}

		want := []Phase{FetchPlaylist, FetchTracks, FetchFeatures, ScoreTracks, FetchRecommendations, TallyContributors, RecordLookup}
		if !slices.Equal(phases, want) {
			t.Errorf("expected phases %v, got %v", want, phases)
		}
	})

	t.Run("Progress Never Blocks", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)
		progress := make(chan ProgressUpdate)

		if _, err := engine.Analyze(ctx, th.MockPlaylistID, AnalyzeOpts{}, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPlaylistEngine_Tally(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := th.NewMockService()
		engine := newTestEngine(svc, nil)

		res, err := engine.Tally(ctx, "spotify:playlist:"+th.MockPlaylistID, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if res.Playlist.Name != "Road Trip" {
			t.Errorf("unexpected playlist name %q", res.Playlist.Name)
		}
		entries := res.Tally.Entries()
		if len(entries) != 3 {
			t.Fatalf("expected 3 contributors, got %d", len(entries))
		}
		if entries[0].Contributor != "alice" || entries[0].Count != 2 || entries[0].Name != "Alice" {
			t.Errorf("unexpected top contributor %+v", entries[0])
		}
		if entries[1].Contributor != "bob" || entries[1].Count != 2 {
			t.Errorf("expected bob's local file counted, got %+v", entries[1])
		}
		if len(svc.Requests()) != 0 {
			t.Error("tally should not request recommendations")
		}
	})

	t.Run("Empty Playlist", func(t *testing.T) {
		svc := th.NewMockService()
		svc.Tracks = nil
		engine := newTestEngine(svc, nil)

		if _, err := engine.Tally(ctx, th.MockPlaylistID, nil); !errors.Is(err, shared.ErrEmptyPlaylist) {
			t.Errorf("expected ErrEmptyPlaylist, got %v", err)
		}
	})

	t.Run("Invalid Input", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)

		if _, err := engine.Tally(ctx, "", nil); !errors.Is(err, shared.ErrInvalidPlaylistURL) {
			t.Errorf("expected ErrInvalidPlaylistURL, got %v", err)
		}
	})
}

func TestPlaylistEngine_AnalyzeMany(t *testing.T) {
	t.Run("Mixed Results Keep Input Order", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)
		inputs := []string{th.MockPlaylistID, "bogus", "spotify:playlist:" + th.MockPlaylistID}

		res, err := engine.AnalyzeMany(context.Background(), inputs, BatchOpts{NumWorkers: 2, RateLimit: 1000}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if res.Succeeded != 2 || res.Failed != 1 {
			t.Errorf("expected 2 succeeded and 1 failed, got %d/%d", res.Succeeded, res.Failed)
		}
		for i, item := range res.Items {
			if item.Input != inputs[i] {
				t.Errorf("item %d input = %q, want %q", i, item.Input, inputs[i])
			}
		}
		if !errors.Is(res.Items[1].Err, shared.ErrInvalidPlaylistURL) {
			t.Errorf("expected ErrInvalidPlaylistURL for bogus input, got %v", res.Items[1].Err)
		}
		if res.Items[0].Result == nil || res.Items[2].Result == nil {
			t.Error("expected results for valid inputs")
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)

		res, err := engine.AnalyzeMany(context.Background(), nil, BatchOpts{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Items) != 0 {
			t.Errorf("expected no items, got %d", len(res.Items))
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := engine.AnalyzeMany(ctx, []string{th.MockPlaylistID, th.MockPlaylistID}, BatchOpts{}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if res.Failed != 2 {
			t.Errorf("expected both items failed, got %d", res.Failed)
		}
		for _, item := range res.Items {
			if !errors.Is(item.Err, context.Canceled) {
				t.Errorf("expected item error context.Canceled, got %v", item.Err)
			}
		}
	})

	t.Run("Progress", func(t *testing.T) {
		engine := newTestEngine(th.NewMockService(), nil)
		progress := make(chan ProgressUpdate, 10)

		if _, err := engine.AnalyzeMany(context.Background(), []string{th.MockPlaylistID}, BatchOpts{RateLimit: 1000}, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var updates []ProgressUpdate
		for u := range progress {
			updates = append(updates, u)
		}
		if len(updates) != 2 {
			t.Fatalf("expected queued and completed updates, got %d", len(updates))
		}
		if updates[1].Phase != BatchAnalyze || updates[1].Step != 1 || updates[1].Total != 1 {
			t.Errorf("unexpected completion update %+v", updates[1])
		}
	})
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	items := []string{"a", "b", "c", "d"}

	tests := []struct {
		name string
		k    int
		want int
	}{
		{name: "zero", k: 0, want: 0},
		{name: "subset", k: 2, want: 2},
		{name: "more than available", k: 9, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sample(rng, items, tt.k)
			if len(got) != tt.want {
				t.Fatalf("expected %d items, got %d", tt.want, len(got))
			}
			seen := map[string]bool{}
			for _, s := range got {
				if seen[s] {
					t.Errorf("duplicate %q", s)
				}
				seen[s] = true
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	for _, p := range []Phase{FetchPlaylist, FetchTracks, FetchFeatures, ScoreTracks, FetchRecommendations, TallyContributors, RecordLookup, BatchAnalyze} {
		if p.String() == "" {
			t.Errorf("phase %d has no name", p)
		}
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should have empty name")
	}
}
