package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/urfave/cli/v3"
)

type lookupView struct {
	ID               string    `json:"id"`
	Sequence         int       `json:"sequence"`
	PlaylistID       string    `json:"playlist_id"`
	PlaylistName     string    `json:"playlist_name"`
	TrackCount       int       `json:"track_count"`
	ContributorCount int       `json:"contributor_count"`
	Recommendations  []string  `json:"recommendations"`
	CreatedAt        time.Time `json:"created_at"`
}

func newLookupView(l *models.Lookup) lookupView {
	recs := l.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return lookupView{
		ID:               l.ID(),
		Sequence:         l.Sequence(),
		PlaylistID:       l.PlaylistID,
		PlaylistName:     l.PlaylistName,
		TrackCount:       l.TrackCount,
		ContributorCount: l.ContributorCount,
		Recommendations:  recs,
		CreatedAt:        l.CreatedAt(),
	}
}

// HistoryList prints recorded lookups, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if !r.config.History.Enabled {
		r.logger.Warn("history recording is disabled; showing previously recorded lookups only")
	}

	var playlistID string
	if p := cmd.String("playlist"); p != "" {
		id, err := shared.ExtractPlaylistID(p)
		if err != nil {
			return err
		}
		playlistID = id
	}

	repo, err := r.lookups()
	if err != nil {
		return err
	}

	lookups, err := repo.List(playlistID, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list lookups: %w", err)
	}

	if cmd.Bool("json") {
		views := make([]lookupView, len(lookups))
		for i, l := range lookups {
			views[i] = newLookupView(l)
		}
		return r.writeJSON(views, true)
	}

	if len(lookups) == 0 {
		return r.writePlain("No lookups recorded yet.\n")
	}
	for _, l := range lookups {
		r.writePlain("#%-4d %s  %-30s %4d tracks  %2d contributors  %2d suggestions\n",
			l.Sequence(), l.CreatedAt().Local().Format("2006-01-02 15:04"), l.PlaylistName,
			l.TrackCount, l.ContributorCount, len(l.Recommendations))
	}
	return nil
}

// HistoryShow prints one lookup, addressed by its UUID or its #sequence number.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("id")
	if key == "" {
		return fmt.Errorf("%w: lookup ID or number", shared.ErrMissingArgument)
	}

	repo, err := r.lookups()
	if err != nil {
		return err
	}

	var lookup *models.Lookup
	if seq, convErr := strconv.Atoi(key); convErr == nil {
		lookup, err = repo.GetBySequence(seq)
	} else {
		lookup, err = repo.Get(key)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: no lookup matches %q", shared.ErrNotFound, key)
	} else if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(newLookupView(lookup), true)
	}

	r.writePlain("Lookup #%d (%s)\n", lookup.Sequence(), lookup.ID())
	r.writePlain("Playlist: %s\n", lookup.PlaylistName)
	r.writePlain("URL: %s\n", shared.PlaylistURL(lookup.PlaylistID))
	r.writePlain("Recorded: %s\n", lookup.CreatedAt().Local().Format(time.RFC1123))
	r.writePlain("Tracks: %d, contributors: %d\n", lookup.TrackCount, lookup.ContributorCount)

	if len(lookup.Recommendations) == 0 {
		return r.writePlain("\nNo tracks were suggested.\n")
	}
	r.writePlain("\nSuggested tracks:\n")
	for i, id := range lookup.Recommendations {
		r.writePlain("%d. %s\n", i+1, shared.TrackURL(id))
	}
	return nil
}
