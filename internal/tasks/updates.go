package tasks

import (
	"fmt"

	"github.com/desertthunder/genify/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	FetchTracks
	FetchFeatures
	ScoreTracks
	FetchRecommendations
	TallyContributors
	RecordLookup
	BatchAnalyze
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case FetchFeatures:
		return "fetch_features"
	case ScoreTracks:
		return "score_tracks"
	case FetchRecommendations:
		return "fetch_recommendations"
	case TallyContributors:
		return "tally_contributors"
	case RecordLookup:
		return "record_lookup"
	case BatchAnalyze:
		return "batch_analyze"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func foundPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", pl.Name, pl.TrackCount),
		Data:    pl,
	}
}

func fetchFeaturesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Analyzing audio features for %d tracks...", count),
	}
}

func scoreTracksUpdate(sampled, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScoreTracks,
		Step:    sampled,
		Total:   total,
		Message: fmt.Sprintf("Scored %d of %d tracks", sampled, total),
	}
}

func recommendationsUpdate(seeds int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Getting song suggestions from %d seeds...", seeds),
	}
}

func tallyUpdate(contributors int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TallyContributors,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Analyzing contributor balance (%d contributors)...", contributors),
	}
}

func recordLookupUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordLookup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved lookup %s", id),
	}
}

func batchQueuedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchAnalyze,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Analyzing %d playlists...", total),
	}
}

func batchCompletedUpdate(step, total int, res *AnalysisResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchAnalyze,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d suggestions)", step, total, res.Playlist.Name, len(res.Recommendations)),
		Data:    res,
	}
}

func batchFailedUpdate(step, total int, input string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchAnalyze,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, input, err),
	}
}
