// package models defines the data model for the playlist analysis web service
package models

import (
	"fmt"
	"strings"
	"time"
)

// Track is a playlist entry as seen by the scorer.
//
// Features is nil when the platform returned no audio features for the track (local files, episodes, or
// tracks whose analysis is unavailable).
type Track struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Artists         []string      `json:"artists"`
	ArtistIDs       []string      `json:"artist_ids,omitempty"`
	Contributor     string        `json:"contributor"`
	ContributorName string        `json:"contributor_name,omitempty"`
	URI             string        `json:"uri,omitempty"`
	Features        FeatureVector `json:"features,omitempty"`
}

// ArtistString joins artist names for display.
func (t Track) ArtistString() string {
	return strings.Join(t.Artists, ", ")
}

// HasFeatures reports whether the track carries at least one audio feature.
func (t Track) HasFeatures() bool {
	return len(t.Features) > 0
}

// Playlist represents playlist metadata.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	TrackCount  int    `json:"track_count"`
}

// Recommendation is a track suggested by the recommendation endpoint.
type Recommendation struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	URL     string   `json:"url,omitempty"`
}

// URI returns the spotify:track URI for the recommendation.
func (r Recommendation) URI() string {
	return "spotify:track:" + r.ID
}

// ArtistString joins artist names for display.
func (r Recommendation) ArtistString() string {
	return strings.Join(r.Artists, ", ")
}

// Lookup is the persisted summary of one completed playlist analysis.
//
// Request-scoped entities (tracks, weights, tallies) are never stored; only identifiers and counts are.
type Lookup struct {
	id               string
	sequence         int
	PlaylistID       string
	PlaylistName     string
	TrackCount       int
	ContributorCount int
	Recommendations  []string
	createdAt        time.Time
}

// NewLookup creates a [Lookup] stamped with the current time.
func NewLookup(playlistID, playlistName string, trackCount, contributorCount int, recommendations []string) *Lookup {
	return &Lookup{
		PlaylistID:       playlistID,
		PlaylistName:     playlistName,
		TrackCount:       trackCount,
		ContributorCount: contributorCount,
		Recommendations:  recommendations,
		createdAt:        time.Now().UTC(),
	}
}

func (l *Lookup) ID() string                { return l.id }
func (l *Lookup) SetID(id string)           { l.id = id }
func (l *Lookup) Sequence() int             { return l.sequence }
func (l *Lookup) SetSequence(seq int)       { l.sequence = seq }
func (l *Lookup) CreatedAt() time.Time      { return l.createdAt }
func (l *Lookup) SetCreatedAt(at time.Time) { l.createdAt = at }

// Validate checks required fields.
func (l *Lookup) Validate() error {
	if l.PlaylistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if l.TrackCount < 0 || l.ContributorCount < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	return nil
}
