// package formatter renders playlist lookups as plain text, Markdown, CSV, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/scorer"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
)

// DefaultTopTracks is the number of representative tracks included in a report.
const DefaultTopTracks = 5

const separator = "=================================================="

// Format is an output format for reports.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat resolves a format name. "txt" and "md" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (expected text, markdown, csv or json)", shared.ErrInvalidArgument, s)
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Report is the serializable view of a lookup shared by the CLI, the web API and file exports.
type Report struct {
	Playlist        PlaylistEntry         `json:"playlist"`
	Weights         map[string]float64    `json:"weights,omitempty"`
	Profile         []ProfileEntry        `json:"profile,omitempty"`
	Seeds           *SeedEntry            `json:"seeds,omitempty"`
	Recommendations []RecommendationEntry `json:"recommendations"`
	TopTracks       []RankedEntry         `json:"top_tracks,omitempty"`
	Contributors    []ContributorEntry    `json:"contributors"`
	LookupID        string                `json:"lookup_id,omitempty"`
}

type PlaylistEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	URL        string `json:"url"`
	TrackCount int    `json:"track_count"`
	Sampled    int    `json:"sampled,omitempty"`
}

type ProfileEntry struct {
	Feature   string  `json:"feature"`
	Target    float64 `json:"target"`
	Influence float64 `json:"influence"`
}

type SeedEntry struct {
	Tracks  []string `json:"tracks,omitempty"`
	Artists []string `json:"artists,omitempty"`
	Genres  []string `json:"genres,omitempty"`
}

type RecommendationEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists string `json:"artists"`
	URL     string `json:"url"`
	URI     string `json:"uri"`
}

type RankedEntry struct {
	Rank    int     `json:"rank"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Artists string  `json:"artists"`
	Score   float64 `json:"score"`
}

type ContributorEntry struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// NewReport builds a [Report] from a completed analysis, keeping the top most representative tracks.
func NewReport(res *tasks.AnalysisResult, top int) *Report {
	if top <= 0 {
		top = DefaultTopTracks
	}

	r := &Report{
		Playlist:        playlistEntry(res.Playlist),
		Weights:         map[string]float64{},
		Recommendations: []RecommendationEntry{},
		Contributors:    contributorEntries(res.Tally),
		LookupID:        res.LookupID,
		Seeds: &SeedEntry{
			Tracks:  res.Request.SeedTracks,
			Artists: res.Request.SeedArtists,
			Genres:  res.Request.SeedGenres,
		},
	}

	for f, w := range res.Weights {
		r.Weights[string(f)] = w
	}

	if res.Profile != nil {
		r.Playlist.Sampled = res.Profile.Sampled
		for _, f := range models.Features {
			if v, ok := res.Profile.Target(f); ok {
				r.Profile = append(r.Profile, ProfileEntry{Feature: string(f), Target: v, Influence: res.Profile.Influence[f]})
			}
		}
	}

	for _, rec := range res.Recommendations {
		url := rec.URL
		if url == "" {
			url = shared.TrackURL(rec.ID)
		}
		r.Recommendations = append(r.Recommendations, RecommendationEntry{
			ID:      rec.ID,
			Name:    rec.Name,
			Artists: rec.ArtistString(),
			URL:     url,
			URI:     rec.URI(),
		})
	}

	for _, ts := range res.Ranked[:min(top, len(res.Ranked))] {
		r.TopTracks = append(r.TopTracks, RankedEntry{
			Rank:    ts.Rank,
			ID:      ts.Track.ID,
			Name:    ts.Track.Name,
			Artists: ts.Track.ArtistString(),
			Score:   ts.Score,
		})
	}

	return r
}

// NewTallyReport builds a contributor-only [Report].
func NewTallyReport(res *tasks.TallyResult) *Report {
	return &Report{
		Playlist:        playlistEntry(res.Playlist),
		Recommendations: []RecommendationEntry{},
		Contributors:    contributorEntries(res.Tally),
	}
}

func playlistEntry(p *models.Playlist) PlaylistEntry {
	if p == nil {
		return PlaylistEntry{}
	}
	return PlaylistEntry{
		ID:         p.ID,
		Name:       p.Name,
		Owner:      p.Owner,
		URL:        shared.PlaylistURL(p.ID),
		TrackCount: p.TrackCount,
	}
}

func contributorEntries(tally *scorer.ContributorTally) []ContributorEntry {
	entries := []ContributorEntry{}
	if tally == nil {
		return entries
	}
	for _, c := range tally.Entries() {
		entries = append(entries, ContributorEntry{ID: c.Contributor, Name: c.Name, Count: c.Count, Percent: c.Percent})
	}
	return entries
}

// Render encodes r in the given format.
func Render(r *Report, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return ToMarkdown(r), nil
	case FormatCSV:
		return ToCSV(r)
	case FormatJSON:
		return shared.MarshalJSON(r, true)
	default:
		return ToText(r), nil
	}
}

// ToText renders r in the layout of the interactive console output.
func ToText(r *Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", r.Playlist.Name)
	fmt.Fprintf(&buf, "Total tracks: %d\n", r.Playlist.TrackCount)

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&buf, "\n%s\n\nSuggested tracks:\n", separator)
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&buf, "%d. %s by %s\n", i+1, rec.Name, rec.Artists)
			fmt.Fprintf(&buf, "   Spotify URI: %s\n", rec.URI)
		}
	}

	if len(r.Profile) > 0 {
		fmt.Fprintf(&buf, "\nTarget profile (%d tracks sampled):\n", r.Playlist.Sampled)
		for _, p := range r.Profile {
			fmt.Fprintf(&buf, "  %-16s %9s  (influence %.1f%%)\n", p.Feature, FormatTarget(p.Feature, p.Target), p.Influence*100)
		}
	}

	if len(r.TopTracks) > 0 {
		buf.WriteString("\nMost representative tracks:\n")
		for _, t := range r.TopTracks {
			fmt.Fprintf(&buf, "%2d. %s by %s (%.3f)\n", t.Rank, t.Name, t.Artists, t.Score)
		}
	}

	if len(r.Contributors) > 0 {
		fmt.Fprintf(&buf, "\n%s\n\nContributor statistics:\n", separator)
		for _, c := range r.Contributors {
			fmt.Fprintf(&buf, "User %s: %d tracks (%.1f%%)\n", c.Name, c.Count, c.Percent)
		}
	}

	return buf.Bytes()
}

// ToMarkdown renders r as a Markdown document.
func ToMarkdown(r *Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Playlist.Name)
	fmt.Fprintf(&buf, "**Playlist**: <%s>\n", r.Playlist.URL)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", r.Playlist.TrackCount)
	if r.Playlist.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", r.Playlist.Owner)
	}
	buf.WriteString("\n")

	if len(r.Recommendations) > 0 {
		buf.WriteString("## Suggested Tracks\n\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&buf, "%d. [%s](%s) by %s\n", i+1, escapeMarkdown(rec.Name), rec.URL, escapeMarkdown(rec.Artists))
		}
		buf.WriteString("\n")
	}

	if len(r.Profile) > 0 {
		buf.WriteString("## Target Profile\n\n")
		buf.WriteString("| Feature | Target | Influence |\n|---|---:|---:|\n")
		for _, p := range r.Profile {
			fmt.Fprintf(&buf, "| %s | %s | %.1f%% |\n", p.Feature, FormatTarget(p.Feature, p.Target), p.Influence*100)
		}
		buf.WriteString("\n")
	}

	if len(r.TopTracks) > 0 {
		buf.WriteString("## Most Representative Tracks\n\n")
		for _, t := range r.TopTracks {
			fmt.Fprintf(&buf, "%d. %s - %s (%.3f)\n", t.Rank, escapeMarkdown(t.Artists), escapeMarkdown(t.Name), t.Score)
		}
		buf.WriteString("\n")
	}

	if len(r.Contributors) > 0 {
		buf.WriteString("## Contributors\n\n")
		buf.WriteString("| Contributor | Tracks | Share |\n|---|---:|---:|\n")
		for _, c := range r.Contributors {
			fmt.Fprintf(&buf, "| %s | %d | %.1f%% |\n", escapeMarkdown(c.Name), c.Count, c.Percent)
		}
	}

	return buf.Bytes()
}

var csvHeader = []string{"Kind", "Playlist", "ID", "Name", "Artists", "URL", "Count", "Percent"}

// ToCSV writes one row per recommendation followed by one row per contributor.
func ToCSV(r *Report) ([]byte, error) {
	return writeCSV(r)
}

func writeCSV(reports ...*Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range reports {
		for _, rec := range csvRows(r) {
			if err := writer.Write(rec); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRows(r *Report) [][]string {
	var rows [][]string
	for _, rec := range r.Recommendations {
		rows = append(rows, []string{"recommendation", r.Playlist.ID, rec.ID, rec.Name, rec.Artists, rec.URL, "", ""})
	}
	for _, c := range r.Contributors {
		rows = append(rows, []string{
			"contributor", r.Playlist.ID, c.ID, c.Name, "", "",
			strconv.Itoa(c.Count), strconv.FormatFloat(c.Percent, 'f', 1, 64),
		})
	}
	return rows
}

// WriteReport renders r and writes it to path, creating parent directories as needed.
func WriteReport(r *Report, format Format, path string) error {
	data, err := Render(r, format)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FormatTarget prints tempo in BPM, loudness in dB and everything else on the unit scale.
func FormatTarget(feature string, v float64) string {
	switch models.Feature(feature) {
	case models.Tempo:
		return fmt.Sprintf("%.1f BPM", v)
	case models.Loudness:
		return fmt.Sprintf("%.1f dB", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
