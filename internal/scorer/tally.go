package scorer

import (
	"sort"

	"github.com/desertthunder/genify/internal/models"
)

// UnknownContributor labels tracks whose adder the platform did not report.
const UnknownContributor = "(unknown)"

// ContributorCount is one row of a [ContributorTally].
type ContributorCount struct {
	Contributor string  `json:"contributor"`
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Percent     float64 `json:"percent"`
}

// ContributorTally maps contributors to the number of tracks they added. It is read-only once built.
type ContributorTally struct {
	counts map[string]int
	names  map[string]string
	order  []string
	total  int
}

// TallyContributors counts tracks per contributor.
//
// Tracks without a contributor are counted under the unknown contributor, so the counts always sum to len(tracks).
func TallyContributors(tracks []models.Track) *ContributorTally {
	t := &ContributorTally{
		counts: map[string]int{},
		names:  map[string]string{},
	}
	for _, tr := range tracks {
		id := tr.Contributor
		if _, seen := t.counts[id]; !seen {
			t.order = append(t.order, id)
		}
		t.counts[id]++
		if tr.ContributorName != "" && t.names[id] == "" {
			t.names[id] = tr.ContributorName
		}
		t.total++
	}
	return t
}

// Count returns the number of tracks added by contributor. The empty string is the unknown contributor.
func (t *ContributorTally) Count(contributor string) int {
	return t.counts[contributor]
}

// Total returns the number of tracks tallied.
func (t *ContributorTally) Total() int {
	return t.total
}

// Len returns the number of distinct contributors.
func (t *ContributorTally) Len() int {
	return len(t.order)
}

// Counts returns a copy of the underlying contributor → count mapping.
func (t *ContributorTally) Counts() map[string]int {
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// Entries returns contributors by count descending; ties keep first-appearance order.
func (t *ContributorTally) Entries() []ContributorCount {
	entries := make([]ContributorCount, 0, len(t.order))
	for _, id := range t.order {
		c := t.counts[id]
		var pct float64
		if t.total > 0 {
			pct = float64(c) / float64(t.total) * 100
		}
		entries = append(entries, ContributorCount{
			Contributor: id,
			Name:        t.label(id),
			Count:       c,
			Percent:     pct,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

func (t *ContributorTally) label(id string) string {
	if name := t.names[id]; name != "" {
		return name
	}
	if id == "" {
		return UnknownContributor
	}
	return id
}
