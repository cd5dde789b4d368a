package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/genify/internal/formatter"
)

var (
	_ list.Item = suggestionItem{}
)

// suggestionItem wraps [formatter.RecommendationEntry] to implement [list.Item].
type suggestionItem struct {
	rank int
	rec  formatter.RecommendationEntry
}

func (i suggestionItem) FilterValue() string { return i.rec.Name }
func (i suggestionItem) Title() string       { return fmt.Sprintf("%d. %s by %s", i.rank, i.rec.Name, i.rec.Artists) }
func (i suggestionItem) Description() string { return "Spotify URI: " + i.rec.URI }

func suggestionItems(recs []formatter.RecommendationEntry) []list.Item {
	items := make([]list.Item, len(recs))
	for i, rec := range recs {
		items[i] = suggestionItem{rank: i + 1, rec: rec}
	}
	return items
}
