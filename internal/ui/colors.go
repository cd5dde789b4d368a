package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	spotifyGreen = lipgloss.Color("#1DB954")
	okGreen      = lipgloss.Color("#04B575")
	errorRed     = lipgloss.Color("#FF0000")
	warnOrange   = lipgloss.Color("#FFA500")
	mutedGray    = lipgloss.Color("#626262")
)

var styles = newPalette()

// palette holds every style the views render with.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	bar   lipgloss.Style
}

func newPalette() palette {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return palette{
		title: fg(spotifyGreen).Bold(true).MarginBottom(1),
		ok:    fg(okGreen).Bold(true),
		err:   fg(errorRed).Bold(true),
		warn:  fg(warnOrange),
		help:  fg(mutedGray).Italic(true),
		bar:   fg(spotifyGreen),
	}
}
