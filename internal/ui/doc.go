// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one lookup at a time:
//  1. [InputView] : Prompt for a playlist URL, URI or ID
//  2. [AnalyzeView] : Spinner and live progress while the lookup runs
//  3. [ResultView] : Suggested tracks with their Spotify URIs, followed by contributor statistics
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PlaylistEngine, providing non-blocking status reporting during a lookup.
// Each lookup runs under its own cancelable context; esc abandons it and late messages from it are dropped.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
