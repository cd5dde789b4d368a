// Package tasks orchestrates playlist lookups with real-time progress reporting.
//
// # Core Operations
//
// The [Analyzer] interface defines two operations:
//
//  1. [Analyzer.Analyze] : full lookup
//     - Parses the playlist URL, URI or bare ID
//     - Fetches metadata and every playlist item (local files included)
//     - Fetches audio features, computes the target profile and ranks tracks
//     - Picks random track, artist and genre seeds (at most five) and requests recommendations
//     - Drops suggestions already in the playlist and tallies contributors
//
//  2. [Analyzer.Tally] : contributor balance only
//
// [PlaylistEngine.AnalyzeMany] runs Analyze over several playlists with a bounded worker pool and a
// golang.org/x/time/rate limiter.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Lookup History
//
// The optional [LookupRecorder] interface (repositories.LookupRepository) stores a summary of each completed
// lookup. Recording failures are logged and never fail the lookup.
package tasks
