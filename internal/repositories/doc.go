// Package repositories persists lookup history in SQLite.
//
// Only summaries of completed analyses are stored (see [models.Lookup]); tracks, weights and tallies
// stay request-scoped. Each row gets a UUID plus a sequence number from [NextSequence], which gives
// the history a stable, human-readable order (lookup #1, #2, ...) independent of timestamps.
//
// Key Implementations:
//   - [LookupRepository] : create, fetch and list lookups; satisfies tasks.LookupRecorder
package repositories
