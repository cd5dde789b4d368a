// Package models defines the domain types shared by the scorer, the Spotify client and the web layer.
//
// Request-scoped values:
//   - [Track] : a playlist entry with its contributor and optional [FeatureVector]
//   - [FeatureWeights] : per-request weights over [Feature] names
//   - [Playlist] : playlist metadata
//   - [Recommendation] : a suggested track returned by the recommendation endpoint
//
// The only persisted entity is [Lookup], a summary row written when history is enabled.
//
// Every [Feature] has fixed [Bounds]; [Feature.Normalize] maps raw values into [0,1] so tempo (BPM) and
// loudness (dB) can be compared with the unit-range features.
package models
