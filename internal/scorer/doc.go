// Package scorer computes playlist feature profiles and contributor statistics.
//
// All functions are pure: they read request-scoped tracks and weights and keep no state between calls.
//
//   - [ComputeTargetProfile] : similarity-weighted average of each audio feature, used as recommendation targets
//   - [RankTracks] : per-track similarity to the playlist centroid
//   - [TallyContributors] : tracks per contributor
package scorer
