package scorer

import (
	"fmt"
	"math"
	"sort"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
)

// TargetProfile is the feature profile handed to the recommendation endpoint.
type TargetProfile struct {
	// Targets holds the similarity-weighted mean of every feature present in the playlist.
	Targets models.FeatureVector `json:"targets"`
	// Influence is each weighted feature's share of the total weight.
	Influence models.FeatureVector `json:"influence"`
	// Sampled counts the tracks that carried audio features.
	Sampled int `json:"sampled"`
}

// Target returns the target for f and whether f influenced the similarity scores.
func (p *TargetProfile) Target(f models.Feature) (float64, bool) {
	v, ok := p.Targets[f]
	return v, ok && p.Influence[f] > 0
}

// TrackScore is a track's similarity to the playlist centroid.
type TrackScore struct {
	Track models.Track `json:"track"`
	Score float64      `json:"score"`
	Rank  int          `json:"rank"`
}

// ComputeTargetProfile computes the weighted average of each feature across tracks.
//
// Each track is weighted by its similarity score (see [RankTracks]) before averaging, so tracks close to the
// playlist's centre on the heavily weighted features pull the targets hardest. Targets always lie within the
// observed min/max of each feature.
//
// Influence is each feature's share of the total weight, so raising one weight increases its influence only
// when at least two features are weighted. A sole weighted feature always has influence 1, and scaling it
// leaves the profile unchanged.
func ComputeTargetProfile(tracks []models.Track, weights models.FeatureWeights) (*TargetProfile, error) {
	featured, norm, err := prepare(tracks, weights)
	if err != nil {
		return nil, err
	}

	scores := similarityScores(featured, norm)

	profile := &TargetProfile{
		Targets:   models.FeatureVector{},
		Influence: models.FeatureVector(norm),
		Sampled:   len(featured),
	}

	for _, f := range models.Features {
		var (
			weighted, totalScore float64
			sum                  float64
			n                    int
			lo, hi               = math.Inf(1), math.Inf(-1)
		)
		for i, t := range featured {
			v, ok := t.Features[f]
			if !ok {
				continue
			}
			weighted += scores[i] * v
			totalScore += scores[i]
			sum += v
			n++
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if n == 0 {
			continue
		}

		target := sum / float64(n)
		if totalScore > 0 {
			target = weighted / totalScore
		}
		profile.Targets[f] = clamp(target, lo, hi)
	}

	return profile, nil
}

// RankTracks scores every track that has audio features and sorts them most representative first.
//
// A track's score is Σ ŵ_f · (1 − |x̃_f − c̃_f|) over the weighted features, where ŵ are the normalized weights,
// x̃ the track's feature scaled into [0,1] and c̃ the scaled playlist mean. Scores fall in [0,1]; ties keep
// playlist order.
func RankTracks(tracks []models.Track, weights models.FeatureWeights) ([]TrackScore, error) {
	featured, norm, err := prepare(tracks, weights)
	if err != nil {
		return nil, err
	}

	scores := similarityScores(featured, norm)
	ranked := make([]TrackScore, len(featured))
	for i, t := range featured {
		ranked[i] = TrackScore{Track: t, Score: scores[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

func prepare(tracks []models.Track, weights models.FeatureWeights) ([]models.Track, models.FeatureWeights, error) {
	if len(tracks) == 0 {
		return nil, nil, shared.ErrEmptyPlaylist
	}
	if err := weights.Validate(); err != nil {
		return nil, nil, err
	}

	featured := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.HasFeatures() {
			featured = append(featured, t)
		}
	}
	if len(featured) == 0 {
		return nil, nil, fmt.Errorf("%w: none of %d tracks have audio features", shared.ErrNoAudioFeatures, len(tracks))
	}

	return featured, weights.Normalize(), nil
}

// similarityScores returns one score per track, aligned with tracks.
func similarityScores(tracks []models.Track, norm models.FeatureWeights) []float64 {
	centroid := models.FeatureVector{}
	for f := range norm {
		var sum float64
		var n int
		for _, t := range tracks {
			if v, ok := t.Features[f]; ok {
				sum += f.Normalize(v)
				n++
			}
		}
		if n > 0 {
			centroid[f] = sum / float64(n)
		}
	}

	scores := make([]float64, len(tracks))
	for i, t := range tracks {
		var s float64
		for f, w := range norm {
			c, ok := centroid[f]
			if !ok {
				continue
			}
			v, ok := t.Features[f]
			if !ok {
				continue
			}
			s += w * (1 - math.Abs(f.Normalize(v)-c))
		}
		scores[i] = s
	}
	return scores
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
