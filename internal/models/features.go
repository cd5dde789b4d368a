package models

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/genify/internal/shared"
)

// Feature names an audio feature reported by the platform.
type Feature string

const (
	Danceability     Feature = "danceability"
	Energy           Feature = "energy"
	Valence          Feature = "valence"
	Acousticness     Feature = "acousticness"
	Instrumentalness Feature = "instrumentalness"
	Liveness         Feature = "liveness"
	Speechiness      Feature = "speechiness"
	Tempo            Feature = "tempo"
	Loudness         Feature = "loudness"
)

// Features lists every supported feature in display order.
var Features = []Feature{
	Danceability, Energy, Valence, Acousticness, Instrumentalness, Liveness, Speechiness, Tempo, Loudness,
}

// Bounds is the closed range a feature's values fall in.
type Bounds struct {
	Min float64
	Max float64
}

var featureBounds = map[Feature]Bounds{
	Danceability:     {0, 1},
	Energy:           {0, 1},
	Valence:          {0, 1},
	Acousticness:     {0, 1},
	Instrumentalness: {0, 1},
	Liveness:         {0, 1},
	Speechiness:      {0, 1},
	Tempo:            {0, 250},
	Loudness:         {-60, 0},
}

// ParseFeature resolves a feature by name, case-insensitively.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := featureBounds[f]; !ok {
		return "", fmt.Errorf("%w: unknown audio feature %q", shared.ErrInvalidArgument, s)
	}
	return f, nil
}

// Bounds returns the feature's value range.
func (f Feature) Bounds() Bounds {
	return featureBounds[f]
}

// Normalize scales v into [0,1] by the feature's bounds, clamping out-of-range values.
func (f Feature) Normalize(v float64) float64 {
	b := f.Bounds()
	span := b.Max - b.Min
	if span <= 0 {
		return 0
	}
	n := (v - b.Min) / span
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	default:
		return n
	}
}

func (f Feature) String() string { return string(f) }

// FeatureVector maps features to raw values.
type FeatureVector map[Feature]float64

// FeatureWeights maps features to non-negative weights. The sum need not be 1.
type FeatureWeights map[Feature]float64

// DefaultWeights weights danceability, energy and valence equally.
func DefaultWeights() FeatureWeights {
	return FeatureWeights{Danceability: 1, Energy: 1, Valence: 1}
}

// Validate rejects negative or non-finite weights and weight sets with no positive entry.
func (w FeatureWeights) Validate() error {
	positive := false
	for f, v := range w {
		if _, ok := featureBounds[f]; !ok {
			return fmt.Errorf("%w: unknown audio feature %q", shared.ErrInvalidWeights, f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight for %s must be a finite number, got %g", shared.ErrInvalidWeights, f, v)
		}
		if v < 0 {
			return fmt.Errorf("%w: weight for %s must be non-negative, got %g", shared.ErrInvalidWeights, f, v)
		}
		if v > 0 {
			positive = true
		}
	}
	if !positive {
		return fmt.Errorf("%w: at least one feature weight must be positive", shared.ErrInvalidWeights)
	}
	return nil
}

// Normalize returns a copy of w scaled so its values sum to 1. Zero weights are dropped.
//
// Weights are divided by the largest one before summing so the total cannot overflow.
func (w FeatureWeights) Normalize() FeatureWeights {
	var largest float64
	for _, v := range w {
		if v > largest {
			largest = v
		}
	}
	out := make(FeatureWeights, len(w))
	if largest == 0 || math.IsInf(largest, 0) {
		return out
	}

	var total float64
	for _, v := range w {
		if v > 0 {
			total += v / largest
		}
	}
	for f, v := range w {
		if v > 0 {
			out[f] = (v / largest) / total
		}
	}
	return out
}

// Active returns the positively weighted features in display order.
func (w FeatureWeights) Active() []Feature {
	var fs []Feature
	for _, f := range Features {
		if w[f] > 0 {
			fs = append(fs, f)
		}
	}
	return fs
}

// String renders weights as "feature=value" pairs sorted by feature name.
func (w FeatureWeights) String() string {
	keys := make([]string, 0, len(w))
	for f := range w {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(w[Feature(k)], 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseWeights parses "energy=2,valence=1" style input. An empty string yields [DefaultWeights].
func ParseWeights(s string) (FeatureWeights, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWeights(), nil
	}

	w := FeatureWeights{}
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: weight %q must be in feature=value form", shared.ErrInvalidWeights, pair)
		}
		f, err := ParseFeature(name)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight for %s is not a number: %v", shared.ErrInvalidWeights, f, err)
		}
		w[f] = v
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// WeightsFromMap converts name-keyed weights (as read from config or a form) into [FeatureWeights].
func WeightsFromMap(m map[string]float64) (FeatureWeights, error) {
	w := make(FeatureWeights, len(m))
	for name, v := range m {
		f, err := ParseFeature(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidWeights, err)
		}
		w[f] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
