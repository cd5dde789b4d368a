package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
)

const maxSuggestions = 100

type weightField struct {
	Name  string
	Label string
	Value string
}

type formPage struct {
	Title       string
	Weights     []weightField
	Suggestions int
}

func newFormPage(defaults tasks.AnalyzeOpts) formPage {
	page := formPage{Title: "Genify", Suggestions: defaults.Suggestions}
	for _, f := range models.Features {
		name := string(f)
		page.Weights = append(page.Weights, weightField{
			Name:  "weight_" + name,
			Label: strings.ToUpper(name[:1]) + name[1:],
			Value: strconv.FormatFloat(defaults.Weights[f], 'g', -1, 64),
		})
	}
	return page
}

// parseLookup reads the playlist input from values[key] plus optional weights and suggestion count.
//
// Weights come from a "weights" shorthand ("energy=2,valence=1") or from weight_<feature> fields. Fields
// left blank count as zero; when none are present the defaults apply.
func parseLookup(values url.Values, key string, defaults tasks.AnalyzeOpts) (string, tasks.AnalyzeOpts, error) {
	opts := defaults
	input := strings.TrimSpace(values.Get(key))
	if input == "" {
		return "", opts, fmt.Errorf("%w: a Spotify playlist URL is required", shared.ErrMissingArgument)
	}

	weights, err := parseWeights(values)
	if err != nil {
		return input, opts, err
	}
	if weights != nil {
		opts.Weights = weights
	}

	if raw := strings.TrimSpace(values.Get("suggestions")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSuggestions {
			return input, opts, fmt.Errorf("%w: suggestions must be a whole number between 1 and %d", shared.ErrInvalidArgument, maxSuggestions)
		}
		opts.Suggestions = n
	}

	return input, opts, nil
}

// parseWeights returns nil when the request carries no weights at all.
func parseWeights(values url.Values) (models.FeatureWeights, error) {
	if raw := strings.TrimSpace(values.Get("weights")); raw != "" {
		return models.ParseWeights(raw)
	}

	var w models.FeatureWeights
	for _, f := range models.Features {
		field := "weight_" + string(f)
		if _, ok := values[field]; !ok {
			continue
		}
		if w == nil {
			w = models.FeatureWeights{}
		}
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			w[f] = 0
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight for %s is not a number", shared.ErrInvalidWeights, f)
		}
		w[f] = v
	}

	if w == nil {
		return nil, nil
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
