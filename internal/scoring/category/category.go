// Package category aggregates member metric scores into category sub-scores.
package category

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/mixcritic/internal/types"
)

// Aggregate averages the finite members (0..1) and returns the mean on a 0..100 scale, rounded.
// It reports false when no member is available; callers must treat that as neutral.
func Aggregate(members []float64) (float64, bool) {
	valid := finite(members)
	if len(valid) == 0 {
		return 0, false
	}

	return math.Round(stat.Mean(valid, nil) * 100), true
}

// ClippingScore maps a clipped sample count onto a member score.
func ClippingScore(count float64) float64 {
	switch {
	case count <= 0:
		return 1.0
	case count < 10:
		return 0.7
	default:
		return 0.0
	}
}

//nolint:gochecknoglobals // static membership table
var membership = map[types.Category][]types.MetricKey{
	types.CategoryDynamics:  {types.KeyDynamicRange, types.KeyLoudnessRange, types.KeyCrestFactor},
	types.CategoryTechnical: {types.KeyTruePeak, types.KeyDCOffset, types.KeyTHD, types.KeyClipping},
	types.CategoryLoudness:  {types.KeyIntegratedLoudness},
}

//nolint:gochecknoglobals // static membership table
var frequencyFallback = []types.MetricKey{types.KeySpectralCentroid, types.KeySpectralRolloff}

// Members returns the member keys of a category. Frequency uses the band scores when at least one
// band was scored and falls back to spectral centroid and rolloff otherwise.
func Members(category types.Category, deviations map[types.MetricKey]types.Deviation) []types.MetricKey {
	if category != types.CategoryFrequency {
		return slices.Clone(membership[category])
	}

	bands := make([]types.MetricKey, 0, len(types.Bands()))
	scored := false

	for _, band := range types.Bands() {
		key := types.BandKey(band.Name)
		bands = append(bands, key)

		if _, ok := deviations[key]; ok {
			scored = true
		}
	}

	if scored {
		return bands
	}

	return slices.Clone(frequencyFallback)
}

// Of returns the category a metric belongs to.
func Of(key types.MetricKey) (types.Category, bool) {
	if _, ok := key.Band(); ok {
		return types.CategoryFrequency, true
	}

	if slices.Contains(frequencyFallback, key) {
		return types.CategoryFrequency, true
	}

	for _, cat := range types.Categories() {
		if slices.Contains(membership[cat], key) {
			return cat, true
		}
	}

	return "", false
}

// Scores computes every category. Clipping is read from the raw measurement, everything else
// from the deviation scores.
func Scores(
	deviations map[types.MetricKey]types.Deviation,
	measurements types.Measurements,
) []types.CategoryScore {
	cats := types.Categories()
	scores := make([]types.CategoryScore, 0, len(cats))

	for _, cat := range cats {
		keys := Members(cat, deviations)
		members := make([]float64, 0, len(keys))

		for _, key := range keys {
			members = append(members, memberScore(key, deviations, measurements))
		}

		result := types.CategoryScore{
			Category:   cat,
			ValidCount: len(finite(members)),
			TotalCount: len(keys),
		}

		if score, ok := Aggregate(members); ok {
			result.Score = &score
		}

		scores = append(scores, result)
	}

	return scores
}

// Overall averages the available category scores. It reports false when none is available.
func Overall(scores []types.CategoryScore) (float64, bool) {
	var available []float64

	for _, score := range scores {
		if score.Score != nil {
			available = append(available, *score.Score)
		}
	}

	if len(available) == 0 {
		return 0, false
	}

	return math.Round(stat.Mean(available, nil)), true
}

func memberScore(
	key types.MetricKey,
	deviations map[types.MetricKey]types.Deviation,
	measurements types.Measurements,
) float64 {
	if key == types.KeyClipping {
		if count, ok := measurements.Value(key); ok {
			return ClippingScore(count)
		}

		return math.NaN()
	}

	if dev, ok := deviations[key]; ok {
		return dev.Score
	}

	return math.NaN()
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))

	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}

	return out
}
