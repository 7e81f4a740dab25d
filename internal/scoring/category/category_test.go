package category_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/mixcritic/internal/scoring/category"
	"github.com/farcloser/mixcritic/internal/types"
)

func TestAggregateExcludesUnavailable(t *testing.T) {
	t.Parallel()

	score, ok := category.Aggregate([]float64{0.8, math.NaN(), 0.9})
	require.True(t, ok)
	assert.InDelta(t, 85.0, score, 0)

	_, ok = category.Aggregate([]float64{math.NaN(), math.NaN()})
	assert.False(t, ok)

	_, ok = category.Aggregate(nil)
	assert.False(t, ok)

	score, ok = category.Aggregate([]float64{math.Inf(1), 0.5})
	require.True(t, ok)
	assert.InDelta(t, 50.0, score, 0)
}

func TestClippingScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, category.ClippingScore(0), 0)
	assert.InDelta(t, 0.7, category.ClippingScore(1), 0)
	assert.InDelta(t, 0.7, category.ClippingScore(9), 0)
	assert.InDelta(t, 0.0, category.ClippingScore(10), 0)
}

func TestScoresNeutralWhenEmpty(t *testing.T) {
	t.Parallel()

	scores := category.Scores(nil, nil)
	require.Len(t, scores, 4)

	for _, score := range scores {
		assert.Nil(t, score.Score, "category %s", score.Category)
		assert.Zero(t, score.ValidCount)
		assert.Positive(t, score.TotalCount)
	}

	_, ok := category.Overall(scores)
	assert.False(t, ok)
}

func TestScores(t *testing.T) {
	t.Parallel()

	deviations := map[types.MetricKey]types.Deviation{
		types.KeyIntegratedLoudness:       {Key: types.KeyIntegratedLoudness, Score: 0},
		types.KeyDynamicRange:             {Key: types.KeyDynamicRange, Score: 0.1},
		types.KeyLoudnessRange:            {Key: types.KeyLoudnessRange, Score: 0.5},
		types.KeyTruePeak:                 {Key: types.KeyTruePeak, Score: 1},
		types.BandKey(types.BandSub):      {Key: types.BandKey(types.BandSub), Score: 1},
		types.BandKey(types.BandLowBass):  {Key: types.BandKey(types.BandLowBass), Score: 0.5},
		types.KeySpectralCentroid:         {Key: types.KeySpectralCentroid, Score: 0},
	}

	measurements := types.Measurements{types.KeyClipping: 4}

	byCategory := map[types.Category]types.CategoryScore{}
	for _, score := range category.Scores(deviations, measurements) {
		byCategory[score.Category] = score
	}

	loudness := byCategory[types.CategoryLoudness]
	require.NotNil(t, loudness.Score)
	assert.InDelta(t, 0.0, *loudness.Score, 0)

	dynamics := byCategory[types.CategoryDynamics]
	require.NotNil(t, dynamics.Score)
	assert.InDelta(t, 30.0, *dynamics.Score, 0)
	assert.Equal(t, 2, dynamics.ValidCount)
	assert.Equal(t, 3, dynamics.TotalCount)

	technical := byCategory[types.CategoryTechnical]
	require.NotNil(t, technical.Score)
	assert.InDelta(t, 85.0, *technical.Score, 0)

	// Bands take precedence over the centroid fallback.
	frequency := byCategory[types.CategoryFrequency]
	require.NotNil(t, frequency.Score)
	assert.InDelta(t, 75.0, *frequency.Score, 0)
	assert.Equal(t, 7, frequency.TotalCount)

	overall, ok := category.Overall(category.Scores(deviations, measurements))
	require.True(t, ok)
	assert.InDelta(t, math.Round((0+30+85+75)/4.0), overall, 0)
}

func TestFrequencyFallback(t *testing.T) {
	t.Parallel()

	deviations := map[types.MetricKey]types.Deviation{
		types.KeySpectralCentroid: {Key: types.KeySpectralCentroid, Score: 0.6},
	}

	members := category.Members(types.CategoryFrequency, deviations)
	assert.Equal(t, []types.MetricKey{types.KeySpectralCentroid, types.KeySpectralRolloff}, members)

	for _, score := range category.Scores(deviations, nil) {
		if score.Category == types.CategoryFrequency {
			require.NotNil(t, score.Score)
			assert.InDelta(t, 60.0, *score.Score, 0)
		}
	}
}

func TestOf(t *testing.T) {
	t.Parallel()

	cat, ok := category.Of(types.BandKey(types.BandAir))
	require.True(t, ok)
	assert.Equal(t, types.CategoryFrequency, cat)

	cat, ok = category.Of(types.KeyCrestFactor)
	require.True(t, ok)
	assert.Equal(t, types.CategoryDynamics, cat)

	_, ok = category.Of(types.KeyStereoCorrelation)
	assert.False(t, ok)
}
