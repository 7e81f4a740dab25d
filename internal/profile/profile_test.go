package profile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/mixcritic/internal/profile"
	"github.com/farcloser/mixcritic/internal/types"
)

func TestGenres(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"acoustic", "classical", "electronic", "funk", "hiphop", "jazz", "pop", "rock"},
		profile.Genres(),
	)
}

func TestEveryBuiltinLoadsCleanly(t *testing.T) {
	t.Parallel()

	for _, genre := range profile.Genres() {
		t.Run(genre, func(t *testing.T) {
			t.Parallel()

			prof, err := profile.Builtin(genre)
			require.NoError(t, err)
			assert.Equal(t, genre, prof.Genre)

			specs, diagnostics := prof.Specs(profile.DefaultCatalog())
			assert.Empty(t, diagnostics)
			assert.Len(t, specs, 10+len(types.Bands()))

			for _, spec := range specs {
				assert.Positive(t, spec.ToleranceLow, spec.Key)
				assert.Positive(t, spec.ToleranceHigh, spec.Key)
				assert.Positive(t, spec.BaseWeight, spec.Key)
			}
		})
	}
}

func TestBuiltinIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	prof, err := profile.Builtin(" Funk ")
	require.NoError(t, err)
	assert.Equal(t, "funk", prof.Genre)
}

func TestUnknownGenre(t *testing.T) {
	t.Parallel()

	_, err := profile.Builtin("polka")
	require.ErrorIs(t, err, profile.ErrUnknownGenre)
	assert.Contains(t, err.Error(), "funk")
}

func TestSpecs(t *testing.T) {
	t.Parallel()

	prof, err := profile.Load(strings.NewReader(`
genre: test
metrics:
  lufs: {target: -14, tolerance: 2}
  tp: {target: -1, tolerance: 1}
  dc: {target: 0, tolerance: 0.001}
  dr: {target: 8, tolerance_low: 2, tolerance_high: 4}
  wobble: {target: 3, tolerance: 1}
  crest: {tolerance: 1}
bands:
  low_bass: {target_db: -6, tol_db: 3}
  ultra: {target_db: -6, tol_db: 3}
`))
	require.NoError(t, err)

	specs, diagnostics := prof.Specs(profile.DefaultCatalog())

	keys := make([]types.MetricKey, 0, len(specs))
	for _, spec := range specs {
		keys = append(keys, spec.Key)
	}

	assert.Equal(t, []types.MetricKey{
		types.BandKey(types.BandLowBass),
		types.KeyDCOffset,
		types.KeyDynamicRange,
		types.KeyIntegratedLoudness,
		types.KeyTruePeak,
	}, keys)

	byKey := map[types.MetricKey]types.MetricSpec{}
	for _, spec := range specs {
		byKey[spec.Key] = spec
	}

	assert.True(t, byKey[types.KeyTruePeak].Invert)
	assert.True(t, byKey[types.KeyDCOffset].Absolute)
	assert.InDelta(t, 2.0, byKey[types.KeyDynamicRange].ToleranceLow, 0)
	assert.InDelta(t, 4.0, byKey[types.KeyDynamicRange].ToleranceHigh, 0)
	assert.InDelta(t, 2.0, byKey[types.KeyIntegratedLoudness].ToleranceHigh, 0)
	assert.InDelta(t, 0.8, byKey[types.BandKey(types.BandLowBass)].BaseWeight, 0)

	require.Len(t, diagnostics, 3)
	assert.Equal(t, types.DiagnosticUnknownMetric, diagnostics[0].Kind)
	assert.Equal(t, types.MetricKey("wobble"), diagnostics[0].Key)
	assert.Equal(t, types.DiagnosticInvalidSpec, diagnostics[1].Kind)
	assert.Equal(t, types.KeyCrestFactor, diagnostics[1].Key)
	assert.Equal(t, types.DiagnosticUnknownMetric, diagnostics[2].Kind)
	assert.Equal(t, types.BandKey("ultra"), diagnostics[2].Key)
}

func TestSpecsResolvesNamesCaseInsensitively(t *testing.T) {
	t.Parallel()

	prof, err := profile.Load(strings.NewReader(`
genre: test
metrics:
  LUFS: {target: -9, tolerance: 1}
  integratedLoudness: {target: -14, tolerance: 2}
bands:
  Sub: {target_db: -14, tol_db: 4}
  LOW_BASS: {target_db: -10, tol_db: 2}
  low_bass: {target_db: -6, tol_db: 3}
`))
	require.NoError(t, err)

	specs, diagnostics := prof.Specs(profile.DefaultCatalog())

	require.Len(t, specs, 3)
	assert.Equal(t, types.BandKey(types.BandLowBass), specs[0].Key)
	assert.InDelta(t, -6.0, specs[0].Target, 0)
	assert.Equal(t, types.BandKey(types.BandSub), specs[1].Key)
	assert.InDelta(t, -14.0, specs[1].Target, 0)
	assert.InDelta(t, 4.0, specs[1].ToleranceLow, 0)
	assert.Equal(t, types.KeyIntegratedLoudness, specs[2].Key)
	assert.InDelta(t, -14.0, specs[2].Target, 0)

	require.Len(t, diagnostics, 2)
	assert.Equal(t, types.DiagnosticInvalidSpec, diagnostics[0].Kind)
	assert.Equal(t, types.KeyIntegratedLoudness, diagnostics[0].Key)
	assert.Contains(t, diagnostics[0].Message, `"LUFS"`)
	assert.Equal(t, types.DiagnosticInvalidSpec, diagnostics[1].Kind)
	assert.Equal(t, types.BandKey(types.BandLowBass), diagnostics[1].Key)
	assert.Contains(t, diagnostics[1].Message, `"LOW_BASS"`)
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := profile.Load(strings.NewReader("genre: x\nunexpected: 1\n"))
	require.ErrorIs(t, err, profile.ErrDecode)

	_, err = profile.Load(strings.NewReader("metrics: {}\n"))
	require.ErrorIs(t, err, profile.ErrDecode)
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := profile.LoadFile("/nonexistent/profile.yaml")
	require.Error(t, err)
}
