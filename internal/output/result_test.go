package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/mixcritic"
	"github.com/farcloser/mixcritic/internal/measure"
	"github.com/farcloser/mixcritic/internal/output"
	"github.com/farcloser/mixcritic/internal/profile"
	"github.com/farcloser/mixcritic/internal/types"
)

func funkResult(t *testing.T) *mixcritic.Result {
	t.Helper()

	prof, err := profile.Builtin("funk")
	require.NoError(t, err)

	return mixcritic.Analyze(mixcritic.Input{
		Profile: prof,
		Measurements: mixcritic.Measurements{
			types.KeyIntegratedLoudness: -8.5,
			types.KeyDynamicRange:       4.2,
			"wobble":                    1,
		},
	}, mixcritic.DefaultConfig())
}

func TestResultToMap(t *testing.T) {
	t.Parallel()

	result := funkResult(t)
	meta := output.ResultToMap(result)

	summary, ok := meta["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "funk", summary["genre"])
	assert.Equal(t, 2, summary["suggestion_count"])
	assert.Equal(t, "adjust", summary["worst_severity"])
	assert.Contains(t, summary, "overall")

	suggestions, ok := meta["suggestions"].([]any)
	require.True(t, ok)
	require.Len(t, suggestions, 2)

	first, ok := suggestions[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "loudness", first["type"])
	assert.Equal(t, "adjust", first["severity"])

	categories, ok := meta["categories"].([]any)
	require.True(t, ok)
	assert.Len(t, categories, len(types.Categories()))

	diagnostics, ok := meta["diagnostics"].([]any)
	require.True(t, ok)
	assert.Len(t, diagnostics, 1)
	assert.NotContains(t, meta, "detections")
}

func TestWorstSeverityWithoutSuggestions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, types.SeverityOk, output.WorstSeverity(&mixcritic.Result{}))
}

func TestFriendlyMap(t *testing.T) {
	t.Parallel()

	meta := output.FriendlyMap(funkResult(t))

	assert.Contains(t, meta["summary"], "2 suggestions against funk (worst: adjust")

	scores, ok := meta["scores"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "n/a", scores["frequency"])

	themes, ok := meta["themes"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, themes, "loudness")
	assert.Contains(t, themes, "dynamics")
}

func TestDetectionToMap(t *testing.T) {
	t.Parallel()

	freq := 7500.0
	meta := output.DetectionToMap(types.HeuristicDetection{
		Type:        types.DetectionSibilance,
		FrequencyHz: &freq,
		IntensityDb: 12,
		Confidence:  0.8,
		Technical:   map[string]float64{"share": 0.2},
	})

	assert.Equal(t, "sibilance", meta["type"])
	assert.InDelta(t, 7500.0, meta["frequency_hz"], 0)
	assert.Equal(t, map[string]any{"share": 0.2}, meta["technical"])

	meta = output.DetectionToMap(types.HeuristicDetection{Type: types.DetectionClipping})
	assert.NotContains(t, meta, "frequency_hz")
	assert.NotContains(t, meta, "technical")
}

func TestReportToMap(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 48000)
	for i := 100; i < 120; i++ {
		samples[i] = 1
	}

	report := measure.Measure(&measure.Audio{
		SampleRate: 48000,
		BitDepth:   types.Depth16,
		Channels:   [][]float64{samples},
	}, measure.DefaultOptions())

	meta := output.ReportToMap(report)

	measurements, ok := meta["measurements"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 20.0, measurements["clipping"], 0)

	clipping, ok := meta["clipping"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, uint64(20), clipping["clipped_samples"])
	assert.Len(t, clipping["channels"], 1)
}
