package masking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/mixcritic/internal/audit/masking"
	"github.com/farcloser/mixcritic/internal/types"
)

func spectrum(mag func(freq float64) float64) *types.SpectralFrame {
	frame := &types.SpectralFrame{}

	for freq := 0.0; freq <= 22050; freq += 25 {
		frame.FreqBins = append(frame.FreqBins, freq)
		frame.Magnitude = append(frame.Magnitude, mag(freq))
	}

	return frame
}

func TestMud(t *testing.T) {
	t.Parallel()

	mud := func(freq float64) float64 {
		if freq >= 200 && freq < 400 {
			return 1
		}

		return 0.1
	}

	detection := masking.Detect(spectrum(mud), masking.DefaultOptions())
	require.NotNil(t, detection)

	assert.Equal(t, types.DetectionMasking, detection.Type)
	require.NotNil(t, detection.FrequencyHz)
	assert.InDelta(t, 300.0, *detection.FrequencyHz, 0)
	assert.InDelta(t, 20.0, detection.IntensityDb, 1e-9)
	assert.Greater(t, detection.Technical["share"], 0.3)
	assert.InDelta(t, 1.0, detection.Confidence, 0.2)
}

func TestBroadLowEndIsNotMud(t *testing.T) {
	t.Parallel()

	broad := func(freq float64) float64 {
		if freq >= 100 && freq < 800 {
			return 1
		}

		return 0.01
	}

	assert.Nil(t, masking.Detect(spectrum(broad), masking.DefaultOptions()))
}

func TestPeakWithoutEnergyShareIsNotMud(t *testing.T) {
	t.Parallel()

	bright := func(freq float64) float64 {
		switch {
		case freq >= 200 && freq < 400:
			return 1
		case freq >= 5000:
			return 1
		default:
			return 0.1
		}
	}

	assert.Nil(t, masking.Detect(spectrum(bright), masking.DefaultOptions()))
}
