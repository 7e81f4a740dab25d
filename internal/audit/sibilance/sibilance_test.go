package sibilance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/mixcritic/internal/audit/content"
	"github.com/farcloser/mixcritic/internal/audit/sibilance"
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

func sibilantVocal(freq float64) float64 {
	switch {
	case freq >= 300 && freq < 3500:
		return 1
	case freq >= 6000 && freq < 9000:
		return 0.5
	default:
		return 0.01
	}
}

func TestSibilantVocal(t *testing.T) {
	t.Parallel()

	detection := sibilance.Detect(spectrum(sibilantVocal), nil, sibilance.DefaultOptions(), content.DefaultOptions())
	require.NotNil(t, detection)

	assert.Equal(t, types.DetectionSibilance, detection.Type)
	require.NotNil(t, detection.FrequencyHz)
	assert.InDelta(t, 7500.0, *detection.FrequencyHz, 0)
	assert.InDelta(t, 33.98, detection.IntensityDb, 0.01)
	assert.InDelta(t, 1.0, detection.Confidence, 1e-9)
	assert.Greater(t, detection.Technical["vocal_share"], 0.3)
}

func TestTransientStrengthScalesConfidence(t *testing.T) {
	t.Parallel()

	weak := 0.0
	strong := 1.0

	withWeak := sibilance.Detect(spectrum(sibilantVocal), &weak, sibilance.DefaultOptions(), content.DefaultOptions())
	withStrong := sibilance.Detect(spectrum(sibilantVocal), &strong, sibilance.DefaultOptions(), content.DefaultOptions())

	require.NotNil(t, withWeak)
	require.NotNil(t, withStrong)
	assert.InDelta(t, 0.5, withWeak.Confidence, 1e-9)
	assert.InDelta(t, 1.0, withStrong.Confidence, 1e-9)
}

func TestNotVocal(t *testing.T) {
	t.Parallel()

	bassAndHiss := func(freq float64) float64 {
		switch {
		case freq >= 40 && freq < 250:
			return 1
		case freq >= 6000 && freq < 9000:
			return 0.5
		default:
			return 0.01
		}
	}

	assert.Nil(t, sibilance.Detect(spectrum(bassAndHiss), nil, sibilance.DefaultOptions(), content.DefaultOptions()))
}

func TestFlatSpectrum(t *testing.T) {
	t.Parallel()

	flat := func(float64) float64 { return 0.2 }

	assert.Nil(t, sibilance.Detect(spectrum(flat), nil, sibilance.DefaultOptions(), content.DefaultOptions()))
}

func TestQuietSibilanceBelowThreshold(t *testing.T) {
	t.Parallel()

	quiet := func(freq float64) float64 {
		switch {
		case freq >= 300 && freq < 3500:
			return 1
		case freq >= 6000 && freq < 9000:
			return 0.005 // -26 dB under the 4-12 kHz context
		case freq >= 4000 && freq < 12000:
			return 0.1
		default:
			return 0.001
		}
	}

	assert.Nil(t, sibilance.Detect(spectrum(quiet), nil, sibilance.DefaultOptions(), content.DefaultOptions()))
}

func TestSibilanceSlightlyUnderContext(t *testing.T) {
	t.Parallel()

	underContext := func(freq float64) float64 {
		switch {
		case freq >= 300 && freq < 3500:
			return 1
		case freq >= 6000 && freq < 9000:
			return 0.07
		case freq >= 4000 && freq < 12000:
			return 0.1
		default:
			return 0.001
		}
	}

	detection := sibilance.Detect(spectrum(underContext), nil, sibilance.DefaultOptions(), content.DefaultOptions())
	require.NotNil(t, detection)

	assert.InDelta(t, -3.098, detection.IntensityDb, 0.01)
	assert.InDelta(t, 0.4225, detection.Confidence, 0.001)
}

func TestLoudFundamentalDoesNotHideSibilance(t *testing.T) {
	t.Parallel()

	withFundamental := func(freq float64) float64 {
		if freq == 500 {
			return 100
		}

		return sibilantVocal(freq)
	}

	detection := sibilance.Detect(spectrum(withFundamental), nil, sibilance.DefaultOptions(), content.DefaultOptions())
	require.NotNil(t, detection)

	assert.InDelta(t, 33.98, detection.IntensityDb, 0.01)
	assert.InDelta(t, 1.0, detection.Confidence, 1e-9)
}

func TestInvalidFrame(t *testing.T) {
	t.Parallel()

	assert.Nil(t, sibilance.Detect(nil, nil, sibilance.DefaultOptions(), content.DefaultOptions()))
	assert.Nil(t, sibilance.Detect(&types.SpectralFrame{FreqBins: []float64{1}}, nil,
		sibilance.DefaultOptions(), content.DefaultOptions()))
}
