package measure_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/mixcritic/internal/measure"
	"github.com/farcloser/mixcritic/internal/types"
)

const sampleRate = 48000

func sine(freq, amplitude float64, seconds int) []float64 {
	samples := make([]float64, sampleRate*seconds)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}

	return samples
}

func writeWAV(t *testing.T, channels [][]float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")

	file, err := os.Create(path)
	require.NoError(t, err)

	frames := len(channels[0])
	data := make([]int, 0, frames*len(channels))

	for i := range frames {
		for _, channel := range channels {
			data = append(data, int(math.Round(channel[i]*32767)))
		}
	}

	encoder := wav.NewEncoder(file, sampleRate, 16, len(channels), 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())

	return path
}

func TestFromWAV(t *testing.T) {
	t.Parallel()

	tone := sine(1000, 0.5, 1)
	path := writeWAV(t, [][]float64{tone, tone})

	file, err := os.Open(path)
	require.NoError(t, err)

	defer file.Close()

	decoded, err := measure.FromWAV(file)
	require.NoError(t, err)

	assert.Equal(t, sampleRate, decoded.SampleRate)
	assert.Equal(t, types.Depth16, decoded.BitDepth)
	require.Len(t, decoded.Channels, 2)
	assert.Equal(t, sampleRate, decoded.Frames())
	assert.InDelta(t, 1.0, decoded.DurationSec(), 1e-9)

	for i := range 100 {
		assert.InDelta(t, tone[i], decoded.Channels[0][i], 1.0/32767)
	}
}

func TestFromWAVRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := measure.FromWAV(bytes.NewReader([]byte("definitely not a riff header, just text")))
	require.ErrorIs(t, err, measure.ErrNotWAV)
}

func TestFromPCM(t *testing.T) {
	t.Parallel()

	// Two stereo frames of 16-bit little endian: (16384, -16384), (0, 32767).
	raw := []byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x00, 0xFF, 0x7F}

	decoded, err := measure.FromPCM(bytes.NewReader(raw), types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   types.Depth16,
		Channels:   2,
	})
	require.NoError(t, err)

	require.Len(t, decoded.Channels, 2)
	assert.Equal(t, 2, decoded.Frames())
	assert.InDelta(t, 0.5, decoded.Channels[0][0], 1e-4)
	assert.InDelta(t, -0.5, decoded.Channels[1][0], 1e-4)
	assert.InDelta(t, 1.0, decoded.Channels[1][1], 1e-4)

	mono := decoded.Mono()
	assert.InDelta(t, 0.0, mono[0], 1e-9)
	assert.InDelta(t, 0.5, mono[1], 1e-4)
}

func TestMeasureStereoSine(t *testing.T) {
	t.Parallel()

	tone := sine(1000, 0.5, 10)
	report := measure.Measure(&measure.Audio{
		SampleRate: sampleRate,
		BitDepth:   types.Depth24,
		Channels:   [][]float64{tone, tone},
	}, measure.DefaultOptions())

	values := report.Measurements

	assert.InDelta(t, 1.0, values[types.KeyStereoCorrelation], 1e-9)
	assert.InDelta(t, 3.01, values[types.KeyCrestFactor], 0.05)
	assert.InDelta(t, -6.02, values[types.KeyTruePeak], 0.2)
	assert.InDelta(t, -6.02, report.Peaks.SamplePeakDb, 0.01)
	assert.InDelta(t, 0.0, values[types.KeyDCOffset], 1e-3)
	assert.InDelta(t, -6.0, values[types.KeyIntegratedLoudness], 0.5)
	assert.InDelta(t, 0.0, values[types.KeyLoudnessRange], 0.1)
	assert.InDelta(t, 0.0, values[types.KeyClipping], 0)
	assert.InDelta(t, 1000.0, values[types.KeySpectralCentroid], 50)
	assert.InDelta(t, 1000.0, values[types.KeySpectralRolloff], 20)

	dr, ok := values[types.KeyDynamicRange]
	require.True(t, ok)
	assert.GreaterOrEqual(t, dr, 1.0)
	assert.LessOrEqual(t, dr, 4.0)

	assert.InDelta(t, 0.0, values[types.BandKey(types.BandMid)], 0.1)
	assert.Less(t, values[types.BandKey(types.BandSub)], -60.0)
	assert.Less(t, values[types.BandKey(types.BandAir)], -60.0)

	require.True(t, report.Spectrum.Valid())
	assert.InDelta(t, sampleRate/2.0, report.Spectrum.FreqBins[len(report.Spectrum.FreqBins)-1], 1e-9)

	require.NotNil(t, report.Quality.DurationSec)
	assert.InDelta(t, 10.0, *report.Quality.DurationSec, 1e-9)
	require.NotNil(t, report.Quality.Oversampled)
	assert.True(t, *report.Quality.Oversampled)
	require.NotNil(t, report.Quality.WindowStability)
	assert.InDelta(t, 1.0, *report.Quality.WindowStability, 0.01)
	require.NotNil(t, report.Quality.SNRDb)
	assert.Less(t, *report.Quality.SNRDb, 1.0)
}

func TestMeasureMonoHasNoCorrelation(t *testing.T) {
	t.Parallel()

	report := measure.Measure(&measure.Audio{
		SampleRate: sampleRate,
		BitDepth:   types.Depth16,
		Channels:   [][]float64{sine(440, 0.25, 4)},
	}, measure.Options{})

	_, ok := report.Measurements[types.KeyStereoCorrelation]
	assert.False(t, ok)

	_, ok = report.Measurements[types.KeyIntegratedLoudness]
	assert.True(t, ok)
}

func TestMeasureSilence(t *testing.T) {
	t.Parallel()

	silence := make([]float64, sampleRate*5)
	report := measure.Measure(&measure.Audio{
		SampleRate: sampleRate,
		BitDepth:   types.Depth16,
		Channels:   [][]float64{silence, silence},
	}, measure.DefaultOptions())

	for _, key := range []types.MetricKey{
		types.KeyIntegratedLoudness,
		types.KeyLoudnessRange,
		types.KeyDynamicRange,
		types.KeyCrestFactor,
		types.KeyStereoCorrelation,
		types.KeySpectralCentroid,
		types.KeySpectralRolloff,
		types.BandKey(types.BandMid),
	} {
		_, ok := report.Measurements[key]
		assert.False(t, ok, key)
	}

	assert.InDelta(t, -120.0, report.Measurements[types.KeyTruePeak], 0)
	assert.Nil(t, report.Quality.WindowStability)
	assert.Nil(t, report.Quality.SNRDb)
}

func TestMeasureCountsClipping(t *testing.T) {
	t.Parallel()

	tone := sine(100, 0.5, 2)
	for i := 1000; i < 1020; i++ {
		tone[i] = 1.0
	}

	report := measure.Measure(&measure.Audio{
		SampleRate: sampleRate,
		BitDepth:   types.Depth16,
		Channels:   [][]float64{tone},
	}, measure.DefaultOptions())

	assert.InDelta(t, 20.0, report.Measurements[types.KeyClipping], 0)
	require.NotNil(t, report.Clipping)
	assert.Equal(t, uint64(20), report.Clipping.LongestRun)
}

func TestMeasureSkipsSilentEdges(t *testing.T) {
	t.Parallel()

	track := make([]float64, 0, sampleRate*7/2)
	track = append(track, make([]float64, sampleRate)...)
	track = append(track, sine(1000, 0.5, 2)...)
	track = append(track, make([]float64, sampleRate/2)...)

	report := measure.Measure(&measure.Audio{
		SampleRate: sampleRate,
		BitDepth:   types.Depth16,
		Channels:   [][]float64{track},
	}, measure.DefaultOptions())

	assert.InDelta(t, 1.0, report.LeadingSilenceSec, 1e-9)
	assert.InDelta(t, 0.5, report.TrailingSilenceSec, 1e-9)
	require.NotNil(t, report.Quality.DurationSec)
	assert.InDelta(t, 2.0, *report.Quality.DurationSec, 1e-9)
	require.NotNil(t, report.Quality.SNRDb)
	assert.Less(t, *report.Quality.SNRDb, 1.0)
}
