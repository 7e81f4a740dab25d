package measure

import (
	"log/slog"

	"github.com/farcloser/mixcritic/internal/audit/clipping"
	"github.com/farcloser/mixcritic/internal/types"
)

// Options configures the measurement pass.
type Options struct {
	FFTSize    int              `yaml:"fft_size"`    // default 8192
	MaxWindows int              `yaml:"max_windows"` // default 100
	Clipping   clipping.Options `yaml:"clipping"`
	Silence    SilenceOptions   `yaml:"silence"`
}

// DefaultOptions returns the default analysis sizes.
func DefaultOptions() Options {
	return Options{
		FFTSize:    8192,
		MaxWindows: 100,
		Clipping:   clipping.DefaultOptions(),
		Silence:    SilenceOptions{ThresholdDb: -60, WindowMs: 50},
	}
}

// Report is everything measured on a track.
type Report struct {
	Measurements types.Measurements
	Spectrum     *types.SpectralFrame
	Quality      types.QualitySignals
	Loudness     Loudness
	Peaks        Peaks
	Clipping     *types.ClippingDetection
	Frames       int

	// Silent padding, excluded from the spectrum and the quality signals.
	LeadingSilenceSec  float64
	TrailingSilenceSec float64
}

// Measure runs every analysis over the audio. Measurements that cannot be computed (a mono
// track has no stereo correlation, a short one no loudness range) are left out.
// Leading and trailing silence is skipped by the spectral analysis, and the reported duration
// covers the content between them.
func Measure(audio *Audio, opts Options) *Report {
	defaults := DefaultOptions()

	if opts.FFTSize <= 0 {
		opts.FFTSize = defaults.FFTSize
	}

	if opts.MaxWindows <= 0 {
		opts.MaxWindows = defaults.MaxWindows
	}

	if opts.Silence.ThresholdDb == 0 {
		opts.Silence.ThresholdDb = defaults.Silence.ThresholdDb
	}

	if opts.Silence.WindowMs <= 0 {
		opts.Silence.WindowMs = defaults.Silence.WindowMs
	}

	measurements := types.Measurements{}
	report := &Report{
		Measurements: measurements,
		Frames:       audio.Frames(),
	}

	slog.Debug("measure.Measure", "stage", "loudness", "frames", report.Frames)

	report.Loudness = measureLoudness(audio)
	if report.Loudness.GatedBlocks > 0 {
		measurements[types.KeyIntegratedLoudness] = report.Loudness.IntegratedLUFS
	}

	if report.Loudness.ShortTermBlocks > 0 {
		measurements[types.KeyLoudnessRange] = report.Loudness.LoudnessRange
	}

	if report.Loudness.DRScore > 0 {
		measurements[types.KeyDynamicRange] = float64(report.Loudness.DRScore)
	}

	slog.Debug("measure.Measure", "stage", "peaks")

	report.Peaks = measurePeaks(audio.Channels)
	if report.Frames > 0 {
		measurements[types.KeyTruePeak] = report.Peaks.TruePeakDb
	}

	if crest, ok := crestFactor(audio.Channels); ok {
		measurements[types.KeyCrestFactor] = crest
	}

	if offset, ok := dcOffset(audio.Channels); ok {
		measurements[types.KeyDCOffset] = offset
	}

	if len(audio.Channels) == 2 {
		if corr, ok := correlation(audio.Channels[0], audio.Channels[1]); ok {
			measurements[types.KeyStereoCorrelation] = corr
		}
	}

	report.Clipping = clipping.Scan(audio.Channels, opts.Clipping)
	measurements[types.KeyClipping] = float64(report.Clipping.ClippedSamples)

	lead, trail := silentEdges(audio.Channels, audio.SampleRate, opts.Silence)
	content := audio.Mono()[lead : report.Frames-trail]

	if audio.SampleRate > 0 {
		report.LeadingSilenceSec = float64(lead) / float64(audio.SampleRate)
		report.TrailingSilenceSec = float64(trail) / float64(audio.SampleRate)
	}

	slog.Debug("measure.Measure", "stage", "spectrum", "fft size", opts.FFTSize,
		"leading silence", report.LeadingSilenceSec, "trailing silence", report.TrailingSilenceSec)

	frame, windowRMS := averageSpectrum(content, audio.SampleRate, opts.FFTSize, opts.MaxWindows)
	report.Spectrum = frame

	if frame != nil {
		for name, level := range bandLevels(frame) {
			measurements[types.BandKey(name)] = level
		}

		if value, ok := centroid(frame); ok {
			measurements[types.KeySpectralCentroid] = value
		}

		if value, ok := rolloff(frame); ok {
			measurements[types.KeySpectralRolloff] = value
		}
	}

	var duration float64
	if audio.SampleRate > 0 {
		duration = float64(len(content)) / float64(audio.SampleRate)
	}

	oversampled := true

	report.Quality = types.QualitySignals{
		DurationSec: &duration,
		Oversampled: &oversampled,
	}

	if stability, ok := windowStability(windowRMS); ok {
		report.Quality.WindowStability = &stability
	}

	if snr, ok := snrEstimate(windowRMS); ok {
		report.Quality.SNRDb = &snr
	}

	slog.Debug("measure.Measure", "stage", "done", "measurements", len(measurements))

	return report
}
