// Package clipping finds runs of samples at or near full scale.
package clipping

import (
	"math"
	"strconv"

	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

// Options configures the scan. Zero values are replaced by defaults.
type Options struct {
	Threshold float64 `yaml:"threshold"` // |sample| at or above is clipped, default 0.98
	MinRun    uint64  `yaml:"min_run"`   // shortest run that counts, default 3
	MinTotal  uint64  `yaml:"min_total"` // clipped samples needed to report, default 10
}

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{Threshold: 0.98, MinRun: 3, MinTotal: 10}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()

	if o.Threshold <= 0 {
		o.Threshold = defaults.Threshold
	}

	if o.MinRun == 0 {
		o.MinRun = defaults.MinRun
	}

	if o.MinTotal == 0 {
		o.MinTotal = defaults.MinTotal
	}

	return o
}

// Scan counts clipped runs per channel. Runs shorter than MinRun are ignored.
func Scan(channels [][]float64, opts Options) *types.ClippingDetection {
	opts = opts.withDefaults()

	result := &types.ClippingDetection{
		Channels: make([]types.ChannelClipping, len(channels)),
	}

	flush := func(ch int, run uint64) {
		if run < opts.MinRun {
			return
		}

		result.Channels[ch].Events++
		result.Channels[ch].ClippedSamples += run

		if run > result.Channels[ch].LongestRun {
			result.Channels[ch].LongestRun = run
		}

		result.Events++
		result.ClippedSamples += run

		if run > result.LongestRun {
			result.LongestRun = run
		}
	}

	for ch, samples := range channels {
		var consecutive uint64

		for _, sample := range samples {
			result.Samples++

			abs := math.Abs(sample)
			if abs > result.Peak {
				result.Peak = abs
			}

			if abs >= opts.Threshold {
				consecutive++

				continue
			}

			flush(ch, consecutive)
			consecutive = 0
		}

		// Trailing run.
		flush(ch, consecutive)
	}

	return result
}

// Detect returns a clipping detection when both the run length and total count thresholds are met.
func Detect(channels [][]float64, opts Options) *types.HeuristicDetection {
	opts = opts.withDefaults()
	scan := Scan(channels, opts)

	if scan.LongestRun < opts.MinRun || scan.ClippedSamples < opts.MinTotal {
		return nil
	}

	percentage := 0.0
	if scan.Samples > 0 {
		percentage = float64(scan.ClippedSamples) / float64(scan.Samples) * 100
	}

	technical := map[string]float64{
		"clipped_samples": float64(scan.ClippedSamples),
		"runs":            float64(scan.Events),
		"longest_run":     float64(scan.LongestRun),
		"percentage":      percentage,
		"threshold":       opts.Threshold,
	}

	for ch, stats := range scan.Channels {
		technical["channel_"+strconv.Itoa(ch)+"_clipped_samples"] = float64(stats.ClippedSamples)
	}

	// One percent of the track clipped is as sure as it gets.
	confidence := shared.Clamp01(0.5 + percentage/2)

	return &types.HeuristicDetection{
		Type:        types.DetectionClipping,
		IntensityDb: shared.ToDb(scan.Peak),
		Confidence:  confidence,
		Technical:   technical,
	}
}

