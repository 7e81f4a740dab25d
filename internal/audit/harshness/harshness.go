// Package harshness detects narrow resonant build-ups in the 3-5 kHz range.
package harshness

import (
	"github.com/farcloser/mixcritic/internal/audit/content"
	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

// Options configures the detector.
type Options struct {
	LoHz        float64 `yaml:"lo_hz"`
	HiHz        float64 `yaml:"hi_hz"`
	WidthHz     float64 `yaml:"width_hz"`
	StepHz      float64 `yaml:"step_hz"`
	ThresholdDb float64 `yaml:"threshold_db"`
}

// DefaultOptions returns 200 Hz sub-bands sliding by 100 Hz across 3-5 kHz with a 10 dB threshold.
func DefaultOptions() Options {
	return Options{
		LoHz:        3000,
		HiHz:        5000,
		WidthHz:     200,
		StepHz:      100,
		ThresholdDb: 10,
	}
}

type subBand struct {
	center   float64
	excessDb float64
}

// scan returns every sub-band with its excess over the mean of its two neighbours.
func scan(frame *types.SpectralFrame, opts Options) []subBand {
	if opts.WidthHz <= 0 || opts.StepHz <= 0 {
		return nil
	}

	var bands []subBand

	for lo := opts.LoHz; lo+opts.WidthHz <= opts.HiHz; lo += opts.StepHz {
		hi := lo + opts.WidthHz

		level, bins := shared.BandMean(frame, lo, hi)
		left, leftBins := shared.BandMean(frame, lo-opts.WidthHz, lo)
		right, rightBins := shared.BandMean(frame, hi, hi+opts.WidthHz)

		if bins == 0 || leftBins == 0 || rightBins == 0 {
			continue
		}

		bands = append(bands, subBand{
			center:   lo + opts.WidthHz/2,
			excessDb: shared.RatioDb(level, (left+right)/2),
		})
	}

	return bands
}

// Detect reports the worst sub-band exceeding the threshold. Percussive material is not flagged.
func Detect(frame *types.SpectralFrame, opts Options, gate content.Options) *types.HeuristicDetection {
	if !frame.Valid() {
		return nil
	}

	var (
		worst subBand
		found bool
		count int
	)

	for _, band := range scan(frame, opts) {
		if band.excessDb <= opts.ThresholdDb {
			continue
		}

		count++

		if !found || band.excessDb > worst.excessDb {
			worst = band
			found = true
		}
	}

	if !found {
		return nil
	}

	percussive, lowShare, highShare := content.Percussive(frame, gate)
	if percussive {
		return nil
	}

	center := worst.center

	return &types.HeuristicDetection{
		Type:        types.DetectionHarshness,
		FrequencyHz: &center,
		IntensityDb: worst.excessDb,
		Confidence:  shared.Clamp01(worst.excessDb / (2 * opts.ThresholdDb)),
		Technical: map[string]float64{
			"excess_db":       worst.excessDb,
			"threshold_db":    opts.ThresholdDb,
			"offending_bands": float64(count),
			"low_share":       lowShare,
			"high_share":      highShare,
		},
	}
}
