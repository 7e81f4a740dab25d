// Package sibilance detects excess energy in the 6-9 kHz "s" range.
package sibilance

import (
	"math"

	"github.com/farcloser/mixcritic/internal/audit/content"
	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

// Options configures the detector.
type Options struct {
	LoHz    float64 `yaml:"lo_hz"`
	HiHz    float64 `yaml:"hi_hz"`
	RefLoHz float64 `yaml:"ref_lo_hz"`
	RefHiHz float64 `yaml:"ref_hi_hz"`
	// ThresholdDb is the level of the band relative to its reference context that must be exceeded.
	ThresholdDb float64 `yaml:"threshold_db"`
}

// DefaultOptions returns the default bands and threshold.
func DefaultOptions() Options {
	return Options{
		LoHz:        6000,
		HiHz:        9000,
		RefLoHz:     4000,
		RefHiHz:     12000,
		ThresholdDb: -20,
	}
}

// Detect looks for sibilance. The band level relative to its 4-12 kHz context must exceed the threshold.
// Detections are dropped when the frame does not look vocal.
// A transient strength in 0..1 scales confidence when provided.
func Detect(
	frame *types.SpectralFrame,
	transientStrength *float64,
	opts Options,
	gate content.Options,
) *types.HeuristicDetection {
	if !frame.Valid() {
		return nil
	}

	band, bandBins := shared.BandMean(frame, opts.LoHz, opts.HiHz)
	ref, refBins := shared.BandMeanExcluding(frame, opts.RefLoHz, opts.RefHiHz, opts.LoHz, opts.HiHz)

	if bandBins == 0 || refBins == 0 {
		return nil
	}

	excessDb := shared.RatioDb(band, ref)
	if excessDb <= opts.ThresholdDb {
		return nil
	}

	vocal, vocalShare := content.Vocal(frame, gate)
	if !vocal {
		return nil
	}

	// Level with the context is an even call for the default threshold.
	span := max(2*math.Abs(opts.ThresholdDb), 1)

	confidence := shared.Clamp01((excessDb - opts.ThresholdDb) / span)
	if transientStrength != nil {
		confidence *= 0.5 + 0.5*shared.Clamp01(*transientStrength)
	}

	center := (opts.LoHz + opts.HiHz) / 2

	return &types.HeuristicDetection{
		Type:        types.DetectionSibilance,
		FrequencyHz: &center,
		IntensityDb: excessDb,
		Confidence:  confidence,
		Technical: map[string]float64{
			"excess_db":    excessDb,
			"threshold_db": opts.ThresholdDb,
			"vocal_share":  vocalShare,
		},
	}
}
