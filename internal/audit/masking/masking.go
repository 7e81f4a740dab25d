// Package masking detects low-mid "mud": energy piling up between 200 and 400 Hz.
package masking

import (
	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

// Options configures the detector. Both the share and the excess thresholds must be exceeded.
type Options struct {
	LoHz      float64 `yaml:"lo_hz"`
	HiHz      float64 `yaml:"hi_hz"`
	BelowLoHz float64 `yaml:"below_lo_hz"`
	AboveHiHz float64 `yaml:"above_hi_hz"`
	MinShare  float64 `yaml:"min_share"`
	ExcessDb  float64 `yaml:"excess_db"`
}

// DefaultOptions returns 200-400 Hz against 100-200 Hz and 400-800 Hz, 30% share and 6 dB excess.
func DefaultOptions() Options {
	return Options{
		LoHz:      200,
		HiHz:      400,
		BelowLoHz: 100,
		AboveHiHz: 800,
		MinShare:  0.30,
		ExcessDb:  6,
	}
}

// Detect reports mud when the band holds more than MinShare of the total energy and stands
// ExcessDb above the mean of its adjacent bands.
func Detect(frame *types.SpectralFrame, opts Options) *types.HeuristicDetection {
	if !frame.Valid() {
		return nil
	}

	share := shared.EnergyShare(frame, opts.LoHz, opts.HiHz)
	if share <= opts.MinShare {
		return nil
	}

	band, bins := shared.BandMean(frame, opts.LoHz, opts.HiHz)
	below, belowBins := shared.BandMean(frame, opts.BelowLoHz, opts.LoHz)
	above, aboveBins := shared.BandMean(frame, opts.HiHz, opts.AboveHiHz)

	if bins == 0 || belowBins+aboveBins == 0 {
		return nil
	}

	var adjacent float64

	switch {
	case belowBins == 0:
		adjacent = above
	case aboveBins == 0:
		adjacent = below
	default:
		adjacent = (below + above) / 2
	}

	excessDb := shared.RatioDb(band, adjacent)
	if excessDb <= opts.ExcessDb {
		return nil
	}

	center := (opts.LoHz + opts.HiHz) / 2
	confidence := 0.5*shared.Clamp01(share/(2*opts.MinShare)) + 0.5*shared.Clamp01(excessDb/(2*opts.ExcessDb))

	return &types.HeuristicDetection{
		Type:        types.DetectionMasking,
		FrequencyHz: &center,
		IntensityDb: excessDb,
		Confidence:  confidence,
		Technical: map[string]float64{
			"share":        share,
			"min_share":    opts.MinShare,
			"excess_db":    excessDb,
			"threshold_db": opts.ExcessDb,
		},
	}
}
