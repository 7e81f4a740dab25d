package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/mixcritic/internal/audit/shared"
)

const maxSNRDb = 120.0

// windowStability is 1 minus the coefficient of variation of the window levels, clamped to 0..1.
func windowStability(windowRMS []float64) (float64, bool) {
	if len(windowRMS) < 2 {
		return 0, false
	}

	mean, std := stat.MeanStdDev(windowRMS, nil)
	if mean == 0 {
		return 0, false
	}

	return shared.Clamp01(1 - std/mean), true
}

// snrEstimate compares the loudest window to the quietest, treating the quietest as the noise floor.
func snrEstimate(windowRMS []float64) (float64, bool) {
	if len(windowRMS) < 2 {
		return 0, false
	}

	loudest := floats.Max(windowRMS)
	quietest := floats.Min(windowRMS)

	if loudest == 0 {
		return 0, false
	}

	if quietest == 0 {
		return maxSNRDb, true
	}

	return math.Min(maxSNRDb, 20*math.Log10(loudest/quietest)), true
}
