// Package severity maps tolerance ratios to severity levels.
package severity

import (
	"math"

	"github.com/farcloser/mixcritic/internal/types"
)

// Upper bounds (inclusive) of each level.
const (
	OkMax     = 1.0
	WatchMax  = 2.0
	AdjustMax = 3.0
)

// Classify returns the severity of a tolerance ratio. The sign of the ratio is ignored.
// A NaN ratio is treated as on target.
func Classify(ratio float64) types.Severity {
	ratio = math.Abs(ratio)

	switch {
	case math.IsNaN(ratio), ratio <= OkMax:
		return types.SeverityOk
	case ratio <= WatchMax:
		return types.SeverityWatch
	case ratio <= AdjustMax:
		return types.SeverityAdjust
	default:
		return types.SeverityFix
	}
}

// FromConfidence grades a heuristic detection, mapping confidence 0..1 onto ratios 1..4.
func FromConfidence(confidence float64) types.Severity {
	return Classify(1 + 3*math.Max(0, math.Min(1, confidence)))
}
