package mixcritic

import (
	"github.com/farcloser/mixcritic/internal/profile"
	"github.com/farcloser/mixcritic/internal/types"
)

type (
	MetricKey          = types.MetricKey
	Measurements       = types.Measurements
	MetricSpec         = types.MetricSpec
	Deviation          = types.Deviation
	Direction          = types.Direction
	Severity           = types.Severity
	Category           = types.Category
	CategoryScore      = types.CategoryScore
	DependencyBonus    = types.DependencyBonus
	SpectralFrame      = types.SpectralFrame
	DetectionType      = types.DetectionType
	HeuristicDetection = types.HeuristicDetection
	QualitySignals     = types.QualitySignals
	Suggestion         = types.Suggestion
	Theme              = types.Theme
	ThemeGroup         = types.ThemeGroup
	Diagnostic         = types.Diagnostic
	Profile            = profile.Profile
)

const (
	SeverityOk     = types.SeverityOk
	SeverityWatch  = types.SeverityWatch
	SeverityAdjust = types.SeverityAdjust
	SeverityFix    = types.SeverityFix

	DetectionSibilance = types.DetectionSibilance
	DetectionHarshness = types.DetectionHarshness
	DetectionMasking   = types.DetectionMasking
	DetectionClipping  = types.DetectionClipping
)

// Assessment is the full scoring of one metric.
type Assessment struct {
	Deviation

	Severity   Severity
	Confidence float64
	Bonus      float64 // summed dependency bonus
	Priority   float64
}
