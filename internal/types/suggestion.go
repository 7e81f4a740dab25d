package types

import "time"

// Category groups metrics into sub-scores.
type Category string

const (
	CategoryDynamics  Category = "dynamics"
	CategoryTechnical Category = "technical"
	CategoryLoudness  Category = "loudness"
	CategoryFrequency Category = "frequency"
)

// Categories returns the categories in presentation order.
func Categories() []Category {
	return []Category{CategoryLoudness, CategoryDynamics, CategoryFrequency, CategoryTechnical}
}

// CategoryScore is the aggregated sub-score of one category. Score is nil when no member was available.
type CategoryScore struct {
	Category   Category
	Score      *float64 // 0..100
	ValidCount int
	TotalCount int
}

// DependencyBonus records one rule firing.
type DependencyBonus struct {
	RuleID       string
	AffectedKeys []MetricKey
	Bonus        float64
	Rationale    string
}

// Theme groups suggestions for presentation.
type Theme string

const (
	ThemeLoudness  Theme = "loudness"
	ThemeDynamics  Theme = "dynamics"
	ThemeLows      Theme = "lows"
	ThemeMids      Theme = "mids"
	ThemeHighs     Theme = "highs"
	ThemeStereo    Theme = "stereo"
	ThemeArtifacts Theme = "artifacts"
	ThemeOther     Theme = "other"
)

// Themes returns the themes in presentation order.
func Themes() []Theme {
	return []Theme{ThemeLoudness, ThemeDynamics, ThemeLows, ThemeMids, ThemeHighs, ThemeStereo, ThemeArtifacts, ThemeOther}
}

// Technical is the numeric payload behind a suggestion.
type Technical struct {
	Value     float64
	Target    float64
	Delta     float64
	Tolerance float64
	ZScore    float64
}

// Suggestion is one actionable recommendation.
type Suggestion struct {
	Type       string
	Subtype    string
	Theme      Theme
	Message    string
	Action     string
	Rationale  string
	Technical  Technical
	Priority   float64
	Confidence float64
	Severity   Severity
	Genre      string
	Timestamp  time.Time
}

// ThemeGroup holds the suggestions of one theme, in priority order.
type ThemeGroup struct {
	Theme       Theme
	Suggestions []Suggestion
}
