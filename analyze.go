package mixcritic

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/farcloser/mixcritic/internal/audit/clipping"
	"github.com/farcloser/mixcritic/internal/audit/harshness"
	"github.com/farcloser/mixcritic/internal/audit/masking"
	"github.com/farcloser/mixcritic/internal/audit/sibilance"
	"github.com/farcloser/mixcritic/internal/profile"
	"github.com/farcloser/mixcritic/internal/scoring/category"
	"github.com/farcloser/mixcritic/internal/scoring/dependency"
	"github.com/farcloser/mixcritic/internal/scoring/priority"
	"github.com/farcloser/mixcritic/internal/scoring/severity"
	"github.com/farcloser/mixcritic/internal/scoring/tolerance"
	"github.com/farcloser/mixcritic/internal/suggest"
	"github.com/farcloser/mixcritic/internal/types"
)

/*
Usage:

prof, err := profile.Builtin("funk")
result := mixcritic.Analyze(mixcritic.Input{
    Profile:      prof,
    Measurements: mixcritic.Measurements{"integratedLoudness": -8.5, "dynamicRange": 4.2},
    AnalyzedAt:   time.Now(),
}, mixcritic.DefaultConfig())

// Ranked suggestions
for _, s := range result.Suggestions {
    fmt.Printf("[%s] %s\n", s.Severity, s.Message)
}

// Masters are held to stricter clipping and peak rules
result = mixcritic.Analyze(input, mixcritic.ConfigForStage(mixcritic.StageMaster))

// Category sub-scores (nil when nothing in the category was measured)
for _, c := range result.Categories {
    if c.Score != nil {
        fmt.Printf("%s: %.0f\n", c.Category, *c.Score)
    }
}

*/

// Input is everything one analysis looks at. Only Measurements and Profile feed the scoring;
// Spectrum and Channels feed the heuristic detectors. All of it is read-only.
type Input struct {
	Profile      *Profile
	Measurements Measurements

	// Spectrum is an averaged magnitude spectrum. Nil skips the spectral detectors.
	Spectrum *SpectralFrame
	// Channels are normalized samples (-1..1), one slice per channel. Nil skips clipping detection.
	Channels [][]float64
	// TransientStrength (0..1) sharpens sibilance confidence when known.
	TransientStrength *float64

	Quality QualitySignals

	// AnalyzedAt stamps the suggestions.
	AnalyzedAt time.Time
}

// Result is the outcome of an analysis.
type Result struct {
	Genre string

	Categories []CategoryScore
	Overall    *float64 // 0..100, nil when no category could be scored

	Deviations  []Assessment // sorted by key
	Suggestions []Suggestion // priority order
	Themes      []ThemeGroup
	Detections  []HeuristicDetection
	Bonuses     []DependencyBonus
	Diagnostics []Diagnostic
}

// Analyze scores measurements against the profile, runs the heuristics and builds the suggestions.
// It never fails: unusable inputs are skipped and reported as diagnostics.
func Analyze(in Input, cfg EngineConfig) *Result {
	applyDefaults(&cfg)

	result := &Result{}

	var specs []MetricSpec

	if in.Profile != nil {
		result.Genre = in.Profile.Genre
		specs, result.Diagnostics = in.Profile.Specs(profile.DefaultCatalog())
	}

	measurements, unknown := canonicalize(in.Measurements)
	result.Diagnostics = append(result.Diagnostics, unknown...)

	deviations, invalid := score(specs, measurements)
	result.Diagnostics = append(result.Diagnostics, invalid...)

	bonuses, fired := dependency.Resolve(cfg.Rules, deviations)
	result.Bonuses = fired

	calc := priority.NewCalculator(specs)
	scored := make([]suggest.Scored, 0, len(deviations))

	for _, key := range sortedKeys(deviations) {
		dev := deviations[key]
		assessment := Assessment{
			Deviation:  dev,
			Severity:   severity.Classify(dev.Ratio),
			Confidence: cfg.Confidence.For(in.Quality, key),
			Bonus:      bonuses[key],
		}
		assessment.Priority = calc.Priority(key, assessment.Severity, assessment.Confidence, assessment.Bonus)

		result.Deviations = append(result.Deviations, assessment)
		scored = append(scored, suggest.Scored{
			Deviation:  dev,
			Severity:   assessment.Severity,
			Priority:   assessment.Priority,
			Confidence: assessment.Confidence,
			Notes:      notesFor(key, fired),
		})
	}

	result.Categories = category.Scores(deviations, measurements)
	if overall, ok := category.Overall(result.Categories); ok {
		result.Overall = &overall
	}

	result.Detections = detect(in, cfg)

	findings := make([]suggest.Finding, 0, len(result.Detections))

	for _, detection := range result.Detections {
		confidence := priority.Confidence(append(cfg.Confidence.Factors(in.Quality, ""), detection.Confidence)...)
		sev := severity.FromConfidence(detection.Confidence)

		findings = append(findings, suggest.Finding{
			Detection: detection,
			Severity:  sev,
			Priority:  priority.Priority(cfg.HeuristicWeights[detection.Type], sev, confidence, 0),
		})
	}

	result.Suggestions = suggest.Build(suggest.Input{
		Genre:      result.Genre,
		Deviations: scored,
		Findings:   findings,
		AnalyzedAt: in.AnalyzedAt,
	})
	result.Themes = suggest.Group(result.Suggestions)

	return result
}

// score computes deviations for every spec with an available measurement.
func score(specs []MetricSpec, measurements Measurements) (map[MetricKey]Deviation, []Diagnostic) {
	deviations := make(map[MetricKey]Deviation, len(specs))

	var diagnostics []Diagnostic

	for _, spec := range specs {
		value, ok := measurements.Value(spec.Key)
		if !ok {
			continue
		}

		dev, err := tolerance.Score(spec, value)

		switch {
		case err == nil:
			deviations[spec.Key] = dev
		case errors.Is(err, tolerance.ErrInvalidSpec):
			diagnostics = append(diagnostics, Diagnostic{
				Key:     spec.Key,
				Kind:    types.DiagnosticInvalidSpec,
				Message: err.Error(),
			})
		}
	}

	return deviations, diagnostics
}

// canonicalize resolves metric aliases. A finite value wins over an unavailable one, then the
// canonical key wins over its aliases.
func canonicalize(measurements Measurements) (Measurements, []Diagnostic) {
	canonical := make(Measurements, len(measurements))

	var diagnostics []Diagnostic

	for _, key := range measurements.Keys() {
		if resolved, ok := types.ParseMetricKey(string(key)); ok {
			_, exists := canonical[resolved]
			_, held := canonical.Value(resolved)
			_, finite := measurements.Value(key)

			if !exists || (finite && (!held || resolved == key)) {
				canonical[resolved] = measurements[key]
			}

			continue
		}

		diagnostics = append(diagnostics, Diagnostic{
			Key:     key,
			Kind:    types.DiagnosticUnknownMetric,
			Message: fmt.Sprintf("measurement %q is not a known metric", key),
		})
	}

	return canonical, diagnostics
}

func detect(in Input, cfg EngineConfig) []HeuristicDetection {
	heuristics := cfg.Heuristics

	var detections []HeuristicDetection

	if in.Spectrum.Valid() {
		if det := sibilance.Detect(in.Spectrum, in.TransientStrength, heuristics.Sibilance, heuristics.Content); det != nil {
			detections = append(detections, *det)
		}

		if det := harshness.Detect(in.Spectrum, heuristics.Harshness, heuristics.Content); det != nil {
			detections = append(detections, *det)
		}

		if det := masking.Detect(in.Spectrum, heuristics.Masking); det != nil {
			detections = append(detections, *det)
		}
	}

	if len(in.Channels) > 0 {
		if det := clipping.Detect(in.Channels, heuristics.Clipping); det != nil {
			detections = append(detections, *det)
		}
	}

	return detections
}

func notesFor(key MetricKey, fired []DependencyBonus) []string {
	var notes []string

	for _, bonus := range fired {
		if slices.Contains(bonus.AffectedKeys, key) {
			notes = append(notes, fmt.Sprintf("Prioritized: %s (%s).", bonus.Rationale, bonus.RuleID))
		}
	}

	return notes
}

func sortedKeys(deviations map[MetricKey]Deviation) []MetricKey {
	keys := make([]MetricKey, 0, len(deviations))
	for key := range deviations {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
