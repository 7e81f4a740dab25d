// Package suggest turns scored deviations and heuristic detections into ranked, deduplicated suggestions.
package suggest

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/farcloser/mixcritic/internal/types"
)

// Scored is a deviation with its classification, ready to be phrased.
type Scored struct {
	Deviation  types.Deviation
	Severity   types.Severity
	Priority   float64
	Confidence float64
	// Notes are appended to the rationale, typically the rationale of dependency rules that fired.
	Notes []string
}

// Finding is a heuristic detection with its classification.
type Finding struct {
	Detection types.HeuristicDetection
	Severity  types.Severity
	Priority  float64
}

// Input gathers everything a build needs. Deviations and Findings are expected in a stable order.
type Input struct {
	Genre      string
	Deviations []Scored
	Findings   []Finding
	AnalyzedAt time.Time
}

// Build produces one suggestion per non-ok deviation and finding, deduplicated and sorted by
// priority, highest first.
func Build(in Input) []types.Suggestion {
	genre := in.Genre
	if genre == "" {
		genre = "reference"
	}

	suggestions := make([]types.Suggestion, 0, len(in.Deviations)+len(in.Findings))

	for _, scored := range in.Deviations {
		if scored.Severity == types.SeverityOk {
			continue
		}

		suggestion, ok := fromDeviation(scored, genre)
		if !ok {
			continue
		}

		suggestion.Timestamp = in.AnalyzedAt
		suggestions = append(suggestions, suggestion)
	}

	for _, finding := range in.Findings {
		if finding.Severity == types.SeverityOk {
			continue
		}

		suggestion := fromFinding(finding, genre)
		suggestion.Timestamp = in.AnalyzedAt
		suggestions = append(suggestions, suggestion)
	}

	suggestions = Dedupe(suggestions)
	Sort(suggestions)

	return suggestions
}

func fromDeviation(scored Scored, genre string) (types.Suggestion, bool) {
	dev := scored.Deviation
	tpl, band := templateFor(dev.Key)

	var text phrase

	switch dev.Direction {
	case types.DirectionLow:
		text = tpl.low
	case types.DirectionHigh:
		text = tpl.high
	case types.DirectionWithin:
		return types.Suggestion{}, false
	}

	if text.message == "" {
		return types.Suggestion{}, false
	}

	replacer := strings.NewReplacer(
		"{genre}", genre,
		"{band}", strings.ReplaceAll(band, "_", " "),
		"{delta}", formatNumber(math.Abs(dev.Diff)),
		"{target}", formatNumber(dev.Target),
		"{value}", formatNumber(dev.Value),
		"{metric}", string(dev.Key),
	)
	text = render(replacer, text)

	rationale := text.rationale
	for _, note := range scored.Notes {
		rationale += " " + note
	}

	return types.Suggestion{
		Type:      tpl.typ,
		Subtype:   tpl.subtype,
		Theme:     ThemeOf(tpl.typ, tpl.subtype, text.message),
		Message:   text.message,
		Action:    text.action,
		Rationale: rationale,
		Technical: types.Technical{
			Value:     dev.Value,
			Target:    dev.Target,
			Delta:     dev.Diff,
			Tolerance: dev.Tolerance,
			ZScore:    dev.Z,
		},
		Priority:   scored.Priority,
		Confidence: scored.Confidence,
		Severity:   scored.Severity,
		Genre:      genre,
	}, true
}

func fromFinding(finding Finding, genre string) types.Suggestion {
	det := finding.Detection
	typ := string(det.Type)

	frequency := ""
	if det.FrequencyHz != nil {
		frequency = formatFrequency(*det.FrequencyHz)
	}

	replacer := strings.NewReplacer(
		"{genre}", genre,
		"{frequency}", frequency,
		"{intensity}", formatNumber(det.IntensityDb),
		"{count}", strconv.FormatFloat(det.Technical["clipped_samples"], 'f', 0, 64),
		"{percentage}", formatNumber(det.Technical["percentage"]),
	)

	text, ok := detectionTemplates[det.Type]
	if !ok {
		text = phrase{
			message: typ + " detected",
			action:  "Inspect the flagged region",
		}
	}

	text = render(replacer, text)
	target := detectionThreshold(det)

	return types.Suggestion{
		Type:      typ,
		Theme:     ThemeOf(typ, "", text.message),
		Message:   text.message,
		Action:    text.action,
		Rationale: text.rationale,
		Technical: types.Technical{
			Value:  det.IntensityDb,
			Target: target,
			Delta:  det.IntensityDb - target,
		},
		Priority:   finding.Priority,
		Confidence: det.Confidence,
		Severity:   finding.Severity,
		Genre:      genre,
	}
}

// detectionThreshold returns the threshold a detection was measured against, in dB.
func detectionThreshold(det types.HeuristicDetection) float64 {
	if threshold, ok := det.Technical["threshold_db"]; ok {
		return threshold
	}

	if threshold, ok := det.Technical["threshold"]; ok && threshold > 0 {
		return 20 * math.Log10(threshold)
	}

	return 0
}

type dedupeKey struct {
	typ     string
	subtype string
	target  float64
	delta   float64
}

func keyOf(suggestion types.Suggestion) dedupeKey {
	return dedupeKey{
		typ:     suggestion.Type,
		subtype: suggestion.Subtype,
		target:  suggestion.Technical.Target,
		delta:   math.Round(suggestion.Technical.Delta*10) / 10,
	}
}

// Dedupe keeps, for each (type, subtype, target, delta rounded to 0.1), the suggestion with the
// highest priority. The first occurrence wins ties. Relative order of survivors is preserved.
func Dedupe(suggestions []types.Suggestion) []types.Suggestion {
	best := make(map[dedupeKey]int, len(suggestions))
	out := make([]types.Suggestion, 0, len(suggestions))

	for _, suggestion := range suggestions {
		key := keyOf(suggestion)

		if idx, seen := best[key]; seen {
			if suggestion.Priority > out[idx].Priority {
				out[idx] = suggestion
			}

			continue
		}

		best[key] = len(out)
		out = append(out, suggestion)
	}

	return out
}

// Sort orders suggestions by priority descending, then type, subtype and message.
func Sort(suggestions []types.Suggestion) {
	slices.SortStableFunc(suggestions, func(a, b types.Suggestion) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Type, b.Type); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Subtype, b.Subtype); c != 0 {
			return c
		}

		return cmp.Compare(a.Message, b.Message)
	})
}
