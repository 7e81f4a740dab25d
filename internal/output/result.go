// Package output provides shared result serialization for mixcritic JSON output.
package output

import (
	"fmt"

	"github.com/farcloser/mixcritic"
	"github.com/farcloser/mixcritic/internal/measure"
	"github.com/farcloser/mixcritic/internal/types"
)

// WorstSeverity returns the highest severity among the suggestions, ok when there are none.
func WorstSeverity(result *mixcritic.Result) types.Severity {
	worst := types.SeverityOk

	for _, suggestion := range result.Suggestions {
		worst = max(worst, suggestion.Severity)
	}

	return worst
}

// ResultToMap converts an analysis result into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *mixcritic.Result) map[string]any {
	summary := map[string]any{
		"genre":            result.Genre,
		"suggestion_count": len(result.Suggestions),
		"worst_severity":   WorstSeverity(result).String(),
	}

	if result.Overall != nil {
		summary["overall"] = *result.Overall
	}

	meta := map[string]any{
		"summary": summary,
	}

	categories := make([]any, 0, len(result.Categories))
	for _, score := range result.Categories {
		entry := map[string]any{
			"category": string(score.Category),
			"valid":    score.ValidCount,
			"total":    score.TotalCount,
		}
		if score.Score != nil {
			entry["score"] = *score.Score
		}

		categories = append(categories, entry)
	}

	meta["categories"] = categories

	suggestions := make([]any, 0, len(result.Suggestions))
	for _, suggestion := range result.Suggestions {
		suggestions = append(suggestions, SuggestionToMap(suggestion))
	}

	meta["suggestions"] = suggestions

	deviations := make([]any, 0, len(result.Deviations))
	for _, assessment := range result.Deviations {
		deviations = append(deviations, map[string]any{
			"key":        string(assessment.Key),
			"value":      assessment.Value,
			"target":     assessment.Target,
			"diff":       assessment.Diff,
			"ratio":      assessment.Ratio,
			"score":      assessment.Score,
			"direction":  assessment.Direction.String(),
			"severity":   assessment.Severity.String(),
			"confidence": assessment.Confidence,
			"bonus":      assessment.Bonus,
			"priority":   assessment.Priority,
		})
	}

	meta["deviations"] = deviations

	if len(result.Detections) > 0 {
		detections := make([]any, 0, len(result.Detections))
		for _, detection := range result.Detections {
			detections = append(detections, DetectionToMap(detection))
		}

		meta["detections"] = detections
	}

	if len(result.Bonuses) > 0 {
		bonuses := make([]any, 0, len(result.Bonuses))
		for _, bonus := range result.Bonuses {
			keys := make([]string, 0, len(bonus.AffectedKeys))
			for _, key := range bonus.AffectedKeys {
				keys = append(keys, string(key))
			}

			bonuses = append(bonuses, map[string]any{
				"rule":      bonus.RuleID,
				"affected":  keys,
				"bonus":     bonus.Bonus,
				"rationale": bonus.Rationale,
			})
		}

		meta["bonuses"] = bonuses
	}

	if len(result.Diagnostics) > 0 {
		meta["diagnostics"] = diagnosticLines(result.Diagnostics)
	}

	return meta
}

// SuggestionToMap converts a suggestion to a map.
func SuggestionToMap(suggestion types.Suggestion) map[string]any {
	return map[string]any{
		"type":       suggestion.Type,
		"subtype":    suggestion.Subtype,
		"theme":      string(suggestion.Theme),
		"severity":   suggestion.Severity.String(),
		"message":    suggestion.Message,
		"action":     suggestion.Action,
		"rationale":  suggestion.Rationale,
		"priority":   suggestion.Priority,
		"confidence": suggestion.Confidence,
		"technical": map[string]any{
			"value":     suggestion.Technical.Value,
			"target":    suggestion.Technical.Target,
			"delta":     suggestion.Technical.Delta,
			"tolerance": suggestion.Technical.Tolerance,
			"z_score":   suggestion.Technical.ZScore,
		},
	}
}

// DetectionToMap converts a heuristic detection to a map.
func DetectionToMap(detection types.HeuristicDetection) map[string]any {
	meta := map[string]any{
		"type":         string(detection.Type),
		"intensity_db": detection.IntensityDb,
		"confidence":   detection.Confidence,
	}

	if detection.FrequencyHz != nil {
		meta["frequency_hz"] = *detection.FrequencyHz
	}

	if len(detection.Technical) > 0 {
		technical := make(map[string]any, len(detection.Technical))
		for key, value := range detection.Technical {
			technical[key] = value
		}

		meta["technical"] = technical
	}

	return meta
}

// ReportToMap converts the raw measurements of a track to a map.
func ReportToMap(report *measure.Report) map[string]any {
	measurements := make(map[string]any, len(report.Measurements))
	for _, key := range report.Measurements.Keys() {
		measurements[string(key)] = report.Measurements[key]
	}

	meta := map[string]any{
		"measurements":         measurements,
		"frames":               report.Frames,
		"leading_silence_sec":  report.LeadingSilenceSec,
		"trailing_silence_sec": report.TrailingSilenceSec,
		"loudness": map[string]any{
			"integrated_lufs":   report.Loudness.IntegratedLUFS,
			"loudness_range":    report.Loudness.LoudnessRange,
			"momentary_max":     report.Loudness.MomentaryMax,
			"short_term_max":    report.Loudness.ShortTermMax,
			"dr_score":          report.Loudness.DRScore,
			"dr_value":          report.Loudness.DRValue,
			"peak_db":           report.Loudness.PeakDb,
			"rms_db":            report.Loudness.RmsDb,
			"gated_blocks":      report.Loudness.GatedBlocks,
			"short_term_blocks": report.Loudness.ShortTermBlocks,
		},
		"true_peak": map[string]any{
			"true_peak_db":   report.Peaks.TruePeakDb,
			"sample_peak_db": report.Peaks.SamplePeakDb,
			"isp_count":      report.Peaks.ISPCount,
			"isp_max_db":     report.Peaks.ISPMaxDb,
		},
	}

	if report.Clipping != nil {
		meta["clipping"] = ClippingToMap(report.Clipping)
	}

	quality := map[string]any{}

	if q := report.Quality.DurationSec; q != nil {
		quality["duration_sec"] = *q
	}

	if q := report.Quality.SNRDb; q != nil {
		quality["snr_db"] = *q
	}

	if q := report.Quality.WindowStability; q != nil {
		quality["window_stability"] = *q
	}

	meta["quality"] = quality

	return meta
}

// ClippingToMap converts clipping scan results to a map.
func ClippingToMap(result *types.ClippingDetection) map[string]any {
	channels := make([]any, 0, len(result.Channels))
	for i, ch := range result.Channels {
		channels = append(channels, map[string]any{
			"channel":         i,
			"events":          ch.Events,
			"clipped_samples": ch.ClippedSamples,
			"longest_run":     ch.LongestRun,
		})
	}

	return map[string]any{
		"events":          result.Events,
		"clipped_samples": result.ClippedSamples,
		"longest_run":     result.LongestRun,
		"samples":         result.Samples,
		"peak":            result.Peak,
		"channels":        channels,
	}
}

// FriendlyMap creates a readable summary: scores per category and suggestions grouped by theme.
func FriendlyMap(result *mixcritic.Result) map[string]any {
	overall := "n/a"
	if result.Overall != nil {
		overall = fmt.Sprintf("%.0f/100", *result.Overall)
	}

	meta := map[string]any{
		"summary": fmt.Sprintf("%d suggestions against %s (worst: %s, overall: %s)",
			len(result.Suggestions), result.Genre, WorstSeverity(result), overall),
	}

	scores := make(map[string]any, len(result.Categories))
	for _, score := range result.Categories {
		if score.Score == nil {
			scores[string(score.Category)] = "n/a"

			continue
		}

		scores[string(score.Category)] = fmt.Sprintf("%.0f/100 (%d of %d metrics)",
			*score.Score, score.ValidCount, score.TotalCount)
	}

	meta["scores"] = scores

	if len(result.Themes) > 0 {
		themes := make(map[string]any, len(result.Themes))

		for _, group := range result.Themes {
			lines := make([]any, 0, len(group.Suggestions))
			for _, suggestion := range group.Suggestions {
				lines = append(lines, fmt.Sprintf("[%s] %s %s (%.0f%% confidence)",
					suggestion.Severity, suggestion.Message, suggestion.Action, suggestion.Confidence*100))
			}

			themes[string(group.Theme)] = lines
		}

		meta["themes"] = themes
	}

	if len(result.Diagnostics) > 0 {
		meta["diagnostics"] = diagnosticLines(result.Diagnostics)
	}

	return meta
}

func diagnosticLines(diagnostics []types.Diagnostic) []any {
	lines := make([]any, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		lines = append(lines, fmt.Sprintf("%s: %s", diagnostic.Kind, diagnostic.Message))
	}

	return lines
}
