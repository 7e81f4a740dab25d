//nolint:tagliatelle
package main

// Record is a single line in the JSONL report file.
type Record struct {
	File     string         `json:"file,omitempty"`
	Analysis map[string]any `json:"analysis,omitempty"`
	Measure  map[string]any `json:"measure,omitempty"`
	Error    string         `json:"error,omitempty"`
	Timing   *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	DecodeMs  float64 `json:"decode_ms"`
	MeasureMs float64 `json:"measure_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File     string          `json:"file,omitempty"`
	Analysis *digestAnalysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Summary     digestSummary      `json:"summary"`
	Suggestions []digestSuggestion `json:"suggestions"`
}

type digestSummary struct {
	Genre           string   `json:"genre"`
	SuggestionCount int      `json:"suggestion_count"`
	WorstSeverity   string   `json:"worst_severity"`
	Overall         *float64 `json:"overall"`
}

type digestSuggestion struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	Theme      string  `json:"theme"`
	Severity   string  `json:"severity"`
	Message    string  `json:"message"`
	Action     string  `json:"action"`
	Priority   float64 `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// themeBreakdown tracks per-theme severity counts for the digest.
type themeBreakdown struct {
	Theme  string
	Total  int
	Fix    int
	Adjust int
	Watch  int
}
