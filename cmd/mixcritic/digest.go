package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/farcloser/primordium/fault"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/mixcritic/internal/types"
)

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

const topKinds = 10

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a mixcritic JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "theme",
				Usage: "Show tracks with suggestions in a theme (loudness, dynamics, lows, mids, highs, stereo, artifacts, other)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(os.Stdout, cmd.Args().First(), cmd.String("theme"))
		},
	}
}

func runDigest(out io.Writer, reportPath, themeFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(out, records)

	if themeFilter != "" {
		printThemeDetail(out, records, themeFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("%w: opening report: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading report: %w", fault.ErrReadFailure, err)
	}

	return records, nil
}

type kindCount struct {
	kind  string
	count int
}

func printDigest(out io.Writer, records []digestRecord) {
	total := len(records)
	failed := 0
	sevDist := map[string]int{}
	themeStats := map[string]*themeBreakdown{}
	kinds := map[string]int{}

	var (
		overallSum   float64
		overallCount int
	)

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			failed++

			continue
		}

		sevDist[rec.Analysis.Summary.WorstSeverity]++

		if overall := rec.Analysis.Summary.Overall; overall != nil {
			overallSum += *overall
			overallCount++
		}

		for _, suggestion := range rec.Analysis.Suggestions {
			breakdown, ok := themeStats[suggestion.Theme]
			if !ok {
				breakdown = &themeBreakdown{Theme: suggestion.Theme}
				themeStats[suggestion.Theme] = breakdown
			}

			breakdown.Total++

			switch suggestion.Severity {
			case types.SeverityFix.String():
				breakdown.Fix++
			case types.SeverityAdjust.String():
				breakdown.Adjust++
			case types.SeverityWatch.String():
				breakdown.Watch++
			}

			kind := suggestion.Type
			if suggestion.Subtype != "" {
				kind += "/" + suggestion.Subtype
			}

			kinds[kind]++
		}
	}

	fmt.Fprintln(out, "=== Mixcritic Report Digest ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total tracks:  %d\n", total)
	fmt.Fprintf(out, "Failed:        %d\n", failed)
	fmt.Fprintf(out, "Analyzed:      %d\n", total-failed)

	if overallCount > 0 {
		fmt.Fprintf(out, "Mean overall:  %.0f/100\n", overallSum/float64(overallCount))
	}

	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Worst Severity ---")
	fmt.Fprintf(out, "  Ok:      %d\n", sevDist[types.SeverityOk.String()])
	fmt.Fprintf(out, "  Watch:   %d\n", sevDist[types.SeverityWatch.String()])
	fmt.Fprintf(out, "  Adjust:  %d\n", sevDist[types.SeverityAdjust.String()])
	fmt.Fprintf(out, "  Fix:     %d\n", sevDist[types.SeverityFix.String()])
	fmt.Fprintln(out)

	fmt.Fprintln(out, "--- Suggestions By Theme ---")

	for _, theme := range types.Themes() {
		breakdown, ok := themeStats[string(theme)]
		if !ok {
			continue
		}

		fmt.Fprintf(out, "  %s\n", breakdown.Theme)
		fmt.Fprintf(out, "    total: %d  fix: %d  adjust: %d  watch: %d\n",
			breakdown.Total, breakdown.Fix, breakdown.Adjust, breakdown.Watch)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "--- Most Frequent Suggestions ---")

	counts := make([]kindCount, 0, len(kinds))
	for kind, count := range kinds {
		counts = append(counts, kindCount{kind: kind, count: count})
	}

	slices.SortFunc(counts, func(a, b kindCount) int {
		return cmp.Or(b.count-a.count, cmp.Compare(a.kind, b.kind))
	})

	for _, entry := range counts[:min(topKinds, len(counts))] {
		fmt.Fprintf(out, "  %-28s %d tracks\n", entry.kind, entry.count)
	}
}

type themeEntry struct {
	file       string
	suggestion digestSuggestion
}

func printThemeDetail(out io.Writer, records []digestRecord, theme string) {
	fmt.Fprintln(out)

	var entries []themeEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			continue
		}

		file := rec.File
		if file == "" {
			file = "(redacted)"
		}

		for _, suggestion := range rec.Analysis.Suggestions {
			if suggestion.Theme == theme {
				entries = append(entries, themeEntry{file: file, suggestion: suggestion})
			}
		}
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No suggestions in theme %s\n", theme)

		return
	}

	slices.SortStableFunc(entries, func(a, b themeEntry) int {
		return cmp.Or(
			severityRank(a.suggestion.Severity)-severityRank(b.suggestion.Severity),
			cmp.Compare(b.suggestion.Priority, a.suggestion.Priority),
		)
	})

	fmt.Fprintf(out, "=== %s: %d suggestions ===\n\n", theme, len(entries))

	for _, entry := range entries {
		fmt.Fprintf(out, "  %s\n", entry.file)
		fmt.Fprintf(out, "    severity: %s  priority: %.2f  confidence: %.0f%%\n",
			entry.suggestion.Severity, entry.suggestion.Priority, entry.suggestion.Confidence*100)
		fmt.Fprintf(out, "    %s %s\n", entry.suggestion.Message, entry.suggestion.Action)
		fmt.Fprintln(out)
	}
}

func severityRank(severity string) int {
	switch severity {
	case types.SeverityFix.String():
		return 0
	case types.SeverityAdjust.String():
		return 1
	case types.SeverityWatch.String():
		return 2
	default:
		return 3
	}
}
