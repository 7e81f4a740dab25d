//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/mixcritic/internal/batch"
	"github.com/farcloser/mixcritic/internal/output"
)

const outputFile = "mixcritic-report.jsonl"

var (
	errReportArgs   = errors.New("expected exactly one argument: folder path")
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no audio files found")
)

//nolint:gochecknoglobals
var audioExtensions = []string{".wav", ".flac", ".m4a", ".aiff", ".aif", ".mp3", ".ogg", ".opus"}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Score every audio file of a folder and write a mixcritic JSONL report",
		ArgsUsage: "<folder>",
		Flags: append(engineFlags(),
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report path",
				Value:   outputFile,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errReportArgs
			}

			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			return runReport(ctx, reportOptions{
				folder:  cmd.Args().First(),
				output:  cmd.String("output"),
				redact:  cmd.Bool("redact-path"),
				workers: max(cmd.Int("workers"), 1),
				debug:   cmd.Bool("debug"),
			}, eng)
		},
	}
}

type reportOptions struct {
	folder  string
	output  string
	redact  bool
	workers int
	debug   bool
}

func runReport(ctx context.Context, opts reportOptions, eng *engine) error {
	info, err := os.Stat(opts.folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", opts.folder, errNotDirectory)
	}

	files, err := collectAudioFiles(opts.folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", opts.folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to analyze (%d workers)\n", len(files), opts.workers)

	startTime := time.Now()

	var progress atomic.Int64

	results := batch.Run(ctx, files, opts.workers, func(ctx context.Context, filePath string) (Record, error) {
		record := buildRecord(ctx, filePath, eng, opts.debug)

		done := progress.Add(1)
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)

		return record, nil
	})

	out, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	var totalDecode, totalMeasure, totalAnalyze time.Duration

	for _, result := range results {
		record := result.Value
		if result.Err != nil {
			record = Record{File: result.Item, Error: result.Err.Error()}
		}

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalDecode += millisToDuration(record.Timing.DecodeMs)
			totalMeasure += millisToDuration(record.Timing.MeasureMs)
			totalAnalyze += millisToDuration(record.Timing.AnalyzeMs)
		}

		if opts.redact {
			record.File = ""
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", result.Item, "error", err)
		}
	}

	out.Close()

	if err := compressFile(opts.output); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %s (%d failed)\n", len(files), elapsed.Truncate(time.Second), failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", opts.output, opts.output)

	analyzed := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  decode:      %s (cumulative)\n", totalDecode.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  measure:     %s (cumulative)\n", totalMeasure.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analysis:    %s (cumulative)\n", totalAnalyze.Truncate(time.Millisecond))

	if analyzed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s\n", (totalDecode+totalMeasure+totalAnalyze)/time.Duration(analyzed))
	}

	fmt.Fprintln(os.Stderr)

	return runDigest(os.Stdout, opts.output, "")
}

func buildRecord(ctx context.Context, filePath string, eng *engine, debug bool) Record {
	result, report, timing, err := processFile(ctx, filePath, 0, eng)

	recordTiming := &RecordTiming{
		DecodeMs:  durationMs(timing.decode),
		MeasureMs: durationMs(timing.measure),
		AnalyzeMs: durationMs(timing.analyze),
		TotalMs:   durationMs(timing.decode + timing.measure + timing.analyze),
	}

	if err != nil {
		return Record{File: filePath, Error: err.Error(), Timing: recordTiming}
	}

	record := Record{
		File:     filePath,
		Analysis: output.ResultToMap(result),
		Timing:   recordTiming,
	}

	if debug {
		record.Measure = output.ReportToMap(report)
	}

	return record
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}
