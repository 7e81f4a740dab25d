//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/mixcritic"
	"github.com/farcloser/mixcritic/internal/integration/ffmpeg"
	"github.com/farcloser/mixcritic/internal/integration/ffprobe"
	"github.com/farcloser/mixcritic/internal/measure"
	"github.com/farcloser/mixcritic/internal/types"
)

var errProcessArgs = errors.New("expected exactly one argument: file path")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Measure an audio file and score it against a genre reference",
		ArgsUsage: "<file>",
		Flags: append(engineFlags(),
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			filePath := cmd.Args().First()

			result, report, _, err := processFile(ctx, filePath, cmd.Int("stream"), eng)
			if err != nil {
				return err
			}

			return outputResult(filePath, result, report, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

// fileTiming captures per-file processing durations.
type fileTiming struct {
	decode  time.Duration
	measure time.Duration
	analyze time.Duration
}

// processFile decodes, measures and analyzes one file.
func processFile(
	ctx context.Context,
	filePath string,
	streamIndex int,
	eng *engine,
) (*mixcritic.Result, *measure.Report, fileTiming, error) {
	var timing fileTiming

	start := time.Now()

	decoded, err := loadAudio(ctx, filePath, streamIndex)

	timing.decode = time.Since(start)

	if err != nil {
		return nil, nil, timing, err
	}

	start = time.Now()
	report := measure.Measure(decoded, measure.DefaultOptions())
	timing.measure = time.Since(start)

	start = time.Now()
	result := mixcritic.Analyze(mixcritic.Input{
		Profile:      eng.profile,
		Measurements: report.Measurements,
		Spectrum:     report.Spectrum,
		Channels:     decoded.Channels,
		Quality:      report.Quality,
		AnalyzedAt:   time.Now(),
	}, eng.config)
	timing.analyze = time.Since(start)

	return result, report, timing, nil
}

// loadAudio reads WAV files natively and hands everything else to ffmpeg.
func loadAudio(ctx context.Context, filePath string, streamIndex int) (*measure.Audio, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".wav") && streamIndex == 0 {
		decoded, err := loadWAV(filePath)
		if err == nil {
			return decoded, nil
		}

		if !errors.Is(err, measure.ErrNotWAV) && !errors.Is(err, measure.ErrUnsupported) {
			return nil, err
		}

		slog.Debug("loadAudio", "file", filePath, "error", err)
	}

	return extractAudio(ctx, filePath, streamIndex)
}

func loadWAV(filePath string) (*measure.Audio, error) {
	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	return measure.FromWAV(file)
}

func extractAudio(ctx context.Context, filePath string, streamIndex int) (*measure.Audio, error) {
	probeResult, err := ffprobe.Probe(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("probing file: %w", err)
	}

	stream, err := probeResult.AudioStream(streamIndex)
	if err != nil {
		return nil, err
	}

	format, err := stream.PCMFormat(types.Depth32)
	if err != nil {
		return nil, err
	}

	slog.Debug("extractAudio", "file", filePath, "codec", stream.CodecName,
		"sample rate", format.SampleRate, "channels", format.Channels, "source bit depth", stream.SourceBitDepth())

	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	var pcmBuf bytes.Buffer

	if err = ffmpeg.ExtractStream(ctx, file, &pcmBuf, streamIndex, format.BitDepth); err != nil {
		return nil, fmt.Errorf("extracting PCM: %w", err)
	}

	return measure.FromPCM(&pcmBuf, format)
}
