//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/farcloser/primordium/fault"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/farcloser/mixcritic"
	"github.com/farcloser/mixcritic/internal/types"
)

var (
	errSuggestArgs     = errors.New("expected exactly one argument: measurements file or \"-\" for stdin")
	errNoMeasurements  = errors.New("no measurements")
	errInvalidSpectrum = errors.New("spectrum freq_bins and magnitude must be non-empty and of equal length")
)

/*
Measurements file (YAML, or JSON which is read the same way):

	measurements:
	  integratedLoudness: -9.2   # aliases such as lufs, dr, tp are accepted
	  dynamicRange: 5
	  band:low_mid: -4.5
	spectrum:                    # optional, enables the spectral heuristics
	  freq_bins: [0, 10.77, ...]
	  magnitude: [0.01, 0.02, ...]
	transient_strength: 0.6      # optional, 0..1
	quality:                     # optional
	  duration_sec: 184
	  oversampled: true
	  snr_db: 62
	  window_stability: 0.9
*/

type measurementFile struct {
	Measurements      map[string]float64 `yaml:"measurements"`
	Spectrum          *spectrumFile      `yaml:"spectrum"`
	TransientStrength *float64           `yaml:"transient_strength"`
	Quality           qualityFile        `yaml:"quality"`
}

type spectrumFile struct {
	FreqBins  []float64 `yaml:"freq_bins"`
	Magnitude []float64 `yaml:"magnitude"`
}

type qualityFile struct {
	DurationSec     *float64 `yaml:"duration_sec"`
	Oversampled     *bool    `yaml:"oversampled"`
	SNRDb           *float64 `yaml:"snr_db"`
	WindowStability *float64 `yaml:"window_stability"`
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Score precomputed measurements against a genre reference",
		ArgsUsage: "<measurements.yaml | ->",
		Flags:     engineFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errSuggestArgs, cmd.NArg())
			}

			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			source := cmd.Args().First()

			input, err := readMeasurements(source)
			if err != nil {
				return err
			}

			input.Profile = eng.profile
			input.AnalyzedAt = time.Now()

			result := mixcritic.Analyze(input, eng.config)

			return outputResult(source, result, nil, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

func readMeasurements(source string) (mixcritic.Input, error) {
	var reader io.Reader = os.Stdin

	if source != "-" {
		file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified measurement files
		if err != nil {
			return mixcritic.Input{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
		defer file.Close()

		reader = file
	}

	return parseMeasurements(reader)
}

func parseMeasurements(reader io.Reader) (mixcritic.Input, error) {
	var doc measurementFile

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return mixcritic.Input{}, errNoMeasurements
		}

		return mixcritic.Input{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if len(doc.Measurements) == 0 {
		return mixcritic.Input{}, errNoMeasurements
	}

	input := mixcritic.Input{
		Measurements:      make(mixcritic.Measurements, len(doc.Measurements)),
		TransientStrength: doc.TransientStrength,
		Quality: types.QualitySignals{
			DurationSec:     doc.Quality.DurationSec,
			Oversampled:     doc.Quality.Oversampled,
			SNRDb:           doc.Quality.SNRDb,
			WindowStability: doc.Quality.WindowStability,
		},
	}

	for name, value := range doc.Measurements {
		input.Measurements[types.MetricKey(name)] = value
	}

	if doc.Spectrum != nil {
		frame := &types.SpectralFrame{FreqBins: doc.Spectrum.FreqBins, Magnitude: doc.Spectrum.Magnitude}
		if !frame.Valid() {
			return mixcritic.Input{}, errInvalidSpectrum
		}

		input.Spectrum = frame
	}

	return input, nil
}
