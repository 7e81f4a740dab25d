// Package profile loads genre reference profiles and turns them into metric specs.
package profile

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/farcloser/primordium/fault"
	"gopkg.in/yaml.v3"

	"github.com/farcloser/mixcritic/internal/types"
)

var (
	ErrDecode       = errors.New("invalid profile")
	ErrUnknownGenre = errors.New("unknown genre")
)

//go:embed builtin/*.yaml
var builtins embed.FS

// MetricTarget is the expectation for one scalar metric. Tolerance is a symmetric shorthand,
// overridden per side by ToleranceLow and ToleranceHigh.
type MetricTarget struct {
	Target        *float64 `yaml:"target"`
	Tolerance     float64  `yaml:"tolerance,omitempty"`
	ToleranceLow  float64  `yaml:"tolerance_low,omitempty"`
	ToleranceHigh float64  `yaml:"tolerance_high,omitempty"`
}

// BandTarget is the expected level of a band, in dB relative to the total energy.
type BandTarget struct {
	TargetDb *float64 `yaml:"target_db"`
	TolDb    float64  `yaml:"tol_db"`
}

// Profile is a genre reference. Missing metrics and bands are simply not scored.
type Profile struct {
	Genre   string                  `yaml:"genre"`
	Metrics map[string]MetricTarget `yaml:"metrics"`
	Bands   map[string]BandTarget   `yaml:"bands"`
}

// Load decodes a YAML profile. Unknown fields are rejected.
func Load(reader io.Reader) (*Profile, error) {
	prof := &Profile{}

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(prof); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if prof.Genre == "" {
		return nil, fmt.Errorf("%w: missing genre", ErrDecode)
	}

	return prof, nil
}

// LoadFile reads a profile from disk.
func LoadFile(filePath string) (*Profile, error) {
	file, err := os.Open(filePath) //nolint:gosec // CLI opens user-specified profiles
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	return Load(file)
}

// Builtin returns the embedded profile for genre.
func Builtin(genre string) (*Profile, error) {
	name := strings.ToLower(strings.TrimSpace(genre))

	file, err := builtins.Open(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownGenre, genre, strings.Join(Genres(), ", "))
	}
	defer file.Close()

	return Load(file)
}

// Genres lists the embedded profiles in alphabetical order.
func Genres() []string {
	entries, err := builtins.ReadDir("builtin")
	if err != nil {
		return nil
	}

	genres := make([]string, 0, len(entries))

	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".yaml"); ok {
			genres = append(genres, name)
		}
	}

	slices.Sort(genres)

	return genres
}

// Specs converts the profile into metric specs sorted by key, using catalog for the scoring
// behaviour of each metric. Unknown names and entries without a target become diagnostics.
// Tolerances are not validated here.
func (p *Profile) Specs(catalog Catalog) ([]types.MetricSpec, []types.Diagnostic) {
	var specs []types.MetricSpec

	metrics, diagnostics := p.resolve(slices.Collect(maps.Keys(p.Metrics)), "metric", types.ParseMetricKey)

	for _, key := range sortedKeys(metrics) {
		target := p.Metrics[metrics[key]]

		if target.Target == nil {
			diagnostics = append(diagnostics, missingTarget(p.Genre, key))

			continue
		}

		low, high := sides(target.Tolerance, target.ToleranceLow, target.ToleranceHigh)
		specs = append(specs, spec(catalog, key, *target.Target, low, high))
	}

	parseBand := func(name string) (types.MetricKey, bool) {
		return types.ParseMetricKey(string(types.BandKey(name)))
	}

	bands, bandDiagnostics := p.resolve(slices.Collect(maps.Keys(p.Bands)), "band", parseBand)
	diagnostics = append(diagnostics, bandDiagnostics...)

	for _, key := range sortedKeys(bands) {
		target := p.Bands[bands[key]]

		if target.TargetDb == nil {
			diagnostics = append(diagnostics, missingTarget(p.Genre, key))

			continue
		}

		specs = append(specs, spec(catalog, key, *target.TargetDb, target.TolDb, target.TolDb))
	}

	slices.SortFunc(specs, func(a, b types.MetricSpec) int {
		return strings.Compare(string(a.Key), string(b.Key))
	})

	return specs, diagnostics
}

// resolve maps profile entry names to canonical keys, case-insensitively and through aliases.
// When several names resolve to one key, the canonical spelling wins, else the first in sorted order.
// Unknown and shadowed names become diagnostics.
func (p *Profile) resolve(
	names []string,
	kind string,
	parse func(string) (types.MetricKey, bool),
) (map[types.MetricKey]string, []types.Diagnostic) {
	slices.Sort(names)

	resolved := make(map[types.MetricKey]string, len(names))

	var diagnostics []types.Diagnostic

	for _, name := range names {
		key, ok := parse(name)
		if !ok {
			diagnostics = append(diagnostics, types.Diagnostic{
				Key:     unknownKey(kind, name),
				Kind:    types.DiagnosticUnknownMetric,
				Message: fmt.Sprintf("profile %s: unknown %s %q", p.Genre, kind, name),
			})

			continue
		}

		previous, seen := resolved[key]
		if !seen {
			resolved[key] = name

			continue
		}

		shadowed := name
		if isCanonical(kind, name, key) {
			resolved[key], shadowed = name, previous
		}

		diagnostics = append(diagnostics, types.Diagnostic{
			Key:     key,
			Kind:    types.DiagnosticInvalidSpec,
			Message: fmt.Sprintf("profile %s: %s %q duplicates %q and is ignored", p.Genre, kind, shadowed, resolved[key]),
		})
	}

	return resolved, diagnostics
}

func isCanonical(kind, name string, key types.MetricKey) bool {
	if kind == "band" {
		return types.BandKey(name) == key
	}

	return types.MetricKey(name) == key
}

func unknownKey(kind, name string) types.MetricKey {
	if kind == "band" {
		return types.BandKey(name)
	}

	return types.MetricKey(name)
}

func sortedKeys(resolved map[types.MetricKey]string) []types.MetricKey {
	keys := slices.Collect(maps.Keys(resolved))
	slices.Sort(keys)

	return keys
}

func sides(symmetric, low, high float64) (float64, float64) {
	if low == 0 {
		low = symmetric
	}

	if high == 0 {
		high = symmetric
	}

	return low, high
}

func spec(catalog Catalog, key types.MetricKey, target, low, high float64) types.MetricSpec {
	entry := catalog[key]

	return types.MetricSpec{
		Key:           key,
		Target:        target,
		ToleranceLow:  low,
		ToleranceHigh: high,
		Invert:        entry.Invert,
		Absolute:      entry.Absolute,
		BaseWeight:    entry.BaseWeight,
	}
}

func missingTarget(genre string, key types.MetricKey) types.Diagnostic {
	return types.Diagnostic{
		Key:     key,
		Kind:    types.DiagnosticInvalidSpec,
		Message: fmt.Sprintf("profile %s: %s has no target", genre, key),
	}
}
