package mixcritic

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/farcloser/primordium/fault"
	"gopkg.in/yaml.v3"

	"github.com/farcloser/mixcritic/internal/audit/clipping"
	"github.com/farcloser/mixcritic/internal/audit/content"
	"github.com/farcloser/mixcritic/internal/audit/harshness"
	"github.com/farcloser/mixcritic/internal/audit/masking"
	"github.com/farcloser/mixcritic/internal/audit/sibilance"
	"github.com/farcloser/mixcritic/internal/scoring/dependency"
	"github.com/farcloser/mixcritic/internal/scoring/priority"
)

// ErrInvalidConfig is returned when an engine configuration file cannot be decoded.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// HeuristicsConfig holds the spectral and sample domain detector thresholds.
type HeuristicsConfig struct {
	Sibilance sibilance.Options `yaml:"sibilance"`
	Harshness harshness.Options `yaml:"harshness"`
	Masking   masking.Options   `yaml:"masking"`
	Clipping  clipping.Options  `yaml:"clipping"`
	Content   content.Options   `yaml:"content"`
}

// EngineConfig configures an analysis. It is passed explicitly to every call.
type EngineConfig struct {
	Heuristics HeuristicsConfig          `yaml:"heuristics"`
	Confidence priority.ConfidenceConfig `yaml:"confidence"`

	// Rules are the dependency rules. Nil means the default rules, an empty slice disables them.
	Rules []dependency.Rule `yaml:"rules"`

	// HeuristicWeights is the base priority weight per detection type (missing types use defaults).
	HeuristicWeights map[DetectionType]float64 `yaml:"heuristic_weights"`
}

// DefaultConfig returns the mix stage configuration.
func DefaultConfig() EngineConfig {
	return DefaultMixConfig()
}

// DefaultMixConfig returns the configuration for mixes in progress.
func DefaultMixConfig() EngineConfig {
	return EngineConfig{
		Heuristics: HeuristicsConfig{
			Sibilance: sibilance.DefaultOptions(),
			Harshness: harshness.DefaultOptions(),
			Masking:   masking.DefaultOptions(),
			Clipping:  clipping.DefaultOptions(),
			Content:   content.DefaultOptions(),
		},
		Confidence: priority.DefaultConfidenceConfig(),
		Rules:      dependency.DefaultRules(),
		HeuristicWeights: map[DetectionType]float64{
			DetectionSibilance: 0.7,
			DetectionHarshness: 0.7,
			DetectionMasking:   0.6,
			DetectionClipping:  1.0,
		},
	}
}

// DefaultMasterConfig returns the configuration for final masters.
// Any clipping counts, missing oversampling weighs more on true peak, and the
// limiter headroom rule gets a larger bonus.
func DefaultMasterConfig() EngineConfig {
	cfg := DefaultMixConfig()
	cfg.Heuristics.Clipping.MinRun = 2
	cfg.Heuristics.Clipping.MinTotal = 2
	cfg.Confidence.MissingOversamplingFactor = 0.7
	cfg.HeuristicWeights[DetectionClipping] = 1.2

	for i := range cfg.Rules {
		if cfg.Rules[i].ID == dependency.RuleHeadroomBeforeLimiter {
			cfg.Rules[i].Bonus = 0.3
		}
	}

	return cfg
}

// Stage is the production stage of the material being analyzed.
type Stage int

const (
	StageMix    Stage = iota // Mix in progress (default).
	StageMaster              // Final master. Stricter on clipping and peaks.
)

func (s Stage) String() string {
	switch s {
	case StageMix:
		return "mix"
	case StageMaster:
		return "master"
	}

	return "unknown"
}

// ParseStage converts a string to a Stage value.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "mix", "":
		return StageMix, nil
	case "master":
		return StageMaster, nil
	default:
		return 0, fmt.Errorf("unknown stage %q (valid: mix, master)", s)
	}
}

// ConfigForStage returns the default EngineConfig for the given stage.
func ConfigForStage(stage Stage) EngineConfig {
	switch stage {
	case StageMaster:
		return DefaultMasterConfig()
	default:
		return DefaultMixConfig()
	}
}

// LoadConfig decodes a YAML configuration on top of base. Fields absent from the document keep
// the value they have in base.
func LoadConfig(reader io.Reader, base EngineConfig) (EngineConfig, error) {
	cfg := base
	cfg.HeuristicWeights = maps.Clone(base.HeuristicWeights)

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := dependency.Validate(cfg.Rules); err != nil {
		return base, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// LoadConfigFile reads a YAML configuration from disk on top of base.
func LoadConfigFile(path string, base EngineConfig) (EngineConfig, error) {
	file, err := os.Open(path) //nolint:gosec // CLI opens user-specified configuration
	if err != nil {
		return base, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	return LoadConfig(file, base)
}

func applyDefaults(cfg *EngineConfig) {
	defaults := DefaultConfig()

	if cfg.Heuristics.Sibilance == (sibilance.Options{}) {
		cfg.Heuristics.Sibilance = defaults.Heuristics.Sibilance
	}

	if cfg.Heuristics.Harshness == (harshness.Options{}) {
		cfg.Heuristics.Harshness = defaults.Heuristics.Harshness
	}

	if cfg.Heuristics.Masking == (masking.Options{}) {
		cfg.Heuristics.Masking = defaults.Heuristics.Masking
	}

	if cfg.Heuristics.Clipping == (clipping.Options{}) {
		cfg.Heuristics.Clipping = defaults.Heuristics.Clipping
	}

	if cfg.Heuristics.Content == (content.Options{}) {
		cfg.Heuristics.Content = defaults.Heuristics.Content
	}

	if cfg.Confidence == (priority.ConfidenceConfig{}) {
		cfg.Confidence = defaults.Confidence
	}

	if cfg.Rules == nil {
		cfg.Rules = defaults.Rules
	}

	weights := make(map[DetectionType]float64, len(defaults.HeuristicWeights))
	maps.Copy(weights, defaults.HeuristicWeights)

	for kind, weight := range cfg.HeuristicWeights {
		if weight > 0 {
			weights[kind] = weight
		}
	}

	cfg.HeuristicWeights = weights
}
