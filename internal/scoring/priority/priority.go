// Package priority ranks deviations and derives the confidence of a measurement set.
package priority

import (
	"math"

	"github.com/farcloser/mixcritic/internal/types"
)

const (
	MinConfidence = 0.1
	MaxConfidence = 1.0

	defaultWeight = 0.5
)

// Priority is baseWeight * severity weight * confidence * (1 + bonus).
func Priority(baseWeight float64, severity types.Severity, confidence, bonus float64) float64 {
	return baseWeight * severity.Weight() * confidence * (1 + bonus)
}

// Calculator resolves base weights per metric.
type Calculator struct {
	Weights       map[types.MetricKey]float64
	DefaultWeight float64 // used for keys without a weight, 0.5 when unset
}

// NewCalculator builds a calculator from metric specs.
func NewCalculator(specs []types.MetricSpec) Calculator {
	weights := make(map[types.MetricKey]float64, len(specs))
	for _, spec := range specs {
		weights[spec.Key] = spec.BaseWeight
	}

	return Calculator{Weights: weights}
}

// BaseWeight returns the weight for key.
func (c Calculator) BaseWeight(key types.MetricKey) float64 {
	if weight, ok := c.Weights[key]; ok && weight > 0 {
		return weight
	}

	if c.DefaultWeight > 0 {
		return c.DefaultWeight
	}

	return defaultWeight
}

// Priority computes the priority of a deviation of key.
func (c Calculator) Priority(key types.MetricKey, severity types.Severity, confidence, bonus float64) float64 {
	return Priority(c.BaseWeight(key), severity, confidence, bonus)
}

// Confidence multiplies discount factors and clamps the product to [0.1, 1].
// Non-finite factors are ignored.
func Confidence(factors ...float64) float64 {
	product := 1.0

	for _, factor := range factors {
		if math.IsNaN(factor) || math.IsInf(factor, 0) {
			continue
		}

		product *= factor
	}

	return math.Max(MinConfidence, math.Min(MaxConfidence, product))
}

// ConfidenceConfig holds the quality signal thresholds and their discount factors.
type ConfidenceConfig struct {
	ShortDurationSec          float64 `yaml:"short_duration_sec"`
	ShortDurationFactor       float64 `yaml:"short_duration_factor"`
	MissingOversamplingFactor float64 `yaml:"missing_oversampling_factor"`
	LowSNRDb                  float64 `yaml:"low_snr_db"`
	LowSNRFactor              float64 `yaml:"low_snr_factor"`
	UnstableWindowThreshold   float64 `yaml:"unstable_window_threshold"`
	UnstableWindowFactor      float64 `yaml:"unstable_window_factor"`
}

// DefaultConfidenceConfig returns the default discounts.
func DefaultConfidenceConfig() ConfidenceConfig {
	return ConfidenceConfig{
		ShortDurationSec:          30,
		ShortDurationFactor:       0.7,
		MissingOversamplingFactor: 0.85,
		LowSNRDb:                  40,
		LowSNRFactor:              0.8,
		UnstableWindowThreshold:   0.5,
		UnstableWindowFactor:      0.8,
	}
}

// Factors returns the discounts that apply to key given the quality signals.
// Missing oversampling only affects true peak.
func (cfg ConfidenceConfig) Factors(quality types.QualitySignals, key types.MetricKey) []float64 {
	var factors []float64

	if quality.DurationSec != nil && *quality.DurationSec < cfg.ShortDurationSec {
		factors = append(factors, cfg.ShortDurationFactor)
	}

	if key == types.KeyTruePeak && quality.Oversampled != nil && !*quality.Oversampled {
		factors = append(factors, cfg.MissingOversamplingFactor)
	}

	if quality.SNRDb != nil && *quality.SNRDb < cfg.LowSNRDb {
		factors = append(factors, cfg.LowSNRFactor)
	}

	if quality.WindowStability != nil && *quality.WindowStability < cfg.UnstableWindowThreshold {
		factors = append(factors, cfg.UnstableWindowFactor)
	}

	return factors
}

// For returns the confidence for key.
func (cfg ConfidenceConfig) For(quality types.QualitySignals, key types.MetricKey) float64 {
	return Confidence(cfg.Factors(quality, key)...)
}
