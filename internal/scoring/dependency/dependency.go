// Package dependency raises the priority of metrics whose fix unlocks other fixes.
package dependency

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/mixcritic/internal/types"
)

var (
	ErrInvalidRule = errors.New("invalid dependency rule")
	ErrDecode      = errors.New("failed decoding dependency rules")
)

// Op is the comparison a condition applies to a deviation.
type Op string

const (
	OpZAbove     Op = "z_above"     // signed z-score strictly above threshold
	OpZBelow     Op = "z_below"     // signed z-score strictly below threshold
	OpRatioAbove Op = "ratio_above" // tolerance ratio strictly above threshold
)

// Built-in rule IDs.
const (
	RuleHeadroomBeforeLimiter    = "headroom-before-limiter"
	RuleBassBuildupBeforeDR      = "bass-buildup-before-dr"
	RuleNarrowLowsBeforeWidening = "narrow-lows-before-widening"
)

// Condition tests a single deviation. A missing deviation never satisfies a condition.
type Condition struct {
	Key       types.MetricKey `yaml:"key"`
	Op        Op              `yaml:"op"`
	Threshold float64         `yaml:"threshold"`
}

// Clause holds when any of its conditions holds.
type Clause struct {
	AnyOf []Condition `yaml:"any_of"`
}

// Rule fires when all of its clauses hold.
type Rule struct {
	ID        string            `yaml:"id"`
	Rationale string            `yaml:"rationale"`
	All       []Clause          `yaml:"all"`
	Affected  []types.MetricKey `yaml:"affected"`
	Bonus     float64           `yaml:"bonus"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:        RuleHeadroomBeforeLimiter,
			Rationale: "control headroom before pushing the limiter",
			All: []Clause{
				{AnyOf: []Condition{{Key: types.KeyIntegratedLoudness, Op: OpZAbove, Threshold: 1}}},
				{AnyOf: []Condition{{Key: types.KeyTruePeak, Op: OpZAbove, Threshold: 1}}},
			},
			Affected: []types.MetricKey{types.KeyIntegratedLoudness, types.KeyTruePeak},
			Bonus:    0.2,
		},
		{
			ID:        RuleBassBuildupBeforeDR,
			Rationale: "fix bass buildup before chasing dynamic range",
			All: []Clause{
				{AnyOf: []Condition{
					{Key: types.BandKey(types.BandSub), Op: OpZAbove, Threshold: 1},
					{Key: types.BandKey(types.BandLowBass), Op: OpZAbove, Threshold: 1},
				}},
				{AnyOf: []Condition{{Key: types.KeyDynamicRange, Op: OpZBelow, Threshold: -1}}},
			},
			Affected: []types.MetricKey{
				types.BandKey(types.BandSub),
				types.BandKey(types.BandLowBass),
				types.KeyDynamicRange,
			},
			Bonus: 0.2,
		},
		{
			ID:        RuleNarrowLowsBeforeWidening,
			Rationale: "narrow everything below 100 Hz before widening the mix",
			All: []Clause{
				{AnyOf: []Condition{{Key: types.KeyStereoCorrelation, Op: OpRatioAbove, Threshold: 2}}},
			},
			Affected: []types.MetricKey{types.KeyStereoCorrelation},
			Bonus:    0.1,
		},
	}
}

// Holds reports whether the condition is satisfied by the deviations.
func (c Condition) Holds(deviations map[types.MetricKey]types.Deviation) bool {
	dev, ok := deviations[c.Key]
	if !ok {
		return false
	}

	switch c.Op {
	case OpZAbove:
		return dev.Z > c.Threshold
	case OpZBelow:
		return dev.Z < c.Threshold
	case OpRatioAbove:
		return math.Abs(dev.Ratio) > c.Threshold
	}

	return false
}

// Holds reports whether every clause of the rule has at least one satisfied condition.
func (r Rule) Holds(deviations map[types.MetricKey]types.Deviation) bool {
	if len(r.All) == 0 {
		return false
	}

	for _, clause := range r.All {
		if !slices.ContainsFunc(clause.AnyOf, func(c Condition) bool { return c.Holds(deviations) }) {
			return false
		}
	}

	return true
}

// Resolve evaluates the rules independently. Bonuses for a key are summed across rules,
// only keys present in deviations receive a bonus, and a rule ID is applied at most once.
func Resolve(
	rules []Rule,
	deviations map[types.MetricKey]types.Deviation,
) (map[types.MetricKey]float64, []types.DependencyBonus) {
	bonuses := map[types.MetricKey]float64{}

	var fired []types.DependencyBonus

	seen := map[string]bool{}

	for _, rule := range rules {
		if seen[rule.ID] || !rule.Holds(deviations) {
			continue
		}

		seen[rule.ID] = true

		var affected []types.MetricKey

		for _, key := range rule.Affected {
			if _, ok := deviations[key]; ok && !slices.Contains(affected, key) {
				affected = append(affected, key)
			}
		}

		if len(affected) == 0 {
			continue
		}

		slices.Sort(affected)

		for _, key := range affected {
			bonuses[key] += rule.Bonus
		}

		fired = append(fired, types.DependencyBonus{
			RuleID:       rule.ID,
			AffectedKeys: affected,
			Bonus:        rule.Bonus,
			Rationale:    rule.Rationale,
		})
	}

	return bonuses, fired
}

// LoadRules decodes a YAML rule list and validates it.
func LoadRules(reader io.Reader) ([]Rule, error) {
	var rules []Rule

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(&rules); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if err := Validate(rules); err != nil {
		return nil, err
	}

	return rules, nil
}

// Validate checks rule IDs, operators and keys, canonicalizing metric aliases in place.
func Validate(rules []Rule) error {
	ids := map[string]bool{}

	for ri := range rules {
		rule := &rules[ri]

		if rule.ID == "" {
			return fmt.Errorf("%w: rule %d has no id", ErrInvalidRule, ri)
		}

		if ids[rule.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidRule, rule.ID)
		}

		ids[rule.ID] = true

		if math.IsNaN(rule.Bonus) || math.IsInf(rule.Bonus, 0) || rule.Bonus < 0 {
			return fmt.Errorf("%w: %s: bonus %v", ErrInvalidRule, rule.ID, rule.Bonus)
		}

		if len(rule.All) == 0 || len(rule.Affected) == 0 {
			return fmt.Errorf("%w: %s: needs conditions and affected keys", ErrInvalidRule, rule.ID)
		}

		for ci := range rule.All {
			if len(rule.All[ci].AnyOf) == 0 {
				return fmt.Errorf("%w: %s: empty clause", ErrInvalidRule, rule.ID)
			}

			for di := range rule.All[ci].AnyOf {
				cond := &rule.All[ci].AnyOf[di]

				switch cond.Op {
				case OpZAbove, OpZBelow, OpRatioAbove:
				default:
					return fmt.Errorf("%w: %s: unknown op %q", ErrInvalidRule, rule.ID, cond.Op)
				}

				key, ok := types.ParseMetricKey(string(cond.Key))
				if !ok {
					return fmt.Errorf("%w: %s: unknown metric %q", ErrInvalidRule, rule.ID, cond.Key)
				}

				cond.Key = key
			}
		}

		for ai, raw := range rule.Affected {
			key, ok := types.ParseMetricKey(string(raw))
			if !ok {
				return fmt.Errorf("%w: %s: unknown metric %q", ErrInvalidRule, rule.ID, raw)
			}

			rule.Affected[ai] = key
		}
	}

	return nil
}
