// Package tolerance scores a measurement against its reference window.
package tolerance

import (
	"errors"
	"fmt"
	"math"

	"github.com/farcloser/mixcritic/internal/types"
)

var (
	// ErrUnavailable is returned when the measured value is not finite.
	ErrUnavailable = errors.New("value unavailable")
	// ErrInvalidSpec is returned when the target or a tolerance the model relies on is unusable.
	ErrInvalidSpec = errors.New("invalid metric spec")
)

// Model turns a signed distance from the target into a 0..1 score.
type Model interface {
	// Validate checks the tolerances the model uses.
	Validate(spec types.MetricSpec) error
	// Deviation scores value against spec. Value is already validated as finite.
	Deviation(spec types.MetricSpec, value float64) types.Deviation
}

// TwoSided penalizes departures on both sides of the target.
type TwoSided struct{}

// OneSided only penalizes values above the target.
type OneSided struct{}

// ModelFor selects the model for a spec.
func ModelFor(spec types.MetricSpec) Model {
	if spec.Invert {
		return OneSided{}
	}

	return TwoSided{}
}

// Score computes the deviation of value from spec.
func Score(spec types.MetricSpec, value float64) (types.Deviation, error) {
	if !finite(spec.Target) {
		return types.Deviation{}, fmt.Errorf("%w: %s: target is not finite", ErrInvalidSpec, spec.Key)
	}

	model := ModelFor(spec)
	if err := model.Validate(spec); err != nil {
		return types.Deviation{}, err
	}

	if !finite(value) {
		return types.Deviation{}, fmt.Errorf("%w: %s", ErrUnavailable, spec.Key)
	}

	if spec.Absolute {
		value = math.Abs(value)
	}

	return model.Deviation(spec, value), nil
}

func (TwoSided) Validate(spec types.MetricSpec) error {
	if !validTolerance(spec.ToleranceLow) {
		return fmt.Errorf("%w: %s: low tolerance %v", ErrInvalidSpec, spec.Key, spec.ToleranceLow)
	}

	if !validTolerance(spec.ToleranceHigh) {
		return fmt.Errorf("%w: %s: high tolerance %v", ErrInvalidSpec, spec.Key, spec.ToleranceHigh)
	}

	return nil
}

func (TwoSided) Deviation(spec types.MetricSpec, value float64) types.Deviation {
	diff := value - spec.Target

	tol := spec.ToleranceHigh
	direction := types.DirectionHigh

	if diff < 0 {
		tol = spec.ToleranceLow
		direction = types.DirectionLow
	}

	ratio := math.Abs(diff) / tol
	if ratio <= 1 {
		direction = types.DirectionWithin
	}

	return types.Deviation{
		Key:       spec.Key,
		Value:     value,
		Target:    spec.Target,
		Tolerance: tol,
		Diff:      diff,
		Ratio:     ratio,
		Z:         diff / tol,
		Score:     twoSidedScore(ratio),
		Direction: direction,
	}
}

func (OneSided) Validate(spec types.MetricSpec) error {
	if !validTolerance(spec.ToleranceHigh) {
		return fmt.Errorf("%w: %s: high tolerance %v", ErrInvalidSpec, spec.Key, spec.ToleranceHigh)
	}

	return nil
}

func (OneSided) Deviation(spec types.MetricSpec, value float64) types.Deviation {
	diff := value - spec.Target
	tol := spec.ToleranceHigh

	dev := types.Deviation{
		Key:       spec.Key,
		Value:     value,
		Target:    spec.Target,
		Tolerance: tol,
		Diff:      diff,
		Z:         diff / tol,
		Score:     1,
		Direction: types.DirectionWithin,
	}

	if diff <= 0 {
		return dev
	}

	dev.Ratio = diff / tol
	dev.Score = oneSidedScore(dev.Ratio)

	if dev.Ratio > 1 {
		dev.Direction = types.DirectionHigh
	}

	return dev
}

// twoSidedScore is 1 inside the tolerance, 0 beyond twice the tolerance, linear in between.
func twoSidedScore(ratio float64) float64 {
	switch {
	case ratio <= 1:
		return 1
	case ratio >= 2:
		return 0
	default:
		return 1 - (ratio - 1)
	}
}

// oneSidedScore ramps 1 -> 0.5 over the first tolerance and 0.5 -> 0 over the second.
func oneSidedScore(ratio float64) float64 {
	switch {
	case ratio <= 0:
		return 1
	case ratio >= 2:
		return 0
	case ratio <= 1:
		return 1 - 0.5*ratio
	default:
		return 0.5 - 0.5*(ratio-1)
	}
}

func validTolerance(tol float64) bool {
	return finite(tol) && tol > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
