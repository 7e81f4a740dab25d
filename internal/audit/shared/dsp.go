package shared

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/mixcritic/internal/types"
)

// LinearFloor is the smallest linear magnitude converted to dB (-200 dB).
const LinearFloor = 1e-10

// ToDb converts a linear amplitude ratio to dB, clamped at LinearFloor.
func ToDb(linear float64) float64 {
	if math.IsNaN(linear) || linear < LinearFloor {
		linear = LinearFloor
	}

	return 20 * math.Log10(linear)
}

// RatioDb returns the level of num relative to den in dB, both floored.
func RatioDb(num, den float64) float64 {
	return ToDb(num) - ToDb(den)
}

// bandSlice returns the index range [start, end) of bins within [lo, hi).
// FreqBins must be ascending.
func bandSlice(frame *types.SpectralFrame, lo, hi float64) (int, int) {
	start := len(frame.FreqBins)
	end := start

	for i, freq := range frame.FreqBins {
		if freq >= lo && start == len(frame.FreqBins) {
			start = i
		}

		if freq >= hi {
			end = i

			break
		}
	}

	if start > end {
		start = end
	}

	return start, end
}

// BandMean returns the mean magnitude of bins in [lo, hi) and the bin count.
func BandMean(frame *types.SpectralFrame, lo, hi float64) (float64, int) {
	if !frame.Valid() {
		return 0, 0
	}

	start, end := bandSlice(frame, lo, hi)
	if end <= start {
		return 0, 0
	}

	return floats.Sum(frame.Magnitude[start:end]) / float64(end-start), end - start
}

// BandMeanExcluding returns the mean magnitude of bins in [lo, hi) outside [exLo, exHi).
func BandMeanExcluding(frame *types.SpectralFrame, lo, hi, exLo, exHi float64) (float64, int) {
	if !frame.Valid() {
		return 0, 0
	}

	var (
		sum   float64
		count int
	)

	for i, freq := range frame.FreqBins {
		if freq < lo || freq >= hi || (freq >= exLo && freq < exHi) {
			continue
		}

		sum += frame.Magnitude[i]
		count++
	}

	if count == 0 {
		return 0, 0
	}

	return sum / float64(count), count
}

// BandEnergy returns the summed squared magnitude of bins in [lo, hi).
func BandEnergy(frame *types.SpectralFrame, lo, hi float64) float64 {
	if !frame.Valid() {
		return 0
	}

	start, end := bandSlice(frame, lo, hi)
	if end <= start {
		return 0
	}

	band := frame.Magnitude[start:end]

	return floats.Dot(band, band)
}

// TotalEnergy returns the summed squared magnitude of the whole frame.
func TotalEnergy(frame *types.SpectralFrame) float64 {
	if !frame.Valid() {
		return 0
	}

	return floats.Dot(frame.Magnitude, frame.Magnitude)
}

// EnergyShare returns the fraction of total energy in [lo, hi), 0 for a silent frame.
func EnergyShare(frame *types.SpectralFrame, lo, hi float64) float64 {
	total := TotalEnergy(frame)
	if total <= 0 {
		return 0
	}

	return BandEnergy(frame, lo, hi) / total
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
