package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// correlation is the Pearson correlation of two channels. It reports false when either channel
// is constant.
func correlation(left, right []float64) (float64, bool) {
	frames := min(len(left), len(right))
	if frames < 2 {
		return 0, false
	}

	corr := stat.Correlation(left[:frames], right[:frames], nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, false
	}

	return corr, true
}

// dcOffset returns the channel mean with the largest magnitude, sign preserved.
func dcOffset(channels [][]float64) (float64, bool) {
	var (
		worst float64
		found bool
	)

	for _, channel := range channels {
		if len(channel) == 0 {
			continue
		}

		mean := stat.Mean(channel, nil)
		if !found || math.Abs(mean) > math.Abs(worst) {
			worst = mean
			found = true
		}
	}

	return worst, found
}

// crestFactor is the sample peak over the RMS of all channels, in dB.
func crestFactor(channels [][]float64) (float64, bool) {
	var (
		peak, sumSq float64
		count       int
	)

	for _, channel := range channels {
		if len(channel) == 0 {
			continue
		}

		peak = max(peak, math.Abs(floats.Max(channel)), math.Abs(floats.Min(channel)))
		sumSq += floats.Dot(channel, channel)
		count += len(channel)
	}

	if count == 0 || sumSq == 0 {
		return 0, false
	}

	return 20 * math.Log10(peak/math.Sqrt(sumSq/float64(count))), true
}
