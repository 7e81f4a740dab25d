package measure

import "math"

const (
	oversample   = 4  // 4x oversampling per ITU-R BS.1770
	tapsPerPhase = 12 // filter taps per phase
	totalTaps    = oversample * tapsPerPhase
	kaiserBeta   = 5.0
)

// Peaks holds sample and 4x oversampled peak levels.
type Peaks struct {
	TruePeakDb   float64
	SamplePeakDb float64
	ISPCount     uint64 // interpolated samples above 0 dBFS
	ISPMaxDb     float64
}

// Windowed sinc lowpass at the original Nyquist, split into phases.
//
//nolint:gochecknoglobals
var polyphase = makePolyphase()

func makePolyphase() [oversample][tapsPerPhase]float64 {
	var coeffs [oversample][tapsPerPhase]float64

	center := float64(totalTaps-1) / 2.0

	for phase := range oversample {
		for tap := range tapsPerPhase {
			n := tap*oversample + phase
			x := float64(n) - center

			sinc := 1.0
			if math.Abs(x) >= 1e-10 {
				sinc = math.Sin(math.Pi*x/oversample) / (math.Pi * x / oversample)
			}

			alpha := x / center
			if math.Abs(alpha) <= 1.0 {
				window := bessel0(kaiserBeta*math.Sqrt(1-alpha*alpha)) / bessel0(kaiserBeta)
				coeffs[phase][tap] = sinc * window * oversample
			}
		}
	}

	// Unity gain per phase.
	for phase := range oversample {
		var sum float64
		for _, coeff := range coeffs[phase] {
			sum += coeff
		}

		for tap := range tapsPerPhase {
			coeffs[phase][tap] /= sum
		}
	}

	return coeffs
}

// bessel0 is the modified Bessel function of the first kind, order 0.
func bessel0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for k := 1; k <= 25; k++ {
		term *= (x * x) / (4.0 * float64(k) * float64(k))
		sum += term

		if term < 1e-12 {
			break
		}
	}

	return sum
}

func measurePeaks(channels [][]float64) Peaks {
	var (
		samplePeak float64
		truePeak   float64
		result     Peaks
	)

	history := make([]float64, tapsPerPhase)

	for _, channel := range channels {
		clear(history)

		for _, sample := range channel {
			samplePeak = max(samplePeak, math.Abs(sample))

			copy(history, history[1:])
			history[tapsPerPhase-1] = sample

			for phase := range oversample {
				var interp float64
				for tap, coeff := range polyphase[phase] {
					interp += history[tap] * coeff
				}

				interp = math.Abs(interp)
				truePeak = max(truePeak, interp)

				if interp > 1.0 {
					result.ISPCount++
					result.ISPMaxDb = max(result.ISPMaxDb, 20*math.Log10(interp))
				}
			}
		}
	}

	result.SamplePeakDb = amplitudeDb(samplePeak)
	result.TruePeakDb = amplitudeDb(max(truePeak, samplePeak))

	return result
}

func amplitudeDb(linear float64) float64 {
	if linear <= 0 {
		return silenceFloorDb
	}

	return 20 * math.Log10(linear)
}
