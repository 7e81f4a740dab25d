package measure

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

const (
	minFFTSize      = 1024
	rolloffFraction = 0.85
	shareFloor      = 1e-20
)

func makeHannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return window
}

// windowPositions spreads at most maxWindows windows of size evenly over total samples.
func windowPositions(total, size, maxWindows int) []int {
	if size <= 0 || total < size || maxWindows <= 0 {
		return nil
	}

	count := min(maxWindows, total/size)
	if count <= 1 {
		return []int{0}
	}

	span := total - size
	positions := make([]int, count)

	for i := range positions {
		positions[i] = i * span / (count - 1)
	}

	return positions
}

// averageSpectrum returns the mean magnitude spectrum of Hann windowed FFT frames and the RMS
// of each analysed window. The FFT size shrinks for short material, down to 1024.
func averageSpectrum(mono []float64, sampleRate, fftSize, maxWindows int) (*types.SpectralFrame, []float64) {
	for fftSize > len(mono) && fftSize/2 >= minFFTSize {
		fftSize /= 2
	}

	positions := windowPositions(len(mono), fftSize, maxWindows)
	if len(positions) == 0 || sampleRate <= 0 {
		return nil, nil
	}

	window := makeHannWindow(fftSize)
	binCount := fftSize/2 + 1
	magnitudeSum := make([]float64, binCount)
	fft := fourier.NewFFT(fftSize)
	fftIn := make([]float64, fftSize)
	windowRMS := make([]float64, len(positions))

	var coeffs []complex128

	for wi, pos := range positions {
		var sumSq float64

		for i := range fftSize {
			sample := mono[pos+i]
			fftIn[i] = sample * window[i]
			sumSq += sample * sample
		}

		windowRMS[wi] = math.Sqrt(sumSq / float64(fftSize))
		coeffs = fft.Coefficients(coeffs, fftIn)

		for i, c := range coeffs {
			magnitudeSum[i] += math.Hypot(real(c), imag(c))
		}
	}

	binHz := float64(sampleRate) / float64(fftSize)
	frame := &types.SpectralFrame{
		FreqBins:  make([]float64, binCount),
		Magnitude: make([]float64, binCount),
	}

	for i := range binCount {
		frame.FreqBins[i] = float64(i) * binHz
		frame.Magnitude[i] = magnitudeSum[i] / float64(len(positions))
	}

	return frame, windowRMS
}

// bandLevels returns the energy of each profile band relative to the total, in dB.
// Bands above Nyquist are left out.
func bandLevels(frame *types.SpectralFrame) map[string]float64 {
	levels := make(map[string]float64)

	if !frame.Valid() || shared.TotalEnergy(frame) == 0 {
		return levels
	}

	nyquist := frame.FreqBins[len(frame.FreqBins)-1]

	for _, band := range types.Bands() {
		if band.Lo >= nyquist {
			continue
		}

		share := shared.EnergyShare(frame, band.Lo, band.Hi)
		levels[band.Name] = 10 * math.Log10(max(share, shareFloor))
	}

	return levels
}

// centroid is the magnitude weighted mean frequency.
func centroid(frame *types.SpectralFrame) (float64, bool) {
	var weightedSum, totalMag float64

	for i, mag := range frame.Magnitude {
		weightedSum += frame.FreqBins[i] * mag
		totalMag += mag
	}

	if totalMag == 0 {
		return 0, false
	}

	return weightedSum / totalMag, true
}

// rolloff is the frequency below which 85% of the energy lies.
func rolloff(frame *types.SpectralFrame) (float64, bool) {
	total := shared.TotalEnergy(frame)
	if total == 0 {
		return 0, false
	}

	var cumulative float64

	for i, mag := range frame.Magnitude {
		cumulative += mag * mag
		if cumulative >= rolloffFraction*total {
			return frame.FreqBins[i], true
		}
	}

	return frame.FreqBins[len(frame.FreqBins)-1], true
}
