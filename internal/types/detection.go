package types

// SpectralFrame is a magnitude spectrum. FreqBins and Magnitude are paired by index.
type SpectralFrame struct {
	FreqBins  []float64 // Hz, ascending
	Magnitude []float64 // linear
}

// Valid reports whether the frame has paired, non-empty arrays.
func (f *SpectralFrame) Valid() bool {
	return f != nil && len(f.FreqBins) > 0 && len(f.FreqBins) == len(f.Magnitude)
}

// DetectionType names a spectral or sample domain heuristic.
type DetectionType string

const (
	DetectionSibilance DetectionType = "sibilance"
	DetectionHarshness DetectionType = "harshness"
	DetectionMasking   DetectionType = "masking"
	DetectionClipping  DetectionType = "clipping"
)

/*
Heuristic Detection Interpretation

| Type      | FrequencyHz            | IntensityDb                         |
|-----------|------------------------|-------------------------------------|
| sibilance | 7500 (6-9 kHz centre)  | 6-9 kHz level over 4-12 kHz context |
| harshness | worst sub-band centre  | sub-band level over its neighbours  |
| masking   | 300 (200-400 Hz)       | 200-400 Hz level over 100-200/400-800 Hz |
| clipping  | none                   | peak sample level in dBFS           |

Confidence is 0..1. Technical carries the raw numbers behind each call
(energy shares, thresholds, clipped sample counts).
*/

// HeuristicDetection is a problem found directly in the spectrum or sample buffers.
type HeuristicDetection struct {
	Type        DetectionType
	FrequencyHz *float64
	IntensityDb float64
	Confidence  float64
	Technical   map[string]float64
}

// QualitySignals describe how trustworthy the measurements are. Nil means unknown and never discounts.
type QualitySignals struct {
	DurationSec     *float64
	Oversampled     *bool // whether true peak was measured with oversampling
	SNRDb           *float64
	WindowStability *float64 // 0..1, 1 = analysis windows agree
}
