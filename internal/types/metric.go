package types

import (
	"math"
	"slices"
	"strings"
)

// MetricKey identifies a measured quantity. Spectral bands use the "band:<name>" form.
type MetricKey string

const (
	KeyIntegratedLoudness MetricKey = "integratedLoudness" // LUFS
	KeyTruePeak           MetricKey = "truePeak"           // dBTP
	KeyDynamicRange       MetricKey = "dynamicRange"       // DR score
	KeyLoudnessRange      MetricKey = "loudnessRange"      // LU
	KeyCrestFactor        MetricKey = "crestFactor"        // dB
	KeyStereoCorrelation  MetricKey = "stereoCorrelation"  // -1..1
	KeyDCOffset           MetricKey = "dcOffset"           // normalized, signed
	KeyTHD                MetricKey = "thd"                // percent
	KeyClipping           MetricKey = "clipping"           // clipped sample count
	KeySpectralCentroid   MetricKey = "spectralCentroid"   // Hz
	KeySpectralRolloff    MetricKey = "spectralRolloff"    // Hz

	bandPrefix = "band:"
)

const (
	BandSub      = "sub"
	BandLowBass  = "low_bass"
	BandLowMid   = "low_mid"
	BandMid      = "mid"
	BandHighMid  = "high_mid"
	BandPresence = "presence"
	BandAir      = "air"
)

// Band is a named frequency range, lower bound inclusive.
type Band struct {
	Name string
	Lo   float64
	Hi   float64
}

// Bands returns the profile bands in ascending frequency order.
func Bands() []Band {
	return []Band{
		{Name: BandSub, Lo: 20, Hi: 60},
		{Name: BandLowBass, Lo: 60, Hi: 150},
		{Name: BandLowMid, Lo: 150, Hi: 500},
		{Name: BandMid, Lo: 500, Hi: 2000},
		{Name: BandHighMid, Lo: 2000, Hi: 5000},
		{Name: BandPresence, Lo: 5000, Hi: 10000},
		{Name: BandAir, Lo: 10000, Hi: 20000},
	}
}

// BandKey returns the metric key of a named band.
func BandKey(name string) MetricKey {
	return MetricKey(bandPrefix + name)
}

// Band returns the band name if the key designates a spectral band.
func (k MetricKey) Band() (string, bool) {
	name, ok := strings.CutPrefix(string(k), bandPrefix)
	if !ok || name == "" {
		return "", false
	}

	return name, true
}

//nolint:gochecknoglobals // lookup table, effectively const
var metricAliases = map[string]MetricKey{
	"lufs":                KeyIntegratedLoudness,
	"loudness":            KeyIntegratedLoudness,
	"integrated_loudness": KeyIntegratedLoudness,
	"integratedloudness":  KeyIntegratedLoudness,
	"tp":                  KeyTruePeak,
	"true_peak":           KeyTruePeak,
	"truepeak":            KeyTruePeak,
	"dr":                  KeyDynamicRange,
	"dynamic_range":       KeyDynamicRange,
	"dynamicrange":        KeyDynamicRange,
	"lra":                 KeyLoudnessRange,
	"loudness_range":      KeyLoudnessRange,
	"loudnessrange":       KeyLoudnessRange,
	"crest":               KeyCrestFactor,
	"crest_factor":        KeyCrestFactor,
	"crestfactor":         KeyCrestFactor,
	"stereo":              KeyStereoCorrelation,
	"correlation":         KeyStereoCorrelation,
	"stereo_correlation":  KeyStereoCorrelation,
	"stereocorrelation":   KeyStereoCorrelation,
	"dc":                  KeyDCOffset,
	"dc_offset":           KeyDCOffset,
	"dcoffset":            KeyDCOffset,
	"thd":                 KeyTHD,
	"clipping":            KeyClipping,
	"clipped_samples":     KeyClipping,
	"centroid":            KeySpectralCentroid,
	"spectral_centroid":   KeySpectralCentroid,
	"spectralcentroid":    KeySpectralCentroid,
	"rolloff":             KeySpectralRolloff,
	"spectral_rolloff":    KeySpectralRolloff,
	"spectralrolloff":     KeySpectralRolloff,
}

// ParseMetricKey resolves the canonical key for a name as found in profiles and measurement files.
// Band names are accepted bare ("sub") or prefixed ("band:sub").
func ParseMetricKey(name string) (MetricKey, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))

	if key, ok := metricAliases[lower]; ok {
		return key, true
	}

	bandName := strings.TrimPrefix(lower, bandPrefix)
	for _, band := range Bands() {
		if band.Name == bandName {
			return BandKey(band.Name), true
		}
	}

	return "", false
}

// Measurements is the flat bag of technical measurements for one track.
// A missing key and a non-finite value both mean "unavailable".
type Measurements map[MetricKey]float64

// Value returns the measurement if it is present and finite.
func (m Measurements) Value(key MetricKey) (float64, bool) {
	value, ok := m[key]
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

// Keys returns the keys in sorted order.
func (m Measurements) Keys() []MetricKey {
	keys := make([]MetricKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

// MetricSpec is the reference expectation for one metric.
type MetricSpec struct {
	Key           MetricKey
	Target        float64
	ToleranceLow  float64
	ToleranceHigh float64
	Invert        bool    // only exceeding the target is penalized (true peak, THD, DC offset)
	Absolute      bool    // the magnitude of the measurement is scored (DC offset)
	BaseWeight    float64 // importance used by priority
}

// Direction of a measurement relative to its target.
type Direction int

const (
	DirectionWithin Direction = iota
	DirectionLow
	DirectionHigh
)

func (d Direction) String() string {
	switch d {
	case DirectionWithin:
		return "within"
	case DirectionLow:
		return "low"
	case DirectionHigh:
		return "high"
	}

	return "unknown"
}

// Deviation is the scored distance of one measurement from its target.
type Deviation struct {
	Key       MetricKey
	Value     float64 // the value that was scored (after Absolute is applied)
	Target    float64
	Tolerance float64 // tolerance on the side the value falls
	Diff      float64 // Value - Target
	Ratio     float64 // |Diff| / Tolerance, zero for values below an inverted target
	Z         float64 // Diff / Tolerance, signed
	Score     float64 // 0..1, 1 = on target
	Direction Direction
}

// DiagnosticKind classifies a non fatal analysis note.
type DiagnosticKind string

const (
	DiagnosticInvalidSpec   DiagnosticKind = "invalid-spec"
	DiagnosticUnknownMetric DiagnosticKind = "unknown-metric"
)

// Diagnostic is attached to a result when part of the input had to be skipped.
type Diagnostic struct {
	Key     MetricKey
	Kind    DiagnosticKind
	Message string
}
