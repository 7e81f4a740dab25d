package profile

import "github.com/farcloser/mixcritic/internal/types"

// Entry describes how a metric is scored, independently of any genre.
type Entry struct {
	Invert     bool
	Absolute   bool
	BaseWeight float64
}

// Catalog maps metric keys to their scoring behaviour.
type Catalog map[types.MetricKey]Entry

/*
Metric Catalogue

| Metric             | Weight | Scoring                         |
|--------------------|--------|---------------------------------|
| integratedLoudness | 1.0    | two-sided                       |
| truePeak           | 1.0    | one-sided, only overs penalized |
| dynamicRange       | 0.9    | two-sided                       |
| bands              | 0.8    | two-sided, dB re. total energy  |
| stereoCorrelation  | 0.7    | two-sided                       |
| loudnessRange      | 0.6    | two-sided                       |
| crestFactor        | 0.6    | two-sided                       |
| thd                | 0.6    | one-sided                       |
| clipping           | 0.6    | one-sided                       |
| dcOffset           | 0.5    | one-sided on the magnitude      |
| spectralCentroid   | 0.5    | two-sided                       |
| spectralRolloff    | 0.4    | two-sided                       |
*/

const bandWeight = 0.8

// DefaultCatalog returns the built-in metric catalogue.
func DefaultCatalog() Catalog {
	catalog := Catalog{
		types.KeyIntegratedLoudness: {BaseWeight: 1.0},
		types.KeyTruePeak:           {BaseWeight: 1.0, Invert: true},
		types.KeyDynamicRange:       {BaseWeight: 0.9},
		types.KeyStereoCorrelation:  {BaseWeight: 0.7},
		types.KeyLoudnessRange:      {BaseWeight: 0.6},
		types.KeyCrestFactor:        {BaseWeight: 0.6},
		types.KeyTHD:                {BaseWeight: 0.6, Invert: true},
		types.KeyClipping:           {BaseWeight: 0.6, Invert: true},
		types.KeyDCOffset:           {BaseWeight: 0.5, Invert: true, Absolute: true},
		types.KeySpectralCentroid:   {BaseWeight: 0.5},
		types.KeySpectralRolloff:    {BaseWeight: 0.4},
	}

	for _, band := range types.Bands() {
		catalog[types.BandKey(band.Name)] = Entry{BaseWeight: bandWeight}
	}

	return catalog
}
