package suggest

import (
	"fmt"
	"math"
	"strings"

	"github.com/farcloser/mixcritic/internal/types"
)

// Suggestion families for deviations.
const (
	TypeLoudness  = "loudness"
	TypePeak      = "peak"
	TypeDynamics  = "dynamics"
	TypeStereo    = "stereo"
	TypeBand      = "band"
	TypeTone      = "tone"
	TypeTechnical = "technical"
	TypeMetric    = "metric"
)

type phrase struct {
	message   string
	action    string
	rationale string
}

type template struct {
	typ     string
	subtype string
	low     phrase
	high    phrase
}

//nolint:gochecknoglobals,lll
var metricTemplates = map[types.MetricKey]template{
	types.KeyIntegratedLoudness: {
		typ: TypeLoudness,
		low: phrase{
			message:   "Mix is {delta} LU quieter than the {genre} target of {target} LUFS",
			action:    "Raise the limiter input or makeup gain by about {delta} dB",
			rationale: "Tracks far below genre loudness sound weak next to their peers on playlists.",
		},
		high: phrase{
			message:   "Mix is {delta} LU louder than the {genre} target of {target} LUFS",
			action:    "Back off the limiter input by about {delta} dB",
			rationale: "Streaming normalization turns it down anyway and the extra limiting costs punch.",
		},
	},
	types.KeyTruePeak: {
		typ: TypePeak,
		low: phrase{
			message:   "True peak sits {delta} dB under the {target} dBTP ceiling",
			action:    "No action needed unless loudness is also low",
			rationale: "Unused headroom is only a problem when the track is too quiet.",
		},
		high: phrase{
			message:   "True peak exceeds the {target} dBTP ceiling by {delta} dB",
			action:    "Lower the limiter ceiling or enable true peak limiting",
			rationale: "Inter-sample overs distort after lossy encoding and on cheap DACs.",
		},
	},
	types.KeyDynamicRange: {
		typ:     TypeDynamics,
		subtype: "dynamic_range",
		low: phrase{
			message:   "Dynamic range is {delta} DR below the {genre} target of {target}",
			action:    "Ease bus compression and limiting to restore transients",
			rationale: "Over-compressed mixes lose punch and cause listening fatigue.",
		},
		high: phrase{
			message:   "Dynamic range is {delta} DR above the {genre} target of {target}",
			action:    "Add gentle bus compression to glue the mix",
			rationale: "Quiet passages may disappear in noisy listening environments.",
		},
	},
	types.KeyLoudnessRange: {
		typ:     TypeDynamics,
		subtype: "loudness_range",
		low: phrase{
			message:   "Loudness range is {delta} LU narrower than the {genre} target of {target} LU",
			action:    "Let sections breathe: automate levels between verses and choruses",
			rationale: "A flat macro-dynamic contour makes arrangements sound static.",
		},
		high: phrase{
			message:   "Loudness range is {delta} LU wider than the {genre} target of {target} LU",
			action:    "Ride the quiet sections up or compress the loud sections",
			rationale: "Large level swings force listeners to reach for the volume control.",
		},
	},
	types.KeyCrestFactor: {
		typ:     TypeDynamics,
		subtype: "crest_factor",
		low: phrase{
			message:   "Crest factor is {delta} dB below the {genre} target of {target} dB",
			action:    "Use slower attack times so transients pass the compressor",
			rationale: "Flattened peaks reduce perceived punch.",
		},
		high: phrase{
			message:   "Crest factor is {delta} dB above the {genre} target of {target} dB",
			action:    "Tame transient peaks with a fast compressor or clipper",
			rationale: "Spiky peaks waste headroom that could be used for loudness.",
		},
	},
	types.KeyStereoCorrelation: {
		typ:     TypeStereo,
		subtype: "correlation",
		low: phrase{
			message:   "Stereo correlation is {delta} below the {genre} target of {target}",
			action:    "Check wideners and phase on stereo sources, keep lows mono",
			rationale: "Low correlation collapses badly on mono playback.",
		},
		high: phrase{
			message:   "Stereo correlation is {delta} above the {genre} target of {target}",
			action:    "Pan supporting elements wider or add stereo ambience",
			rationale: "A near-mono image sounds small next to genre references.",
		},
	},
	types.KeySpectralCentroid: {
		typ:     TypeTone,
		subtype: "centroid",
		low: phrase{
			message:   "Spectral centroid is {delta} Hz below the {genre} target of {target} Hz",
			action:    "Brighten with a gentle high shelf or reduce low-mid build-up",
			rationale: "A dark tonal balance loses clarity on small speakers.",
		},
		high: phrase{
			message:   "Spectral centroid is {delta} Hz above the {genre} target of {target} Hz",
			action:    "Soften the top end with a high shelf cut",
			rationale: "An overly bright balance becomes fatiguing.",
		},
	},
	types.KeySpectralRolloff: {
		typ:     TypeTone,
		subtype: "rolloff",
		low: phrase{
			message:   "Spectral rolloff is {delta} Hz below the {genre} target of {target} Hz",
			action:    "Open up the highs, check for dull samples or heavy low-pass filters",
			rationale: "Missing top octave energy makes the mix sound muffled.",
		},
		high: phrase{
			message:   "Spectral rolloff is {delta} Hz above the {genre} target of {target} Hz",
			action:    "Trim excessive air and hiss above 10 kHz",
			rationale: "Too much extreme top end sounds brittle.",
		},
	},
	types.KeyDCOffset: {
		typ:     TypeTechnical,
		subtype: "dc_offset",
		high: phrase{
			message:   "DC offset of {value} exceeds the tolerated {target}",
			action:    "Apply a DC filter or a 20 Hz high-pass on the offending tracks",
			rationale: "DC wastes headroom and causes clicks at edits.",
		},
	},
	types.KeyTHD: {
		typ:     TypeTechnical,
		subtype: "thd",
		high: phrase{
			message:   "Harmonic distortion is {delta}% above the {genre} target of {target}%",
			action:    "Reduce saturation or drive on the master chain",
			rationale: "Excess distortion smears the mix and reads as harshness.",
		},
	},
	types.KeyClipping: {
		typ:     TypeTechnical,
		subtype: "clipping",
		high: phrase{
			message:   "{value} clipped samples, {delta} more than tolerated",
			action:    "Lower gain before the converter or limiter",
			rationale: "Clipped samples produce audible distortion.",
		},
	},
}

//nolint:gochecknoglobals
var bandTemplate = template{
	typ: TypeBand,
	low: phrase{
		message:   "The {band} band is {delta} dB below the {genre} target of {target} dB",
		action:    "Boost {band} gently or check the arrangement for missing parts in that range",
		rationale: "The tonal balance is thinner than typical {genre} mixes.",
	},
	high: phrase{
		message:   "The {band} band is {delta} dB above the {genre} target of {target} dB",
		action:    "Cut {band} or reduce the elements crowding that range",
		rationale: "The tonal balance is heavier than typical {genre} mixes.",
	},
}

//nolint:gochecknoglobals
var genericTemplate = template{
	typ: TypeMetric,
	low: phrase{
		message:   "{metric} is {delta} below the {genre} target of {target}",
		action:    "Bring {metric} up toward the reference",
		rationale: "The measurement is outside the reference tolerance.",
	},
	high: phrase{
		message:   "{metric} is {delta} above the {genre} target of {target}",
		action:    "Bring {metric} down toward the reference",
		rationale: "The measurement is outside the reference tolerance.",
	},
}

//nolint:gochecknoglobals
var detectionTemplates = map[types.DetectionType]phrase{
	types.DetectionSibilance: {
		message:   "Sibilance around {frequency} sits at {intensity} dB against the surrounding highs",
		action:    "De-ess the lead vocal between 6 and 9 kHz",
		rationale: "Harsh esses are the first thing lossy codecs and earbuds exaggerate.",
	},
	types.DetectionHarshness: {
		message:   "Resonance at {frequency} stands {intensity} dB above neighbouring frequencies",
		action:    "Cut a narrow EQ notch at {frequency} on the offending source",
		rationale: "Upper-mid resonances are perceived as harshness and fatigue.",
	},
	types.DetectionMasking: {
		message:   "Low-mid build-up around {frequency}, {intensity} dB above the adjacent bands",
		action:    "High-pass non-bass elements and carve 200-400 Hz on pads and guitars",
		rationale: "Mud in the low mids masks the kick, bass and vocal fundamentals.",
	},
	types.DetectionClipping: {
		message:   "Clipping detected: {count} clipped samples ({percentage}%)",
		action:    "Lower gain before the limiter or re-render without clipping",
		rationale: "Hard clipping is audible distortion that cannot be fixed downstream.",
	},
}

func templateFor(key types.MetricKey) (template, string) {
	if band, ok := key.Band(); ok {
		tpl := bandTemplate
		tpl.subtype = band

		return tpl, band
	}

	if tpl, ok := metricTemplates[key]; ok {
		return tpl, ""
	}

	tpl := genericTemplate
	tpl.subtype = string(key)

	return tpl, ""
}

func formatNumber(value float64) string {
	if value != 0 && math.Abs(value) < 0.1 {
		return fmt.Sprintf("%.4f", value)
	}

	return fmt.Sprintf("%.1f", value)
}

func formatFrequency(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.1f kHz", hz/1000)
	}

	return fmt.Sprintf("%.0f Hz", hz)
}

func render(replacer *strings.Replacer, text phrase) phrase {
	return phrase{
		message:   replacer.Replace(text.message),
		action:    replacer.Replace(text.action),
		rationale: replacer.Replace(text.rationale),
	}
}
