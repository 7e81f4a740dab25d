package suggest

import (
	"strings"

	"github.com/farcloser/mixcritic/internal/types"
)

//nolint:gochecknoglobals
var typeThemes = map[string]types.Theme{
	TypeLoudness:                     types.ThemeLoudness,
	TypePeak:                         types.ThemeLoudness,
	TypeDynamics:                     types.ThemeDynamics,
	TypeStereo:                       types.ThemeStereo,
	TypeTone:                         types.ThemeHighs,
	TypeTechnical:                    types.ThemeArtifacts,
	string(types.DetectionClipping):  types.ThemeArtifacts,
	string(types.DetectionMasking):   types.ThemeLows,
	string(types.DetectionHarshness): types.ThemeMids,
	string(types.DetectionSibilance): types.ThemeHighs,
}

//nolint:gochecknoglobals
var subtypeThemes = map[string]types.Theme{
	types.BandSub:      types.ThemeLows,
	types.BandLowBass:  types.ThemeLows,
	types.BandLowMid:   types.ThemeMids,
	types.BandMid:      types.ThemeMids,
	types.BandHighMid:  types.ThemeMids,
	types.BandPresence: types.ThemeHighs,
	types.BandAir:      types.ThemeHighs,
}

// Checked in order against the lowercased message.
//
//nolint:gochecknoglobals
var keywordThemes = []struct {
	keyword string
	theme   types.Theme
}{
	{"loud", types.ThemeLoudness},
	{"peak", types.ThemeLoudness},
	{"dynamic", types.ThemeDynamics},
	{"compress", types.ThemeDynamics},
	{"bass", types.ThemeLows},
	{"mud", types.ThemeLows},
	{"low end", types.ThemeLows},
	{"mid", types.ThemeMids},
	{"vocal", types.ThemeMids},
	{"bright", types.ThemeHighs},
	{"treble", types.ThemeHighs},
	{"air", types.ThemeHighs},
	{"stereo", types.ThemeStereo},
	{"phase", types.ThemeStereo},
	{"clip", types.ThemeArtifacts},
	{"distort", types.ThemeArtifacts},
	{"noise", types.ThemeArtifacts},
}

// ThemeOf places a suggestion in a theme from its subtype, its type, then keywords in its message.
func ThemeOf(typ, subtype, message string) types.Theme {
	if theme, ok := subtypeThemes[subtype]; ok {
		return theme
	}

	if theme, ok := typeThemes[typ]; ok {
		return theme
	}

	lower := strings.ToLower(message)
	for _, entry := range keywordThemes {
		if strings.Contains(lower, entry.keyword) {
			return entry.theme
		}
	}

	return types.ThemeOther
}

// Group buckets suggestions by theme in presentation order, skipping empty themes.
// Order within a theme is preserved.
func Group(suggestions []types.Suggestion) []types.ThemeGroup {
	buckets := make(map[types.Theme][]types.Suggestion)
	for _, suggestion := range suggestions {
		buckets[suggestion.Theme] = append(buckets[suggestion.Theme], suggestion)
	}

	groups := make([]types.ThemeGroup, 0, len(buckets))

	for _, theme := range types.Themes() {
		if len(buckets[theme]) == 0 {
			continue
		}

		groups = append(groups, types.ThemeGroup{Theme: theme, Suggestions: buckets[theme]})
	}

	return groups
}
