// Package content guesses what kind of material dominates a spectrum, to gate other detectors.
package content

import (
	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

// Options configures the content gates.
type Options struct {
	VocalLoHz float64 `yaml:"vocal_lo_hz"`
	VocalHiHz float64 `yaml:"vocal_hi_hz"`
	// VocalShare is the share of total energy the formant range must exceed.
	VocalShare float64 `yaml:"vocal_share"`

	KickLoHz float64 `yaml:"kick_lo_hz"`
	KickHiHz float64 `yaml:"kick_hi_hz"`
	// KickShare is the share of total energy required at the low extreme.
	KickShare float64 `yaml:"kick_share"`

	CymbalLoHz float64 `yaml:"cymbal_lo_hz"`
	CymbalHiHz float64 `yaml:"cymbal_hi_hz"`
	// CymbalShare is the share of total energy required at the high extreme.
	CymbalShare float64 `yaml:"cymbal_share"`
}

// DefaultOptions returns the default gates.
func DefaultOptions() Options {
	return Options{
		VocalLoHz:   300,
		VocalHiHz:   3500,
		VocalShare:  0.30,
		KickLoHz:    60,
		KickHiHz:    200,
		KickShare:   0.20,
		CymbalLoHz:  8000,
		CymbalHiHz:  15000,
		CymbalShare: 0.10,
	}
}

// Vocal reports whether the formant range holds more than VocalShare of the total energy.
func Vocal(frame *types.SpectralFrame, opts Options) (bool, float64) {
	share := shared.EnergyShare(frame, opts.VocalLoHz, opts.VocalHiHz)

	return share > opts.VocalShare, share
}

// Percussive reports whether energy is concentrated at both the low and the high extremes.
func Percussive(frame *types.SpectralFrame, opts Options) (bool, float64, float64) {
	low := shared.EnergyShare(frame, opts.KickLoHz, opts.KickHiHz)
	high := shared.EnergyShare(frame, opts.CymbalLoHz, opts.CymbalHiHz)

	return low >= opts.KickShare && high >= opts.CymbalShare, low, high
}
