// Package measure turns decoded audio into the measurements, spectrum and quality signals
// consumed by the engine.
package measure

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/farcloser/mixcritic/internal/audit/shared"
	"github.com/farcloser/mixcritic/internal/types"
)

var (
	ErrNotWAV      = errors.New("not a WAV file")
	ErrUnsupported = errors.New("unsupported audio format")
)

// Audio is a decoded track: normalized samples (-1..1), one slice per channel.
type Audio struct {
	SampleRate int
	BitDepth   types.BitDepth
	Channels   [][]float64
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// DurationSec returns the duration in seconds.
func (a *Audio) DurationSec() float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	return float64(a.Frames()) / float64(a.SampleRate)
}

// FromPCM decodes interleaved little-endian signed PCM.
func FromPCM(reader io.Reader, format types.PCMFormat) (*Audio, error) {
	channels, err := shared.ReadChannels(reader, format)
	if err != nil {
		return nil, err
	}

	return &Audio{
		SampleRate: format.SampleRate,
		BitDepth:   format.BitDepth,
		Channels:   channels,
	}, nil
}

// FromWAV decodes a PCM WAV file.
func FromWAV(reader io.ReadSeeker) (*Audio, error) {
	decoder := wav.NewDecoder(reader)
	if !decoder.IsValidFile() {
		return nil, ErrNotWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWAV, err)
	}

	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupported)
	}

	depth := types.BitDepth(buf.SourceBitDepth) //nolint:gosec // bit depth is a small positive value
	if depth == 0 {
		depth = types.BitDepth(decoder.BitDepth)
	}

	scale := shared.FullScale(depth)
	if scale == 0 {
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupported, depth)
	}

	numChannels := buf.Format.NumChannels
	frames := len(buf.Data) / numChannels

	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}

	for i := range frames * numChannels {
		channels[i%numChannels][i/numChannels] = float64(buf.Data[i]) / scale
	}

	return &Audio{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   depth,
		Channels:   channels,
	}, nil
}

// Mono returns the average of all channels.
func (a *Audio) Mono() []float64 {
	frames := a.Frames()
	mono := make([]float64, frames)

	if len(a.Channels) == 0 {
		return mono
	}

	scale := 1 / float64(len(a.Channels))

	for _, channel := range a.Channels {
		for i := range frames {
			mono[i] += channel[i] * scale
		}
	}

	return mono
}
