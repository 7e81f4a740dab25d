package shared

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/mixcritic/internal/types"
)

// FullScale returns the normalization divisor for a bit depth, 0 if unsupported.
func FullScale(depth types.BitDepth) float64 {
	switch depth {
	case types.Depth16:
		return MaxValue16
	case types.Depth24:
		return MaxValue24
	case types.Depth32:
		return MaxValue32
	default:
		return 0
	}
}

// ReadChannels decodes interleaved PCM into one normalized sample slice per channel.
// A trailing partial frame is dropped.
func ReadChannels(reader io.Reader, format types.PCMFormat) ([][]float64, error) {
	maxVal := FullScale(format.BitDepth)
	if maxVal == 0 || format.Channels == 0 {
		return nil, fmt.Errorf("%w: unsupported format %d-bit, %d channels",
			fault.ErrReadFailure, format.BitDepth, format.Channels)
	}

	bytesPerSample := int(format.BitDepth / 8) //nolint:gosec // bit depth and channel count are small constants
	numChannels := int(format.Channels)        //nolint:gosec // channel count is small
	frameSize := bytesPerSample * numChannels
	buf := make([]byte, frameSize*4096)

	channels := make([][]float64, numChannels)
	pending := make([]byte, 0, frameSize)

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			data := buf[:n]

			if len(pending) > 0 {
				need := min(frameSize-len(pending), len(data))
				pending = append(pending, data[:need]...)
				data = data[need:]

				if len(pending) == frameSize {
					decodeFrames(pending, format.BitDepth, bytesPerSample, maxVal, channels)
					pending = pending[:0]
				}
			}

			completeFrames := (len(data) / frameSize) * frameSize
			decodeFrames(data[:completeFrames], format.BitDepth, bytesPerSample, maxVal, channels)
			pending = append(pending, data[completeFrames:]...)
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return channels, nil
}

func decodeFrames(data []byte, depth types.BitDepth, bytesPerSample int, maxVal float64, channels [][]float64) {
	numChannels := len(channels)

	for i := 0; i+bytesPerSample <= len(data); i += bytesPerSample {
		ch := (i / bytesPerSample) % numChannels

		var sample float64

		switch depth {
		case types.Depth16:
			sample = float64(int16(binary.LittleEndian.Uint16(data[i:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
		case types.Depth24:
			raw := int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
			if raw&0x800000 != 0 {
				raw |= ^0xFFFFFF
			}

			sample = float64(raw) / maxVal
		case types.Depth32:
			sample = float64(int32(binary.LittleEndian.Uint32(data[i:]))) / maxVal //nolint:gosec // two's complement conversion for signed PCM samples
		}

		channels[ch] = append(channels[ch], sample)
	}
}
