//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/mixcritic/internal/integration/binary"
	"github.com/farcloser/mixcritic/internal/types"
)

// Result contains the parts of the ffprobe output the pipeline looks at.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

/*
Bit depth reporting by codec:

| Codec        | bits_per_raw_sample | bits_per_sample |
|--------------|---------------------|-----------------|
| FLAC         | yes                 | often 0         |
| ALAC         | usually             | sometimes       |
| WAV/PCM      | sometimes           | yes             |
| AIFF         | sometimes           | yes             |
| MP3/AAC/Opus | n/a                 | n/a             |

Decoding always extracts 32-bit PCM, so SourceBitDepth is informational only.
*/

// Stream is one stream of the container.
type Stream struct {
	Index            int    `json:"index"`
	CodecName        string `json:"codec_name"`                    // flac
	CodecType        string `json:"codec_type"`                    // audio
	SampleRate       string `json:"sample_rate,omitempty"`         // 44100
	Channels         int    `json:"channels,omitempty"`            // 2
	ChannelLayout    string `json:"channel_layout,omitempty"`      // stereo
	Duration         string `json:"duration,omitempty"`            // 310.666667
	BitRate          string `json:"bit_rate,omitempty"`            // 956821
	BitsPerRawSample string `json:"bits_per_raw_sample,omitempty"` // see above table
	BitsPerSample    int    `json:"bits_per_sample,omitempty"`     // see above table
	SampleFmt        string `json:"sample_fmt,omitempty"`          // s16
}

// Format is container level information.
type Format struct {
	Filename   string `json:"filename"`
	NbStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"`        // "flac", "mov,mp4,m4a,3gp,3g2,mj2"
	Duration   string `json:"duration,omitempty"` // seconds as a float string
	ProbeScore int    `json:"probe_score"`        // 0-100
}

// AudioStream returns the index-th audio stream (0 based, counting audio streams only).
func (r *Result) AudioStream(index int) (*Stream, error) {
	count := 0

	for i := range r.Streams {
		if r.Streams[i].CodecType != "audio" {
			continue
		}

		if count == index {
			return &r.Streams[i], nil
		}

		count++
	}

	return nil, fmt.Errorf("%w: index %d (%d audio streams)", ErrNoAudioStream, index, count)
}

// PCMFormat returns the format ffmpeg will produce when extracting this stream at bitDepth.
func (s *Stream) PCMFormat(bitDepth types.BitDepth) (types.PCMFormat, error) {
	sampleRate, err := strconv.Atoi(s.SampleRate)
	if err != nil || sampleRate <= 0 {
		return types.PCMFormat{}, fmt.Errorf("%q: %w", s.SampleRate, ErrInvalidSampleRate)
	}

	if s.Channels <= 0 {
		return types.PCMFormat{}, fmt.Errorf("%d: %w", s.Channels, ErrInvalidChannels)
	}

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   uint(s.Channels), //nolint:gosec // validated positive value
	}, nil
}

// SourceBitDepth returns the bit depth the container claims, 0 when unknown.
func (s *Stream) SourceBitDepth() int {
	if bits, err := strconv.Atoi(s.BitsPerRawSample); err == nil && bits > 0 {
		return bits
	}

	return s.BitsPerSample
}

// Parse decodes ffprobe JSON output.
func Parse(data []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return Parse(output)
}
