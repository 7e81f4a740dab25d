package ffmpeg

import (
	"strconv"
	"time"

	"github.com/farcloser/mixcritic/internal/types"
)

const (
	name = "ffmpeg"
	// Decoding a long track from a slow disk can take a while.
	timeout = 5 * time.Minute
)

// sampleFormat maps a bit depth to the raw output format: s16le, s24le or s32le.
func sampleFormat(bitDepth types.BitDepth) string {
	return "s" + strconv.FormatUint(uint64(bitDepth), 10) + "le"
}

func codec(bitDepth types.BitDepth) string {
	return "pcm_" + sampleFormat(bitDepth)
}
