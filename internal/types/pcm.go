package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes interleaved little-endian signed PCM as extracted by ffmpeg or decoded from WAV.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// ChannelClipping contains per channel clipping scan results.
type ChannelClipping struct {
	Events         uint64
	ClippedSamples uint64
	LongestRun     uint64
}

// ClippingDetection contains overall clipping scan results.
// Only runs of at least the configured minimum length are counted.
type ClippingDetection struct {
	Events         uint64
	ClippedSamples uint64
	LongestRun     uint64
	Samples        uint64
	Peak           float64 // highest absolute sample value seen, clipped or not
	Channels       []ChannelClipping
}
