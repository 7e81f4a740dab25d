package measure

import (
	"math"
	"slices"
)

const (
	lufsOffset     = -0.691
	absoluteGate   = -70.0
	relativeGate   = -10.0
	lraGate        = -20.0
	silenceFloorDb = -120.0
)

// Loudness holds the BS.1770 and DR measurements of a track.
type Loudness struct {
	IntegratedLUFS float64
	LoudnessRange  float64
	MomentaryMax   float64
	ShortTermMax   float64

	DRScore int // 0 when no block was long enough
	DRValue float64
	PeakDb  float64
	RmsDb   float64

	// GatedBlocks is the number of 400 ms blocks that passed both gates. Zero means the track was
	// too short or silent and IntegratedLUFS is meaningless.
	GatedBlocks int
	// ShortTermBlocks is the number of 3 s windows used for the loudness range.
	ShortTermBlocks int
}

type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(b *biquad, in float64) float64 {
	out := b.b0*in + s.z1
	s.z1 = b.b1*in - b.a1*out + s.z2
	s.z2 = b.b2*in - b.a2*out

	return out
}

// kWeighting returns the BS.1770-4 pre-filter (high shelf) and RLB (high pass) for the sample rate.
func kWeighting(sampleRate int) (biquad, biquad) {
	var pre, rlb biquad

	fs := float64(sampleRate)

	f0 := 1681.974450955533
	gain := 3.999843853973347
	q := 0.7071752369554196

	k := math.Tan(math.Pi * f0 / fs)
	vh := math.Pow(10, gain/20)
	vb := math.Pow(vh, 0.4996667741545416)

	a0 := 1 + k/q + k*k
	pre.b0 = (vh + vb*k/q + k*k) / a0
	pre.b1 = 2 * (k*k - vh) / a0
	pre.b2 = (vh - vb*k/q + k*k) / a0
	pre.a1 = 2 * (k*k - 1) / a0
	pre.a2 = (1 - k/q + k*k) / a0

	f0 = 38.13547087602444
	q = 0.5003270373238773
	k = math.Tan(math.Pi * f0 / fs)

	a0 = 1 + k/q + k*k
	rlb.b0 = 1 / a0
	rlb.b1 = -2 / a0
	rlb.b2 = 1 / a0
	rlb.a1 = 2 * (k*k - 1) / a0
	rlb.a2 = (1 - k/q + k*k) / a0

	return pre, rlb
}

// channelWeight is 1 except for the surrounds of 5.x layouts. LFE is not excluded.
func channelWeight(ch, numChannels int) float64 {
	if numChannels > 4 && ch >= 3 && ch <= 4 {
		return 1.41
	}

	return 1.0
}

// window is a running mean of frame power over a fixed number of frames.
type window struct {
	buf    []float64
	pos    int
	filled int
	sum    float64
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, max(size, 1))}
}

func (w *window) push(power float64) {
	w.sum += power - w.buf[w.pos]
	w.buf[w.pos] = power
	w.pos = (w.pos + 1) % len(w.buf)

	if w.filled < len(w.buf) {
		w.filled++
	}
}

func (w *window) full() bool {
	return w.filled == len(w.buf)
}

func (w *window) mean() float64 {
	return w.sum / float64(len(w.buf))
}

type drBlock struct {
	peak float64
	rms  float64
}

func measureLoudness(audio *Audio) Loudness {
	result := Loudness{
		IntegratedLUFS: silenceFloorDb,
		MomentaryMax:   silenceFloorDb,
		ShortTermMax:   silenceFloorDb,
		PeakDb:         silenceFloorDb,
		RmsDb:          silenceFloorDb,
	}

	numChannels := len(audio.Channels)
	sampleRate := audio.SampleRate

	if numChannels == 0 || sampleRate <= 0 {
		return result
	}

	pre, rlb := kWeighting(sampleRate)
	preState := make([]biquadState, numChannels)
	rlbState := make([]biquadState, numChannels)

	momentary := newWindow(sampleRate * 400 / 1000)
	shortTerm := newWindow(sampleRate * 3)
	blockSize := sampleRate * 3
	hopSize := max(sampleRate*100/1000, 1)

	var (
		momentaryPowers []float64
		shortTermPowers []float64
		blocks          []drBlock
		blockSum        float64
		blockPeak       float64
		blockSamples    int
	)

	for frame := range audio.Frames() {
		var framePower, framePeak float64

		for ch, channel := range audio.Channels {
			sample := channel[frame]
			framePeak = max(framePeak, math.Abs(sample))

			filtered := preState[ch].process(&pre, sample)
			filtered = rlbState[ch].process(&rlb, filtered)
			framePower += channelWeight(ch, numChannels) * filtered * filtered
		}

		blockSum += framePower / float64(numChannels)
		blockPeak = max(blockPeak, framePeak)
		blockSamples++

		if blockSamples >= blockSize {
			blocks = append(blocks, drBlock{peak: blockPeak, rms: math.Sqrt(blockSum / float64(blockSamples))})
			blockSum, blockPeak, blockSamples = 0, 0, 0
		}

		momentary.push(framePower)
		shortTerm.push(framePower)

		if (frame+1)%hopSize != 0 {
			continue
		}

		if momentary.full() {
			power := momentary.mean()
			momentaryPowers = append(momentaryPowers, power)
			result.MomentaryMax = max(result.MomentaryMax, powerToLUFS(power))
		}

		if shortTerm.full() {
			power := shortTerm.mean()
			shortTermPowers = append(shortTermPowers, power)
			result.ShortTermMax = max(result.ShortTermMax, powerToLUFS(power))
		}
	}

	// A trailing block counts when it is at least one second long.
	if blockSamples > sampleRate {
		blocks = append(blocks, drBlock{peak: blockPeak, rms: math.Sqrt(blockSum / float64(blockSamples))})
	}

	result.IntegratedLUFS, result.GatedBlocks = integratedLoudness(momentaryPowers)
	result.LoudnessRange, result.ShortTermBlocks = loudnessRange(shortTermPowers)
	result.DRScore, result.DRValue, result.PeakDb, result.RmsDb = dynamicRange(blocks)

	return result
}

func powerToLUFS(power float64) float64 {
	if power <= 0 {
		return silenceFloorDb
	}

	return lufsOffset + 10*math.Log10(power)
}

// integratedLoudness applies the absolute then relative gate.
func integratedLoudness(powers []float64) (float64, int) {
	var (
		sum   float64
		count int
	)

	for _, power := range powers {
		if powerToLUFS(power) > absoluteGate {
			sum += power
			count++
		}
	}

	if count == 0 {
		return silenceFloorDb, 0
	}

	threshold := powerToLUFS(sum/float64(count)) + relativeGate

	sum, count = 0, 0

	for _, power := range powers {
		if powerToLUFS(power) > threshold {
			sum += power
			count++
		}
	}

	if count == 0 {
		return silenceFloorDb, 0
	}

	return powerToLUFS(sum / float64(count)), count
}

// loudnessRange is the spread between the 10th and 95th percentile of gated short-term loudness.
func loudnessRange(powers []float64) (float64, int) {
	var values []float64

	for _, power := range powers {
		if lufs := powerToLUFS(power); lufs > absoluteGate {
			values = append(values, lufs)
		}
	}

	if len(values) < 2 {
		return 0, 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	threshold := sum/float64(len(values)) + lraGate

	gated := slices.DeleteFunc(values, func(value float64) bool { return value <= threshold })
	if len(gated) < 2 {
		return 0, 0
	}

	slices.Sort(gated)

	low := gated[int(float64(len(gated))*0.10)]
	high := gated[int(float64(len(gated))*0.95)]

	return high - low, len(gated)
}

// dynamicRange uses the second highest block peak and the mean of the loudest 20% block RMS.
// The score is clamped to DR1..DR20.
func dynamicRange(blocks []drBlock) (int, float64, float64, float64) {
	if len(blocks) == 0 {
		return 0, 0, silenceFloorDb, silenceFloorDb
	}

	peaks := make([]float64, len(blocks))
	levels := make([]float64, len(blocks))

	for i, block := range blocks {
		peaks[i] = block.peak
		levels[i] = block.rms
	}

	slices.Sort(peaks)
	slices.Reverse(peaks)
	slices.Sort(levels)
	slices.Reverse(levels)

	peak := peaks[min(1, len(peaks)-1)]

	top := max(len(levels)/5, 1)

	var sum float64
	for _, level := range levels[:top] {
		sum += level
	}

	rms := sum / float64(top)
	if rms == 0 || peak == 0 {
		return 0, 0, silenceFloorDb, silenceFloorDb
	}

	value := 20 * math.Log10(peak/rms)
	score := min(max(int(math.Round(value)), 1), 20)

	return score, value, 20 * math.Log10(peak), 20 * math.Log10(rms)
}
