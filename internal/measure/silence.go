package measure

import "math"

// SilenceOptions configures detection of silent padding at the edges of a track.
type SilenceOptions struct {
	ThresholdDb float64 `yaml:"threshold_db"` // window RMS below this is silent (default -60)
	WindowMs    int     `yaml:"window_ms"`    // RMS window size (default 50)
}

// silentEdges returns the number of silent frames at the start and at the end, in whole windows.
// A fully silent track is all leading silence.
func silentEdges(channels [][]float64, sampleRate int, opts SilenceOptions) (int, int) {
	if len(channels) == 0 || sampleRate <= 0 {
		return 0, 0
	}

	frames := len(channels[0])
	windowFrames := max(sampleRate*opts.WindowMs/1000, 1)
	threshold := math.Pow(10, opts.ThresholdDb/20)

	silent := func(start, end int) bool {
		var sumSq float64

		for _, channel := range channels {
			for _, sample := range channel[start:end] {
				sumSq += sample * sample
			}
		}

		return math.Sqrt(sumSq/float64((end-start)*len(channels))) < threshold
	}

	lead := 0
	for lead < frames && silent(lead, min(lead+windowFrames, frames)) {
		lead += windowFrames
	}

	if lead >= frames {
		return frames, 0
	}

	trail := 0
	for frames-trail > lead && silent(max(frames-trail-windowFrames, lead), frames-trail) {
		trail += windowFrames
	}

	return lead, min(trail, frames-lead)
}
