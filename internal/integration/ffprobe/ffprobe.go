// Package ffprobe reads stream metadata of audio containers.
package ffprobe

import (
	"errors"
	"time"
)

const (
	name = "ffprobe"
	// Slow hard-drives spinning up or network retrieved resources may cause timeouts if too aggressive.
	timeout = 60 * time.Second
)

var (
	ErrNoAudioStream     = errors.New("no audio stream")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidChannels   = errors.New("invalid channel count")
)
