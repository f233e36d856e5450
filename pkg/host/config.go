// Package host runs a plugin instance outside a DAW: it feeds generated
// audio through the instance block by block, plays or renders the result,
// drives parameters from automation scripts and exposes a remote control
// API.
package host

import (
	"fmt"
	"time"
)

// SourceKind selects the generated input signal.
type SourceKind string

// Source kinds
const (
	SourceSine  SourceKind = "sine"
	SourceNoise SourceKind = "noise"
	SourceMix   SourceKind = "mix"
)

// Config holds the standalone host settings.
type Config struct {
	SampleRate float64
	BlockSize  int
	Channels   int

	Source    SourceKind
	Frequency float64 // sine frequency in Hz
	Amplitude float64 // source peak level
	Seed      int64   // noise seed

	// Latency is how far rendering runs ahead of the audio device.
	Latency time.Duration
	// FFTSize is the spectrum analyzer size, a power of two.
	FFTSize int
}

// DefaultConfig returns 44.1 kHz stereo in 512-sample blocks with a noise
// source.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		BlockSize:  512,
		Channels:   2,
		Source:     SourceNoise,
		Frequency:  220,
		Amplitude:  0.25,
		Seed:       1,
		Latency:    50 * time.Millisecond,
		FFTSize:    2048,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %v", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("invalid block size %d", c.BlockSize)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("unsupported channel count %d", c.Channels)
	}
	switch c.Source {
	case SourceSine, SourceNoise, SourceMix:
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.Amplitude < 0 || c.Amplitude > 1 {
		return fmt.Errorf("amplitude %v out of range [0, 1]", c.Amplitude)
	}
	if c.FFTSize < 2 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("fft size %d is not a power of two", c.FFTSize)
	}
	return nil
}
