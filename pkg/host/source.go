package host

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// Source loops a pre-generated one-second test signal.
type Source struct {
	table []float32
	pos   int
}

// NewSource generates the signal described by cfg.
func NewSource(cfg Config) (*Source, error) {
	n := int(cfg.SampleRate)
	if n <= 0 {
		return nil, fmt.Errorf("source: invalid sample rate %v", cfg.SampleRate)
	}
	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(cfg.SampleRate)},
		signal.WithSeed(cfg.Seed),
	)

	var (
		data []float64
		err  error
	)
	switch cfg.Source {
	case SourceSine:
		data, err = gen.Sine(cfg.Frequency, cfg.Amplitude, n)
	case SourceNoise:
		data, err = gen.WhiteNoise(cfg.Amplitude, n)
	case SourceMix:
		data, err = mixSource(gen, cfg, n)
	default:
		return nil, fmt.Errorf("source: unknown kind %q", cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", cfg.Source, err)
	}

	table := make([]float32, len(data))
	for i, v := range data {
		table[i] = float32(v)
	}
	return &Source{table: table}, nil
}

// mixSource sums a sine and noise and scales the sum to the amplitude.
func mixSource(gen *signal.Generator, cfg Config, n int) ([]float64, error) {
	sine, err := gen.Sine(cfg.Frequency, 1, n)
	if err != nil {
		return nil, err
	}
	noise, err := gen.WhiteNoise(0.5, n)
	if err != nil {
		return nil, err
	}
	for i := range sine {
		sine[i] += noise[i]
	}
	return signal.Normalize(sine, cfg.Amplitude)
}

// Len returns the loop length in samples.
func (s *Source) Len() int {
	return len(s.table)
}

// Fill writes the next len(block[0]) samples to every channel.
func (s *Source) Fill(block [][]float32) {
	if len(block) == 0 {
		return
	}
	first := block[0]
	for i := range first {
		first[i] = s.table[s.pos]
		s.pos++
		if s.pos == len(s.table) {
			s.pos = 0
		}
	}
	for _, ch := range block[1:] {
		copy(ch, first)
	}
}
