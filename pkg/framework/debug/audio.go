package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer inspects audio buffers for level and sanity problems.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int // NaN and ±Inf
	ZeroCrossings  int
}

// Analyze performs analysis on an audio buffer.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	var acc Accumulator
	acc.analyzer = a
	acc.Add(buffer)
	return acc.Result()
}

// Accumulator folds many buffers into one AnalysisResult, e.g. every block of
// an offline render. The zero value uses the default analyzer settings.
type Accumulator struct {
	analyzer   *AudioAnalyzer
	result     AnalysisResult
	sum        float64
	sumSquares float64
	last       float32
	counted    int
}

// NewAccumulator creates an accumulator bound to an analyzer.
func (a *AudioAnalyzer) NewAccumulator() *Accumulator {
	return &Accumulator{analyzer: a}
}

// Add folds one buffer into the running result.
func (acc *Accumulator) Add(buffer []float32) {
	if acc.analyzer == nil {
		acc.analyzer = defaultAnalyzer
	}
	a := acc.analyzer
	r := &acc.result

	for _, sample := range buffer {
		r.Samples++
		f := float64(sample)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			r.HasNaN = true
			r.NaNCount++
			continue
		}

		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > r.Peak {
			r.Peak = abs
		}
		if abs >= a.clippingThreshold {
			r.Clipping = true
			r.ClippedSamples++
		}

		acc.sum += f
		acc.sumSquares += f * f

		if acc.counted > 0 && ((acc.last < 0 && sample >= 0) || (acc.last >= 0 && sample < 0)) {
			r.ZeroCrossings++
		}
		acc.last = sample
		acc.counted++
	}
}

// AddChannels folds every channel of a block.
func (acc *Accumulator) AddChannels(block [][]float32) {
	for _, ch := range block {
		acc.Add(ch)
	}
}

// Result returns the analysis of everything added so far.
func (acc *Accumulator) Result() AnalysisResult {
	r := acc.result
	if acc.counted > 0 {
		r.RMS = float32(math.Sqrt(acc.sumSquares / float64(acc.counted)))
		r.DC = float32(acc.sum / float64(acc.counted))
	}
	threshold := defaultAnalyzer.silenceThreshold
	if acc.analyzer != nil {
		threshold = acc.analyzer.silenceThreshold
	}
	r.Silent = r.RMS < threshold
	return r
}

// Issues lists the problems found in a result.
func (a *AudioAnalyzer) Issues(result AnalysisResult, name string) []string {
	var issues []string

	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: Contains %d non-finite values", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: Clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(a.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: Peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}

// CheckBuffer performs basic sanity checks on an audio buffer.
func CheckBuffer(buffer []float32, name string) []string {
	return defaultAnalyzer.Issues(defaultAnalyzer.Analyze(buffer), name)
}

var defaultAnalyzer = NewAudioAnalyzer()

// AnalyzeBuffer performs analysis on a buffer using the default analyzer.
func AnalyzeBuffer(buffer []float32) AnalysisResult {
	return defaultAnalyzer.Analyze(buffer)
}

// LogAnalysis logs a result and any issues through a logger.
func LogAnalysis(l *Logger, result AnalysisResult, name string) {
	l.Info("%s: %d samples, peak %s, rms %s", name, result.Samples,
		formatDB(result.Peak), formatDB(result.RMS))
	for _, issue := range defaultAnalyzer.Issues(result, name) {
		l.Warn("%s", issue)
	}
}

func formatDB(v float32) string {
	if v <= 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", 20*math.Log10(float64(v)))
}
