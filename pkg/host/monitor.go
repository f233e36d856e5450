package host

import (
	"fmt"
	"math"

	"github.com/justyntemme/ladderfilter/pkg/dsp/analysis"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
)

const (
	// rmsWindow is the RMS meter window in seconds.
	rmsWindow = 0.3

	// bandsPerOctave sets the band analysis resolution.
	bandsPerOctave = 3
)

// Band is the level of one fractional-octave band.
type Band struct {
	Hz float64 `json:"hz"`
	DB float64 `json:"db"`
}

// Monitor watches the processed output: a smoothed spectrum for the editor
// display, peak and RMS meters, and a running signal analysis for the
// shutdown report.
type Monitor struct {
	spectrum *analysis.SpectrumAnalyzer
	peak     *analysis.PeakMeter
	rms      *analysis.RMSMeter
	analyzer *debug.AudioAnalyzer
	acc      *debug.Accumulator

	centers []float64
}

// NewMonitor creates a monitor for output at sampleRate. A new spectrum is
// taken every hop samples.
func NewMonitor(sampleRate float64, fftSize, hop int) (*Monitor, error) {
	sa, err := analysis.NewSpectrumAnalyzer(fftSize, sampleRate, analysis.BlackmanHarrisWindow)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	sa.SetHopSize(hop)
	sa.SetAveraging(analysis.ExponentialAveraging, 1)
	sa.SetSmoothing(0.8)
	sa.SetFrequencyRange(20, 20000)

	analyzer := debug.NewAudioAnalyzer()
	return &Monitor{
		spectrum: sa,
		peak:     analysis.NewPeakMeter(sampleRate),
		rms:      analysis.NewRMSMeter(int(sampleRate * rmsWindow)),
		analyzer: analyzer,
		acc:      analyzer.NewAccumulator(),
		centers:  analysis.OctaveCenters(bandsPerOctave, 20, math.Min(20000, sampleRate/2)),
	}, nil
}

// Push feeds one processed block. Only the render goroutine calls it.
func (m *Monitor) Push(block [][]float32) {
	m.spectrum.ProcessChannels(block)
	m.peak.ProcessChannels(block)
	m.rms.ProcessChannels(block)
	m.acc.AddChannels(block)
}

// Spectrum appends the display spectrum in dB to dst.
func (m *Monitor) Spectrum(dst []float64) []float64 {
	return append(dst, m.spectrum.GetSpectrumDBInRange()...)
}

// PeakDB returns the output peak level.
func (m *Monitor) PeakDB() float64 {
	return m.peak.GetPeakDB()
}

// HoldDB returns the peak held over the last three seconds.
func (m *Monitor) HoldDB() float64 {
	return 20 * math.Log10(m.peak.GetHold())
}

// RMSDB returns the output level over the last rmsWindow seconds.
func (m *Monitor) RMSDB() float64 {
	return m.rms.GetRMSDB()
}

// PeakFrequency returns the frequency of the strongest spectrum bin, 0
// before any output.
func (m *Monitor) PeakFrequency() float64 {
	freq, mag := m.spectrum.GetPeakFrequency()
	if mag == 0 {
		return 0
	}
	return freq
}

// Bands returns the third-octave band levels of the output spectrum.
func (m *Monitor) Bands() []Band {
	levels := m.spectrum.BandLevelsDB(make([]float64, 0, len(m.centers)), m.centers, bandsPerOctave)
	bands := make([]Band, len(levels))
	for i, db := range levels {
		bands[i] = Band{Hz: m.centers[i], DB: db}
	}
	return bands
}

// Analysis returns the accumulated output analysis. Call it after rendering
// has stopped.
func (m *Monitor) Analysis() debug.AnalysisResult {
	return m.acc.Result()
}

// Report logs the accumulated analysis and its issues.
func (m *Monitor) Report(l *debug.Logger) {
	debug.LogAnalysis(l, m.Analysis(), "output")
}
