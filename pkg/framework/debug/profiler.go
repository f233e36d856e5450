package debug

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name        string
	count       uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	lastTime    time.Duration
	samples     []time.Duration
	sampleIndex int
}

// DefaultProfiler is the global profiler instance.
var DefaultProfiler = NewProfiler(1000)

// NewProfiler creates a new profiler keeping maxSamples recent timings per
// section for percentiles.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples < 1 {
		maxSamples = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Start begins timing a named section and returns the function that stops it.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}

	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores an externally measured timing.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed

	if elapsed < m.minTime {
		m.minTime = elapsed
	}
	if elapsed > m.maxTime {
		m.maxTime = elapsed
	}

	m.samples[m.sampleIndex] = elapsed
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// GetMeasurement returns a copy of the measurement for a named section.
func (p *Profiler) GetMeasurement(name string) (*Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return nil, false
	}
	return m.clone(), true
}

// GetAllMeasurements returns copies of all measurements.
func (p *Profiler) GetAllMeasurements() map[string]*Measurement {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string]*Measurement, len(p.measurements))
	for k, v := range p.measurements {
		result[k] = v.clone()
	}
	return result
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.measurements = make(map[string]*Measurement)
}

// Report generates a performance report, sections sorted by name.
func (p *Profiler) Report() string {
	measurements := p.GetAllMeasurements()
	if len(measurements) == 0 {
		return "No measurements recorded"
	}

	names := make([]string, 0, len(measurements))
	for name := range measurements {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")
	for _, name := range names {
		m := measurements[name]
		fmt.Fprintf(&sb, "%s:\n", name)
		fmt.Fprintf(&sb, "  Count:   %d\n", m.count)
		fmt.Fprintf(&sb, "  Total:   %v\n", m.totalTime)
		fmt.Fprintf(&sb, "  Average: %v\n", m.Average())
		fmt.Fprintf(&sb, "  Min:     %v\n", m.minTime)
		fmt.Fprintf(&sb, "  Max:     %v\n", m.maxTime)
		fmt.Fprintf(&sb, "  P99:     %v\n", m.Percentile(99))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Measurement) clone() *Measurement {
	c := *m
	c.samples = slices.Clone(m.samples)
	return &c
}

// Count returns how many timings were recorded.
func (m *Measurement) Count() uint64 {
	return m.count
}

// Max returns the longest recorded timing.
func (m *Measurement) Max() time.Duration {
	return m.maxTime
}

// Average returns the average time for this measurement.
func (m *Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile returns the p-th percentile (0-100) of the recent samples.
func (m *Measurement) Percentile(p float64) time.Duration {
	n := len(m.samples)
	if m.count < uint64(n) {
		n = int(m.count)
	}
	if n == 0 {
		return 0
	}

	recent := slices.Clone(m.samples[:n])
	slices.Sort(recent)

	index := int(float64(n-1) * p / 100.0)
	return recent[index]
}

// Global profiling functions

// Start begins timing a named section using the default profiler.
func Start(name string) func() {
	return DefaultProfiler.Start(name)
}

// Time measures the execution time of a function using the default profiler.
func Time(name string, fn func()) {
	DefaultProfiler.Time(name, fn)
}

// EnableProfiling enables the default profiler.
func EnableProfiling() {
	DefaultProfiler.SetEnabled(true)
}

// ResetProfiling clears all measurements in the default profiler.
func ResetProfiling() {
	DefaultProfiler.Reset()
}

// ProfilingReport returns a performance report from the default profiler.
func ProfilingReport() string {
	return DefaultProfiler.Report()
}

// BlockMeasurement names the per-block processing section.
const BlockMeasurement = "ProcessBlock"

// AudioProcessProfiler relates block processing time to the real-time budget
// of one block.
type AudioProcessProfiler struct {
	*Profiler
	bufferSize     int
	sampleRate     float64
	cpuLoadPercent atomic.Uint64 // hundredths of a percent
}

// ProcessStats is a snapshot of block processing cost.
type ProcessStats struct {
	Blocks     uint64  `json:"blocks"`
	AverageUS  float64 `json:"average_us"`
	MaxUS      float64 `json:"max_us"`
	CPULoad    float64 `json:"cpu_load_percent"`
	SampleRate float64 `json:"sample_rate"`
	BlockSize  int     `json:"block_size"`
}

// NewAudioProcessProfiler creates a profiler specialized for audio processing.
func NewAudioProcessProfiler(sampleRate float64, bufferSize int) *AudioProcessProfiler {
	return &AudioProcessProfiler{
		Profiler:   NewProfiler(1000),
		sampleRate: sampleRate,
		bufferSize: bufferSize,
	}
}

// Block times one block of processing.
func (a *AudioProcessProfiler) Block(fn func()) {
	a.Time(BlockMeasurement, fn)
}

// UpdateCPULoad recomputes the average load as a percentage of the block
// duration.
func (a *AudioProcessProfiler) UpdateCPULoad() {
	m, exists := a.GetMeasurement(BlockMeasurement)
	if !exists || m.count == 0 || a.sampleRate <= 0 {
		return
	}

	bufferDuration := time.Duration(float64(a.bufferSize) / a.sampleRate * float64(time.Second))
	if bufferDuration <= 0 {
		return
	}
	cpuLoad := float64(m.Average()) / float64(bufferDuration) * 100.0

	a.cpuLoadPercent.Store(uint64(cpuLoad * 100))
}

// GetCPULoad returns the last computed CPU load percentage.
func (a *AudioProcessProfiler) GetCPULoad() float64 {
	return float64(a.cpuLoadPercent.Load()) / 100.0
}

// Stats returns a snapshot including a fresh CPU load figure.
func (a *AudioProcessProfiler) Stats() ProcessStats {
	a.UpdateCPULoad()
	s := ProcessStats{
		CPULoad:    a.GetCPULoad(),
		SampleRate: a.sampleRate,
		BlockSize:  a.bufferSize,
	}
	if m, ok := a.GetMeasurement(BlockMeasurement); ok {
		s.Blocks = m.count
		s.AverageUS = float64(m.Average()) / float64(time.Microsecond)
		s.MaxUS = float64(m.maxTime) / float64(time.Microsecond)
	}
	return s
}

// AudioReport generates an audio-specific performance report.
func (a *AudioProcessProfiler) AudioReport() string {
	a.UpdateCPULoad()

	var sb strings.Builder
	sb.WriteString(a.Report())
	sb.WriteString("\nAudio Processing Stats:\n")
	fmt.Fprintf(&sb, "  Sample Rate:  %.0f Hz\n", a.sampleRate)
	fmt.Fprintf(&sb, "  Buffer Size:  %d samples\n", a.bufferSize)
	fmt.Fprintf(&sb, "  CPU Load:     %.2f%%\n", a.GetCPULoad())
	return sb.String()
}
