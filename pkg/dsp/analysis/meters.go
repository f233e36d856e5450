package analysis

import (
	"math"
	"sync"
)

// PeakMeter measures peak signal levels
type PeakMeter struct {
	peak       float64
	hold       float64
	holdTime   float64
	decayRate  float64
	sampleRate float64
	holdCount  int
	scratch    []float64
	mu         sync.Mutex
}

// NewPeakMeter creates a new peak meter
func NewPeakMeter(sampleRate float64) *PeakMeter {
	return &PeakMeter{
		sampleRate: sampleRate,
		holdTime:   3.0,  // 3 seconds default
		decayRate:  20.0, // 20 dB/second
	}
}

// Process updates the peak meter with new samples
func (pm *PeakMeter) Process(samples []float64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Find peak in current block
	blockPeak := 0.0
	for _, sample := range samples {
		absSample := math.Abs(sample)
		if absSample > blockPeak {
			blockPeak = absSample
		}
	}

	// Update peak with decay
	samplesPerSecond := pm.sampleRate
	decayPerSample := pm.decayRate / samplesPerSecond / 20.0 * math.Log(10) // Convert dB to linear
	pm.peak *= math.Exp(-decayPerSample * float64(len(samples)))

	// Update peak if new value is higher
	if blockPeak > pm.peak {
		pm.peak = blockPeak
	}

	// Update hold
	if blockPeak > pm.hold {
		pm.hold = blockPeak
		pm.holdCount = int(pm.holdTime * pm.sampleRate)
	} else {
		pm.holdCount -= len(samples)
		if pm.holdCount <= 0 {
			pm.hold = pm.peak
			pm.holdCount = 0
		}
	}
}

// ProcessChannels updates the meter with the loudest channel of a block
func (pm *PeakMeter) ProcessChannels(block [][]float32) {
	if len(block) == 0 {
		return
	}

	pm.mu.Lock()
	n := len(block[0])
	if cap(pm.scratch) < n {
		pm.scratch = make([]float64, n)
	}
	scratch := pm.scratch[:n]
	clear(scratch)
	for _, ch := range block {
		for i := 0; i < n && i < len(ch); i++ {
			scratch[i] = math.Max(scratch[i], math.Abs(float64(ch[i])))
		}
	}
	pm.mu.Unlock()

	pm.Process(scratch)
}

// GetPeakDB returns the current peak level in decibels
func (pm *PeakMeter) GetPeakDB() float64 {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.peak > 0 {
		return 20.0 * math.Log10(pm.peak)
	}
	return -math.Inf(1)
}

// GetHold returns the held peak level (linear)
func (pm *PeakMeter) GetHold() float64 {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.hold
}

// Reset clears the peak and hold values
func (pm *PeakMeter) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peak = 0
	pm.hold = 0
	pm.holdCount = 0
}

// RMSMeter measures RMS (Root Mean Square) levels
type RMSMeter struct {
	windowSize int
	buffer     []float64
	writePos   int
	sum        float64
	count      int
	scratch    []float64
	mu         sync.Mutex
}

// NewRMSMeter creates a new RMS meter with specified window size
func NewRMSMeter(windowSizeSamples int) *RMSMeter {
	return &RMSMeter{
		windowSize: windowSizeSamples,
		buffer:     make([]float64, windowSizeSamples),
	}
}

// Process updates the RMS meter with new samples
func (rm *RMSMeter) Process(samples []float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, sample := range samples {
		// Remove old value from sum
		oldValue := rm.buffer[rm.writePos]
		rm.sum -= oldValue * oldValue

		// Add new value
		rm.buffer[rm.writePos] = sample
		rm.sum += sample * sample

		// Update position
		rm.writePos = (rm.writePos + 1) % rm.windowSize
		if rm.count < rm.windowSize {
			rm.count++
		}
	}
}

// ProcessChannels feeds planar channels as one signal whose power is the
// mean power of the channels.
func (rm *RMSMeter) ProcessChannels(block [][]float32) {
	if len(block) == 0 {
		return
	}

	rm.mu.Lock()
	n := len(block[0])
	if cap(rm.scratch) < n {
		rm.scratch = make([]float64, n)
	}
	scratch := rm.scratch[:n]
	clear(scratch)
	for _, ch := range block {
		for i := 0; i < n && i < len(ch); i++ {
			v := float64(ch[i])
			scratch[i] += v * v
		}
	}
	for i := range scratch {
		scratch[i] = math.Sqrt(scratch[i] / float64(len(block)))
	}
	rm.mu.Unlock()

	rm.Process(scratch)
}

// GetRMS returns the current RMS level (linear)
func (rm *RMSMeter) GetRMS() float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.count == 0 {
		return 0
	}

	return math.Sqrt(rm.sum / float64(rm.count))
}

// GetRMSDB returns the current RMS level in decibels
func (rm *RMSMeter) GetRMSDB() float64 {
	rms := rm.GetRMS()
	if rms > 0 {
		return 20.0 * math.Log10(rms)
	}
	return -math.Inf(1)
}

// Reset clears the RMS buffer
func (rm *RMSMeter) Reset() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for i := range rm.buffer {
		rm.buffer[i] = 0
	}
	rm.sum = 0
	rm.count = 0
	rm.writePos = 0
}
