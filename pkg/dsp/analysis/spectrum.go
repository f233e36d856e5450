package analysis

import (
	"fmt"
	"math"
	"sync"
)

// SpectrumAnalyzer provides real-time spectral analysis
type SpectrumAnalyzer struct {
	fftSize      int
	sampleRate   float64
	fft          *FFT
	buffer       []float64
	writePos     int
	hopSize      int
	averaging    AveragingMode
	avgBuffer    [][]float64
	avgWritePos  int
	avgCount     int
	smoothing    float64
	minFreq      float64
	maxFreq      float64
	minBin       int
	maxBin       int
	outputBuffer []float64
	mono         []float64
	mu           sync.Mutex
}

// AveragingMode defines how the spectrum is averaged over time
type AveragingMode int

// Averaging modes
const (
	NoAveraging AveragingMode = iota
	ExponentialAveraging
	LinearAveraging
	PeakHold
)

// NewSpectrumAnalyzer creates a new spectrum analyzer. fftSize must be a
// power of two.
func NewSpectrumAnalyzer(fftSize int, sampleRate float64, window WindowFunc) (*SpectrumAnalyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analysis: invalid sample rate %v", sampleRate)
	}
	fft, err := NewFFT(fftSize, window)
	if err != nil {
		return nil, err
	}

	sa := &SpectrumAnalyzer{
		fftSize:      fftSize,
		sampleRate:   sampleRate,
		fft:          fft,
		buffer:       make([]float64, fftSize),
		hopSize:      fftSize / 2, // 50% overlap by default
		averaging:    NoAveraging,
		smoothing:    0.9,
		minFreq:      20.0,
		maxFreq:      sampleRate / 2.0,
		outputBuffer: make([]float64, fftSize/2+1),
	}

	sa.updateFrequencyRange()

	return sa, nil
}

// SetHopSize sets the hop size (samples between FFT frames)
func (sa *SpectrumAnalyzer) SetHopSize(hopSize int) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if hopSize > 0 && hopSize <= sa.fftSize {
		sa.hopSize = hopSize
	}
}

// SetAveraging sets the averaging mode and buffer size
func (sa *SpectrumAnalyzer) SetAveraging(mode AveragingMode, bufferSize int) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.averaging = mode
	if mode != NoAveraging && bufferSize > 0 {
		sa.avgBuffer = make([][]float64, bufferSize)
		for i := range sa.avgBuffer {
			sa.avgBuffer[i] = make([]float64, sa.fftSize/2+1)
		}
		sa.avgWritePos = 0
		sa.avgCount = 0
	}
}

// SetSmoothing sets the smoothing factor for exponential averaging (0-1)
func (sa *SpectrumAnalyzer) SetSmoothing(smoothing float64) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if smoothing >= 0 && smoothing <= 1 {
		sa.smoothing = smoothing
	}
}

// SetFrequencyRange sets the frequency range to analyze
func (sa *SpectrumAnalyzer) SetFrequencyRange(minFreq, maxFreq float64) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.minFreq = math.Max(0, minFreq)
	sa.maxFreq = math.Min(sa.sampleRate/2.0, maxFreq)
	sa.updateFrequencyRange()
}

// updateFrequencyRange updates the bin range based on frequency limits
func (sa *SpectrumAnalyzer) updateFrequencyRange() {
	binWidth := sa.sampleRate / float64(sa.fftSize)
	sa.minBin = int(sa.minFreq / binWidth)
	sa.maxBin = int(sa.maxFreq/binWidth) + 1

	if sa.maxBin > sa.fftSize/2 {
		sa.maxBin = sa.fftSize / 2
	}
}

// Process adds samples to the analyzer and returns true when new spectrum is available
func (sa *SpectrumAnalyzer) Process(samples []float64) bool {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	spectrumReady := false

	for _, sample := range samples {
		sa.buffer[sa.writePos] = sample
		sa.writePos++

		if sa.writePos >= sa.fftSize {
			magnitude, err := sa.fft.Forward(sa.buffer)
			if err == nil {
				sa.applyAveraging(magnitude)
				spectrumReady = true
			}

			// Shift buffer by hop size
			if sa.hopSize < sa.fftSize {
				copy(sa.buffer, sa.buffer[sa.hopSize:])
				sa.writePos = sa.fftSize - sa.hopSize
			} else {
				sa.writePos = 0
			}
		}
	}

	return spectrumReady
}

// ProcessChannels feeds the mono sum of a block of channels
func (sa *SpectrumAnalyzer) ProcessChannels(block [][]float32) bool {
	if len(block) == 0 {
		return false
	}

	sa.mu.Lock()
	n := len(block[0])
	if cap(sa.mono) < n {
		sa.mono = make([]float64, n)
	}
	mono := sa.mono[:n]
	gain := 1.0 / float64(len(block))
	for i := range mono {
		sum := 0.0
		for _, ch := range block {
			if i < len(ch) {
				sum += float64(ch[i])
			}
		}
		mono[i] = sum * gain
	}
	sa.mu.Unlock()

	return sa.Process(mono)
}

// applyAveraging applies the selected averaging mode
func (sa *SpectrumAnalyzer) applyAveraging(magnitude []float64) {
	switch sa.averaging {
	case NoAveraging:
		copy(sa.outputBuffer, magnitude)

	case ExponentialAveraging:
		for i := range magnitude {
			sa.outputBuffer[i] = sa.outputBuffer[i]*sa.smoothing + magnitude[i]*(1-sa.smoothing)
		}

	case LinearAveraging:
		if sa.avgBuffer != nil {
			// Store current spectrum
			copy(sa.avgBuffer[sa.avgWritePos], magnitude)
			sa.avgWritePos = (sa.avgWritePos + 1) % len(sa.avgBuffer)

			if sa.avgCount < len(sa.avgBuffer) {
				sa.avgCount++
			}

			// Average all stored spectra
			for i := range sa.outputBuffer {
				sum := 0.0
				for j := 0; j < sa.avgCount; j++ {
					sum += sa.avgBuffer[j][i]
				}
				sa.outputBuffer[i] = sum / float64(sa.avgCount)
			}
		}

	case PeakHold:
		for i := range magnitude {
			if magnitude[i] > sa.outputBuffer[i] {
				sa.outputBuffer[i] = magnitude[i]
			}
		}
	}
}

// GetSpectrumInRange returns the spectrum only for the configured frequency range
func (sa *SpectrumAnalyzer) GetSpectrumInRange() []float64 {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if sa.minBin >= sa.maxBin {
		return []float64{}
	}

	rangeSize := sa.maxBin - sa.minBin
	result := make([]float64, rangeSize)
	copy(result, sa.outputBuffer[sa.minBin:sa.maxBin])
	return result
}

// GetSpectrumDBInRange returns the spectrum in dB for the configured frequency range
func (sa *SpectrumAnalyzer) GetSpectrumDBInRange() []float64 {
	return toDB(sa.GetSpectrumInRange())
}

// GetFrequencyForBin returns the frequency corresponding to a bin index
func (sa *SpectrumAnalyzer) GetFrequencyForBin(bin int) float64 {
	return float64(bin) * sa.sampleRate / float64(sa.fftSize)
}

// GetPeakFrequency finds the frequency with the highest magnitude
func (sa *SpectrumAnalyzer) GetPeakFrequency() (float64, float64) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	maxMag := 0.0
	maxBin := 0

	for i := sa.minBin; i < sa.maxBin && i < len(sa.outputBuffer); i++ {
		if sa.outputBuffer[i] > maxMag {
			maxMag = sa.outputBuffer[i]
			maxBin = i
		}
	}

	freq := sa.GetFrequencyForBin(maxBin)
	return freq, maxMag
}

// OctaveCenters returns the 1/n octave band centers between lo and hi on
// the base-two grid through 1 kHz.
func OctaveCenters(n int, lo, hi float64) []float64 {
	if n <= 0 || lo <= 0 || hi < lo {
		return nil
	}
	first := int(math.Ceil(float64(n) * math.Log2(lo/1000)))
	last := int(math.Floor(float64(n) * math.Log2(hi/1000)))

	centers := make([]float64, 0, last-first+1)
	for k := first; k <= last; k++ {
		centers = append(centers, 1000*math.Pow(2, float64(k)/float64(n)))
	}
	return centers
}

// BandLevelsDB appends to dst the RMS magnitude in dB of the 1/n octave band
// around each center. A band narrower than one bin reads its nearest bin.
func (sa *SpectrumAnalyzer) BandLevelsDB(dst, centers []float64, n int) []float64 {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	binWidth := sa.sampleRate / float64(sa.fftSize)
	last := len(sa.outputBuffer) - 1
	half := math.Pow(2, 1/(2*float64(n)))

	for _, center := range centers {
		lo := int(math.Ceil(center / half / binWidth))
		hi := int(math.Floor(center * half / binWidth))
		if hi < lo {
			lo = int(math.Round(center / binWidth))
			hi = lo
		}
		lo = min(max(lo, 0), last)
		hi = min(max(hi, 0), last)

		power := 0.0
		for _, mag := range sa.outputBuffer[lo : hi+1] {
			power += mag * mag
		}
		level := math.Sqrt(power / float64(hi-lo+1))
		if level > 0 {
			dst = append(dst, math.Max(20*math.Log10(level), dbFloor))
		} else {
			dst = append(dst, dbFloor)
		}
	}
	return dst
}
