package analysis

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// WindowFunc represents a window function type
type WindowFunc int

const (
	RectangularWindow WindowFunc = iota
	HannWindow
	HammingWindow
	BlackmanWindow
	BlackmanHarrisWindow
	FlatTopWindow
)

func (w WindowFunc) windowType() window.Type {
	switch w {
	case HannWindow:
		return window.TypeHann
	case HammingWindow:
		return window.TypeHamming
	case BlackmanWindow:
		return window.TypeBlackman
	case BlackmanHarrisWindow:
		return window.TypeBlackmanHarris4Term
	case FlatTopWindow:
		return window.TypeFlatTop
	default:
		return window.TypeRectangular
	}
}

// FFT computes windowed magnitude spectra of real signals. Magnitudes are
// scaled so a full-scale sine centred on a bin reads 1.0.
type FFT struct {
	size       int
	plan       *algofft.Plan[complex128]
	windowData []float64
	windowed   []float64
	in         []complex128
	out        []complex128
	re         []float64
	im         []float64
	magnitude  []float64
	scale      float64
}

// NewFFT creates a new FFT processor. size must be a power of two.
func NewFFT(size int, w WindowFunc) (*FFT, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("analysis: FFT size must be a power of two >= 2: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("analysis: FFT plan: %w", err)
	}

	coeffs := window.Generate(w.windowType(), size, window.WithPeriodic())
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	scale := 0.0
	if sum > 0 {
		scale = 2 / sum
	}

	bins := size/2 + 1
	return &FFT{
		size:       size,
		plan:       plan,
		windowData: coeffs,
		windowed:   make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		magnitude:  make([]float64, bins),
		scale:      scale,
	}, nil
}

// Size returns the transform length
func (f *FFT) Size() int {
	return f.size
}

// Forward windows the input and returns the magnitude of bins 0..size/2.
// Shorter input is zero padded. The returned slice is reused by the next call.
func (f *FFT) Forward(input []float64) ([]float64, error) {
	n := copy(f.windowed, input)
	clear(f.windowed[n:])
	vecmath.MulBlockInPlace(f.windowed, f.windowData)

	for i, v := range f.windowed {
		f.in[i] = complex(v, 0)
	}

	if err := f.plan.Forward(f.out, f.in); err != nil {
		return nil, fmt.Errorf("analysis: forward FFT: %w", err)
	}

	for i := range f.re {
		f.re[i] = real(f.out[i])
		f.im[i] = imag(f.out[i])
	}
	vecmath.Magnitude(f.magnitude, f.re, f.im)
	vecmath.ScaleBlock(f.magnitude, f.magnitude, f.scale)
	// DC and Nyquist have no mirrored half
	f.magnitude[0] *= 0.5
	f.magnitude[len(f.magnitude)-1] *= 0.5

	return f.magnitude, nil
}

func toDB(magnitude []float64) []float64 {
	db := make([]float64, len(magnitude))
	for i, mag := range magnitude {
		if mag > 0 {
			db[i] = math.Max(20.0*math.Log10(mag), dbFloor)
		} else {
			db[i] = dbFloor
		}
	}
	return db
}

const dbFloor = -120.0
