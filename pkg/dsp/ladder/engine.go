package ladder

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/moog"

	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

const (
	// MinCutoffHz is the lowest cutoff the engine accepts
	MinCutoffHz = 1.0
	// MaxCutoffRatio bounds the cutoff relative to the sample rate
	MaxCutoffRatio = 0.45
	// MinDrive and MaxDrive bound the input drive
	MinDrive = 1.0
	MaxDrive = 24.0

	outputGain     = 1.2
	thermalVoltage = 0.5 // unity tanh scale: drive multiplies the stage input directly
	smoothingMs    = 50.0

	// cutoffThresholdHz is the smallest cutoff change that starts a ramp.
	cutoffThresholdHz = 0.01
	maxFeedback       = 4.0
)

// Engine is a four-stage nonlinear ladder per channel with six response
// modes mixed from the stage taps. Cutoff and resonance are smoothed per
// sample; drive and mode apply at once.
//
// Engine is owned by the audio thread and is not safe for concurrent use.
type Engine struct {
	sampleRate float64
	filters    []*moog.Filter

	mode      Mode
	cutoffHz  float64
	resonance float64
	drive     float64

	cutoff   *param.Smoother
	feedback *param.Smoother
}

// NewEngine creates an unprepared engine with cutoff 1 kHz, no resonance,
// unity drive and LPF24.
func NewEngine() *Engine {
	cutoff := param.NewSmoother(param.LogarithmicSmoothing, 0)
	cutoff.SetThreshold(cutoffThresholdHz)
	return &Engine{
		mode:      LPF24,
		cutoffHz:  1000,
		resonance: 0,
		drive:     1,
		cutoff:    cutoff,
		feedback:  param.NewSmoother(param.LinearSmoothing, 0),
	}
}

// Prepare allocates one ladder per channel and resets all state.
// maxBlockSize is accepted for symmetry with the host setup; the engine
// keeps no block-sized buffers.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("ladder: invalid sample rate %v", sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("ladder: invalid block size %d", maxBlockSize)
	}
	if channels <= 0 {
		return fmt.Errorf("ladder: invalid channel count %d", channels)
	}

	e.sampleRate = sampleRate
	e.cutoffHz = e.clampCutoff(e.cutoffHz)

	filters := make([]*moog.Filter, channels)
	for ch := range filters {
		f, err := moog.New(sampleRate,
			moog.WithVariant(moog.VariantClassic),
			moog.WithThermalVoltage(thermalVoltage),
			moog.WithOversampling(1),
			moog.WithNormalizeOutput(false),
			moog.WithCutoffHz(e.cutoffHz),
		)
		if err != nil {
			return fmt.Errorf("ladder: channel %d: %w", ch, err)
		}
		filters[ch] = f
	}
	e.filters = filters

	e.cutoff.SetTime(sampleRate, smoothingMs)
	e.feedback.SetTime(sampleRate, smoothingMs)
	e.Reset()
	return nil
}

// Reset clears the ladder state and jumps the smoothed controls to their
// targets.
func (e *Engine) Reset() {
	for _, f := range e.filters {
		f.Reset()
	}
	e.cutoff.Reset(e.cutoffHz)
	e.feedback.Reset(e.resonance * maxFeedback)
	e.applyDrive()
	e.applyCoefficients(e.cutoff.Current(), e.feedback.Current())
}

// SetCutoffFrequencyHz sets the cutoff target, clamped to
// [MinCutoffHz, MaxCutoffRatio*sampleRate].
func (e *Engine) SetCutoffFrequencyHz(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	e.cutoffHz = e.clampCutoff(hz)
	e.cutoff.SetTarget(e.cutoffHz)
}

// SetResonance sets the resonance target in [0, 1]; 1 self-oscillates.
func (e *Engine) SetResonance(resonance float64) {
	if math.IsNaN(resonance) {
		return
	}
	e.resonance = core.Clamp(resonance, 0, 1)
	e.feedback.SetTarget(e.resonance * maxFeedback)
}

// SetDrive sets the input drive, clamped to [MinDrive, MaxDrive]. The
// cutoff is compensated so the small-signal response does not move.
func (e *Engine) SetDrive(drive float64) {
	if math.IsNaN(drive) {
		return
	}
	drive = core.Clamp(drive, MinDrive, MaxDrive)
	if drive == e.drive {
		return
	}
	e.drive = drive
	e.applyDrive()
	e.applyCoefficients(e.cutoff.Current(), e.feedback.Current())
}

// SetMode selects the response. Changing it clears the ladder state.
func (e *Engine) SetMode(m Mode) {
	if !m.Valid() || m == e.mode {
		return
	}
	e.mode = m
	for _, f := range e.filters {
		f.Reset()
	}
}

// Process filters the block in place. Channels beyond the prepared count
// are left untouched; an unprepared engine does nothing.
func (e *Engine) Process(block [][]float32) {
	channels := min(len(block), len(e.filters))
	if channels == 0 {
		return
	}

	n := len(block[0])
	for ch := 1; ch < channels; ch++ {
		n = min(n, len(block[ch]))
	}

	mix := &mixes[e.mode]
	comp := feedbackComp[e.mode]

	for i := 0; i < n; i++ {
		if e.cutoff.IsSmoothing() || e.feedback.IsSmoothing() {
			e.applyCoefficients(e.cutoff.Next(), e.feedback.Next())
		}
		fb := e.feedback.Current()

		for ch := 0; ch < channels; ch++ {
			f := e.filters[ch]

			x := float64(block[ch][i])
			if math.IsNaN(x) || math.IsInf(x, 0) {
				x = 0
			}
			x *= 1 + fb*comp

			u := x - fb*f.State().Stage[3]
			f.ProcessSample(x)
			s := f.State().Stage

			y := mix[0]*u + mix[1]*s[0] + mix[2]*s[1] + mix[3]*s[2] + mix[4]*s[3]
			block[ch][i] = float32(core.FlushDenormals(y * outputGain))
		}
	}
}

func (e *Engine) clampCutoff(hz float64) float64 {
	upper := math.Inf(1)
	if e.sampleRate > 0 {
		upper = e.sampleRate * MaxCutoffRatio
	}
	return core.Clamp(hz, MinCutoffHz, upper)
}

func (e *Engine) applyDrive() {
	for _, f := range e.filters {
		// drive is clamped to the filter's accepted range
		_ = f.SetDrive(e.drive)
	}
}

// applyCoefficients pushes a cutoff and feedback amount into every ladder.
// The stage gain scales with drive, so the cutoff handed to the ladder is
// pulled down until drive times stage gain matches the requested cutoff.
func (e *Engine) applyCoefficients(cutoffHz, feedback float64) {
	if e.sampleRate <= 0 {
		return
	}

	fc := cutoffHz / e.sampleRate
	g := (1 - math.Exp(-2*math.Pi*fc)) / e.drive
	compensated := -math.Log(1-g) / (2 * math.Pi) * e.sampleRate
	compensated = core.Clamp(compensated, MinCutoffHz, e.sampleRate*MaxCutoffRatio)

	for _, f := range e.filters {
		// both values are clamped to the ladder's accepted ranges above
		_ = f.SetResonance(feedback)
		_ = f.SetCutoffHz(compensated)
	}
}
