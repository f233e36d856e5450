// Package param provides parameter management for audio plugins.
package param

import (
	"math"
)

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing uses linear interpolation
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing uses exponential smoothing (one-pole filter)
	ExponentialSmoothing
	// LogarithmicSmoothing interpolates in log space (frequency parameters)
	LogarithmicSmoothing
)

// Smoother ramps a control value towards its target to prevent zipper noise.
// It is not safe for concurrent use; the audio thread owns it.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64
	threshold     float64
	isSmoothing   bool

	step float64

	logCurrent float64
	logTarget  float64
	logStep    float64
}

// NewSmoother creates a new parameter smoother.
// rate: smoothing rate (0.9-0.999 for exponential, samples for linear and logarithmic)
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// SetTarget sets the target value for smoothing.
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}

	s.target = target
	s.isSmoothing = true

	switch s.smoothingType {
	case LinearSmoothing:
		if s.rate > 0 {
			s.step = (target - s.current) / s.rate
		} else {
			s.step = target - s.current
		}

	case LogarithmicSmoothing:
		const minVal = 0.001
		s.logCurrent = math.Log(math.Max(s.current, minVal))
		s.logTarget = math.Log(math.Max(target, minVal))

		if s.rate > 0 {
			s.logStep = (s.logTarget - s.logCurrent) / s.rate
		} else {
			s.logStep = s.logTarget - s.logCurrent
		}
	}
}

// Next returns the next smoothed value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		// y = y + a * (x - y)
		s.current += (s.target - s.current) * (1.0 - s.rate)
		if math.Abs(s.current-s.target) < s.threshold {
			s.finish()
		}

	case LinearSmoothing:
		s.current += s.step
		if s.step == 0 || (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) {
			s.finish()
		}

	case LogarithmicSmoothing:
		s.logCurrent += s.logStep
		if s.logStep == 0 || (s.logStep > 0 && s.logCurrent >= s.logTarget) || (s.logStep < 0 && s.logCurrent <= s.logTarget) {
			s.finish()
		} else {
			s.current = math.Exp(s.logCurrent)
		}
	}

	return s.current
}

func (s *Smoother) finish() {
	s.current = s.target
	s.isSmoothing = false
}

// IsSmoothing returns true if the smoother is currently smoothing.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Current returns the last value produced without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// Reset jumps to a specific value.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}

// SetTime sets the ramp length from a duration in milliseconds at the given
// sample rate.
func (s *Smoother) SetTime(sampleRate, ms float64) {
	samples := sampleRate * ms / 1000.0
	switch s.smoothingType {
	case ExponentialSmoothing:
		// -60dB after ms
		if samples > 0 {
			s.rate = math.Exp(-6.908 / samples)
		} else {
			s.rate = 0
		}
	default:
		s.rate = samples
	}
}

// SetThreshold sets the threshold for considering smoothing complete.
func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = threshold
}
