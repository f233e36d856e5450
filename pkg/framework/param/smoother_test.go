package param

import (
	"math"
	"testing"
)

func TestSmoother(t *testing.T) {
	t.Run("LinearSmoothing", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 10) // 10 samples
		smoother.Reset(0.0)
		smoother.SetTarget(1.0)

		for i := 0; i < 10; i++ {
			value := smoother.Next()
			expected := float64(i+1) * 0.1
			if math.Abs(value-expected) > 0.001 {
				t.Errorf("Sample %d: expected %f, got %f", i, expected, value)
			}
		}

		// Should stay at target
		if smoother.Next() != 1.0 {
			t.Error("Should stay at target after reaching it")
		}
		if smoother.IsSmoothing() {
			t.Error("Should not be smoothing after reaching target")
		}
	})

	t.Run("ExponentialSmoothing", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 0.9) // High = slow
		smoother.Reset(0.0)
		smoother.SetTarget(1.0)

		prev := 0.0
		for i := 0; i < 50; i++ {
			value := smoother.Next()
			if value <= prev {
				t.Error("Value should be increasing")
			}
			if value >= 1.0 {
				t.Error("Should not exceed target")
			}
			prev = value
		}

		for i := 0; i < 200; i++ {
			smoother.Next()
		}
		if smoother.IsSmoothing() {
			t.Error("Should have reached target by now")
		}
	})

	t.Run("LogarithmicSmoothing", func(t *testing.T) {
		smoother := NewSmoother(LogarithmicSmoothing, 10)
		smoother.Reset(100.0)
		smoother.SetTarget(1000.0)

		values := []float64{}
		for i := 0; i < 9; i++ {
			values = append(values, smoother.Next())
		}

		// Constant ratio between consecutive values
		ratio := values[1] / values[0]
		for i := 2; i < len(values); i++ {
			currentRatio := values[i] / values[i-1]
			if math.Abs(currentRatio-ratio) > 0.01 {
				t.Error("Logarithmic interpolation not maintaining constant ratio")
			}
		}

		advance(smoother, 5)
		if smoother.Current() != 1000.0 {
			t.Errorf("Expected 1000 after ramp, got %f", smoother.Current())
		}
	})

	t.Run("Threshold", func(t *testing.T) {
		smoother := NewSmoother(ExponentialSmoothing, 0.9)
		smoother.SetThreshold(0.1)
		smoother.Reset(0.0)
		smoother.SetTarget(0.05)

		if smoother.IsSmoothing() {
			t.Error("Should not smooth when change is below threshold")
		}
	})

	t.Run("ZeroRateJumps", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 0)
		smoother.Reset(2.0)
		smoother.SetTarget(5.0)

		if got := smoother.Next(); got != 5.0 {
			t.Errorf("Expected 5.0, got %f", got)
		}
		if smoother.IsSmoothing() {
			t.Error("Should not be smoothing after a zero-length ramp")
		}
	})

	t.Run("HalfRamp", func(t *testing.T) {
		smoother := NewSmoother(LinearSmoothing, 100)
		smoother.Reset(0.0)
		smoother.SetTarget(1.0)

		got := advance(smoother, 50)
		if math.Abs(got-0.5) > 1e-9 {
			t.Errorf("Expected 0.5 after half the ramp, got %f", got)
		}
		if got := advance(smoother, 50); got != 1.0 {
			t.Errorf("Expected 1.0 at the end of the ramp, got %f", got)
		}
	})
}

// advance runs n samples of a ramp and returns the value reached.
func advance(s *Smoother, n int) float64 {
	for i := 0; i < n && s.IsSmoothing(); i++ {
		s.Next()
	}
	return s.Current()
}

func TestSmootherSetTime(t *testing.T) {
	linear := NewSmoother(LinearSmoothing, 0)
	linear.SetTime(48000, 50)
	linear.Reset(0)
	linear.SetTarget(1)
	advance(linear, 2399)
	if !linear.IsSmoothing() {
		t.Error("Expected ramp to last 2400 samples")
	}
	advance(linear, 2)
	if linear.IsSmoothing() {
		t.Error("Expected ramp to finish after 2400 samples")
	}

	exp := NewSmoother(ExponentialSmoothing, 0)
	exp.SetTime(1000, 10)
	expected := math.Exp(-6.908 / 10)
	if math.Abs(exp.rate-expected) > 1e-12 {
		t.Errorf("Expected coefficient %f, got %f", expected, exp.rate)
	}
}
