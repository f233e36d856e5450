package debug

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestAudioAnalyzer(t *testing.T) {
	t.Run("BasicAnalysis", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		buffer := make([]float32, 1000)
		for i := range buffer {
			buffer[i] = 0.5 * float32(math.Sin(2*math.Pi*480*float64(i)/48000))
		}

		result := analyzer.Analyze(buffer)

		if result.Peak < 0.49 || result.Peak > 0.51 {
			t.Errorf("Peak incorrect: %f", result.Peak)
		}

		expectedRMS := 0.5 / math.Sqrt(2)
		if math.Abs(float64(result.RMS)-expectedRMS) > 0.01 {
			t.Errorf("RMS incorrect: %f, expected ~%f", result.RMS, expectedRMS)
		}

		if result.ZeroCrossings == 0 {
			t.Error("No zero crossings detected")
		}
		if result.Silent {
			t.Error("Should not be silent")
		}
	})

	t.Run("Clipping", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		result := analyzer.Analyze([]float32{0.5, 0.99, 1.0, -0.99, -1.0, 0.5})

		if !result.Clipping {
			t.Error("Should detect clipping")
		}
		if result.ClippedSamples != 4 {
			t.Errorf("Wrong clipped sample count: %d", result.ClippedSamples)
		}
	})

	t.Run("DCOffset", func(t *testing.T) {
		buffer := make([]float32, 100)
		for i := range buffer {
			buffer[i] = 0.3
		}

		result := AnalyzeBuffer(buffer)
		if math.Abs(float64(result.DC)-0.3) > 0.001 {
			t.Errorf("DC offset incorrect: %f", result.DC)
		}
	})

	t.Run("Silence", func(t *testing.T) {
		result := AnalyzeBuffer(make([]float32, 100))

		if !result.Silent {
			t.Error("Should detect silence")
		}
		if result.Peak != 0 {
			t.Error("Peak should be 0")
		}
	})

	t.Run("NonFinite", func(t *testing.T) {
		buffer := []float32{1.0, float32(math.NaN()), 0.5, float32(math.Inf(1))}
		result := AnalyzeBuffer(buffer)

		if !result.HasNaN {
			t.Error("Should detect NaN")
		}
		if result.NaNCount != 2 {
			t.Errorf("Wrong non-finite count: %d", result.NaNCount)
		}
		if result.Samples != 4 {
			t.Errorf("Expected 4 samples, got %d", result.Samples)
		}
	})
}

func TestAccumulator(t *testing.T) {
	var acc Accumulator
	acc.AddChannels([][]float32{{0.1, -0.2}, {0.4}})
	acc.Add([]float32{-0.3})

	r := acc.Result()
	if r.Samples != 4 {
		t.Errorf("Expected 4 samples, got %d", r.Samples)
	}
	if r.Peak != 0.4 {
		t.Errorf("Expected peak 0.4, got %f", r.Peak)
	}
	if r.Silent {
		t.Error("Should not be silent")
	}
}

func TestCheckBuffer(t *testing.T) {
	t.Run("NoIssues", func(t *testing.T) {
		issues := CheckBuffer([]float32{0.1, 0.2, -0.1, -0.2}, "test")
		if len(issues) != 0 {
			t.Errorf("Should have no issues, got: %v", issues)
		}
	})

	t.Run("MultipleIssues", func(t *testing.T) {
		buffer := []float32{float32(math.NaN()), 1.5, 0.3, 0.3, 0.3}

		issues := CheckBuffer(buffer, "test")

		var hasNaN, hasPeak, hasDC bool
		for _, issue := range issues {
			hasNaN = hasNaN || strings.Contains(issue, "non-finite")
			hasPeak = hasPeak || strings.Contains(issue, "Peak exceeds")
			hasDC = hasDC || strings.Contains(issue, "DC offset")
		}

		if !hasNaN || !hasPeak || !hasDC {
			t.Errorf("Missing expected issues, got %v", issues)
		}
	})
}

func TestLogAnalysis(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", FlagLevel)

	LogAnalysis(l, AnalyzeBuffer([]float32{0.5, -0.5, 1.5}), "out")

	output := buf.String()
	if !strings.Contains(output, "out: 3 samples") {
		t.Errorf("Expected summary line, got %s", output)
	}
	if !strings.Contains(output, "[WARN] out: Peak exceeds 1.0") {
		t.Errorf("Expected peak warning, got %s", output)
	}
}
