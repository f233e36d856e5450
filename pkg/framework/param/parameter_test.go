package param

import (
	"math"
	"testing"
)

func TestParameterClamping(t *testing.T) {
	p := New(0, "Drive").Range(1, 3).Default(1).Build()

	tests := []struct {
		in, want float64
	}{
		{0.5, 1},
		{2, 2},
		{3.5, 3},
		{math.Inf(1), 3},
		{math.Inf(-1), 1},
	}

	for _, test := range tests {
		p.Set(test.in)
		if got := p.Get(); got != test.want {
			t.Errorf("Set(%f): expected %f, got %f", test.in, test.want, got)
		}
	}
}

func TestParameterIgnoresNaN(t *testing.T) {
	p := New(0, "Res").Range(0, 1).Default(0.25).Build()
	p.Set(math.NaN())
	if got := p.Get(); got != 0.25 {
		t.Errorf("Expected NaN write to be ignored, got %f", got)
	}
}

func TestParameterExactRoundTrip(t *testing.T) {
	p := New(0, "Cutoff").Range(20, 20000).Default(20000).Build()
	p.Set(5000)
	if got := p.Get(); got != 5000 {
		t.Errorf("Expected 5000, got %v", got)
	}
}

func TestParameterDefaults(t *testing.T) {
	p := New(3, "Mode").Range(1, 6).Steps(5).Default(1).Build()

	if p.Key != "Mode" {
		t.Errorf("Expected key to default to name, got %q", p.Key)
	}
	if p.Get() != 1 {
		t.Errorf("Expected default 1, got %f", p.Get())
	}
	if !p.IsDiscrete() {
		t.Error("Expected stepped parameter to be discrete")
	}

	p.Set(3.4)
	if p.Get() != 3 {
		t.Errorf("Expected snap to 3, got %f", p.Get())
	}
	p.Set(3.6)
	if p.Get() != 4 {
		t.Errorf("Expected snap to 4, got %f", p.Get())
	}

	p.Reset()
	if p.Get() != 1 {
		t.Errorf("Expected reset to 1, got %f", p.Get())
	}
}

func TestParameterNormalized(t *testing.T) {
	p := New(0, "Drive").Range(1, 3).Default(1).Build()

	p.SetValue(0.5)
	if p.Get() != 2 {
		t.Errorf("Expected 2, got %f", p.Get())
	}
	if p.GetValue() != 0.5 {
		t.Errorf("Expected 0.5, got %f", p.GetValue())
	}

	p.SetValue(1.5)
	if p.Get() != 3 {
		t.Errorf("Expected clamp to 3, got %f", p.Get())
	}
}

func TestParameterSkew(t *testing.T) {
	p := New(0, "Cutoff").Range(20, 20000).Skew(0.35).Default(20000).Build()

	// Half the travel lands well below the linear midpoint
	mid := p.FromProportion(0.5)
	if mid >= 10010 {
		t.Errorf("Expected skewed midpoint below linear midpoint, got %f", mid)
	}

	for _, v := range []float64{20, 100, 1000, 5000, 20000} {
		back := p.FromProportion(p.ToProportion(v))
		if math.Abs(back-v) > 1e-6*v {
			t.Errorf("Expected %f after proportion round trip, got %f", v, back)
		}
	}

	if p.FromProportion(0) != 20 || p.FromProportion(1) != 20000 {
		t.Error("Expected proportion ends to map to range ends")
	}
}

func TestParameterFormatting(t *testing.T) {
	p := New(0, "Plain").Range(0, 10).Build()

	if got := p.FormatValue(2.5); got != "2.50" {
		t.Errorf("Expected 2.50, got %s", got)
	}

	v, err := p.ParseValue("12")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v != 10 {
		t.Errorf("Expected parsed value clamped to 10, got %f", v)
	}

	if _, err := p.ParseValue("abc"); err == nil {
		t.Error("Expected error for non-numeric input")
	}
}
