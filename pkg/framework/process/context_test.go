package process

import (
	"testing"

	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

func newContext(t *testing.T, in, out, n int) *Context {
	t.Helper()
	reg := param.NewRegistry()
	if err := reg.Add(param.New(7, "Drive").Range(1, 3).Default(2).Build()); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	ctx := NewContext(reg)
	ctx.Input = make([][]float32, in)
	for ch := range ctx.Input {
		ctx.Input[ch] = make([]float32, n)
		for i := range ctx.Input[ch] {
			ctx.Input[ch][i] = float32(ch + 1)
		}
	}
	ctx.Output = make([][]float32, out)
	for ch := range ctx.Output {
		ctx.Output[ch] = make([]float32, n)
		for i := range ctx.Output[ch] {
			ctx.Output[ch][i] = -1 // stale
		}
	}
	return ctx
}

func TestContextParams(t *testing.T) {
	ctx := newContext(t, 1, 1, 8)

	if got := ctx.ParamPlain(7); got != 2 {
		t.Errorf("Expected 2, got %f", got)
	}
	if got := ctx.ParamPlain(99); got != 0 {
		t.Errorf("Expected 0 for unknown parameter, got %f", got)
	}
}

func TestInPlaceAndClearUnused(t *testing.T) {
	ctx := newContext(t, 1, 3, 16)

	block := ctx.InPlace()
	if len(block) != 1 {
		t.Fatalf("Expected 1 processed channel, got %d", len(block))
	}
	for i, v := range block[0] {
		if v != 1 {
			t.Errorf("Expected input copied at %d, got %f", i, v)
		}
	}

	ctx.ClearUnusedOutputs()
	for ch := 1; ch < 3; ch++ {
		for i, v := range ctx.Output[ch] {
			if v != 0 {
				t.Errorf("Expected channel %d sample %d zeroed, got %f", ch, i, v)
			}
		}
	}
	if ctx.Output[0][0] != 1 {
		t.Error("Expected processed channel untouched")
	}
}

func TestInPlaceAliased(t *testing.T) {
	ctx := newContext(t, 2, 2, 4)
	ctx.Output = ctx.Input

	block := ctx.InPlace()
	if &block[1][0] != &ctx.Input[1][0] {
		t.Error("Expected aliased buffers to be processed in place")
	}
	if block[1][3] != 2 {
		t.Errorf("Expected 2, got %f", block[1][3])
	}
}

func TestClear(t *testing.T) {
	ctx := newContext(t, 2, 2, 32)
	ctx.Clear()
	for ch := range ctx.Output {
		for _, v := range ctx.Output[ch] {
			if v != 0 {
				t.Fatalf("Expected silence after Clear, got %f", v)
			}
		}
	}
	if ctx.NumSamples() != 32 {
		t.Errorf("Expected 32 samples, got %d", ctx.NumSamples())
	}
}
