package host

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/ladderfilter"
	"github.com/justyntemme/ladderfilter/pkg/plugin"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BlockSize = 256
	cfg.FFTSize = 512
	return cfg
}

func newTestHost(t *testing.T, cfg Config) (*Host, *ladderfilter.Processor) {
	t.Helper()
	proc := ladderfilter.NewProcessor()
	inst := plugin.NewInstance(ladderfilter.CreatePlugin().GetInfo(), proc)
	h, err := New(cfg, inst)
	if err != nil {
		t.Fatalf("Failed to create host: %v", err)
	}
	return h, proc
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, false},
		{"zero block", func(c *Config) { c.BlockSize = 0 }, false},
		{"surround", func(c *Config) { c.Channels = 6 }, false},
		{"mono", func(c *Config) { c.Channels = 1 }, true},
		{"bad source", func(c *Config) { c.Source = "square" }, false},
		{"loud", func(c *Config) { c.Amplitude = 2 }, false},
		{"fft size", func(c *Config) { c.FFTSize = 1000 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Expected ok=%v, got %v", tt.ok, err)
			}
		})
	}
}

func TestSource(t *testing.T) {
	for _, kind := range []SourceKind{SourceSine, SourceNoise, SourceMix} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Source = kind
			cfg.Amplitude = 0.5

			src, err := NewSource(cfg)
			if err != nil {
				t.Fatalf("NewSource failed: %v", err)
			}
			if src.Len() != 44100 {
				t.Errorf("Expected one second loop, got %d", src.Len())
			}

			block := [][]float32{make([]float32, 1000), make([]float32, 1000)}
			peak := 0.0
			for range 50 {
				src.Fill(block)
				for i := range block[0] {
					if block[0][i] != block[1][i] {
						t.Fatal("Channels differ")
					}
					peak = math.Max(peak, math.Abs(float64(block[0][i])))
				}
			}
			if peak > 0.5+1e-6 || peak < 0.3 {
				t.Errorf("Expected peak near 0.5, got %f", peak)
			}
		})
	}
}

func TestRenderLength(t *testing.T) {
	h, _ := newTestHost(t, testConfig())

	frames := 0
	err := h.Render(context.Background(), 100*time.Millisecond, func(block [][]float32) error {
		if len(block) != 2 {
			t.Fatalf("Expected 2 channels, got %d", len(block))
		}
		frames += len(block[0])
		return nil
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if frames != 4410 {
		t.Errorf("Expected 4410 frames, got %d", frames)
	}
	if h.Elapsed() < 100*time.Millisecond {
		t.Errorf("Expected at least 100ms elapsed, got %v", h.Elapsed())
	}

	stats := h.Stats()
	if stats.Process.Blocks == 0 {
		t.Error("Expected profiled blocks")
	}
	if stats.RMSDB <= silenceDB || stats.RMSDB > stats.PeakDB {
		t.Errorf("Expected RMS between silence and peak, got %v (peak %v)", stats.RMSDB, stats.PeakDB)
	}
	if stats.HoldDB < stats.PeakDB {
		t.Errorf("Expected held peak at or above peak, got %v (peak %v)", stats.HoldDB, stats.PeakDB)
	}
	if h.Monitor().Analysis().HasNaN {
		t.Error("Output contains non-finite samples")
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestSpectrumPeakFollowsSine(t *testing.T) {
	cfg := testConfig()
	cfg.Source = SourceSine
	cfg.Frequency = 1000
	cfg.FFTSize = 4096
	h, _ := newTestHost(t, cfg)

	if h.Stats().PeakHz != 0 {
		t.Error("Expected no peak before rendering")
	}
	if err := h.Render(context.Background(), 500*time.Millisecond, func([][]float32) error { return nil }); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// The default filter is wide open, so the sine passes through.
	peak := h.Stats().PeakHz
	if math.Abs(peak-1000) > 2*cfg.SampleRate/float64(cfg.FFTSize) {
		t.Errorf("Expected spectrum peak near 1000 Hz, got %f", peak)
	}
	if bins := h.Monitor().Spectrum(nil); len(bins) == 0 {
		t.Error("Expected display spectrum")
	}

	bands := h.Stats().Bands
	if len(bands) != 29 {
		t.Fatalf("Expected 29 third octave bands, got %d", len(bands))
	}
	loudest := bands[0]
	for _, b := range bands {
		if b.DB > loudest.DB {
			loudest = b
		}
	}
	if loudest.Hz != 1000 {
		t.Errorf("Expected loudest band at 1000 Hz, got %f Hz", loudest.Hz)
	}
}

func TestEditsReachRecorder(t *testing.T) {
	h, proc := newTestHost(t, testConfig())
	ed := proc.CreateEditor()
	ed.SetEditSink(h.Instance())

	ed.BeginSliderGesture(0)
	ed.DragSlider(0, 0.25)
	ed.DragSlider(0, 0.5)
	if open := h.Stats().Edits.Open; open != 1 {
		t.Errorf("Expected 1 open gesture during a drag, got %d", open)
	}
	ed.EndSliderGesture(0)
	ed.StepMenu(1)

	edits := h.Stats().Edits
	if edits.Gestures != 2 {
		t.Errorf("Expected 2 gestures, got %d", edits.Gestures)
	}
	if edits.Changes != 3 {
		t.Errorf("Expected 3 changes, got %d", edits.Changes)
	}
	if edits.Open != 0 {
		t.Errorf("Expected no open gestures, got %d", edits.Open)
	}
	if edits.Last != ladderfilter.KeyFilterMode {
		t.Errorf("Expected last edit on %s, got %q", ladderfilter.KeyFilterMode, edits.Last)
	}
}

func TestEditRecorderUnmatched(t *testing.T) {
	proc := ladderfilter.NewProcessor()
	r := NewEditRecorder(proc.Parameters())

	r.EndEdit(ladderfilter.ParamCutoff)
	r.PerformEdit(ladderfilter.ParamCutoff, 0.5)
	r.BeginEdit(ladderfilter.ParamDrive)
	r.BeginEdit(ladderfilter.ParamDrive)

	s := r.Stats()
	if s.Gestures != 1 || s.Changes != 1 || s.Open != 1 {
		t.Errorf("Expected 1 gesture, 1 change, 1 open, got %+v", s)
	}
	if s.Last != ladderfilter.KeyCutoff {
		t.Errorf("Expected last edit on %s, got %q", ladderfilter.KeyCutoff, s.Last)
	}
}

func TestRenderCancelled(t *testing.T) {
	h, _ := newTestHost(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Render(ctx, time.Second, func([][]float32) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRenderWAV(t *testing.T) {
	cfg := testConfig()
	cfg.Channels = 1
	h, _ := newTestHost(t, cfg)

	var out bytes.Buffer
	frames := int(h.Frames(50 * time.Millisecond))
	w, err := NewWAVWriter(&out, int(cfg.SampleRate), cfg.Channels, frames)
	if err != nil {
		t.Fatalf("NewWAVWriter failed: %v", err)
	}
	if err := h.Render(context.Background(), 50*time.Millisecond, w.WriteBlock); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data := out.Bytes()
	if len(data) != 44+frames*4 {
		t.Fatalf("Expected %d bytes, got %d", 44+frames*4, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Error("Malformed WAV header")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 3 {
		t.Errorf("Expected float format 3, got %d", format)
	}
	if size := binary.LittleEndian.Uint32(data[40:44]); int(size) != frames*4 {
		t.Errorf("Expected data size %d, got %d", frames*4, size)
	}
}

func TestWAVWriterChecks(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWAVWriter(&out, 44100, 2, 4)
	if err != nil {
		t.Fatalf("NewWAVWriter failed: %v", err)
	}
	if err := w.WriteBlock([][]float32{{1}}); err == nil {
		t.Error("Expected channel count error")
	}
	if err := w.WriteBlock([][]float32{make([]float32, 5), make([]float32, 5)}); err == nil {
		t.Error("Expected length error")
	}
	if err := w.Close(); err == nil {
		t.Error("Expected short write error")
	}
	if _, err := NewWAVWriter(&out, 0, 2, 4); err == nil {
		t.Error("Expected format error")
	}
}

func TestStreamFillsRing(t *testing.T) {
	cfg := testConfig()
	h, _ := newTestHost(t, cfg)

	ring := buffer.NewWriteAheadBuffer(cfg.SampleRate, cfg.Channels, 20*time.Millisecond)
	ring.Read(make([]float32, ring.LatencySamples()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := h.Stream(ctx, ring); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if h.Elapsed() == 0 {
		t.Error("Expected blocks rendered into the ring")
	}
	if ring.Buffered() < ring.LatencySamples() {
		t.Errorf("Expected ring refilled to latency, got %d of %d", ring.Buffered(), ring.LatencySamples())
	}
	if h.Stats().Buffer == nil {
		t.Error("Expected buffer stats while streaming")
	}
}

func TestAutomation(t *testing.T) {
	h, proc := newTestHost(t, testConfig())
	params := proc.Parameters()

	script := `
function automate(t)
	set("cutoffValue", 500 + t * 1000)
	set("resonanceValue", get("resonanceValue") + 0.01)
	if t > 0.05 then
		ok = mode(4)
	end
end
`
	a, err := NewAutomation(script, "test", params, proc.SetFilterMode)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	defer a.Close()
	h.SetAutomation(a)

	if err := h.Render(context.Background(), 100*time.Millisecond, func([][]float32) error { return nil }); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	cutoff := params.Value(ladderfilter.ParamCutoff)
	if cutoff < 500 || cutoff > 600 {
		t.Errorf("Expected cutoff between 500 and 600, got %f", cutoff)
	}
	if res := params.Value(ladderfilter.ParamResonance); res < 0.1 {
		t.Errorf("Expected resonance to climb, got %f", res)
	}
	if mode := params.Value(ladderfilter.ParamFilterMode); mode != 4 {
		t.Errorf("Expected selector 4, got %f", mode)
	}
}

func TestAutomationErrors(t *testing.T) {
	proc := ladderfilter.NewProcessor()
	params := proc.Parameters()

	if _, err := NewAutomation(`x = 1`, "none", params, nil); !errors.Is(err, ErrNoAutomate) {
		t.Errorf("Expected ErrNoAutomate, got %v", err)
	}
	if _, err := NewAutomation(`function automate(t`, "syntax", params, nil); err == nil {
		t.Error("Expected syntax error")
	}

	tests := []struct {
		name   string
		script string
	}{
		{"unknown key", `function automate(t) set("volume", 1) end`},
		{"runtime", `function automate(t) error("boom") end`},
		{"no selector", `function automate(t) mode(2) end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAutomation(tt.script, tt.name, params, nil)
			if err != nil {
				t.Fatalf("NewAutomation failed: %v", err)
			}
			defer a.Close()
			if err := a.Step(0); err == nil {
				t.Error("Expected step error")
			}
		})
	}

	a, err := NewAutomation(`function automate(t) mode(9) end`, "refused", params, proc.SetFilterMode)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	defer a.Close()
	if err := a.Step(0); err != nil {
		t.Errorf("Refused mode should not fail the script: %v", err)
	}
	if mode := params.Value(ladderfilter.ParamFilterMode); mode != 1 {
		t.Errorf("Expected selector unchanged, got %f", mode)
	}
}

func TestRenderAutomationError(t *testing.T) {
	h, proc := newTestHost(t, testConfig())
	a, err := NewAutomation(`function automate(t) if t > 0.01 then error("late") end end`, "late", proc.Parameters(), nil)
	if err != nil {
		t.Fatalf("NewAutomation failed: %v", err)
	}
	defer a.Close()
	h.SetAutomation(a)

	err = h.Render(context.Background(), time.Second, func([][]float32) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "late") {
		t.Errorf("Expected wrapped script error, got %v", err)
	}
}
