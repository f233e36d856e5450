package debug

import (
	"strings"
	"testing"
	"time"
)

func TestProfiler(t *testing.T) {
	t.Run("Record", func(t *testing.T) {
		p := NewProfiler(100)

		for _, d := range []time.Duration{3, 1, 2} {
			p.Record("section", d*time.Millisecond)
		}

		m, exists := p.GetMeasurement("section")
		if !exists {
			t.Fatal("Measurement not found")
		}
		if m.Count() != 3 {
			t.Errorf("Expected count 3, got %d", m.Count())
		}
		if m.Average() != 2*time.Millisecond {
			t.Errorf("Expected average 2ms, got %v", m.Average())
		}
		if m.Max() != 3*time.Millisecond {
			t.Errorf("Expected max 3ms, got %v", m.Max())
		}
		if m.Percentile(0) != time.Millisecond {
			t.Errorf("Expected P0 1ms, got %v", m.Percentile(0))
		}
		if m.Percentile(100) != 3*time.Millisecond {
			t.Errorf("Expected P100 3ms, got %v", m.Percentile(100))
		}
	})

	t.Run("StartStop", func(t *testing.T) {
		p := NewProfiler(10)

		stop := p.Start("sleep")
		time.Sleep(2 * time.Millisecond)
		stop()

		m, _ := p.GetMeasurement("sleep")
		if m == nil || m.lastTime < 2*time.Millisecond {
			t.Error("Timing seems too short")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		p := NewProfiler(10)
		p.SetEnabled(false)

		p.Time("skipped", func() {})

		if _, exists := p.GetMeasurement("skipped"); exists {
			t.Error("Disabled profiler should not record")
		}
	})

	t.Run("SampleWindow", func(t *testing.T) {
		p := NewProfiler(2)
		p.Record("w", 10*time.Millisecond)
		p.Record("w", 1*time.Millisecond)
		p.Record("w", 2*time.Millisecond)

		m, _ := p.GetMeasurement("w")
		if m.Percentile(100) != 2*time.Millisecond {
			t.Errorf("Expected oldest sample to be dropped, got P100 %v", m.Percentile(100))
		}
		if m.Max() != 10*time.Millisecond {
			t.Errorf("Expected all-time max 10ms, got %v", m.Max())
		}
	})

	t.Run("ReportAndReset", func(t *testing.T) {
		p := NewProfiler(10)
		p.Record("b", time.Millisecond)
		p.Record("a", time.Millisecond)

		report := p.Report()
		if strings.Index(report, "a:") > strings.Index(report, "b:") {
			t.Error("Expected sections sorted by name")
		}

		p.Reset()
		if p.Report() != "No measurements recorded" {
			t.Error("Expected empty report after reset")
		}
	})
}

func TestAudioProcessProfiler(t *testing.T) {
	t.Run("CPULoad", func(t *testing.T) {
		// 480 samples at 48kHz is a 10ms budget
		p := NewAudioProcessProfiler(48000, 480)
		for i := 0; i < 4; i++ {
			p.Record(BlockMeasurement, 5*time.Millisecond)
		}

		stats := p.Stats()
		if stats.CPULoad < 49.99 || stats.CPULoad > 50.01 {
			t.Errorf("Expected 50%% load, got %.2f", stats.CPULoad)
		}
		if stats.Blocks != 4 {
			t.Errorf("Expected 4 blocks, got %d", stats.Blocks)
		}
		if stats.AverageUS != 5000 {
			t.Errorf("Expected 5000us average, got %f", stats.AverageUS)
		}
	})

	t.Run("Block", func(t *testing.T) {
		p := NewAudioProcessProfiler(44100, 256)
		ran := false
		p.Block(func() { ran = true })

		if !ran {
			t.Error("Expected block function to run")
		}
		if p.Stats().Blocks != 1 {
			t.Errorf("Expected 1 block, got %d", p.Stats().Blocks)
		}
	})

	t.Run("AudioReport", func(t *testing.T) {
		p := NewAudioProcessProfiler(44100, 256)
		p.Block(func() {})

		report := p.AudioReport()
		if !strings.Contains(report, "44100 Hz") {
			t.Error("Report missing sample rate")
		}
		if !strings.Contains(report, "256 samples") {
			t.Error("Report missing buffer size")
		}
		if !strings.Contains(report, "CPU Load:") {
			t.Error("Report missing CPU load")
		}
	})
}

func TestGlobalProfiler(t *testing.T) {
	ResetProfiling()
	EnableProfiling()

	stop := Start("global")
	stop()

	Time("global2", func() {})

	report := ProfilingReport()
	if !strings.Contains(report, "global2") {
		t.Error("Global profiling not working")
	}
}
