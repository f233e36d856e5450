package host

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/plugin"
)

// silenceDB is the level reported for digital silence.
const silenceDB = -120.0

// Stats is a snapshot of the host's processing health.
type Stats struct {
	Process debug.ProcessStats  `json:"process"`
	Buffer  *buffer.BufferStats `json:"buffer,omitempty"`
	PeakDB  float64             `json:"peak_db"`
	HoldDB  float64             `json:"hold_db"`
	RMSDB   float64             `json:"rms_db"`
	PeakHz  float64             `json:"peak_hz"`
	Bands   []Band              `json:"bands"`
	Edits   EditStats           `json:"edits"`
	Seconds float64             `json:"seconds"`
}

// Host drives one plugin instance with a generated source.
type Host struct {
	cfg      Config
	inst     *plugin.Instance
	source   *Source
	monitor  *Monitor
	profiler *debug.AudioProcessProfiler
	edits    *EditRecorder
	log      *debug.Logger

	automation *Automation
	ring       atomic.Pointer[buffer.WriteAheadBuffer]

	in          [][]float32
	out         [][]float32
	interleaved []float32
	frames      atomic.Int64
}

// New prepares inst for cfg and activates it.
func New(cfg Config, inst *plugin.Instance) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("host config: %w", err)
	}

	source, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}
	monitor, err := NewMonitor(cfg.SampleRate, cfg.FFTSize, min(cfg.BlockSize, cfg.FFTSize))
	if err != nil {
		return nil, err
	}

	layout := bus.Layout{MainInput: int32(cfg.Channels), MainOutput: int32(cfg.Channels)}
	if err := inst.SetBusArrangement(layout); err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	if err := inst.SetupProcessing(cfg.SampleRate, cfg.BlockSize); err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	if err := inst.SetActive(true); err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}

	h := &Host{
		cfg:         cfg,
		inst:        inst,
		source:      source,
		monitor:     monitor,
		profiler:    debug.NewAudioProcessProfiler(cfg.SampleRate, cfg.BlockSize),
		edits:       NewEditRecorder(inst.Processor().GetParameters()),
		log:         debug.Default().Named("host"),
		in:          make([][]float32, cfg.Channels),
		out:         make([][]float32, cfg.Channels),
		interleaved: make([]float32, cfg.BlockSize*cfg.Channels),
	}
	for ch := range h.in {
		h.in[ch] = make([]float32, cfg.BlockSize)
		h.out[ch] = make([]float32, cfg.BlockSize)
	}
	inst.SetComponentHandler(h.edits)

	got := inst.BusLayout()
	h.log.Info("running %s: %.0f Hz, %d in / %d out, %d-sample blocks, %s source",
		inst.Info().Name, cfg.SampleRate, got.MainInput, got.MainOutput, cfg.BlockSize, cfg.Source)
	return h, nil
}

// Config returns the host settings.
func (h *Host) Config() Config {
	return h.cfg
}

// Instance returns the hosted plugin instance.
func (h *Host) Instance() *plugin.Instance {
	return h.inst
}

// Monitor returns the output monitor.
func (h *Host) Monitor() *Monitor {
	return h.monitor
}

// SetAutomation installs a script evaluated before every block. Call it
// before rendering starts.
func (h *Host) SetAutomation(a *Automation) {
	h.automation = a
}

// Elapsed returns the rendered time.
func (h *Host) Elapsed() time.Duration {
	return time.Duration(float64(h.frames.Load()) / h.cfg.SampleRate * float64(time.Second))
}

// Frames converts a duration to a frame count at the host sample rate.
func (h *Host) Frames(d time.Duration) int64 {
	return int64(d.Seconds() * h.cfg.SampleRate)
}

// Stats returns the processing health.
func (h *Host) Stats() Stats {
	s := Stats{
		Process: h.profiler.Stats(),
		PeakDB:  math.Max(h.monitor.PeakDB(), silenceDB),
		HoldDB:  math.Max(h.monitor.HoldDB(), silenceDB),
		RMSDB:   math.Max(h.monitor.RMSDB(), silenceDB),
		PeakHz:  h.monitor.PeakFrequency(),
		Bands:   h.monitor.Bands(),
		Edits:   h.edits.Stats(),
		Seconds: h.Elapsed().Seconds(),
	}
	if ring := h.ring.Load(); ring != nil {
		health := ring.GetBufferHealth()
		s.Buffer = &health
	}
	return s
}

// RenderBlock runs automation, generates one input block and processes it.
// The returned channels are reused by the next call.
func (h *Host) RenderBlock() ([][]float32, error) {
	if h.automation != nil {
		t := float64(h.frames.Load()) / h.cfg.SampleRate
		if err := h.automation.Step(t); err != nil {
			return nil, err
		}
	}

	h.source.Fill(h.in)
	h.profiler.Block(func() {
		h.inst.Process(h.in, h.out)
	})
	h.monitor.Push(h.out)
	h.frames.Add(int64(h.cfg.BlockSize))
	return h.out, nil
}

// Render processes duration of audio and hands every block to sink.
func (h *Host) Render(ctx context.Context, duration time.Duration, sink func(block [][]float32) error) error {
	total := h.Frames(duration)
	for rendered := int64(0); rendered < total; {
		if err := ctx.Err(); err != nil {
			return err
		}
		block, err := h.RenderBlock()
		if err != nil {
			return fmt.Errorf("render at %.3fs: %w", h.Elapsed().Seconds(), err)
		}

		n := int64(h.cfg.BlockSize)
		if rest := total - rendered; rest < n {
			n = rest
			tail := make([][]float32, len(block))
			for ch := range block {
				tail[ch] = block[ch][:n]
			}
			block = tail
		}
		if err := sink(block); err != nil {
			return err
		}
		rendered += n
	}
	return nil
}

// Stream keeps about one latency's worth of audio queued in ring until ctx
// is done. The ring's reader is the audio device.
func (h *Host) Stream(ctx context.Context, ring *buffer.WriteAheadBuffer) error {
	h.ring.Store(ring)
	need := h.cfg.BlockSize * h.cfg.Channels
	idle := time.Duration(float64(h.cfg.BlockSize) / h.cfg.SampleRate * float64(time.Second) / 4)

	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		for ring.Buffered() < ring.LatencySamples() && ring.Free() >= need {
			block, err := h.RenderBlock()
			if err != nil {
				return fmt.Errorf("stream at %.3fs: %w", h.Elapsed().Seconds(), err)
			}
			interleave(h.interleaved, block)
			if err := ring.Write(h.interleaved); err != nil {
				h.log.Warn("dropped block: %v", err)
			}
		}

		timer.Reset(idle)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Close deactivates the instance and logs the session report.
func (h *Host) Close() error {
	err := h.inst.SetActive(false)
	h.log.Info("rendered %.1fs\n%s", h.Elapsed().Seconds(), h.profiler.AudioReport())
	h.monitor.Report(h.log)
	return err
}

func interleave(dst []float32, block [][]float32) {
	channels := len(block)
	for ch, samples := range block {
		for i, v := range samples {
			dst[i*channels+ch] = v
		}
	}
}
