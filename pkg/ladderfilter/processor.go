package ladderfilter

import (
	"fmt"
	"math"

	"github.com/justyntemme/ladderfilter/pkg/dsp/ladder"
	"github.com/justyntemme/ladderfilter/pkg/editor"
	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/framework/plugin"
	"github.com/justyntemme/ladderfilter/pkg/framework/process"
	"github.com/justyntemme/ladderfilter/pkg/framework/state"
)

// Name is the plugin's display name.
const Name = "LadderFilter"

// engineChannels is the channel count the engine is prepared for.
const engineChannels = 2

// logEvery gates the per-block debug line.
const logEvery = 1000

// Engine is the filter the processor drives.
type Engine interface {
	Prepare(sampleRate float64, maxBlockSize, channels int) error
	Reset()
	SetCutoffFrequencyHz(hz float64)
	SetResonance(resonance float64)
	SetDrive(drive float64)
	SetMode(mode ladder.Mode)
	Process(block [][]float32)
}

// Processor forwards the four parameters to the engine once per block and
// runs it in place.
type Processor struct {
	*plugin.BaseProcessor

	engine Engine
	log    *debug.Logger
	every  *debug.Every
}

// NewProcessor creates a processor driving a ladder engine.
func NewProcessor() *Processor {
	return NewProcessorWithEngine(ladder.NewEngine())
}

// NewProcessorWithEngine creates a processor driving engine.
func NewProcessorWithEngine(engine Engine) *Processor {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(bus.NewEffectStereo()),
		engine:        engine,
		log:           debug.Default().Named(Name),
		every:         debug.NewEvery(logEvery),
	}

	if err := p.Parameters().Add(newParameters()...); err != nil {
		panic(fmt.Sprintf("ladderfilter: %v", err))
	}
	p.UseState(state.NewManager(RootTag, p.Parameters(), stateFields()...))

	p.OnInitialize(func(sampleRate float64, maxBlockSize int32) error {
		return p.Prepare(sampleRate, int(maxBlockSize))
	})
	p.OnReset(p.engine.Reset)

	return p
}

// Prepare readies the engine for a new sample rate and block size and
// clears its state.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := p.engine.Prepare(sampleRate, maxBlockSize, engineChannels); err != nil {
		return fmt.Errorf("prepare engine: %w", err)
	}
	p.engine.Reset()
	p.log.Info("engine prepared: %.0f Hz, %d samples, %d channels", sampleRate, maxBlockSize, engineChannels)
	return nil
}

// ProcessAudio applies the current parameters and filters the block.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	cutoff := ctx.ParamPlain(ParamCutoff)
	resonance := ctx.ParamPlain(ParamResonance)
	drive := ctx.ParamPlain(ParamDrive)
	selector := int(math.Round(ctx.ParamPlain(ParamFilterMode)))

	p.engine.SetCutoffFrequencyHz(cutoff)
	p.engine.SetResonance(resonance)
	p.engine.SetDrive(drive)
	if mode, ok := ModeForID(selector); ok {
		p.engine.SetMode(mode)
	}

	p.engine.Process(ctx.InPlace())
	ctx.ClearUnusedOutputs()

	if p.every.Tick() {
		p.log.Debug("block %d samples: cutoff=%.1f res=%.2f drive=%.2f mode=%d",
			ctx.NumSamples(), cutoff, resonance, drive, selector)
	}
}

// SetFilterMode writes a menu id to the selector. Ids outside the menu are
// refused and leave the selector alone.
func (p *Processor) SetFilterMode(id int) bool {
	if _, ok := ModeForID(id); !ok {
		return false
	}
	p.Parameters().Set(ParamFilterMode, float64(id))
	return true
}

// FilterMode returns the engine mode the selector maps to.
func (p *Processor) FilterMode() ladder.Mode {
	mode, ok := ModeForID(int(math.Round(p.Parameters().Value(ParamFilterMode))))
	if !ok {
		return ladder.LPF12
	}
	return mode
}

// Name returns the plugin's display name.
func (p *Processor) Name() string { return Name }

// AcceptsMidi reports false; the filter takes no MIDI.
func (p *Processor) AcceptsMidi() bool { return false }

// ProducesMidi reports false.
func (p *Processor) ProducesMidi() bool { return false }

// IsMidiEffect reports false.
func (p *Processor) IsMidiEffect() bool { return false }

// TailLengthSeconds reports no tail.
func (p *Processor) TailLengthSeconds() float64 { return 0 }

// NumPrograms reports a single program.
func (p *Processor) NumPrograms() int { return 1 }

// CurrentProgram always returns 0.
func (p *Processor) CurrentProgram() int { return 0 }

// SetCurrentProgram is a no-op.
func (p *Processor) SetCurrentProgram(int) {}

// ProgramName returns an empty name for every program.
func (p *Processor) ProgramName(int) string { return "" }

// ChangeProgramName is a no-op.
func (p *Processor) ChangeProgramName(int, string) {}

// HasEditor reports true.
func (p *Processor) HasEditor() bool { return true }

// ReleaseResources resets the engine after playback stops.
func (p *Processor) ReleaseResources() {
	p.engine.Reset()
}

// CreateEditor returns an editor bound to this processor's parameters.
func (p *Processor) CreateEditor() *editor.Editor {
	items := MenuItems()
	menu := make([]editor.MenuItem, len(items))
	for i, it := range items {
		menu[i] = editor.MenuItem{ID: it.ID, Name: it.Name}
	}

	return editor.New(p.Parameters(), editor.Config{
		Title:  Name,
		Width:  400,
		Height: 300,
		Sliders: []editor.SliderSpec{
			{
				ParamID: ParamCutoff, Label: "Cutoff",
				Min: CutoffMin, Max: CutoffMax, Interval: 1, Skew: CutoffSkew,
				Bounds: editor.Rect{X: 50, Y: 30, W: 100, H: 100},
			},
			{
				ParamID: ParamResonance, Label: "Res",
				Min: ResonanceMin, Max: ResonanceMax, Interval: 0.01,
				Bounds: editor.Rect{X: 150, Y: 30, W: 100, H: 100},
			},
			{
				ParamID: ParamDrive, Label: "Drive",
				Min: DriveMin, Max: DriveMax, Interval: 0.01,
				Bounds: editor.Rect{X: 250, Y: 30, W: 100, H: 100},
			},
		},
		Menu: editor.MenuSpec{
			ParamID: ParamFilterMode,
			Items:   menu,
			Bounds:  editor.Rect{X: 50, Y: 175, W: 100, H: 50},
			Select:  p.SetFilterMode,
		},
		State: p.StateManager(),
	})
}
