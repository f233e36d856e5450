// Package plugin provides base processor functionality to reduce boilerplate in plugins.
package plugin

import (
	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
	"github.com/justyntemme/ladderfilter/pkg/framework/state"
)

// BaseProcessor provides common functionality for audio processors: the
// parameter registry, the bus configuration and state persistence.
type BaseProcessor struct {
	params *param.Registry
	buses  *bus.Configuration
	state  *state.Manager

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onReset      func()
}

// NewBaseProcessor creates a new base processor with the given bus configuration
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewEffectStereo()
	}

	return &BaseProcessor{
		params: param.NewRegistry(),
		buses:  buses,
	}
}

// Initialize runs the initialize callback with the processing setup
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}

	return nil
}

// GetParameters returns the parameter registry
func (b *BaseProcessor) GetParameters() *param.Registry {
	return b.params
}

// GetBuses returns the bus configuration
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive is called when processing starts/stops. Deactivation resets.
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}

	return nil
}

// GetLatencySamples - default no latency
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples - default no tail
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// Parameters returns the parameter registry for adding parameters
func (b *BaseProcessor) Parameters() *param.Registry {
	return b.params
}

// UseState attaches the state schema used by GetState and SetState
func (b *BaseProcessor) UseState(m *state.Manager) {
	b.state = m
}

// StateManager returns the attached state manager, or nil
func (b *BaseProcessor) StateManager() *state.Manager {
	return b.state
}

// GetState returns the persisted state blob
func (b *BaseProcessor) GetState() ([]byte, error) {
	if b.state == nil {
		return nil, nil
	}
	return b.state.Blob()
}

// SetState restores a state blob. On error parameters are unchanged.
func (b *BaseProcessor) SetState(blob []byte) error {
	if b.state == nil {
		return nil
	}
	return b.state.Restore(blob)
}

// SetBusArrangement negotiates a main bus layout with the host
func (b *BaseProcessor) SetBusArrangement(l bus.Layout) error {
	return b.buses.Negotiate(l)
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
