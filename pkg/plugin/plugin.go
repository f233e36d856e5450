// Package plugin hosts framework processors: a process-wide plugin registry
// and per-instance lifecycle, parameter and state handling.
package plugin

import (
	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
	"github.com/justyntemme/ladderfilter/pkg/framework/plugin"
	"github.com/justyntemme/ladderfilter/pkg/framework/process"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// GetInfo returns plugin metadata
	GetInfo() plugin.Info

	// CreateProcessor creates a new instance of the audio processor
	CreateProcessor() Processor
}

// Processor handles the actual audio processing
type Processor interface {
	// Initialize is called when the plugin is created
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio processes audio - ZERO ALLOCATIONS!
	ProcessAudio(ctx *process.Context)

	// GetParameters returns the parameter registry
	GetParameters() *param.Registry

	// GetBuses returns the bus configuration
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts/stops
	SetActive(active bool) error

	// GetLatencySamples returns the plugin's latency in samples
	GetLatencySamples() int32

	// GetTailSamples returns the tail length in samples
	GetTailSamples() int32

	// GetState returns the persisted state blob
	GetState() ([]byte, error)

	// SetState restores a persisted state blob
	SetState(data []byte) error
}

// ComponentHandler receives edit gestures made on an instance's parameters,
// the way a host records automation from a plugin's editor.
type ComponentHandler interface {
	BeginEdit(id uint32)
	PerformEdit(id uint32, normalized float64)
	EndEdit(id uint32)
}
