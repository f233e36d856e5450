// Package process provides the per-block audio processing context.
package process

import (
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

// Context carries one block of audio through a processor without allocating.
// Input and Output may alias the same channel slices when the host processes
// in place.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Parameter access
	params *param.Registry
}

// NewContext creates a process context reading params
func NewContext(params *param.Registry) *Context {
	return &Context{params: params}
}

// ParamPlain returns the current plain value of a parameter
func (c *Context) ParamPlain(id uint32) float64 {
	return c.params.Value(id)
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	numChannels := c.GetNumChannels()
	for ch := 0; ch < numChannels; ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

// ClearUnusedOutputs zeros every output channel that has no matching input
// channel, so nothing stale reaches the host.
func (c *Context) ClearUnusedOutputs() {
	for ch := c.NumInputChannels(); ch < c.NumOutputChannels(); ch++ {
		clear(c.Output[ch])
	}
}
