package plugin

import (
	"fmt"
	"sync"

	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
	"github.com/justyntemme/ladderfilter/pkg/framework/plugin"
	"github.com/justyntemme/ladderfilter/pkg/framework/process"
)

// maxChannels bounds the per-bus channel count an instance prepares for.
const maxChannels = 32

// Instance is one live processor as a host sees it: setup, activation, bus
// negotiation, block processing, parameter edits and state.
type Instance struct {
	info      plugin.Info
	processor Processor
	log       *debug.Logger

	ctx          *process.Context
	maxBlockSize int
	inChunk      [][]float32
	outChunk     [][]float32

	handlerMu sync.RWMutex
	handler   ComponentHandler
}

// NewInstance wraps a processor created outside the registry.
func NewInstance(info plugin.Info, processor Processor) *Instance {
	return &Instance{
		info:      info,
		processor: processor,
		log:       debug.Default().Named(info.Name),
		inChunk:   make([][]float32, 0, maxChannels),
		outChunk:  make([][]float32, 0, maxChannels),
	}
}

// Info returns the plugin metadata
func (i *Instance) Info() plugin.Info {
	return i.info
}

// Processor returns the wrapped processor
func (i *Instance) Processor() Processor {
	return i.processor
}

// SetupProcessing initializes the processor and allocates the block context.
// It must not run concurrently with Process.
func (i *Instance) SetupProcessing(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("setup processing: invalid sample rate %v", sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("setup processing: invalid block size %d", maxBlockSize)
	}

	if err := i.processor.Initialize(sampleRate, int32(maxBlockSize)); err != nil {
		return fmt.Errorf("setup processing: %w", err)
	}

	ctx := process.NewContext(i.processor.GetParameters())
	ctx.SampleRate = sampleRate
	i.ctx = ctx
	i.maxBlockSize = maxBlockSize

	i.log.Info("prepared at %.0f Hz, %d samples per block", sampleRate, maxBlockSize)
	return nil
}

// SetActive starts or stops processing
func (i *Instance) SetActive(active bool) error {
	if err := i.processor.SetActive(active); err != nil {
		return fmt.Errorf("set active %v: %w", active, err)
	}
	return nil
}

// SetBusArrangement negotiates the main bus layout. Refused layouts leave
// the current arrangement in place.
func (i *Instance) SetBusArrangement(l bus.Layout) error {
	if err := i.processor.GetBuses().Negotiate(l); err != nil {
		i.log.Warn("refused bus layout %s", l)
		return err
	}
	return nil
}

// BusLayout returns the negotiated main bus layout
func (i *Instance) BusLayout() bus.Layout {
	return i.processor.GetBuses().Current()
}

// GetLatencySamples returns the processor latency
func (i *Instance) GetLatencySamples() int32 {
	return i.processor.GetLatencySamples()
}

// GetTailSamples returns the processor tail
func (i *Instance) GetTailSamples() int32 {
	return i.processor.GetTailSamples()
}

// Process runs one host block. Blocks longer than the prepared size are
// processed in chunks. Before SetupProcessing the outputs are silenced.
func (i *Instance) Process(in, out [][]float32) {
	if i.ctx == nil || len(in) > maxChannels || len(out) > maxChannels {
		clearChannels(out)
		return
	}

	n := blockLength(in, out)
	for start := 0; start < n; start += i.maxBlockSize {
		end := min(start+i.maxBlockSize, n)

		i.inChunk = i.inChunk[:0]
		for _, ch := range in {
			i.inChunk = append(i.inChunk, ch[start:end])
		}
		i.outChunk = i.outChunk[:0]
		for _, ch := range out {
			i.outChunk = append(i.outChunk, ch[start:end])
		}

		i.ctx.Input = i.inChunk
		i.ctx.Output = i.outChunk
		i.processChunk()
	}
}

func (i *Instance) processChunk() {
	defer i.recoverPanic("process")
	i.processor.ProcessAudio(i.ctx)
}

// recoverPanic keeps a faulting processor from taking the host down. The
// failed block is silenced.
func (i *Instance) recoverPanic(operation string) {
	if r := recover(); r != nil {
		i.ctx.Clear()
		i.log.Error("%s panicked: %v", operation, r)
	}
}

func blockLength(in, out [][]float32) int {
	n := -1
	for _, ch := range in {
		if n < 0 || len(ch) < n {
			n = len(ch)
		}
	}
	for _, ch := range out {
		if n < 0 || len(ch) < n {
			n = len(ch)
		}
	}
	return max(n, 0)
}

func clearChannels(chs [][]float32) {
	for _, ch := range chs {
		clear(ch)
	}
}

// GetState returns the processor state blob
func (i *Instance) GetState() ([]byte, error) {
	data, err := i.processor.GetState()
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return data, nil
}

// SetState restores a state blob. The processor leaves its parameters
// unchanged when the blob is rejected.
func (i *Instance) SetState(data []byte) error {
	if err := i.processor.SetState(data); err != nil {
		i.log.Warn("state restore rejected: %v", err)
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// Parameter access, as an edit controller exposes it

// GetParameterCount returns the number of parameters
func (i *Instance) GetParameterCount() int32 {
	return i.processor.GetParameters().Count()
}

// GetParameterInfo returns the parameter at index
func (i *Instance) GetParameterInfo(index int32) (*param.Parameter, error) {
	p := i.processor.GetParameters().GetByIndex(index)
	if p == nil {
		return nil, fmt.Errorf("parameter index %d out of range", index)
	}
	return p, nil
}

func (i *Instance) parameter(id uint32) (*param.Parameter, error) {
	p := i.processor.GetParameters().Get(id)
	if p == nil {
		return nil, fmt.Errorf("unknown parameter %d", id)
	}
	return p, nil
}

// GetParamStringByValue formats a normalized value for display
func (i *Instance) GetParamStringByValue(id uint32, normalized float64) (string, error) {
	p, err := i.parameter(id)
	if err != nil {
		return "", err
	}
	return p.FormatValue(p.Denormalize(normalized)), nil
}

// GetParamValueByString parses a display string into a normalized value
func (i *Instance) GetParamValueByString(id uint32, s string) (float64, error) {
	p, err := i.parameter(id)
	if err != nil {
		return 0, err
	}
	plain, err := p.ParseValue(s)
	if err != nil {
		return 0, err
	}
	return p.Normalize(plain), nil
}

// NormalizedParamToPlain converts normalized to plain
func (i *Instance) NormalizedParamToPlain(id uint32, normalized float64) float64 {
	p, err := i.parameter(id)
	if err != nil {
		return normalized
	}
	return p.Denormalize(normalized)
}

// PlainParamToNormalized converts plain to normalized
func (i *Instance) PlainParamToNormalized(id uint32, plain float64) float64 {
	p, err := i.parameter(id)
	if err != nil {
		return plain
	}
	return p.Normalize(plain)
}

// GetParamNormalized returns the normalized value
func (i *Instance) GetParamNormalized(id uint32) float64 {
	p, err := i.parameter(id)
	if err != nil {
		return 0
	}
	return p.GetValue()
}

// SetParamNormalized sets a value from the host side without notifying the
// component handler
func (i *Instance) SetParamNormalized(id uint32, value float64) error {
	p, err := i.parameter(id)
	if err != nil {
		return err
	}
	p.SetValue(value)
	return nil
}

// SetComponentHandler installs the receiver for edit gestures
func (i *Instance) SetComponentHandler(h ComponentHandler) {
	i.handlerMu.Lock()
	defer i.handlerMu.Unlock()
	i.handler = h
}

func (i *Instance) componentHandler() ComponentHandler {
	i.handlerMu.RLock()
	defer i.handlerMu.RUnlock()
	return i.handler
}

// BeginEdit opens an edit gesture
func (i *Instance) BeginEdit(id uint32) {
	if h := i.componentHandler(); h != nil {
		h.BeginEdit(id)
	}
}

// PerformEdit writes a plain value and reports it to the handler
func (i *Instance) PerformEdit(id uint32, plain float64) error {
	p, err := i.parameter(id)
	if err != nil {
		return err
	}
	p.Set(plain)
	if h := i.componentHandler(); h != nil {
		h.PerformEdit(id, p.GetValue())
	}
	return nil
}

// EndEdit closes an edit gesture
func (i *Instance) EndEdit(id uint32) {
	if h := i.componentHandler(); h != nil {
		h.EndEdit(id)
	}
}
