package plugin

import (
	"errors"
	"testing"

	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
	fwplugin "github.com/justyntemme/ladderfilter/pkg/framework/plugin"
	"github.com/justyntemme/ladderfilter/pkg/framework/process"
	"github.com/justyntemme/ladderfilter/pkg/framework/state"
)

const gainID = 7

// gainProcessor scales the input by its one parameter.
type gainProcessor struct {
	*fwplugin.BaseProcessor
	blocks  int
	maxSeen int
	panicky bool
}

func newGainProcessor() *gainProcessor {
	g := &gainProcessor{BaseProcessor: fwplugin.NewBaseProcessor(nil)}
	g.Parameters().Add(param.New(gainID, "Gain").Key("gainValue").Range(0, 2).Default(1).Build())
	g.UseState(state.NewManager("GainParams", g.Parameters(),
		state.Field{Key: "gainValue", ParamID: gainID, Kind: state.Float, Fallback: 1}))
	return g
}

func (g *gainProcessor) ProcessAudio(ctx *process.Context) {
	if g.panicky {
		panic("boom")
	}
	g.blocks++
	g.maxSeen = max(g.maxSeen, ctx.NumSamples())

	gain := float32(ctx.ParamPlain(gainID))
	for _, ch := range ctx.InPlace() {
		for i := range ch {
			ch[i] *= gain
		}
	}
	ctx.ClearUnusedOutputs()
}

type gainPlugin struct{}

func (gainPlugin) GetInfo() fwplugin.Info {
	return fwplugin.Info{ID: "com.example.gain", Name: "Gain", Version: "1.0.0", Vendor: "Example", Category: "Fx"}
}

func (gainPlugin) CreateProcessor() Processor {
	return newGainProcessor()
}

type recordingHandler struct {
	events []string
	last   float64
}

func (h *recordingHandler) BeginEdit(id uint32) { h.events = append(h.events, "begin") }
func (h *recordingHandler) PerformEdit(id uint32, normalized float64) {
	h.events = append(h.events, "perform")
	h.last = normalized
}
func (h *recordingHandler) EndEdit(id uint32) { h.events = append(h.events, "end") }

func block(channels, n int, value float32) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, n)
		for i := range out[ch] {
			out[ch][i] = value
		}
	}
	return out
}

func TestRegistry(t *testing.T) {
	Register(nil)
	if CountClasses() != 0 {
		t.Errorf("Expected 0 classes, got %d", CountClasses())
	}
	if _, err := CreateDefaultInstance(); !errors.Is(err, ErrNoPlugin) {
		t.Errorf("Expected ErrNoPlugin, got %v", err)
	}

	Register(gainPlugin{})
	defer Register(nil)

	if CountClasses() != 1 {
		t.Errorf("Expected 1 class, got %d", CountClasses())
	}

	ci, err := GetClassInfo(0)
	if err != nil {
		t.Fatalf("GetClassInfo failed: %v", err)
	}
	if ci.Name != "Gain" || ci.CID != (gainPlugin{}).GetInfo().UID() {
		t.Errorf("Unexpected class info %+v", ci)
	}
	if _, err := GetClassInfo(1); err == nil {
		t.Error("Expected error for class index 1")
	}

	if _, err := CreateInstance([16]byte{1}); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Expected ErrUnknownClass, got %v", err)
	}

	inst, err := CreateInstance(ci.CID)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	if inst.Info().Name != "Gain" {
		t.Errorf("Expected Gain instance, got %s", inst.Info().Name)
	}
}

type anonymousPlugin struct{ gainPlugin }

func (anonymousPlugin) GetInfo() fwplugin.Info {
	return fwplugin.Info{Name: "Anonymous", Version: "1.0.0"}
}

func TestRegistryRejectsEmptyID(t *testing.T) {
	Register(anonymousPlugin{})
	defer Register(nil)

	if _, err := CreateDefaultInstance(); err == nil {
		t.Error("Expected error for a plugin without an ID")
	}
}

func TestFactoryInfo(t *testing.T) {
	old := GetFactoryInfo()
	defer SetFactoryInfo(old)

	SetFactoryInfo(FactoryInfo{Vendor: "V", URL: "u", Email: "e"})
	if got := GetFactoryInfo(); got.Vendor != "V" || got.URL != "u" || got.Email != "e" {
		t.Errorf("Unexpected factory info %+v", got)
	}
}

func TestInstanceProcessBeforeSetup(t *testing.T) {
	inst := NewInstance(gainPlugin{}.GetInfo(), newGainProcessor())

	in := block(2, 8, 1)
	out := block(2, 8, 0.5)
	inst.Process(in, out)

	for ch := range out {
		for i, v := range out[ch] {
			if v != 0 {
				t.Fatalf("Expected silence before setup, got %f at %d/%d", v, ch, i)
			}
		}
	}
}

func TestInstanceProcessChunks(t *testing.T) {
	g := newGainProcessor()
	inst := NewInstance(gainPlugin{}.GetInfo(), g)
	if err := inst.SetupProcessing(48000, 16); err != nil {
		t.Fatalf("SetupProcessing failed: %v", err)
	}
	g.Parameters().Set(gainID, 0.5)

	in := block(2, 40, 1)
	out := block(2, 40, 0)
	inst.Process(in, out)

	if g.blocks != 3 {
		t.Errorf("Expected 3 chunks, got %d", g.blocks)
	}
	if g.maxSeen != 16 {
		t.Errorf("Expected chunks of at most 16, got %d", g.maxSeen)
	}
	for ch := range out {
		for i, v := range out[ch] {
			if v != 0.5 {
				t.Fatalf("Expected 0.5 at %d/%d, got %f", ch, i, v)
			}
		}
	}
}

func TestInstanceSetupErrors(t *testing.T) {
	inst := NewInstance(gainPlugin{}.GetInfo(), newGainProcessor())
	if err := inst.SetupProcessing(0, 16); err == nil {
		t.Error("Expected error for zero sample rate")
	}
	if err := inst.SetupProcessing(44100, 0); err == nil {
		t.Error("Expected error for zero block size")
	}
}

func TestInstanceRecoversPanic(t *testing.T) {
	g := newGainProcessor()
	g.panicky = true
	inst := NewInstance(gainPlugin{}.GetInfo(), g)
	inst.SetupProcessing(44100, 64)

	out := block(1, 32, 0.3)
	inst.Process(block(1, 32, 1), out)

	for i, v := range out[0] {
		if v != 0 {
			t.Fatalf("Expected silenced block after panic, got %f at %d", v, i)
		}
	}
}

func TestInstanceBusArrangement(t *testing.T) {
	inst := NewInstance(gainPlugin{}.GetInfo(), newGainProcessor())

	if err := inst.SetBusArrangement(bus.Layout{MainInput: 1, MainOutput: 1}); err != nil {
		t.Errorf("Expected mono layout accepted, got %v", err)
	}
	err := inst.SetBusArrangement(bus.Layout{MainInput: 2, MainOutput: 6})
	if !errors.Is(err, bus.ErrUnsupportedLayout) {
		t.Errorf("Expected ErrUnsupportedLayout, got %v", err)
	}
	if got := inst.BusLayout(); got != (bus.Layout{MainInput: 1, MainOutput: 1}) {
		t.Errorf("Expected 1in/1out kept, got %s", got)
	}
}

func TestInstanceParameters(t *testing.T) {
	inst := NewInstance(gainPlugin{}.GetInfo(), newGainProcessor())

	if inst.GetParameterCount() != 1 {
		t.Errorf("Expected 1 parameter, got %d", inst.GetParameterCount())
	}
	p, err := inst.GetParameterInfo(0)
	if err != nil || p.ID != gainID {
		t.Fatalf("Expected gain parameter, got %v, %v", p, err)
	}
	if _, err := inst.GetParameterInfo(3); err == nil {
		t.Error("Expected error for index 3")
	}

	if got := inst.NormalizedParamToPlain(gainID, 0.25); got != 0.5 {
		t.Errorf("Expected 0.5, got %f", got)
	}
	if got := inst.PlainParamToNormalized(gainID, 1.5); got != 0.75 {
		t.Errorf("Expected 0.75, got %f", got)
	}
	if err := inst.SetParamNormalized(gainID, 1); err != nil {
		t.Fatal(err)
	}
	if got := inst.GetParamNormalized(gainID); got != 1 {
		t.Errorf("Expected 1, got %f", got)
	}
	if err := inst.SetParamNormalized(99, 1); err == nil {
		t.Error("Expected error for unknown parameter")
	}

	s, err := inst.GetParamStringByValue(gainID, 0.5)
	if err != nil || s != "1.00" {
		t.Errorf("Expected 1.00, got %q, %v", s, err)
	}
	n, err := inst.GetParamValueByString(gainID, "1.5")
	if err != nil || n != 0.75 {
		t.Errorf("Expected 0.75, got %f, %v", n, err)
	}
}

func TestInstanceEdits(t *testing.T) {
	inst := NewInstance(gainPlugin{}.GetInfo(), newGainProcessor())
	h := &recordingHandler{}
	inst.SetComponentHandler(h)

	inst.BeginEdit(gainID)
	if err := inst.PerformEdit(gainID, 5); err != nil {
		t.Fatal(err)
	}
	inst.EndEdit(gainID)

	if len(h.events) != 3 || h.events[0] != "begin" || h.events[2] != "end" {
		t.Errorf("Unexpected edit events %v", h.events)
	}
	if h.last != 1 {
		t.Errorf("Expected clamped normalized 1, got %f", h.last)
	}
	if err := inst.PerformEdit(99, 1); err == nil {
		t.Error("Expected error for unknown parameter")
	}
}

func TestInstanceState(t *testing.T) {
	g := newGainProcessor()
	inst := NewInstance(gainPlugin{}.GetInfo(), g)
	g.Parameters().Set(gainID, 1.5)

	data, err := inst.GetState()
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}

	g.Parameters().Set(gainID, 0.1)
	if err := inst.SetState(data); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if got := g.Parameters().Value(gainID); got != 1.5 {
		t.Errorf("Expected 1.5 restored, got %f", got)
	}

	if err := inst.SetState([]byte("not xml")); err == nil {
		t.Error("Expected error for malformed state")
	}
	if got := g.Parameters().Value(gainID); got != 1.5 {
		t.Errorf("Expected 1.5 unchanged, got %f", got)
	}
}
