package bus

import (
	"errors"
	"testing"
)

func TestMonoOrStereoMatched(t *testing.T) {
	tests := []struct {
		layout   Layout
		expected bool
	}{
		{Layout{MainInput: 1, MainOutput: 1}, true},
		{Layout{MainInput: 2, MainOutput: 2}, true},
		{Layout{MainInput: 1, MainOutput: 2}, false},
		{Layout{MainInput: 2, MainOutput: 1}, false},
		{Layout{MainInput: 0, MainOutput: 2}, false},
		{Layout{MainInput: 0, MainOutput: 0}, false},
		{Layout{MainInput: 6, MainOutput: 6}, false},
	}

	for _, test := range tests {
		if got := MonoOrStereoMatched(test.layout); got != test.expected {
			t.Errorf("MonoOrStereoMatched(%s): expected %v, got %v", test.layout, test.expected, got)
		}
	}
}

func TestNegotiate(t *testing.T) {
	config := NewEffectStereo()

	if err := config.Negotiate(Layout{MainInput: 1, MainOutput: 1}); err != nil {
		t.Fatalf("Expected mono layout to be accepted, got %v", err)
	}
	if got := config.Current(); got != (Layout{MainInput: 1, MainOutput: 1}) {
		t.Errorf("Expected 1in/1out after negotiation, got %s", got)
	}

	err := config.Negotiate(Layout{MainInput: 2, MainOutput: 6})
	if !errors.Is(err, ErrUnsupportedLayout) {
		t.Errorf("Expected ErrUnsupportedLayout, got %v", err)
	}
	if got := config.Current(); got != (Layout{MainInput: 1, MainOutput: 1}) {
		t.Errorf("Expected refused layout to leave 1in/1out, got %s", got)
	}
}

func TestNegotiateWithoutPredicate(t *testing.T) {
	config := NewBuilder().
		WithAudioInput("Mono In", 1).
		WithAudioOutput("Mono Out", 1).
		MustBuild()

	if !config.SupportsLayout(Layout{MainInput: 1, MainOutput: 1}) {
		t.Error("Expected built layout to be supported")
	}
	if err := config.Negotiate(Layout{MainInput: 2, MainOutput: 2}); err == nil {
		t.Error("Expected other layout to be refused")
	}
}

func TestNewEffectStereo(t *testing.T) {
	config := NewEffectStereo()

	inBus := config.GetBusInfo(DirectionInput, 0)
	if inBus == nil {
		t.Fatal("Expected input bus to exist")
	}
	if inBus.Name != "Stereo In" || inBus.ChannelCount != 2 {
		t.Errorf("Expected 'Stereo In' with 2 channels, got %s with %d", inBus.Name, inBus.ChannelCount)
	}
	if config.GetBusInfo(DirectionOutput, 1) != nil {
		t.Error("Expected a single output bus")
	}
}
