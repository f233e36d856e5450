package termui

import (
	"bytes"
	"context"
	"math"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justyntemme/ladderfilter/pkg/ladderfilter"
)

func TestDecodeKeys(t *testing.T) {
	keys := DecodeKeys([]byte("\x1b[A\x1b[Bq\x03\x1bOC\x1b[Z"))
	want := []Key{
		{Code: KeyUp},
		{Code: KeyDown},
		{Code: KeyRune, Rune: 'q'},
		{Code: KeyInterrupt},
		{Code: KeyRight},
	}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d: %v", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Key %d: expected %v, got %v", i, want[i], keys[i])
		}
	}

	if keys := DecodeKeys([]byte{0x1b}); len(keys) != 1 || keys[0].Code != KeyEscape {
		t.Errorf("Expected a lone escape, got %v", keys)
	}
}

func newTestTUI() (*TUI, *ladderfilter.Processor) {
	proc := ladderfilter.NewProcessor()
	return New(proc.CreateEditor(), 80), proc
}

func TestFocusWraps(t *testing.T) {
	tui, _ := newTestTUI()

	tui.Handle(Key{Code: KeyUp})
	if tui.focus != 3 {
		t.Errorf("Expected focus on the menu, got %d", tui.focus)
	}
	tui.Handle(Key{Code: KeyRune, Rune: 'j'})
	if tui.focus != 0 {
		t.Errorf("Expected focus to wrap to 0, got %d", tui.focus)
	}
}

func TestAdjustSlider(t *testing.T) {
	tui, proc := newTestTUI()

	tui.Handle(Key{Code: KeyDown})
	tui.Handle(Key{Code: KeyRune, Rune: 'L'})
	tui.Handle(Key{Code: KeyRight})

	res := proc.Parameters().Value(ladderfilter.ParamResonance)
	if math.Abs(res-0.11) > 1e-9 {
		t.Errorf("Expected resonance 0.11, got %f", res)
	}

	tui.Handle(Key{Code: KeyLeft})
	res = proc.Parameters().Value(ladderfilter.ParamResonance)
	if math.Abs(res-0.1) > 1e-9 {
		t.Errorf("Expected resonance 0.1, got %f", res)
	}
}

func TestMenuKeys(t *testing.T) {
	tui, proc := newTestTUI()

	tui.Handle(Key{Code: KeyRune, Rune: 'm'})
	if mode := proc.Parameters().Value(ladderfilter.ParamFilterMode); mode != 2 {
		t.Errorf("Expected selector 2, got %v", mode)
	}

	tui.Handle(Key{Code: KeyUp})
	tui.Handle(Key{Code: KeyRight})
	if mode := proc.Parameters().Value(ladderfilter.ParamFilterMode); mode != 3 {
		t.Errorf("Expected selector 3, got %v", mode)
	}

	tui.Handle(Key{Code: KeyRune, Rune: 'M'})
	if mode := proc.Parameters().Value(ladderfilter.ParamFilterMode); mode != 2 {
		t.Errorf("Expected selector 2, got %v", mode)
	}
}

func TestDirectKeys(t *testing.T) {
	tui, proc := newTestTUI()

	tui.Handle(Key{Code: KeyRune, Rune: '5'})
	if mode := proc.Parameters().Value(ladderfilter.ParamFilterMode); mode != 5 {
		t.Errorf("Expected selector 5, got %v", mode)
	}
	tui.Handle(Key{Code: KeyRune, Rune: '9'})
	if mode := proc.Parameters().Value(ladderfilter.ParamFilterMode); mode != 5 {
		t.Errorf("Expected unknown type to leave selector 5, got %v", mode)
	}

	tui.Handle(Key{Code: KeyDown})
	tui.Handle(Key{Code: KeyRune, Rune: 'L'})
	tui.Handle(Key{Code: KeyRune, Rune: '0'})
	if res := proc.Parameters().Value(ladderfilter.ParamResonance); res != ladderfilter.ResonanceDefault {
		t.Errorf("Expected resonance reset to %v, got %v", ladderfilter.ResonanceDefault, res)
	}
}

func TestQuitKeys(t *testing.T) {
	tui, _ := newTestTUI()
	for _, k := range []Key{{Code: KeyRune, Rune: 'q'}, {Code: KeyInterrupt}, {Code: KeyEscape}} {
		if !tui.Handle(k) {
			t.Errorf("Expected %v to quit", k)
		}
	}
	if tui.Handle(Key{Code: KeyRune, Rune: 'x'}) {
		t.Error("Unbound key should not quit")
	}
}

func TestRender(t *testing.T) {
	tui, proc := newTestTUI()
	proc.Parameters().Set(ladderfilter.ParamFilterMode, 4)
	tui.ed.SyncFromStore()

	frame := tui.Render()
	for _, want := range []string{"LadderFilter", "> Cutoff", "Res", "Drive", "< LPF24 >", "20000"} {
		if !strings.Contains(frame, want) {
			t.Errorf("Expected frame to contain %q:\n%s", want, frame)
		}
	}
	if strings.Contains(strings.ReplaceAll(frame, "\r\n", ""), "\n") {
		t.Error("Expected CRLF line endings only")
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float64{-120, -90, -45, 0, 6}, 5); got != "▁▁▄██" {
		t.Errorf("Expected ▁▁▄██, got %s", got)
	}
	if got := []rune(sparkline(make([]float64, 100), 10)); len(got) != 10 {
		t.Errorf("Expected 10 columns, got %d", len(got))
	}
}

func TestLoop(t *testing.T) {
	tui, proc := newTestTUI()

	var out bytes.Buffer
	if err := tui.Loop(context.Background(), strings.NewReader("jLq"), &out); err != nil {
		t.Fatalf("Loop failed: %v", err)
	}

	res := proc.Parameters().Value(ladderfilter.ParamResonance)
	if math.Abs(res-0.1) > 1e-9 {
		t.Errorf("Expected resonance 0.1, got %f", res)
	}
	if !strings.Contains(out.String(), "LadderFilter") {
		t.Error("Expected at least one frame")
	}
}

func TestLoopEndsOnEOF(t *testing.T) {
	tui, _ := newTestTUI()
	var out bytes.Buffer
	if err := tui.Loop(context.Background(), strings.NewReader(""), &out); err != nil {
		t.Errorf("Expected nil on EOF, got %v", err)
	}
}

// stallingInput blocks in Read until its read deadline is set.
type stallingInput struct {
	expire   sync.Once
	expired  chan struct{}
	returned chan struct{}
}

func (s *stallingInput) Read([]byte) (int, error) {
	<-s.expired
	close(s.returned)
	return 0, os.ErrDeadlineExceeded
}

func (s *stallingInput) SetReadDeadline(time.Time) error {
	s.expire.Do(func() { close(s.expired) })
	return nil
}

func TestLoopReleasesReader(t *testing.T) {
	tui, _ := newTestTUI()
	in := &stallingInput{expired: make(chan struct{}), returned: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := tui.Loop(ctx, in, &out); err != nil {
		t.Fatalf("Expected nil after cancel, got %v", err)
	}

	select {
	case <-in.returned:
	case <-time.After(time.Second):
		t.Error("Expected the input reader to return after Loop")
	}
}
