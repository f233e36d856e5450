// Package termui runs an editor in a raw-mode terminal.
//
//	up/down, k/j   move focus between the sliders and the menu
//	left/right     nudge the focused control (h/l also work)
//	H/L            nudge in large steps
//	m/M            next/previous filter type
//	1-6            select a filter type
//	0              reset the focused slider
//	q, Ctrl+C      quit
package termui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/justyntemme/ladderfilter/pkg/editor"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
)

// ErrNotTerminal is returned when stdin is not a terminal.
var ErrNotTerminal = errors.New("termui: stdin is not a terminal")

const (
	smallStep = 0.01
	largeStep = 0.1

	defaultWidth = 72
	minWidth     = 40
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// TUI maps keys to editor gestures and renders the editor as text.
type TUI struct {
	ed    *editor.Editor
	focus int
	width int

	spectrum []float64
}

// New creates a TUI for ed. width is the terminal width in columns.
func New(ed *editor.Editor, width int) *TUI {
	t := &TUI{ed: ed}
	t.SetWidth(width)
	return t
}

// SetWidth sets the render width. Values below the minimum are raised to it.
func (t *TUI) SetWidth(width int) {
	if width <= 0 {
		width = defaultWidth
	}
	t.width = max(width, minWidth)
}

func (t *TUI) controls() int {
	return len(t.ed.View().Sliders) + 1
}

func (t *TUI) menuFocused() bool {
	return t.focus == t.controls()-1
}

// Handle applies one key. It reports whether the user asked to quit.
func (t *TUI) Handle(k Key) (quit bool) {
	switch k.Code {
	case KeyInterrupt, KeyEscape:
		return true
	case KeyUp:
		t.moveFocus(-1)
	case KeyDown:
		t.moveFocus(1)
	case KeyLeft:
		t.adjust(-1, smallStep)
	case KeyRight:
		t.adjust(1, smallStep)
	case KeyRune:
		switch k.Rune {
		case 'q':
			return true
		case 'k':
			t.moveFocus(-1)
		case 'j':
			t.moveFocus(1)
		case 'h':
			t.adjust(-1, smallStep)
		case 'l':
			t.adjust(1, smallStep)
		case 'H':
			t.adjust(-1, largeStep)
		case 'L':
			t.adjust(1, largeStep)
		case 'm':
			t.ed.StepMenu(1)
		case 'M':
			t.ed.StepMenu(-1)
		case '0':
			t.ed.ResetSlider(t.focus)
		default:
			if k.Rune >= '1' && k.Rune <= '9' {
				t.ed.ValueChanged(int(k.Rune - '0'))
			}
		}
	}
	return false
}

func (t *TUI) moveFocus(delta int) {
	n := t.controls()
	t.focus = ((t.focus+delta)%n + n) % n
}

func (t *TUI) adjust(dir int, step float64) {
	if t.menuFocused() {
		t.ed.StepMenu(dir)
		return
	}
	t.ed.NudgeSlider(t.focus, float64(dir)*step)
}

// Render returns one full frame. Lines end in CRLF for raw mode.
func (t *TUI) Render() string {
	view := t.ed.View()
	var b strings.Builder

	b.WriteString("\x1b[H\x1b[2J")
	fmt.Fprintf(&b, "%s\r\n\r\n", view.Title)

	label := 0
	for _, s := range view.Sliders {
		label = max(label, len(s.Label))
	}
	barWidth := t.width - label - 20

	for i, s := range view.Sliders {
		filled := int(s.Proportion*float64(barWidth) + 0.5)
		fmt.Fprintf(&b, "%s %-*s [%s%s] %s\r\n",
			cursor(t.focus == i), label, s.Label,
			strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled), s.Text)
	}
	fmt.Fprintf(&b, "%s %-*s < %s >\r\n\r\n", cursor(t.menuFocused()), label, "Type", view.Menu.Text)

	t.spectrum = t.ed.Spectrum(t.spectrum[:0])
	if len(t.spectrum) > 0 {
		b.WriteString(sparkline(t.spectrum, t.width))
		b.WriteString("\r\n\r\n")
	}

	b.WriteString("arrows/hjkl adjust, m/M type, q quit\r\n")
	return b.String()
}

func cursor(on bool) string {
	if on {
		return ">"
	}
	return " "
}

// sparkline reduces dB bins to width columns, keeping the peak of each.
func sparkline(bins []float64, width int) string {
	const floor = -90.0

	cols := min(width, len(bins))
	out := make([]rune, cols)
	for c := range out {
		lo := c * len(bins) / cols
		hi := max((c+1)*len(bins)/cols, lo+1)
		peak := floor
		for _, db := range bins[lo:hi] {
			peak = max(peak, db)
		}
		level := (peak - floor) / -floor
		idx := int(level * float64(len(sparks)-1))
		out[c] = sparks[min(max(idx, 0), len(sparks)-1)]
	}
	return string(out)
}

// deadliner is implemented by inputs whose blocked reads can be cut short,
// such as pipes and sockets.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Loop feeds keys from input to the TUI and redraws to output every poll
// period until ctx is done, input ends, or the user quits.
//
// Input is read on a separate goroutine. On return Loop expires the read
// deadline of inputs that have one, which ends that goroutine. Other inputs
// keep it blocked in Read until their next byte or EOF.
func (t *TUI) Loop(ctx context.Context, input io.Reader, output io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if d, ok := input.(deadliner); ok {
		defer d.SetReadDeadline(time.Now())
	}

	keys := make(chan []Key)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := input.Read(buf)
			if n > 0 {
				select {
				case keys <- DecodeKeys(buf[:n]):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(editor.PollPeriod)
	defer ticker.Stop()

	var frame bytes.Buffer
	redraw := func() error {
		frame.Reset()
		frame.WriteString(t.Render())
		_, err := output.Write(frame.Bytes())
		return err
	}
	if err := redraw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("termui input: %w", err)
		case ks := <-keys:
			for _, k := range ks {
				if t.Handle(k) {
					return nil
				}
			}
		case now := <-ticker.C:
			t.ed.Tick(now)
		}
		if err := redraw(); err != nil {
			return err
		}
	}
}

// Run puts the terminal in raw mode and runs the TUI on stdin and stdout.
// The terminal is restored on return. A terminal stdin has no read deadline,
// so the input goroutine lingers until the next key press; Run is meant to
// be called once per process.
func Run(ctx context.Context, ed *editor.Editor) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = defaultWidth
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("termui: raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	log := debug.Default().Named("termui")
	log.Debug("terminal %d columns", width)

	os.Stdout.WriteString("\x1b[?25l")
	defer os.Stdout.WriteString("\x1b[?25h\r\n")

	return New(ed, width).Loop(ctx, os.Stdin, os.Stdout)
}
