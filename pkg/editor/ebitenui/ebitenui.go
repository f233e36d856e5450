// Package ebitenui draws an editor in a desktop window.
//
// Sliders are dragged vertically and reset by a right click, clicking the left or right half of the menu
// steps the filter type, Ctrl+C and Ctrl+V copy and paste the plugin state,
// and Escape closes the window.
package ebitenui

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/justyntemme/ladderfilter/pkg/editor"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
)

// dragRange is the mouse travel in pixels that sweeps a whole slider.
const dragRange = 150.0

// Spectrum strip, in editor coordinates
const (
	spectrumX     = 10
	spectrumY     = 235
	spectrumW     = 380
	spectrumH     = 55
	spectrumFloor = -90.0
)

var (
	backgroundColor = color.RGBA{0x1c, 0x1f, 0x24, 0xff}
	panelColor      = color.RGBA{0x2a, 0x2e, 0x35, 0xff}
	accentColor     = color.RGBA{0xf0, 0xa0, 0x30, 0xff}
	textColor       = color.RGBA{0xe8, 0xe8, 0xe8, 0xff}
	dimColor        = color.RGBA{0x90, 0x96, 0xa0, 0xff}
	spectrumColor   = color.RGBA{0x40, 0xb0, 0xe0, 0xff}
)

type drag struct {
	slider     int
	startY     int
	startValue float64
}

// Window is an ebiten.Game showing one editor.
type Window struct {
	ed  *editor.Editor
	ctx context.Context
	log *debug.Logger

	drag     *drag
	spectrum []float64
	status   string
}

// NewWindow wraps ed. The window closes when ctx is done.
func NewWindow(ctx context.Context, ed *editor.Editor) *Window {
	return &Window{
		ed:  ed,
		ctx: ctx,
		log: debug.Default().Named("window"),
	}
}

// Run opens the window and blocks until it is closed or ctx is done. It must
// be called from the main goroutine.
func Run(ctx context.Context, ed *editor.Editor) error {
	w, h := ed.Size()
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowTitle(ed.Title())
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(NewWindow(ctx, ed)); err != nil {
		return fmt.Errorf("editor window: %w", err)
	}
	return nil
}

// Update handles input and refreshes the widgets from the parameter store.
func (w *Window) Update() error {
	if w.ctx.Err() != nil || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	w.handleMouse()
	w.handleKeys()
	w.ed.Tick(time.Now())
	return nil
}

func (w *Window) handleMouse() {
	x, y := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if i, ok := w.ed.SliderAt(x, y); ok {
			w.drag = &drag{slider: i, startY: y, startValue: w.ed.View().Sliders[i].Proportion}
			w.ed.BeginSliderGesture(i)
		} else if w.ed.MenuAt(x, y) {
			menu := w.ed.View().Menu.Bounds
			if x < menu.X+menu.W/2 {
				w.ed.StepMenu(-1)
			} else {
				w.ed.StepMenu(1)
			}
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && w.drag == nil {
		if i, ok := w.ed.SliderAt(x, y); ok {
			w.ed.ResetSlider(i)
		}
	}

	if w.drag != nil {
		p := w.drag.startValue + float64(w.drag.startY-y)/dragRange
		w.ed.DragSlider(w.drag.slider, p)
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			w.ed.EndSliderGesture(w.drag.slider)
			w.drag = nil
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 && w.drag == nil {
		if i, ok := w.ed.SliderAt(x, y); ok {
			w.ed.NudgeSlider(i, wy*0.02)
		}
	}
}

func (w *Window) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if !ctrl {
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if err := w.ed.CopyState(); err != nil {
			w.status = err.Error()
			w.log.Warn("%v", err)
		} else {
			w.status = "state copied"
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		if err := w.ed.PasteState(); err != nil {
			w.status = err.Error()
		} else {
			w.status = "state pasted"
		}
	}
}

// Draw renders the current view.
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	view := w.ed.View()

	text.Draw(screen, view.Title, basicfont.Face7x13, 10, 18, textColor)

	for _, s := range view.Sliders {
		drawSlider(screen, s)
	}
	drawMenu(screen, view.Menu)

	w.spectrum = w.ed.Spectrum(w.spectrum[:0])
	drawSpectrum(screen, w.spectrum)

	if w.status != "" {
		text.Draw(screen, w.status, basicfont.Face7x13, 170, 205, dimColor)
	}
}

// Layout keeps the editor's logical size and lets ebiten scale it.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.ed.Size()
}

func drawSlider(screen *ebiten.Image, s editor.SliderView) {
	b := s.Bounds
	x := float64(b.X + 10)
	y := float64(b.Y + 16)
	width := float64(b.W - 20)
	height := float64(b.H - 34)

	ebitenutil.DrawRect(screen, x, y, width, height, panelColor)
	fill := height * s.Proportion
	ebitenutil.DrawRect(screen, x, y+height-fill, width, fill, accentColor)

	centered(screen, s.Label, b.X+b.W/2, b.Y+12, textColor)
	centered(screen, s.Text, b.X+b.W/2, b.Y+b.H-4, dimColor)
}

func drawMenu(screen *ebiten.Image, m editor.MenuView) {
	b := m.Bounds
	ebitenutil.DrawRect(screen, float64(b.X), float64(b.Y+12), float64(b.W), 24, panelColor)
	text.Draw(screen, "<", basicfont.Face7x13, b.X+4, b.Y+29, dimColor)
	text.Draw(screen, ">", basicfont.Face7x13, b.X+b.W-11, b.Y+29, dimColor)
	centered(screen, m.Text, b.X+b.W/2, b.Y+29, textColor)
}

func drawSpectrum(screen *ebiten.Image, bins []float64) {
	ebitenutil.DrawRect(screen, spectrumX, spectrumY, spectrumW, spectrumH, panelColor)
	if len(bins) == 0 {
		return
	}

	barW := float64(spectrumW) / float64(len(bins))
	if barW < 1 {
		// Reduce to one bar per pixel column.
		step := float64(len(bins)) / spectrumW
		for col := 0; col < spectrumW; col++ {
			drawBar(screen, float64(col), 1, bins[int(float64(col)*step)])
		}
		return
	}
	for i, db := range bins {
		drawBar(screen, float64(i)*barW, barW, db)
	}
}

func drawBar(screen *ebiten.Image, x, width, db float64) {
	level := (db - spectrumFloor) / -spectrumFloor
	if level <= 0 {
		return
	}
	if level > 1 {
		level = 1
	}
	h := level * spectrumH
	ebitenutil.DrawRect(screen, spectrumX+x, spectrumY+spectrumH-h, width, h, spectrumColor)
}

func centered(screen *ebiten.Image, s string, cx, baseline int, clr color.Color) {
	w := text.BoundString(basicfont.Face7x13, s).Dx()
	text.Draw(screen, s, basicfont.Face7x13, cx-w/2, baseline, clr)
}
