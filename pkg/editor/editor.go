// Package editor implements the plugin's control surface independent of any
// window system: sliders and a menu bound to the parameter store, the
// periodic sync that reflects host automation, and state copy/paste.
//
// Front ends in the ebitenui and termui subpackages render an Editor and
// feed it user input.
package editor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

// PollPeriod is the interval between store syncs.
const PollPeriod = 20 * time.Millisecond

// ErrNoClipboard is returned by copy and paste without a clipboard.
var ErrNoClipboard = errors.New("editor: no clipboard")

// EditSink receives parameter edits made in the editor. A plugin instance
// satisfies it and forwards the gestures to the host.
type EditSink interface {
	BeginEdit(id uint32)
	PerformEdit(id uint32, plain float64) error
	EndEdit(id uint32)
}

// StateDocument reads and writes the plugin state as a text document.
type StateDocument interface {
	Serialize() ([]byte, error)
	Deserialize(doc []byte) error
}

// Clipboard is a system text clipboard.
type Clipboard interface {
	ReadText() ([]byte, error)
	WriteText(data []byte) error
}

// SpectrumSource provides the latest output spectrum in dB, one value per
// display bin. It appends to dst.
type SpectrumSource interface {
	Spectrum(dst []float64) []float64
}

// SliderSpec binds a slider to a parameter.
type SliderSpec struct {
	ParamID  uint32
	Label    string
	Min      float64
	Max      float64
	Interval float64
	Skew     float64
	Bounds   Rect
}

// MenuSpec binds the menu to a selector parameter.
type MenuSpec struct {
	ParamID uint32
	Items   []MenuItem
	Bounds  Rect
	// Select applies a chosen id and reports whether it was accepted.
	// Refused ids are not written to the store.
	Select func(id int) bool
}

// Config describes an editor's layout.
type Config struct {
	Title   string
	Width   int
	Height  int
	Sliders []SliderSpec
	Menu    MenuSpec
	State   StateDocument
}

// Editor is the control surface of one plugin instance. All methods are
// safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	cfg     Config
	store   *param.Registry
	sliders []*Slider
	menu    *Menu
	log     *debug.Logger

	sink      EditSink
	clipboard Clipboard
	spectrum  SpectrumSource

	lastSync time.Time
}

// New creates an editor bound to store and shows the current values.
func New(store *param.Registry, cfg Config) *Editor {
	e := &Editor{
		cfg:   cfg,
		store: store,
		menu:  NewMenu(cfg.Menu.Items...),
		log:   debug.Default().Named("editor"),
	}
	e.menu.Bounds = cfg.Menu.Bounds
	e.menu.OnChange(e.menuChanged)

	for _, spec := range cfg.Sliders {
		s := NewSlider(spec.Label, spec.Min, spec.Max, spec.Interval)
		if spec.Skew > 0 {
			s.Skew = spec.Skew
		}
		s.Bounds = spec.Bounds
		id := spec.ParamID
		s.OnChange(func(v float64) {
			e.edit(id, v)
		})
		e.sliders = append(e.sliders, s)
	}

	e.SyncFromStore()
	return e
}

// Title returns the window title.
func (e *Editor) Title() string {
	return e.cfg.Title
}

// Size returns the editor size in pixels.
func (e *Editor) Size() (width, height int) {
	return e.cfg.Width, e.cfg.Height
}

// SetEditSink routes edits through s instead of writing the store directly.
func (e *Editor) SetEditSink(s EditSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = s
}

// SetClipboard installs the clipboard used by CopyState and PasteState.
func (e *Editor) SetClipboard(c Clipboard) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clipboard = c
}

// SetSpectrumSource installs the provider for the spectrum display.
func (e *Editor) SetSpectrumSource(s SpectrumSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spectrum = s
}

// SyncFromStore pushes the stored values into the widgets without
// notifying, so nothing is written back. It returns how many widgets
// changed; a second call with no store change in between returns 0.
func (e *Editor) SyncFromStore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncLocked()
}

func (e *Editor) syncLocked() int {
	changed := 0
	for i, s := range e.sliders {
		if s.SetValue(e.store.Value(e.cfg.Sliders[i].ParamID), DontSendNotification) {
			changed++
		}
	}
	id := int(e.store.Value(e.cfg.Menu.ParamID))
	if e.menu.SetSelectedID(id, DontSendNotification) {
		changed++
	}
	return changed
}

// Tick syncs when at least PollPeriod has passed since the last sync. Front
// ends that own a frame loop call it once per frame.
func (e *Editor) Tick(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now.Sub(e.lastSync) < PollPeriod {
		return false
	}
	e.lastSync = now
	e.syncLocked()
	return true
}

// ValueChanged selects a menu item as if the user had picked it.
func (e *Editor) ValueChanged(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.menu.SetSelectedID(id, SendNotification)
}

// StepMenu moves the menu selection by delta items.
func (e *Editor) StepMenu(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.menu.Step(delta, SendNotification)
}

// SetSlider moves slider i to a value as a single user edit.
func (e *Editor) SetSlider(i int, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.sliders) {
		return
	}
	id := e.cfg.Sliders[i].ParamID
	e.beginEdit(id)
	e.sliders[i].SetValue(v, SendNotification)
	e.endEdit(id)
}

// ResetSlider moves slider i back to its parameter's default as a single
// user edit.
func (e *Editor) ResetSlider(i int) {
	if i < 0 || i >= len(e.cfg.Sliders) {
		return
	}
	if p := e.store.Get(e.cfg.Sliders[i].ParamID); p != nil {
		e.SetSlider(i, p.DefaultValue)
	}
}

// NudgeSlider moves slider i by delta of its travel as a single user edit.
func (e *Editor) NudgeSlider(i int, delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.sliders) {
		return
	}
	s := e.sliders[i]
	id := e.cfg.Sliders[i].ParamID
	e.beginEdit(id)
	s.SetProportion(s.Proportion()+delta, SendNotification)
	e.endEdit(id)
}

// BeginSliderGesture opens a drag on slider i.
func (e *Editor) BeginSliderGesture(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= 0 && i < len(e.sliders) {
		e.beginEdit(e.cfg.Sliders[i].ParamID)
	}
}

// DragSlider moves slider i to a control position during a drag.
func (e *Editor) DragSlider(i int, proportion float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= 0 && i < len(e.sliders) {
		e.sliders[i].SetProportion(proportion, SendNotification)
	}
}

// EndSliderGesture closes a drag on slider i.
func (e *Editor) EndSliderGesture(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= 0 && i < len(e.sliders) {
		e.endEdit(e.cfg.Sliders[i].ParamID)
	}
}

// SliderAt returns the index of the slider under a point.
func (e *Editor) SliderAt(x, y int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.sliders {
		if s.Bounds.Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}

// MenuAt reports whether a point lies on the menu.
func (e *Editor) MenuAt(x, y int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menu.Bounds.Contains(x, y)
}

// CopyState writes the state document to the clipboard.
func (e *Editor) CopyState() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clipboard == nil {
		return ErrNoClipboard
	}
	if e.cfg.State == nil {
		return errors.New("editor: no state document")
	}

	doc, err := e.cfg.State.Serialize()
	if err != nil {
		return fmt.Errorf("copy state: %w", err)
	}
	if err := e.clipboard.WriteText(doc); err != nil {
		return fmt.Errorf("copy state: %w", err)
	}
	e.log.Info("copied state to clipboard")
	return nil
}

// PasteState restores the state document held by the clipboard. A rejected
// document leaves every parameter unchanged.
func (e *Editor) PasteState() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clipboard == nil {
		return ErrNoClipboard
	}
	if e.cfg.State == nil {
		return errors.New("editor: no state document")
	}

	doc, err := e.clipboard.ReadText()
	if err != nil {
		return fmt.Errorf("paste state: %w", err)
	}
	if err := e.cfg.State.Deserialize(doc); err != nil {
		e.log.Warn("pasted state rejected: %v", err)
		return fmt.Errorf("paste state: %w", err)
	}
	e.syncLocked()
	e.log.Info("pasted state from clipboard")
	return nil
}

// Spectrum appends the latest display spectrum to dst.
func (e *Editor) Spectrum(dst []float64) []float64 {
	e.mu.Lock()
	src := e.spectrum
	e.mu.Unlock()
	if src == nil {
		return dst
	}
	return src.Spectrum(dst)
}

func (e *Editor) menuChanged(id int) {
	if sel := e.cfg.Menu.Select; sel != nil && !sel(id) {
		e.log.Warn("menu id %d refused", id)
		return
	}
	e.beginEdit(e.cfg.Menu.ParamID)
	e.edit(e.cfg.Menu.ParamID, float64(id))
	e.endEdit(e.cfg.Menu.ParamID)
}

func (e *Editor) edit(id uint32, v float64) {
	if e.sink == nil {
		e.store.Set(id, v)
		return
	}
	if err := e.sink.PerformEdit(id, v); err != nil {
		e.log.Error("edit parameter %d: %v", id, err)
	}
}

func (e *Editor) beginEdit(id uint32) {
	if e.sink != nil {
		e.sink.BeginEdit(id)
	}
}

func (e *Editor) endEdit(id uint32) {
	if e.sink != nil {
		e.sink.EndEdit(id)
	}
}
