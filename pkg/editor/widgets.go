package editor

import (
	"math"
	"strconv"
)

// Notification selects whether a widget change reports to its listener.
type Notification int

const (
	// DontSendNotification updates the widget silently, as the sync loop does
	DontSendNotification Notification = iota
	// SendNotification reports the change, as a user interaction does
	SendNotification
)

// Rect is a widget's position in editor pixels.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Slider is a continuous control with an interval grid and a skewed travel.
type Slider struct {
	Label    string
	Bounds   Rect
	Min      float64
	Max      float64
	Interval float64
	Skew     float64

	value    float64
	onChange func(value float64)
}

// NewSlider creates a linear slider positioned at min.
func NewSlider(label string, min, max, interval float64) *Slider {
	return &Slider{
		Label:    label,
		Min:      min,
		Max:      max,
		Interval: interval,
		Skew:     1,
		value:    min,
	}
}

// OnChange sets the listener for notified changes.
func (s *Slider) OnChange(fn func(value float64)) {
	s.onChange = fn
}

// Value returns the displayed value.
func (s *Slider) Value() float64 {
	return s.value
}

// SetValue moves the slider. The value is clamped and snapped to the
// interval grid. It reports whether the displayed value changed; the
// listener only hears about changes sent with SendNotification.
func (s *Slider) SetValue(v float64, n Notification) bool {
	if math.IsNaN(v) {
		return false
	}
	v = s.constrain(v)
	if v == s.value {
		return false
	}
	s.value = v
	if n == SendNotification && s.onChange != nil {
		s.onChange(v)
	}
	return true
}

// Proportion returns the control position in [0, 1].
func (s *Slider) Proportion() float64 {
	if s.Max <= s.Min {
		return 0
	}
	n := (s.value - s.Min) / (s.Max - s.Min)
	if s.Skew > 0 && s.Skew != 1 {
		n = math.Pow(n, s.Skew)
	}
	return n
}

// SetProportion moves the slider to a control position in [0, 1].
func (s *Slider) SetProportion(p float64, n Notification) bool {
	p = math.Max(0, math.Min(1, p))
	if s.Skew > 0 && s.Skew != 1 && p > 0 {
		p = math.Exp(math.Log(p) / s.Skew)
	}
	return s.SetValue(s.Min+p*(s.Max-s.Min), n)
}

// Text formats the value with as many decimals as the interval needs.
func (s *Slider) Text() string {
	return strconv.FormatFloat(s.value, 'f', decimals(s.Interval), 64)
}

func (s *Slider) constrain(v float64) float64 {
	if s.Max <= s.Min {
		return s.Min
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Interval > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Interval)*s.Interval
		v = math.Max(s.Min, math.Min(s.Max, v))
	}
	return v
}

func decimals(interval float64) int {
	if interval <= 0 || interval >= 1 {
		return 0
	}
	return min(int(math.Ceil(-math.Log10(interval)-1e-9)), 6)
}

// MenuItem is one selectable entry. IDs are non-zero.
type MenuItem struct {
	ID   int
	Name string
}

// Menu is a drop-down list of items. Nothing is selected until an item is.
type Menu struct {
	Bounds Rect

	items    []MenuItem
	selected int
	onChange func(id int)
}

// NewMenu creates a menu with the given items and no selection.
func NewMenu(items ...MenuItem) *Menu {
	return &Menu{items: append([]MenuItem(nil), items...)}
}

// OnChange sets the listener for notified selections.
func (m *Menu) OnChange(fn func(id int)) {
	m.onChange = fn
}

// Items returns the menu entries.
func (m *Menu) Items() []MenuItem {
	return m.items
}

// SelectedID returns the selected item id, or 0.
func (m *Menu) SelectedID() int {
	return m.selected
}

// Text returns the selected item's name.
func (m *Menu) Text() string {
	for _, it := range m.items {
		if it.ID == m.selected {
			return it.Name
		}
	}
	return ""
}

// SetSelectedID selects the item with the given id. Ids not in the menu are
// ignored. It reports whether the selection changed.
func (m *Menu) SetSelectedID(id int, n Notification) bool {
	if m.index(id) < 0 || id == m.selected {
		return false
	}
	m.selected = id
	if n == SendNotification && m.onChange != nil {
		m.onChange(id)
	}
	return true
}

// Step moves the selection by delta items, wrapping around.
func (m *Menu) Step(delta int, n Notification) bool {
	if len(m.items) == 0 {
		return false
	}
	i := max(m.index(m.selected), 0)
	i = ((i+delta)%len(m.items) + len(m.items)) % len(m.items)
	return m.SetSelectedID(m.items[i].ID, n)
}

func (m *Menu) index(id int) int {
	for i, it := range m.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
