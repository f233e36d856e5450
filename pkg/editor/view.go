package editor

// SliderView is a render snapshot of a slider.
type SliderView struct {
	Label      string
	Value      float64
	Text       string
	Proportion float64
	Bounds     Rect
}

// MenuView is a render snapshot of the menu.
type MenuView struct {
	Items      []MenuItem
	SelectedID int
	Text       string
	Bounds     Rect
}

// View is everything a front end needs to draw one frame.
type View struct {
	Title   string
	Width   int
	Height  int
	Sliders []SliderView
	Menu    MenuView
}

// View returns a snapshot of the widgets.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Title:   e.cfg.Title,
		Width:   e.cfg.Width,
		Height:  e.cfg.Height,
		Sliders: make([]SliderView, len(e.sliders)),
		Menu: MenuView{
			Items:      e.menu.Items(),
			SelectedID: e.menu.SelectedID(),
			Text:       e.menu.Text(),
			Bounds:     e.menu.Bounds,
		},
	}
	for i, s := range e.sliders {
		v.Sliders[i] = SliderView{
			Label:      s.Label,
			Value:      s.Value(),
			Text:       s.Text(),
			Proportion: s.Proportion(),
			Bounds:     s.Bounds,
		}
	}
	return v
}
