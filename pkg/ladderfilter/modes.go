package ladderfilter

import (
	"github.com/justyntemme/ladderfilter/pkg/dsp/ladder"
)

// MenuItem is one entry of the filter mode menu.
type MenuItem struct {
	ID   int
	Name string
}

// modeTable maps menu ids to engine modes. Ids start at 1.
var modeTable = [...]struct {
	id   int
	mode ladder.Mode
}{
	{1, ladder.LPF12},
	{2, ladder.BPF12},
	{3, ladder.HPF12},
	{4, ladder.LPF24},
	{5, ladder.BPF24},
	{6, ladder.HPF24},
}

// ModeForID returns the engine mode for a menu id. ok is false for ids
// outside the table, and callers must then leave the mode alone.
func ModeForID(id int) (mode ladder.Mode, ok bool) {
	for _, e := range modeTable {
		if e.id == id {
			return e.mode, true
		}
	}
	return 0, false
}

// IDForMode returns the menu id for an engine mode.
func IDForMode(mode ladder.Mode) (id int, ok bool) {
	for _, e := range modeTable {
		if e.mode == mode {
			return e.id, true
		}
	}
	return 0, false
}

// MenuItems lists the menu entries in display order.
func MenuItems() []MenuItem {
	items := make([]MenuItem, len(modeTable))
	for i, e := range modeTable {
		items[i] = MenuItem{ID: e.id, Name: e.mode.String()}
	}
	return items
}
