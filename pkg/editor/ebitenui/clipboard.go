package ebitenui

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

// ErrClipboardEmpty is returned when the clipboard holds no text.
var ErrClipboardEmpty = errors.New("clipboard: no text")

// SystemClipboard is the desktop clipboard. It is initialized on first use.
type SystemClipboard struct {
	once sync.Once
	err  error
}

func (c *SystemClipboard) init() error {
	c.once.Do(func() {
		c.err = clipboard.Init()
	})
	return c.err
}

// ReadText returns the clipboard text.
func (c *SystemClipboard) ReadText() ([]byte, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return nil, ErrClipboardEmpty
	}
	return data, nil
}

// WriteText replaces the clipboard text.
func (c *SystemClipboard) WriteText(data []byte) error {
	if err := c.init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}
