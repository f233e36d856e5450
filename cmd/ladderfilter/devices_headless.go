//go:build headless

package main

import (
	"context"
	"errors"
	"time"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/editor"
)

var errHeadless = errors.New("built without audio and window support (headless tag)")

type output interface {
	Start()
	Close() error
}

func openAudio(sampleRate float64, ring *buffer.WriteAheadBuffer, latency time.Duration) (output, error) {
	return nil, errHeadless
}

func runWindow(ctx context.Context, ed *editor.Editor) error {
	return errHeadless
}

func newClipboard() editor.Clipboard {
	return nil
}
