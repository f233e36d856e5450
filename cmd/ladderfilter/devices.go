//go:build !headless

package main

import (
	"context"
	"time"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/editor"
	"github.com/justyntemme/ladderfilter/pkg/editor/ebitenui"
	"github.com/justyntemme/ladderfilter/pkg/host/audioout"
)

type output interface {
	Start()
	Close() error
}

func openAudio(sampleRate float64, ring *buffer.WriteAheadBuffer, latency time.Duration) (output, error) {
	return audioout.NewOtoOutput(sampleRate, ring, latency)
}

func runWindow(ctx context.Context, ed *editor.Editor) error {
	return ebitenui.Run(ctx, ed)
}

func newClipboard() editor.Clipboard {
	return &ebitenui.SystemClipboard{}
}
