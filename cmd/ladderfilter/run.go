package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/editor/termui"
	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/host"
)

var (
	runTUI      bool
	runNoEditor bool
	runScript   string
	runState    string
	runListen   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play the filtered signal with an editor",
	Long: `Play the test signal through the filter on the default audio device.
The editor opens in a window, or in the terminal with --tui.

Examples:
  ladderfilter run
  ladderfilter run --tui
  ladderfilter run --no-editor --listen :8080 --script sweep.lua`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show the editor in the terminal")
	runCmd.Flags().BoolVar(&runNoEditor, "no-editor", false, "Run without an editor")
	runCmd.Flags().StringVar(&runScript, "script", "", "Lua automation script")
	runCmd.Flags().StringVar(&runState, "state", "", "State file to restore at start")
	runCmd.Flags().StringVar(&runListen, "listen", "", "Serve the control API on this address")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runTUI && logFile == "" {
		// The terminal belongs to the editor.
		debug.SetOutput(io.Discard)
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	inst, proc, err := newInstance()
	if err != nil {
		return err
	}
	defer proc.ReleaseResources()
	h, err := host.New(cfg, inst)
	if err != nil {
		return err
	}
	defer h.Close()

	cleanup, err := prepare(h, proc, runState, runScript)
	if err != nil {
		return err
	}
	defer cleanup()

	ring := buffer.NewWriteAheadBuffer(cfg.SampleRate, cfg.Channels, cfg.Latency)
	out, err := openAudio(cfg.SampleRate, ring, cfg.Latency)
	if err != nil {
		return err
	}
	defer out.Close()

	ed := proc.CreateEditor()
	ed.SetEditSink(inst)
	ed.SetSpectrumSource(h.Monitor())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Stream(gctx, ring)
	})
	out.Start()

	if runListen != "" {
		remote := host.NewRemote(inst, proc.StateManager(), h.Stats)
		g.Go(func() error {
			return remote.ListenAndServe(gctx, runListen)
		})
	}

	var uiErr error
	switch {
	case runNoEditor:
		<-gctx.Done()
	case runTUI:
		g.Go(func() error {
			defer cancel()
			return termui.Run(gctx, ed)
		})
	default:
		ed.SetClipboard(newClipboard())
		uiErr = runWindow(gctx, ed)
		cancel()
	}

	return errors.Join(uiErr, g.Wait())
}
