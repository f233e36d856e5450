package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/host"
)

var (
	renderSeconds float64
	renderOut     string
	renderScript  string
	renderState   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the filtered signal to a WAV file",
	Long: `Render the test signal through the filter as fast as possible and
write 32-bit float WAV.

Examples:
  ladderfilter render -o out.wav
  ladderfilter render --seconds 10 --source sine --freq 110 --script sweep.lua -o sweep.wav`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Float64Var(&renderSeconds, "seconds", 5, "Length in seconds")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "Output WAV file (required)")
	renderCmd.Flags().StringVar(&renderScript, "script", "", "Lua automation script")
	renderCmd.Flags().StringVar(&renderState, "state", "", "State file to restore at start")
	renderCmd.MarkFlagRequired("output")
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	if renderSeconds <= 0 {
		return fmt.Errorf("invalid length %v", renderSeconds)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

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

	cleanup, err := prepare(h, proc, renderState, renderScript)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Create(renderOut)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	duration := seconds(renderSeconds)
	bw := bufio.NewWriter(f)
	wav, err := host.NewWAVWriter(bw, int(cfg.SampleRate), cfg.Channels, int(h.Frames(duration)))
	if err != nil {
		return err
	}
	if err := h.Render(ctx, duration, wav.WriteBlock); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("render interrupted: %w", err)
		}
		return err
	}
	if err := wav.Close(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	stats := h.Stats()
	debug.Info("wrote %s: %.1fs, peak %.1f dBFS, rms %.1f dBFS, %.1f%% CPU",
		renderOut, stats.Seconds, stats.PeakDB, stats.RMSDB, stats.Process.CPULoad)
	return nil
}
