package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/ladderfilter/pkg/dsp/buffer"
	"github.com/justyntemme/ladderfilter/pkg/host"
)

var (
	serveListen string
	serveScript string
	serveState  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Process in real time without audio output behind the control API",
	Long: `Run the filter at real-time pace with no audio device and serve the
HTTP control API. Useful for scripting and monitoring.

Example:
  ladderfilter serve --listen :8080
  curl -X PUT -d '{"value": 800}' localhost:8080/params/cutoffValue`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveScript, "script", "", "Lua automation script")
	serveCmd.Flags().StringVar(&serveState, "state", "", "State file to restore at start")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
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

	cleanup, err := prepare(h, proc, serveState, serveScript)
	if err != nil {
		return err
	}
	defer cleanup()

	ring := buffer.NewWriteAheadBuffer(cfg.SampleRate, cfg.Channels, cfg.Latency)
	remote := host.NewRemote(inst, proc.StateManager(), h.Stats)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Stream(gctx, ring)
	})
	g.Go(func() error {
		return drain(gctx, ring, cfg.SampleRate, cfg.BlockSize)
	})
	g.Go(func() error {
		return remote.ListenAndServe(gctx, serveListen)
	})
	return g.Wait()
}

// drain consumes the ring at real-time pace in place of an audio device.
func drain(ctx context.Context, ring *buffer.WriteAheadBuffer, sampleRate float64, blockSize int) error {
	period := time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	block := make([]float32, blockSize*ring.Channels())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ring.Read(block)
		}
	}
}
