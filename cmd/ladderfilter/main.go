package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/host"
	"github.com/justyntemme/ladderfilter/pkg/ladderfilter"
	hostplugin "github.com/justyntemme/ladderfilter/pkg/plugin"
)

var version = "1.0.0"

var (
	cfg      = host.DefaultConfig()
	source   string
	logLevel string
	logFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ladderfilter",
	Short: "Run the ladder filter plugin outside a DAW",
	Long: `ladderfilter hosts the ladder filter plugin on its own. It feeds a
generated test signal through the filter and plays it, renders it to a WAV
file, or serves it headless behind an HTTP control API.

Examples:
  ladderfilter run
  ladderfilter run --tui --script sweep.lua
  ladderfilter render --seconds 5 -o out.wav --source mix
  ladderfilter serve --listen :8080`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.Float64Var(&cfg.SampleRate, "rate", cfg.SampleRate, "Sample rate in Hz")
	f.IntVar(&cfg.BlockSize, "block", cfg.BlockSize, "Processing block size in samples")
	f.IntVarP(&cfg.Channels, "channels", "c", cfg.Channels, "Channel count (1 or 2)")
	f.StringVarP(&source, "source", "s", string(cfg.Source), "Input signal (sine, noise, mix)")
	f.Float64Var(&cfg.Frequency, "freq", cfg.Frequency, "Sine frequency in Hz")
	f.Float64Var(&cfg.Amplitude, "amp", cfg.Amplitude, "Input peak level (0 to 1)")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Noise seed")
	f.DurationVar(&cfg.Latency, "latency", cfg.Latency, "Audio output latency")
	f.IntVar(&cfg.FFTSize, "fft", cfg.FFTSize, "Spectrum analyzer size (power of two)")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error, off)")
	f.StringVar(&logFile, "log-file", "", "Write logs to a file instead of stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(infoCmd)
}

// setup applies the persistent flags before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	level, err := debug.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	debug.SetLevel(level)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		debug.SetOutput(f)
	}

	cfg.Source = host.SourceKind(source)
	return cfg.Validate()
}

// newInstance creates an instance of the registered plugin and returns its
// processor alongside.
func newInstance() (*hostplugin.Instance, *ladderfilter.Processor, error) {
	inst, err := hostplugin.CreateDefaultInstance()
	if err != nil {
		return nil, nil, err
	}
	proc, ok := inst.Processor().(*ladderfilter.Processor)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected processor %T", inst.Processor())
	}
	return inst, proc, nil
}

// prepare applies an optional state file and automation script to a new
// host. The returned cleanup releases the script.
func prepare(h *host.Host, proc *ladderfilter.Processor, statePath, scriptPath string) (func(), error) {
	if statePath != "" {
		if err := loadStateFile(proc, statePath); err != nil {
			return nil, err
		}
	}
	if scriptPath == "" {
		return func() {}, nil
	}

	a, err := host.LoadAutomation(scriptPath, proc.Parameters(), proc.SetFilterMode)
	if err != nil {
		return nil, err
	}
	h.SetAutomation(a)
	return a.Close, nil
}

func loadStateFile(proc *ladderfilter.Processor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := proc.StateManager().Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	debug.Info("restored state from %s", path)
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
