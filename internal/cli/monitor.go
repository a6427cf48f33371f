// Package cli — monitor.go implements the "runtime-bench monitor" command.
//
// Monitor samples CPU, memory, and health for every target at a fixed
// interval and writes the series to timestamped JSON and CSV files on
// shutdown. It runs until --duration elapses or SIGINT/SIGTERM arrives;
// either way the data collected so far is saved.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/runtime-bench/internal/docker"
	"github.com/shinji-kodama/runtime-bench/internal/model"
	"github.com/shinji-kodama/runtime-bench/internal/monitor"
)

// monitorFlags holds the flag values for the monitor command.
type monitorFlags struct {
	interval time.Duration // --interval: sampling interval
	duration time.Duration // --duration: total run time, 0 = until interrupted
	out      string        // --out: output directory for JSON/CSV files
}

// NewMonitorCommand creates the "monitor" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewMonitorCommand() *cobra.Command {
	flags := &monitorFlags{}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Sample CPU, memory, and health of all targets",
		Long: `Periodically sample each target's container CPU and memory usage (via the
Docker stats API) together with an HTTP health probe, and write the series
as JSON and CSV when the run ends.

Runs until --duration elapses or Ctrl-C; data collected so far is saved
either way.

Examples:
  runtime-bench monitor
  runtime-bench monitor --interval 10s --duration 5m
  runtime-bench monitor --out ./data`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd.Context(), flags)
		},
	}

	cmd.Flags().DurationVar(&flags.interval, "interval", 10*time.Second,
		"Sampling interval")
	cmd.Flags().DurationVar(&flags.duration, "duration", 0,
		"Total monitoring duration (0 = run until interrupted)")
	cmd.Flags().StringVar(&flags.out, "out", "./data",
		"Directory for the JSON and CSV output files")

	return cmd
}

// runMonitor wires up the collector and runs it until cancellation.
func runMonitor(ctx context.Context, flags *monitorFlags) error {
	if flags.interval <= 0 {
		return model.NewCLIError(model.ExitPrereqFailed, "interval must be positive")
	}

	m, err := loadManifest()
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	// Ctrl-C and SIGTERM cancel the context, which ends the sampling
	// loop gracefully so the collected data still gets written.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	collector := monitor.NewCollector(cli, m, flags.interval, logger)
	collector.Run(ctx, flags.duration)

	jsonPath, csvPath, err := monitor.Save(flags.out, collector.Rounds(), time.Now())
	if err != nil {
		return model.WrapCLIError(model.ExitPrereqFailed,
			"failed to save monitoring data", err)
	}

	fmt.Printf("Data saved to %s and %s\n", jsonPath, csvPath)
	return nil
}
