// Package main provides the entry point for the ringstats CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/ringstats/internal/adapters/bellboard"
	"github.com/okian/ringstats/internal/adapters/ratelimit"
	"github.com/okian/ringstats/internal/adapters/report"
	service "github.com/okian/ringstats/internal/app"
	"github.com/okian/ringstats/internal/config"
	"github.com/okian/ringstats/pkg/logger"
	"github.com/okian/ringstats/pkg/metrics"
)

// Build information, set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ringstats",
		Short: "Yearly quarter peal counts for guild and county ringers",
		Long: `ringstats queries BellBoard for guild and county quarter peals, merges them
per ringer and year, adds each ringer's personal yearly totals and writes
the table to a spreadsheet.

Commands:
  run       Build and write the report (default)
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReport,
	}
	config.BindFlags(context.Background(), root.PersistentFlags())

	root.AddCommand(runCmd())
	root.AddCommand(versionCmd())
	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build and write the report",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ringstats %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// runReport loads configuration, wires the adapters and runs the pipeline once.
func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithWriter(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RequestDelay(), cfg.RequestsPerSecond, cfg.Burst)
	if err != nil {
		return err
	}

	client := bellboard.NewClient(
		bellboard.WithBaseURL(cfg.BaseURL),
		bellboard.WithGuildID(cfg.GuildID),
		bellboard.WithCountyRegion(cfg.CountyRegion),
		bellboard.WithLength(cfg.Length),
		bellboard.WithPageSize(cfg.PageSize),
		bellboard.WithTimeout(cfg.HTTPTimeout()),
		bellboard.WithUserAgent(cfg.UserAgent),
		bellboard.WithLimiter(limiter),
		bellboard.WithLogger(log.Named("bellboard")),
	)

	sink, err := report.New(cfg.Format, cfg.Output,
		report.WithOutput(cmd.OutOrStdout()),
		report.WithLogger(log.Named("report")),
	)
	if err != nil {
		return err
	}

	runner := service.New(client, sink,
		service.WithYears(cfg.Years()),
		service.WithPageSize(cfg.PageSize),
		service.WithRowLimit(cfg.RowLimit),
		service.WithConcurrency(cfg.Concurrency),
		service.WithLogger(log),
	)
	_, runErr := runner.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "failed to write metrics textfile", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}
	return runErr
}
