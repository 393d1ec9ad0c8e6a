package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"daysheet/internal/activity"
	"daysheet/internal/config"
	appLog "daysheet/internal/log"
	"daysheet/internal/report"
)

const version = "0.3.0"

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "daysheet",
		Short: "Build a daily activity timesheet from mail, meetings, issues and commits",
		Long: `daysheet reads sent mail, calendar exports, issue tracker exports and git
history, estimates when each activity happened and writes one row per day of
the configured period.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				appLog.SetLevel(appLog.LevelDebug)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			appLog.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newInitCmd(opts), newGenerateCmd(opts), newWatchCmd(opts))
	return root
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil {
				appLog.Info("config already exists", "config_path", opts.configPath)
				return nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(opts.configPath, config.DefaultConfig()); err != nil {
				return fmt.Errorf("write default config: %w", err)
			}
			appLog.Info("default config written", "config_path", opts.configPath)
			return nil
		},
	}
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the report once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			var ropts []report.Option
			if output != "" {
				ropts = append(ropts, report.WithOutput(output))
			}
			if cmd.Flags().Changed("seed") {
				ropts = append(ropts, report.WithRand(activity.NewSeededRand(seed)))
			}
			res, err := generate(cmd.Context(), cfg, ropts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d days, %d active\n", res.Output, res.Days, res.ActiveDays)
			if len(res.Stale) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: stale cached input: %s\n", strings.Join(res.Stale, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.xlsx, .csv or .html); overrides output.path")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed the jitter generator for reproducible output")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the report on the configured cron schedule",
		Long: `watch regenerates the report at every tick of the configured cron schedule
until interrupted. Each tick is a full, independent recomputation: every
source is read again and the whole period is rebuilt. Nothing is carried over
from one tick to the next, so a tick never updates the previous report
incrementally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cfg)
		},
	}
}

func generate(ctx context.Context, cfg *config.Config, opts ...report.Option) (report.Result, error) {
	g, err := report.New(cfg, opts...)
	if err != nil {
		return report.Result{}, err
	}
	return g.Run(ctx)
}

// watch runs generate on cfg.Schedule until ctx is done. A failed run is
// logged and retried at the next tick.
func watch(ctx context.Context, cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.Schedule, func() {
		if _, err := generate(ctx, cfg); err != nil {
			appLog.Error("scheduled run failed", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.Schedule, err)
	}

	appLog.Info("watching", "schedule", cfg.Schedule, "timezone", cfg.Timezone)
	c.Start()
	<-ctx.Done()
	appLog.Info("signal received, shutting down")
	<-c.Stop().Done()
	return nil
}

func main() {
	appLog.Info("daysheet starting", "version", version)
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		appLog.Error("daysheet failed", err)
		os.Exit(1)
	}
}
