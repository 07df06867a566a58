package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"finddup-go/internal/classify"
	"finddup-go/internal/config"
	"finddup-go/internal/fingerprint"
	"finddup-go/internal/progress"
	"finddup-go/internal/report"
)

var (
	configPath string
	workers    int
	verbose    bool
	failFast   bool
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "finddup-go [flags] searchpath...",
	Short: "Find duplicate files and directories in all paths",
	Long: "Find duplicate files and directories in all paths.\n" +
		"Looks at file content, not names or metadata. Symbolic links are\n" +
		"never followed; a scan is a fresh in-memory computation every run.",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "finddup.yaml", "config file path")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of digest worker goroutines (default 2x CPUs)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose status messages")
	rootCmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort the scan on the first read error")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	// Reject vanished inputs up front rather than reporting a whole
	// scan of nothing.
	for _, path := range args {
		if _, err := fingerprint.Stat(path); err != nil {
			return err
		}
	}

	opts := classify.Options{
		Workers:  cfg.Workers,
		FailFast: failFast,
		Ignore:   cfg.Ignore,
	}
	if !noProgress {
		opts.Progress = progress.New("hashing")
	}

	start := time.Now()
	slog.Debug("starting scan", "paths", args, "workers", cfg.Workers)

	res, err := classify.Scan(cmd.Context(), args, opts)
	if err != nil {
		return err
	}

	fmt.Print(report.Format(res))

	slog.Info("scan finished",
		"duplicate_sets", len(res.Duplicates),
		"unique", len(res.Unique),
		"indeterminate", len(res.Indeterminate),
		"errors", len(res.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\nStopped by user.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
