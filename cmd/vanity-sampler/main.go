package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/screa/vanity-sampler/internal/config"
	"github.com/screa/vanity-sampler/internal/crypto"
	"github.com/screa/vanity-sampler/internal/history"
	logpkg "github.com/screa/vanity-sampler/internal/logger"
	"github.com/screa/vanity-sampler/pkg/report"
	"github.com/screa/vanity-sampler/pkg/search"
	"github.com/screa/vanity-sampler/pkg/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vanity-sampler <desired_suffix> <sample_size>",
		Short: "Vanity address search with a chi-square uniformity check",
		Long: `Generates random keypairs on every CPU until sample_size addresses ending
in desired_suffix have been found, then runs a chi-square goodness-of-fit
test over every address that was generated along the way.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return err
			}
			n, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sample_size %q: must be a non-negative integer", args[1])
			}
			cfg.Suffix = args[0]
			cfg.SampleSize = n
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runSearch(cmd.Context(), cfg, stdout, stderr)
		},
	}
	// usage and help go to stderr, stdout carries only the search output
	rootCmd.SetOut(stderr)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Number of worker goroutines")
	rootCmd.Flags().StringVarP(&cfg.Scheme, "scheme", "s", cfg.Scheme, "Key scheme: eth or btc")
	rootCmd.Flags().Uint64VarP(&cfg.ProgressEvery, "progress-every", "p", cfg.ProgressEvery, "Print the guess count every N guesses (0 disables)")
	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log attempts and rate periodically")
	rootCmd.Flags().IntVarP(&cfg.LogInterval, "log-interval", "i", cfg.LogInterval, "Rate logging interval in seconds")
	rootCmd.PersistentFlags().StringVarP(&cfg.HistoryDB, "history-db", "H", cfg.HistoryDB, "bbolt file archiving run summaries")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cfg.Env, "env", cfg.Env, "Log format: dev (console) or prod (json)")

	rootCmd.AddCommand(newHistoryCmd(cfg, stdout))
	return rootCmd
}

func runSearch(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger, err := logpkg.NewWriter(stderr, cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen, err := crypto.NewGenerator(cfg.Scheme)
	if err != nil {
		return err
	}

	logger.Info(map[string]any{
		"target":  cfg.GetTargetDescription(),
		"workers": cfg.Workers,
	}, "starting vanity sampler")

	opts := []search.Option{
		search.WithLogger(logger),
		search.WithProgressEvery(cfg.ProgressEvery),
	}
	if cfg.Verbose {
		opts = append(opts, search.WithRateLogging(time.Duration(cfg.LogInterval)*time.Second))
	}

	printer := report.NewPrinter(stdout)
	started := time.Now()
	coordinator := search.NewCoordinator(cfg.SearchConfig(), cfg.Workers, gen, printer, opts...)
	out, err := coordinator.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn(nil, "search interrupted, no report produced")
		}
		return err
	}

	r := stats.BuildReport(out.Histogram, cfg.SampleSize)
	if !r.PValueOK {
		logger.Warn(map[string]any{"distinct": r.Distinct}, "fewer than two distinct addresses, p-value not computable")
	}
	printer.Final(out.Guesses, r)

	if cfg.HistoryDB == "" {
		return nil
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Append(history.Run{
		StartedAt:  started,
		Duration:   out.Duration,
		Scheme:     cfg.Scheme,
		Suffix:     cfg.Suffix,
		SampleSize: cfg.SampleSize,
		Workers:    cfg.Workers,
		Guesses:    out.Guesses,
		Found:      out.Found,
		Report:     r,
	})
}
