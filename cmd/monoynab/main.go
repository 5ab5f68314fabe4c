package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkoval/monoynab/pkg/config"
	"github.com/mkoval/monoynab/pkg/importer"
	"github.com/mkoval/monoynab/pkg/monobank"
	"github.com/mkoval/monoynab/pkg/server"
	"github.com/mkoval/monoynab/pkg/syncer"
	"github.com/mkoval/monoynab/pkg/ynab"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "monoynab",
	Short: "Sync Monobank transactions into YNAB",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync daemon (scheduled passes plus webhook listener)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		s := buildEngine(cfg, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Server.Port != "" {
			srv := server.New(s, logger)
			addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
			logger.Info("starting webhook listener", "addr", addr)
			go func() {
				if err := srv.Start(addr); err != nil {
					logger.Error("webhook listener stopped", "error", err)
				}
			}()
		}

		s.Run(ctx)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync pass over a date window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		s := buildEngine(cfg, logger)

		from, to, err := window(cmd, cfg.Sync.Lookback)
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			txs, err := s.Collect(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			printPreview(txs)
			return nil
		}

		return s.RunPass(cmd.Context(), from, to)
	},
}

var setupWebhookCmd = &cobra.Command{
	Use:   "setup-webhook",
	Short: "Register the configured callback URL with Monobank",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if cfg.Monobank.Token == "" {
			return fmt.Errorf("monobank token is required")
		}
		if cfg.Monobank.WebhookURL == "" {
			return fmt.Errorf("webhook url is required (monobank.webhook_url or --webhook-url)")
		}

		client := monobank.NewClient(cfg.Monobank.Token, cfg.Monobank.BaseURL)
		if err := client.SetupWebhook(cmd.Context(), cfg.Monobank.WebhookURL); err != nil {
			return err
		}
		logger.Info("webhook registered", "url", cfg.Monobank.WebhookURL)
		return nil
	},
}

func window(cmd *cobra.Command, lookback time.Duration) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.Add(-lookback)
	to := now

	if s, _ := cmd.Flags().GetString("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		from = t
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s is before start %s", to, from)
	}
	return from, to, nil
}

func buildEngine(cfg *config.Config, logger *log.Logger) *syncer.Syncer {
	client := monobank.NewClient(cfg.Monobank.Token, cfg.Monobank.BaseURL)
	dir := monobank.NewDirectory(client, logger)
	fetch := monobank.NewFetcher(client, monobank.FetcherConfig{
		Chunk:   cfg.Sync.Chunk,
		Delay:   cfg.Sync.RequestDelay,
		Backoff: cfg.Sync.Backoff,
	}, logger)
	ledger := ynab.New(cfg.YNAB.Token, cfg.YNAB.BudgetID)
	imp := importer.New(ledger, logger)

	s := syncer.New(syncer.Config{
		Interval:     cfg.Sync.Interval,
		Lookback:     cfg.Sync.Lookback,
		AccountDelay: cfg.Sync.RequestDelay,
		SyncAll:      cfg.Sync.AllAccounts,
		Mappings:     cfg.Sync.Accounts,
	}, dir, fetch, imp, logger)
	return s
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "monoynab",
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")

	runCmd.Flags().String("port", "", "Webhook listener port (empty disables the listener)")
	runCmd.Flags().Duration("interval", 0, "Interval between scheduled sync passes")
	runCmd.Flags().Duration("lookback", 0, "How far back each scheduled pass reaches")
	runCmd.Flags().Bool("all-accounts", false, "Sync accounts without a mapping entry too")

	syncCmd.Flags().String("start", "", "Window start (YYYY-MM-DD, default lookback ago)")
	syncCmd.Flags().String("end", "", "Window end (YYYY-MM-DD, default now)")
	syncCmd.Flags().Bool("dry-run", false, "Fetch and print without importing")
	syncCmd.Flags().Duration("lookback", 0, "How far back the default window reaches")
	syncCmd.Flags().Bool("all-accounts", false, "Sync accounts without a mapping entry too")

	setupWebhookCmd.Flags().String("webhook-url", "", "Callback URL to register")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(setupWebhookCmd)
	rootCmd.AddCommand(accountsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
