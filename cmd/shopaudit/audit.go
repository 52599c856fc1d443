package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/model"
	"github.com/nao1215/shopaudit/internal/pipeline"
	"github.com/nao1215/shopaudit/internal/report"
)

// errAuditFailed is returned when at least one target could not be audited,
// reported or saved.
var errAuditFailed = errors.New("one or more audits failed")

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Audit storefront pages for SEO issues",
		Long: `Audit fetches each page, evaluates it against the SEO rule set and
prints a report with the score, every issue found and an action plan.

A URL without a scheme is audited over https. Results are saved to the
local database unless --no-save is given.

Examples:
  # Audit a single page
  shopaudit audit example-shop.com

  # Audit several pages, four at a time
  shopaudit audit -b 4 shop-a.com shop-b.com/products/tee

  # Write a Markdown report to a file
  shopaudit audit -f markdown -o reports/shop.md example-shop.com

  # Print JSON without saving the result
  shopaudit audit -f json --no-save example-shop.com

Configuration file (.shopaudit) example:
  thresholds:
    slowLoadTime: 2s
  sites:
    preview.example-shop.com:
      cookie: "storefront_digest=abc123"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page fetch, body included")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every fetch")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent audits")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shopaudit in current or home directory)")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Report format: text, json, markdown or html")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the store")
	addStoreFlags(cmd)

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAudit(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	cfg.Format = string(format)
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if err := storeOptions(cmd, cfg); err != nil {
		return nil, err
	}

	// An explicit config path must exist; the default search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		if cfg.File, err = config.LoadConfigFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args
	return cfg, nil
}

// runAudit audits every target and writes one report per target to out,
// or to cfg.ReportFile when set. Failures are reported on errOut.
func runAudit(ctx context.Context, out, errOut io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting audit",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
		"store", cfg.Store,
	)

	var store database.Store
	if cfg.SaveToDB {
		var err error
		store, err = openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	dest, closeDest, err := reportDestination(out, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeDest()

	writer, err := report.NewWriter(report.Format(cfg.Format), dest)
	if err != nil {
		return err
	}

	f := fetcher.New(
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithSiteConfigs(cfg.File),
		fetcher.WithLogger(logger),
	)
	p := pipeline.DefaultPipeline(f,
		pipeline.WithLogger(logger),
		pipeline.WithThresholds(cfg.Thresholds()),
	)
	bp := pipeline.NewBatchProcessor(p,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	var (
		mu     sync.Mutex
		failed int
	)
	bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r pipeline.BatchResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		if r.Err != nil {
			failed++
			fmt.Fprintf(errOut, "[%d/%d] Audit error for %s: %v\n", index+1, len(cfg.Targets), r.URL, r.Err)
			return
		}

		if err := deliver(ctx, writer, store, r.Result, logger); err != nil {
			failed++
			fmt.Fprintf(errOut, "[%d/%d] Audit error for %s: %v\n", index+1, len(cfg.Targets), r.URL, err)
		}
	})

	logger.Info("audit finished",
		"targets", len(cfg.Targets),
		"failed", failed,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errAuditFailed, failed, len(cfg.Targets))
	}
	return nil
}

// deliver renders result and saves it when a store is open. A target whose
// report or record is lost counts as failed.
func deliver(ctx context.Context, writer report.Writer, store database.Store, result *model.AuditResult, logger *slog.Logger) error {
	var errs []error
	if _, err := writer.Write(result); err != nil {
		errs = append(errs, fmt.Errorf("write report: %w", err))
	}
	if store != nil {
		stored, err := store.Save(ctx, result)
		if err != nil {
			errs = append(errs, fmt.Errorf("save audit: %w", err))
		} else {
			logger.Info("audit saved", "url", result.URL, "id", stored.ID)
		}
	}
	return errors.Join(errs...)
}

// reportDestination returns the writer reports go to and a func closing it.
func reportDestination(out io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return out, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil //nolint:errcheck // report already flushed
}
