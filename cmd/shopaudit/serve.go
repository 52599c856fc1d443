package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/metrics"
	"github.com/nao1215/shopaudit/internal/pipeline"
	"github.com/nao1215/shopaudit/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit engine over HTTP",
		Long: `Serve starts an HTTP API in front of the audit engine.

Endpoints:
  POST /api/audit            audit {"url": "..."} and save the result
  GET  /api/audits/recent    list recent audits (?limit=N)
  GET  /api/audits/{id}      get one saved audit
  POST /api/export/{format}  render an audit as json, markdown or html
  GET  /health, /ping, /api/status, /metrics

HTML export requires the premium token as a bearer token. Without
--premium-token it is refused.

Examples:
  # Serve on :8080 with the local SQLite store
  shopaudit serve

  # Serve with redis storage and a premium token
  shopaudit serve --store redis --redis-url redis://localhost:6379/0 --premium-token s3cret

  # Print audit spans as JSON on stderr
  shopaudit serve --trace stdout`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultAddr,
		"Listen address")
	cmd.Flags().String("premium-token", "",
		"Bearer token unlocking premium exports (env SHOPAUDIT_PREMIUM_TOKEN)")
	cmd.Flags().Float64("rate-limit", config.DefaultRateLimit,
		"Audit requests per second allowed per client (0 disables)")
	cmd.Flags().Int("burst", config.DefaultBurst,
		"Audit request burst allowed per client")
	cmd.Flags().StringSlice("allowed-origin", nil,
		"Origin allowed for cross-origin requests (repeatable)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page fetch, body included")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shopaudit in current or home directory)")
	cmd.Flags().String("trace", "",
		`Span exporter: "stdout" writes spans to stderr (default: the global OpenTelemetry provider)`)
	addStoreFlags(cmd)

	return cmd
}

// newTracerProvider returns the provider audit spans are sent to and its
// shutdown func. With no exporter the global provider is used, so an
// embedding program can install its own.
func newTracerProvider(exporter string, out io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	switch exporter {
	case "":
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout span exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		return tp, tp.Shutdown, nil
	default:
		return nil, nil, fmt.Errorf("unknown trace exporter %q (want stdout)", exporter)
	}
}

// buildServerConfig creates a ServerConfig from cobra command flags.
func buildServerConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	cfg := config.NewServerConfig()

	var err error
	if cfg.Addr, err = cmd.Flags().GetString("addr"); err != nil {
		return nil, err
	}
	if cfg.PremiumToken, err = cmd.Flags().GetString("premium-token"); err != nil {
		return nil, err
	}
	if cfg.PremiumToken == "" {
		cfg.PremiumToken = os.Getenv("SHOPAUDIT_PREMIUM_TOKEN")
	}
	if cfg.RateLimit, err = cmd.Flags().GetFloat64("rate-limit"); err != nil {
		return nil, err
	}
	if cfg.Burst, err = cmd.Flags().GetInt("burst"); err != nil {
		return nil, err
	}
	if cfg.AllowedOrigins, err = cmd.Flags().GetStringSlice("allowed-origin"); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	srvCfg, err := buildServerConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg := config.NewConfig()
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return err
	}
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		if cfg.File, err = config.LoadConfigFile(path); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	if err := storeOptions(cmd, cfg); err != nil {
		return err
	}

	logger := newLogger(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	exporter, err := cmd.Flags().GetString("trace")
	if err != nil {
		return err
	}
	tp, shutdownTracing, err := newTracerProvider(exporter, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(metrics.WithRuntimeMetrics())
	f := fetcher.New(
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithSiteConfigs(cfg.File),
		fetcher.WithLogger(logger),
	)
	p := pipeline.DefaultPipeline(f,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(collector),
		pipeline.WithTracerProvider(tp),
		pipeline.WithThresholds(cfg.Thresholds()),
	)

	srv := server.New(p, store, srvCfg,
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithVersion(getVersion()),
	)

	logger.Info("starting server", "addr", srvCfg.Addr, "store", cfg.Store)
	return srv.ListenAndServe(ctx)
}
