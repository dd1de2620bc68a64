package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/naveenspark/eversense/internal/config"
	"github.com/naveenspark/eversense/internal/poller"
	"github.com/naveenspark/eversense/internal/render"
	"github.com/naveenspark/eversense/pkg/client"
	"github.com/naveenspark/eversense/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eversense",
		Short: "Follow an Eversense CGM user and print their glucose readings",
		Long: `Logs in with a follower account, prints the last 24 hours of sensor
glucose readings and then prints the live glucose state every minute.

Every flag can also be set with an EVERSENSE_* environment variable,
e.g. EVERSENSE_USERNAME and EVERSENSE_PASSWORD.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "eversense "+version) //nolint:errcheck
		},
	})
	return cmd
}

func newLogger(cfg config.Config, w io.Writer) slog.Logger {
	logger := slog.Make(sloghuman.Sink(w))
	if cfg.Verbose {
		logger = logger.Leveled(slog.LevelDebug)
	}
	return logger.With(slog.F("run_id", uuid.NewString()))
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	logger := newLogger(cfg, stderr)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	clientMetrics := client.NewMetrics(reg)
	pollerMetrics := poller.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(ctx, logger, cfg.MetricsAddr, reg)
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx) //nolint:errcheck
		}()
	}

	c := client.New(domain.NewCredentials(cfg.Username, cfg.Password),
		client.WithTokenURL(cfg.TokenURL),
		client.WithAPIURL(cfg.APIURL),
		client.WithTimeout(cfg.Timeout),
		client.WithLocation(loc),
		client.WithLogger(logger.Named("client")),
		client.WithMetrics(clientMetrics),
	)
	p := poller.New(c.Session(), c, render.New(stdout, cfg.Output),
		poller.WithLogger(logger),
		poller.WithInterval(cfg.Interval),
		poller.WithBackfill(cfg.Backfill),
		poller.WithMetrics(pollerMetrics),
	)

	logger.Info(ctx, "starting",
		slog.F("version", version),
		slog.F("username", cfg.Username),
		slog.F("interval", cfg.Interval),
	)
	if err := p.Run(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "stopped")
	return nil
}

func serveMetrics(ctx context.Context, logger slog.Logger, addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "serving metrics", slog.F("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server", slog.Error(err))
		}
	}()
	return srv
}
