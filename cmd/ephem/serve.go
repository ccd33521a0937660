package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/ephemeris-bridge/config"
	"github.com/wippyai/ephemeris-bridge/metrics"
	"github.com/wippyai/ephemeris-bridge/transport/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operation catalog over HTTP",
		Long: `Serve the operation catalog over HTTP until interrupted.

Routes: GET /healthz, GET /v1/ops, GET|POST /v1/ops/{op} and, unless
metrics are disabled, the prometheus endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if opts.Addr != "" {
				cfg.HTTP.Addr = opts.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides http.addr")

	return cmd
}

// serve runs the HTTP server until ctx is done, then shuts down gracefully
// and closes the bridge once in-flight calls finish.
func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var (
		m   *metrics.Collectors
		reg *prometheus.Registry
	)
	if cfg.Metrics.On() {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New()
		if err := m.Register(reg); err != nil {
			return err
		}
	}

	b, err := openBridge(ctx, cfg, logger, m)
	if err != nil {
		return err
	}

	opts := httpapi.Options{Logger: logger, Metrics: m, MetricsPath: cfg.Metrics.Path}
	if reg != nil {
		opts.Gatherer = reg
	}
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpapi.NewServer(b, opts).Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("HTTP server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("Error during shutdown", zap.Error(serr))
	}
	if cerr := b.Close(shutdownCtx); cerr != nil {
		logger.Error("Error closing bridge", zap.Error(cerr))
		err = stderrors.Join(err, cerr)
	}

	logger.Info("Server stopped gracefully")
	return err
}
