package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/config"
	docsgatehttp "github.com/sagarc03/docsgate/http"
	"github.com/sagarc03/docsgate/metrics"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the docsgate HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8787, "HTTP server port")
	serveCmd.Flags().String("scheme", "https", "scheme of redirect URLs (https, http)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	handlerConfig := docsgatehttp.HandlerConfig{
		CORS: cfg.CORS,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		m := metrics.New(reg)
		store = m.InstrumentStore(store, cfg.Store.Backend)

		handlerConfig.Metrics = m
		handlerConfig.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		handlerConfig.MetricsPath = cfg.Metrics.Path
	}

	router := docsgate.NewRouter(store, docsgate.RouterConfig{Scheme: cfg.Server.Scheme})
	handler := docsgatehttp.NewHandler(&handlerConfig, router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	readTimeout, writeTimeout, idleTimeout := cfg.Server.Timeouts()

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"backend", cfg.Store.Backend,
		"scheme", cfg.Server.Scheme,
		"metrics", cfg.Metrics.Enabled,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
