package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/stdr"
	"github.com/llmariner/iris-inference-server/internal/classifier"
	"github.com/llmariner/iris-inference-server/internal/config"
	"github.com/llmariner/iris-inference-server/internal/health"
	"github.com/llmariner/iris-inference-server/internal/monitoring"
	"github.com/llmariner/iris-inference-server/internal/rate"
	"github.com/llmariner/iris-inference-server/internal/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var path string
	var logLevel int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Parse(path)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}

			if err := run(cmd.Context(), &c, logLevel); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "Path to the config file")
	cmd.Flags().IntVar(&logLevel, "v", 0, "Log level")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func run(ctx context.Context, c *config.Config, lv int) error {
	stdr.SetVerbosity(lv)
	logger := stdr.New(log.Default())
	log := logger.WithName("boot")

	loader := classifier.NewLoader(c.ModelDir, logger)
	if err := loader.Load(); err != nil {
		// The service still starts; /model_status reports the reason.
		log.Error(err, "Failed to load the model artifact", "path", loader.Status().PathChecked)
	}

	m := monitoring.NewMetricsMonitor()
	defer m.UnregisterAllCollectors()
	m.SetModelLoaded(loader.Status().Loaded)

	ratelimiter := rate.NewLimiter(c.RateLimit, logger)

	srv := server.New(loader, m, ratelimiter, logger)

	errCh := make(chan error)

	go func() {
		errCh <- srv.Run(c.HTTPPort)
	}()

	healthHandler := health.NewProbeHandler()
	healthHandler.AddProbe(srv)
	go func() {
		log := logger.WithName("metrics")
		log.Info("Starting metrics server...", "port", c.MonitoringPort)
		monitorMux := http.NewServeMux()
		monitorMux.Handle("/metrics", promhttp.Handler())
		monitorMux.HandleFunc("/health", healthHandler.LivenessHandler)
		monitorMux.HandleFunc("/ready", healthHandler.ReadinessHandler)
		errCh <- http.ListenAndServe(fmt.Sprintf(":%d", c.MonitoringPort), monitorMux)
		log.Info("Stopped metrics server")
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("Got signal. Starting graceful shutdown", "signal", sig, "timeout", c.GracefulShutdownTimeout)
		sctx, cancel := context.WithTimeout(ctx, c.GracefulShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		loader.Release()
		return nil
	}
}
