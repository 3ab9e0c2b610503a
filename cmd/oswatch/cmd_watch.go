package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pzaremba/oswatch/telemetry"
)

var watchMetricsAddr string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Collect continuously at the configured interval",
	Long: `Watch runs collection passes in a loop, sleeping the configured
interval between passes. With jitter enabled the interval is dithered
so a fleet of collectors does not hit the control plane in lockstep.

Prometheus metrics are served on /metrics; SIGINT/SIGTERM stop the
loop after the current pass.`,
	Example: `  oswatch watch                      # Watch with ./oswatch.yaml
  oswatch watch --metrics :9090      # Custom metrics address`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics", ":2112", "Metrics HTTP server address")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	runner, err := newCollectionRun(ctx, false)
	if err != nil {
		return err
	}
	defer runner.close(context.Background())

	logger := runner.logger

	var g run.Group

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	// Collection loop
	g.Add(func() error {
		for {
			if _, err := runner.runOnce(ctx); err != nil {
				logger.Error().Err(err).Msg("collection pass had failures")
			}

			interval := runner.cfg.Collector.Interval.Std()
			if runner.cfg.Collector.Jitter {
				interval = dither(interval)
			}
			logger.Info().Dur("sleep", interval).Msg("collection pass done")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}, func(error) {
		cancel()
	})

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: watchMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Add(func() error {
		logger.Info().Str("addr", watchMetricsAddr).Msg("serving metrics")
		return server.ListenAndServe()
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	})

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		fmt.Printf("Received %s, shutting down\n", sigErr.Signal)
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
