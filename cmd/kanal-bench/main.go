// Package main implements kanal-bench, a load driver for kanal
// channels. It runs a configurable number of producers and consumers
// against one channel and reports throughput, handoff rate, and peak
// buffer depth, optionally exposing live Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sabify/kanal"
	"github.com/sabify/kanal/metric"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "kanal-bench"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	if cfg.MetricsPort > 0 {
		startMetricsServer(ctx, registry, cfg.MetricsPort)
	}

	tx, rx, err := buildChannel(cfg, registry)
	if err != nil {
		return fmt.Errorf("build channel: %w", err)
	}

	slog.Info("starting benchmark",
		"channel", tx.Name(),
		"producers", cfg.Producers,
		"consumers", cfg.Consumers,
		"messages", cfg.Messages)

	start := time.Now()
	if err := drive(ctx, cfg, tx, rx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report(tx.Stats().Summary(), elapsed)
	return nil
}

// buildChannel constructs the channel from a config file when given,
// otherwise from flags.
func buildChannel(cfg *CLIConfig, registry *metric.MetricsRegistry) (*kanal.Sender[int], *kanal.Receiver[int], error) {
	if cfg.ConfigPath != "" {
		chanCfg, err := kanal.LoadConfig(cfg.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		return kanal.NewFromConfig[int](chanCfg, registry)
	}

	options := []kanal.Option[int]{
		kanal.WithName[int]("bench"),
		kanal.WithMetrics[int](registry),
	}
	if cfg.Capacity < 0 {
		return kanal.Unbounded[int](options...)
	}
	return kanal.Bounded[int](cfg.Capacity, options...)
}

// drive runs the producer and consumer goroutines to completion.
func drive(ctx context.Context, cfg *CLIConfig, tx *kanal.Sender[int], rx *kanal.Receiver[int]) error {
	perProducer := cfg.Messages / cfg.Producers

	var producers errgroup.Group
	for p := 0; p < cfg.Producers; p++ {
		ptx := tx.Clone()
		base := p * perProducer
		producers.Go(func() error {
			defer ptx.Close()
			for i := 0; i < perProducer; i++ {
				if err := ptx.SendContext(ctx, base+i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var consumers errgroup.Group
	for c := 0; c < cfg.Consumers; c++ {
		crx := rx.Clone()
		consumers.Go(func() error {
			defer crx.Close()
			for {
				if _, err := crx.RecvContext(ctx); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					// Closed and drained.
					return nil
				}
			}
		})
	}

	err := producers.Wait()
	tx.Close()
	if consErr := consumers.Wait(); err == nil {
		err = consErr
	}
	rx.Close()
	return err
}

func report(summary kanal.StatsSummary, elapsed time.Duration) {
	slog.Info("benchmark complete",
		"sends", summary.Sends,
		"recvs", summary.Recvs,
		"handoff_rate", fmt.Sprintf("%.3f", summary.HandoffRate),
		"peak_buffer", summary.MaxSize,
		"elapsed", elapsed,
		"msgs_per_sec", fmt.Sprintf("%.0f", float64(summary.Sends)/elapsed.Seconds()))
}

// startMetricsServer exposes the registry on /metrics until ctx ends.
func startMetricsServer(ctx context.Context, registry *metric.MetricsRegistry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		registry.PrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
