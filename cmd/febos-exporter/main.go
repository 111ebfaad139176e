package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"febos_exporter/internal/api"
	"febos_exporter/internal/auth"
	"febos_exporter/internal/collector"
	"febos_exporter/internal/config"
	"febos_exporter/internal/coordinator"
	"febos_exporter/internal/influxdb"
	"febos_exporter/internal/mqtt"
	"febos_exporter/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting Febos Exporter", "listen_addr", cfg.ListenAddr, "poll_interval", cfg.PollInterval)

	client, err := api.NewClient(api.Options{
		BaseURL: cfg.BaseURL,
		Credentials: auth.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Timeout:    cfg.RequestTimeout,
		SessionTTL: cfg.SessionTTL,
	}, logger)
	if err != nil {
		logger.Error("Failed to create API client", "error", err)
		os.Exit(1)
	}

	metrics := collector.NewMetricSet()
	opts := []coordinator.Option{
		coordinator.WithLogger(logger),
		coordinator.WithObserver(metrics),
		coordinator.WithRequestTimeout(cfg.RequestTimeout),
	}

	// Optional sinks
	publisher, err := mqtt.Connect(cfg.MQTT, logger)
	switch {
	case err == nil:
		opts = append(opts, coordinator.WithListener(publisher))
		defer publisher.Close()
	case !errors.Is(err, mqtt.ErrDisabled):
		logger.Error("MQTT unavailable, continuing without it", "error", err)
	}

	sink, err := influxdb.Connect(cfg.InfluxDB, logger)
	switch {
	case err == nil:
		opts = append(opts, coordinator.WithListener(sink))
		defer sink.Close()
	case !errors.Is(err, influxdb.ErrDisabled):
		logger.Error("InfluxDB unavailable, continuing without it", "error", err)
	}

	coord := coordinator.New(client, opts...)

	// Create and register Prometheus collector
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector.NewFebosCollector(coord, metrics, logger),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.NewRouter(coord, registry, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := coord.Run(ctx, cfg.PollInterval); err != nil {
			logger.Error("Refresh loop error", "error", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	<-done

	logger.Info("Exporter stopped")
}

// setupLogger creates a structured logger based on configuration.
func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler

	logLevel := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
