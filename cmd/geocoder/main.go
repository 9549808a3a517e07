package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-geocoder/internal/adapter/google"
	httpadapter "github.com/couchcryptid/storm-geocoder/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-geocoder/internal/adapter/kafka"
	"github.com/couchcryptid/storm-geocoder/internal/config"
	"github.com/couchcryptid/storm-geocoder/internal/domain"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
	"github.com/couchcryptid/storm-geocoder/internal/pipeline"
)

// alwaysReady is the readiness checker used when the Kafka pipeline is off.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client, err := google.NewClient(
		google.WithScheme(cfg.GeocoderScheme),
		google.WithDomain(cfg.GeocoderDomain),
		google.WithResource(cfg.GeocoderResource),
		google.WithOutputFormat(cfg.GeocoderOutputFormat),
		google.WithFormatString(cfg.GeocoderFormatString),
		google.WithSensor(cfg.GeocoderSensor),
		google.WithAPIKey(cfg.GeocoderAPIKey),
		google.WithHTTPClient(&http.Client{Timeout: cfg.GeocoderTimeout}),
		google.WithLogger(logger),
		google.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error("failed to create geocoder", "error", err)
		os.Exit(1)
	}

	var geocoder domain.Geocoder = client
	if cfg.GeocoderCacheSize > 0 {
		geocoder = google.NewCachedGeocoder(client, cfg.GeocoderCacheSize, metrics)
	}
	logger.Info("geocoder configured",
		"endpoint", client.Endpoint(),
		"format", cfg.GeocoderOutputFormat.String(),
		"cache_size", cfg.GeocoderCacheSize,
		"timeout", cfg.GeocoderTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  httpadapter.ReadinessChecker = alwaysReady{}
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.PipelineEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(geocoder, cfg.GeocoderDefaultRegion, logger, metrics)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		ready = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, geocoder, cfg.GeocoderDefaultRegion, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
