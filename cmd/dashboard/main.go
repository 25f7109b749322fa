package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/dengue-dashboard/internal/adapter/geojson"
	httpadapter "github.com/couchcryptid/dengue-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dengue-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/dengue-dashboard/internal/adapter/source"
	"github.com/couchcryptid/dengue-dashboard/internal/config"
	"github.com/couchcryptid/dengue-dashboard/internal/dashboard"
	"github.com/couchcryptid/dengue-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := source.NewFetcher(cfg.SourceTimeout, logger)

	client := geojson.NewClient(cfg.GeoStatesURL, cfg.GeoMunicipalitiesURL, cfg.GeoTimeout, logger)
	geometry, err := geojson.NewCachedSource(client, cfg.GeoCacheSize, metrics)
	if err != nil {
		logger.Error("failed to create geometry cache", "error", err)
		os.Exit(1)
	}

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var (
		publisher dashboard.SnapshotPublisher
		kafkaPub  *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger, metrics)
		publisher = kafkaPub
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	d := dashboard.New(dashboard.Settings{
		Locations:    cfg.Manifest.Locations(cfg.DataDir),
		Columns:      cfg.Manifest.Columns,
		MinYear:      cfg.MinYear,
		Bins:         cfg.QuantileBins,
		DefaultState: cfg.DefaultStateCode,
	}, fetcher, geometry, publisher, clockwork.NewRealClock(), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, d, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load. /readyz reports not ready until it succeeds; POST /api/reload retries.
	go func() {
		if err := d.Load(ctx); err != nil {
			logger.Error("initial load failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
