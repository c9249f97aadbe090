package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/adapter/httpapi"
	kafkaadapter "github.com/metrowatch/sentiment-etl/internal/adapter/kafka"
	"github.com/metrowatch/sentiment-etl/internal/aggregate"
	"github.com/metrowatch/sentiment-etl/internal/alert"
	"github.com/metrowatch/sentiment-etl/internal/collector"
	"github.com/metrowatch/sentiment-etl/internal/config"
	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/observability"
	"github.com/metrowatch/sentiment-etl/internal/pipeline"
	"github.com/metrowatch/sentiment-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	st, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	collectors := buildCollectors(cfg, clock, logger)

	classifier := domain.NewClassifier(cfg.Tables.Areas, cfg.Tables.Categories,
		cfg.Tables.Dialects, cfg.Tables.Relevance, cfg.Tables.Primary)
	corrector := domain.NewCorrector(cfg.Tables.Calibrations)
	normalizer := pipeline.NewNormalizer(classifier, corrector,
		pipeline.NewLexiconScorer(), clock, logger, metrics)

	alerts := alert.NewGenerator(cfg.Alerts, clock)

	// Alert publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.AlertPublisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertsTopic, logger)
		publisher = kafkaPub
		logger.Info("kafka alert publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertsTopic)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	p := pipeline.New(collectors, normalizer, st, alerts, publisher, logger, metrics, clock, pipeline.Options{
		CollectTimeout: cfg.CollectTimeout,
		CollectLimit:   cfg.CollectLimit,
		Interval:       cfg.CollectionInterval,
	})

	aggregator := aggregate.New(st, clock)
	srv := httpapi.NewServer(cfg.HTTPAddr, aggregator, st, p, corrector, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the collection pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
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
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "sqlite" {
		return store.NewSQLiteStore(cfg.SQLitePath)
	}
	return store.NewMemoryStore(), nil
}

// buildCollectors returns the CSV collector when CSV_PATH is set,
// otherwise the built-in mock feeds.
func buildCollectors(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) []pipeline.Collector {
	if cfg.CSVPath != "" {
		logger.Info("collecting from csv", "path", cfg.CSVPath)
		return []pipeline.Collector{collector.NewCSVCollector(cfg.CSVPath, "", logger)}
	}
	logger.Info("collecting from mock feeds")
	return []pipeline.Collector{
		collector.NewMockSocial(clock),
		collector.NewMockNews(clock),
		collector.NewMockOfficial(clock),
	}
}
