package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// Store driver names accepted by STORE_DRIVER.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// AlertThresholds configures the alert generator. Thresholds are upper
// bounds on mean adjusted sentiment: at or below High raises a high alert,
// at or below Medium a medium one.
type AlertThresholds struct {
	High           float64
	Medium         float64
	MinimumSources int
}

// Tables bundles the classification and calibration tables supplied to the
// domain constructors. Loaded once at process start and treated as
// immutable afterwards.
type Tables struct {
	Calibrations map[string]domain.Calibration
	Areas        domain.AreaTable
	Categories   []domain.KeywordSet
	Dialects     []domain.KeywordSet
	Relevance    []domain.KeywordSet
	Primary      string
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	CollectionInterval time.Duration
	CollectTimeout     time.Duration
	CollectLimit       int

	StoreDriver string
	SQLitePath  string

	CSVPath string

	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaAlertsTopic string

	Alerts AlertThresholds
	Tables Tables
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	collectionInterval, err := parseDuration("COLLECTION_INTERVAL", "4h")
	if err != nil {
		return nil, err
	}

	collectTimeout, err := parseDuration("COLLECT_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	collectLimit, err := parseInt("COLLECT_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	alerts, err := parseAlertThresholds()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CollectionInterval: collectionInterval,
		CollectTimeout:     collectTimeout,
		CollectLimit:       collectLimit,

		StoreDriver: envOrDefault("STORE_DRIVER", StoreMemory),
		SQLitePath:  envOrDefault("SQLITE_PATH", "data/metro_sentiment.db"),

		CSVPath: os.Getenv("CSV_PATH"),

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertsTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "security-alerts"),

		Alerts: alerts,
		Tables: DefaultTables(),
	}

	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StoreSQLite {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (want %q or %q)", cfg.StoreDriver, StoreMemory, StoreSQLite)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.CollectLimit <= 0 {
		return nil, errors.New("COLLECT_LIMIT must be positive")
	}

	return cfg, nil
}

func parseAlertThresholds() (AlertThresholds, error) {
	high, err := parseFloat("ALERT_HIGH_THRESHOLD", -0.5)
	if err != nil {
		return AlertThresholds{}, err
	}
	medium, err := parseFloat("ALERT_MEDIUM_THRESHOLD", -0.3)
	if err != nil {
		return AlertThresholds{}, err
	}
	minimum, err := parseInt("ALERT_MINIMUM_SOURCES", 3)
	if err != nil {
		return AlertThresholds{}, err
	}

	if minimum < 1 {
		return AlertThresholds{}, errors.New("ALERT_MINIMUM_SOURCES must be at least 1")
	}
	if high > medium {
		return AlertThresholds{}, errors.New("ALERT_HIGH_THRESHOLD must not exceed ALERT_MEDIUM_THRESHOLD")
	}

	return AlertThresholds{High: high, Medium: medium, MinimumSources: minimum}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return f, nil
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
