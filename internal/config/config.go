package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default geometry sources.
const (
	DefaultGeoStatesURL         = "https://raw.githubusercontent.com/giuliano-macedo/geodata-br-states/main/geojson/br_states.json"
	DefaultGeoMunicipalitiesURL = "https://raw.githubusercontent.com/tbrugz/geodata-br/master/geojson/geojs-{uf}-mun.json"
)

// StatePlaceholder is replaced by the two-digit state code in the municipality URL.
const StatePlaceholder = "{uf}"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset sources.
	DataDir       string
	ManifestPath  string
	Manifest      *Manifest
	SourceTimeout time.Duration

	// Geometry sources.
	GeoStatesURL         string
	GeoMunicipalitiesURL string
	GeoTimeout           time.Duration
	GeoCacheSize         int

	// Dashboard defaults.
	MinYear          int
	QuantileBins     int
	DefaultStateCode int

	// Optional snapshot export.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	geoTimeout, err := parseDuration("GEO_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geoCacheSize, err := parsePositiveInt("GEO_CACHE_SIZE", 32)
	if err != nil {
		return nil, err
	}
	minYear, err := parsePositiveInt("MIN_YEAR", 2014)
	if err != nil {
		return nil, err
	}
	bins, err := parsePositiveInt("QUANTILE_BINS", 5)
	if err != nil {
		return nil, err
	}
	stateCode, err := parsePositiveInt("DEFAULT_STATE_CODE", 51)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:       sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		ManifestPath:  os.Getenv("DATA_MANIFEST"),
		SourceTimeout: sourceTimeout,

		GeoStatesURL:         sharedcfg.EnvOrDefault("GEO_STATES_URL", DefaultGeoStatesURL),
		GeoMunicipalitiesURL: sharedcfg.EnvOrDefault("GEO_MUNICIPALITIES_URL", DefaultGeoMunicipalitiesURL),
		GeoTimeout:           geoTimeout,
		GeoCacheSize:         geoCacheSize,

		MinYear:          minYear,
		QuantileBins:     bins,
		DefaultStateCode: stateCode,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "dengue-snapshots"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if !strings.Contains(cfg.GeoMunicipalitiesURL, StatePlaceholder) {
		return nil, fmt.Errorf("GEO_MUNICIPALITIES_URL must contain %s", StatePlaceholder)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
	}

	cfg.Manifest = DefaultManifest()
	if cfg.ManifestPath != "" {
		m, err := LoadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("DATA_MANIFEST: %w", err)
		}
		cfg.Manifest = m
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return b, nil
}
