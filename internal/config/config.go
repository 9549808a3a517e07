package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	PipelineEnabled  bool

	BatchSize          int
	BatchFlushInterval time.Duration

	// Geocoding provider configuration.
	GeocoderScheme        string
	GeocoderDomain        string
	GeocoderResource      string
	GeocoderOutputFormat  domain.OutputFormat
	GeocoderFormatString  string
	GeocoderSensor        string
	GeocoderAPIKey        string
	GeocoderTimeout       time.Duration
	GeocoderCacheSize     int
	GeocoderDefaultRegion string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GEOCODER_TIMEOUT", "10s"))
	if err != nil || geocoderTimeout <= 0 {
		return nil, errors.New("invalid GEOCODER_TIMEOUT")
	}

	outputFormat, err := domain.ParseOutputFormat(sharedcfg.EnvOrDefault("GEOCODER_OUTPUT_FORMAT", "json"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODER_OUTPUT_FORMAT: %w", err)
	}

	formatString := sharedcfg.EnvOrDefault("GEOCODER_FORMAT_STRING", "%s")
	if err := domain.ValidateFormatString(formatString); err != nil {
		return nil, fmt.Errorf("invalid GEOCODER_FORMAT_STRING: %w", err)
	}

	region, err := domain.NormalizeRegion(os.Getenv("GEOCODER_DEFAULT_REGION"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODER_DEFAULT_REGION: %w", err)
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "geocode-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "geocode-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-geocoder"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		PipelineEnabled:    sharedcfg.EnvOrDefault("PIPELINE_ENABLED", "true") == "true",
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		GeocoderScheme:        sharedcfg.EnvOrDefault("GEOCODER_SCHEME", "http"),
		GeocoderDomain:        sharedcfg.EnvOrDefault("GEOCODER_DOMAIN", "maps.googleapis.com"),
		GeocoderResource:      sharedcfg.EnvOrDefault("GEOCODER_RESOURCE", "maps/api/geocode"),
		GeocoderOutputFormat:  outputFormat,
		GeocoderFormatString:  formatString,
		GeocoderSensor:        sharedcfg.EnvOrDefault("GEOCODER_SENSOR", "false"),
		GeocoderAPIKey:        os.Getenv("GEOCODER_API_KEY"),
		GeocoderTimeout:       geocoderTimeout,
		GeocoderCacheSize:     cacheSize,
		GeocoderDefaultRegion: region,
	}

	if cfg.PipelineEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.GeocoderScheme != "http" && cfg.GeocoderScheme != "https" {
		return nil, errors.New("GEOCODER_SCHEME must be http or https")
	}

	return cfg, nil
}

// parseCacheSize reads GEOCODER_CACHE_SIZE. Zero disables caching.
func parseCacheSize() (int, error) {
	s := os.Getenv("GEOCODER_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid GEOCODER_CACHE_SIZE")
	}
	return n, nil
}
