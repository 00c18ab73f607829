package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
)

// Config holds all prepare-run settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	CSVDelimiter    rune
	MissingValues   []string
	CategoryColumns []string
	SchemaFile      string

	HourZeroPolicy domain.ZeroPolicy
	Features       domain.FeatureColumns

	OutputPath    string
	KafkaBrokers  []string
	KafkaTopic    string
	PostgresDSN   string
	PostgresTable string

	BatchSize       int
	SinkMaxAttempts int
	ShutdownTimeout time.Duration
	MetricsFile     string
}

// Load reads configuration from the environment, applying defaults where unset.
// A .env file in the working directory is read first if present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	delimiter, err := parseDelimiter(sharedcfg.EnvOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	policy, err := domain.ParseZeroPolicy(sharedcfg.EnvOrDefault("HOUR_ZERO_POLICY", domain.StripAllZeros.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid HOUR_ZERO_POLICY: %w", err)
	}

	batchSize, err := parseIntRange("BATCH_SIZE", 500, 1, 10000)
	if err != nil {
		return nil, err
	}

	attempts, err := parseIntRange("SINK_MAX_ATTEMPTS", 3, 1, 20)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	missing := dataset.DefaultMissingValues
	if v, ok := os.LookupEnv("MISSING_VALUES"); ok {
		missing = splitList(v, true)
	}

	defaults := domain.DefaultFeatureColumns()
	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		CSVDelimiter:    delimiter,
		MissingValues:   missing,
		CategoryColumns: splitList(os.Getenv("CATEGORY_COLUMNS"), false),
		SchemaFile:      os.Getenv("SCHEMA_FILE"),
		HourZeroPolicy:  policy,
		Features: domain.FeatureColumns{
			PickupDatetime: sharedcfg.EnvOrDefault("PICKUP_DATETIME_COL", defaults.PickupDatetime),
			PickupLat:      sharedcfg.EnvOrDefault("PICKUP_LAT_COL", defaults.PickupLat),
			PickupLon:      sharedcfg.EnvOrDefault("PICKUP_LON_COL", defaults.PickupLon),
			DropoffLat:     sharedcfg.EnvOrDefault("DROPOFF_LAT_COL", defaults.DropoffLat),
			DropoffLon:     sharedcfg.EnvOrDefault("DROPOFF_LON_COL", defaults.DropoffLon),
		},
		OutputPath:      os.Getenv("OUTPUT_PATH"),
		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "prepared-taxi-trips"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		PostgresTable:   sharedcfg.EnvOrDefault("POSTGRES_TABLE", "prepared_trips"),
		BatchSize:       batchSize,
		SinkMaxAttempts: attempts,
		ShutdownTimeout: shutdownTimeout,
		MetricsFile:     os.Getenv("METRICS_FILE"),
	}

	if cfg.PostgresDSN != "" && !validIdentifier(cfg.PostgresTable) {
		return nil, fmt.Errorf("invalid POSTGRES_TABLE %q", cfg.PostgresTable)
	}

	return cfg, nil
}

// splitList splits a comma-separated value. keepEmpty preserves empty items,
// which MISSING_VALUES needs to list the empty string.
func splitList(s string, keepEmpty bool) []string {
	if s == "" {
		if keepEmpty {
			return []string{""}
		}
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" && !keepEmpty {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseIntRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid CSV_DELIMITER %q: must be a single character", s)
	}
	return r, nil
}

func validIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
