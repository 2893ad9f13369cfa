package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/application/usecases/commands"
	"parking/internal/pkg/logger"
	"parking/internal/pkg/telemetry"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	HTTPPort    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSslMode   string
	StoreDriver string

	LogLevel  string
	LogFormat string

	TraceSampleRatio float64

	KafkaHost                string
	KafkaSessionChangedTopic string

	TxTimeout     time.Duration
	TxMaxRetries  int
	TxBaseBackoff time.Duration
	TxMaxBackoff  time.Duration
	TxHistorySize int
	HistoryMaxAge time.Duration

	BulkBatchSize int
}

// LoadConfig reads the configuration from the process environment. Unset or
// unparsable numeric values keep their defaults; the returned error lists
// every unparsable value.
func LoadConfig() (Config, error) {
	var problems []error
	duration := func(key string, fallback time.Duration, unit time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			problems = append(problems, fmt.Errorf("%s=%q is not a non-negative integer", key, raw))
			return fallback
		}
		return time.Duration(n) * unit
	}
	integer := func(key string, fallback int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			problems = append(problems, fmt.Errorf("%s=%q is not a non-negative integer", key, raw))
			return fallback
		}
		return n
	}

	ratio := func(key string, fallback float64) float64 {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 || f > 1 {
			problems = append(problems, fmt.Errorf("%s=%q is not a ratio in (0, 1]", key, raw))
			return fallback
		}
		return f
	}

	cfg := Config{
		HTTPPort:    envOr("HTTP_PORT", "8080"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      envOr("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSslMode:   envOr("DB_SSLMODE", "disable"),
		StoreDriver: envOr("STORE_DRIVER", StoreDriverPostgres),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),

		TraceSampleRatio: ratio("TRACE_SAMPLE_RATIO", 1.0),

		KafkaHost:                os.Getenv("KAFKA_HOST"),
		KafkaSessionChangedTopic: envOr("KAFKA_SESSION_CHANGED_TOPIC", "parking.session_changed"),

		TxTimeout:     duration("TX_TIMEOUT_MS", txcoord.DefaultTimeout, time.Millisecond),
		TxMaxRetries:  integer("TX_MAX_RETRIES", txcoord.DefaultMaxRetries),
		TxBaseBackoff: duration("TX_BASE_BACKOFF_MS", txcoord.DefaultBaseBackoff, time.Millisecond),
		TxMaxBackoff:  duration("TX_MAX_BACKOFF_MS", txcoord.DefaultMaxBackoff, time.Millisecond),
		TxHistorySize: integer("TX_HISTORY_SIZE", txcoord.DefaultHistorySize),
		HistoryMaxAge: duration("TX_HISTORY_MAX_AGE", time.Hour, time.Second),

		BulkBatchSize: integer("BULK_BATCH_SIZE", commands.DefaultBulkBatchSize),
	}

	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		problems = append(problems, fmt.Errorf("STORE_DRIVER=%q must be %q or %q",
			cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory))
	}

	return cfg, errors.Join(problems...)
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		Service: "parking",
	}
}

func (c Config) TelemetryConfig(logger *slog.Logger) telemetry.Config {
	return telemetry.Config{
		ServiceName: "parking",
		SampleRatio: c.TraceSampleRatio,
		Logger:      logger,
	}
}

func (c Config) TxOptions() txcoord.Options {
	return txcoord.Options{
		Priority:    txcoord.PriorityNormal,
		Timeout:     c.TxTimeout,
		MaxRetries:  c.TxMaxRetries,
		BaseBackoff: c.TxBaseBackoff,
		MaxBackoff:  c.TxMaxBackoff,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
