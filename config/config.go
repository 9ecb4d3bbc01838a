package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DatabaseConfig selects and tunes the property store.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres"
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`

	// Path of the SQLite database file
	Path string `env:"DB_PATH" envDefault:"propsearch.db"`

	// DSN for the postgres driver
	DSN string `env:"DB_DSN"`

	// Queries slower than this are logged as warnings
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
}

type Config struct {
	Server struct {
		Port        string   `env:"PORT" envDefault:"5250"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
		LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	}

	Database DatabaseConfig

	Search struct {
		// Page size used when a request does not ask for one
		DefaultLimit int `env:"SEARCH_DEFAULT_LIMIT" envDefault:"20"`

		// Largest page a single request may ask for
		MaxLimit int `env:"SEARCH_MAX_LIMIT" envDefault:"100"`
	}

	// Optional JSON file overriding the built-in regions
	RegionsFile string `env:"REGIONS_FILE"`

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of properties to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Capacity of the in-memory import queue
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"64"`
	}
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Search.DefaultLimit <= 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		cfg.Search.MaxLimit = cfg.Search.DefaultLimit
	}
	return cfg, nil
}
