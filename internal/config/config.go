package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	ImportWorkerCount   int
	ImportQueueSize     int
	ReplayWorkerCount   int
	ReplayQueueSize     int
	BuildBoardsOnImport bool
	VerifyReplay        bool
	ExportDir           string
	ParquetParallel     int
	ImportDir           string
	ImportGlob          string
	MaxImportBytes      int
	RequestTimeout      time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:pgnarchive.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		ImportWorkerCount:   envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:     envIntOr("IMPORT_QUEUE_SIZE", 32),
		ReplayWorkerCount:   envIntOr("REPLAY_WORKER_COUNT", 4),
		ReplayQueueSize:     envIntOr("REPLAY_QUEUE_SIZE", 256),
		BuildBoardsOnImport: envBoolOr("BUILD_BOARDS_ON_IMPORT", false),
		VerifyReplay:        envBoolOr("VERIFY_REPLAY", false),
		ExportDir:           envOr("EXPORT_DIR", "exports"),
		ParquetParallel:     envIntOr("PARQUET_PARALLEL", 4),
		ImportDir:           envOr("IMPORT_DIR", ""),
		ImportGlob:          envOr("IMPORT_GLOB", "*.pgn"),
		MaxImportBytes:      envIntOr("MAX_IMPORT_BYTES", 64<<20),
		RequestTimeout:      envDurationOr("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// Validate reports every invalid setting in a single error.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	positive := []struct {
		name  string
		value int
	}{
		{"IMPORT_WORKER_COUNT", c.ImportWorkerCount},
		{"IMPORT_QUEUE_SIZE", c.ImportQueueSize},
		{"REPLAY_WORKER_COUNT", c.ReplayWorkerCount},
		{"REPLAY_QUEUE_SIZE", c.ReplayQueueSize},
		{"PARQUET_PARALLEL", c.ParquetParallel},
		{"MAX_IMPORT_BYTES", c.MaxImportBytes},
	}
	for _, p := range positive {
		if p.value < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", p.name, p.value))
		}
	}
	if strings.TrimSpace(c.ExportDir) == "" {
		errs = append(errs, errors.New("EXPORT_DIR cannot be empty"))
	}
	if c.ImportDir != "" {
		if st, err := os.Stat(c.ImportDir); err != nil || !st.IsDir() {
			errs = append(errs, fmt.Errorf("IMPORT_DIR %q is not a directory", c.ImportDir))
		}
	}
	if _, err := filepath.Match(c.ImportGlob, ""); err != nil {
		errs = append(errs, fmt.Errorf("IMPORT_GLOB %q: %w", c.ImportGlob, err))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT cannot be negative, got %v", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
