package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Counter strategies accepted by PAGE_COUNTER.
const (
	PageCounterListing = "listing"
	PageCounterSQLite  = "sqlite"
)

type Config struct {
	Port            int
	RootDirectory   string
	LogDirectory    string
	RasterDPI       int
	GhostscriptPath string
	MaxPageWidth    int
	JPEGQuality     int
	EncodeWorkers   int
	MaxUploadSize   int64 // bytes
	PageCounter     string
	CounterDBPath   string
	DefaultCategory string
}

// Load reads the configuration from the environment. Variables found in the
// optional .env file (ENV_FILE) fill in whatever the process environment leaves unset.
func Load() *Config {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	root := absPath(getEnv("ROOT_DIR", "static"))
	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		RootDirectory:   root,
		LogDirectory:    getEnv("LOG_DIR", "logs"),
		RasterDPI:       getEnvAsInt("RASTER_DPI", 200),
		GhostscriptPath: getEnv("GHOSTSCRIPT_PATH", "gs"),
		MaxPageWidth:    getEnvAsInt("MAX_PAGE_WIDTH", 0),
		JPEGQuality:     getEnvAsInt("JPEG_QUALITY", 75),
		EncodeWorkers:   getEnvAsInt("ENCODE_WORKERS", 4),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_MB", 64) << 20,
		PageCounter:     strings.ToLower(getEnv("PAGE_COUNTER", PageCounterListing)),
		CounterDBPath:   absPath(getEnv("COUNTER_DB_PATH", filepath.Join(root, "data", "counters.db"))),
		DefaultCategory: getEnv("DEFAULT_CATEGORY", "undefined_category"),
	}
	if cfg.PageCounter != PageCounterSQLite {
		cfg.PageCounter = PageCounterListing
	}
	return cfg
}

// ConvertedDir holds the rasterized pages.
func (c *Config) ConvertedDir() string {
	return filepath.Join(c.RootDirectory, "converted")
}

func (c *Config) DataDir() string {
	return filepath.Join(c.RootDirectory, "data")
}

// BlobDir holds the exported crops.
func (c *Config) BlobDir() string {
	return filepath.Join(c.DataDir(), "blobs")
}

// RecordLogPath is the JSON array of annotation records.
func (c *Config) RecordLogPath() string {
	return filepath.Join(c.DataDir(), "data.json")
}

// EnsureDirectories creates the on-disk layout if it is missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.RootDirectory, c.ConvertedDir(), c.DataDir(), c.BlobDir(), c.LogDirectory} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// absPath resolves path against the working directory so that every process
// reading the same environment derives the same directories.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
