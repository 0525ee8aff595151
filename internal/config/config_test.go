package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ========================================
// Load Tests
// ========================================

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"PORT", "ROOT_DIR", "PAGE_COUNTER", "MAX_UPLOAD_MB", "DEFAULT_CATEGORY", "COUNTER_DB_PATH"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	wd, _ := os.Getwd()

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.RootDirectory != filepath.Join(wd, "static") {
		t.Errorf("Expected root 'static' under %s, got %s", wd, cfg.RootDirectory)
	}
	if cfg.PageCounter != PageCounterListing {
		t.Errorf("Expected listing counter, got %s", cfg.PageCounter)
	}
	if cfg.MaxUploadSize != 64<<20 {
		t.Errorf("Expected 64MB upload bound, got %d", cfg.MaxUploadSize)
	}
	if cfg.DefaultCategory != "undefined_category" {
		t.Errorf("Expected default category placeholder, got %s", cfg.DefaultCategory)
	}
	if cfg.CounterDBPath != filepath.Join(wd, "static", "data", "counters.db") {
		t.Errorf("Unexpected counter db path %s", cfg.CounterDBPath)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PORT", "9090")
	t.Setenv("ROOT_DIR", "/srv/plans")
	t.Setenv("PAGE_COUNTER", "SQLite")
	t.Setenv("JPEG_QUALITY", "not-a-number")
	t.Setenv("COUNTER_DB_PATH", "")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.PageCounter != PageCounterSQLite {
		t.Errorf("Expected sqlite counter, got %s", cfg.PageCounter)
	}
	if cfg.JPEGQuality != 75 {
		t.Errorf("Invalid integer should fall back to default, got %d", cfg.JPEGQuality)
	}
	if cfg.ConvertedDir() != filepath.Join("/srv/plans", "converted") {
		t.Errorf("Unexpected converted dir %s", cfg.ConvertedDir())
	}
	if cfg.RecordLogPath() != filepath.Join("/srv/plans", "data", "data.json") {
		t.Errorf("Unexpected record log path %s", cfg.RecordLogPath())
	}
	if cfg.BlobDir() != filepath.Join("/srv/plans", "data", "blobs") {
		t.Errorf("Unexpected blob dir %s", cfg.BlobDir())
	}
}

func TestLoad_UnknownCounterFallsBackToListing(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PAGE_COUNTER", "redis")

	if got := Load().PageCounter; got != PageCounterListing {
		t.Errorf("Expected listing counter, got %s", got)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("RASTER_DPI=144\nDEFAULT_CATEGORY=unlabeled\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("RASTER_DPI", "")
	t.Setenv("DEFAULT_CATEGORY", "")
	os.Unsetenv("RASTER_DPI")
	os.Unsetenv("DEFAULT_CATEGORY")

	cfg := Load()

	if cfg.RasterDPI != 144 {
		t.Errorf("Expected DPI from env file, got %d", cfg.RasterDPI)
	}
	if cfg.DefaultCategory != "unlabeled" {
		t.Errorf("Expected category from env file, got %s", cfg.DefaultCategory)
	}
}

func TestLoad_RelativeRootIsResolved(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("ROOT_DIR", "plans")
	t.Setenv("COUNTER_DB_PATH", "counters.db")

	cfg := Load()

	if cfg.RootDirectory != filepath.Join(dir, "plans") {
		t.Errorf("Expected absolute root, got %s", cfg.RootDirectory)
	}
	if cfg.CounterDBPath != filepath.Join(dir, "counters.db") {
		t.Errorf("Expected absolute counter db path, got %s", cfg.CounterDBPath)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		RootDirectory: filepath.Join(root, "static"),
		LogDirectory:  filepath.Join(root, "logs"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.ConvertedDir(), cfg.BlobDir(), cfg.LogDirectory} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", dir)
		}
	}
}
