package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/logger"
)

func newTestConfig(t *testing.T, counter string) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Port:            0,
		RootDirectory:   filepath.Join(root, "static"),
		LogDirectory:    filepath.Join(root, "logs"),
		RasterDPI:       72,
		GhostscriptPath: filepath.Join(root, "no-such-gs"),
		JPEGQuality:     75,
		EncodeWorkers:   1,
		MaxUploadSize:   1 << 20,
		PageCounter:     counter,
		CounterDBPath:   filepath.Join(root, "static", "data", "counters.db"),
		DefaultCategory: "undefined_category",
	}
}

func TestNew(t *testing.T) {
	for _, counter := range []string{config.PageCounterListing, config.PageCounterSQLite} {
		t.Run(counter, func(t *testing.T) {
			cfg := newTestConfig(t, counter)
			l, err := logger.New(cfg.LogDirectory, io.Discard, io.Discard)
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			defer l.Close()

			a, err := New(cfg, l)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			defer a.Close()

			if _, err := os.Stat(cfg.BlobDir()); err != nil {
				t.Errorf("Expected blob dir to be created: %v", err)
			}
			_, dbErr := os.Stat(cfg.CounterDBPath)
			if counter == config.PageCounterSQLite && dbErr != nil {
				t.Errorf("Expected counter database: %v", dbErr)
			}
			if counter == config.PageCounterListing && dbErr == nil {
				t.Error("Listing counter should not create a database")
			}

			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gallery", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("Expected 200 from /gallery, got %d", rec.Code)
			}
		})
	}
}
