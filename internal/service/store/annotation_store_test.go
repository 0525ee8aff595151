package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/model"
)

// ========================================
// Test Setup Helpers
// ========================================

func setupTestStore(t *testing.T) (*AnnotationStore, *logger.Logger) {
	t.Helper()

	l, err := logger.New(t.TempDir(), io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	dataDir := t.TempDir()
	return NewAnnotationStore(filepath.Join(dataDir, "data.json"), l), l
}

func testRecord(i int) model.AnnotationRecord {
	return model.AnnotationRecord{
		Category:  "sign",
		DateTime:  "2024-05-01T10:00:00",
		FilePath:  fmt.Sprintf("static/data/blobs/sign_20240501100000_%06x.png", i),
		FromImage: "/static/converted/convertedFile_0.jpg",
	}
}

func readLog(t *testing.T, path string) []model.AnnotationRecord {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read record log: %v", err)
	}
	var records []model.AnnotationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Record log is not a JSON array of records: %v\n%s", err, data)
	}
	return records
}

// ========================================
// Append Tests
// ========================================

func TestAppend_MissingLog(t *testing.T) {
	s, _ := setupTestStore(t)

	if err := s.Append(testRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	want := []model.AnnotationRecord{testRecord(1)}
	if diff := cmp.Diff(want, readLog(t, s.Path())); diff != "" {
		t.Errorf("Record log mismatch (-want +got):\n%s", diff)
	}
}

func TestAppend_EmptyLog(t *testing.T) {
	s, _ := setupTestStore(t)
	if err := os.WriteFile(s.Path(), nil, 0644); err != nil {
		t.Fatalf("Failed to create empty log: %v", err)
	}

	if err := s.Append(testRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	want := []model.AnnotationRecord{testRecord(1)}
	if diff := cmp.Diff(want, readLog(t, s.Path())); diff != "" {
		t.Errorf("Record log mismatch (-want +got):\n%s", diff)
	}
}

func TestAppend_CorruptLogIsDiscarded(t *testing.T) {
	inputs := map[string]string{
		"truncated array": `[{"category": "sign", "dateTime": "2024`,
		"object":          `{"category": "sign"}`,
		"garbage":         "not json at all",
		"null":            "null",
	}

	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			s, l := setupTestStore(t)
			if err := os.WriteFile(s.Path(), []byte(content), 0644); err != nil {
				t.Fatalf("Failed to write corrupt log: %v", err)
			}

			if err := s.Append(testRecord(2)); err != nil {
				t.Fatalf("Append should recover from corrupt log, got %v", err)
			}

			want := []model.AnnotationRecord{testRecord(2)}
			if diff := cmp.Diff(want, readLog(t, s.Path())); diff != "" {
				t.Errorf("Record log mismatch (-want +got):\n%s", diff)
			}

			warnings, err := os.ReadFile(l.Path(logger.WarningFile))
			if err != nil {
				t.Fatalf("Failed to read warning log: %v", err)
			}
			if !strings.Contains(string(warnings), apperr.ErrCorruptState.Error()) {
				t.Errorf("Expected corrupt-state warning, got %q", warnings)
			}
		})
	}
}

func TestAppend_PreservesExistingRecords(t *testing.T) {
	s, _ := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Append(testRecord(i)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	want := []model.AnnotationRecord{testRecord(0), testRecord(1), testRecord(2)}
	if diff := cmp.Diff(want, readLog(t, s.Path())); diff != "" {
		t.Errorf("Record log mismatch (-want +got):\n%s", diff)
	}
}

func TestAppend_KeepsUnknownFieldsOfPriorRecords(t *testing.T) {
	s, _ := setupTestStore(t)
	prior := `[{"category": "legacy", "dateTime": "2023-01-01T00:00:00", "filePath": "a.png", "fromImage": "unknown", "note": "kept"}]`
	if err := os.WriteFile(s.Path(), []byte(prior), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	if err := s.Append(testRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, _ := os.ReadFile(s.Path())
	var raw []map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Invalid log: %v", err)
	}
	if len(raw) != 2 || raw[0]["note"] != "kept" {
		t.Errorf("Expected prior record to survive unchanged, got %v", raw)
	}
}

func TestAppend_ShrinkingRewriteLeavesNoTrailingBytes(t *testing.T) {
	s, _ := setupTestStore(t)
	// A valid array padded with whitespace is longer than its rewrite.
	padded := "[]" + strings.Repeat(" ", 4096)
	if err := os.WriteFile(s.Path(), []byte(padded), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	if err := s.Append(testRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, _ := os.ReadFile(s.Path())
	if strings.HasSuffix(string(data), " ") {
		t.Error("Expected rewrite to drop the previous trailing bytes")
	}
	if got := readLog(t, s.Path()); len(got) != 1 {
		t.Errorf("Expected 1 record, got %d", len(got))
	}
}

func TestAppend_IndentedOutputAndNoTempFiles(t *testing.T) {
	s, _ := setupTestStore(t)

	if err := s.Append(testRecord(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, _ := os.ReadFile(s.Path())
	if !strings.Contains(string(data), "\n    {\n        \"category\": \"sign\"") {
		t.Errorf("Expected four-space indented array, got:\n%s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("Failed to list data dir: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only data.json, got %v", names)
	}
}

// ========================================
// Failure Tests
// ========================================

func TestAppend_MissingDirectoryIsIOFailure(t *testing.T) {
	l, err := logger.New(t.TempDir(), io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Close()

	dataDir := filepath.Join(t.TempDir(), "data")
	s := NewAnnotationStore(filepath.Join(dataDir, "data.json"), l)

	err = s.Append(testRecord(1))
	if !errors.Is(err, apperr.ErrIOFailure) {
		t.Fatalf("Expected ErrIOFailure, got %v", err)
	}

	// The lock must have been released: once the directory exists the next append succeeds.
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	if err := s.Append(testRecord(2)); err != nil {
		t.Fatalf("Append after failure failed: %v", err)
	}
	if got := readLog(t, s.Path()); len(got) != 1 {
		t.Errorf("Expected 1 record, got %d", len(got))
	}
}

func TestAppend_UnreadableLogIsIOFailure(t *testing.T) {
	s, _ := setupTestStore(t)
	// A directory at the log path stats fine but cannot be read as a file.
	if err := os.Mkdir(s.Path(), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Path(), "x"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to populate directory: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Append(testRecord(i)); !errors.Is(err, apperr.ErrIOFailure) {
			t.Fatalf("Attempt %d: expected ErrIOFailure, got %v", i, err)
		}
	}
}

// ========================================
// Concurrency Tests
// ========================================

func TestAppend_ConcurrentAppendsAreAllKept(t *testing.T) {
	s, _ := setupTestStore(t)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Append(testRecord(i)); err != nil {
				t.Errorf("Append %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	want := make([]model.AnnotationRecord, n)
	for i := range want {
		want[i] = testRecord(i)
	}
	sortByPath := cmpopts.SortSlices(func(a, b model.AnnotationRecord) bool { return a.FilePath < b.FilePath })
	if diff := cmp.Diff(want, readLog(t, s.Path()), sortByPath); diff != "" {
		t.Errorf("Record log mismatch (-want +got):\n%s", diff)
	}
}

func TestAppend_ConcurrentReadersNeverSeePartialLog(t *testing.T) {
	s, _ := setupTestStore(t)
	if err := s.Append(testRecord(0)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	done := make(chan struct{})
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			data, err := os.ReadFile(s.Path())
			if err != nil {
				t.Errorf("Reader failed: %v", err)
				return
			}
			var records []model.AnnotationRecord
			if err := json.Unmarshal(data, &records); err != nil {
				t.Errorf("Reader saw a partial log: %v", err)
				return
			}
		}
	}()

	for i := 1; i < 40; i++ {
		if err := s.Append(testRecord(i)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	close(done)
	readers.Wait()
}
