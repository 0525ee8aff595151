// Package store keeps the annotation record log: one JSON array of records
// per deployment, only ever appended to.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/model"
)

const indent = "    "

// AnnotationStore appends records to the log at path. Every Append runs its
// whole read-modify-write while holding mu, so concurrent appends never
// interleave and none is lost.
//
// A log that does not parse as a JSON array is discarded and replaced by a
// fresh array holding only the new record; the loss is logged, not returned.
type AnnotationStore struct {
	path   string
	mu     sync.Mutex
	logger *logger.Logger
}

// NewAnnotationStore creates a store for the log file at path.
func NewAnnotationStore(path string, logger *logger.Logger) *AnnotationStore {
	return &AnnotationStore{path: path, logger: logger}
}

// Path returns the log file location.
func (s *AnnotationStore) Path() string {
	return s.path
}

// Append adds record to the end of the log. Failures are reported as
// apperr.ErrIOFailure or apperr.ErrUnexpected; the log keeps its previous
// content whenever Append fails.
func (s *AnnotationStore) Append(record model.AnnotationRecord) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Wrap(apperr.ErrUnexpected, fmt.Sprintf("append to %s: %v", s.path, r), nil)
		}
	}()

	entry, err := json.Marshal(record)
	if err != nil {
		return apperr.Wrap(apperr.ErrUnexpected, "encode record", err)
	}

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, entry)

	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return apperr.Wrap(apperr.ErrUnexpected, "encode record log", err)
	}
	if err := s.replace(data); err != nil {
		return err
	}

	s.logger.Info("Appended record %s (category %s) to %s, %d records", record.FilePath, record.Category, s.path, len(records))
	return nil
}

// load reads the current records. Missing or empty logs hold no records.
func (s *AnnotationStore) load() ([]json.RawMessage, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "stat record log", err)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "read record log", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warning("%v: %s (%d bytes) discarded, starting a new log: %v",
			apperr.ErrCorruptState, s.path, len(data), err)
		return nil, nil
	}
	// A JSON null decodes without error but is not an array either.
	if records == nil {
		s.logger.Warning("%v: %s (%d bytes) holds no array, starting a new log",
			apperr.ErrCorruptState, s.path, len(data))
		return nil, nil
	}
	return records, nil
}

// replace swaps the log for data through a temp file in the same directory,
// so a reader sees either the old array or the new one.
func (s *AnnotationStore) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperr.Wrap(apperr.ErrIOFailure, "create temp record log", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.Wrap(apperr.ErrIOFailure, "write record log", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.Wrap(apperr.ErrIOFailure, "sync record log", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.ErrIOFailure, "close record log", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.ErrIOFailure, "chmod record log", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(apperr.ErrIOFailure, "replace record log", err)
	}
	return nil
}
