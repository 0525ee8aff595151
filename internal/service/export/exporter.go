// Package export stores annotation crops and records them in the record log.
package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/model"
	"github.com/danielostrow/planVision/internal/service/recordid"
	"github.com/danielostrow/planVision/internal/service/store"
)

// maxNameAttempts bounds the retries after a crop name collides with an
// existing blob.
const maxNameAttempts = 3

// ExportRequest is one crop to persist.
type ExportRequest struct {
	Payload           []byte
	DateTime          string
	Category          string
	OriginalImagePath string
}

// Exporter writes crops under blobDir and appends their records to the store.
type Exporter struct {
	blobDir   string
	allocator *recordid.Allocator
	store     *store.AnnotationStore
	logger    *logger.Logger
}

func NewExporter(blobDir string, allocator *recordid.Allocator, store *store.AnnotationStore, logger *logger.Logger) *Exporter {
	return &Exporter{
		blobDir:   blobDir,
		allocator: allocator,
		store:     store,
		logger:    logger,
	}
}

// Validate reports the first problem with req without touching disk.
func Validate(req ExportRequest) error {
	if len(req.Payload) == 0 {
		return apperr.Wrap(apperr.ErrMissingPayload, "crop payload is empty", nil)
	}
	_, err := recordid.ParseDateTime(req.DateTime)
	return err
}

// Export writes the crop and appends its record. A validation error means
// nothing was written; a store failure may leave the crop on disk without a
// record.
func (e *Exporter) Export(req ExportRequest) (model.AnnotationRecord, error) {
	if err := Validate(req); err != nil {
		return model.AnnotationRecord{}, err
	}
	return e.export(req)
}

// ExportBatch validates every request before exporting any of them, then
// exports in order. On a failure part way, the records stored so far are
// returned with the error.
func (e *Exporter) ExportBatch(reqs []ExportRequest) ([]model.AnnotationRecord, error) {
	if len(reqs) == 0 {
		return nil, apperr.Wrap(apperr.ErrMissingPayload, "empty batch", nil)
	}
	for _, req := range reqs {
		if err := Validate(req); err != nil {
			return nil, err
		}
	}

	records := make([]model.AnnotationRecord, 0, len(reqs))
	for _, req := range reqs {
		record, err := e.export(req)
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (e *Exporter) export(req ExportRequest) (model.AnnotationRecord, error) {
	path, err := e.writeCrop(req)
	if err != nil {
		return model.AnnotationRecord{}, err
	}

	fromImage := req.OriginalImagePath
	if fromImage == "" {
		fromImage = model.UnknownSource
	}
	record := model.AnnotationRecord{
		Category:  e.allocator.NormalizeCategory(req.Category),
		DateTime:  req.DateTime,
		FilePath:  path,
		FromImage: fromImage,
	}
	if err := e.store.Append(record); err != nil {
		e.logger.Error("Crop %s stored but its record was not: %v", path, err)
		return model.AnnotationRecord{}, err
	}
	return record, nil
}

// writeCrop creates the blob exclusively so a name collision picks a new
// suffix instead of overwriting an earlier export.
func (e *Exporter) writeCrop(req ExportRequest) (string, error) {
	if err := os.MkdirAll(e.blobDir, 0755); err != nil {
		return "", apperr.Wrap(apperr.ErrIOFailure, "create "+e.blobDir, err)
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name, err := e.allocator.AllocateFilename(req.Category, req.DateTime)
		if err != nil {
			return "", err
		}
		path := filepath.Join(e.blobDir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			e.logger.Warning("Crop name %s already taken, drawing a new suffix", name)
			continue
		}
		if err != nil {
			return "", apperr.Wrap(apperr.ErrIOFailure, "create "+name, err)
		}

		_, werr := f.Write(req.Payload)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			os.Remove(path)
			return "", apperr.Wrap(apperr.ErrIOFailure, "write "+name, werr)
		}
		return path, nil
	}
	return "", apperr.Wrap(apperr.ErrIOFailure, "no free crop name", nil)
}
