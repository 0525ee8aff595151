package service

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/dto"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/model"
	"github.com/danielostrow/planVision/internal/service/export"
	"github.com/danielostrow/planVision/internal/service/pipeline"
	"github.com/danielostrow/planVision/internal/service/websocket"
)

// Manager runs the upload and export flows and publishes their results on
// the events feed.
type Manager struct {
	pipeline         *pipeline.Pipeline
	exporter         *export.Exporter
	websocketService *websocket.HubService
	convertedDir     string
	logger           *logger.Logger
}

func NewManager(pipeline *pipeline.Pipeline, exporter *export.Exporter, websocketService *websocket.HubService, convertedDir string, logger *logger.Logger) *Manager {
	return &Manager{
		pipeline:         pipeline,
		exporter:         exporter,
		websocketService: websocketService,
		convertedDir:     convertedDir,
		logger:           logger,
	}
}

// UploadDocument rasterizes doc into the page image directory.
func (m *Manager) UploadDocument(ctx context.Context, doc []byte) ([]model.PageImage, error) {
	pages, err := m.pipeline.RasterizeAndStore(ctx, doc, m.convertedDir)
	if err != nil {
		return nil, err
	}

	files := make([]string, len(pages))
	for i, page := range pages {
		files[i] = page.Filename
	}
	m.publish(dto.NewPagesStoredEvent(files))
	return pages, nil
}

// ListPages returns the stored page images ordered by id. Files not named
// like page images are skipped.
func (m *Manager) ListPages() ([]model.PageImage, error) {
	entries, err := os.ReadDir(m.convertedDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.PageImage{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIOFailure, "list "+m.convertedDir, err)
	}

	pages := make([]model.PageImage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := model.ParsePageImageName(entry.Name())
		if !ok {
			continue
		}
		page := model.PageImage{ID: id, Filename: entry.Name(), Path: filepath.Join(m.convertedDir, entry.Name())}
		if info, err := entry.Info(); err == nil {
			page.Size = info.Size()
		}
		pages = append(pages, page)
	}

	slices.SortFunc(pages, func(a, b model.PageImage) int {
		return a.ID - b.ID
	})
	return pages, nil
}

// Export stores one crop and its record.
func (m *Manager) Export(req export.ExportRequest) (model.AnnotationRecord, error) {
	record, err := m.exporter.Export(req)
	if err != nil {
		return record, err
	}
	m.publish(dto.NewRecordAppendedEvent(record))
	return record, nil
}

// ExportBatch stores several crops; records stored before a failure are
// still published.
func (m *Manager) ExportBatch(reqs []export.ExportRequest) ([]model.AnnotationRecord, error) {
	records, err := m.exporter.ExportBatch(reqs)
	for _, record := range records {
		m.publish(dto.NewRecordAppendedEvent(record))
	}
	return records, err
}

func (m *Manager) publish(event dto.Event) {
	if m.websocketService == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("Error encoding %s event: %v", event.Type, err)
		return
	}
	m.websocketService.Broadcast(data)
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

func (m *Manager) ConvertedDir() string {
	return m.convertedDir
}
