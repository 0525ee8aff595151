package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/danielostrow/planVision/internal/apperr"
	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/dto"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/service"
	"github.com/danielostrow/planVision/internal/service/export"
)

const storedMessage = "File and data stored successfully"

// StoreDataHandler stores annotation crops. It accepts either a multipart
// form (file, dateTime, category, originalImagePath) or a JSON array of
// dto.ExportItem.
func StoreDataHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			storeBatch(w, r, manager, logger)
			return
		}
		storeForm(w, r, manager, logger)
	}
}

func storeForm(w http.ResponseWriter, r *http.Request, manager *service.Manager, logger *logger.Logger) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			writeJSON(w, logger, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File too large"})
			return
		}
		writeError(w, logger, "Store crop", apperr.Wrap(apperr.ErrMissingPayload, "no file part", nil))
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, logger, "Store crop", apperr.Wrap(apperr.ErrMissingPayload, "no selected file", nil))
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, logger, "Store crop", apperr.Wrap(apperr.ErrIOFailure, "read crop", err))
		return
	}

	_, err = manager.Export(export.ExportRequest{
		Payload:           payload,
		DateTime:          r.FormValue("dateTime"),
		Category:          r.FormValue("category"),
		OriginalImagePath: r.FormValue("originalImagePath"),
	})
	if err != nil {
		writeError(w, logger, "Store crop", err)
		return
	}
	writeJSON(w, logger, http.StatusOK, dto.ExportResponse{Message: storedMessage, Stored: 1})
}

func storeBatch(w http.ResponseWriter, r *http.Request, manager *service.Manager, logger *logger.Logger) {
	var items []dto.ExportItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		if isTooLarge(err) {
			writeJSON(w, logger, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "Payload too large"})
			return
		}
		writeJSON(w, logger, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid JSON payload"})
		return
	}

	reqs := make([]export.ExportRequest, 0, len(items))
	for _, item := range items {
		payload, err := item.Payload()
		if err != nil {
			writeError(w, logger, "Store crops", err)
			return
		}
		reqs = append(reqs, export.ExportRequest{
			Payload:           payload,
			DateTime:          item.DateTime,
			Category:          item.Category,
			OriginalImagePath: item.File,
		})
	}

	records, err := manager.ExportBatch(reqs)
	if err != nil {
		writeError(w, logger, "Store crops", err)
		return
	}
	writeJSON(w, logger, http.StatusOK, dto.ExportResponse{Message: storedMessage, Stored: len(records)})
}
