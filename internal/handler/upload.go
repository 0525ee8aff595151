package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/dto"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/service"
)

// UploadHandler accepts a PDF in the "file" form field and stores one JPEG
// per page.
func UploadHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)

		file, header, err := r.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				writeJSON(w, logger, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File too large"})
				return
			}
			writeJSON(w, logger, http.StatusBadRequest, dto.ErrorResponse{Error: "No file part"})
			return
		}
		defer file.Close()

		if header.Filename == "" {
			writeJSON(w, logger, http.StatusBadRequest, dto.ErrorResponse{Error: "No selected file"})
			return
		}
		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			writeJSON(w, logger, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid file type or no file selected"})
			return
		}

		doc, err := io.ReadAll(file)
		if err != nil {
			logger.Error("Error reading upload %s: %v", header.Filename, err)
			writeJSON(w, logger, http.StatusBadRequest, dto.ErrorResponse{Error: "Unable to read file"})
			return
		}

		pages, err := manager.UploadDocument(r.Context(), doc)
		if err != nil {
			writeError(w, logger, "Upload "+header.Filename, err)
			return
		}

		files := make([]string, len(pages))
		for i, page := range pages {
			files[i] = page.Filename
		}
		logger.Info("Upload %s converted to %d page(s)", header.Filename, len(pages))
		writeJSON(w, logger, http.StatusOK, dto.UploadResponse{
			Message: "File uploaded and converted successfully",
			Files:   files,
		})
	}
}
