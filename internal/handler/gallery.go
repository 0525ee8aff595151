package handler

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danielostrow/planVision/internal/dto"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/service"
)

// ConvertedURLPrefix is where page images are served.
const ConvertedURLPrefix = "/static/converted/"

// GalleryHandler lists the stored page images. Without a "limit" query
// parameter every page is returned.
func GalleryHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages, err := manager.ListPages()
		if err != nil {
			writeError(w, logger, "Gallery", err)
			return
		}

		q := r.URL.Query()
		limit := atoiDefault(q.Get("limit"), len(pages))
		page := atoiDefault(q.Get("page"), 1)

		images := make([]string, 0, len(pages))
		for _, p := range pages {
			images = append(images, ConvertedURLPrefix+p.Filename)
		}

		data := dto.GalleryData{
			Images:      images,
			Length:      len(images),
			TotalPages:  1,
			CurrentPage: 1,
			Limit:       limit,
		}
		if limit > 0 {
			totalPages := len(images) / limit
			if len(images)%limit != 0 {
				totalPages++
			}
			// Compare page numbers before multiplying; page*limit can overflow.
			start := len(images)
			if page <= totalPages {
				start = (page - 1) * limit
			}
			end := start + min(limit, len(images)-start)
			data.Images = images[start:end]
			data.TotalPages = totalPages
			data.CurrentPage = page
		}

		writeJSON(w, logger, http.StatusOK, data)
	}
}

// PageImageHandler serves one page image named by the URL parameter param.
func PageImageHandler(manager *service.Manager, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, param))
		if err != nil || !isPlainFilename(name) {
			http.Error(w, "Invalid image name", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(manager.ConvertedDir(), name))
	}
}

// EditorHandler returns the page image the annotation editor should open.
func EditorHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, dto.EditorData{ImagePath: r.URL.Query().Get("img")})
	}
}

// isPlainFilename rejects anything that could leave the directory it is joined to.
func isPlainFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
