package route

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/handler"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/middleware"
	"github.com/danielostrow/planVision/internal/service"
)

// SetupRoutes registers the upload, gallery, export, events and log endpoints.
func SetupRoutes(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	// Pages
	r.Post("/upload", handler.UploadHandler(manager, cfg, logger))
	r.Get("/gallery", handler.GalleryHandler(manager, logger))
	r.Get("/static/converted/{filename}", handler.PageImageHandler(manager, "filename"))
	r.Get("/image/{imageID}", handler.PageImageHandler(manager, "imageID"))
	r.Get("/editor", handler.EditorHandler(logger))

	// Annotations
	r.Post("/data/store", handler.StoreDataHandler(manager, cfg, logger))
	r.Get("/api/events", handler.EventsWebsocketHandler(manager, logger))

	// Log endpoints
	r.Get("/logs/{level}", handler.ShowLogsHandler(logger))
	r.Post("/logs/{level}/clear", handler.ClearLogsHandler(logger))

	return r
}
