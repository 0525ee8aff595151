package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/logger"
	"github.com/danielostrow/planVision/internal/repository/sqlite"
	"github.com/danielostrow/planVision/internal/route"
	"github.com/danielostrow/planVision/internal/service"
	"github.com/danielostrow/planVision/internal/service/export"
	"github.com/danielostrow/planVision/internal/service/pageid"
	"github.com/danielostrow/planVision/internal/service/pipeline"
	"github.com/danielostrow/planVision/internal/service/raster"
	"github.com/danielostrow/planVision/internal/service/recordid"
	"github.com/danielostrow/planVision/internal/service/store"
	"github.com/danielostrow/planVision/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	hubService *websocket.HubService
	manager    *service.Manager
	handler    http.Handler
}

// New wires the services for cfg. The caller owns l.
func New(cfg *config.Config, l *logger.Logger) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	a := &App{config: cfg, logger: l}

	var counter pageid.Counter = pageid.ListingCounter{}
	if cfg.PageCounter == config.PageCounterSQLite {
		db, err := sqlite.New(cfg.CounterDBPath)
		if err != nil {
			return nil, fmt.Errorf("open counter database: %w", err)
		}
		a.db = db
		counter = pageid.NewPersistentCounter(sqlite.NewCounterRepository(db))
		l.Info("Page ids persisted in %s", cfg.CounterDBPath)
	}

	ghostscript := raster.NewGhostscript(cfg.GhostscriptPath, cfg.RasterDPI)
	if !ghostscript.Available() {
		l.Warning("Ghostscript not found at %q, uploads will fail", cfg.GhostscriptPath)
	}

	p := pipeline.New(raster.PDFValidator{}, ghostscript, counter, pipeline.Options{
		JPEGQuality:   cfg.JPEGQuality,
		MaxPageWidth:  cfg.MaxPageWidth,
		EncodeWorkers: cfg.EncodeWorkers,
	}, l)
	exporter := export.NewExporter(cfg.BlobDir(), recordid.New(cfg.DefaultCategory),
		store.NewAnnotationStore(cfg.RecordLogPath(), l), l)

	a.hubService = websocket.NewHubService(l)
	a.manager = service.NewManager(p, exporter, a.hubService, cfg.ConvertedDir(), l)
	a.handler = route.SetupRoutes(a.manager, cfg, l)
	return a, nil
}

// Handler returns the HTTP handler of the app.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves until ctx is cancelled, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hubService.Run(hubCtx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Serving on :%d, pages in %s", a.config.Port, a.config.ConvertedDir())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("Shutting down")
	return server.Shutdown(shutdownCtx)
}

// Close releases the counter database.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
