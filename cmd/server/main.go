package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielostrow/planVision/internal/app"
	"github.com/danielostrow/planVision/internal/config"
	"github.com/danielostrow/planVision/internal/logger"
)

func main() {
	cfg := config.Load()
	l := logger.NewLogger(cfg)
	defer l.Close()

	application, err := app.New(cfg, l)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		l.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
