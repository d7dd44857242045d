package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arklim/workforce-api/internal/infra/app"
	"github.com/arklim/workforce-api/internal/infra/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewWorker(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init worker: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
