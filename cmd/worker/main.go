package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/geostore-service/internal/app"
	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/pkg/logger"
	"github.com/geostore-service/internal/worker"
	"github.com/geostore-service/internal/worker/tiles"
)

func main() {
	// 1. Load configuration
	store, err := config.NewStore()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	cfg := store.Current()

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting tiles warm worker",
		zap.String("stream", cfg.Worker.Stream),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))
	store.Watch(log)

	// 3. Connections, repositories, use cases
	a, err := app.New(context.Background(), store, log, app.Options{Stream: true})
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// 4. Workers
	manager := worker.NewWorkerManager(log)
	manager.Register(tiles.NewTileWarmWorker(
		a.Stream,
		a.Tiles,
		cfg.Worker.Stream,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		cfg.Worker.ClaimMinIdle,
		log,
	))

	if err := manager.Start(context.Background()); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 5. Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("Received shutdown signal")

	if err := manager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker stopped")
}
