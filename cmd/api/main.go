package main

// @title GeoStore API
// @version 1.0.0
// @description Векторные тайлы (MVT) слоев PostGIS с версионируемым кешем, TileJSON,
// @description маршрутизация по линейным слоям через pgRouting и пакетная обработка слоев.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/geostore-service/docs"
	"github.com/geostore-service/internal/app"
	"github.com/geostore-service/internal/config"
	httpDelivery "github.com/geostore-service/internal/delivery/http"
	"github.com/geostore-service/internal/delivery/http/handler"
	"github.com/geostore-service/internal/pkg/logger"
)

func main() {
	// 1. Load configuration
	store, err := config.NewStore()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	cfg := store.Current()

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting GeoStore API",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)
	store.Watch(log)

	// 3. Connections, repositories, use cases
	a, err := app.New(context.Background(), store, log, app.Options{})
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// 4. HTTP
	checks := map[string]handler.HealthChecker{"postgres": a.DB}
	if a.Redis != nil {
		checks["redis"] = a.Redis
	}

	server := httpDelivery.NewServer(store, log, httpDelivery.Handlers{
		Health:     handler.NewHealthHandler(checks),
		Tile:       handler.NewTileHandler(a.Tiles, cfg.Server.BaseURL, log),
		Routing:    handler.NewRoutingHandler(a.Routing, log),
		Processing: handler.NewProcessingHandler(a.Processing, log),
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}
