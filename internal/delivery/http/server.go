package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/delivery/http/handler"
	"github.com/geostore-service/internal/delivery/http/middleware"
	"github.com/geostore-service/internal/pkg/metrics"
)

// Handlers - обработчики, которые регистрирует Server
type Handlers struct {
	Health     *handler.HealthHandler
	Tile       *handler.TileHandler
	Routing    *handler.RoutingHandler
	Processing *handler.ProcessingHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Store
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Store, logger *zap.Logger, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "GeoStore",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := s.app.Group("/api/v1")
	api.Get("/health", s.handlers.Health.Health)

	api.Get("/layers/:layer", s.handlers.Tile.GetLayer)
	layers := api.Group("/layers/:layer")
	layers.Get("/tiles/:z/:x/:y.pbf", s.handlers.Tile.GetTile)
	layers.Get("/tilejson", s.handlers.Tile.TileJSON)
	layers.Post("/tiles/warm", s.handlers.Tile.WarmTiles)
	layers.Post("/route", s.handlers.Routing.Route)
	layers.Post("/topology", s.handlers.Routing.CreateTopology)

	if s.handlers.Processing != nil {
		api.Get("/processing/operations", s.handlers.Processing.Operations)
		api.Post("/processing", s.handlers.Processing.Process)
	}
}

// App - fiber приложение (тесты через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.Current().GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки, не обработанные хендлерами (404 маршрута, паники)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
