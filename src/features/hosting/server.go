package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/tunegate/tunegate/src/features/config"
	"github.com/tunegate/tunegate/src/features/metrics"
	"github.com/tunegate/tunegate/src/features/resolving"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, resolvingService *resolving.Service, recorder *metrics.Recorder) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
		AppName:               "Tunegate",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	// Add middleware
	app.Use(RequestIDMiddleware())
	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	resolving.RegisterRoutes(app, resolvingService, cfg)
	config.RegisterRoutes(app, cfg)
	metrics.RegisterRoutes(app, recorder)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
