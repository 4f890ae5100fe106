package resolving

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tunegate/tunegate/src/features/config"
)

// RegisterRoutes registers resolving routes
func RegisterRoutes(app *fiber.App, service *Service, cfg *config.Manager) {
	handler := NewHandler(service, cfg)

	app.Get("/api", handler.Resolve)
}
