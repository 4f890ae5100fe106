package resolving

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tunegate/tunegate/src/features/config"
	"github.com/tunegate/tunegate/src/infra/sources"
	"github.com/tunegate/tunegate/src/music"
)

// Handler handles resolution requests
type Handler struct {
	service  *Service
	config   *config.Manager
	validate *validator.Validate
}

// NewHandler creates a new resolving handler
func NewHandler(service *Service, cfg *config.Manager) *Handler {
	return &Handler{
		service:  service,
		config:   cfg,
		validate: validator.New(),
	}
}

// Resolve parses, validates and dispatches one resolution query.
func (h *Handler) Resolve(c *fiber.Ctx) error {
	var q Query
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed query: " + err.Error()})
	}
	if err := h.validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if q.Server == "" {
		q.Server = string(music.Netease)
	}
	provider, err := music.ParseProvider(q.Server)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	op := Operation(q.Type)

	switch op {
	case OpSearch:
		if q.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required for search"})
		}
	default:
		if q.ID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
		}
	}

	defaults := h.config.Get().Defaults
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = defaults.Limit
	}
	if q.Bitrate == 0 {
		q.Bitrate = defaults.Bitrate
	}
	if q.Size == 0 {
		q.Size = defaults.ArtworkSize
	}

	payload, err := h.service.Resolve(c.Context(), provider, op, sources.Params{
		Keyword: q.Name,
		ID:      q.ID,
		Page:    q.Page,
		Limit:   q.Limit,
		Bitrate: q.Bitrate,
		Size:    q.Size,
	})
	if err != nil {
		slog.Error("Resolution failed", "provider", provider, "operation", op, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resolution failed"})
	}

	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Send(payload)
}
