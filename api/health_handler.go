package api

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pixelready/express-jobly/db"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /health.
type HealthHandler struct {
	store Pinger
	stats *db.QueryStats
}

func NewHealthHandler(store Pinger, stats *db.QueryStats) *HealthHandler {
	return &HealthHandler{store: store, stats: stats}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok"}
	if h.stats != nil {
		body["queries"] = h.stats.Snapshot()
	}
	if err := h.store.Ping(c.UserContext()); err != nil {
		body["status"] = "unavailable"
		body["code"] = CodeUnavailable
		return c.Status(http.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
