package handler

import (
	"context"
	"time"

	"job-board/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the database as required and the cache as optional;
// the service keeps working without Redis.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	data := fiber.Map{"database": "up", "cache": "up"}
	status, msg := fiber.StatusOK, response.MessageOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			data["database"] = "down"
			status, msg = fiber.StatusServiceUnavailable, "unavailable"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			data["cache"] = "degraded"
		}
	}
	return response.Success(c, status, msg, data)
}
