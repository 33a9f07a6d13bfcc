package handler

import (
	"context"
	"time"

	"dq-index/internal/dto"
	"dq-index/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RootMessage is returned by GET /.
const RootMessage = "Data Quality Index API"

const (
	statusOK       = "ok"
	statusDown     = "down"
	statusDisabled = "disabled"

	pingTimeout = 2 * time.Second
)

// Pinger is anything whose liveness can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the service and its backing stores.
type HealthHandler struct {
	db    Pinger
	cache Pinger // nil when caching is disabled
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Root godoc
// @Summary Liveness message
// @Tags health
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: RootMessage})
}

// Health godoc
// @Summary Health check
// @Description Pings the database and, when configured, the cache
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: statusOK, DB: statusOK, Cache: statusDisabled}
	status := fiber.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		logger.Get().Error("Database health check failed", zap.Error(err))
		resp.Status = statusDown
		resp.DB = statusDown
		status = fiber.StatusServiceUnavailable
	}

	// A failing cache degrades the service but does not take it down.
	if h.cache != nil {
		resp.Cache = statusOK
		if err := h.cache.Ping(ctx); err != nil {
			logger.Get().Warn("Cache health check failed", zap.Error(err))
			resp.Cache = statusDown
			if resp.Status == statusOK {
				resp.Status = "degraded"
			}
		}
	}

	return c.Status(status).JSON(resp)
}
