package handlers

import (
	"context"
	"time"

	"loanledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PingFunc checks a dependency and returns nil when it is reachable
type PingFunc func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	appMode string
	pingDB  PingFunc
	log     *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(appMode string, pingDB PingFunc, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		appMode: appMode,
		pingDB:  pingDB,
		log:     log,
	}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, "Loan Ledger API v1.0 is running", fiber.Map{
		"status": "running",
		"mode":   h.appMode,
		"docs":   "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.pingDB(ctx); err != nil {
		h.log.Warn("database health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Response{
			Success: false,
			Error:   "Database unavailable",
			Data:    fiber.Map{"api": "healthy", "database": "unhealthy"},
		})
	}

	return response.Success(c, "OK", fiber.Map{"api": "healthy", "database": "healthy"})
}
