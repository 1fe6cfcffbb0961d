package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Healthy() error
}

type HealthHandler struct {
	db HealthChecker
}

func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API and database are alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.Healthy(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"service":  "sokotally-api",
				"database": "unreachable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "sokotally-api",
		"database": "ok",
	})
}
