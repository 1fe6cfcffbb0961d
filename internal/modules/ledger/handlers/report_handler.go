package handlers

import (
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *services.ReportService
	usageService  *services.UsageService
}

func NewReportHandler(reportService *services.ReportService, usageService *services.UsageService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		usageService:  usageService,
	}
}

// GetSummary godoc
// @Summary Business summary
// @Description Income, expenses, profit, top items and customers, stock value for a period
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param period query string false "today, yesterday, this_week, last_week, this_month, last_month, this_year, last_N_days" default(last_30_days)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} models.BusinessSummary
// @Failure 400 {object} map[string]interface{}
// @Router /reports/summary [get]
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	period, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	summary, err := h.reportService.Summary(c.UserContext(), userID, period)
	if err != nil {
		return writeError(c, err, "Failed to generate report")
	}

	return c.JSON(summary)
}

// GetAIUsage godoc
// @Summary AI usage per model
// @Description Requests, failures, tokens and average latency per model (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param period query string false "Period key" default(last_30_days)
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /admin/ai-usage [get]
func (h *ReportHandler) GetAIUsage(c *fiber.Ctx) error {
	period, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	stats, err := h.usageService.Summary(c.UserContext(), period)
	if err != nil {
		return writeError(c, err, "Failed to summarize AI usage")
	}

	return c.JSON(fiber.Map{
		"period": period,
		"models": stats,
	})
}
