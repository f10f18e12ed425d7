package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// AdminHandler serves the operational endpoints behind the admin API:
// site analytics, rate limiter state and persisted log records.
type AdminHandler struct {
	analyticsSvc AnalyticsServiceInterface
	rateLimitSvc RateLimitServiceInterface
	logSvc       LogServiceInterface
}

func NewAdminHandler(analyticsSvc AnalyticsServiceInterface, rateLimitSvc RateLimitServiceInterface, logSvc LogServiceInterface) *AdminHandler {
	return &AdminHandler{
		analyticsSvc: analyticsSvc,
		rateLimitSvc: rateLimitSvc,
		logSvc:       logSvc,
	}
}

// @Summary Get Site Stats
// @Description Get aggregate page visit counts
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SiteStatsResponse}
// @Security BearerAuth
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) SiteStats(c *fiber.Ctx) error {
	stats, err := h.analyticsSvc.SiteStats()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}

// @Summary Get Rate Limiter Stats
// @Description Get live counter and quota state for the request limiter
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response
// @Security BearerAuth
// @Router /api/v1/admin/rate-limits [get]
func (h *AdminHandler) RateLimitStats(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.rateLimitSvc.Stats())
}

// @Summary Reset Rate Limiter
// @Description Clear all rate limiter counters
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response
// @Security BearerAuth
// @Router /api/v1/admin/rate-limits/reset [post]
func (h *AdminHandler) RateLimitReset(c *fiber.Ctx) error {
	if err := h.rateLimitSvc.Reset(); err != nil {
		return shared.NewInternalError(err, "Failed to reset rate limiter")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Rate limiter reset", nil)
}

// @Summary List Log Records
// @Description Get persisted application log records, newest first
// @Tags admin
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of records"
// @Success 200 {object} shared.Response{data=[]model.AppLog}
// @Security BearerAuth
// @Router /api/v1/admin/logs [get]
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	logs, err := h.logSvc.Recent(limit)
	if err != nil {
		return shared.NewInternalError(err, "Failed to load log records")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", logs)
}
