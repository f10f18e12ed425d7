package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type AnalyticsHandler struct {
	analyticsSvc AnalyticsServiceInterface
}

func NewAnalyticsHandler(analyticsSvc AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// @Summary Record Page Visit
// @Description Record a page view beacon from the public site
// @Tags analytics
// @Accept json
// @Produce json
// @Param visitRequest body dto.PageVisitRequest true "Visit beacon"
// @Success 202 {object} shared.Response
// @Router /api/v1/analytics/visit [post]
func (h *AnalyticsHandler) RecordVisit(c *fiber.Ctx) error {
	var req dto.PageVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.analyticsSvc.RecordVisit(req, c.IP(), c.Get(fiber.HeaderUserAgent)); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusAccepted, "Recorded", nil)
}
