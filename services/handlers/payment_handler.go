package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type PaymentHandler struct {
	paymentSvc PaymentServiceInterface
}

func NewPaymentHandler(paymentSvc PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
	}
}

// @Summary List Gateway Payments
// @Description Get payment records from the gateway's reporting API
// @Tags admin
// @Accept json
// @Produce json
// @Param from query int false "Unix timestamp lower bound"
// @Param to query int false "Unix timestamp upper bound"
// @Param count query int false "Page size (max 100)"
// @Param skip query int false "Records to skip"
// @Success 200 {object} shared.Response{data=dto.GatewayPaymentList}
// @Security BearerAuth
// @Router /api/v1/admin/payments [get]
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	q, err := reportQuery(c)
	if err != nil {
		return err
	}

	payments, err := h.paymentSvc.ListPayments(*q)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", payments)
}

// @Summary List Gateway Orders
// @Description Get order records from the gateway's reporting API
// @Tags admin
// @Accept json
// @Produce json
// @Param from query int false "Unix timestamp lower bound"
// @Param to query int false "Unix timestamp upper bound"
// @Param count query int false "Page size (max 100)"
// @Param skip query int false "Records to skip"
// @Success 200 {object} shared.Response{data=dto.GatewayOrderList}
// @Security BearerAuth
// @Router /api/v1/admin/orders [get]
func (h *PaymentHandler) ListOrders(c *fiber.Ctx) error {
	q, err := reportQuery(c)
	if err != nil {
		return err
	}

	orders, err := h.paymentSvc.ListOrders(*q)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", orders)
}

// @Summary Payment Webhook
// @Description Receive payment event notifications from the gateway
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")

	if err := h.paymentSvc.HandleWebhook(c.Body(), signature); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Acknowledged", nil)
}

func reportQuery(c *fiber.Ctx) (*dto.PaymentReportQuery, error) {
	var q dto.PaymentReportQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid query")
	}

	if err := q.Validate(); err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid query")
	}

	return &q, nil
}
