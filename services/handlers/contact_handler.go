package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type ContactHandler struct {
	contactSvc ContactServiceInterface
}

func NewContactHandler(contactSvc ContactServiceInterface) *ContactHandler {
	return &ContactHandler{
		contactSvc: contactSvc,
	}
}

// @Summary Submit Contact Message
// @Description Record a message from the public contact form
// @Tags contact
// @Accept json
// @Produce json
// @Param contactRequest body dto.CreateContactRequest true "Contact request"
// @Success 201 {object} shared.Response{data=dto.ContactResponse}
// @Router /api/v1/contact [post]
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	contact, err := h.contactSvc.Submit(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Message received", contact)
}

// @Summary List Contact Messages
// @Description Get submitted contact messages, newest first
// @Tags admin
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.ContactListResponse}
// @Security BearerAuth
// @Router /api/v1/admin/contacts [get]
func (h *ContactHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	contacts, err := h.contactSvc.List(page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", contacts)
}
