package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type StoryHandler struct {
	storySvc StoryServiceInterface
}

func NewStoryHandler(storySvc StoryServiceInterface) *StoryHandler {
	return &StoryHandler{
		storySvc: storySvc,
	}
}

// @Summary List Published Stories
// @Description Get published stories, featured first then newest first
// @Tags stories
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of stories to return"
// @Success 200 {object} shared.Response{data=dto.StoryListResponse}
// @Router /api/v1/stories [get]
func (h *StoryHandler) ListPublished(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	stories, err := h.storySvc.ListAll(shared.StoryStatusPublished, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stories)
}

// @Summary List All Stories
// @Description Get stories in every status, optionally filtered
// @Tags admin
// @Accept json
// @Produce json
// @Param status query string false "Filter by status" Enums(DRAFT, PUBLISHED, ARCHIVED)
// @Param limit query int false "Maximum number of stories to return"
// @Success 200 {object} shared.Response{data=dto.StoryListResponse}
// @Security BearerAuth
// @Router /api/v1/admin/stories [get]
func (h *StoryHandler) ListAll(c *fiber.Ctx) error {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	stories, err := h.storySvc.ListAll(status, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stories)
}

// @Summary Get Story
// @Description Get one story by slug and count the view
// @Tags stories
// @Accept json
// @Produce json
// @Param slug path string true "Story slug"
// @Success 200 {object} shared.Response{data=dto.StoryResponse}
// @Router /api/v1/stories/{slug} [get]
func (h *StoryHandler) GetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	story, err := h.storySvc.GetBySlug(slug)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", story)
}

// @Summary Get Story By ID
// @Description Get one story by its identifier
// @Tags admin
// @Accept json
// @Produce json
// @Param storyId path string true "Story ID"
// @Success 200 {object} shared.Response{data=dto.StoryResponse}
// @Security BearerAuth
// @Router /api/v1/admin/stories/{storyId} [get]
func (h *StoryHandler) GetByID(c *fiber.Ctx) error {
	storyID := c.Params("storyId")

	story, err := h.storySvc.GetByID(storyID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", story)
}

// @Summary Create Story
// @Description Create a story with optional cover image and gallery uploads
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Story title"
// @Param excerpt formData string true "Short excerpt"
// @Param content formData string true "Story body"
// @Param category formData string true "Story category"
// @Param cover_image formData file false "Cover image"
// @Param images formData file false "Additional images"
// @Success 201 {object} shared.Response{data=dto.StoryResponse}
// @Security BearerAuth
// @Router /api/v1/admin/stories [post]
func (h *StoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	cover, images := formImages(c)

	story, err := h.storySvc.Create(req, cover, images)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Story created", story)
}

// @Summary Update Story
// @Description Update story fields; uploaded images replace the existing set
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param storyId path string true "Story ID"
// @Success 200 {object} shared.Response{data=dto.StoryResponse}
// @Security BearerAuth
// @Router /api/v1/admin/stories/{storyId} [put]
func (h *StoryHandler) Update(c *fiber.Ctx) error {
	storyID := c.Params("storyId")

	var req dto.UpdateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	cover, images := formImages(c)

	story, err := h.storySvc.Update(storyID, req, cover, images)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Story updated", story)
}

// @Summary Toggle Story Status
// @Description Flip a story between DRAFT and PUBLISHED
// @Tags admin
// @Accept json
// @Produce json
// @Param storyId path string true "Story ID"
// @Success 200 {object} shared.Response{data=dto.StoryResponse}
// @Security BearerAuth
// @Router /api/v1/admin/stories/{storyId}/toggle [patch]
func (h *StoryHandler) ToggleStatus(c *fiber.Ctx) error {
	storyID := c.Params("storyId")

	story, err := h.storySvc.ToggleStatus(storyID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Status updated", story)
}

// @Summary Delete Story
// @Description Delete a story and its stored assets
// @Tags admin
// @Accept json
// @Produce json
// @Param storyId path string true "Story ID"
// @Success 200 {object} shared.Response
// @Security BearerAuth
// @Router /api/v1/admin/stories/{storyId} [delete]
func (h *StoryHandler) Delete(c *fiber.Ctx) error {
	storyID := c.Params("storyId")

	if err := h.storySvc.Delete(storyID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Story deleted", nil)
}

// @Summary Download Story Backup
// @Description Download a story's markdown backup
// @Tags stories
// @Produce plain
// @Param slug path string true "Story slug"
// @Success 200 {string} string "Markdown document"
// @Router /api/v1/stories/download/{slug} [get]
func (h *StoryHandler) DownloadBackup(c *fiber.Ctx) error {
	slug := c.Params("slug")

	content, err := h.storySvc.DownloadBackup(slug)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+slug+`.md"`)
	return c.Send(content)
}

// formImages pulls the optional cover and gallery uploads out of the
// multipart form. Missing parts yield nil values.
func formImages(c *fiber.Ctx) (*multipart.FileHeader, []*multipart.FileHeader) {
	cover, err := c.FormFile("cover_image")
	if err != nil {
		cover = nil
	}

	var images []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		images = form.File["images"]
	}

	return cover, images
}
