package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
	}
}

// @Summary Get Login URL
// @Description Get the OAuth consent URL for Google sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param callbackUrl query string false "Where to return after sign-in"
// @Success 200 {object} shared.Response
// @Router /api/v1/auth/login [get]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state := c.Query("callbackUrl", "/")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", fiber.Map{
		"url": h.authSvc.LoginURL(state),
	})
}

// @Summary OAuth Callback
// @Description Exchange the authorization code and open a session
// @Tags auth
// @Accept json
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string false "Post-login return path"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/auth/callback [get]
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return shared.NewBadRequestError(nil, "Missing authorization code")
	}

	login, err := h.authSvc.HandleCallback(code)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, login.Token)

	if state := c.Query("state"); state != "" && state[0] == '/' {
		return c.Redirect(state, fiber.StatusFound)
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Signed in", login)
}

// @Summary Exchange Authorization Code
// @Description Exchange an authorization code sent in the request body
// @Tags auth
// @Accept json
// @Produce json
// @Param callbackRequest body dto.OAuthCallbackRequest true "Callback request"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/auth/callback [post]
func (h *AuthHandler) CallbackExchange(c *fiber.Ctx) error {
	var req dto.OAuthCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	login, err := h.authSvc.HandleCallback(req.Code)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, login.Token)

	return shared.ResponseJSON(c, fiber.StatusOK, "Signed in", login)
}

// @Summary Get Current User
// @Description Get the signed-in user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.UserResponse}
// @Security BearerAuth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	profile, err := h.authSvc.GetProfile(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", profile)
}

// @Summary Logout
// @Description Clear the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "session_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return shared.ResponseJSON(c, fiber.StatusOK, "Signed out", nil)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token dto.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     "session_token",
		Value:    token.AccessToken,
		Expires:  time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
