package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// AuthService owns OAuth sign-in and the request-identity middleware.
// Identity is resolved once per request and passed explicitly; the
// admin gate is a pure function of that identity.
type AuthService struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
	logSvc *LogService

	clientID     string
	clientSecret string
	redirectURL  string

	tokenEndpoint    string
	userInfoEndpoint string
	httpClient       *http.Client
}

const AUTH_SVC = "auth_svc"

const sessionCookieName = "session_token"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	svc.clientID = os.Getenv("GOOGLE_CLIENT_ID")
	svc.clientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	svc.redirectURL = os.Getenv("OAUTH_REDIRECT_URL")
	if svc.redirectURL == "" {
		svc.redirectURL = "http://localhost:8000/api/v1/auth/callback"
	}

	svc.tokenEndpoint = "https://oauth2.googleapis.com/token"
	svc.userInfoEndpoint = "https://openidconnect.googleapis.com/v1/userinfo"
	svc.httpClient = &http.Client{Timeout: 10 * time.Second}

	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.logSvc = svc.Service(LOG_SVC).(*LogService)
	return nil
}

// ==================== OAUTH FLOW ====================

// LoginURL builds the provider's consent URL. state carries the
// post-login return path.
func (svc *AuthService) LoginURL(state string) string {
	q := url.Values{}
	q.Set("client_id", svc.clientID)
	q.Set("redirect_uri", svc.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	return "https://accounts.google.com/o/oauth2/v2/auth?" + q.Encode()
}

// HandleCallback exchanges the authorization code, creates the local
// user on first sign-in and returns a session token with a role claim.
func (svc *AuthService) HandleCallback(code string) (*dto.LoginResponse, error) {
	if svc.clientID == "" || svc.clientSecret == "" {
		return nil, shared.NewInternalError(errors.New("oauth not configured"), "Sign-in is not available")
	}

	tokenResp, err := svc.exchangeCode(code)
	if err != nil {
		svc.logSvc.Error(AUTH_SVC, "OAuth code exchange failed", map[string]interface{}{
			"code":  code,
			"error": err.Error(),
		})
		return nil, shared.NewUnauthorizedError(err, "Sign-in failed")
	}

	info, err := svc.fetchUserInfo(tokenResp.AccessToken)
	if err != nil {
		svc.logSvc.Error(AUTH_SVC, "OAuth userinfo fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, shared.NewUnauthorizedError(err, "Sign-in failed")
	}

	user, err := svc.findOrCreateUser(info)
	if err != nil {
		return nil, err
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue session")
	}

	return &dto.LoginResponse{
		Token: *pair,
		User: dto.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Picture:   user.Picture,
			Role:      user.Role,
			LastLogin: user.LastLogin,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

func (svc *AuthService) exchangeCode(code string) (*dto.GoogleTokenResponse, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", svc.clientID)
	form.Set("client_secret", svc.clientSecret)
	form.Set("redirect_uri", svc.redirectURL)
	form.Set("grant_type", "authorization_code")

	resp, err := svc.httpClient.PostForm(svc.tokenEndpoint, form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp dto.GoogleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

func (svc *AuthService) fetchUserInfo(accessToken string) (*dto.GoogleUserInfo, error) {
	req, err := http.NewRequest(http.MethodGet, svc.userInfoEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, errors.New("userinfo response missing email")
	}
	return &info, nil
}

func (svc *AuthService) findOrCreateUser(info *dto.GoogleUserInfo) (*model.User, error) {
	user, err := svc.sqlSvc.GetUserByEmail(info.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			ID:        uuid.NewString(),
			Email:     info.Email,
			Name:      info.Name,
			Picture:   info.Picture,
			Provider:  "google",
			Role:      shared.RoleUser,
			LastLogin: time.Now(),
		}
		if err := svc.sqlSvc.CreateUser(user); err != nil {
			return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to create account")
		}
		log.WithFields(log.Fields{"user_id": user.ID}).Info("Created user on first sign-in")
		return user, nil
	}
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to load account")
	}

	user.LastLogin = time.Now()
	user.Name = info.Name
	user.Picture = info.Picture
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		log.WithFields(log.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("Failed to record last login")
	}

	return user, nil
}

func (svc *AuthService) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}, nil
}

// ==================== REQUEST IDENTITY ====================

// SessionToken pulls the token from the Authorization header or the
// session cookie. Empty string means anonymous.
func SessionToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return authHeader[7:]
		}
	}
	return c.Cookies(sessionCookieName)
}

// ResolveIdentity verifies the session token, returning nil for an
// anonymous or invalid session.
func (svc *AuthService) ResolveIdentity(c *fiber.Ctx) *dto.Identity {
	token := SessionToken(c)
	if token == "" {
		return nil
	}
	identity, err := svc.jwtSvc.VerifyJWTToken(token)
	if err != nil {
		return nil
	}
	return identity
}

// RequiredAuth rejects anonymous API requests with 401 and stores the
// resolved identity in request locals.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := svc.ResolveIdentity(c)
		if identity == nil || identity.UserID == "" {
			return shared.ResponseUnauthorized(c)
		}

		c.Locals(shared.UserID, identity.UserID)
		c.Locals(shared.UserRole, identity.Role)
		return c.Next()
	}
}

// RequireAdmin distinguishes "authentication required" (401) from
// "admin required" (403) on API routes.
func (svc *AuthService) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := svc.ResolveIdentity(c)
		if identity == nil || identity.UserID == "" {
			return shared.ResponseUnauthorized(c)
		}
		if identity.Role != shared.RoleAdmin {
			return shared.ResponseForbidden(c)
		}

		c.Locals(shared.UserID, identity.UserID)
		c.Locals(shared.UserRole, identity.Role)
		return c.Next()
	}
}

// AuthorizeAdminPage decides the management-page gate for an explicit
// identity: anonymous callers are sent to sign-in with the requested
// URL preserved, non-admins to the unauthorized page.
func AuthorizeAdminPage(identity *dto.Identity, requestedURL string) dto.AdminGateDecision {
	if identity == nil || identity.UserID == "" {
		target := shared.SignInPath
		if requestedURL != "" {
			target += "?callbackUrl=" + url.QueryEscape(requestedURL)
		}
		return dto.AdminGateDecision{Allowed: false, RedirectTarget: target}
	}

	if identity.Role != shared.RoleAdmin {
		return dto.AdminGateDecision{Allowed: false, RedirectTarget: shared.UnauthorizedPath}
	}

	return dto.AdminGateDecision{Allowed: true}
}

// AdminPageGate applies AuthorizeAdminPage as middleware for page-style
// management routes, issuing 302 redirects instead of API statuses.
func (svc *AuthService) AdminPageGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := svc.ResolveIdentity(c)

		decision := AuthorizeAdminPage(identity, c.OriginalURL())
		if !decision.Allowed {
			return c.Redirect(decision.RedirectTarget, fiber.StatusFound)
		}

		c.Locals(shared.UserID, identity.UserID)
		c.Locals(shared.UserRole, identity.Role)
		return c.Next()
	}
}
