package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
)

type StoryServiceInterface interface {
	Create(req dto.CreateStoryRequest, coverImage *multipart.FileHeader, images []*multipart.FileHeader) (*dto.StoryResponse, error)
	Update(id string, req dto.UpdateStoryRequest, coverImage *multipart.FileHeader, images []*multipart.FileHeader) (*dto.StoryResponse, error)
	Delete(id string) error
	GetByID(id string) (*dto.StoryResponse, error)
	GetBySlug(slug string) (*dto.StoryResponse, error)
	ListAll(statusFilter string, limit int) (*dto.StoryListResponse, error)
	ToggleStatus(id string) (*dto.StoryResponse, error)
	DownloadBackup(slug string) ([]byte, error)
}

type ContactServiceInterface interface {
	Submit(req dto.CreateContactRequest) (*dto.ContactResponse, error)
	List(page, limit int) (*dto.ContactListResponse, error)
}

type AuthServiceInterface interface {
	LoginURL(state string) string
	HandleCallback(code string) (*dto.LoginResponse, error)
	GetProfile(userID string) (*dto.UserResponse, error)
	ResolveIdentity(c *fiber.Ctx) *dto.Identity
	RequiredAuth() fiber.Handler
	RequireAdmin() fiber.Handler
	AdminPageGate() fiber.Handler
}

type AnalyticsServiceInterface interface {
	RecordVisit(req dto.PageVisitRequest, clientIP, userAgent string) error
	SiteStats() (*dto.SiteStatsResponse, error)
}

type PaymentServiceInterface interface {
	ListPayments(q dto.PaymentReportQuery) (*dto.GatewayPaymentList, error)
	ListOrders(q dto.PaymentReportQuery) (*dto.GatewayOrderList, error)
	HandleWebhook(body []byte, signature string) error
}

type RateLimitServiceInterface interface {
	Limit(routeClass string) fiber.Handler
	Stats() map[string]interface{}
	Reset() error
}

type LogServiceInterface interface {
	Recent(limit int) ([]model.AppLog, error)
}
