package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	docs "github.com/Piyush5784/maa-anapurna-trust-api/docs"
	"github.com/Piyush5784/maa-anapurna-trust-api/services/handlers"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// HttpService wires the handler layer to the fiber app and owns the
// route table, including which limiter class guards each group.
type HttpService struct {
	context.DefaultService

	authSvc       *AuthService
	storySvc      *StoryService
	contactSvc    *ContactService
	analyticsSvc  *AnalyticsService
	paymentSvc    *PaymentService
	rateLimitSvc  *RateLimitService
	logSvc        *LogService
	monitoringSvc *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.storySvc = svc.Service(STORY_SVC).(*StoryService)
	svc.contactSvc = svc.Service(CONTACT_SVC).(*ContactService)
	svc.analyticsSvc = svc.Service(ANALYTICS_SVC).(*AnalyticsService)
	svc.paymentSvc = svc.Service(PAYMENT_SVC).(*PaymentService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.logSvc = svc.Service(LOG_SVC).(*LogService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	docs.SwaggerInfo.BasePath = ""

	svc.app = fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
		BodyLimit:    25 * 1024 * 1024,
	})

	svc.app.Use(recover.New())
	svc.app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	svc.app.Use(MonitoringMiddleware(svc.monitoringSvc))

	svc.setupRoutes()

	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

func (svc *HttpService) setupRoutes() {
	storyHandler := handlers.NewStoryHandler(svc.storySvc)
	contactHandler := handlers.NewContactHandler(svc.contactSvc)
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.analyticsSvc)
	paymentHandler := handlers.NewPaymentHandler(svc.paymentSvc)
	adminHandler := handlers.NewAdminHandler(svc.analyticsSvc, svc.rateLimitSvc, svc.logSvc)

	svc.app.Get("/ping", svc.ping)
	svc.app.Get("/swagger/*", swagger.HandlerDefault)

	// Management pages redirect through the page gate rather than
	// returning API statuses.
	adminPages := svc.app.Group("/admin", svc.authSvc.AdminPageGate())
	adminPages.Get("/*", svc.adminPage)

	v1 := svc.app.Group("/api/v1", svc.rateLimitSvc.Limit(shared.RouteClassGeneral))

	v1.Get("/ping", svc.ping)

	auth := v1.Group("/auth", svc.rateLimitSvc.Limit(shared.RouteClassAuth))
	auth.Get("/login", authHandler.Login)
	auth.Get("/callback", authHandler.Callback)
	auth.Post("/callback", authHandler.CallbackExchange)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", svc.authSvc.RequiredAuth(), authHandler.Me)

	stories := v1.Group("/stories")
	stories.Get("/", storyHandler.ListPublished)
	stories.Get("/download/:slug", storyHandler.DownloadBackup)
	stories.Get("/:slug", storyHandler.GetBySlug)

	v1.Post("/contact", contactHandler.Submit)
	v1.Post("/analytics/visit", analyticsHandler.RecordVisit)
	v1.Post("/payments/webhook", paymentHandler.Webhook)

	admin := v1.Group("/admin", svc.authSvc.RequireAdmin())
	admin.Get("/stories", storyHandler.ListAll)
	admin.Get("/stories/:storyId", storyHandler.GetByID)
	admin.Get("/contacts", contactHandler.List)
	admin.Get("/stats", adminHandler.SiteStats)
	admin.Get("/rate-limits", adminHandler.RateLimitStats)
	admin.Get("/logs", adminHandler.Logs)
	admin.Get("/payments", paymentHandler.ListPayments)
	admin.Get("/orders", paymentHandler.ListOrders)

	// Mutations get the tighter limiter window on top of the role check.
	adminMutations := admin.Group("", svc.rateLimitSvc.Limit(shared.RouteClassAdminMutation))
	adminMutations.Post("/stories", storyHandler.Create)
	adminMutations.Put("/stories/:storyId", storyHandler.Update)
	adminMutations.Patch("/stories/:storyId/toggle", storyHandler.ToggleStatus)
	adminMutations.Delete("/stories/:storyId", storyHandler.Delete)
	adminMutations.Post("/rate-limits/reset", adminHandler.RateLimitReset)

	svc.app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

// adminPage is the placeholder behind the page gate; the real pages are
// rendered by the frontend deployment.
func (svc *HttpService) adminPage(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", fiber.Map{
		"user_id": c.Locals(shared.UserID),
		"role":    c.Locals(shared.UserRole),
	})
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithFields(log.Fields{
				"path":  c.Path(),
				"error": appErr.Error(),
			}).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithFields(log.Fields{
		"path":  c.Path(),
		"error": err.Error(),
	}).Error("Unhandled error")
	return shared.ResponseInternalError(c, err)
}
