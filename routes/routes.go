package routes

import (
	"log/slog"

	"campus_essentials/config"
	"campus_essentials/handlers"
	"campus_essentials/internal/service"
	"campus_essentials/internal/ws"
	"campus_essentials/middleware"
	"campus_essentials/models"
	"campus_essentials/utils"

	"github.com/gofiber/fiber/v2"
)

// five images of a few MB each plus form fields
const bodyLimit = 25 * 1024 * 1024

// Deps is everything the route table needs.
type Deps struct {
	Tokens        *utils.TokenManager
	Hub           *ws.Hub
	Images        *handlers.ImageStore
	Auth          *service.AuthService
	Catalog       *service.CatalogService
	Conversations *service.ConversationService
	Messages      *service.MessageService
	Payments      *service.PaymentService
}

// NewApp builds the fiber application with middleware, static uploads,
// health check and all API routes.
func NewApp(cfg *config.Config, log *slog.Logger, d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Campus Essentials",
		ServerHeader: "Campus Essentials Server/1.0",
		BodyLimit:    bodyLimit,
		ErrorHandler: middleware.ErrorHandler(log),
	})

	middleware.SetupMiddleware(app, cfg)

	app.Static(handlers.PublicUploadPrefix, cfg.UploadDir)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "success",
			"message":     "API is healthy",
			"connections": d.Hub.Connections(),
		})
	})

	Setup(app, cfg, d)

	app.Use(middleware.NotFound)
	return app
}

// Setup registers every API and realtime route.
func Setup(app *fiber.App, cfg *config.Config, d Deps) {
	authH := handlers.NewAuthHandler(d.Auth, cfg.JWTExpiration, cfg.CookieSecure)
	listingH := handlers.NewListingHandler(d.Catalog, d.Images)
	categoryH := handlers.NewCategoryHandler(d.Catalog)
	uploadH := handlers.NewUploadHandler(d.Images)
	userH := handlers.NewUserHandler(d.Auth)
	messageH := handlers.NewMessageHandler(d.Conversations, d.Messages)
	paymentH := handlers.NewPaymentHandler(d.Payments)
	adminH := handlers.NewAdminHandler(d.Auth, d.Catalog)
	realtimeH := handlers.NewRealtimeHandler(d.Hub)

	protected := middleware.RequireAuth(d.Tokens)

	app.Get("/ws",
		middleware.RequireAuth(d.Tokens, middleware.FromQuery, middleware.FromCookie, middleware.FromHeader),
		realtimeH.Upgrade,
		realtimeH.Handler(),
	)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authH.Register)
	auth.Post("/login", authH.Login)
	auth.Post("/logout", authH.Logout)
	auth.Get("/me", protected, authH.Me)

	listings := api.Group("/listings")
	listings.Get("/", listingH.Browse)
	listings.Get("/mine", protected, listingH.Mine)
	listings.Get("/:id", listingH.Get)
	listings.Post("/", protected, listingH.Create)
	listings.Patch("/:id/mark-sold", protected, listingH.MarkSold)

	api.Get("/categories", categoryH.GetCategories)
	api.Post("/uploads", protected, uploadH.UploadImage)
	api.Get("/users/search", protected, userH.SearchUsers)

	messages := api.Group("/messages", protected)
	messages.Get("/", messageH.List)
	messages.Post("/start", messageH.Start)
	messages.Get("/:conversationId", messageH.History)
	messages.Get("/:conversationId/meta", messageH.Meta)
	messages.Get("/:conversationId/status", messageH.Status)
	messages.Post("/:conversationId", messageH.Send)

	payments := api.Group("/payments")
	payments.Post("/webhook", paymentH.Webhook)
	payments.Post("/checkout", protected, paymentH.Checkout)
	payments.Get("/orders/:id", protected, paymentH.GetOrder)

	admin := api.Group("/admin", protected, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", adminH.Users)
	admin.Get("/listings", adminH.Listings)
	admin.Delete("/listings/:id", adminH.DeleteListing)
	admin.Patch("/listings/:id/mark-sold", adminH.MarkSold)
}
