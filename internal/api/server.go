package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/availability"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/cache"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/config"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/handlers"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/metrics"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/middleware"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/search"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

// Server представляет HTTP сервер API
type Server struct {
	router    *gin.Engine
	config    *config.Config
	db        *database.DB
	publisher messaging.Publisher
	cache     *cache.Cache
	services  *service.Services
	tokens    *auth.TokenManager
}

// NewServer connects every backing store and wires the routes.
// Valkey, Elasticsearch and NATS are optional: a failure there is logged and the API runs without them.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	hours, err := availability.ParseHours(cfg.Reservations.OpeningTime, cfg.Reservations.ClosingTime)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid opening hours: %w", err)
	}

	publisher, err := messaging.New(cfg.NATS)
	if err != nil {
		slog.Error("NATS unavailable, events will be dropped", "error", err)
		publisher = messaging.NopPublisher{}
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("Valkey unavailable, catalog cache disabled", "error", err)
		c = nil
	}

	var index *search.ProductIndex
	if cfg.Elasticsearch.Enabled {
		index, err = search.NewProductIndex(cfg.Elasticsearch)
		if err != nil {
			slog.Error("Elasticsearch unavailable, product search falls back to MySQL", "error", err)
			index = nil
		}
	}

	tokens := auth.NewTokenManager(cfg.JWT)
	repos := repository.NewRepositories(db)

	services := service.NewServices(service.Deps{
		DB:        db,
		Repos:     repos,
		Publisher: publisher,
		Cache:     c,
		Search:    index,
		Tokens:    tokens,
		JotForm:   external.NewJotFormClient(cfg.JotForm),
		FormID:    cfg.JotForm.FormID,
		FormTTL:   cfg.JotForm.TTL,
		Hours:     hours,
	})

	server := newServer(cfg, db, services, tokens)
	server.publisher = publisher
	server.cache = c
	return server, nil
}

func newServer(cfg *config.Config, db *database.DB, services *service.Services, tokens *auth.TokenManager) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	s := &Server{
		router:    router,
		config:    cfg,
		db:        db,
		publisher: messaging.NopPublisher{},
		services:  services,
		tokens:    tokens,
	}
	s.setupRoutes()
	return s
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.router.Group("/api")
	{
		services := api.Group("/services")
		{
			services.GET("", h.ListServices)
			services.GET("/categories", h.ListServiceCategories)
			services.GET("/:id", h.GetService)
		}

		api.GET("/memberships", h.ListMemberships)

		reservations := api.Group("/reservations")
		reservations.Use(middleware.OptionalClientAuth(s.tokens))
		{
			reservations.POST("/check-availability", h.CheckAvailability)
			reservations.POST("", h.CreateReservation)
			reservations.GET("/:id", h.GetReservation)
			reservations.POST("/:id/services", h.AddReservationService)
			reservations.DELETE("/:id/services/:serviceId", h.RemoveReservationService)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.Signup)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/verify-email", h.VerifyEmail)
		}

		api.POST("/referrals/validate", middleware.OptionalClientAuth(s.tokens), h.ValidateReferral)

		store := api.Group("/store")
		{
			store.GET("/products", h.ListProducts)
			store.GET("/products/:id", h.GetProduct)
			store.GET("/categories", h.ListProductCategories)
			store.POST("/orders", middleware.OptionalClientAuth(s.tokens), h.PlaceOrder)
			store.GET("/orders/me", middleware.ClientAuth(s.tokens), h.MyOrders)
		}

		jotform := api.Group("/jotform")
		{
			jotform.GET("/form", h.GetWaiverForm)
			jotform.POST("/submissions", h.SubmitWaiver)
			jotform.GET("/submission/:id", h.GetSubmission)
		}

		client := api.Group("/client")
		client.Use(middleware.ClientAuth(s.tokens))
		{
			client.GET("/profile", h.GetProfile)
			client.PUT("/profile", h.UpdateProfile)
			client.GET("/reservations", h.ClientReservations)
			client.PATCH("/reservations/:id/cancel", h.CancelReservation)
			client.GET("/referral", h.MyReferral)
		}

		api.POST("/admin/auth/login", h.AdminLogin)
		s.setupAdminRoutes(api.Group("/admin", middleware.AdminAuth(s.tokens)), h)
	}
}

func (s *Server) setupAdminRoutes(admin *gin.RouterGroup, h *handlers.Handlers) {
	admin.GET("/stats", middleware.RequirePermission("stats"), h.AdminStats)

	reservations := admin.Group("/reservations", middleware.RequirePermission("reservations"))
	{
		reservations.GET("", h.AdminListReservations)
		reservations.PATCH("/:id/status", h.AdminUpdateReservationStatus)
	}
	admin.PATCH("/jotform/submission/:id/link", middleware.RequirePermission("reservations"), h.AdminLinkSubmission)

	services := admin.Group("/services", middleware.RequirePermission("services"))
	{
		services.GET("", h.AdminListServices)
		services.POST("", h.AdminCreateService)
		services.PUT("/:id", h.AdminUpdateService)
		services.DELETE("/:id", h.AdminDeleteService)
		services.GET("/:id/translations", h.AdminListServiceTranslations)
		services.PUT("/:id/translations/:lang", h.AdminUpsertServiceTranslation)
		services.DELETE("/:id/translations/:lang", h.AdminDeleteServiceTranslation)
	}

	categories := admin.Group("/categories", middleware.RequirePermission("services"))
	{
		categories.GET("", h.AdminListCategories)
		categories.POST("", h.AdminCreateCategory)
		categories.PUT("/:id", h.AdminUpdateCategory)
		categories.DELETE("/:id", h.AdminDeleteCategory)
	}

	clients := admin.Group("/clients", middleware.RequirePermission("clients"))
	{
		clients.GET("", h.AdminListClients)
		clients.GET("/:id", h.AdminGetClient)
		clients.PUT("/:id", h.AdminUpdateClient)
		clients.PATCH("/:id/deactivate", h.AdminDeactivateClient)
	}

	memberships := admin.Group("/memberships", middleware.RequirePermission("memberships"))
	{
		memberships.GET("", h.AdminListMemberships)
		memberships.POST("", h.AdminCreateMembership)
		memberships.PUT("/:id", h.AdminUpdateMembership)
		memberships.DELETE("/:id", h.AdminDeleteMembership)
		memberships.GET("/:id/translations", h.AdminListMembershipTranslations)
		memberships.PUT("/:id/translations/:lang", h.AdminUpsertMembershipTranslation)
		memberships.DELETE("/:id/translations/:lang", h.AdminDeleteMembershipTranslation)
	}

	referrals := admin.Group("/referrals", middleware.RequirePermission("referrals"))
	{
		referrals.GET("", h.AdminListReferrals)
		referrals.POST("", h.AdminCreateReferral)
		referrals.PATCH("/:id/deactivate", h.AdminDeactivateReferral)
		referrals.GET("/:id/usages", h.AdminReferralUsages)
	}

	store := admin.Group("/store", middleware.RequirePermission("store"))
	{
		store.GET("/products", h.AdminListProducts)
		store.POST("/products", h.AdminCreateProduct)
		store.PUT("/products/:id", h.AdminUpdateProduct)
		store.DELETE("/products/:id", h.AdminDeleteProduct)
		store.POST("/categories", h.AdminCreateProductCategory)
		store.GET("/orders", h.AdminListOrders)
		store.PATCH("/orders/:id/status", h.AdminUpdateOrderStatus)
		store.POST("/reindex", h.AdminReindexProducts)
	}
}

// healthCheck reports the database status; 503 when MySQL does not answer.
func (s *Server) healthCheck(c *gin.Context) {
	check := s.db.Health(c.Request.Context())
	code, status := http.StatusOK, "healthy"
	if !check.Healthy {
		code, status = http.StatusServiceUnavailable, "unhealthy"
	}
	c.JSON(code, gin.H{
		"status":   status,
		"service":  "zenshe-api",
		"version":  version,
		"database": check,
	})
}

// Handler returns the router, for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup(ctx context.Context) error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}
	s.cache.Close()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing database connection", "error", err)
			return err
		}
	}
	return nil
}
