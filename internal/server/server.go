package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xjinkx/license-gateway/internal/config"
	"github.com/xjinkx/license-gateway/internal/handler"
	"github.com/xjinkx/license-gateway/internal/middleware"
	"github.com/xjinkx/license-gateway/internal/ratelimit"
	"github.com/xjinkx/license-gateway/internal/repository"
	"github.com/xjinkx/license-gateway/internal/service"
	"github.com/xjinkx/license-gateway/internal/storage"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	redis    *storage.RedisClient
	postgres *storage.Postgres
	limiter  ratelimit.Limiter

	authService *service.AuthService

	keyHandler      *handler.KeyHandler
	purchaseHandler *handler.PurchaseHandler
	topupHandler    *handler.TopUpHandler
	productHandler  *handler.ProductHandler
	historyHandler  *handler.HistoryHandler
	versionsHandler *handler.VersionsHandler
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler

	httpServer *http.Server
}

func New(cfg *config.Config, postgres *storage.Postgres, redis *storage.RedisClient) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Repositories
	userRepo := repository.NewUserRepository(postgres)
	productRepo := repository.NewProductRepository(postgres)
	purchaseRepo := repository.NewPurchaseRepository(postgres)
	topupRepo := repository.NewTopUpRepository(postgres)
	adminRepo := repository.NewAdminRepository(postgres)

	// Upstream clients
	luarmor := upstream.NewLuarmorClient(cfg.Luarmor.BaseURL, cfg.Luarmor.APIKey, cfg.Luarmor.Timeout)
	truemoney := upstream.NewTrueMoneyClient(cfg.TrueMoney.BaseURL, cfg.TrueMoney.PhoneTopup, cfg.TrueMoney.Timeout)
	captcha := upstream.NewHcaptchaVerifier(cfg.Hcaptcha.Secret, cfg.Hcaptcha.VerifyURL)
	versions := upstream.NewVersionsClient("")

	// Services
	authService := service.NewAuthService(adminRepo, userRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiryHours)
	licenseService := service.NewLicenseService(luarmor, userRepo)
	purchaseService := service.NewPurchaseService(luarmor, userRepo, productRepo, purchaseRepo)
	topupService := service.NewTopUpService(truemoney, userRepo, topupRepo)

	limiter := ratelimit.NewLimiter(
		cfg.RateLimit.Store,
		redis,
		cfg.RateLimit.MaxRequests,
		cfg.RateLimit.Window,
		cfg.RateLimit.SweepInterval,
	)

	s := &Server{
		router:          router,
		config:          cfg,
		redis:           redis,
		postgres:        postgres,
		limiter:         limiter,
		authService:     authService,
		keyHandler:      handler.NewKeyHandler(licenseService, captcha),
		purchaseHandler: handler.NewPurchaseHandler(purchaseService),
		topupHandler:    handler.NewTopUpHandler(topupService),
		productHandler:  handler.NewProductHandler(productRepo, purchaseRepo),
		historyHandler:  handler.NewHistoryHandler(purchaseRepo, topupRepo),
		versionsHandler: handler.NewVersionsHandler(versions),
		authHandler:     handler.NewAuthHandler(authService, cfg.Auth.AdminBootstrap),
		userHandler:     handler.NewUserHandler(userRepo),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Admission order matters: origin check, then rate limit, then per-surface
// credential checks on the route groups. The health check path is exempt
// inside each middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.OriginCheck(s.config.AllowedOrigins, s.config.ServerAgentMarkers))
	s.router.Use(middleware.RateLimit(s.limiter))
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthCheck)

	// Machine surface: shared-secret x-api-key.
	machine := s.router.Group("/", middleware.APIKeyCheck(s.config.LocalAPIKey))
	{
		machine.POST("/create-key", s.keyHandler.CreateKey)
		machine.GET("/get-user-key", s.keyHandler.GetUserKey)
		machine.POST("/auth/session", s.authHandler.Session)
	}

	// Storefront surface: bearer session.
	api := s.router.Group("/api", middleware.RequireSession(s.authService))
	{
		api.POST("/purchase", s.purchaseHandler.Purchase)
		api.POST("/topup/truemoney-angpao", s.topupHandler.RedeemAngpao)
		api.GET("/history/purchase", s.historyHandler.PurchaseHistory)
		api.GET("/history/topup", s.historyHandler.TopUpHistory)
	}
	s.router.POST("/reset-hwid", middleware.RequireSession(s.authService), s.keyHandler.ResetHWID)

	// Public storefront data.
	s.router.GET("/api/products", s.productHandler.List)
	s.router.GET("/api/versions", s.versionsHandler.Current)

	// Admin
	s.router.POST("/auth/register", s.authHandler.Register)
	s.router.POST("/auth/login", s.authHandler.Login)

	admin := s.router.Group("/admin", middleware.RequireAdmin(s.authService))
	{
		admin.POST("/products", s.productHandler.Create)
		admin.PATCH("/products/:id", s.productHandler.Update)
		admin.POST("/users/grant-points", s.userHandler.GrantPoints)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	redisHealthy := true
	if s.redis != nil {
		if err := s.redis.Ping(c.Request.Context()); err != nil {
			redisHealthy = false
			log.Printf("Redis health check failed: %v", err)
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !dbHealthy || !redisHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "license-gateway",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"database": dbHealthy,
			"redis":    redisHealthy,
		},
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // upstream mint calls can run long
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting license gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if stoppable, ok := s.limiter.(*ratelimit.MemoryFixedWindow); ok {
		stoppable.Stop()
	}

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
