package main

import (
	"context"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/GBurchell27/Dynamic-subdomains/internal/handler"
	"github.com/GBurchell27/Dynamic-subdomains/internal/middleware"
	"github.com/GBurchell27/Dynamic-subdomains/internal/mmm"
	"github.com/GBurchell27/Dynamic-subdomains/internal/store"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/config"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/database"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/jwtutil"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/logger"
	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting MMM platform service...", cfg.LogConfig()...)

	// Collaborator stores: gorm-backed against PostgreSQL, or in-memory
	// demo mode when STORE_BACKEND=memory.
	var (
		tenants   store.TenantDirectory
		users     store.UserStore
		marketing store.MarketingStore
	)
	if os.Getenv("STORE_BACKEND") == "memory" {
		log.Info("Using in-memory demo stores")
		tenants = store.NewMemoryTenantDirectory()
		users = store.NewMemoryUserStore()
		marketing = store.NewMemoryMarketingStore()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		log.Info("Database connection established")
		tenants = store.NewGormTenantDirectory(db)
		users = store.NewGormUserStore(db)
		marketing = store.NewGormMarketingStore(db)
	}

	if err := store.SeedDemoData(context.Background(), tenants, users, marketing); err != nil {
		log.Fatal("Failed to seed demo data", zap.Error(err))
	}
	log.Info("Demo data seeded")

	// Token codec shares the process-wide signing key
	tokens := jwtutil.New(&cfg.JWT)

	// Authorization middleware
	resolver := middleware.NewTenantResolver(cfg.Tenant.ReservedSubdomains)
	auth := middleware.NewAuth(tokens)
	tenantGuard := middleware.NewTenantGuard(tenants)

	// Handlers with injected collaborators
	authHandler := handler.NewAuthHandler(users, tenants, tokens)
	adminHandler := handler.NewAdminHandler(tenants, cfg.Tenant.DefaultFeatures)
	tenantHandler := handler.NewTenantHandler(marketing, mmm.NewStubEngine())

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters: the tenant must be
	// resolved before any credential check can reconcile against it.
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(resolver.Middleware())

	// Public routes - no authentication required
	e.GET("/", handler.Root)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, auth.Authenticate)

	// Admin routes - authenticated admin scope only
	admin := e.Group("/admin", auth.Authenticate, middleware.RequireAdmin)
	admin.GET("/tenants", adminHandler.ListTenants)
	admin.POST("/tenants", adminHandler.CreateTenant)
	admin.GET("/tenants/:id", adminHandler.GetTenant)
	admin.GET("/statistics", adminHandler.Statistics)

	// Tenant routes - tenant scope resolves first so a missing tenant
	// surfaces as Not-Found regardless of credentials, then the bearer
	// token is verified against the resolved tenant.
	tenant := e.Group("/tenant", tenantGuard.RequireTenant, auth.Authenticate)
	tenant.GET("/dashboard/metrics", tenantHandler.DashboardMetrics)
	tenant.POST("/data/upload", tenantHandler.UploadData)
	tenant.POST("/analysis/run", tenantHandler.RunAnalysis)
	tenant.GET("/analysis/:id", tenantHandler.GetAnalysis)
	tenant.GET("/recommendations", tenantHandler.Recommendations)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
