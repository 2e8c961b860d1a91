package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"repairhub/internal/authprovider"
	"repairhub/internal/handler"
	"repairhub/internal/middleware"
	"repairhub/internal/model"
	"repairhub/internal/provisioning"
	"repairhub/pkg/config"
	"repairhub/pkg/database"
	"repairhub/pkg/jwtutil"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting repairhub...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.Initialize(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Wire dependencies explicitly
	auth := authprovider.NewLocal(db)
	store := provisioning.NewGormStore(db)
	provisioningSvc := provisioning.New(store, auth, cfg.Provisioning, log)

	registerHandler := handler.NewRegisterHandler(provisioningSvc)
	adminHandler := handler.NewAdminHandler(provisioningSvc, db)
	authHandler := handler.NewAuthHandler(db, auth)
	customerHandler := handler.NewCustomerHandler(db)
	deviceHandler := handler.NewDeviceHandler(db)
	repairHandler := handler.NewRepairHandler(db)
	inventoryHandler := handler.NewInventoryHandler(db)
	saleHandler := handler.NewSaleHandler(db)
	unlockHandler := handler.NewUnlockHandler(db)
	settingsHandler := handler.NewSettingsHandler(db)
	dashboardHandler := handler.NewDashboardHandler(db)
	reportHandler := handler.NewReportHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.Metrics)
	e.POST("/register", registerHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// API routes - all require authentication
	api := e.Group("/api")

	// Self-service profile routes - any authenticated user
	users := api.Group("/users", middleware.RequireAuth(db))
	users.GET("/profile", authHandler.GetProfile)
	users.PATCH("/profile", authHandler.UpdateProfile)
	users.POST("/change-password", authHandler.ChangePassword)

	// Admin routes - super admin only
	admin := api.Group("/admin", middleware.RequireAuth(db,
		middleware.AllowRoles(model.RoleSuperAdmin)))
	admin.GET("/requests", adminHandler.ListRequests)
	admin.POST("/requests/approve", adminHandler.ApproveRequest)
	admin.POST("/requests/reject", adminHandler.RejectRequest)
	admin.GET("/organizations", adminHandler.ListOrganizations)

	// Tenant routes - owner and technician, super admin may pass through
	tenantGuard := middleware.RequireAuth(db,
		middleware.AllowRoles(model.RoleOwner, model.RoleTechnician),
		middleware.WithSuperAdminBypass())

	customers := api.Group("/customers", tenantGuard)
	customers.GET("", customerHandler.ListCustomers)
	customers.GET("/:id", customerHandler.GetCustomer)
	customers.POST("", customerHandler.CreateCustomer)
	customers.PATCH("/:id", customerHandler.UpdateCustomer)
	customers.DELETE("/:id", customerHandler.DeleteCustomer)

	devices := api.Group("/devices", tenantGuard)
	devices.GET("", deviceHandler.ListDevices)
	devices.GET("/:id", deviceHandler.GetDevice)
	devices.POST("", deviceHandler.CreateDevice)
	devices.PATCH("/:id", deviceHandler.UpdateDevice)
	devices.DELETE("/:id", deviceHandler.DeleteDevice)

	repairs := api.Group("/repairs", tenantGuard)
	repairs.GET("", repairHandler.ListRepairs)
	repairs.GET("/:id", repairHandler.GetRepair)
	repairs.POST("", repairHandler.CreateRepair)
	repairs.PATCH("/:id", repairHandler.UpdateRepair)
	repairs.DELETE("/:id", repairHandler.DeleteRepair)

	inventory := api.Group("/inventory", tenantGuard)
	inventory.GET("", inventoryHandler.ListItems)
	inventory.GET("/:id", inventoryHandler.GetItem)
	inventory.POST("", inventoryHandler.CreateItem)
	inventory.PATCH("/:id", inventoryHandler.UpdateItem)
	inventory.DELETE("/:id", inventoryHandler.DeleteItem)

	sales := api.Group("/sales", tenantGuard)
	sales.GET("", saleHandler.ListSales)
	sales.GET("/:id", saleHandler.GetSale)
	sales.POST("", saleHandler.CreateSale)
	sales.DELETE("/:id", saleHandler.DeleteSale)

	unlocks := api.Group("/unlocks", tenantGuard)
	unlocks.GET("", unlockHandler.ListUnlocks)
	unlocks.GET("/:id", unlockHandler.GetUnlock)
	unlocks.POST("", unlockHandler.CreateUnlock)
	unlocks.PATCH("/:id", unlockHandler.UpdateUnlockStatus)
	unlocks.DELETE("/:id", unlockHandler.DeleteUnlock)

	// Settings: reads for the whole shop, writes owner-only
	settings := api.Group("/settings", tenantGuard)
	settings.GET("", settingsHandler.ListSettings)
	settingsWrite := api.Group("/settings", middleware.RequireAuth(db,
		middleware.AllowRoles(model.RoleOwner),
		middleware.WithSuperAdminBypass()))
	settingsWrite.PUT("", settingsHandler.UpsertSetting)

	dashboard := api.Group("/dashboard", tenantGuard)
	dashboard.GET("/stats", dashboardHandler.GetStats)

	reports := api.Group("/reports", tenantGuard)
	reports.GET("/sales/export", reportHandler.ExportSales)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
