package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-inventory-api/internal/handler"
	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/internal/ws"
	"go-inventory-api/pkg/config"
	"go-inventory-api/pkg/database"
	"go-inventory-api/pkg/jwt"
	"go-inventory-api/pkg/logger"
	"go-inventory-api/pkg/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// 1. Load Env
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.AppEnv)

	// 2. Setup Database
	sqlLevel := gormlogger.Info
	if cfg.IsProduction() {
		sqlLevel = gormlogger.Warn
	}
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), LogLevel: sqlLevel})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpiry)

	productRepo := repository.NewProductRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	userRepo := repository.NewUserRepo(db)

	ledger := service.NewStockLedger(productRepo)
	invService := service.NewInventoryService(productRepo, ledger, db, wsHub)
	purchaseService := service.NewPurchaseService(productRepo, purchaseRepo, ledger, db, wsHub)
	dashService := service.NewDashboardService(purchaseRepo)
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo)

	invHandler := handler.NewInventoryHandler(invService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventario API v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigin}))
	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// 6. Routes
	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))
	requireAuth := middleware.RequireAuth(userRepo, tokens)
	admin := middleware.RequireRole(model.RoleAdmin)
	client := middleware.RequireRole(model.RoleClient)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/profile", requireAuth, userHandler.GetProfile)
	auth.Put("/profile", requireAuth, userHandler.UpdateProfile)

	// ============ PROTECTED ROUTES ============
	products := api.Group("/products", requireAuth)
	products.Get("/catalog", client, middleware.RequirePrivilege(model.PrivCatalogView), invHandler.GetCatalog)
	products.Get("/", admin, middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProducts)
	products.Get("/:id", admin, middleware.RequirePrivilege(model.PrivProductView), invHandler.GetProduct)
	products.Post("/", admin, middleware.RequirePrivilege(model.PrivProductCreate), invHandler.CreateProduct)
	products.Put("/:id", admin, middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.UpdateProduct)
	products.Post("/:id/restock", admin, middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.RestockProduct)
	products.Delete("/:id", admin, middleware.RequirePrivilege(model.PrivProductRetire), invHandler.DeleteProduct)

	purchases := api.Group("/purchases", requireAuth)
	purchases.Post("/", client, middleware.RequirePrivilege(model.PrivPurchaseCreate), purchaseHandler.CreatePurchase)
	purchases.Get("/my-purchases", client, middleware.RequirePrivilege(model.PrivPurchaseOwn), purchaseHandler.GetMyPurchases)
	purchases.Get("/invoice/:id", client, middleware.RequirePrivilege(model.PrivPurchaseOwn), purchaseHandler.GetInvoice)
	purchases.Get("/admin/all", admin, middleware.RequirePrivilege(model.PrivPurchaseViewAll), purchaseHandler.GetAllPurchases)

	dashboard := api.Group("/dashboard", requireAuth, admin, middleware.RequirePrivilege(model.PrivDashboardView))
	dashboard.Get("/stats", dashHandler.GetDashboardStats)
	dashboard.Get("/sales-movement", dashHandler.GetSalesMovement)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Panic("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}
