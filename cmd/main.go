package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"linkbuilding-service/internal/clients"
	"linkbuilding-service/internal/config"
	"linkbuilding-service/internal/events"
	"linkbuilding-service/internal/handlers"
	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/repository"
	"linkbuilding-service/internal/services"
)

// @title Link Building Management API
// @version 1.0.0
// @description Guest blog site inventory, bulk import, clients, orders and placements with multi-tenant support
// @termsOfService http://swagger.io/terms/

// @contact.name Link Building API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	siteRepo := repository.NewSiteRepository(db, redisClient)
	publisherRepo := repository.NewPublisherRepository(db, redisClient)
	clientRepo := repository.NewClientRepository(db, redisClient)
	orderRepo := repository.NewOrderRepository(db, redisClient)
	assetRepo := repository.NewAssetRepository(db)

	// Initialize event publisher (disabled when NATS_URL is unset)
	eventsPublisher, err := events.Connect(cfg.NATSURL, logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		eventsPublisher = nil
	}
	defer eventsPublisher.Close()

	// Initialize external service clients
	documentClient := clients.NewDocumentClient()

	// Initialize services
	sessionStore := services.NewSessionStore(redisClient)
	uploadService := services.NewUploadService(sessionStore, siteRepo, publisherRepo, logger)

	// Initialize handlers
	sitesHandler := handlers.NewSitesHandler(siteRepo, eventsPublisher, logger)
	publishersHandler := handlers.NewPublishersHandler(publisherRepo, logger)
	clientsHandler := handlers.NewClientsHandler(clientRepo, logger)
	ordersHandler := handlers.NewOrdersHandler(orderRepo, siteRepo, clientRepo, eventsPublisher, logger)
	assetsHandler := handlers.NewAssetsHandler(assetRepo, orderRepo, documentClient, logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, clientRepo, eventsPublisher, logger)
	dashboardHandler := handlers.NewDashboardHandler(siteRepo, orderRepo, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	api.Use(middleware.TenantMiddleware())

	manage := middleware.RequireRole("admin", "manager")

	v1 := api.Group("")
	{
		sites := v1.Group("/sites")
		{
			sites.GET("", sitesHandler.ListSites)
			sites.GET("/categories", sitesHandler.GetCategories)
			sites.GET("/:id", sitesHandler.GetSite)
			sites.POST("", manage, sitesHandler.CreateSite)
			sites.PUT("/:id", manage, sitesHandler.UpdateSite)
			sites.DELETE("/:id", manage, sitesHandler.DeleteSite)

			// Bulk import flow
			imports := sites.Group("/import")
			{
				imports.GET("/template", uploadHandler.GetImportTemplate)
				imports.POST("/upload", manage, uploadHandler.UploadFile)
				imports.PUT("/:sessionId/mapping", manage, uploadHandler.SetMapping)
				imports.GET("/:sessionId/preview", uploadHandler.Preview)
				imports.POST("/:sessionId/commit", manage, uploadHandler.Commit)
				imports.DELETE("/:sessionId", manage, uploadHandler.Discard)
			}
		}

		publishers := v1.Group("/publishers")
		{
			publishers.GET("", publishersHandler.ListPublishers)
			publishers.GET("/:id", publishersHandler.GetPublisher)
			publishers.POST("", manage, publishersHandler.CreatePublisher)
			publishers.PUT("/:id", manage, publishersHandler.UpdatePublisher)
			publishers.DELETE("/:id", manage, publishersHandler.DeletePublisher)
		}

		clientsGroup := v1.Group("/clients")
		{
			clientsGroup.GET("", clientsHandler.ListClients)
			clientsGroup.GET("/:id", clientsHandler.GetClient)
			clientsGroup.POST("", manage, clientsHandler.CreateClient)
			clientsGroup.PUT("/:id", manage, clientsHandler.UpdateClient)
			clientsGroup.DELETE("/:id", manage, clientsHandler.DeleteClient)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", ordersHandler.ListOrders)
			orders.GET("/:id", ordersHandler.GetOrder)
			orders.POST("", manage, ordersHandler.CreateOrder)
			orders.PUT("/:id", manage, ordersHandler.UpdateOrder)
			orders.PUT("/:id/status", manage, ordersHandler.UpdateOrderStatus)
			orders.DELETE("/:id", manage, ordersHandler.DeleteOrder)

			orders.GET("/:id/placements", ordersHandler.ListPlacements)
			orders.POST("/:id/placements", manage, ordersHandler.CreatePlacement)

			orders.GET("/:id/assets", assetsHandler.ListAssets)
			orders.POST("/:id/assets/presign", manage, assetsHandler.PresignUpload)
			orders.POST("/:id/assets", manage, assetsHandler.RegisterAsset)
		}

		placements := v1.Group("/placements")
		{
			placements.PUT("/:id", manage, ordersHandler.UpdatePlacement)
		}

		assets := v1.Group("/assets")
		{
			assets.DELETE("/:id", manage, assetsHandler.DeleteAsset)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/overview", dashboardHandler.GetOverview)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8093"
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Link building service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down linkbuilding-service...")
	log.Println("Link building service stopped")
}
