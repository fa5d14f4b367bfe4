package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-portal/internal/auth"
	"marketplace-portal/internal/cleanup"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/events"
	"marketplace-portal/internal/handlers"
	"marketplace-portal/internal/history"
	"marketplace-portal/internal/messaging"
	"marketplace-portal/internal/notifier"
	"marketplace-portal/internal/observability"
	"marketplace-portal/internal/ratelimit"
	"marketplace-portal/internal/scheduler"
	"marketplace-portal/internal/search"
)

func main() {
	// .env is optional, real deployments use environment variables
	_ = godotenv.Load()

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Database
	mysqlCfg := appConfig.Database.MySQL
	portStr := ""
	if mysqlCfg.Port > 0 {
		portStr = fmt.Sprintf("%d", mysqlCfg.Port)
	}
	gormDB, err := database.NewGormDB(
		getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
		getEnvOrConfig(portStr, "DB_PORT", "3306"),
		getEnvOrConfig(mysqlCfg.User, "DB_USER", "marketplace_user"),
		getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "marketplace_pass"),
		getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "marketplace_db"),
	)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	db := gormDB.DB()

	// Meilisearch
	meilisearchHost := getEnvOrConfig(appConfig.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
	meilisearchKey := getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "masterKey123")
	searchClient := search.NewSearchClient(meilisearchHost, meilisearchKey)
	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: failed to initialize search index: %v", err)
	}

	// Event publisher (noop when AMQP is not configured)
	publisher := events.NewPublisher(
		getEnvOrConfig(appConfig.Events.AMQPURL, "AMQP_URL", ""),
		getEnvOrConfig(appConfig.Events.Exchange, "AMQP_EXCHANGE", "marketplace.events"),
	)
	defer publisher.Close()
	log.Printf("Event publisher mode: %s", events.Mode(publisher))

	// Stores and services
	userRepo := database.NewUserRepo(db)
	listingRepo := database.NewListingRepo(db)
	favoriteRepo := database.NewFavoriteRepo(db)
	conversationRepo := database.NewConversationRepo(db)
	notificationRepo := database.NewNotificationRepo(db)
	imageRepo := database.NewImageRepo(db)

	historyService := history.NewService(db)
	cleanupService := cleanup.NewService(db)
	messagingService := messaging.NewService(conversationRepo, listingRepo, userRepo, notificationRepo)

	// Notification delivery worker
	worker := notifier.NewWorker(notificationRepo, publisher)
	worker.Start()
	defer worker.Stop()

	// Rate limiter for unauthenticated write endpoints
	rateLimiter := ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// Daily maintenance scheduler
	appScheduler := scheduler.NewScheduler(cleanupService, listingRepo, searchClient, rateLimiter, appConfig)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Auth
	jwtSecret := getEnvOrConfig(appConfig.Auth.JWTSecret, "JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT secret is not configured (auth.jwt_secret or JWT_SECRET)")
	}
	issuer := auth.NewTokenIssuer(jwtSecret, appConfig.Auth.TokenTTL())

	// Handlers
	listingDeps := handlers.ListingDeps{
		Listings:      listingRepo,
		Favorites:     favoriteRepo,
		Notifications: notificationRepo,
		History:       historyService,
		Search:        searchClient,
	}
	authHandler := handlers.NewAuthHandler(userRepo, issuer, appConfig.Auth.BcryptCost)
	propertyHandler := handlers.NewPropertyHandler(listingDeps)
	vehicleHandler := handlers.NewVehicleHandler(listingDeps)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, listingRepo)
	imageHandler := handlers.NewImageHandler(imageRepo, listingRepo, appConfig.Upload)
	messageHandler := handlers.NewMessageHandler(messagingService)
	searchHandler := handlers.NewSearchHandler(searchClient)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter)
	adminHandler := handlers.NewAdminHandler(db, listingDeps, conversationRepo, appScheduler, cleanupService, worker)

	// Router
	r := gin.Default()
	r.Use(observability.HTTPMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := r.Group("/api")
	public.Use(auth.OptionalMiddleware(issuer))
	{
		public.POST("/auth/register", ratelimit.Middleware(rateLimiter), authHandler.Register)
		public.POST("/auth/login", ratelimit.Middleware(rateLimiter), authHandler.Login)

		public.GET("/properties", propertyHandler.List)
		public.GET("/properties/:id", propertyHandler.Get)
		public.GET("/vehicles", vehicleHandler.List)
		public.GET("/vehicles/:id", vehicleHandler.Get)

		public.GET("/search", searchHandler.Search)
		public.GET("/search/facets", searchHandler.Facets)

		public.GET("/images", imageHandler.List)
		public.GET("/images/:id", imageHandler.Get)

		public.GET("/ratelimit/stats", rateLimitHandler.GetStats)
	}

	// Authenticated routes
	authed := r.Group("/api")
	authed.Use(auth.Middleware(issuer))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.POST("/properties", propertyHandler.Create)
		authed.PUT("/properties/:id", propertyHandler.Update)
		authed.PATCH("/properties/:id/status", propertyHandler.UpdateStatus)
		authed.DELETE("/properties/:id", propertyHandler.Delete)

		authed.POST("/vehicles", vehicleHandler.Create)
		authed.PUT("/vehicles/:id", vehicleHandler.Update)
		authed.PATCH("/vehicles/:id/status", vehicleHandler.UpdateStatus)
		authed.DELETE("/vehicles/:id", vehicleHandler.Delete)

		authed.GET("/favorites", favoriteHandler.List)
		authed.POST("/favorites", favoriteHandler.Add)
		authed.DELETE("/favorites", favoriteHandler.Remove)

		authed.POST("/images", imageHandler.Upload)
		authed.DELETE("/images/:id", imageHandler.Delete)

		authed.POST("/messages/conversations", messageHandler.StartConversation)
		authed.GET("/messages/conversations", messageHandler.ListConversations)
		authed.GET("/messages/conversations/:id", messageHandler.GetConversation)
		authed.POST("/messages/conversations/:id/messages", messageHandler.SendMessage)
		authed.GET("/messages/unread", messageHandler.UnreadCount)

		authed.GET("/notifications/preferences", notificationHandler.GetPreferences)
		authed.PUT("/notifications/preferences", notificationHandler.UpdatePreferences)
	}

	// Admin-gated reindex, outside the /api/admin prefix
	r.POST("/api/search/reindex", auth.Middleware(issuer), auth.AdminOnly(), adminHandler.ReindexSearch)

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(auth.Middleware(issuer), auth.AdminOnly())
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/price-distribution", adminHandler.GetPriceDistribution)
		admin.GET("/changes/recent", adminHandler.GetRecentChanges)
		admin.GET("/listings/changes", adminHandler.GetListingChanges)
		admin.GET("/review/pending", adminHandler.GetPendingReview)
		admin.POST("/listings/takedown", adminHandler.ForceTakedown)
		admin.POST("/cleanup/run", adminHandler.RunCleanup)
		admin.GET("/cleanup/logs", adminHandler.GetCleanupLogs)
		admin.POST("/maintenance/trigger", adminHandler.TriggerMaintenance)
	}

	port := getEnv("PORT", fmt.Sprintf("%d", appConfig.Server.Port))
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
