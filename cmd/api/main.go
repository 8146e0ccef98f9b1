package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/handlers"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	storageService := services.NewStorageService(cfg)
	assetService := services.NewAssetService(db, storageService)
	settingsService := services.NewSettingsService(db, cfg)
	thumbnailService := services.NewThumbnailService(cfg)
	describerService := services.NewDescriberService(cfg, settingsService)
	mediaService := services.NewMediaService(cfg, assetService, storageService, thumbnailService, describerService)

	// Start periodic thumbnail backfill worker
	if cfg.ThumbnailBackfillEnabled {
		go func() {
			// Initial delay to let the server start first
			time.Sleep(30 * time.Second)
			for {
				generated, failed, err := mediaService.BackfillThumbnails(context.Background())
				if err != nil {
					log.Printf("Thumbnail backfill error: %v", err)
				} else if generated > 0 || failed > 0 {
					log.Printf("Thumbnail backfill: %d generated, %d failed", generated, failed)
				}
				time.Sleep(cfg.ThumbnailBackfillInterval)
			}
		}()
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService, assetService, storageService)
	publicHandler := handlers.NewPublicHandler(assetService, storageService)
	adminHandler := handlers.NewAdminHandler(mediaService, settingsService)

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Public routes (anonymous)
		public := api.Group("/public")
		{
			public.GET("/media", publicHandler.ListMedia)
			public.GET("/media/videos", publicHandler.ListVideos)
			public.GET("/media/videos/:publicId", publicHandler.GetVideo)
			public.GET("/media/:publicId", publicHandler.GetMedia)
			public.GET("/media/:publicId/file", publicHandler.DownloadMedia)
			public.GET("/media/:publicId/thumbnail", publicHandler.ServeThumbnail)
		}

		// Owner routes
		user := api.Group("/user")
		user.Use(middleware.Auth(cfg))
		{
			user.GET("/media", mediaHandler.ListOwn)
			user.GET("/media/:id", mediaHandler.GetDetails)
			user.PUT("/media/:id", mediaHandler.UpdateMetadata)
			user.POST("/media/:id/publish", mediaHandler.Publish)
			user.POST("/media/:id/unpublish", mediaHandler.Unpublish)
			user.DELETE("/media/:id", mediaHandler.Delete)

			// Upload with per-user daily rate limit
			uploadGroup := user.Group("")
			uploadGroup.Use(middleware.UploadRateLimit(redisClient, cfg))
			{
				uploadGroup.POST("/media", mediaHandler.Upload)
			}
		}

		// Download by internal id: public assets for anyone, private ones
		// for their owner only
		download := api.Group("/media")
		download.Use(middleware.OptionalAuth(cfg))
		{
			download.GET("/:id/download", mediaHandler.Download)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(cfg))
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/media/backfill-thumbnails", adminHandler.BackfillThumbnails)
			admin.GET("/settings/describer-endpoint", adminHandler.GetDescriberEndpoint)
			admin.PUT("/settings/describer-endpoint", adminHandler.UpdateDescriberEndpoint)
		}
	}

	// Start server. Write timeout stays generous for large media transfers;
	// the upload size ceiling itself is configuration, not a server limit.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
