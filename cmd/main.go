package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"health-claims/internal/ai"
	"health-claims/internal/analysis"
	"health-claims/internal/auth"
	"health-claims/internal/cache"
	"health-claims/internal/database"
	"health-claims/internal/handlers"
	"health-claims/internal/services"
	"health-claims/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Wire the analysis pipeline to the configured AI provider
	provider := ai.NewProvider(ai.FactoryConfig{
		Provider:      os.Getenv("AI_PROVIDER"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		PerplexityKey: os.Getenv("PERPLEXITY_API_KEY"),
		Model:         os.Getenv("AI_MODEL"),
	})
	pipeline := analysis.NewPipeline(provider, provider, pipelineConfig())

	influencersService := services.NewInfluencersService(database.DB, pipeline)

	// Initialize and start the re-analysis scheduler
	workerService := worker.NewWorkerService(database.DB, influencersService, worker.DefaultConfig())
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background workers:", err)
	}

	// Optional Redis cache for the hot read endpoints
	var readCache *cache.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c, err := cache.New(redisURL, cacheTTL())
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		readCache = c
		defer readCache.Close()
	} else {
		log.Println("REDIS_URL not set, response caching disabled")
	}

	// Optional token guard for mutating endpoints
	var tokens *auth.TokenService
	if secret := os.Getenv("SERVICE_TOKEN_SECRET"); secret != "" {
		tokens = auth.NewTokenService(secret)
	} else {
		log.Println("SERVICE_TOKEN_SECRET not set, mutating endpoints are unguarded")
	}

	// Setup graceful shutdown
	setupGracefulShutdown(workerService, readCache)

	// Setup HTTP server
	setupServer(influencersService, readCache, tokens)
}

func pipelineConfig() analysis.Config {
	cfg := analysis.DefaultConfig()
	if v, err := strconv.Atoi(os.Getenv("ANALYSIS_MAX_CONCURRENT")); err == nil && v > 0 {
		cfg.MaxConcurrent = v
	}
	return cfg
}

func cacheTTL() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("CACHE_TTL_SECONDS")); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return 5 * time.Minute
}

func setupGracefulShutdown(workerService *worker.WorkerService, readCache *cache.Cache) {
	// Setup signal handling for graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		// Stop background workers
		workerService.Stop()

		// Close cache and database connections
		readCache.Close()
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(service *services.InfluencersService, readCache *cache.Cache, tokens *auth.TokenService) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	influencersHandler := handlers.NewInfluencersHandler(service, readCache, tokens)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", influencersHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/docs", docsHandler.ServeMarkdownAsHTML)
	r.GET("/docs/:doc", docsHandler.ServeMarkdownAsHTML)

	// Influencer API
	influencers := r.Group("/influencers")
	{
		influencers.GET("", influencersHandler.List)
		influencers.GET("/search", influencersHandler.Search)
		influencers.GET("/leaderboard", influencersHandler.Leaderboard)
		influencers.GET("/claims/trending", influencersHandler.Trending)
		influencers.GET("/stats/categories", influencersHandler.CategoryStats)
		influencers.GET("/utils/sources", influencersHandler.Sources)
		influencers.GET("/utils/platforms", influencersHandler.Platforms)
		influencers.GET("/utils/categories", influencersHandler.Categories)
		influencers.POST("/compare", influencersHandler.Compare)

		influencers.GET("/:id", influencersHandler.Get)
		influencers.GET("/:id/analysis", influencersHandler.Analysis)
		influencers.GET("/:id/timeline", influencersHandler.Timeline)
		influencers.GET("/:id/claims/categories", influencersHandler.ClaimsByCategory)
		influencers.GET("/:id/social-metrics", influencersHandler.SocialMetrics)

		guarded := influencers.Group("", influencersHandler.RequireToken())
		{
			guarded.POST("", influencersHandler.Create)
			guarded.PUT("/:id", influencersHandler.Update)
			guarded.DELETE("/:id", influencersHandler.Delete)
			guarded.POST("/:id/analyze", influencersHandler.Analyze)
		}
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
