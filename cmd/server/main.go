package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"egile/internal/cache"
	"egile/internal/catalog"
	"egile/internal/config"
	"egile/internal/engine"
	"egile/internal/handler"
	"egile/internal/repository"
	"egile/internal/resolver"
	"egile/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Egile Store Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	// Initialize the catalog backend
	var (
		store catalog.Store
		repo  *repository.PostgresRepository
	)
	switch cfg.Catalog.Backend {
	case "postgres":
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
			cfg.Catalog.DefaultCurrency,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		store = repo
		log.Println("✅ Connected to PostgreSQL database")
	case "memory":
		store = catalog.NewMemoryStore(cfg.Catalog.DefaultCurrency)
		log.Println("✅ Using in-memory catalog")
	default:
		log.Fatalf("Unknown catalog backend %q (want memory or postgres)", cfg.Catalog.Backend)
	}

	if cfg.Catalog.SeedDemoData {
		if err := catalog.SeedDemo(ctx, store, cfg.Catalog.SeedFakeProducts); err != nil {
			log.Printf("⚠️  Failed to seed demo data: %v", err)
		} else {
			log.Printf("✅ Seeded demo data (%d fake products)", cfg.Catalog.SeedFakeProducts)
		}
	}

	// Resolution cache: Redis when configured, in-process otherwise
	cacheTTL := time.Duration(cfg.Redis.CacheTTL) * time.Second
	var resolveCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cacheTTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		resolveCache = redisCache
		log.Printf("✅ Redis resolution cache at %s", cfg.Redis.Addr)
	} else {
		resolveCache = cache.NewMemory(cacheTTL)
		log.Println("✅ In-process resolution cache")
	}

	// Entity resolver and rule engines (with and without resolution)
	productResolver := resolver.New(store, resolveCache, cfg.Engine)
	resolvingEngine := engine.New(productResolver, cfg.Engine)
	plainEngine := engine.New(nil, cfg.Engine)

	// Primary AI classifier
	var ai service.AIClient
	if cfg.Grok.Enabled {
		ai = service.NewGrokClient(&cfg.Grok)
		log.Printf("✅ Grok client initialized")
		log.Printf("   - API Base: %s", cfg.Grok.APIBase)
		log.Printf("   - Chat model: %s", cfg.Grok.ChatModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.Grok.ChatTemperature)
		log.Printf("   - Chat MaxTokens: %d", cfg.Grok.ChatMaxTokens)
	} else {
		log.Println("⚠️  Grok is disabled - every message goes through the rule engine")
		log.Println("   Set XAI_API_KEY environment variable to enable the primary classifier")
	}

	// Orchestration
	dispatcher := service.NewDispatcher(store, "", cfg.Catalog.LowStockThreshold)
	var sink service.InterpretSink
	if repo != nil {
		sink = repo
	}
	assistant := service.NewAssistant(ai, resolvingEngine, productResolver, dispatcher, sink, cfg.Engine)

	log.Println("✅ Services initialized")

	// Initialize handlers
	processTimeout := time.Duration(cfg.Engine.ProcessTimeout) * time.Second
	chatHandler := handler.NewChatHandler(assistant, processTimeout)
	interpretHandler := handler.NewInterpretHandler(resolvingEngine, plainEngine)
	catalogHandler := handler.NewCatalogHandler(store, cfg.Catalog.LowStockThreshold)
	wsHandler := handler.NewWSHandler(assistant, processTimeout)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = strings.Split(cfg.Server.AllowedMethods, ",")
	corsConfig.AllowHeaders = strings.Split(cfg.Server.AllowedHeaders, ",")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "egile-store-assistant",
			"backend":    cfg.Catalog.Backend,
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket chat bridge
	router.GET("/ws/chat", wsHandler.Serve)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Assistant endpoints
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream) // Streaming chat
		apiV1.POST("/interpret", interpretHandler.Interpret)

		// Catalog endpoints
		apiV1.GET("/products", catalogHandler.ListProducts)
		apiV1.POST("/products", catalogHandler.CreateProduct)
		apiV1.POST("/products/search", catalogHandler.SearchProducts)
		apiV1.GET("/products/low-stock", catalogHandler.LowStock)
		apiV1.GET("/products/:id", catalogHandler.GetProduct)
		apiV1.PUT("/products/:id/stock", catalogHandler.UpdateStock)

		apiV1.GET("/customers", catalogHandler.ListCustomers)
		apiV1.POST("/customers", catalogHandler.CreateCustomer)
		apiV1.GET("/customers/:id", catalogHandler.GetCustomer)

		apiV1.GET("/orders", catalogHandler.ListOrders)
		apiV1.POST("/orders", catalogHandler.CreateOrder)
		apiV1.GET("/orders/:id", catalogHandler.GetOrder)
		apiV1.PUT("/orders/:id/status", catalogHandler.UpdateOrderStatus)

		// Analytics endpoints
		apiV1.GET("/analytics/best-customer", catalogHandler.BestCustomer)
		apiV1.GET("/analytics/most-sold", catalogHandler.MostSoldProducts)
		apiV1.GET("/analytics/most-expensive", catalogHandler.MostExpensiveProducts)

		// Embedding endpoints, Postgres backend only
		if repo != nil && ai != nil {
			embeddingService := service.NewEmbeddingService(ai, repo, cfg.Grok.BatchSize, cfg.Grok.EmbeddingDimensions)
			embeddingHandler := handler.NewEmbeddingHandler(embeddingService)
			apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
			apiV1.POST("/embeddings/reindex", embeddingHandler.Reindex)
			apiV1.POST("/products/semantic-search", embeddingHandler.SemanticSearch)
		}
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API base: http://localhost:%d/api/v1", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
