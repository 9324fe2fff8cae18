package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darkodi/foodgram/internal/cache"
	"github.com/darkodi/foodgram/internal/config"
	"github.com/darkodi/foodgram/internal/handler"
	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/middleware"
	"github.com/darkodi/foodgram/internal/repository"
	"github.com/darkodi/foodgram/internal/service"
	"github.com/darkodi/foodgram/internal/shortcode"
)

func main() {
	// ============================================================
	// LOAD CONFIGURATION
	// ============================================================
	fmt.Println("📋 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if cfg.IsDevelopment() {
		fmt.Printf("   Environment: %s\n", cfg.App.Environment)
		fmt.Printf("   Port: %s\n", cfg.Server.Port)
		fmt.Printf("   Database: %s\n", cfg.Database.Driver)
		fmt.Printf("   Base URL: %s\n", cfg.App.BaseURL)
	}

	// ============================================================
	// INITIALIZE LOGGER
	// ============================================================
	log := logger.New(cfg.Log)

	log.Info("starting foodgram",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
		"environment", cfg.App.Environment)

	// ============================================================
	// INITIALIZE LAYERS
	// ============================================================
	fmt.Println("🗄️  Connecting to database...")
	repo, err := repository.New(&cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "driver", cfg.Database.Driver, "error", err.Error())
		os.Exit(1)
	}

	// The cache is optional; a nil interface value keeps it out of the path.
	var linkCache service.LinkCache
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis...", "addr", cfg.Redis.Addr)
		redisCache, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Error("failed to connect to Redis", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("failed to close Redis client", "error", err.Error())
			}
		}()
		linkCache = redisCache
		log.Info("Redis connected")
	}

	fmt.Println("⚙️  Initializing services...")
	users := service.NewUserService(repo)
	gen := shortcode.NewGenerator(cfg.ShortLink.Length)
	links := service.NewShortLinkService(
		repo,
		gen,
		linkCache,
		cfg.App.BaseURL,
		cfg.ShortLink.MaxAttempts,
		log,
	)
	log.Info("short links configured",
		"length", cfg.ShortLink.Length,
		"capacity", gen.Capacity(),
		"max_attempts", cfg.ShortLink.MaxAttempts)

	h := handler.New(handler.Services{
		Recipes: service.NewRecipeService(repo, users, log),
		Catalog: service.NewCatalogService(repo),
		Cart:    service.NewCartService(repo),
		Users:   users,
		Links:   links,
		DB:      repo,
	}, log)

	fmt.Println("🌐 Setting up HTTP handlers...")
	router := h.Routes(users, promhttp.Handler())

	// ============================================================
	// BUILD MIDDLEWARE CHAIN
	// ============================================================
	middlewares := []middleware.Middleware{
		middleware.RequestID,
		middleware.RecoveryWithLogger(log),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	}
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			middleware.RateLimiterConfig{
				Rate:    cfg.RateLimit.Rate,
				Burst:   cfg.RateLimit.Burst,
				Cleanup: cfg.RateLimit.Cleanup,
			},
			log,
		)
		defer rateLimiter.Stop()
		middlewares = append(middlewares, rateLimiter.Middleware())
		log.Info("rate limiter enabled",
			"rate", cfg.RateLimit.Rate,
			"burst", cfg.RateLimit.Burst,
		)
	}

	wrappedRouter := middleware.Chain(router, middlewares...)

	// ============================================================
	// CREATE SERVER WITH CONFIG TIMEOUTS
	// ============================================================
	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      wrappedRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	go func() {
		if cfg.IsDevelopment() {
			fmt.Printf("🚀 Server starting on http://localhost%s\n", addr)
			fmt.Println("───────────────────────────────────────")
			fmt.Println("Endpoints:")
			fmt.Println("  GET  /api/recipes                        - List recipes")
			fmt.Println("  POST /api/recipes                        - Create recipe")
			fmt.Println("  GET  /api/recipes/{id}/get-link          - Short link")
			fmt.Println("  GET  /api/recipes/download_shopping_cart - Shopping list")
			fmt.Println("  GET  /s/{token}                          - Redirect to recipe")
			fmt.Println("  GET  /health                             - Health check")
			fmt.Println("  GET  /metrics                            - Prometheus metrics")
			fmt.Println("───────────────────────────────────────")
			fmt.Println("Press Ctrl+C to shutdown gracefully")
		}
		log.Info("server starting", "addr", "http://localhost"+addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ============================================================
	// WAIT FOR SHUTDOWN OR ERROR
	// ============================================================
	select {
	case err := <-serverErr:
		log.Error("server error", "error", err.Error())
		repo.Close()
		os.Exit(1)

	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "error", err.Error())
			if err := server.Close(); err != nil {
				log.Error("forced shutdown failed", "error", err.Error())
			}
		}

		if err := repo.Close(); err != nil {
			log.Error("failed to close database", "error", err.Error())
		}

		log.Info("server stopped")
	}
}
