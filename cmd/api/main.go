package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/easyrail/easyrail_core/internal/api"
	"github.com/easyrail/easyrail_core/internal/cache"
	"github.com/easyrail/easyrail_core/internal/config"
	"github.com/easyrail/easyrail_core/internal/db"
	"github.com/easyrail/easyrail_core/internal/directory"
	"github.com/easyrail/easyrail_core/internal/livestatus"
	"github.com/easyrail/easyrail_core/internal/middleware"
	"github.com/easyrail/easyrail_core/internal/upstream"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yml (default: $EASYRAIL_CONFIG or ./config.yml)")
	flag.Parse()

	log.Println("Starting EasyRail API server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	checks := map[string]api.Check{}
	stats := map[string]func() map[string]interface{}{}

	// Station and train directory
	var dir api.Directory
	if getEnv("DIRECTORY_BACKEND", "postgres") == "memory" {
		mem, err := loadMemoryDirectory()
		if err != nil {
			log.Fatalf("Failed to load directory files: %v", err)
		}
		dir = mem
		log.Println("✓ Directory loaded from files")
	} else {
		pool, err := db.GetDB()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		dir = directory.NewStore(pool)
		checks["database"] = db.HealthCheck
		stats["database"] = db.PoolStats
		log.Println("✓ Database connection established")
	}

	// Shared cache
	var backend interface {
		cache.Backend
		middleware.Counter
	}
	lockTTL := cache.LoadConfigFromEnv().MutexTTL
	if getEnv("CACHE_BACKEND", "redis") == "memory" {
		backend = cache.NewMemoryBackend()
		log.Println("✓ Using in-process cache")
	} else {
		client, err := cache.GetClient()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
		backend = cache.NewRedisBackend(client)
		checks["redis"] = cache.HealthCheck
		stats["redis"] = cache.PoolStats
		log.Println("✓ Redis connection established")
	}

	store := cache.NewStore(backend, cfg.Cache.LocalSize, cfg.Cache.LocalTTL())
	if lockTTL > 0 {
		store.LockTTL = lockTTL
	}

	client := upstream.New(cfg.Upstream)

	live := livestatus.NewService(client, store, livestatus.Options{
		Interval:   cfg.LiveStatus.RefreshInterval(),
		TTL:        cfg.Cache.LiveTTL(),
		MaxWatches: cfg.LiveStatus.MaxWatches,
	})
	defer live.Close()

	handler := api.New(api.Deps{
		Upstream:  client,
		Directory: dir,
		Live:      live,
		Cache:     store,
		TTL:       cfg.Cache,
		Checks:    checks,
		Stats:     stats,
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "EasyRail API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Upstream.Timeout() + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(compress.New())
	app.Use("/v1", middleware.RateLimit(backend, middleware.Limits{
		PerSecond: cfg.RateLimit.PerSecond,
		PerDay:    cfg.RateLimit.PerDay,
	}))

	handler.Register(app)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		live.Close()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("🚆 Trains between: http://localhost%s/v1/trains/between?from=NDLS&to=HWH", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadMemoryDirectory reads STATIONS_FILE and TRAINS_FILE
func loadMemoryDirectory() (*directory.Memory, error) {
	stations, err := directory.ParseStationsFile(getEnv("STATIONS_FILE", "data/stations.json"))
	if err != nil {
		return nil, err
	}
	trains, err := directory.ParseTrainsFile(getEnv("TRAINS_FILE", "data/trains.json"))
	if err != nil {
		return nil, err
	}

	return directory.NewMemory(stations, trains), nil
}

// customErrorHandler handles errors returned from handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
