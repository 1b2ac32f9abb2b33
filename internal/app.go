package internal

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/middleware"
	"github.com/lk16/reversi/internal/repository"
	"github.com/lk16/reversi/internal/routes"
	"github.com/lk16/reversi/internal/services"
)

const (
	defaultConcurrency  = 256 * 1024 // Maximum number of concurrent connections per worker
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 5 * time.Second
	defaultBodyLimit    = 1024 * 1024 // 1MB
)

func SetupApp() (*fiber.App, *config.ServerConfig) {
	// Load configuration
	config.LoadDotEnv()
	config.SetLogLevel()
	cfg := config.LoadServerConfig()

	// Initialize services
	services, err := services.InitServices(cfg)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	app, err := BuildApp(cfg, services)
	if err != nil {
		slog.Error("Failed to build app", "error", err)
		os.Exit(1)
	}

	return app, cfg
}

// BuildApp creates the Fiber app. Without services the save and stats routes respond with 503.
func BuildApp(cfg *config.ServerConfig, services *services.Services) (*fiber.App, error) {
	var recorder game.StatsRecorder
	if services != nil {
		recorder = repository.NewStatsRepositoryFromServices(services)
	}

	manager, err := game.NewManager(cfg.Engine.SearchConfig(), cfg.Engine.TableCapacity, recorder)
	if err != nil {
		return nil, err
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		Prefork:      cfg.Prefork,
		Concurrency:  defaultConcurrency,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
		BodyLimit:    defaultBodyLimit,
	})

	// Setup connections to external services, config and running games in Fiber app
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("services", services)
		c.Locals("config", cfg)
		c.Locals("games", manager)
		return c.Next()
	})

	// Add logging middleware
	app.Use(middleware.Logging())

	// Setup all routes
	routes.SetupRoutes(app)

	app.Hooks().OnShutdown(func() error {
		manager.CloseAll()

		if services != nil {
			return services.Close()
		}
		return nil
	})

	return app, nil
}
