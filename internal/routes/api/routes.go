package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/middleware"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(app *fiber.App) {
	apiGroup := app.Group("/api", middleware.AuthOrToken())

	// Game routes
	apiGroup.Post("/games", CreateGame)
	apiGroup.Get("/games/:id", GetGame)
	apiGroup.Delete("/games/:id", DeleteGame)
	apiGroup.Post("/games/:id/moves", PlayMove)
	apiGroup.Post("/games/:id/ai-move", PlayAIMove)
	apiGroup.Post("/games/:id/undo", Undo)
	apiGroup.Post("/games/:id/redo", Redo)
	apiGroup.Get("/games/:id/analysis", Analyze)

	// Routes backed by Postgres and Redis
	storage := middleware.RequireServices()
	apiGroup.Post("/games/:id/save", storage, SaveGame)
	apiGroup.Get("/saves", storage, ListSaves)
	apiGroup.Post("/saves/:id/load", storage, LoadGame)
	apiGroup.Delete("/saves/:id", storage, DeleteSave)
	apiGroup.Get("/stats", storage, GetStats)
}
