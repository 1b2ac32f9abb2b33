package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/routes/api"
	"github.com/lk16/reversi/internal/routes/version"
	"github.com/lk16/reversi/internal/routes/ws"
)

type statusResponse struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}

func rootHandler(c *fiber.Ctx) error {
	manager := c.Locals("games").(*game.Manager) //nolint: errcheck

	return c.JSON(statusResponse{Status: "ok", Games: manager.Len()})
}

func SetupRoutes(app *fiber.App) {
	// Serve API routes
	api.SetupRoutes(app)

	// Serve game events
	ws.SetupRoutes(app)

	// Serve version info
	version.SetupRoutes(app)

	// Serve status
	app.Get("/", rootHandler)
}
