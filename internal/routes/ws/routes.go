package ws

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/ws"
)

func handleWs(c *websocket.Conn) {
	manager := c.Locals("games").(*game.Manager) //nolint: errcheck

	h := ws.NewHandler(c, manager)
	err := h.Handle()
	if err != nil {
		slog.Debug("ws handle error", "error", err)
	}
}

// upgradeOnly rejects plain HTTP requests to the websocket endpoint.
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SetupRoutes sets up the routes for the websocket.
func SetupRoutes(app *fiber.App) {
	app.Get("/ws", upgradeOnly, websocket.New(handleWs))
}
