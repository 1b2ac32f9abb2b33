package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/services"
)

// RequireServices rejects requests when the app runs without Postgres and Redis.
func RequireServices() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s, ok := c.Locals("services").(*services.Services); !ok || s == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "storage is not available",
			})
		}

		return c.Next()
	}
}
