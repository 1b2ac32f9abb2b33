package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/repository"
)

// GetStats returns the results of finished games per mode and difficulty.
func GetStats(c *fiber.Ctx) error {
	repo := repository.NewStatsRepository(c)
	stats, err := repo.GetStats(c.Context())
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
