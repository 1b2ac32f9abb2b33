package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/repository"
	"github.com/lk16/reversi/internal/search"
)

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, repository.ErrSaveNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, othello.ErrInvalidMove),
		errors.Is(err, othello.ErrInvalidBoardState),
		errors.Is(err, search.ErrInvalidLevel):
		return fiber.StatusBadRequest
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotHumanTurn),
		errors.Is(err, game.ErrNothingToUndo),
		errors.Is(err, game.ErrNothingToRedo),
		errors.Is(err, search.ErrSearchInProgress):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
