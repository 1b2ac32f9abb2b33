package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/models"
)

const analysisTimeout = 30 * time.Second

func getManager(c *fiber.Ctx) *game.Manager {
	return c.Locals("games").(*game.Manager) //nolint: errcheck
}

func getController(c *fiber.Ctx) (*game.Controller, error) {
	return getManager(c).Get(c.Params("id"))
}

// CreateGame starts a new game.
func CreateGame(c *fiber.Ctx) error {
	var payload models.NewGameRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cfg := c.Locals("config").(*config.ServerConfig) //nolint: errcheck

	settings, err := payload.Settings(cfg.Engine)
	if err != nil {
		return badRequest(c, err.Error())
	}

	controller, err := getManager(c).Create(settings)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(controller.State())
}

// GetGame returns the state of a game.
func GetGame(c *fiber.Ctx) error {
	controller, err := getController(c)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(controller.State())
}

// DeleteGame stops a game.
func DeleteGame(c *fiber.Ctx) error {
	if err := getManager(c).Delete(c.Params("id")); err != nil {
		return sendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PlayMove plays a move of a human player.
func PlayMove(c *fiber.Ctx) error {
	controller, err := getController(c)
	if err != nil {
		return sendError(c, err)
	}

	var payload models.MoveRequest
	if err = c.BodyParser(&payload); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err = payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err = controller.PlayMove(*payload.Row, *payload.Col); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(controller.State())
}

// PlayAIMove lets the computer move for the human to move.
func PlayAIMove(c *fiber.Ctx) error {
	return gameAction(c, (*game.Controller).PlayAIMove)
}

// Undo takes back the last move.
func Undo(c *fiber.Ctx) error {
	return gameAction(c, (*game.Controller).Undo)
}

// Redo replays an undone move.
func Redo(c *fiber.Ctx) error {
	return gameAction(c, (*game.Controller).Redo)
}

func gameAction(c *fiber.Ctx, action func(*game.Controller) error) error {
	controller, err := getController(c)
	if err != nil {
		return sendError(c, err)
	}

	if err = action(controller); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(controller.State())
}

// Analyze scores every legal move. The level defaults to the difficulty of the game.
func Analyze(c *fiber.Ctx) error {
	controller, err := getController(c)
	if err != nil {
		return sendError(c, err)
	}

	level := c.QueryInt("level", controller.Settings().Level)
	if level == 0 {
		cfg := c.Locals("config").(*config.ServerConfig) //nolint: errcheck
		level = cfg.Engine.Difficulty
	}

	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	scores, err := controller.Analyze(ctx, level)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(scores)
}
