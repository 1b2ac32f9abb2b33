package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/repository"
)

// SaveGame stores a running game in Postgres.
func SaveGame(c *fiber.Ctx) error {
	controller, err := getController(c)
	if err != nil {
		return sendError(c, err)
	}

	var payload models.SaveRequest
	if len(c.Body()) > 0 {
		if err = c.BodyParser(&payload); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	if err = payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	repo := repository.NewSaveRepository(c)
	id, err := repo.Create(c.Context(), payload.Name, controller.Export())
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SaveResponse{ID: id.String()})
}

// ListSaves lists the most recent saves.
func ListSaves(c *fiber.Ctx) error {
	repo := repository.NewSaveRepository(c)
	saves, err := repo.List(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(saves)
}

// LoadGame continues a saved game as a new running game.
func LoadGame(c *fiber.Ctx) error {
	repo := repository.NewSaveRepository(c)
	data, err := repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}

	controller, err := getManager(c).Restore(data)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(controller.State())
}

// DeleteSave removes a save.
func DeleteSave(c *fiber.Ctx) error {
	repo := repository.NewSaveRepository(c)
	if err := repo.Delete(c.Context(), c.Params("id")); err != nil {
		return sendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
