package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/services"
)

const defaultListLimit = 50

// ErrSaveNotFound is returned when no save with the requested ID exists.
var ErrSaveNotFound = errors.New("save not found")

// SaveRepository stores saved games in Postgres.
type SaveRepository struct {
	services *services.Services
}

// NewSaveRepository creates a new SaveRepository.
func NewSaveRepository(c *fiber.Ctx) *SaveRepository {
	services := c.Locals("services").(*services.Services) //nolint: errcheck

	return &SaveRepository{
		services: services,
	}
}

func NewSaveRepositoryFromServices(services *services.Services) *SaveRepository {
	return &SaveRepository{
		services: services,
	}
}

// Create stores a game and returns the ID of the save.
func (repo *SaveRepository) Create(ctx context.Context, name string, data game.SaveData) (uuid.UUID, error) {
	pgConn := repo.services.Postgres

	record := models.NewSaveRecord(name, data)

	query := `
		INSERT INTO saves (id, name, size, mode, human_side, level, budget_ms, moves, board)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgConn.ExecContext(ctx, query,
		record.ID,
		record.Name,
		record.Size,
		record.Mode,
		record.HumanSide,
		record.Level,
		record.BudgetMs,
		pq.Array([]int(record.Moves)),
		record.Board,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error storing save: %w", err)
	}

	return record.ID, nil
}

// Get loads a save. Corrupt rows are returned as an error wrapping othello.ErrInvalidBoardState.
func (repo *SaveRepository) Get(ctx context.Context, id string) (game.SaveData, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return game.SaveData{}, ErrSaveNotFound
	}

	pgConn := repo.services.Postgres

	query := `
		SELECT id, name, size, mode, human_side, level, budget_ms, moves, board, created_at
		FROM saves
		WHERE id = $1
	`

	var record models.SaveRecord
	if err = pgConn.GetContext(ctx, &record, query, parsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.SaveData{}, ErrSaveNotFound
		}
		return game.SaveData{}, fmt.Errorf("error loading save: %w", err)
	}

	return record.SaveData()
}

// List returns the most recent saves first.
func (repo *SaveRepository) List(ctx context.Context, limit int) ([]models.SaveInfo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	pgConn := repo.services.Postgres

	query := `
		SELECT id, name, size, mode, level, cardinality(moves) AS move_count, created_at
		FROM saves
		ORDER BY created_at DESC
		LIMIT $1
	`

	saves := make([]models.SaveInfo, 0)
	if err := pgConn.SelectContext(ctx, &saves, query, limit); err != nil {
		return nil, fmt.Errorf("error listing saves: %w", err)
	}

	return saves, nil
}

// Delete removes a save.
func (repo *SaveRepository) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrSaveNotFound
	}

	pgConn := repo.services.Postgres

	result, err := pgConn.ExecContext(ctx, `DELETE FROM saves WHERE id = $1`, parsed)
	if err != nil {
		return fmt.Errorf("error deleting save: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting save: %w", err)
	}

	if deleted == 0 {
		return ErrSaveNotFound
	}

	return nil
}
