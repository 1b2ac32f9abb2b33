package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/othello"
)

// NewGameRequest represents the payload for starting a game. Zero values are replaced by the
// configured defaults.
type NewGameRequest struct {
	Size         int    `json:"size"`
	Mode         string `json:"mode"`
	HumanSide    string `json:"human_side"`
	Difficulty   int    `json:"difficulty"`
	TimeBudgetMs int    `json:"time_budget_ms"`
}

// Settings converts the request into game settings.
func (r *NewGameRequest) Settings(defaults config.EngineConfig) (game.Settings, error) {
	settings := game.Settings{
		Size:      defaults.BoardSize,
		Mode:      game.HumanVsAI,
		HumanSide: othello.BLACK,
		Level:     defaults.Difficulty,
		Budget:    defaults.TimeBudget,
	}

	if r.Size != 0 {
		settings.Size = r.Size
	}

	if r.Mode != "" {
		mode, err := game.ParseMode(r.Mode)
		if err != nil {
			return game.Settings{}, err
		}
		settings.Mode = mode
	}

	if r.HumanSide != "" {
		side, err := othello.ParseDisc(r.HumanSide)
		if err != nil {
			return game.Settings{}, err
		}
		settings.HumanSide = side
	}

	if r.Difficulty != 0 {
		settings.Level = r.Difficulty
	}

	if r.TimeBudgetMs < 0 {
		return game.Settings{}, errors.New("time_budget_ms must not be negative")
	}

	if r.TimeBudgetMs > 0 {
		settings.Budget = time.Duration(r.TimeBudgetMs) * time.Millisecond
	}

	if err := settings.Validate(defaults.SearchConfig()); err != nil {
		return game.Settings{}, err
	}

	return settings, nil
}

// MoveRequest represents a move by a human player. Rows and columns start at 0.
type MoveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// Validate validates the move request.
func (r *MoveRequest) Validate() error {
	if r.Row == nil || r.Col == nil {
		return errors.New("row and col are required")
	}

	return nil
}

// SaveRequest represents the payload for saving a game.
type SaveRequest struct {
	Name string `json:"name"`
}

const maxSaveNameLength = 100

// Validate validates the save request.
func (r *SaveRequest) Validate() error {
	if len(r.Name) > maxSaveNameLength {
		return fmt.Errorf("name must not be longer than %d characters", maxSaveNameLength)
	}
	return nil
}

// SaveResponse is returned after saving a game.
type SaveResponse struct {
	ID string `json:"id"`
}

// SaveInfo describes a stored game without its moves.
type SaveInfo struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Size      int       `json:"size"       db:"size"`
	Mode      string    `json:"mode"       db:"mode"`
	Level     int       `json:"level"      db:"level"`
	MoveCount int       `json:"move_count" db:"move_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// GameStats counts finished games with the same mode, difficulty and result.
type GameStats struct {
	Mode   string `json:"mode"`
	Level  int    `json:"level"`
	Result string `json:"result"`
	Count  int    `json:"count"`

	// DiscDiff is the sum of black discs minus white discs over all counted games.
	DiscDiff int `json:"disc_diff"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type VersionResponse struct {
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}
