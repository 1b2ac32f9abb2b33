package game

import (
	"context"
	"errors"
	"time"

	"github.com/lk16/reversi/internal/othello"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrNotHumanTurn  = errors.New("not a human player's turn")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrGameNotFound  = errors.New("game not found")
)

// Summary describes a finished game.
type Summary struct {
	GameID    string        `json:"game_id"`
	Mode      string        `json:"mode"`
	Level     int           `json:"level"`
	HumanSide string        `json:"human_side,omitempty"`
	Size      int           `json:"size"`
	Winner    string        `json:"winner"`
	Black     int           `json:"black"`
	White     int           `json:"white"`
	Moves     int           `json:"moves"`
	AIMoves   int           `json:"ai_moves"`
	AINodes   uint64        `json:"ai_nodes"`
	AITime    time.Duration `json:"ai_time"`
	Duration  time.Duration `json:"duration"`
}

// StatsRecorder stores summaries of finished games.
type StatsRecorder interface {
	RecordGame(ctx context.Context, summary Summary) error
}

func winnerName(winner othello.Disc) string {
	if winner == othello.EMPTY {
		return "draw"
	}
	return winner.String()
}
