package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/othello"
)

// MoveList is a slice of squares that implements sql.Scanner for Postgres integer arrays.
type MoveList []int

// Scan implements the sql.Scanner interface for MoveList.
func (m *MoveList) Scan(value interface{}) error {
	var s string

	switch v := value.(type) {
	case []byte:
		if v == nil {
			return errors.New("cannot scan nil into MoveList")
		}
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into MoveList", value)
	}

	// We should have a string that looks like "{19,-1,26}"
	s = strings.Trim(s, "{}")

	if s == "" {
		*m = MoveList{}
		return nil
	}

	parts := strings.Split(s, ",")

	moves := make(MoveList, len(parts))
	for i, part := range parts {
		move, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("cannot convert %s to int: %w", part, err)
		}
		moves[i] = move
	}
	*m = moves

	return nil
}

// SaveRecord is a row of the saves table.
type SaveRecord struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Size      int       `db:"size"`
	Mode      string    `db:"mode"`
	HumanSide string    `db:"human_side"`
	Level     int       `db:"level"`
	BudgetMs  int64     `db:"budget_ms"`
	Moves     MoveList  `db:"moves"`
	Board     []byte    `db:"board"`
	CreatedAt time.Time `db:"created_at"`
}

// NewSaveRecord converts save data into a row with a new ID.
func NewSaveRecord(name string, data game.SaveData) SaveRecord {
	return SaveRecord{
		ID:        uuid.New(),
		Name:      name,
		Size:      data.Settings.Size,
		Mode:      data.Settings.Mode.String(),
		HumanSide: data.Settings.HumanSide.String(),
		Level:     data.Settings.Level,
		BudgetMs:  data.Settings.Budget.Milliseconds(),
		Moves:     MoveList(data.Moves),
		Board:     data.Board,
	}
}

// SaveData converts the row back into save data. Invalid rows are reported, never repaired.
func (r SaveRecord) SaveData() (game.SaveData, error) {
	mode, err := game.ParseMode(r.Mode)
	if err != nil {
		return game.SaveData{}, &othello.InvalidBoardStateError{Reason: err.Error()}
	}

	humanSide := othello.EMPTY
	if r.HumanSide != othello.EMPTY.String() {
		if humanSide, err = othello.ParseDisc(r.HumanSide); err != nil {
			return game.SaveData{}, &othello.InvalidBoardStateError{Reason: err.Error()}
		}
	}

	return game.SaveData{
		Settings: game.Settings{
			Size:      r.Size,
			Mode:      mode,
			HumanSide: humanSide,
			Level:     r.Level,
			Budget:    time.Duration(r.BudgetMs) * time.Millisecond,
		},
		Moves: []int(r.Moves),
		Board: r.Board,
	}, nil
}
