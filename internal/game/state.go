package game

import (
	"github.com/lk16/reversi/internal/othello"
)

// MoveInfo describes a square in API responses. Passes use row and column -1.
type MoveInfo struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Field string `json:"field"`
	Side  string `json:"side,omitempty"`
	Pass  bool   `json:"pass,omitempty"`
}

// State is a snapshot of a game, safe to share between goroutines.
type State struct {
	ID         string     `json:"id"`
	Size       int        `json:"size"`
	Mode       string     `json:"mode"`
	Level      int        `json:"level"`
	HumanSide  string     `json:"human_side,omitempty"`
	Position   string     `json:"position"`
	Rows       []string   `json:"rows"`
	Turn       string     `json:"turn"`
	Black      int        `json:"black"`
	White      int        `json:"white"`
	Phase      string     `json:"phase"`
	LegalMoves []MoveInfo `json:"legal_moves"`
	Moves      []MoveInfo `json:"moves"`
	CanUndo    bool       `json:"can_undo"`
	CanRedo    bool       `json:"can_redo"`
	Summary    *Summary   `json:"summary,omitempty"`
}

func moveInfo(board *othello.Board, square int, side othello.Disc) MoveInfo {
	if square == othello.PassSquare {
		return MoveInfo{Row: -1, Col: -1, Field: board.FieldName(square), Side: side.String(), Pass: true}
	}

	size := board.Size()
	return MoveInfo{
		Row:   square / size,
		Col:   square % size,
		Field: board.FieldName(square),
		Side:  side.String(),
	}
}

// snapshot builds the State. It assumes mu is locked.
func (c *Controller) snapshot() State {
	board := c.board
	size := board.Size()

	position := board.String()
	rows := make([]string, size)
	for row := range size {
		rows[row] = position[row*size : (row+1)*size]
	}

	black, white := board.Score()

	legal := make([]MoveInfo, 0)
	if _, finished := c.phase.(Finished); !finished {
		for _, move := range board.LegalMoves(board.Turn()) {
			legal = append(legal, moveInfo(board, move.Square, move.Side))
		}
	}

	state := State{
		ID:         c.id.String(),
		Size:       size,
		Mode:       c.settings.Mode.String(),
		Level:      c.settings.Level,
		Position:   position,
		Rows:       rows,
		Turn:       board.Turn().String(),
		Black:      black,
		White:      white,
		Phase:      c.phase.Name(),
		LegalMoves: legal,
		Moves:      c.moveList(),
		CanUndo:    c.canUndo(),
		CanRedo:    len(c.future) > 0,
	}

	if c.settings.Mode == HumanVsAI {
		state.HumanSide = c.settings.HumanSide.String()
	}

	if finished, ok := c.phase.(Finished); ok {
		summary := finished.Summary
		state.Summary = &summary
	}

	return state
}

// moveList lists all moves played, including passes. A skipped opponent shows up as a pass.
func (c *Controller) moveList() []MoveInfo {
	moves := make([]MoveInfo, 0, len(c.history))

	for _, t := range c.history {
		side := t.record.Move.Side
		moves = append(moves, moveInfo(c.board, t.record.Move.Square, side))

		if t.record.Skipped {
			moves = append(moves, moveInfo(c.board, othello.PassSquare, side.Opponent()))
		}
	}

	return moves
}
