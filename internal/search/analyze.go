package search

import (
	"cmp"
	"context"
	"slices"

	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/tt"
)

// MoveScore is the search score of one legal move, from the perspective of the side to move.
type MoveScore struct {
	Square int    `json:"square"`
	Field  string `json:"field"`
	Score  int    `json:"score"`
}

// Analyze scores every legal move of the side to move with an exact window, best first.
// The board is restored before returning.
func (e *Engine) Analyze(ctx context.Context, board *othello.Board, level int) ([]MoveScore, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrSearchInProgress
	}
	defer e.busy.Store(false)

	if err := e.config.CheckLevel(level); err != nil {
		return nil, err
	}

	moves := board.LegalMoves(board.Turn())
	if len(moves) == 0 {
		return []MoveScore{}, nil
	}

	e.table.Reset(board.Size())
	e.table.NextGeneration()

	s := &searcher{
		ctx:       ctx,
		board:     board,
		evaluator: e.evaluator,
		table:     e.table,
		clock:     e.clock,
	}

	depth := e.config.Depth(level, board.Empties())

	scores := make([]MoveScore, 0, len(moves))
	for _, move := range orderMoves(board, moves, tt.NoMove, e.evaluator) {
		if s.expired() {
			return nil, ErrSearchAborted
		}

		score := s.child(move, depth-1, -infinity, infinity)
		if s.aborted {
			return nil, ErrSearchAborted
		}

		scores = append(scores, MoveScore{
			Square: move.Square,
			Field:  board.FieldName(move.Square),
			Score:  score,
		})
	}

	slices.SortStableFunc(scores, func(a, b MoveScore) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return scores, nil
}
