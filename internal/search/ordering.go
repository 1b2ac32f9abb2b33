package search

import (
	"cmp"
	"slices"

	"github.com/lk16/reversi/internal/eval"
	"github.com/lk16/reversi/internal/othello"
)

// orderMoves returns the moves sorted for searching: the hint first, then by square weight.
// The hint is only used when it is one of the legal moves. Equal weights keep row-major order.
func orderMoves(board *othello.Board, moves []othello.Move, hint int, evaluator *eval.Evaluator) []othello.Move {
	type scoredMove struct {
		move   othello.Move
		weight int
		hinted bool
	}

	scored := make([]scoredMove, len(moves))
	for i, move := range moves {
		scored[i] = scoredMove{
			move:   move,
			weight: evaluator.SquareWeight(board, move.Square),
			hinted: move.Square == hint,
		}
	}

	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		if a.hinted != b.hinted {
			if a.hinted {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.weight, a.weight)
	})

	ordered := make([]othello.Move, len(scored))
	for i := range scored {
		ordered[i] = scored[i].move
	}

	return ordered
}
