package othello

import (
	"fmt"
	"math/rand"
)

// NewBoardRandom plays random legal moves from the start position until the board holds the requested
// number of discs. Games that end early are restarted.
func NewBoardRandom(size, discs int, rng *rand.Rand) (*Board, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}

	if discs < 4 || discs > size*size {
		return nil, fmt.Errorf("invalid number of discs: %d", discs)
	}

	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}

	for board.black+board.white < discs {
		moves := board.LegalMoves(board.turn)
		if len(moves) == 0 {
			if board.PassIfForced() {
				continue
			}

			board, _ = NewBoard(size)
			continue
		}

		if _, err = board.Apply(moves[rng.Intn(len(moves))]); err != nil {
			return nil, fmt.Errorf("random move: %w", err)
		}
	}

	return board, nil
}
