package eval //nolint:testpackage

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/lk16/reversi/internal/othello"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Antisymmetric(t *testing.T) {
	e := New()
	rng := rand.New(rand.NewSource(7)) //nolint:gosec

	for _, size := range []int{4, 6, 8, 10} {
		for discs := 4; discs <= size*size-8; discs += 3 {
			board, err := othello.NewBoardRandom(size, discs, rng)
			require.NoError(t, err)

			black := e.Evaluate(board, othello.BLACK)
			white := e.Evaluate(board, othello.WHITE)
			require.Equal(t, black, -white, board.String())
		}
	}
}

func TestEvaluate_StartIsBalanced(t *testing.T) {
	e := New()

	for _, size := range []int{4, 6, 8, 16} {
		board, err := othello.NewBoard(size)
		require.NoError(t, err)
		require.Equal(t, 0, e.Evaluate(board, othello.BLACK))
	}
}

// cornerBoard is full except for the a1 corner. Black can take it by flipping b1.
func cornerBoard(t *testing.T) *othello.Board {
	t.Helper()

	s := ".O" + strings.Repeat("X", 62) + "-b"
	board, err := othello.ParseBoard(s)
	require.NoError(t, err)

	return board
}

func TestEvaluate_CornerOwnership(t *testing.T) {
	e := New()

	open := cornerBoard(t)
	moves := open.LegalMoves(othello.BLACK)
	require.Len(t, moves, 1)
	require.Equal(t, 0, moves[0].Square)
	require.Empty(t, open.LegalMoves(othello.WHITE))

	cells := open.Cells()
	cells[0] = othello.BLACK
	owned, err := othello.NewBoardFromCells(8, cells, othello.WHITE, open.MoveNumber()+1)
	require.NoError(t, err)

	require.Greater(t, e.Evaluate(owned, othello.BLACK), e.Evaluate(open, othello.BLACK))
	require.Less(t, e.Evaluate(owned, othello.WHITE), e.Evaluate(open, othello.WHITE))
}

func TestEvaluate_Terminal(t *testing.T) {
	e := New()

	win := othello.MustParseBoard("XXXXXXXXXXXXOOOO-b")
	require.True(t, win.IsTerminal())
	require.Equal(t, WinScore+8, e.Evaluate(win, othello.BLACK))
	require.Equal(t, -WinScore-8, e.Evaluate(win, othello.WHITE))

	draw := othello.MustParseBoard("XXXXXXXXOOOOOOOO-w")
	require.Equal(t, 0, e.Evaluate(draw, othello.BLACK))

	terms := e.Breakdown(win, othello.WHITE)
	require.True(t, terms.Terminal)
	require.Equal(t, -8, terms.Material)
}

func TestSquareWeight(t *testing.T) {
	e := New()
	board := othello.NewBoardStart()

	corner := e.SquareWeight(board, board.Square(0, 0))
	edge := e.SquareWeight(board, board.Square(0, 3))
	interior := e.SquareWeight(board, board.Square(3, 3))
	cSquare := e.SquareWeight(board, board.Square(0, 1))
	xSquare := e.SquareWeight(board, board.Square(1, 1))

	require.Greater(t, corner, edge)
	require.Greater(t, edge, interior)
	require.Greater(t, interior, cSquare)
	require.Greater(t, cSquare, xSquare)

	// Symmetric over all four corners.
	require.Equal(t, corner, e.SquareWeight(board, board.Square(7, 7)))
	require.Equal(t, xSquare, e.SquareWeight(board, board.Square(6, 1)))
	require.Equal(t, cSquare, e.SquareWeight(board, board.Square(7, 6)))
}

func TestSquareWeight_ClaimedCorner(t *testing.T) {
	e := New()

	cells := othello.NewBoardStart().Cells()
	cells[0] = othello.WHITE
	board, err := othello.NewBoardFromCells(8, cells, othello.BLACK, 1)
	require.NoError(t, err)

	require.Equal(t, 0, e.SquareWeight(board, board.Square(1, 1)))
	require.Equal(t, edgeWeight, e.SquareWeight(board, board.Square(0, 1)))

	// Other corners are still open.
	require.Equal(t, xSquareWeight, e.SquareWeight(board, board.Square(6, 6)))
}

func TestPhaseWeights(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		fill float64
		want Weights
	}{
		{name: "start", fill: 0.0, want: DefaultOpening},
		{name: "opening boundary", fill: openingFill, want: DefaultOpening},
		{name: "midgame", fill: midgameFill, want: DefaultMidgame},
		{name: "endgame boundary", fill: endgameFill, want: DefaultEndgame},
		{name: "full", fill: 1.0, want: DefaultEndgame},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := e.PhaseWeights(test.fill)
			require.InDelta(t, test.want.Material, got.Material, 1e-9)
			require.InDelta(t, test.want.Mobility, got.Mobility, 1e-9)
			require.InDelta(t, test.want.Positional, got.Positional, 1e-9)
			require.InDelta(t, test.want.Frontier, got.Frontier, 1e-9)
			require.InDelta(t, test.want.Corner, got.Corner, 1e-9)
		})
	}

	halfway := e.PhaseWeights((openingFill + midgameFill) / 2)
	require.InDelta(t, (DefaultOpening.Mobility+DefaultMidgame.Mobility)/2, halfway.Mobility, 1e-9)
}

func TestBreakdown_MatchesEvaluate(t *testing.T) {
	e := New()
	rng := rand.New(rand.NewSource(11)) //nolint:gosec

	for discs := 10; discs < 60; discs += 7 {
		board, err := othello.NewBoardRandom(8, discs, rng)
		require.NoError(t, err)

		for _, side := range []othello.Disc{othello.BLACK, othello.WHITE} {
			require.Equal(t, e.Evaluate(board, side), e.Breakdown(board, side).Total)
		}
	}
}
