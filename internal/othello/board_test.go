package othello //nolint:testpackage

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	for _, size := range []int{4, 6, 8, 10, 12, 14, 16} {
		board, err := NewBoard(size)
		require.NoError(t, err)

		mid := size / 2
		require.Equal(t, WHITE, board.At(mid-1, mid-1))
		require.Equal(t, WHITE, board.At(mid, mid))
		require.Equal(t, BLACK, board.At(mid-1, mid))
		require.Equal(t, BLACK, board.At(mid, mid-1))
		require.Equal(t, BLACK, board.Turn())
		require.Equal(t, size*size-4, board.Empties())
	}

	for _, size := range []int{0, 2, 3, 5, 7, 18} {
		_, err := NewBoard(size)
		require.Error(t, err, "size %d", size)
	}
}

func TestBoard_StartPosition(t *testing.T) {
	board := NewBoardStart()

	black, white := board.Score()
	require.Equal(t, 2, black)
	require.Equal(t, 2, white)

	squares := make([]int, 0)
	for _, move := range board.LegalMoves(BLACK) {
		squares = append(squares, move.Square)
	}

	// (2,3), (3,2), (4,5), (5,4)
	require.Equal(t, []int{19, 26, 37, 44}, squares)
}

func TestBoard_ApplyFlipsOneDisc(t *testing.T) {
	board := NewBoardStart()

	record, err := board.Apply(Move{Square: board.Square(2, 3), Side: BLACK})
	require.NoError(t, err)

	require.Equal(t, []int{board.Square(3, 3)}, record.Flipped)
	require.Equal(t, WHITE, record.Captured)
	require.Equal(t, BLACK, board.At(3, 3))
	require.Equal(t, WHITE, board.Turn())
	require.Equal(t, 1, board.MoveNumber())

	black, white := board.Score()
	require.Equal(t, 4, black)
	require.Equal(t, 1, white)
}

func TestBoard_ApplyInvalid(t *testing.T) {
	tests := []struct {
		name     string
		move     Move
		wantKind MoveErrorKind
	}{
		{
			name:     "out of range",
			move:     Move{Square: 64, Side: BLACK},
			wantKind: OutOfRange,
		},
		{
			name:     "negative square",
			move:     Move{Square: -1, Side: BLACK},
			wantKind: OutOfRange,
		},
		{
			name:     "wrong turn",
			move:     Move{Square: 19, Side: WHITE},
			wantKind: WrongTurn,
		},
		{
			name:     "occupied",
			move:     Move{Square: 27, Side: BLACK},
			wantKind: Occupied,
		},
		{
			name:     "no flips",
			move:     Move{Square: 0, Side: BLACK},
			wantKind: NoFlips,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			board := NewBoardStart()
			before := board.Clone()

			_, err := board.Apply(test.move)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidMove)

			var moveErr *InvalidMoveError
			require.True(t, errors.As(err, &moveErr))
			require.Equal(t, test.wantKind, moveErr.Kind)

			require.True(t, board.Equal(before))
			require.Equal(t, before.Hash(), board.Hash())
		})
	}
}

func TestBoard_ForcedPass(t *testing.T) {
	// Black's only disc cannot flip anything, white can capture it.
	board := MustParseBoard("OX..............-b")

	require.Empty(t, board.LegalMoves(BLACK))
	require.NotEmpty(t, board.LegalMoves(WHITE))
	require.False(t, board.IsTerminal())

	cells := board.Cells()
	require.True(t, board.PassIfForced())
	require.Equal(t, WHITE, board.Turn())
	require.Equal(t, cells, board.Cells())
	require.Equal(t, board.computeHash(), board.Hash())

	// White can move, so nothing changes a second time.
	require.False(t, board.PassIfForced())
	require.Equal(t, WHITE, board.Turn())
}

func TestBoard_Pass(t *testing.T) {
	board := NewBoardStart()

	_, err := board.Pass()
	require.ErrorIs(t, err, ErrInvalidMove)
	require.Equal(t, BLACK, board.Turn())

	blocked := MustParseBoard("OX..............-b")
	before := blocked.Clone()

	record, err := blocked.Pass()
	require.NoError(t, err)
	require.True(t, record.Pass)
	require.Equal(t, WHITE, blocked.Turn())

	blocked.Undo(record)
	require.True(t, blocked.Equal(before))
	require.Equal(t, before.Hash(), blocked.Hash())
}

func TestBoard_SkipOpponentWithoutMoves(t *testing.T) {
	// After black plays a1 white has no legal move, black can still play c3.
	board := MustParseBoard(".OX.....XO......-b")

	record, err := board.Apply(Move{Square: 0, Side: BLACK})
	require.NoError(t, err)
	require.Equal(t, []int{1}, record.Flipped)
	require.True(t, record.Skipped)
	require.Equal(t, BLACK, board.Turn())
	require.False(t, board.IsTerminal())

	board.Undo(record)
	require.Equal(t, BLACK, board.Turn())
	require.Equal(t, WHITE, board.Get(1))
	require.Equal(t, board.computeHash(), board.Hash())
}

func TestBoard_Terminal(t *testing.T) {
	full := MustParseBoard("XXXXXXXXXXXXOOOO-b")
	require.True(t, full.IsTerminal())
	require.Equal(t, BLACK, full.Winner())

	draw := MustParseBoard("XXXXXXXXOOOOOOOO-w")
	black, white := draw.Score()
	require.Equal(t, 8, black)
	require.Equal(t, 8, white)

	require.False(t, NewBoardStart().IsTerminal())
}

// playRandomGame plays random moves and checks invariants after every apply and undo.
func playRandomGame(t *testing.T, size int, rng *rand.Rand) {
	t.Helper()

	board, err := NewBoard(size)
	require.NoError(t, err)

	start := board.Clone()
	records := make([]MoveRecord, 0)

	for !board.IsTerminal() {
		moves := board.LegalMoves(board.Turn())
		if len(moves) == 0 {
			record, passErr := board.Pass()
			require.NoError(t, passErr)
			records = append(records, record)
			continue
		}

		before := board.Clone()
		move := moves[rng.Intn(len(moves))]

		record, applyErr := board.Apply(move)
		require.NoError(t, applyErr)
		require.NotEmpty(t, record.Flipped)

		black, white := board.Score()
		require.Equal(t, size*size, black+white+board.Empties())
		require.Equal(t, board.computeHash(), board.Hash())

		board.Undo(record)
		require.True(t, board.Equal(before))
		require.Equal(t, before.Hash(), board.Hash())

		record, applyErr = board.Apply(move)
		require.NoError(t, applyErr)
		records = append(records, record)
	}

	for i := len(records) - 1; i >= 0; i-- {
		board.Undo(records[i])

		black, white := board.Score()
		require.Equal(t, size*size, black+white+board.Empties())
	}

	require.True(t, board.Equal(start))
	require.Equal(t, start.Hash(), board.Hash())
}

func TestBoard_RandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(1)) //nolint:gosec

	for _, size := range []int{4, 6, 8, 10} {
		for range 5 {
			playRandomGame(t, size, rng)
		}
	}
}

func TestBoard_LegalMovesFlip(t *testing.T) {
	rng := rand.New(rand.NewSource(2)) //nolint:gosec

	for discs := 4; discs < 60; discs += 5 {
		board, err := NewBoardRandom(8, discs, rng)
		require.NoError(t, err)

		for _, side := range []Disc{BLACK, WHITE} {
			for _, move := range board.LegalMoves(side) {
				require.NotEmpty(t, board.Flips(move.Square, side))
			}
		}
	}
}

func TestBoard_HashIncludesTurn(t *testing.T) {
	black := MustParseBoard("OX..............-b")
	white := MustParseBoard("OX..............-w")
	require.NotEqual(t, black.Hash(), white.Hash())

	other, err := NewBoard(6)
	require.NoError(t, err)
	require.NotEqual(t, NewBoardStart().Hash(), other.Hash())
}

func TestBoard_Clone(t *testing.T) {
	board := NewBoardStart()
	clone := board.Clone()

	_, err := clone.Apply(Move{Square: 19, Side: BLACK})
	require.NoError(t, err)

	require.False(t, board.Equal(clone))
	require.True(t, board.Equal(NewBoardStart()))
}

func TestBoard_FieldName(t *testing.T) {
	board := NewBoardStart()
	require.Equal(t, "d3", board.FieldName(19))
	require.Equal(t, "a1", board.FieldName(0))
	require.Equal(t, "h8", board.FieldName(63))
	require.Equal(t, "--", board.FieldName(PassSquare))

	square, err := FieldToIndex("d3", 8)
	require.NoError(t, err)
	require.Equal(t, 19, square)

	square, err = FieldToIndex("p16", 16)
	require.NoError(t, err)
	require.Equal(t, 255, square)

	square, err = FieldToIndex("--", 8)
	require.NoError(t, err)
	require.Equal(t, PassSquare, square)

	_, err = FieldToIndex("i1", 8)
	require.Error(t, err)
}
