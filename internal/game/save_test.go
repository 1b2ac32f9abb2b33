package game //nolint:testpackage

import (
	"testing"

	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *search.Engine {
	t.Helper()

	engine, err := search.NewEngine(search.DefaultConfig())
	require.NoError(t, err)

	return engine
}

func playedGame(t *testing.T) *Controller {
	t.Helper()

	c := newTestController(t, Settings{Size: 8, Mode: HumanVsHuman})
	require.NoError(t, c.PlayMove(2, 3))
	require.NoError(t, c.PlayMove(2, 2))
	require.NoError(t, c.PlayMove(3, 2))

	return c
}

func TestRestore_RoundTrip(t *testing.T) {
	c := playedGame(t)
	data := c.Export()

	require.Equal(t, []int{19, 18, 26}, data.Moves)

	restored, err := Restore(data, newTestEngine(t))
	require.NoError(t, err)
	defer restored.Close()

	want := c.State()
	got := restored.State()

	require.NotEqual(t, c.ID(), restored.ID())
	require.Equal(t, want.Position, got.Position)
	require.Equal(t, want.Moves, got.Moves)
	require.Equal(t, want.Turn, got.Turn)
	require.Equal(t, want.Phase, got.Phase)
	require.True(t, got.CanUndo)

	require.NoError(t, restored.Undo())
	require.Len(t, restored.State().Moves, 2)
}

func TestRestore_FinishedGame(t *testing.T) {
	// A full game on a small board, always taking the first legal move.
	c := newTestController(t, Settings{Size: 4, Mode: HumanVsHuman})
	for c.State().Phase != "finished" {
		legal := c.State().LegalMoves
		require.NotEmpty(t, legal)
		require.NoError(t, c.PlayMove(legal[0].Row, legal[0].Col))
	}

	restored, err := Restore(c.Export(), newTestEngine(t))
	require.NoError(t, err)
	defer restored.Close()

	require.Equal(t, c.State().Position, restored.State().Position)
	require.Equal(t, "finished", restored.State().Phase)
}

func TestRestore_Rejects(t *testing.T) {
	c := playedGame(t)

	tests := []struct {
		name   string
		modify func(data *SaveData)
	}{
		{"illegal move", func(data *SaveData) { data.Moves[1] = 0 }},
		{"missing move", func(data *SaveData) { data.Moves = data.Moves[:2] }},
		{"extra pass", func(data *SaveData) { data.Moves = append(data.Moves, othello.PassSquare) }},
		{"flipped cell", func(data *SaveData) { data.Board[len(data.Board)-1] ^= 0b01 }},
		{"truncated board", func(data *SaveData) { data.Board = data.Board[:5] }},
		{"size mismatch", func(data *SaveData) { data.Settings.Size = 6 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := c.Export()
			test.modify(&data)

			_, err := Restore(data, newTestEngine(t))
			require.ErrorIs(t, err, othello.ErrInvalidBoardState)
		})
	}
}

func TestRestore_SuggestedMovesUndoLikeHumanMoves(t *testing.T) {
	c := newTestController(t, Settings{Size: 8, Mode: HumanVsAI, HumanSide: othello.BLACK, Level: 1})

	require.NoError(t, c.PlayMove(2, 3))
	waitIdle(t, c)

	// The computer plays the second black move, the answer is a regular computer move.
	require.NoError(t, c.PlayAIMove())
	waitIdle(t, c)
	require.Len(t, c.State().Moves, 4)

	restored, err := Restore(c.Export(), newTestEngine(t))
	require.NoError(t, err)
	defer restored.Close()

	for _, g := range []*Controller{c, restored} {
		require.NoError(t, g.Undo())
		waitIdle(t, g)

		state := g.State()
		require.Len(t, state.Moves, 2)
		require.Equal(t, "black", state.Turn)
		require.Equal(t, "awaiting_human", state.Phase)
	}

	require.Equal(t, c.State().Position, restored.State().Position)
}
