package client //nolint:testpackage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/tests"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, token string) *Client {
	t.Helper()

	server := httptest.NewServer(adaptor.FiberApp(tests.NewTestApp(t)))
	t.Cleanup(server.Close)

	return NewClient(&config.ClientConfig{ServerURL: server.URL, Token: token})
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_Unauthorized(t *testing.T) {
	client := newTestClient(t, "wrong-token")

	_, err := client.CreateGame(testContext(t), models.NewGameRequest{Mode: "human_vs_human"})
	require.Error(t, err)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestClient_PlayGame(t *testing.T) {
	client := newTestClient(t, tests.TestToken)
	ctx := testContext(t)

	state, err := client.CreateGame(ctx, models.NewGameRequest{Mode: "human_vs_human", Size: 6})
	require.NoError(t, err)
	require.Equal(t, 6, state.Size)
	require.Len(t, state.LegalMoves, 4)

	move := state.LegalMoves[0]
	state, err = client.PlayMove(ctx, state.ID, move.Row, move.Col)
	require.NoError(t, err)
	require.Len(t, state.Moves, 1)
	require.Equal(t, "white", state.Turn)

	_, err = client.PlayMove(ctx, state.ID, move.Row, move.Col)
	require.True(t, IsStatus(err, http.StatusBadRequest))

	state, err = client.Undo(ctx, state.ID)
	require.NoError(t, err)
	require.Empty(t, state.Moves)

	state, err = client.Redo(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, state.Moves, 1)

	_, err = client.PlayAIMove(ctx, state.ID)
	require.NoError(t, err)

	state, err = client.WaitForTurn(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, state.Moves, 2)
	require.Equal(t, "black", state.Turn)

	scores, err := client.Analyze(ctx, state.ID, 1)
	require.NoError(t, err)
	require.Len(t, scores, len(state.LegalMoves))

	require.NoError(t, client.DeleteGame(ctx, state.ID))

	_, err = client.GetGame(ctx, state.ID)
	require.True(t, IsStatus(err, http.StatusNotFound))
}

func TestStatusError(t *testing.T) {
	require.Equal(t, "server returned status 404", (&StatusError{Status: 404}).Error())
	require.Equal(t, "server returned status 400: bad", (&StatusError{Status: 400, Message: "bad"}).Error())
	require.False(t, IsStatus(context.Canceled, http.StatusNotFound))
}
