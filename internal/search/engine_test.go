package search //nolint:testpackage

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/tt"
	"github.com/stretchr/testify/require"
)

// stepClock advances a fixed step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// blockingClock blocks the second call until release is closed.
type blockingClock struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (c *blockingClock) Now() time.Time {
	c.mu.Lock()
	c.calls++
	calls := c.calls
	c.mu.Unlock()

	if calls == 2 {
		close(c.started)
		<-c.release
	}

	return time.Unix(0, 0)
}

// countdownContext reports cancellation once Err was called more than allowed times.
type countdownContext struct {
	context.Context

	mu      sync.Mutex
	allowed int
	calls   int
}

func (c *countdownContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.calls > c.allowed {
		return context.Canceled
	}
	return nil
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	engine, err := NewEngine(DefaultConfig(), opts...)
	require.NoError(t, err)

	return engine
}

func isLegal(board *othello.Board, square int) bool {
	for _, move := range board.LegalMoves(board.Turn()) {
		if move.Square == square {
			return true
		}
	}
	return false
}

func TestChooseMove_ReturnsLegalMoveAndRestoresBoard(t *testing.T) {
	rng := rand.New(rand.NewSource(5)) //nolint:gosec

	for level := MinLevel; level <= 4; level++ {
		for discs := 4; discs < 60; discs += 11 {
			board, err := othello.NewBoardRandom(8, discs, rng)
			require.NoError(t, err)

			if !board.HasLegalMoves(board.Turn()) {
				continue
			}

			before := board.Clone()
			engine := newTestEngine(t)

			result, err := engine.ChooseMove(context.Background(), board, board.Turn(), level, 0)
			require.NoError(t, err)
			require.False(t, result.Pass)
			require.True(t, isLegal(board, result.Move), "move %d on %s", result.Move, board)
			require.Positive(t, result.Depth)
			require.Positive(t, result.Nodes)

			require.True(t, board.Equal(before))
			require.Equal(t, before.Hash(), board.Hash())
		}
	}
}

func TestChooseMove_Pass(t *testing.T) {
	board := othello.MustParseBoard("OX..............-b")
	engine := newTestEngine(t)

	result, err := engine.ChooseMove(context.Background(), board, othello.BLACK, DefaultLevel, 0)
	require.NoError(t, err)
	require.True(t, result.Pass)
	require.Equal(t, othello.PassSquare, result.Move)
	require.Equal(t, othello.BLACK, board.Turn())
}

func TestChooseMove_Errors(t *testing.T) {
	engine := newTestEngine(t)
	board := othello.NewBoardStart()

	_, err := engine.ChooseMove(context.Background(), board, othello.WHITE, DefaultLevel, 0)
	require.ErrorIs(t, err, ErrNotSideToMove)

	_, err = engine.ChooseMove(context.Background(), board, othello.BLACK, 0, 0)
	require.ErrorIs(t, err, ErrInvalidLevel)

	_, err = engine.ChooseMove(context.Background(), board, othello.BLACK, MaxLevel+1, 0)
	require.ErrorIs(t, err, ErrInvalidLevel)

	require.True(t, board.Equal(othello.NewBoardStart()))
}

func TestChooseMove_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(9)) //nolint:gosec
	board, err := othello.NewBoardRandom(8, 20, rng)
	require.NoError(t, err)
	board.PassIfForced()

	first, err := newTestEngine(t).ChooseMove(context.Background(), board, board.Turn(), 4, 0)
	require.NoError(t, err)

	second, err := newTestEngine(t).ChooseMove(context.Background(), board, board.Turn(), 4, 0)
	require.NoError(t, err)

	require.Equal(t, first.Move, second.Move)
	require.Equal(t, first.Score, second.Score)
	require.Equal(t, first.Nodes, second.Nodes)
}

func TestChooseMove_RepeatUsesTable(t *testing.T) {
	engine := newTestEngine(t)
	board := othello.NewBoardStart()

	first, err := engine.ChooseMove(context.Background(), board, othello.BLACK, 3, 0)
	require.NoError(t, err)

	second, err := engine.ChooseMove(context.Background(), board, othello.BLACK, 3, 0)
	require.NoError(t, err)

	require.Equal(t, first.Move, second.Move)
	require.LessOrEqual(t, second.Nodes, first.Nodes)
	require.Positive(t, second.TableHits)
}

func TestChooseMove_Budget(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0), step: time.Millisecond}
	engine := newTestEngine(t, WithClock(clock))
	board := othello.NewBoardStart()

	result, err := engine.ChooseMove(context.Background(), board, othello.BLACK, MaxLevel, 5*time.Millisecond)
	require.NoError(t, err)
	require.True(t, result.TimedOut)
	require.GreaterOrEqual(t, result.Depth, 1)
	require.Less(t, result.Depth, MaxLevel)
	require.True(t, isLegal(board, result.Move))
	require.True(t, board.Equal(othello.NewBoardStart()))
	require.Equal(t, othello.NewBoardStart().Hash(), board.Hash())
}

func TestChooseMove_Cancelled(t *testing.T) {
	engine := newTestEngine(t)
	board := othello.NewBoardStart()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.ChooseMove(ctx, board, othello.BLACK, MaxLevel, 0)
	require.ErrorIs(t, err, ErrSearchAborted)
	require.True(t, result.TimedOut)
	require.True(t, isLegal(board, result.Move))
	require.True(t, board.Equal(othello.NewBoardStart()))
}

func TestChooseMove_CancelledMidSearch(t *testing.T) {
	// The clock cancels the context while the second iteration is running.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := &cancelClock{cancel: cancel, after: 3}
	engine := newTestEngine(t, WithClock(clock))

	rng := rand.New(rand.NewSource(21)) //nolint:gosec
	board, err := othello.NewBoardRandom(8, 24, rng)
	require.NoError(t, err)
	board.PassIfForced()
	before := board.Clone()

	result, err := engine.ChooseMove(ctx, board, board.Turn(), MaxLevel, time.Hour)
	if err != nil {
		require.ErrorIs(t, err, ErrSearchAborted)
	}
	require.True(t, result.TimedOut)
	require.True(t, board.Equal(before))
	require.Equal(t, before.Hash(), board.Hash())
}

// cancelClock cancels a context once it has been read a number of times.
type cancelClock struct {
	mu     sync.Mutex
	calls  int
	after  int
	cancel context.CancelFunc
}

func (c *cancelClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.calls == c.after {
		c.cancel()
	}
	return time.Unix(0, 0)
}

func TestChooseMove_InProgress(t *testing.T) {
	clock := &blockingClock{started: make(chan struct{}), release: make(chan struct{})}
	engine := newTestEngine(t, WithClock(clock))

	done := make(chan error)
	go func() {
		_, err := engine.ChooseMove(context.Background(), othello.NewBoardStart(), othello.BLACK, 2, time.Hour)
		done <- err
	}()

	<-clock.started

	_, err := engine.ChooseMove(context.Background(), othello.NewBoardStart(), othello.BLACK, 2, 0)
	require.ErrorIs(t, err, ErrSearchInProgress)

	_, err = engine.Analyze(context.Background(), othello.NewBoardStart(), 2)
	require.ErrorIs(t, err, ErrSearchInProgress)

	close(clock.release)
	require.NoError(t, <-done)
}

func TestChooseMove_TakesOnlyMove(t *testing.T) {
	board := othello.MustParseBoard(".O" + strings.Repeat("X", 62) + "-b")
	engine := newTestEngine(t)

	result, err := engine.ChooseMove(context.Background(), board, othello.BLACK, MaxLevel, 0)
	require.NoError(t, err)
	require.Equal(t, 0, result.Move)
	require.Equal(t, 1, result.Depth)
	require.Greater(t, result.Score, 0)
}

func TestChooseMove_SolvesEndgame(t *testing.T) {
	// Eight empty squares on a small board, strong levels search to the end of the game.
	rng := rand.New(rand.NewSource(13)) //nolint:gosec
	board, err := othello.NewBoardRandom(6, 28, rng)
	require.NoError(t, err)
	board.PassIfForced()

	if board.IsTerminal() {
		t.Skip("random position is already finished")
	}

	engine := newTestEngine(t)
	result, err := engine.ChooseMove(context.Background(), board, board.Turn(), MaxLevel, 0)
	require.NoError(t, err)
	require.LessOrEqual(t, result.Depth, board.Empties())

	// The solved score matches the best exact move score.
	scores, err := newTestEngine(t).Analyze(context.Background(), board, MaxLevel)
	require.NoError(t, err)
	require.Equal(t, scores[0].Score, result.Score)
}

func TestAnalyze(t *testing.T) {
	engine := newTestEngine(t)
	board := othello.NewBoardStart()

	scores, err := engine.Analyze(context.Background(), board, 3)
	require.NoError(t, err)
	require.Len(t, scores, 4)

	for i := 1; i < len(scores); i++ {
		require.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score)
	}

	// The four openings are symmetric.
	for _, score := range scores {
		require.Equal(t, scores[0].Score, score.Score)
		require.True(t, isLegal(board, score.Square))
		require.Equal(t, board.FieldName(score.Square), score.Field)
	}

	require.True(t, board.Equal(othello.NewBoardStart()))
}

func TestAnalyze_Cancelled(t *testing.T) {
	tests := []struct {
		name    string
		allowed int
		wantErr error
	}{
		{"before first move", 0, ErrSearchAborted},
		{"before last move", 3, ErrSearchAborted},
		{"after last move", 4, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			board := othello.NewBoardStart()
			ctx := &countdownContext{Context: context.Background(), allowed: test.allowed}

			// Level 1 searches too few nodes for the periodic check, so the context is only
			// consulted once before each of the four moves.
			scores, err := newTestEngine(t).Analyze(ctx, board, 1)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
			} else {
				require.NoError(t, err)
				require.Len(t, scores, 4)
				require.Equal(t, 4, ctx.calls)
			}

			require.True(t, board.Equal(othello.NewBoardStart()))
		})
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(Config{})
	require.Error(t, err)
}

func TestEngine_Clear(t *testing.T) {
	table := tt.New(256)
	engine := newTestEngine(t, WithTable(table))

	_, err := engine.ChooseMove(context.Background(), othello.NewBoardStart(), othello.BLACK, 2, 0)
	require.NoError(t, err)
	require.Positive(t, table.Len())

	engine.Clear()
	require.Equal(t, 0, table.Len())
	require.Equal(t, tt.Stats{}, engine.TableStats())
}
