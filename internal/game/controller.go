// Package game runs the turn loop of a single game and keeps track of all running games.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
	"github.com/lk16/reversi/internal/tt"
	"golang.org/x/sync/errgroup"
)

const (
	progressInterval = time.Second
	recordTimeout    = 5 * time.Second
)

// errStale is returned internally when an AI result arrives after it was cancelled.
var errStale = errors.New("stale AI result")

// turn is an entry of the undo and redo stacks. Human marks moves made for a human side, also
// when the computer suggested them.
type turn struct {
	record othello.MoveRecord
	human  bool
}

// newTurn assumes mu is locked.
func (c *Controller) newTurn(record othello.MoveRecord) turn {
	return turn{record: record, human: !record.Pass && !c.settings.isAI(record.Move.Side)}
}

// Controller owns the board of one game. All methods are safe for concurrent use.
//
// AI turns are searched on a copy of the board in a background goroutine. Undo, redo and Close
// cancel a running search, its result is then discarded.
type Controller struct {
	mu       sync.Mutex
	id       uuid.UUID
	settings Settings
	engine   *search.Engine
	analyzer *search.Engine
	recorder StatsRecorder
	board    *othello.Board
	history  []turn
	future   []turn
	phase    Phase
	started  time.Time

	listeners    map[int]func(State)
	nextListener int

	aiCancel context.CancelFunc
	aiDone   chan struct{}
	aiToken  uint64
	aiMoves  int
	aiNodes  uint64
	aiTime   time.Duration

	recorded bool
	closed   bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithRecorder stores the summary of the game when it finishes.
func WithRecorder(recorder StatsRecorder) ControllerOption {
	return func(c *Controller) {
		c.recorder = recorder
	}
}

// WithID sets the game ID instead of generating one.
func WithID(id uuid.UUID) ControllerOption {
	return func(c *Controller) {
		c.id = id
	}
}

func newController(settings Settings, engine *search.Engine, opts ...ControllerOption) (*Controller, error) {
	if err := settings.Validate(engine.Config()); err != nil {
		return nil, fmt.Errorf("invalid game settings: %w", err)
	}

	board, err := othello.NewBoard(settings.Size)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		id:        uuid.New(),
		settings:  settings,
		engine:    engine,
		board:     board,
		started:   time.Now(),
		listeners: make(map[int]func(State)),
	}

	for _, opt := range opts {
		opt(c)
	}

	engine.Clear()
	return c, nil
}

// New starts a game. If the computer plays first its search starts right away.
func New(settings Settings, engine *search.Engine, opts ...ControllerOption) (*Controller, error) {
	c, err := newController(settings, engine, opts...)
	if err != nil {
		return nil, err
	}

	if err = c.update(c.advance); err != nil {
		return nil, err
	}

	return c, nil
}

// ID returns the game ID.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Settings returns the settings the game was created with.
func (c *Controller) Settings() Settings {
	return c.settings
}

// State returns a snapshot of the game.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot()
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase
}

// Subscribe registers a function that receives the state after every change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.listeners, id)
	}
}

// update runs fn with mu locked. On success listeners are notified and a finished game is
// recorded, both after unlocking.
func (c *Controller) update(fn func() error) error {
	c.mu.Lock()

	if err := fn(); err != nil {
		c.mu.Unlock()
		return err
	}

	state := c.snapshot()

	var summary *Summary
	if finished, ok := c.phase.(Finished); ok && !c.recorded {
		c.recorded = true
		summary = &finished.Summary
	}

	listeners := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}

	c.mu.Unlock()

	for _, listener := range listeners {
		listener(state)
	}

	if summary != nil {
		c.record(*summary)
	}

	return nil
}

func (c *Controller) record(summary Summary) {
	slog.Info("Game finished",
		"game", summary.GameID,
		"winner", summary.Winner,
		"black", summary.Black,
		"white", summary.White,
		"moves", summary.Moves,
	)

	if c.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := c.recorder.RecordGame(ctx, summary); err != nil {
		slog.Error("Failed to record game", "game", summary.GameID, "error", err)
	}
}

// advance determines the next phase. Blocked sides pass, AI turns start a search.
// It assumes mu is locked.
func (c *Controller) advance() error {
	for {
		if c.board.IsTerminal() {
			c.phase = Finished{Summary: c.summary()}
			return nil
		}

		side := c.board.Turn()

		if !c.board.HasLegalMoves(side) {
			record, err := c.board.Pass()
			if err != nil {
				return fmt.Errorf("error passing: %w", err)
			}

			c.history = append(c.history, turn{record: record})
			continue
		}

		if c.settings.isAI(side) {
			c.startAI(side)
			return nil
		}

		c.phase = AwaitingHuman{Side: side}
		return nil
	}
}

// summary assumes mu is locked.
func (c *Controller) summary() Summary {
	black, white := c.board.Score()

	moves := 0
	for _, t := range c.history {
		if !t.record.Pass {
			moves++
		}
	}

	summary := Summary{
		GameID:   c.id.String(),
		Mode:     c.settings.Mode.String(),
		Level:    c.settings.Level,
		Size:     c.settings.Size,
		Winner:   winnerName(c.board.Winner()),
		Black:    black,
		White:    white,
		Moves:    moves,
		AIMoves:  c.aiMoves,
		AINodes:  c.aiNodes,
		AITime:   c.aiTime,
		Duration: time.Since(c.started),
	}

	if c.settings.Mode == HumanVsAI {
		summary.HumanSide = c.settings.HumanSide.String()
	}

	return summary
}

// startAI searches a move for side in the background. It assumes mu is locked.
func (c *Controller) startAI(side othello.Disc) {
	c.aiToken++
	token := c.aiToken

	ctx, cancel := context.WithCancel(context.Background())
	c.aiCancel = cancel

	// The engine runs one search at a time, so wait for a cancelled search to wind down.
	prev := c.aiDone
	done := make(chan struct{})
	c.aiDone = done

	c.phase = AIThinking{Side: side, Started: time.Now()}

	go c.runAI(ctx, token, prev, done, c.board.Clone(), side)
}

// cancelAI invalidates a running search. It assumes mu is locked.
func (c *Controller) cancelAI() {
	if c.aiCancel != nil {
		c.aiCancel()
		c.aiCancel = nil
	}
	c.aiToken++
}

func (c *Controller) runAI(
	ctx context.Context,
	token uint64,
	prev <-chan struct{},
	done chan<- struct{},
	board *othello.Board,
	side othello.Disc,
) {
	defer close(done)

	if prev != nil {
		<-prev
	}

	result, searchErr := c.think(ctx, board, side)

	err := c.update(func() error {
		if token != c.aiToken || c.closed {
			return errStale
		}

		c.aiCancel = nil

		if searchErr != nil && !errors.Is(searchErr, search.ErrSearchAborted) {
			c.phase = AwaitingHuman{Side: side}
			return fmt.Errorf("error searching move: %w", searchErr)
		}

		return c.applyAI(result, side)
	})

	if err != nil && !errors.Is(err, errStale) {
		slog.Error("AI turn failed", "game", c.id, "error", err)
	}
}

// think runs the search next to a progress logger.
func (c *Controller) think(ctx context.Context, board *othello.Board, side othello.Disc) (search.Result, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	searched := make(chan struct{})

	var result search.Result

	group.Go(func() error {
		defer close(searched)

		var err error
		result, err = c.engine.ChooseMove(groupCtx, board, side, c.settings.Level, c.settings.Budget)
		return err
	})

	group.Go(func() error {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-searched:
				return nil
			case <-ticker.C:
				slog.Debug("AI thinking", "game", c.id, "side", side, "nodes", c.engine.Progress())
			}
		}
	})

	err := group.Wait()
	return result, err
}

// applyAI plays the result of a search. It assumes mu is locked.
func (c *Controller) applyAI(result search.Result, side othello.Disc) error {
	var (
		record othello.MoveRecord
		err    error
	)

	if result.Pass {
		record, err = c.board.Pass()
	} else {
		record, err = c.board.Apply(othello.Move{Square: result.Move, Side: side})
	}

	if err != nil {
		c.phase = AwaitingHuman{Side: side}
		return fmt.Errorf("error applying AI move: %w", err)
	}

	c.history = append(c.history, c.newTurn(record))
	c.future = nil

	c.aiMoves++
	c.aiNodes += result.Nodes
	c.aiTime += result.Elapsed

	slog.Info("AI move",
		"game", c.id,
		"side", side,
		"move", c.board.FieldName(result.Move),
		"score", result.Score,
		"depth", result.Depth,
		"nodes", result.Nodes,
		"elapsed", result.Elapsed,
		"timed_out", result.TimedOut,
	)

	return c.advance()
}

// PlayMove plays a human move on the given row and column.
func (c *Controller) PlayMove(row, col int) error {
	return c.update(func() error {
		side, err := c.humanSide()
		if err != nil {
			return err
		}

		move := othello.Move{Square: c.board.Square(row, col), Side: side}

		record, err := c.board.Apply(move)
		if err != nil {
			return fmt.Errorf("error playing move: %w", err)
		}

		c.history = append(c.history, c.newTurn(record))
		c.future = nil

		return c.advance()
	})
}

// PlayAIMove lets the computer play the move of the human to move.
func (c *Controller) PlayAIMove() error {
	return c.update(func() error {
		side, err := c.humanSide()
		if err != nil {
			return err
		}

		c.startAI(side)
		return nil
	})
}

// humanSide returns the side a human may move for. It assumes mu is locked.
func (c *Controller) humanSide() (othello.Disc, error) {
	switch phase := c.phase.(type) {
	case AwaitingHuman:
		return phase.Side, nil
	case Finished:
		return othello.EMPTY, ErrGameOver
	default:
		return othello.EMPTY, ErrNotHumanTurn
	}
}

// Undo takes back the last move. Against the computer it takes back moves up to and including
// the last human move, so the human is to move again.
func (c *Controller) Undo() error {
	return c.update(func() error {
		if !c.canUndo() {
			return ErrNothingToUndo
		}

		c.cancelAI()

		for len(c.history) > 0 {
			last := c.history[len(c.history)-1]
			c.history = c.history[:len(c.history)-1]

			c.board.Undo(last.record)
			c.future = append(c.future, last)

			if c.settings.Mode != HumanVsAI || last.human {
				break
			}
		}

		return c.advance()
	})
}

// canUndo reports if Undo can take back a move. Against the computer there has to be a human move,
// taking back only computer moves would make it play them again. It assumes mu is locked.
func (c *Controller) canUndo() bool {
	if c.settings.Mode != HumanVsAI {
		return len(c.history) > 0
	}

	for _, t := range c.history {
		if t.human {
			return true
		}
	}

	return false
}

// Redo replays undone moves. Against the computer the answers of the computer are replayed too.
func (c *Controller) Redo() error {
	return c.update(func() error {
		if len(c.future) == 0 {
			return ErrNothingToRedo
		}

		c.cancelAI()

		for len(c.future) > 0 {
			next := c.future[len(c.future)-1]
			c.future = c.future[:len(c.future)-1]

			if err := c.replay(next); err != nil {
				return err
			}

			if c.settings.Mode != HumanVsAI || len(c.future) == 0 || c.future[len(c.future)-1].human {
				break
			}
		}

		return c.advance()
	})
}

// replay applies a turn from the redo stack. It assumes mu is locked.
func (c *Controller) replay(t turn) error {
	var (
		record othello.MoveRecord
		err    error
	)

	if t.record.Pass {
		record, err = c.board.Pass()
	} else {
		record, err = c.board.Apply(t.record.Move)
	}

	if err != nil {
		c.future = nil
		return fmt.Errorf("error redoing move: %w", err)
	}

	c.history = append(c.history, turn{record: record, human: t.human})
	return nil
}

// WaitIdle blocks until no search is running and the result of the last one was handled, or ctx is done.
func (c *Controller) WaitIdle(ctx context.Context) error {
	for {
		c.mu.Lock()
		_, thinking := c.phase.(AIThinking)
		done := c.aiDone
		c.mu.Unlock()

		if done != nil {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()

		if !thinking || closed {
			return nil
		}
	}
}

// Close cancels a running search and waits for it to stop.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelAI()
	done := c.aiDone
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Analyze scores the legal moves of the side to move. It runs on a separate engine, so it never
// delays a move of the computer. Concurrent analyses of one game fail with search.ErrSearchInProgress.
func (c *Controller) Analyze(ctx context.Context, level int) ([]search.MoveScore, error) {
	c.mu.Lock()
	board := c.board.Clone()

	if c.analyzer == nil {
		analyzer, err := search.NewEngine(c.engine.Config(),
			search.WithEvaluator(c.engine.Evaluator()),
			search.WithTable(tt.New(tt.DefaultCapacity)),
		)
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		c.analyzer = analyzer
	}

	analyzer := c.analyzer
	c.mu.Unlock()

	return analyzer.Analyze(ctx, board, level)
}
