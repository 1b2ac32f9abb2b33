// Package search chooses moves with iterative deepening negamax and alpha-beta pruning.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lk16/reversi/internal/eval"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/tt"
)

const (
	// checkInterval is the number of nodes between budget and context checks.
	checkInterval = 256

	infinity = 2 * eval.WinScore
)

var (
	// ErrSearchAborted is returned when not even a depth 1 search completed.
	ErrSearchAborted = errors.New("search aborted before completing depth 1")

	// ErrSearchInProgress is returned when ChooseMove is called while the engine is searching.
	ErrSearchInProgress = errors.New("search already in progress")

	// ErrNotSideToMove is returned when the requested side is not the side to move.
	ErrNotSideToMove = errors.New("side is not to move")
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Result describes the outcome of ChooseMove.
type Result struct {
	// Move is the chosen square, or othello.PassSquare when Pass is set.
	Move      int           `json:"move"`
	Pass      bool          `json:"pass"`
	Score     int           `json:"score"`
	Depth     int           `json:"depth"`
	Nodes     uint64        `json:"nodes"`
	Elapsed   time.Duration `json:"elapsed"`
	TableHits uint64        `json:"table_hits"`
	TimedOut  bool          `json:"timed_out"`
}

// Engine searches for the best move. It keeps a transposition table between calls, so one
// Engine should serve one game. An Engine runs at most one search at a time.
type Engine struct {
	config    Config
	evaluator *eval.Evaluator
	table     *tt.Table
	clock     Clock
	busy      atomic.Bool
	progress  atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithTable replaces the default transposition table.
func WithTable(table *tt.Table) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithEvaluator replaces the default evaluator.
func WithEvaluator(evaluator *eval.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// NewEngine creates an Engine. The config is validated.
func NewEngine(config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}

	e := &Engine{
		config: config,
		clock:  systemClock{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.evaluator == nil {
		e.evaluator = eval.New()
	}

	if e.table == nil {
		e.table = tt.New(tt.DefaultCapacity)
	}

	return e, nil
}

// Config returns the depth table of the engine.
func (e *Engine) Config() Config {
	return e.config
}

// Evaluator returns the evaluator used at leaf nodes.
func (e *Engine) Evaluator() *eval.Evaluator {
	return e.evaluator
}

// TableStats returns the transposition table counters.
func (e *Engine) TableStats() tt.Stats {
	return e.table.Stats()
}

// Progress returns the number of nodes visited by the running search, updated every few hundred nodes.
func (e *Engine) Progress() uint64 {
	return e.progress.Load()
}

// Clear drops all cached results. Call it when a new game starts or a game is loaded.
func (e *Engine) Clear() {
	e.table.Clear()
}

// searcher holds the state of a single ChooseMove call.
type searcher struct {
	ctx       context.Context
	board     *othello.Board
	evaluator *eval.Evaluator
	table     *tt.Table
	clock     Clock
	deadline  time.Time
	progress  *atomic.Uint64
	nodes     uint64
	tableHits uint64
	aborted   bool
}

// ChooseMove searches the best move for side, which must be the side to move.
//
// The board is modified during the search and restored exactly before returning, whatever the
// outcome. A budget of zero means no time limit. When the budget runs out or ctx is done the
// move of the deepest completed iteration is returned with TimedOut set. If no iteration
// completed, ErrSearchAborted is returned with the first ordered move as a fallback.
func (e *Engine) ChooseMove(
	ctx context.Context,
	board *othello.Board,
	side othello.Disc,
	level int,
	budget time.Duration,
) (Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Result{}, ErrSearchInProgress
	}
	defer e.busy.Store(false)

	if board.Turn() != side {
		return Result{}, fmt.Errorf("%w: %s", ErrNotSideToMove, side)
	}

	if err := e.config.CheckLevel(level); err != nil {
		return Result{}, err
	}

	start := e.clock.Now()

	moves := board.LegalMoves(side)
	if len(moves) == 0 {
		return Result{Move: othello.PassSquare, Pass: true}, nil
	}

	e.table.Reset(board.Size())
	e.table.NextGeneration()
	e.progress.Store(0)

	s := &searcher{
		ctx:       ctx,
		board:     board,
		evaluator: e.evaluator,
		table:     e.table,
		clock:     e.clock,
		progress:  &e.progress,
	}

	if budget > 0 {
		s.deadline = start.Add(budget)
	}

	maxDepth := e.config.Depth(level, board.Empties())

	result := Result{Move: othello.PassSquare}

	for depth := 1; depth <= maxDepth; depth++ {
		if s.expired() {
			result.TimedOut = true
			break
		}

		score, move := s.root(depth, moves)
		if s.aborted {
			result.TimedOut = true
			break
		}

		result.Move = move
		result.Score = score
		result.Depth = depth

		slog.Debug("search iteration",
			"depth", depth,
			"move", board.FieldName(move),
			"score", score,
			"nodes", s.nodes,
		)
	}

	result.Nodes = s.nodes
	result.TableHits = s.tableHits
	result.Elapsed = e.clock.Now().Sub(start)

	if result.Depth == 0 {
		result.Move = orderMoves(board, moves, tt.NoMove, e.evaluator)[0].Square
		return result, ErrSearchAborted
	}

	return result, nil
}

// expired checks if the context is done or the deadline passed.
func (s *searcher) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}

	return !s.deadline.IsZero() && !s.clock.Now().Before(s.deadline)
}

// withMove applies a legal move, runs fn and undoes the move, even if fn panics.
func (s *searcher) withMove(move othello.Move, fn func() int) int {
	record, err := s.board.Apply(move)
	if err != nil {
		panic(fmt.Sprintf("applying generated move %s: %v", s.board.FieldName(move.Square), err))
	}
	defer s.board.Undo(record)

	return fn()
}

// child returns the score of a move from the perspective of the side making it.
// Apply skips a blocked opponent, in which case the mover is to move again.
func (s *searcher) child(move othello.Move, depth, alpha, beta int) int {
	return s.withMove(move, func() int {
		if s.board.Turn() == move.Side {
			return s.negamax(depth, alpha, beta)
		}
		return -s.negamax(depth, -beta, -alpha)
	})
}

// root searches all moves at the root with a full window. Ties keep the earliest move in search order.
func (s *searcher) root(depth int, moves []othello.Move) (int, int) {
	key := s.board.Hash()

	hint := tt.NoMove
	if entry, ok := s.table.Probe(key); ok {
		s.tableHits++
		hint = entry.Move
	}

	ordered := orderMoves(s.board, moves, hint, s.evaluator)

	alpha := -infinity
	bestScore := -infinity
	bestMove := ordered[0].Square

	for _, move := range ordered {
		score := s.child(move, depth-1, alpha, infinity)
		if s.aborted {
			return 0, tt.NoMove
		}

		if score > bestScore {
			bestScore = score
			bestMove = move.Square
		}

		alpha = max(alpha, bestScore)
	}

	s.table.Store(key, depth, bestScore, tt.Exact, bestMove)
	return bestScore, bestMove
}

// negamax returns the score of the position for the side to move.
func (s *searcher) negamax(depth, alpha, beta int) int {
	s.nodes++

	if s.nodes%checkInterval == 0 {
		if s.progress != nil {
			s.progress.Store(s.nodes)
		}

		if s.expired() {
			s.aborted = true
		}
	}

	if s.aborted {
		return 0
	}

	if depth == 0 {
		return s.evaluator.Evaluate(s.board, s.board.Turn())
	}

	alphaOrig := alpha
	key := s.board.Hash()

	hint := tt.NoMove
	if entry, ok := s.table.Probe(key); ok {
		s.tableHits++

		if score, ok := entry.Cutoff(depth, alpha, beta); ok {
			return score
		}

		hint = entry.Move
	}

	side := s.board.Turn()
	moves := s.board.LegalMoves(side)

	if len(moves) == 0 {
		if !s.board.HasLegalMoves(side.Opponent()) {
			return s.evaluator.Evaluate(s.board, side)
		}

		// Passing does not use up depth.
		record, err := s.board.Pass()
		if err != nil {
			panic(fmt.Sprintf("passing without moves: %v", err))
		}
		defer s.board.Undo(record)

		return -s.negamax(depth, -beta, -alpha)
	}

	bestScore := -infinity
	bestMove := tt.NoMove

	for _, move := range orderMoves(s.board, moves, hint, s.evaluator) {
		score := s.child(move, depth-1, alpha, beta)
		if s.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move.Square
		}

		alpha = max(alpha, bestScore)
		if alpha >= beta {
			break
		}
	}

	var bound tt.Bound
	switch {
	case bestScore <= alphaOrig:
		bound = tt.UpperBound
	case bestScore >= beta:
		bound = tt.LowerBound
	default:
		bound = tt.Exact
	}

	s.table.Store(key, depth, bestScore, bound, bestMove)
	return bestScore
}
