// Package selfplay plays engine levels against each other.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
	"github.com/lk16/reversi/internal/tt"
	"golang.org/x/sync/errgroup"
)

// Player is an engine setting taking part in a tournament.
type Player struct {
	Name   string
	Level  int
	Budget time.Duration
}

// Config controls a tournament.
type Config struct {
	Size int

	// Openings is the number of random start positions. Each one is played twice with swapped colors.
	Openings int

	// OpeningDiscs is the number of discs on the board of a random start position.
	OpeningDiscs int

	Workers  int
	Seed     int64
	Search   search.Config
	Capacity int

	// Clock is used for the time budgets of the players. Nil uses the system clock.
	Clock search.Clock
}

// DefaultConfig returns a small 8x8 tournament.
func DefaultConfig() Config {
	return Config{
		Size:         othello.DefaultSize,
		Openings:     10,
		OpeningDiscs: 8,
		Workers:      runtime.NumCPU(),
		Seed:         1,
		Search:       search.DefaultConfig(),
		Capacity:     tt.DefaultCapacity,
	}
}

// Validate checks the tournament settings.
func (c Config) Validate() error {
	if err := othello.ValidateSize(c.Size); err != nil {
		return err
	}

	if c.Openings < 1 {
		return fmt.Errorf("need at least one opening, got %d", c.Openings)
	}

	if c.OpeningDiscs < 4 || c.OpeningDiscs >= c.Size*c.Size {
		return fmt.Errorf("opening discs %d outside [4, %d)", c.OpeningDiscs, c.Size*c.Size)
	}

	if c.Workers < 1 {
		return fmt.Errorf("need at least one worker, got %d", c.Workers)
	}

	return c.Search.Validate()
}

// Outcome is the result of one game.
type Outcome struct {
	Opening    int    `json:"opening"`
	Black      string `json:"black"`
	White      string `json:"white"`
	BlackDiscs int    `json:"black_discs"`
	WhiteDiscs int    `json:"white_discs"`
	Winner     string `json:"winner"`

	// Timeouts count the moves played before the first search iteration finished.
	BlackTimeouts int `json:"black_timeouts"`
	WhiteTimeouts int `json:"white_timeouts"`
}

// Standings summarizes a tournament.
type Standings struct {
	Wins     map[string]int `json:"wins"`
	DiscDiff map[string]int `json:"disc_diff"`
	Draws    int            `json:"draws"`
	Timeouts map[string]int `json:"timeouts"`
	Games    []Outcome      `json:"games"`
}

// Score returns the tournament points of a player, counting a draw as half a win.
func (s Standings) Score(name string) float64 {
	return float64(s.Wins[name]) + float64(s.Draws)/2
}

// Openings generates the start positions of a tournament.
func Openings(config Config) ([]*othello.Board, error) {
	rng := rand.New(rand.NewSource(config.Seed)) //nolint:gosec

	boards := make([]*othello.Board, 0, config.Openings)
	for len(boards) < config.Openings {
		board, err := othello.NewBoardRandom(config.Size, config.OpeningDiscs, rng)
		if err != nil {
			return nil, err
		}

		// Finished positions make no game.
		if board.IsTerminal() {
			continue
		}

		boards = append(boards, board)
	}

	return boards, nil
}

// Run plays every opening twice, once with each player as black.
func Run(ctx context.Context, config Config, a, b Player) (Standings, error) {
	if err := config.Validate(); err != nil {
		return Standings{}, err
	}

	if a.Name == b.Name {
		return Standings{}, errors.New("players need distinct names")
	}

	for _, player := range []Player{a, b} {
		if err := config.Search.CheckLevel(player.Level); err != nil {
			return Standings{}, fmt.Errorf("player %s: %w", player.Name, err)
		}
	}

	openings, err := Openings(config)
	if err != nil {
		return Standings{}, err
	}

	standings := Standings{
		Wins:     map[string]int{a.Name: 0, b.Name: 0},
		DiscDiff: map[string]int{a.Name: 0, b.Name: 0},
		Timeouts: map[string]int{a.Name: 0, b.Name: 0},
		Games:    make([]Outcome, 0, 2*len(openings)),
	}

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(config.Workers)

	for i, opening := range openings {
		for _, pairing := range [][2]Player{{a, b}, {b, a}} {
			group.Go(func() error {
				outcome, err := playGame(groupCtx, config, opening.Clone(), pairing[0], pairing[1])
				if err != nil {
					return fmt.Errorf("opening %d: %w", i, err)
				}
				outcome.Opening = i

				slog.Debug("Game played",
					"opening", i,
					"black", outcome.Black,
					"white", outcome.White,
					"score", fmt.Sprintf("%d-%d", outcome.BlackDiscs, outcome.WhiteDiscs),
				)

				mu.Lock()
				defer mu.Unlock()
				standings.add(outcome)
				return nil
			})
		}
	}

	if err = group.Wait(); err != nil {
		return Standings{}, err
	}

	return standings, nil
}

func (s *Standings) add(outcome Outcome) {
	s.Games = append(s.Games, outcome)

	diff := outcome.BlackDiscs - outcome.WhiteDiscs
	s.DiscDiff[outcome.Black] += diff
	s.DiscDiff[outcome.White] -= diff

	if s.Timeouts != nil {
		s.Timeouts[outcome.Black] += outcome.BlackTimeouts
		s.Timeouts[outcome.White] += outcome.WhiteTimeouts
	}

	switch {
	case diff > 0:
		s.Wins[outcome.Black]++
	case diff < 0:
		s.Wins[outcome.White]++
	default:
		s.Draws++
	}
}

func newEngine(config Config) (*search.Engine, error) {
	opts := []search.Option{search.WithTable(tt.New(config.Capacity))}
	if config.Clock != nil {
		opts = append(opts, search.WithClock(config.Clock))
	}

	return search.NewEngine(config.Search, opts...)
}

// playGame plays a game to the end. Each player gets its own engine.
func playGame(ctx context.Context, config Config, board *othello.Board, black, white Player) (Outcome, error) {
	players := map[othello.Disc]Player{othello.BLACK: black, othello.WHITE: white}
	engines := make(map[othello.Disc]*search.Engine, 2)
	timeouts := make(map[othello.Disc]int, 2)

	for side := range players {
		engine, err := newEngine(config)
		if err != nil {
			return Outcome{}, err
		}
		engines[side] = engine
	}

	for !board.IsTerminal() {
		side := board.Turn()

		if !board.HasLegalMoves(side) {
			if _, err := board.Pass(); err != nil {
				return Outcome{}, err
			}
			continue
		}

		player := players[side]
		result, err := engines[side].ChooseMove(ctx, board, side, player.Level, player.Budget)

		// Running out of budget before depth 1 still leaves a fallback move, a cancelled tournament does not.
		if errors.Is(err, search.ErrSearchAborted) && ctx.Err() == nil {
			err = nil
		}

		if err != nil {
			return Outcome{}, fmt.Errorf("player %s: %w", player.Name, err)
		}

		if result.TimedOut {
			timeouts[side]++
		}

		if _, err = board.Apply(othello.Move{Square: result.Move, Side: side}); err != nil {
			return Outcome{}, fmt.Errorf("player %s: %w", player.Name, err)
		}
	}

	blackDiscs, whiteDiscs := board.Score()
	winner := "draw"
	switch board.Winner() {
	case othello.BLACK:
		winner = black.Name
	case othello.WHITE:
		winner = white.Name
	}

	return Outcome{
		Black:      black.Name,
		White:      white.Name,
		BlackDiscs: blackDiscs,
		WhiteDiscs: whiteDiscs,
		Winner:     winner,

		BlackTimeouts: timeouts[othello.BLACK],
		WhiteTimeouts: timeouts[othello.WHITE],
	}, nil
}
