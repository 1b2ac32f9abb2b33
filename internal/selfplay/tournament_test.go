package selfplay //nolint:testpackage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lk16/reversi/internal/search"
	"github.com/stretchr/testify/require"
)

// hourClock advances an hour on every call, so any time budget runs out immediately.
type hourClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *hourClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Hour)
	return c.now
}

func smallConfig() Config {
	config := DefaultConfig()
	config.Size = 6
	config.Openings = 4
	config.OpeningDiscs = 8
	config.Workers = 2
	config.Capacity = 4096
	return config
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"odd size", func(c *Config) { c.Size = 5 }, true},
		{"no openings", func(c *Config) { c.Openings = 0 }, true},
		{"too few discs", func(c *Config) { c.OpeningDiscs = 3 }, true},
		{"full board", func(c *Config) { c.OpeningDiscs = 64 }, true},
		{"no workers", func(c *Config) { c.Workers = 0 }, true},
		{"bad search config", func(c *Config) { c.Search = search.Config{} }, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := DefaultConfig()
			test.modify(&config)

			err := config.Validate()
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestOpenings_Deterministic(t *testing.T) {
	config := smallConfig()

	first, err := Openings(config)
	require.NoError(t, err)
	require.Len(t, first, config.Openings)

	second, err := Openings(config)
	require.NoError(t, err)

	for i := range first {
		require.True(t, first[i].Equal(second[i]))
		require.Equal(t, config.OpeningDiscs, 36-first[i].Empties())
		require.False(t, first[i].IsTerminal())
	}
}

func TestStandings_Add(t *testing.T) {
	standings := Standings{Wins: map[string]int{}, DiscDiff: map[string]int{}}

	standings.add(Outcome{Black: "a", White: "b", BlackDiscs: 20, WhiteDiscs: 16})
	standings.add(Outcome{Black: "b", White: "a", BlackDiscs: 18, WhiteDiscs: 18})
	standings.add(Outcome{Black: "b", White: "a", BlackDiscs: 30, WhiteDiscs: 6})

	require.Equal(t, 1, standings.Wins["a"])
	require.Equal(t, 1, standings.Wins["b"])
	require.Equal(t, 1, standings.Draws)
	require.Equal(t, -20, standings.DiscDiff["a"])
	require.Equal(t, 20, standings.DiscDiff["b"])
	require.InDelta(t, 1.5, standings.Score("a"), 1e-9)
	require.Len(t, standings.Games, 3)
}

func TestRun_RejectsPlayers(t *testing.T) {
	config := smallConfig()

	_, err := Run(context.Background(), config, Player{Name: "x", Level: 1}, Player{Name: "x", Level: 2})
	require.Error(t, err)

	_, err = Run(context.Background(), config, Player{Name: "x", Level: 1}, Player{Name: "y", Level: 9})
	require.ErrorIs(t, err, search.ErrInvalidLevel)
}

func TestRun_StrongerLevelWins(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tournament in short mode")
	}

	config := smallConfig()
	strong := Player{Name: "level-4", Level: 4}
	weak := Player{Name: "level-1", Level: 1}

	standings, err := Run(context.Background(), config, strong, weak)
	require.NoError(t, err)

	require.Len(t, standings.Games, 2*config.Openings)
	require.Equal(t, 2*config.Openings, standings.Wins[strong.Name]+standings.Wins[weak.Name]+standings.Draws)
	require.Equal(t, -standings.DiscDiff[weak.Name], standings.DiscDiff[strong.Name])
	require.Greater(t, standings.Score(strong.Name), standings.Score(weak.Name))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallConfig(), Player{Name: "a", Level: 2}, Player{Name: "b", Level: 2})
	require.ErrorIs(t, err, search.ErrSearchAborted)
}

func TestRun_TimeoutsPlayFallbackMove(t *testing.T) {
	config := smallConfig()
	config.Clock = &hourClock{now: time.Unix(0, 0)}

	hurried := Player{Name: "hurried", Level: 3, Budget: time.Second}
	patient := Player{Name: "patient", Level: 1}

	standings, err := Run(context.Background(), config, hurried, patient)
	require.NoError(t, err)

	require.Len(t, standings.Games, 2*config.Openings)
	require.Positive(t, standings.Timeouts[hurried.Name])
	require.Zero(t, standings.Timeouts[patient.Name])
}

func TestRun_HigherLevelScoresAtLeastAsWell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping level ladder in short mode")
	}

	config := DefaultConfig()
	config.Openings = 25

	opponent := Player{Name: "opponent", Level: 2}
	scores := make([]float64, 0, 5)

	for level := 1; level <= 5; level++ {
		player := Player{Name: fmt.Sprintf("level-%d", level), Level: level}

		standings, err := Run(context.Background(), config, player, opponent)
		require.NoError(t, err)
		require.Len(t, standings.Games, 50)

		scores = append(scores, standings.Score(player.Name))
	}

	for i := 1; i < len(scores); i++ {
		require.GreaterOrEqual(t, scores[i], scores[i-1], "level %d scored below level %d", i+1, i)
	}
}
