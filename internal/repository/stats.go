package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/services"
)

const (
	gameStatsKey = "game_stats"
	discStatsKey = "game_disc_stats"
)

// StatsRepository counts finished games in Redis.
type StatsRepository struct {
	services *services.Services
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(c *fiber.Ctx) *StatsRepository {
	services := c.Locals("services").(*services.Services) //nolint: errcheck

	return &StatsRepository{
		services: services,
	}
}

func NewStatsRepositoryFromServices(services *services.Services) *StatsRepository {
	return &StatsRepository{
		services: services,
	}
}

// result names the outcome of a game. Against the computer it is told from the human's view.
func result(summary game.Summary) string {
	if summary.Winner == "draw" || summary.HumanSide == "" {
		return summary.Winner
	}

	if summary.Winner == summary.HumanSide {
		return "human"
	}
	return "ai"
}

func statsField(mode string, level int, result string) string {
	return fmt.Sprintf("%s:%d:%s", mode, level, result)
}

// RecordGame adds a finished game to the statistics.
func (repo *StatsRepository) RecordGame(ctx context.Context, summary game.Summary) error {
	redisConn := repo.services.Redis

	field := statsField(summary.Mode, summary.Level, result(summary))

	// Update Redis in a single pipeline
	pipe := redisConn.Pipeline()
	pipe.HIncrBy(ctx, gameStatsKey, field, 1)
	pipe.HIncrBy(ctx, discStatsKey, field, int64(summary.Black-summary.White))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error updating Redis stats: %w", err)
	}

	return nil
}

// GetStats returns the number of finished games per mode, difficulty and result.
func (repo *StatsRepository) GetStats(ctx context.Context) ([]models.GameStats, error) {
	redisConn := repo.services.Redis

	stats, err := redisConn.HGetAll(ctx, gameStatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting game stats from Redis: %w", err)
	}

	discs, err := redisConn.HGetAll(ctx, discStatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting disc stats from Redis: %w", err)
	}

	gameStats := make([]models.GameStats, 0, len(stats))

	for key, value := range stats {
		var gameStat models.GameStats

		// Parse mode:level:result key
		parts := strings.Split(key, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("error parsing game stats key %q", key)
		}

		gameStat.Mode = parts[0]
		gameStat.Result = parts[2]

		if gameStat.Level, err = strconv.Atoi(parts[1]); err != nil {
			return nil, fmt.Errorf("error parsing game stats key: %w", err)
		}

		if gameStat.Count, err = strconv.Atoi(value); err != nil {
			return nil, fmt.Errorf("error parsing game stats value: %w", err)
		}

		if diff, ok := discs[key]; ok {
			if gameStat.DiscDiff, err = strconv.Atoi(diff); err != nil {
				return nil, fmt.Errorf("error parsing disc stats value: %w", err)
			}
		}

		gameStats = append(gameStats, gameStat)
	}

	sort.Slice(gameStats, func(i, j int) bool {
		a, b := gameStats[i], gameStats[j]
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.Result < b.Result
	})

	return gameStats, nil
}
