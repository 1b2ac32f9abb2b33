package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
	"github.com/lk16/reversi/internal/tt"
)

// ServerConfig holds all configuration values loaded from environment variables.
type ServerConfig struct {
	ServerHost  string
	ServerPort  string
	RedisURL    string
	PostgresURL string
	Token       string
	Prefork     bool
	Engine      EngineConfig

	// Basic auth is accepted next to the token when a username is set.
	BasicAuthUsername string
	BasicAuthPassword string
}

// LoadDotEnv loads a .env file from the working directory, if there is one.
// Variables already set in the environment take precedence.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}
}

// LoadServerConfig loads configuration from environment variables.
func LoadServerConfig() *ServerConfig {
	engine, err := LoadEngineConfig()
	if err != nil {
		slog.Error("Invalid engine configuration", "error", err)
		os.Exit(1)
	}

	return &ServerConfig{
		ServerHost:  getEnvMust("REVERSI_SERVER_HOST"),
		ServerPort:  getEnvMust("REVERSI_SERVER_PORT"),
		RedisURL:    getEnvMust("REVERSI_REDIS_URL"),
		PostgresURL: getEnvMust("REVERSI_POSTGRES_URL"),
		Token:       getEnvMust("REVERSI_SERVER_TOKEN"),
		Prefork:     getEnvMustBool("REVERSI_SERVER_PREFORK"),
		Engine:      engine,

		BasicAuthUsername: os.Getenv("REVERSI_BASIC_AUTH_USERNAME"),
		BasicAuthPassword: os.Getenv("REVERSI_BASIC_AUTH_PASSWORD"),
	}
}

// EngineConfig holds the game and search settings. It is validated once and not modified afterwards.
type EngineConfig struct {
	BoardSize      int
	Difficulty     int
	Depths         []int
	EndgameEmpties int
	SolveLevel     int
	TableCapacity  int
	TimeBudget     time.Duration
}

// DefaultEngineConfig returns the engine settings used when no environment variables are set.
func DefaultEngineConfig() EngineConfig {
	searchConfig := search.DefaultConfig()

	return EngineConfig{
		BoardSize:      othello.DefaultSize,
		Difficulty:     search.DefaultLevel,
		Depths:         searchConfig.Depths,
		EndgameEmpties: searchConfig.EndgameEmpties,
		SolveLevel:     searchConfig.SolveLevel,
		TableCapacity:  tt.DefaultCapacity,
		TimeBudget:     0,
	}
}

// LoadEngineConfig reads optional overrides of the default engine settings.
func LoadEngineConfig() (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	var err error
	if cfg.BoardSize, err = getEnvInt("REVERSI_BOARD_SIZE", cfg.BoardSize); err != nil {
		return EngineConfig{}, err
	}

	if cfg.Difficulty, err = getEnvInt("REVERSI_DIFFICULTY", cfg.Difficulty); err != nil {
		return EngineConfig{}, err
	}

	if cfg.EndgameEmpties, err = getEnvInt("REVERSI_ENDGAME_EMPTIES", cfg.EndgameEmpties); err != nil {
		return EngineConfig{}, err
	}

	if cfg.SolveLevel, err = getEnvInt("REVERSI_SOLVE_LEVEL", cfg.SolveLevel); err != nil {
		return EngineConfig{}, err
	}

	if cfg.TableCapacity, err = getEnvInt("REVERSI_TABLE_CAPACITY", cfg.TableCapacity); err != nil {
		return EngineConfig{}, err
	}

	if value := os.Getenv("REVERSI_DEPTHS"); value != "" {
		if cfg.Depths, err = parseDepths(value); err != nil {
			return EngineConfig{}, err
		}
	}

	if value := os.Getenv("REVERSI_TIME_BUDGET"); value != "" {
		if cfg.TimeBudget, err = time.ParseDuration(value); err != nil {
			return EngineConfig{}, fmt.Errorf("error parsing REVERSI_TIME_BUDGET: %w", err)
		}
	}

	if err = cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}

	return cfg, nil
}

// parseDepths parses a comma separated depth table such as "1,2,3,4,5,6".
func parseDepths(value string) ([]int, error) {
	fields := strings.Split(value, ",")
	depths := make([]int, 0, len(fields))

	for _, field := range fields {
		depth, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("error parsing depth %q: %w", field, err)
		}
		depths = append(depths, depth)
	}

	return depths, nil
}

// SearchConfig returns the depth table for the search engine.
func (c EngineConfig) SearchConfig() search.Config {
	return search.Config{
		Depths:         append([]int{}, c.Depths...),
		EndgameEmpties: c.EndgameEmpties,
		SolveLevel:     c.SolveLevel,
	}
}

// Validate checks all engine settings.
func (c EngineConfig) Validate() error {
	if err := othello.ValidateSize(c.BoardSize); err != nil {
		return fmt.Errorf("invalid board size: %w", err)
	}

	searchConfig := c.SearchConfig()
	if err := searchConfig.Validate(); err != nil {
		return fmt.Errorf("invalid depth table: %w", err)
	}

	if err := searchConfig.CheckLevel(c.Difficulty); err != nil {
		return fmt.Errorf("invalid default difficulty: %w", err)
	}

	if c.TableCapacity <= 0 {
		return fmt.Errorf("table capacity %d is not positive", c.TableCapacity)
	}

	if c.TimeBudget < 0 {
		return fmt.Errorf("time budget %s is negative", c.TimeBudget)
	}

	return nil
}

// getEnvMust either returns the environment variable or logs a fatal error if it is not set.
func getEnvMust(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Environment variable is not set", "key", key)
		os.Exit(1)
	}
	return value
}

func getEnvMustBool(key string) bool {
	value := getEnvMust(key)

	if value != "true" && value != "false" {
		slog.Error("Cannot load environment variable, it must be \"true\" or \"false\"", "key", key, "value", value)
		os.Exit(1)
	}

	return value == "true"
}

// getEnvInt returns the environment variable as int, or fallback if it is not set.
func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}

	return parsed, nil
}

// ClientConfig contains details on how to connect to the game server.
type ClientConfig struct {
	ServerURL string
	Token     string
}

func LoadClientConfig() *ClientConfig {
	return &ClientConfig{
		ServerURL: getEnvMust("REVERSI_SERVER_URL"),
		Token:     getEnvMust("REVERSI_SERVER_TOKEN"),
	}
}
