package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
	"github.com/lk16/reversi/internal/tt"
)

func main() {
	boardString := flag.String("board", othello.NewBoardStart().String(), "the board to evaluate")
	level := flag.Int("level", 0, "the difficulty level, defaults to REVERSI_DIFFICULTY")
	flag.Parse()

	config.LoadDotEnv()
	config.SetLogLevel()

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		slog.Error("Invalid engine config", "error", err)
		os.Exit(1)
	}

	if *level == 0 {
		*level = cfg.Difficulty
	}

	board, err := othello.ParseBoard(*boardString)
	if err != nil {
		slog.Error("Invalid board", "error", err)
		os.Exit(1)
	}
	board.Print()

	engine, err := search.NewEngine(cfg.SearchConfig(), search.WithTable(tt.New(cfg.TableCapacity)))
	if err != nil {
		slog.Error("Failed to create engine", "error", err)
		os.Exit(1)
	}

	terms := engine.Evaluator().Breakdown(board, board.Turn())
	fmt.Printf("Static evaluation for %s: %d (phase %.2f)\n", board.Turn(), terms.Total, terms.Phase)

	scores, err := engine.Analyze(context.Background(), board, *level)
	if err != nil {
		slog.Error("Failed to analyze board", "error", err)
		os.Exit(1)
	}

	for _, score := range scores {
		fmt.Printf("%4s %8d\n", score.Field, score.Score)
	}
}
