package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/selfplay"
)

func main() {
	defaults := selfplay.DefaultConfig()

	levelA := flag.Int("a", 4, "difficulty level of the first player")
	levelB := flag.Int("b", 1, "difficulty level of the second player")
	budget := flag.Duration("budget", 0, "time budget per move, 0 means no limit")
	size := flag.Int("size", defaults.Size, "board size")
	openings := flag.Int("openings", defaults.Openings, "number of random openings, each is played twice")
	discs := flag.Int("discs", defaults.OpeningDiscs, "number of discs in a random opening")
	workers := flag.Int("workers", defaults.Workers, "number of games played in parallel")
	seed := flag.Int64("seed", defaults.Seed, "seed for generating openings")
	jsonOutput := flag.Bool("json", false, "print the standings as JSON")
	flag.Parse()

	config.LoadDotEnv()
	config.SetLogLevel()

	engineConfig, err := config.LoadEngineConfig()
	if err != nil {
		slog.Error("Invalid engine config", "error", err)
		os.Exit(1)
	}

	cfg := selfplay.Config{
		Size:         *size,
		Openings:     *openings,
		OpeningDiscs: *discs,
		Workers:      *workers,
		Seed:         *seed,
		Search:       engineConfig.SearchConfig(),
		Capacity:     engineConfig.TableCapacity,
	}

	a := selfplay.Player{Name: fmt.Sprintf("level-%d", *levelA), Level: *levelA, Budget: *budget}
	b := selfplay.Player{Name: fmt.Sprintf("level-%d", *levelB), Level: *levelB, Budget: *budget}
	if *levelA == *levelB {
		a.Name += "-a"
		b.Name += "-b"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	standings, err := selfplay.Run(ctx, cfg, a, b)
	if err != nil {
		slog.Error("Tournament failed", "error", err)
		os.Exit(1)
	}

	if *jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(standings); err != nil {
			slog.Error("Failed to encode standings", "error", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Played %d games in %s\n", len(standings.Games), time.Since(start).Round(time.Millisecond))
	for _, player := range []selfplay.Player{a, b} {
		fmt.Printf("%-12s wins %3d  score %5.1f  disc diff %+d  timeouts %d\n",
			player.Name, standings.Wins[player.Name], standings.Score(player.Name), standings.DiscDiff[player.Name],
			standings.Timeouts[player.Name])
	}
	fmt.Printf("%-12s %3d\n", "draws", standings.Draws)
}
