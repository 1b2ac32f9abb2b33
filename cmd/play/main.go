package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/lk16/reversi/internal/client"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/othello"
)

const help = `Commands:
  <field>   play a move, for example d3
  ai        let the computer move for you
  hint      score all legal moves
  undo      take back the last move
  redo      replay an undone move
  quit      stop playing`

func printState(state game.State) {
	for _, row := range state.Rows {
		fmt.Println(row)
	}

	fmt.Printf("Black %d - %d White\n", state.Black, state.White)

	if state.Summary != nil {
		fmt.Printf("Game over, winner: %s\n", state.Summary.Winner)
		return
	}

	fields := make([]string, 0, len(state.LegalMoves))
	for _, move := range state.LegalMoves {
		fields = append(fields, move.Field)
	}
	fmt.Printf("%s to move: %s\n", state.Turn, strings.Join(fields, " "))
}

// handleCommand runs one line of input. It returns false when the player quits.
func handleCommand(ctx context.Context, api *client.Client, state game.State, line string) (game.State, bool, error) {
	switch line {
	case "":
		return state, true, nil
	case "quit", "exit":
		return state, false, nil
	case "help":
		fmt.Println(help)
		return state, true, nil
	case "undo":
		next, err := api.Undo(ctx, state.ID)
		return next, true, err
	case "redo":
		next, err := api.Redo(ctx, state.ID)
		return next, true, err
	case "ai":
		next, err := api.PlayAIMove(ctx, state.ID)
		return next, true, err
	case "hint":
		scores, err := api.Analyze(ctx, state.ID, 0)
		if err != nil {
			return state, true, err
		}
		for _, score := range scores {
			fmt.Printf("%4s %+d\n", score.Field, score.Score)
		}
		return state, true, nil
	}

	square, err := othello.FieldToIndex(line, state.Size)
	if err != nil {
		return state, true, err
	}

	if square == othello.PassSquare {
		return state, true, errors.New("passes are played automatically")
	}

	next, err := api.PlayMove(ctx, state.ID, square/state.Size, square%state.Size)
	return next, true, err
}

func run(ctx context.Context, api *client.Client, request models.NewGameRequest) error {
	state, err := api.CreateGame(ctx, request)
	if err != nil {
		return err
	}

	defer func() {
		if err := api.DeleteGame(context.WithoutCancel(ctx), state.ID); err != nil {
			slog.Warn("Could not delete game", "error", err)
		}
	}()

	fmt.Println(help)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if state, err = api.WaitForTurn(ctx, state.ID); err != nil {
			return err
		}

		printState(state)

		if state.Summary != nil {
			return nil
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		next, keepPlaying, err := handleCommand(ctx, api, state, strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Println(err)
			continue
		}

		if !keepPlaying {
			return nil
		}
		state = next
	}
}

func main() {
	size := flag.Int("size", 0, "board size, 0 uses the server default")
	mode := flag.String("mode", game.HumanVsAI.String(), "human_vs_ai, human_vs_human or ai_vs_ai")
	side := flag.String("side", "black", "side of the human player")
	level := flag.Int("level", 0, "difficulty level, 0 uses the server default")
	flag.Parse()

	config.LoadDotEnv()
	config.SetLogLevel()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.NewClient(config.LoadClientConfig())

	request := models.NewGameRequest{
		Size:       *size,
		Mode:       *mode,
		HumanSide:  *side,
		Difficulty: *level,
	}

	if err := run(ctx, api, request); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Game failed", "error", err)
		os.Exit(1)
	}
}
