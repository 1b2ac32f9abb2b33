package game

import (
	"bytes"
	"fmt"

	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
)

// SaveData is everything needed to continue a game later.
type SaveData struct {
	Settings Settings

	// Moves lists the squares of all moves played, othello.PassSquare for passes.
	Moves []int

	// Board is the serialized final position, used to verify the replayed moves.
	Board []byte
}

// Export returns the save data of the game.
func (c *Controller) Export() SaveData {
	c.mu.Lock()
	defer c.mu.Unlock()

	moves := make([]int, len(c.history))
	for i, t := range c.history {
		moves[i] = t.record.Move.Square
	}

	return SaveData{
		Settings: c.settings,
		Moves:    moves,
		Board:    c.board.Serialize(),
	}
}

// Restore continues a saved game. The moves are replayed from the start position, the result has
// to match the saved board exactly.
func Restore(data SaveData, engine *search.Engine, opts ...ControllerOption) (*Controller, error) {
	saved, err := othello.Deserialize(data.Board)
	if err != nil {
		return nil, err
	}

	if saved.Size() != data.Settings.Size {
		return nil, &othello.InvalidBoardStateError{
			Reason: fmt.Sprintf("saved board has size %d, settings have %d", saved.Size(), data.Settings.Size),
		}
	}

	c, err := newController(data.Settings, engine, opts...)
	if err != nil {
		return nil, err
	}

	for i, square := range data.Moves {
		var record othello.MoveRecord

		if square == othello.PassSquare {
			record, err = c.board.Pass()
		} else {
			record, err = c.board.Apply(othello.Move{Square: square, Side: c.board.Turn()})
		}

		if err != nil {
			return nil, &othello.InvalidBoardStateError{
				Reason: fmt.Sprintf("move %d can not be replayed: %s", i+1, err),
			}
		}

		c.history = append(c.history, c.newTurn(record))
	}

	if !bytes.Equal(c.board.Serialize(), data.Board) {
		return nil, &othello.InvalidBoardStateError{Reason: "replayed moves do not match saved board"}
	}

	// Finished games were recorded when they were played.
	c.recorded = c.board.IsTerminal()

	if err = c.update(c.advance); err != nil {
		return nil, err
	}

	return c, nil
}
