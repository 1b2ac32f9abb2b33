package game

import (
	"time"

	"github.com/lk16/reversi/internal/othello"
)

// Phase is the state of the turn loop. It is one of AwaitingHuman, AIThinking or Finished.
type Phase interface {
	Name() string
	isPhase()
}

// AwaitingHuman waits for a human to play Side.
type AwaitingHuman struct {
	Side othello.Disc
}

// AIThinking runs a search for Side in the background.
type AIThinking struct {
	Side    othello.Disc
	Started time.Time
}

// Finished is reached when neither side can move.
type Finished struct {
	Summary Summary
}

func (AwaitingHuman) Name() string { return "awaiting_human" }
func (AIThinking) Name() string    { return "ai_thinking" }
func (Finished) Name() string      { return "finished" }

func (AwaitingHuman) isPhase() {}
func (AIThinking) isPhase()    {}
func (Finished) isPhase()      {}
