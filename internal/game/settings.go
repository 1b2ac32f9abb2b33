package game

import (
	"fmt"
	"time"

	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/search"
)

// Mode tells which sides are played by the computer.
type Mode int

const (
	HumanVsAI Mode = iota
	HumanVsHuman
	AIVsAI
)

func (m Mode) String() string {
	switch m {
	case HumanVsAI:
		return "human_vs_ai"
	case HumanVsHuman:
		return "human_vs_human"
	case AIVsAI:
		return "ai_vs_ai"
	default:
		return "unknown"
	}
}

// ParseMode parses the output of Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, mode := range []Mode{HumanVsAI, HumanVsHuman, AIVsAI} {
		if mode.String() == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("invalid game mode %q", s)
}

// Settings are fixed for the lifetime of a game.
type Settings struct {
	Size      int
	Mode      Mode
	HumanSide othello.Disc
	Level     int
	Budget    time.Duration
}

// Validate checks the settings against the depth table of the engine.
func (s Settings) Validate(config search.Config) error {
	if err := othello.ValidateSize(s.Size); err != nil {
		return err
	}

	switch s.Mode {
	case HumanVsAI, HumanVsHuman, AIVsAI:
	default:
		return fmt.Errorf("invalid game mode %d", s.Mode)
	}

	if s.Mode == HumanVsAI && !s.HumanSide.IsSide() {
		return fmt.Errorf("invalid human side %s", s.HumanSide)
	}

	if s.Mode != HumanVsHuman {
		if err := config.CheckLevel(s.Level); err != nil {
			return err
		}
	}

	if s.Budget < 0 {
		return fmt.Errorf("time budget %s is negative", s.Budget)
	}

	return nil
}

// isAI checks if side is played by the computer.
func (s Settings) isAI(side othello.Disc) bool {
	switch s.Mode {
	case AIVsAI:
		return true
	case HumanVsAI:
		return side != s.HumanSide
	default:
		return false
	}
}
