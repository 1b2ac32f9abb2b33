package search

import (
	"errors"
	"fmt"
)

const (
	MinLevel     = 1
	MaxLevel     = 6
	DefaultLevel = 4

	defaultEndgameEmpties = 10
	defaultSolveLevel     = 4
)

// ErrInvalidLevel is returned for a difficulty level outside the depth table.
var ErrInvalidLevel = errors.New("invalid difficulty level")

// Config maps difficulty levels to search depths. It is not modified after creation.
type Config struct {
	// Depths holds the nominal depth of level i+1 at index i.
	Depths []int

	// EndgameEmpties is the number of empty squares from which the depth is extended.
	EndgameEmpties int

	// SolveLevel is the lowest level that searches to the end of the game once EndgameEmpties is reached.
	SolveLevel int
}

// DefaultConfig returns the default depth table: level k searches k plies.
func DefaultConfig() Config {
	depths := make([]int, 0, MaxLevel)
	for level := MinLevel; level <= MaxLevel; level++ {
		depths = append(depths, level)
	}

	return Config{
		Depths:         depths,
		EndgameEmpties: defaultEndgameEmpties,
		SolveLevel:     defaultSolveLevel,
	}
}

// Validate checks the depth table is non-empty, positive and non-decreasing.
func (c Config) Validate() error {
	if len(c.Depths) == 0 {
		return errors.New("depth table is empty")
	}

	for i, depth := range c.Depths {
		if depth < 1 {
			return fmt.Errorf("depth %d of level %d is not positive", depth, i+1)
		}

		if i > 0 && depth < c.Depths[i-1] {
			return fmt.Errorf("depth of level %d is lower than level %d", i+1, i)
		}
	}

	if c.EndgameEmpties < 0 {
		return fmt.Errorf("endgame empties %d is negative", c.EndgameEmpties)
	}

	if c.SolveLevel < MinLevel {
		return fmt.Errorf("solve level %d is below %d", c.SolveLevel, MinLevel)
	}

	return nil
}

// Levels returns the number of difficulty levels.
func (c Config) Levels() int {
	return len(c.Depths)
}

// CheckLevel returns ErrInvalidLevel when level is not in the depth table.
func (c Config) CheckLevel(level int) error {
	if level < MinLevel || level > len(c.Depths) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidLevel, level, MinLevel, len(c.Depths))
	}
	return nil
}

// Depth returns the maximum depth for a level given the number of empty squares.
//
// Near the end of the game strong levels search to the end, weaker levels get level extra plies.
// The result never exceeds the number of empty squares and is at least one.
func (c Config) Depth(level, empties int) int {
	depth := c.Depths[level-1]

	if empties <= c.EndgameEmpties {
		if level >= c.SolveLevel {
			depth = empties
		} else {
			depth += level
		}
	}

	return max(1, min(depth, empties))
}
