package othello

import (
	"fmt"
	"strings"
)

// Disc is the content of a single square.
type Disc uint8

const (
	EMPTY Disc = 0
	BLACK Disc = 1
	WHITE Disc = 2
)

const (
	MinSize     = 4
	MaxSize     = 16
	DefaultSize = 8
)

// Opponent returns the other color. EMPTY maps to EMPTY.
func (d Disc) Opponent() Disc {
	switch d {
	case BLACK:
		return WHITE
	case WHITE:
		return BLACK
	default:
		return EMPTY
	}
}

// IsSide checks if the disc is one of the two playing colors.
func (d Disc) IsSide() bool {
	return d == BLACK || d == WHITE
}

func (d Disc) String() string {
	switch d {
	case BLACK:
		return "black"
	case WHITE:
		return "white"
	default:
		return "empty"
	}
}

// ParseDisc parses "black" or "white", case insensitive.
func ParseDisc(s string) (Disc, error) {
	switch strings.ToLower(s) {
	case "black", "b":
		return BLACK, nil
	case "white", "w":
		return WHITE, nil
	default:
		return EMPTY, fmt.Errorf("invalid side: %q", s)
	}
}

// ValidateSize checks that a board dimension is even and within [MinSize, MaxSize].
func ValidateSize(size int) error {
	if size < MinSize || size > MaxSize {
		return fmt.Errorf("board size %d outside valid range [%d, %d]", size, MinSize, MaxSize)
	}

	if size%2 != 0 {
		return fmt.Errorf("board size %d must be even", size)
	}

	return nil
}

// Move is a disc placement by a side. Square is row*size + col.
type Move struct {
	Square int
	Side   Disc
}

// Row returns the row of the move on a board with the given size.
func (m Move) Row(size int) int {
	return m.Square / size
}

// Col returns the column of the move on a board with the given size.
func (m Move) Col(size int) int {
	return m.Square % size
}

// MoveRecord contains everything needed to revert a move or a pass.
type MoveRecord struct {
	Move Move

	// Pass is true for a forced pass, Move.Square is then PassSquare.
	Pass bool

	// Flipped lists the squares that changed from Captured to Move.Side.
	Flipped []int

	// Captured is the color the flipped discs had before the move.
	Captured Disc

	// Skipped is true if the opponent had no moves and the mover kept the turn.
	Skipped bool

	prevTurn       Disc
	prevMoveNumber int
	prevHash       uint64
}

// PassSquare marks a pass in MoveRecord.Move.Square and in move lists.
const PassSquare = -1
