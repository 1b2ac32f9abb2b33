package othello

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove matches every *InvalidMoveError with errors.Is.
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidBoardState matches every *InvalidBoardStateError with errors.Is.
	ErrInvalidBoardState = errors.New("invalid board state")
)

// MoveErrorKind tells why a move was rejected.
type MoveErrorKind int

const (
	OutOfRange MoveErrorKind = iota
	Occupied
	WrongTurn
	NoFlips
	PassNotAllowed
)

func (k MoveErrorKind) String() string {
	switch k {
	case OutOfRange:
		return "square out of range"
	case Occupied:
		return "square is occupied"
	case WrongTurn:
		return "not this side's turn"
	case NoFlips:
		return "move flips no discs"
	case PassNotAllowed:
		return "pass not allowed, legal moves exist"
	default:
		return "unknown"
	}
}

// InvalidMoveError is returned when a move is rejected. The board is never modified when this is returned.
type InvalidMoveError struct {
	Kind MoveErrorKind
	Move Move
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move: %s (square %d, side %s)", e.Kind, e.Move.Square, e.Move.Side)
}

func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

// InvalidBoardStateError is returned when deserialized or parsed data violates board invariants.
type InvalidBoardStateError struct {
	Reason string
}

func (e *InvalidBoardStateError) Error() string {
	return "invalid board state: " + e.Reason
}

func (e *InvalidBoardStateError) Is(target error) bool {
	return target == ErrInvalidBoardState
}

func invalidState(format string, args ...any) error {
	return &InvalidBoardStateError{Reason: fmt.Sprintf(format, args...)}
}
