package othello

import (
	"fmt"
	"math"
	"strings"
)

// String returns the position string: one character per square ('.', 'X' for black, 'O' for white)
// followed by "-b" or "-w" for the side to move.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(len(b.cells) + 2)

	for _, disc := range b.cells {
		sb.WriteByte(discChar(disc))
	}

	if b.turn == WHITE {
		sb.WriteString("-w")
	} else {
		sb.WriteString("-b")
	}

	return sb.String()
}

// ParseBoard creates a board from a position string as returned by String.
// The move number is derived from the disc count.
func ParseBoard(s string) (*Board, error) {
	if len(s) < 2 {
		return nil, invalidState("board string too short: %d", len(s))
	}

	cellString := s[:len(s)-2]
	size := int(math.Sqrt(float64(len(cellString))))
	if size*size != len(cellString) {
		return nil, invalidState("board string has %d cells, which is not a square", len(cellString))
	}

	var turn Disc
	switch s[len(s)-2:] {
	case "-b":
		turn = BLACK
	case "-w":
		turn = WHITE
	default:
		return nil, invalidState("invalid turn: %s", s[len(s)-2:])
	}

	cells := make([]Disc, len(cellString))
	discs := 0
	for i := range len(cellString) {
		switch cellString[i] {
		case '.', '-':
			cells[i] = EMPTY
		case 'X', 'x', '*':
			cells[i] = BLACK
			discs++
		case 'O', 'o':
			cells[i] = WHITE
			discs++
		default:
			return nil, invalidState("invalid character %q at square %d", cellString[i], i)
		}
	}

	return NewBoardFromCells(size, cells, turn, max(0, discs-4))
}

// MustParseBoard is like ParseBoard but panics on error. It is intended for tests and constants.
func MustParseBoard(s string) *Board {
	b, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}
	return b
}

func discChar(disc Disc) byte {
	switch disc {
	case BLACK:
		return 'X'
	case WHITE:
		return 'O'
	default:
		return '.'
	}
}

// ASCIIArtLines returns the ascii art lines for the board, marking legal moves of the side to move.
func (b *Board) ASCIIArtLines() []string {
	legal := make(map[int]bool)
	for _, move := range b.LegalMoves(b.turn) {
		legal[move.Square] = true
	}

	header := "+-"
	for col := range b.size {
		header += fmt.Sprintf("%c-", 'a'+rune(col))
	}
	header += "+"

	lines := make([]string, b.size+2)
	lines[0] = header

	for row := range b.size {
		line := fmt.Sprintf("%-2d", row+1)

		for col := range b.size {
			square := row*b.size + col

			switch {
			case b.cells[square] == WHITE:
				line += "○ "
			case b.cells[square] == BLACK:
				line += "● "
			case legal[square]:
				line += "· "
			default:
				line += "  "
			}
		}

		lines[row+1] = line + "|"
	}

	lines[b.size+1] = "+" + strings.Repeat("-", len(header)-2) + "+"

	return lines
}

// Print prints the board to the console. This is used for debugging.
func (b *Board) Print() {
	for _, line := range b.ASCIIArtLines() {
		fmt.Println(line)
	}
}

// FieldToIndex converts a field notation (e.g. "a1", "p16") to a square index.
// PassSquare is returned if the field is "--", "ps" or "pa".
func FieldToIndex(field string, size int) (int, error) {
	field = strings.ToLower(field)

	if field == "--" || field == "ps" || field == "pa" {
		return PassSquare, nil
	}

	if len(field) < 2 || len(field) > 3 {
		return 0, fmt.Errorf("invalid field length: %s", field)
	}

	col := int(field[0] - 'a')
	var row int
	if _, err := fmt.Sscanf(field[1:], "%d", &row); err != nil {
		return 0, fmt.Errorf("invalid field: %s", field)
	}
	row--

	if col < 0 || col >= size || row < 0 || row >= size {
		return 0, fmt.Errorf("invalid field: %s", field)
	}

	return row*size + col, nil
}
