package othello

import (
	"fmt"
	"slices"
)

// directions as (row, col) steps.
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is a mutable Othello board of any supported even dimension.
// A Board must not be used by multiple goroutines at the same time.
type Board struct {
	size       int
	cells      []Disc
	turn       Disc
	moveNumber int
	black      int
	white      int
	hash       uint64
	zobrist    *zobristKeys
}

// NewBoard creates a board with the starting position for the given size.
func NewBoard(size int) (*Board, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}

	cells := make([]Disc, size*size)
	mid := size / 2
	cells[(mid-1)*size+mid-1] = WHITE
	cells[mid*size+mid] = WHITE
	cells[(mid-1)*size+mid] = BLACK
	cells[mid*size+mid-1] = BLACK

	return newBoard(size, cells, BLACK, 0), nil
}

// NewBoardStart creates a new 8x8 board with the starting position.
func NewBoardStart() *Board {
	board, err := NewBoard(DefaultSize)
	if err != nil {
		panic(err)
	}
	return board
}

// NewBoardFromCells creates a board from a row-major list of discs.
// The side to move is taken as-is, use PassIfForced to resolve a blocked side.
func NewBoardFromCells(size int, cells []Disc, turn Disc, moveNumber int) (*Board, error) {
	if err := ValidateSize(size); err != nil {
		return nil, invalidState("%s", err.Error())
	}

	if len(cells) != size*size {
		return nil, invalidState("expected %d cells, got %d", size*size, len(cells))
	}

	if !turn.IsSide() {
		return nil, invalidState("invalid side to move: %d", turn)
	}

	if moveNumber < 0 || moveNumber > size*size {
		return nil, invalidState("move number %d outside [0, %d]", moveNumber, size*size)
	}

	for i, disc := range cells {
		if disc > WHITE {
			return nil, invalidState("invalid disc %d at square %d", disc, i)
		}
	}

	return newBoard(size, slices.Clone(cells), turn, moveNumber), nil
}

func newBoard(size int, cells []Disc, turn Disc, moveNumber int) *Board {
	b := &Board{
		size:       size,
		cells:      cells,
		turn:       turn,
		moveNumber: moveNumber,
		zobrist:    getZobrist(size),
	}

	for _, disc := range cells {
		switch disc {
		case BLACK:
			b.black++
		case WHITE:
			b.white++
		}
	}

	b.hash = b.computeHash()
	return b
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	clone := *b
	clone.cells = slices.Clone(b.cells)
	return &clone
}

// Equal checks if two boards have the same dimension, discs, side to move and move number.
func (b *Board) Equal(other *Board) bool {
	return b.size == other.size &&
		b.turn == other.turn &&
		b.moveNumber == other.moveNumber &&
		slices.Equal(b.cells, other.cells)
}

// Size returns the board dimension N of the N*N grid.
func (b *Board) Size() int {
	return b.size
}

// Turn returns the side to move.
func (b *Board) Turn() Disc {
	return b.turn
}

// MoveNumber returns the number of discs placed since the start position.
func (b *Board) MoveNumber() int {
	return b.moveNumber
}

// Hash returns the Zobrist fingerprint of discs and side to move.
func (b *Board) Hash() uint64 {
	return b.hash
}

// Square converts a row and column to a square index, or -1 if off the board.
func (b *Board) Square(row, col int) int {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return -1
	}
	return row*b.size + col
}

// At returns the disc at a row and column.
func (b *Board) At(row, col int) Disc {
	return b.cells[row*b.size+col]
}

// Get returns the disc at a square index.
func (b *Board) Get(square int) Disc {
	return b.cells[square]
}

// Cells returns a copy of the row-major grid.
func (b *Board) Cells() []Disc {
	return slices.Clone(b.cells)
}

// Score returns the disc counts of black and white.
func (b *Board) Score() (int, int) {
	return b.black, b.white
}

// Count returns the disc count of a side.
func (b *Board) Count(side Disc) int {
	switch side {
	case BLACK:
		return b.black
	case WHITE:
		return b.white
	default:
		return b.Empties()
	}
}

// Empties returns the number of empty squares.
func (b *Board) Empties() int {
	return len(b.cells) - b.black - b.white
}

// flipsInDirection returns how many opponent discs would flip along one direction.
func (b *Board) flipsInDirection(row, col, dr, dc int, side Disc) int {
	opp := side.Opponent()
	run := 0
	r, c := row+dr, col+dc

	for r >= 0 && r < b.size && c >= 0 && c < b.size {
		switch b.cells[r*b.size+c] {
		case opp:
			run++
		case side:
			return run
		default:
			return 0
		}
		r += dr
		c += dc
	}

	return 0
}

// isLegal checks legality without allocating.
func (b *Board) isLegal(square int, side Disc) bool {
	if b.cells[square] != EMPTY {
		return false
	}

	row, col := square/b.size, square%b.size
	for _, dir := range directions {
		if b.flipsInDirection(row, col, dir[0], dir[1], side) > 0 {
			return true
		}
	}
	return false
}

// Flips returns the squares that would be flipped if side played on square.
func (b *Board) Flips(square int, side Disc) []int {
	if square < 0 || square >= len(b.cells) || b.cells[square] != EMPTY || !side.IsSide() {
		return nil
	}

	var flipped []int
	row, col := square/b.size, square%b.size

	for _, dir := range directions {
		n := b.flipsInDirection(row, col, dir[0], dir[1], side)
		for dist := 1; dist <= n; dist++ {
			flipped = append(flipped, (row+dist*dir[0])*b.size+col+dist*dir[1])
		}
	}

	return flipped
}

// LegalMoves returns all legal moves for side in row-major order.
func (b *Board) LegalMoves(side Disc) []Move {
	if !side.IsSide() {
		return nil
	}

	moves := make([]Move, 0, 16)
	for square := range b.cells {
		if b.isLegal(square, side) {
			moves = append(moves, Move{Square: square, Side: side})
		}
	}
	return moves
}

// HasLegalMoves checks if side has at least one legal move.
func (b *Board) HasLegalMoves(side Disc) bool {
	for square := range b.cells {
		if b.isLegal(square, side) {
			return true
		}
	}
	return false
}

// CountLegalMoves returns the number of legal moves of side.
func (b *Board) CountLegalMoves(side Disc) int {
	count := 0
	for square := range b.cells {
		if b.isLegal(square, side) {
			count++
		}
	}
	return count
}

// IsLegal checks if a move is legal for the side to move.
func (b *Board) IsLegal(move Move) bool {
	return b.validate(move) == nil
}

// validate checks a move without touching the board.
func (b *Board) validate(move Move) error {
	if move.Square < 0 || move.Square >= len(b.cells) {
		return &InvalidMoveError{Kind: OutOfRange, Move: move}
	}

	if move.Side != b.turn {
		return &InvalidMoveError{Kind: WrongTurn, Move: move}
	}

	if b.cells[move.Square] != EMPTY {
		return &InvalidMoveError{Kind: Occupied, Move: move}
	}

	if !b.isLegal(move.Square, move.Side) {
		return &InvalidMoveError{Kind: NoFlips, Move: move}
	}

	return nil
}

// Apply plays a move. Invalid moves are rejected before anything is modified.
// After the move the opponent is to move, unless it has no legal moves and the mover does.
func (b *Board) Apply(move Move) (MoveRecord, error) {
	if err := b.validate(move); err != nil {
		return MoveRecord{}, err
	}

	side := move.Side
	opp := side.Opponent()
	flipped := b.Flips(move.Square, side)

	record := MoveRecord{
		Move:           move,
		Flipped:        flipped,
		Captured:       opp,
		prevTurn:       b.turn,
		prevMoveNumber: b.moveNumber,
		prevHash:       b.hash,
	}

	b.cells[move.Square] = side
	b.hash ^= b.zobrist.disc(move.Square, side)
	for _, square := range flipped {
		b.cells[square] = side
		b.hash ^= b.zobrist.disc(square, opp) ^ b.zobrist.disc(square, side)
	}

	gained := len(flipped) + 1
	if side == BLACK {
		b.black += gained
		b.white -= len(flipped)
	} else {
		b.white += gained
		b.black -= len(flipped)
	}

	b.moveNumber++

	next := opp
	if !b.HasLegalMoves(opp) && b.HasLegalMoves(side) {
		next = side
		record.Skipped = true
	}
	b.setTurn(next)

	return record, nil
}

// Pass hands the turn to the opponent. It fails if the side to move has a legal move.
func (b *Board) Pass() (MoveRecord, error) {
	move := Move{Square: PassSquare, Side: b.turn}

	if b.HasLegalMoves(b.turn) {
		return MoveRecord{}, &InvalidMoveError{Kind: PassNotAllowed, Move: move}
	}

	record := MoveRecord{
		Move:           move,
		Pass:           true,
		prevTurn:       b.turn,
		prevMoveNumber: b.moveNumber,
		prevHash:       b.hash,
	}

	b.setTurn(b.turn.Opponent())
	return record, nil
}

// PassIfForced gives the turn to the opponent when the side to move is blocked and the opponent is not.
// The grid is never modified. It returns true if the turn changed.
func (b *Board) PassIfForced() bool {
	if b.HasLegalMoves(b.turn) || !b.HasLegalMoves(b.turn.Opponent()) {
		return false
	}

	b.setTurn(b.turn.Opponent())
	return true
}

// Undo reverts a move or pass. Records must be undone in reverse order of application.
func (b *Board) Undo(record MoveRecord) {
	if !record.Pass {
		side := record.Move.Side
		b.cells[record.Move.Square] = EMPTY
		for _, square := range record.Flipped {
			b.cells[square] = record.Captured
		}

		if side == BLACK {
			b.black -= len(record.Flipped) + 1
			b.white += len(record.Flipped)
		} else {
			b.white -= len(record.Flipped) + 1
			b.black += len(record.Flipped)
		}
	}

	b.turn = record.prevTurn
	b.moveNumber = record.prevMoveNumber
	b.hash = record.prevHash
}

func (b *Board) setTurn(turn Disc) {
	if b.turn == turn {
		return
	}
	b.hash ^= b.zobrist.white
	b.turn = turn
}

// IsTerminal checks if neither side has a legal move.
func (b *Board) IsTerminal() bool {
	return !b.HasLegalMoves(BLACK) && !b.HasLegalMoves(WHITE)
}

// Winner returns the side with more discs, or EMPTY for a draw.
func (b *Board) Winner() Disc {
	switch {
	case b.black > b.white:
		return BLACK
	case b.white > b.black:
		return WHITE
	default:
		return EMPTY
	}
}

// FieldName returns the field notation of a square, such as "d3". Columns are letters, rows start at 1.
func (b *Board) FieldName(square int) string {
	if square == PassSquare {
		return "--"
	}
	return fmt.Sprintf("%c%d", 'a'+rune(square%b.size), square/b.size+1)
}
