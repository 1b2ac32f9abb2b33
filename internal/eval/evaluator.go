// Package eval contains the static heuristic used by the search at its depth limit.
package eval

import (
	"math"

	"github.com/lk16/reversi/internal/othello"
)

const (
	// WinScore is added to the disc difference of finished games, so any win outranks any heuristic value.
	WinScore = 1_000_000

	openingFill = 0.30
	midgameFill = 0.60
	endgameFill = 0.85
)

// Square weights, before open-corner adjustment.
const (
	cornerWeight   = 100
	xSquareWeight  = -50
	cSquareWeight  = -20
	edgeWeight     = 10
	innerRingWidth = -2
	interiorWeight = 1
)

// Weights holds the multipliers of the evaluation terms for one game phase.
type Weights struct {
	Material   float64
	Mobility   float64
	Positional float64
	Frontier   float64
	Corner     float64
}

// DefaultOpening, DefaultMidgame and DefaultEndgame shift play from positional to material-driven.
var (
	DefaultOpening = Weights{Material: 1, Mobility: 5, Positional: 1, Frontier: -3, Corner: 25}
	DefaultMidgame = Weights{Material: 2, Mobility: 8, Positional: 1, Frontier: -4, Corner: 30}
	DefaultEndgame = Weights{Material: 10, Mobility: 2, Positional: 0.5, Frontier: -1, Corner: 15}
)

// Terms is a breakdown of an evaluation from the perspective of one side.
// Each term is the raw difference between that side and its opponent.
type Terms struct {
	Phase      float64
	Material   int
	Mobility   int
	Positional int
	Frontier   int
	Corners    int
	Terminal   bool
	Total      int
}

// Evaluator scores boards. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	opening Weights
	midgame Weights
	endgame Weights

	// tables is indexed by board size.
	tables [othello.MaxSize + 1][]int
}

// New creates an Evaluator with the default weights.
func New() *Evaluator {
	return NewWithWeights(DefaultOpening, DefaultMidgame, DefaultEndgame)
}

// NewWithWeights creates an Evaluator with custom weights per phase.
func NewWithWeights(opening, midgame, endgame Weights) *Evaluator {
	e := &Evaluator{
		opening: opening,
		midgame: midgame,
		endgame: endgame,
	}

	for size := othello.MinSize; size <= othello.MaxSize; size += 2 {
		e.tables[size] = squareTable(size)
	}

	return e
}

func squareTable(size int) []int {
	table := make([]int, size*size)

	for row := range size {
		for col := range size {
			dr := min(row, size-1-row)
			dc := min(col, size-1-col)

			var weight int
			switch {
			case dr == 0 && dc == 0:
				weight = cornerWeight
			case dr == 1 && dc == 1:
				weight = xSquareWeight
			case dr+dc == 1:
				weight = cSquareWeight
			case dr == 0 || dc == 0:
				weight = edgeWeight
			case dr == 1 || dc == 1:
				weight = innerRingWidth
			default:
				weight = interiorWeight
			}

			table[row*size+col] = weight
		}
	}

	return table
}

// nearestCorner returns the corner square that an X- or C-square belongs to.
func nearestCorner(size, square int) int {
	row, col := square/size, square%size

	cornerRow, cornerCol := 0, 0
	if row >= size/2 {
		cornerRow = size - 1
	}
	if col >= size/2 {
		cornerCol = size - 1
	}

	return cornerRow*size + cornerCol
}

// SquareWeight returns the positional value of a square. Squares next to a corner are only
// penalized while that corner is empty.
func (e *Evaluator) SquareWeight(b *othello.Board, square int) int {
	weight := e.tables[b.Size()][square]

	switch weight {
	case xSquareWeight:
		if b.Get(nearestCorner(b.Size(), square)) != othello.EMPTY {
			return 0
		}
	case cSquareWeight:
		if b.Get(nearestCorner(b.Size(), square)) != othello.EMPTY {
			return edgeWeight
		}
	}

	return weight
}

// PhaseWeights returns the interpolated weights for a fill fraction in [0, 1].
func (e *Evaluator) PhaseWeights(fill float64) Weights {
	switch {
	case fill <= openingFill:
		return e.opening
	case fill < midgameFill:
		return lerp(e.opening, e.midgame, (fill-openingFill)/(midgameFill-openingFill))
	case fill < endgameFill:
		return lerp(e.midgame, e.endgame, (fill-midgameFill)/(endgameFill-midgameFill))
	default:
		return e.endgame
	}
}

func lerp(a, b Weights, t float64) Weights {
	mix := func(x, y float64) float64 { return x + (y-x)*t }

	return Weights{
		Material:   mix(a.Material, b.Material),
		Mobility:   mix(a.Mobility, b.Mobility),
		Positional: mix(a.Positional, b.Positional),
		Frontier:   mix(a.Frontier, b.Frontier),
		Corner:     mix(a.Corner, b.Corner),
	}
}

// Evaluate returns the score of b for side, higher is better for side.
// Evaluate(b, BLACK) == -Evaluate(b, WHITE) holds for every board.
func (e *Evaluator) Evaluate(b *othello.Board, side othello.Disc) int {
	terms := e.blackTerms(b)

	if side == othello.WHITE {
		return -terms.Total
	}
	return terms.Total
}

// Breakdown returns the individual terms of the evaluation from the perspective of side.
func (e *Evaluator) Breakdown(b *othello.Board, side othello.Disc) Terms {
	terms := e.blackTerms(b)

	if side == othello.WHITE {
		terms.Material = -terms.Material
		terms.Mobility = -terms.Mobility
		terms.Positional = -terms.Positional
		terms.Frontier = -terms.Frontier
		terms.Corners = -terms.Corners
		terms.Total = -terms.Total
	}

	return terms
}

// blackTerms computes every term as black minus white.
func (e *Evaluator) blackTerms(b *othello.Board) Terms {
	black, white := b.Score()
	blackMoves := b.CountLegalMoves(othello.BLACK)
	whiteMoves := b.CountLegalMoves(othello.WHITE)

	squares := b.Size() * b.Size()
	terms := Terms{
		Phase:    float64(black+white) / float64(squares),
		Material: black - white,
		Mobility: blackMoves - whiteMoves,
	}

	if blackMoves == 0 && whiteMoves == 0 {
		terms.Terminal = true
		terms.Total = terms.Material
		switch {
		case terms.Material > 0:
			terms.Total += WinScore
		case terms.Material < 0:
			terms.Total -= WinScore
		}
		return terms
	}

	size := b.Size()
	lastRowStart := squares - size
	corners := [4]int{0, size - 1, lastRowStart, squares - 1}

	for square := range squares {
		disc := b.Get(square)
		if disc == othello.EMPTY {
			continue
		}

		sign := 1
		if disc == othello.WHITE {
			sign = -1
		}

		terms.Positional += sign * e.SquareWeight(b, square)

		if isFrontier(b, square) {
			terms.Frontier += sign
		}
	}

	for _, corner := range corners {
		switch b.Get(corner) {
		case othello.BLACK:
			terms.Corners++
		case othello.WHITE:
			terms.Corners--
		}
	}

	w := e.PhaseWeights(terms.Phase)
	total := w.Material*float64(terms.Material) +
		w.Mobility*float64(terms.Mobility) +
		w.Positional*float64(terms.Positional) +
		w.Frontier*float64(terms.Frontier) +
		w.Corner*float64(terms.Corners)

	// math.Round is symmetric around zero, which keeps the evaluation antisymmetric.
	terms.Total = int(math.Round(total))
	return terms
}

// isFrontier checks if a square has at least one empty neighbour.
func isFrontier(b *othello.Board, square int) bool {
	size := b.Size()
	row, col := square/size, square%size

	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}

			neighbour := b.Square(row+dr, col+dc)
			if neighbour >= 0 && b.Get(neighbour) == othello.EMPTY {
				return true
			}
		}
	}

	return false
}
