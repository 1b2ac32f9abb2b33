// Package tt implements the transposition table shared by the iterations of a search.
package tt

import (
	"sync"

	"github.com/lk16/reversi/internal/othello"
)

const (
	// DefaultCapacity is the requested number of entries, rounded up to a power of two.
	DefaultCapacity = 10000

	bucketSize = 4
)

// NoMove marks an entry without a best move hint.
const NoMove = othello.PassSquare

// Bound tells how a stored score relates to the true value of a position.
type Bound uint8

const (
	Exact Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	default:
		return "unknown"
	}
}

// Entry is a cached search result.
type Entry struct {
	Key        uint64
	Score      int
	Bound      Bound
	Depth      int
	Move       int
	Generation uint32
	valid      bool
}

// Cutoff returns the stored score if it settles a search of the given depth and window.
func (e Entry) Cutoff(depth, alpha, beta int) (int, bool) {
	if e.Depth < depth {
		return 0, false
	}

	switch e.Bound {
	case Exact:
		return e.Score, true
	case LowerBound:
		if e.Score >= beta {
			return e.Score, true
		}
	case UpperBound:
		if e.Score <= alpha {
			return e.Score, true
		}
	}

	return 0, false
}

// Stats counts table operations since the last Clear.
type Stats struct {
	Probes    uint64 `json:"probes"`
	Hits      uint64 `json:"hits"`
	Stores    uint64 `json:"stores"`
	Evictions uint64 `json:"evictions"`
	Rejected  uint64 `json:"rejected"`
}

// Table is a fixed capacity transposition table with 4-way buckets.
//
// Entries are matched on the full 64-bit Zobrist key. Two positions sharing a key are not
// told apart, so best move hints must be checked against the legal moves before use.
type Table struct {
	mu         sync.Mutex
	entries    []Entry
	mask       uint64
	boardSize  int
	generation uint32
	count      int
	stats      Stats
}

// New creates a table holding at least capacity entries.
func New(capacity int) *Table {
	if capacity < bucketSize {
		capacity = bucketSize
	}

	total := nextPowerOfTwo(uint64(capacity))
	buckets := total / bucketSize

	return &Table{
		entries:    make([]Entry, total),
		mask:       buckets - 1,
		generation: 1,
	}
}

func nextPowerOfTwo(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Capacity returns the number of slots.
func (t *Table) Capacity() int {
	return len(t.entries)
}

// Len returns the number of filled slots.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

// Stats returns a copy of the counters.
func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stats
}

// Generation returns the current search generation.
func (t *Table) Generation() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.generation
}

// NextGeneration marks all current entries as belonging to an older search.
func (t *Table) NextGeneration() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
	if t.generation == 0 {
		t.generation = 1
	}
}

// Clear removes all entries and resets the counters.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clear()
}

func (t *Table) clear() {
	clear(t.entries)
	t.count = 0
	t.generation = 1
	t.stats = Stats{}
}

// Reset binds the table to a board dimension. Entries computed for another dimension are dropped.
// It returns true if the table was cleared.
func (t *Table) Reset(boardSize int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.boardSize == boardSize {
		return false
	}

	t.boardSize = boardSize
	t.clear()
	return true
}

func (t *Table) bucket(key uint64) []Entry {
	start := (key & t.mask) * bucketSize
	return t.entries[start : start+bucketSize]
}

// Probe looks up a key.
func (t *Table) Probe(key uint64) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Probes++

	for _, entry := range t.bucket(key) {
		if entry.valid && entry.Key == key {
			t.stats.Hits++
			return entry, true
		}
	}

	return Entry{}, false
}

// Store saves a search result.
//
// An entry for the same key is only overwritten by a search at least as deep. Otherwise a free
// slot in the bucket is used. A full bucket evicts its oldest, shallowest entry if the new result
// is at least as deep or the victim was written by an older generation.
func (t *Table) Store(key uint64, depth, score int, bound Bound, move int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := Entry{
		Key:        key,
		Score:      score,
		Bound:      bound,
		Depth:      depth,
		Move:       move,
		Generation: t.generation,
		valid:      true,
	}

	bucket := t.bucket(key)

	for i := range bucket {
		if bucket[i].valid && bucket[i].Key == key {
			if depth < bucket[i].Depth {
				t.stats.Rejected++
				return
			}

			if move == NoMove {
				entry.Move = bucket[i].Move
			}

			bucket[i] = entry
			t.stats.Stores++
			return
		}
	}

	for i := range bucket {
		if !bucket[i].valid {
			bucket[i] = entry
			t.count++
			t.stats.Stores++
			return
		}
	}

	victim := 0
	for i := 1; i < len(bucket); i++ {
		if isWorse(bucket[i], bucket[victim]) {
			victim = i
		}
	}

	if depth < bucket[victim].Depth && bucket[victim].Generation == t.generation {
		t.stats.Rejected++
		return
	}

	bucket[victim] = entry
	t.stats.Stores++
	t.stats.Evictions++
}

// isWorse orders eviction candidates: older generation first, then shallower depth.
func isWorse(a, b Entry) bool {
	if a.Generation != b.Generation {
		return a.Generation < b.Generation
	}
	return a.Depth < b.Depth
}
