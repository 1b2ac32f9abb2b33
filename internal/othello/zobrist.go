package othello

import "sync"

// zobristKeys holds the random keys for one board dimension.
type zobristKeys struct {
	discs []uint64 // two keys per square: black, white
	white uint64   // xored in when white is to move
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*zobristKeys
}

// Keys are derived from a fixed seed per dimension, so fingerprints are stable across runs
// but never comparable across dimensions.
var zobristTables = &zobristStore{tables: make(map[int]*zobristKeys)}

func getZobrist(size int) *zobristKeys {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()

	if keys, ok := zobristTables.tables[size]; ok {
		return keys
	}

	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(size)}
	keys := &zobristKeys{discs: make([]uint64, size*size*2)}
	for i := range keys.discs {
		keys.discs[i] = rng.next()
	}
	keys.white = rng.next()

	zobristTables.tables[size] = keys
	return keys
}

func (z *zobristKeys) disc(square int, disc Disc) uint64 {
	idx := square * 2
	if disc == WHITE {
		idx++
	}
	return z.discs[idx]
}

// computeHash computes the fingerprint from scratch.
func (b *Board) computeHash() uint64 {
	var hash uint64
	for square, disc := range b.cells {
		if disc != EMPTY {
			hash ^= b.zobrist.disc(square, disc)
		}
	}
	if b.turn == WHITE {
		hash ^= b.zobrist.white
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
