package search

import "github.com/hailam/chessarena/internal/board"

// Bound classifies a transposition table score.
type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower       // score failed high (>= beta)
	BoundUpper       // score failed low (<= alpha)
)

// ttEntry is one direct-mapped transposition table slot, 24 bytes with
// alignment padding.
type ttEntry struct {
	key   uint64
	score int32
	best  board.Move
	depth int8
	bound Bound
	age   uint8
}

// ttTable is a fixed power-of-two, direct-mapped transposition table owned
// by a single searcher. It is never shared across goroutines.
type ttTable struct {
	entries []ttEntry
	mask    uint64
	age     uint8
}

// newTTTable allocates a table with 1<<power entries.
func newTTTable(power uint) *ttTable {
	size := uint64(1) << power
	return &ttTable{
		entries: make([]ttEntry, size),
		mask:    size - 1,
	}
}

// nextSearch bumps the table age; stale entries lose replacement priority.
func (t *ttTable) nextSearch() { t.age++ }

func (t *ttTable) probe(key uint64) (ttEntry, bool) {
	e := t.entries[key&t.mask]
	if e.key == key && e.depth > 0 {
		return e, true
	}
	return ttEntry{}, false
}

// store writes an entry. An existing slot survives only when it belongs to
// the current search and is deeper than the incoming entry.
func (t *ttTable) store(key uint64, depth int, score int, bound Bound, best board.Move) {
	slot := &t.entries[key&t.mask]
	if slot.key != 0 && slot.age == t.age && int(slot.depth) > depth {
		return
	}
	*slot = ttEntry{
		key:   key,
		score: int32(score),
		best:  best,
		depth: int8(depth),
		bound: bound,
		age:   t.age,
	}
}
