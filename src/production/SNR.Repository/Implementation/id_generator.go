package implementation

import "sync/atomic"

// AtomicIDGenerator hands out strictly increasing ids, safe for concurrent use.
type AtomicIDGenerator struct {
	id int64
}

// NewAtomicIDGenerator returns a generator whose first id is start+1
func NewAtomicIDGenerator(start int64) *AtomicIDGenerator {
	return &AtomicIDGenerator{id: start}
}

// Generate returns the next unique ID.
func (g *AtomicIDGenerator) Generate() int64 {
	return atomic.AddInt64(&g.id, 1)
}
