package utils

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// ErrIDSpaceExhausted is returned when every id of the range is in use.
var ErrIDSpaceExhausted = errors.New("id space exhausted")

// IDGenerator hands out random ids from [min, max] that are unique among the
// ids currently in use. Ids become available again after Release.
type IDGenerator struct {
	min, max int

	mu    sync.Mutex
	inUse map[int]struct{}
	rand  func(n int) int
}

// NewIDGenerator creates a generator for the inclusive range [min, max].
func NewIDGenerator(min, max int) *IDGenerator {
	return &IDGenerator{
		min:   min,
		max:   max,
		inUse: make(map[int]struct{}),
		rand:  rand.IntN,
	}
}

// NewRequestIDGenerator returns the generator for 6-digit request ids.
func NewRequestIDGenerator() *IDGenerator {
	return NewIDGenerator(100000, 999999)
}

// Next reserves and returns an id that is not in use.
func (g *IDGenerator) Next() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	size := g.max - g.min + 1
	if len(g.inUse) >= size {
		return 0, ErrIDSpaceExhausted
	}

	for {
		id := g.min + g.rand(size)
		if _, taken := g.inUse[id]; taken {
			continue
		}
		g.inUse[id] = struct{}{}
		return id, nil
	}
}

// Release returns id to the pool.
func (g *IDGenerator) Release(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inUse, id)
}
