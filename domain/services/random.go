package services

import (
	"math/rand/v2"
	"sync"

	"celestia/domain/interfaces"
)

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a RandomSource backed by a PCG generator seeded with
// the given values, safe for concurrent use
func NewRandomSource(seed1, seed2 uint64) interfaces.RandomSource {
	return &lockedRand{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

type globalRand struct{}

// DefaultRandomSource draws from the runtime's randomly seeded generator
func DefaultRandomSource() interfaces.RandomSource {
	return globalRand{}
}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}
