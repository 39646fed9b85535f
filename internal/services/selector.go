package services

import (
	"math/rand/v2"
	"time"

	"luckydraw/internal/models"
)

// RandomSource is the pseudo-random generator behind every shuffle and pick.
// *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a generator seeded from the wall clock and the
// runtime's own entropy. Tests should pass a seeded *rand.Rand instead.
func NewRandomSource() RandomSource {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

// Selector picks winners uniformly at random without replacement.
// It never mutates the pool it is given.
type Selector struct {
	rng RandomSource
}

// NewSelector creates a Selector driven by rng.
func NewSelector(rng RandomSource) *Selector {
	return &Selector{rng: rng}
}

// Select draws up to count distinct entries from pool. When count exceeds the
// pool size every remaining participant is awarded; an empty pool yields an
// empty result.
func (s *Selector) Select(pool []models.Participant, count int) []models.Participant {
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return []models.Participant{}
	}

	if count == 1 {
		return []models.Participant{pool[s.rng.IntN(len(pool))]}
	}

	// Partial Fisher-Yates over a copy: the first count slots end up holding a
	// uniformly random ordered sample.
	scratch := make([]models.Participant, len(pool))
	copy(scratch, pool)
	for i := 0; i < count; i++ {
		j := i + s.rng.IntN(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}

	winners := make([]models.Participant, count)
	copy(winners, scratch[:count])
	return winners
}

// Shuffle permutes participants in place (Fisher-Yates).
func (s *Selector) Shuffle(participants []models.Participant) {
	for i := len(participants) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		participants[i], participants[j] = participants[j], participants[i]
	}
}
