package insight

import "math/rand/v2"

// Rand is the source of randomness for variant and phrase selection.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type systemRand struct{}

func (systemRand) IntN(n int) int { return rand.IntN(n) }

// SystemRand returns a goroutine-safe Rand backed by the runtime's
// randomly seeded generator.
func SystemRand() Rand { return systemRand{} }

// NewSeededRand returns a deterministic Rand. It is not safe for
// concurrent use.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
