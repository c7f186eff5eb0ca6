package behavior

import (
	"math"
	"math/rand"
	"time"
)

// Source is the single randomness interface injected through every component
// of the engine. Behavior code never reaches for ambient randomness; tests
// supply a deterministic implementation and assert exact selections.
type Source interface {
	// Float64 returns a uniform draw from [0.0, 1.0).
	Float64() float64
	// Intn returns a uniform draw from [0, n). Panics if n <= 0.
	Intn(n int) int
	// Perm returns a uniform random permutation of [0, n).
	Perm(n int) []int
	// Gamma returns a draw from a gamma distribution with the given integer
	// shape and scale parameters.
	Gamma(shape int, scale float64) float64
}

// mathSource backs Source with math/rand. It is not safe for concurrent use,
// which is fine: the engine is a single logical actor.
type mathSource struct {
	rng *rand.Rand
}

// NewSource returns a Source seeded with the given value.
func NewSource(seed int64) Source {
	return &mathSource{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSource returns a Source seeded from the wall clock.
func NewTimeSource() Source {
	return NewSource(time.Now().UnixNano())
}

func (s *mathSource) Float64() float64 { return s.rng.Float64() }
func (s *mathSource) Intn(n int) int   { return s.rng.Intn(n) }
func (s *mathSource) Perm(n int) []int { return s.rng.Perm(n) }

// Gamma samples via the sum of `shape` exponential draws, exact for integer
// shape parameters (the only case the timing model uses).
func (s *mathSource) Gamma(shape int, scale float64) float64 {
	var sum float64
	for i := 0; i < shape; i++ {
		sum += -math.Log(1.0 - s.rng.Float64())
	}
	return sum * scale
}
