package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Zipf returns a Zipf-distributed value in [0, n) with exponent s > 1.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	if s <= 1 {
		s = 1.0001
	}
	z := rand.NewZipf(r.rand, s, 1, uint64(n-1)) //nolint:gosec // n > 1
	return int(z.Uint64())                       //nolint:gosec // bounded by n
}

// CandidateConfig shapes a stream of candidate hypotheses.
type CandidateConfig struct {
	N      int     // number of candidates
	Keys   int     // distinct recombination keys
	States int     // distinct exact states per key
	Levels int     // distinct score values; 0 means continuous scores
	Skew   float64 // Zipf exponent over keys; <= 1 means uniform
}

// KeyLabel returns the label of the i-th generated key.
func KeyLabel(i int) string {
	return fmt.Sprintf("X%d", i)
}

// Candidates returns a reproducible stream of hypothesis specs without
// antecedents. Scores are negative log-probabilities in (-10, 0].
func (r *RNG) Candidates(cfg CandidateConfig) []hypo.Spec {
	if cfg.Keys <= 0 {
		cfg.Keys = 1
	}
	if cfg.States <= 0 {
		cfg.States = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]hypo.Spec, cfg.N)
	for i := range out {
		k := r.rand.Intn(cfg.Keys)
		if cfg.Skew > 1 {
			k = r.zipfLocked(cfg.Keys, cfg.Skew)
		}
		st := r.rand.Intn(cfg.States)

		var score float64
		if cfg.Levels > 0 {
			score = -10 * float64(r.rand.Intn(cfg.Levels)) / float64(cfg.Levels)
		} else {
			score = -10 * r.rand.Float64()
		}

		out[i] = hypo.Spec{
			Key:   hypo.NewKey(KeyLabel(k)),
			Score: core.Score(score),
			State: []byte(fmt.Sprintf("s%d", st)),
			Rule:  uint32(i), //nolint:gosec // test sizes
		}
	}
	return out
}

// AlmostEqual reports whether two scores differ by less than eps.
func AlmostEqual(a, b core.Score, eps float64) bool {
	return math.Abs(float64(a-b)) < eps
}
