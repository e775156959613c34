package stack

import (
	"math"

	"github.com/hupe1980/beamgo/core"
)

// DefaultCapacity is the default per-bucket beam size.
const DefaultCapacity = 100

// Threshold returns the lowest score admitted given the bucket's best score.
type Threshold func(best core.Score) core.Score

// NoThreshold disables score-based pruning.
func NoThreshold() Threshold {
	return nil
}

// Margin admits scores within m of the best (log domain: best - m).
// A negative m is treated as 0, keeping only hypotheses tying the best.
func Margin(m core.Score) Threshold {
	m = max(m, 0)
	return func(best core.Score) core.Score {
		return best - m
	}
}

// Ratio admits hypotheses whose probability is at least r times the best
// (log domain: best + ln r). r <= 0 disables the threshold, r >= 1 keeps only
// hypotheses tying the best.
func Ratio(r float64) Threshold {
	if r <= 0 {
		return nil
	}
	lr := core.Score(math.Log(math.Min(r, 1)))
	return func(best core.Score) core.Score {
		return best + lr
	}
}

// Policy bounds a bucket.
type Policy struct {
	// Capacity is the maximum number of live hypotheses. <= 0 means unbounded.
	Capacity int
	// Threshold prunes new states relative to the best score. nil disables it.
	Threshold Threshold
}

// DefaultPolicy returns a capacity-only policy.
func DefaultPolicy() Policy {
	return Policy{Capacity: DefaultCapacity}
}

func (p Policy) bounded() bool {
	return p.Capacity > 0
}

func (p Policy) threshold(best core.Score) core.Score {
	if p.Threshold == nil {
		return core.Score(math.Inf(-1))
	}
	return p.Threshold(best)
}
