package stack

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/recycle"
)

// Stats tracks admissions into a Stack.
type Stats struct {
	Buckets    int
	Size       int
	Admitted   uint64
	NewBest    uint64
	Added      uint64
	Recombined uint64
	Discarded  uint64
	Evicted    uint64 // live hypotheses evicted for capacity
	Pruned     uint64 // live hypotheses removed by Prune
}

// Stack owns the buckets of one decoding state, keyed by recombination key.
// A key maps to the same bucket for the lifetime of the Stack.
type Stack struct {
	arena   *hypo.Arena
	policy  Policy
	eq      hypo.Equivalence
	buckets map[hypo.Key]*Bucket
	size    int
	stats   Stats
}

// Option configures a Stack.
type Option func(*Stack)

// WithPolicy sets the per-bucket beam policy.
func WithPolicy(p Policy) Option {
	return func(s *Stack) {
		s.policy = p
	}
}

// WithCapacity sets the per-bucket capacity. <= 0 means unbounded.
func WithCapacity(n int) Option {
	return func(s *Stack) {
		s.policy.Capacity = n
	}
}

// WithThreshold sets the score threshold. nil disables it.
func WithThreshold(t Threshold) Option {
	return func(s *Stack) {
		s.policy.Threshold = t
	}
}

// WithEquivalence sets the exact-state equivalence used for recombination.
// If nil is passed, hypo.StateEquivalence is used.
func WithEquivalence(eq hypo.Equivalence) Option {
	return func(s *Stack) {
		if eq == nil {
			eq = hypo.StateEquivalence{}
		}
		s.eq = eq
	}
}

// New creates an empty Stack over hypotheses stored in arena.
func New(arena *hypo.Arena, opts ...Option) *Stack {
	s := &Stack{
		arena:   arena,
		policy:  DefaultPolicy(),
		eq:      hypo.StateEquivalence{},
		buckets: make(map[hypo.Key]*Bucket),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit routes a pending hypothesis to the bucket of its key and applies
// recombination and pruning. Freed slots go to rec (may be nil); arcs go to
// ledger (nil disables arc recording). A loser the ledger rejects is freed.
//
// Admitting a hypothesis with an unset key, a stale handle, or one that was
// already admitted is a contract violation and leaves the Stack unchanged.
func (s *Stack) Admit(ref core.Ref, rec recycle.Recycler[core.Slot], ledger arc.Ledger) (Result, error) {
	h, ok := s.arena.Get(ref)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	if h.Status() != hypo.StatusPending {
		return Result{}, fmt.Errorf("%w: %s is %s", ErrAlreadyAdmitted, ref, h.Status())
	}
	if h.Key().IsZero() {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsetKey, ref)
	}

	b := s.bucketFor(h.Key())
	before := b.Len()
	res, err := b.admit(h, rec, ledger)
	s.size += b.Len() - before
	if err != nil {
		return res, err
	}

	s.stats.Admitted++
	switch res.Outcome {
	case NewBest:
		s.stats.NewBest++
	case Added:
		s.stats.Added++
	case Recombined:
		s.stats.Recombined++
	case Discarded:
		s.stats.Discarded++
	}
	if (res.Outcome == NewBest || res.Outcome == Added) && !res.Other.IsZero() {
		s.stats.Evicted++
	}
	return res, nil
}

// Size returns the number of live hypotheses across all buckets.
func (s *Stack) Size() int {
	return s.size
}

// Len returns the number of buckets.
func (s *Stack) Len() int {
	return len(s.buckets)
}

// Bucket returns the bucket for key. The bucket is borrowed: it is valid
// only while the Stack is alive and must not be mutated.
func (s *Stack) Bucket(key hypo.Key) (*Bucket, bool) {
	b, ok := s.buckets[key]
	return b, ok
}

// Keys returns the keys of all buckets in hypo.Key order.
func (s *Stack) Keys() []hypo.Key {
	keys := make([]hypo.Key, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, hypo.Key.Compare)
	return keys
}

// All iterates over the buckets in key order.
func (s *Stack) All() iter.Seq2[hypo.Key, *Bucket] {
	return func(yield func(hypo.Key, *Bucket) bool) {
		for _, k := range s.Keys() {
			if !yield(k, s.buckets[k]) {
				return
			}
		}
	}
}

// Prune applies the score threshold to every bucket against its current
// best and returns the number of hypotheses freed.
func (s *Stack) Prune(rec recycle.Recycler[core.Slot]) (int, error) {
	total := 0
	for _, k := range s.Keys() {
		n, err := s.buckets[k].Prune(rec)
		total += n
		s.size -= n
		if err != nil {
			return total, err
		}
	}
	s.stats.Pruned += uint64(total) //nolint:gosec // total >= 0
	return total, nil
}

// Stats returns admission counters.
func (s *Stack) Stats() Stats {
	st := s.stats
	st.Buckets = len(s.buckets)
	st.Size = s.size
	return st
}

// Policy returns the per-bucket beam policy.
func (s *Stack) Policy() Policy {
	return s.policy
}

func (s *Stack) bucketFor(key hypo.Key) *Bucket {
	b, ok := s.buckets[key]
	if !ok {
		b = newBucket(key, s.arena, s.eq, s.policy)
		s.buckets[key] = b
	}
	return b
}
