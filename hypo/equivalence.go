package hypo

import "bytes"

// Equivalence decides exact state equality between hypotheses that share a
// Key. Equal hypotheses recombine; Hash must agree with Equal.
type Equivalence interface {
	Hash(h *Hypothesis) uint64
	Equal(a, b *Hypothesis) bool
}

// StateEquivalence treats hypotheses with byte-identical State as equal.
type StateEquivalence struct{}

// Hash returns the precomputed xxhash of the state.
func (StateEquivalence) Hash(h *Hypothesis) uint64 {
	return h.stateHash
}

// Equal compares states byte by byte.
func (StateEquivalence) Equal(a, b *Hypothesis) bool {
	return a.stateHash == b.stateHash && bytes.Equal(a.state, b.state)
}

// EquivalenceFunc adapts a pair of functions to Equivalence.
type EquivalenceFunc struct {
	HashFn  func(h *Hypothesis) uint64
	EqualFn func(a, b *Hypothesis) bool
}

// Hash implements Equivalence.
func (f EquivalenceFunc) Hash(h *Hypothesis) uint64 {
	return f.HashFn(h)
}

// Equal implements Equivalence.
func (f EquivalenceFunc) Equal(a, b *Hypothesis) bool {
	return f.EqualFn(a, b)
}

var _ Equivalence = StateEquivalence{}
var _ Equivalence = EquivalenceFunc{}
