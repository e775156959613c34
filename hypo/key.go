package hypo

import (
	"cmp"

	"github.com/cespare/xxhash/v2"
)

// Key is the recombination signature of a hypothesis.
//
// Two hypotheses with equal keys are interchangeable for every future search
// decision and are routed to the same bucket. Key is an immutable value type
// and is safe to use as a map key. The zero Key is "unset".
type Key struct {
	label string
	fp    uint64
}

// NewKey returns the key for a label (typically a non-terminal symbol).
func NewKey(label string) Key {
	return Key{label: label, fp: xxhash.Sum64String(label)}
}

// KeyFromBytes returns the key for an encoded signature.
func KeyFromBytes(b []byte) Key {
	return Key{label: string(b), fp: xxhash.Sum64(b)}
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.fp == 0 && k.label == ""
}

// Hash returns the 64-bit fingerprint of the key.
func (k Key) Hash() uint64 {
	return k.fp
}

// Label returns the signature the key was built from.
func (k Key) Label() string {
	return k.label
}

// Equal reports whether k and o are the same signature.
func (k Key) Equal(o Key) bool {
	return k.fp == o.fp && k.label == o.label
}

// Compare orders keys by fingerprint, then by label.
// The order is total and stable for the lifetime of the process.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.fp, o.fp); c != 0 {
		return c
	}
	return cmp.Compare(k.label, o.label)
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if k.IsZero() {
		return "<unset>"
	}
	return k.label
}
