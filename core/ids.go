package core

import "fmt"

// Slot is a dense index into a hypothesis arena.
// It is strictly 32-bit, allowing for max 4 Billion hypotheses per arena.
// Used for all hot-path structures (bucket indexes, free lists, bitmaps).
type Slot uint32

// MaxSlot is the maximum possible value for a Slot.
const MaxSlot = ^Slot(0)

// Score is the cumulative model score of a hypothesis.
// Scores are log-domain: higher is better.
type Score = float32

// Ref is a stable handle to one incarnation of an arena slot.
//
// Gen is bumped every time the slot is freed, so a Ref held past the
// hypothesis lifetime no longer resolves. Generation 0 is never issued.
type Ref struct {
	Slot Slot
	Gen  uint32
}

// NoRef is the zero handle. It never resolves.
var NoRef = Ref{}

// IsZero reports whether r is the zero handle.
func (r Ref) IsZero() bool {
	return r.Gen == 0
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	if r.IsZero() {
		return "ref(nil)"
	}
	return fmt.Sprintf("ref(%d@%d)", r.Slot, r.Gen)
}
