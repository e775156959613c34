package stack

import "github.com/hupe1980/beamgo/core"

// Outcome is the fate of an admitted hypothesis.
type Outcome uint8

const (
	// NewBest: inserted as a new state and now the bucket maximum.
	NewBest Outcome = iota
	// Added: inserted as a new state.
	Added
	// Recombined: replaced a worse hypothesis in the same exact state.
	Recombined
	// Discarded: recombined into a better hypothesis or pruned.
	Discarded

	numOutcomes
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case NewBest:
		return "new_best"
	case Added:
		return "added"
	case Recombined:
		return "recombined"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Kept reports whether the admitted hypothesis is now live.
func (o Outcome) Kept() bool {
	return o != Discarded
}

// Result is returned by admission.
type Result struct {
	Outcome Outcome
	// Other is the hypothesis on the other side of the decision:
	//   - Recombined: the evicted equivalent (now an alternative of the new one)
	//   - Added/NewBest: the worst hypothesis evicted for capacity, if any
	//   - Discarded: the equivalent survivor that dominated, NoRef if pruned
	Other core.Ref
}
