package hypo

import (
	"github.com/hupe1980/beamgo/core"
)

// Status is the lifecycle state of a hypothesis slot.
type Status uint8

const (
	// StatusReleased marks a freed slot. Its handle no longer resolves.
	StatusReleased Status = iota
	// StatusPending marks a constructed hypothesis not yet admitted to a stack.
	StatusPending
	// StatusLive marks a hypothesis held by a bucket.
	StatusLive
	// StatusAlternative marks a hypothesis recombined away and kept as an arc.
	StatusAlternative

	numStatus
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusReleased:
		return "released"
	case StatusPending:
		return "pending"
	case StatusLive:
		return "live"
	case StatusAlternative:
		return "alternative"
	default:
		return "unknown"
	}
}

// Spec describes a hypothesis to construct.
type Spec struct {
	Key         Key
	Score       core.Score
	State       []byte     // exact decoding state (e.g. LM context), copied
	Antecedents []core.Ref // copied
	Rule        uint32     // opaque rule id assigned by rule application
}

// Hypothesis is a scored partial derivation stored in an Arena slot.
//
// Fields are read-only outside the arena; a bucket relies on Key, Score and
// State not changing once the hypothesis is admitted.
type Hypothesis struct {
	key         Key
	score       core.Score
	state       []byte
	stateHash   uint64
	antecedents []core.Ref
	rule        uint32
	seq         uint64
	gen         uint32
	status      Status
	slot        core.Slot
}

// Ref returns the handle of this incarnation.
func (h *Hypothesis) Ref() core.Ref {
	return core.Ref{Slot: h.slot, Gen: h.gen}
}

// Key returns the recombination key.
func (h *Hypothesis) Key() Key { return h.key }

// Score returns the cumulative score.
func (h *Hypothesis) Score() core.Score { return h.score }

// State returns the exact decoding state. The slice must not be modified.
func (h *Hypothesis) State() []byte { return h.state }

// StateHash returns the xxhash of State, computed at construction.
func (h *Hypothesis) StateHash() uint64 { return h.stateHash }

// Antecedents returns the back-references. The slice must not be modified.
func (h *Hypothesis) Antecedents() []core.Ref { return h.antecedents }

// Rule returns the rule id.
func (h *Hypothesis) Rule() uint32 { return h.rule }

// Seq returns the creation sequence number. Antecedents always have a
// smaller Seq than the hypotheses built from them.
func (h *Hypothesis) Seq() uint64 { return h.seq }

// Status returns the lifecycle state.
func (h *Hypothesis) Status() Status { return h.status }
