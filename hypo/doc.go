// Package hypo defines search hypotheses, their recombination keys and the
// arena that stores them.
//
// # Hypotheses
//
// A Hypothesis is a scored partial derivation produced by rule application.
// It carries a recombination Key (the coarse signature that selects a bucket),
// an exact decoding State (what must match for two hypotheses to recombine)
// and back-references to the antecedent hypotheses it was built from.
//
// # Arena
//
// Hypotheses live in an Arena and are addressed by core.Ref handles instead of
// pointers. Each handle carries the slot generation, so a handle kept after its
// hypothesis was freed no longer resolves:
//
//	ref, err := arena.New(recycler, hypo.Spec{
//	    Key:         hypo.NewKey("NP"),
//	    Score:       -4.2,
//	    State:       lmContext,
//	    Antecedents: []core.Ref{left, right},
//	})
//
// Antecedents must resolve when the hypothesis is constructed, so every
// derivation graph built through the arena is acyclic.
//
// # Memory
//
// Slots are allocated in fixed-size chunks (stable addresses). A chunk is
// reserved against a MemoryAcquirer before use; a refused reservation surfaces
// as ErrAllocation. Freed slots keep their State and Antecedents buffers so
// a recycled slot is rebuilt without allocating.
//
// # Thread Safety
//
// Arena is NOT safe for concurrent use. One arena belongs to one decoding
// session.
package hypo
