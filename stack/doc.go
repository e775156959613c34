// Package stack implements the per-state hypothesis beam: a Stack routes
// hypotheses by recombination key to Buckets, and each Bucket applies exact
// recombination and beam pruning.
//
// # Admission
//
// For an incoming hypothesis h, its bucket first looks for a live hypothesis e
// in the same exact state (as decided by the stack's hypo.Equivalence):
//
//   - score(h) > score(e): e is recombined away and h replaces it (Recombined).
//   - otherwise h is recombined away (Discarded). Ties keep the earlier one.
//
// Recombined-away hypotheses are recorded in the arc.Ledger. With a nil
// ledger, or when the ledger rejects the arc, they are freed to the recycler
// instead, so every hypothesis stays live, recorded or released.
//
// A genuinely new state is checked against the beam Policy:
//
//   - score below Threshold(best): pruned (Discarded), no arc.
//   - bucket full and score not above the worst: pruned (Discarded), no arc.
//   - bucket full otherwise: the worst is evicted, no arc, h is inserted.
//
// An inserted new state reports NewBest when it is the bucket maximum and
// Added otherwise. The first hypothesis of a bucket is always NewBest.
//
// # Thread Safety
//
// Stack and Bucket are NOT safe for concurrent use. Independent stacks may be
// searched in parallel when they use separate arenas and separate ledgers
// (for example one arc.ConcurrentLog scope per arena).
package stack
