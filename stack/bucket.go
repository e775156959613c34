package stack

import (
	"slices"

	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/internal/queue"
	"github.com/hupe1980/beamgo/recycle"
)

// Bucket holds the live hypotheses sharing one recombination key.
type Bucket struct {
	key    hypo.Key
	arena  *hypo.Arena
	eq     hypo.Equivalence
	policy Policy

	live  []core.Ref            // admission order
	index map[uint64][]core.Ref // equivalence hash -> live hypotheses
	worst *queue.PriorityQueue  // lazily pruned

	best      core.Ref
	bestScore core.Score
}

func newBucket(key hypo.Key, arena *hypo.Arena, eq hypo.Equivalence, policy Policy) *Bucket {
	initial := 8
	if policy.bounded() && policy.Capacity < initial {
		initial = policy.Capacity
	}
	return &Bucket{
		key:    key,
		arena:  arena,
		eq:     eq,
		policy: policy,
		live:   make([]core.Ref, 0, initial),
		index:  make(map[uint64][]core.Ref, initial),
		worst:  queue.New(initial),
	}
}

// Key returns the recombination key shared by every hypothesis in the bucket.
func (b *Bucket) Key() hypo.Key {
	return b.key
}

// Len returns the number of live hypotheses.
func (b *Bucket) Len() int {
	return len(b.live)
}

// Best returns the highest-scoring live hypothesis.
func (b *Bucket) Best() (core.Ref, bool) {
	return b.best, !b.best.IsZero()
}

// BestScore returns the score of Best. It is meaningless for an empty bucket.
func (b *Bucket) BestScore() core.Score {
	return b.bestScore
}

// Worst returns the live hypothesis next in line for capacity eviction.
func (b *Bucket) Worst() (core.Ref, bool) {
	it, ok := b.peekWorst()
	return it.Ref, ok
}

// Contains reports whether ref is live in this bucket.
func (b *Bucket) Contains(ref core.Ref) bool {
	return slices.Contains(b.live, ref)
}

// Hypotheses returns the live hypotheses in admission order.
func (b *Bucket) Hypotheses() []core.Ref {
	return slices.Clone(b.live)
}

// Sorted returns the live hypotheses best first. Ties are ordered by
// creation, earliest first.
func (b *Bucket) Sorted() []core.Ref {
	out := slices.Clone(b.live)
	slices.SortStableFunc(out, func(x, y core.Ref) int {
		hx, _ := b.arena.Get(x)
		hy, _ := b.arena.Get(y)
		switch {
		case hx.Score() > hy.Score():
			return -1
		case hx.Score() < hy.Score():
			return 1
		case hx.Seq() < hy.Seq():
			return -1
		case hx.Seq() > hy.Seq():
			return 1
		}
		return 0
	})
	return out
}

// Prune frees every live hypothesis scoring below the threshold of the
// current best. It returns the number of hypotheses removed.
func (b *Bucket) Prune(rec recycle.Recycler[core.Slot]) (int, error) {
	if len(b.live) == 0 {
		return 0, nil
	}
	thr := b.policy.threshold(b.bestScore)

	var victims []core.Ref
	for _, r := range b.live {
		if h, ok := b.arena.Get(r); ok && h.Score() < thr {
			victims = append(victims, r)
		}
	}
	for _, r := range victims {
		h, _ := b.arena.Get(r)
		b.unlink(r, b.eq.Hash(h))
		if err := b.drop(r, rec); err != nil {
			return 0, err
		}
	}
	return len(victims), nil
}

func (b *Bucket) admit(h *hypo.Hypothesis, rec recycle.Recycler[core.Slot], ledger arc.Ledger) (Result, error) {
	ref := h.Ref()
	hash := b.eq.Hash(h)

	// Exact recombination.
	if e, eh, ok := b.findEquivalent(hash, h); ok {
		if h.Score() > eh.Score() {
			b.unlink(e, hash)
			if err := b.retire(e, ref, rec, ledger); err != nil {
				return Result{}, err
			}
			if err := b.link(h, hash); err != nil {
				return Result{}, err
			}
			return Result{Outcome: Recombined, Other: e}, nil
		}
		if err := b.retire(ref, e, rec, ledger); err != nil {
			return Result{}, err
		}
		return Result{Outcome: Discarded, Other: e}, nil
	}

	// Beam pruning of a new state.
	if len(b.live) > 0 && h.Score() < b.policy.threshold(b.bestScore) {
		return Result{Outcome: Discarded}, b.drop(ref, rec)
	}

	var evicted core.Ref
	if b.policy.bounded() && len(b.live) >= b.policy.Capacity {
		w, ok := b.peekWorst()
		if !ok || h.Score() <= w.Score {
			return Result{Outcome: Discarded}, b.drop(ref, rec)
		}
		wh, _ := b.arena.Get(w.Ref)
		b.unlink(w.Ref, b.eq.Hash(wh))
		if err := b.drop(w.Ref, rec); err != nil {
			return Result{}, err
		}
		evicted = w.Ref
	}

	if err := b.link(h, hash); err != nil {
		return Result{}, err
	}
	if b.best == ref {
		return Result{Outcome: NewBest, Other: evicted}, nil
	}
	return Result{Outcome: Added, Other: evicted}, nil
}

func (b *Bucket) findEquivalent(hash uint64, h *hypo.Hypothesis) (core.Ref, *hypo.Hypothesis, bool) {
	for _, r := range b.index[hash] {
		if eh, ok := b.arena.Get(r); ok && b.eq.Equal(eh, h) {
			return r, eh, true
		}
	}
	return core.NoRef, nil, false
}

// link makes a pending hypothesis live in this bucket.
func (b *Bucket) link(h *hypo.Hypothesis, hash uint64) error {
	ref := h.Ref()
	if err := b.arena.SetStatus(ref, hypo.StatusLive); err != nil {
		return err
	}
	b.live = append(b.live, ref)
	b.index[hash] = append(b.index[hash], ref)
	b.worst.PushItem(queue.PriorityQueueItem{Ref: ref, Score: h.Score(), Seq: h.Seq()})

	if b.best.IsZero() || h.Score() > b.bestScore {
		b.best = ref
		b.bestScore = h.Score()
	}

	if b.worst.Len() > 2*len(b.live)+32 {
		b.compact()
	}
	return nil
}

// unlink removes a live hypothesis from the bucket's indexes. Its heap entry
// is dropped lazily.
func (b *Bucket) unlink(ref core.Ref, hash uint64) {
	if i := slices.Index(b.live, ref); i >= 0 {
		b.live = slices.Delete(b.live, i, i+1)
	}
	if bucket := b.index[hash]; len(bucket) > 0 {
		if i := slices.Index(bucket, ref); i >= 0 {
			bucket = slices.Delete(bucket, i, i+1)
		}
		if len(bucket) == 0 {
			delete(b.index, hash)
		} else {
			b.index[hash] = bucket
		}
	}
	if ref == b.best {
		b.recomputeBest()
	}
}

// retire removes loser from the search in favour of winner: recorded as an
// arc when the ledger accepts it, freed otherwise.
func (b *Bucket) retire(loser, winner core.Ref, rec recycle.Recycler[core.Slot], ledger arc.Ledger) error {
	if ledger == nil || !ledger.Record(winner, loser) {
		return b.drop(loser, rec)
	}
	return b.arena.SetStatus(loser, hypo.StatusAlternative)
}

// drop frees a hypothesis and hands its slot to the recycler.
func (b *Bucket) drop(ref core.Ref, rec recycle.Recycler[core.Slot]) error {
	slot, err := b.arena.Free(ref)
	if err != nil {
		return err
	}
	if rec != nil {
		rec.Release(slot)
	}
	return nil
}

func (b *Bucket) peekWorst() (queue.PriorityQueueItem, bool) {
	for {
		top, ok := b.worst.TopItem()
		if !ok {
			return top, false
		}
		if h, ok := b.arena.Get(top.Ref); ok && h.Status() == hypo.StatusLive {
			return top, true
		}
		b.worst.PopItem()
	}
}

func (b *Bucket) recomputeBest() {
	b.best = core.NoRef
	b.bestScore = 0
	for _, r := range b.live {
		h, ok := b.arena.Get(r)
		if !ok {
			continue
		}
		if b.best.IsZero() || h.Score() > b.bestScore {
			b.best = r
			b.bestScore = h.Score()
		}
	}
}

func (b *Bucket) compact() {
	items := make([]queue.PriorityQueueItem, 0, len(b.live))
	for _, r := range b.live {
		if h, ok := b.arena.Get(r); ok {
			items = append(items, queue.PriorityQueueItem{Ref: r, Score: h.Score(), Seq: h.Seq()})
		}
	}
	b.worst.Rebuild(items)
}
