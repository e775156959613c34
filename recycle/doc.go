// Package recycle provides free lists for hypothesis storage slots.
//
// A Recycler amortizes allocation cost over the very large number of
// hypotheses that are built and immediately pruned. It is best-effort:
// Acquire may always report a miss, and the Noop recycler is a valid
// replacement for any other implementation.
//
//	var rec recycle.Recycler[core.Slot] = recycle.NewFreeList[core.Slot](0)
//	rec.Release(slot)
//	if s, ok := rec.Acquire(); ok {
//	    // reuse s
//	}
//
// FreeList is NOT safe for concurrent use; wrap it with NewSynchronized to
// share one recycler between goroutines.
package recycle
