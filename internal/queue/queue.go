// Package queue provides the score-ordered heap buckets use to find their
// worst surviving hypothesis.
package queue

import "github.com/hupe1980/beamgo/core"

// PriorityQueueItem represents an item in the priority queue.
// Value-based (no pointers) for cache locality.
type PriorityQueueItem struct {
	Ref   core.Ref   // Ref is the hypothesis handle.
	Score core.Score // Score is the priority of the item in the queue.
	Seq   uint64     // Seq breaks score ties: the later insertion ranks worse.
}

// PriorityQueue is a worst-first heap: the top is the lowest score, and among
// equal scores the most recently created hypothesis.
//
// Items are never removed from the middle. Callers delete lazily: they pop
// tops that are no longer live and Rebuild when the heap holds too many
// dead entries.
type PriorityQueue struct {
	items []PriorityQueueItem
}

// New initializes a new worst-first priority queue.
func New(capacity int) *PriorityQueue {
	return &PriorityQueue{
		items: make([]PriorityQueueItem, 0, capacity),
	}
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (PriorityQueueItem, bool) {
	if len(pq.items) == 0 {
		return PriorityQueueItem{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item PriorityQueueItem) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue) PopItem() (PriorityQueueItem, bool) {
	n := len(pq.items)
	if n == 0 {
		return PriorityQueueItem{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = PriorityQueueItem{}
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// Rebuild replaces the contents with items and restores the heap invariant in O(n).
func (pq *PriorityQueue) Rebuild(items []PriorityQueueItem) {
	pq.items = append(pq.items[:0], items...)
	for i := len(pq.items)/2 - 1; i >= 0; i-- {
		pq.siftDown(i)
	}
}

// Len returns the number of elements in the priority queue, dead entries included.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue) less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Seq > b.Seq
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
