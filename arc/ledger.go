package arc

import (
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/beamgo/core"
)

// Ledger is an append-only record of recombination arcs.
//
// Refs are only unique within one arena, so a Ledger must not be fed by
// hypotheses from more than one arena. Use ConcurrentLog.NewScope to share
// storage between parallel decoding states.
type Ledger interface {
	// Record appends alternative to survivor's list and reports whether it
	// did. Zero refs, self arcs and an alternative recorded before are
	// rejected.
	Record(survivor, alternative core.Ref) bool
	// AlternativesOf returns survivor's alternatives in insertion order.
	AlternativesOf(survivor core.Ref) []core.Ref
	// Len returns the number of recorded arcs.
	Len() int
}

// Log is a Ledger backed by a map. It is NOT safe for concurrent use.
type Log struct {
	lists    map[core.Ref][]core.Ref
	recorded *roaring64.Bitmap
	arcs     int
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{
		lists:    make(map[core.Ref][]core.Ref),
		recorded: roaring64.New(),
	}
}

// Record implements Ledger.
func (l *Log) Record(survivor, alternative core.Ref) bool {
	if !valid(survivor, alternative) {
		return false
	}
	if !l.recorded.CheckedAdd(refKey(alternative)) {
		return false
	}

	list := append(l.lists[survivor], alternative)
	if moved, ok := l.lists[alternative]; ok {
		list = append(list, moved...)
		delete(l.lists, alternative)
	}
	l.lists[survivor] = list
	l.arcs++
	return true
}

// AlternativesOf implements Ledger. The returned slice is a copy.
func (l *Log) AlternativesOf(survivor core.Ref) []core.Ref {
	return slices.Clone(l.lists[survivor])
}

// Len implements Ledger.
func (l *Log) Len() int {
	return l.arcs
}

// Recorded reports whether ref was recorded as an alternative.
func (l *Log) Recorded(ref core.Ref) bool {
	return l.recorded.Contains(refKey(ref))
}

// Survivors returns every hypothesis heading a list, ordered by slot.
func (l *Log) Survivors() []core.Ref {
	out := make([]core.Ref, 0, len(l.lists))
	for r := range l.lists {
		out = append(out, r)
	}
	slices.SortFunc(out, compareRefs)
	return out
}

// Reset drops every arc.
func (l *Log) Reset() {
	clear(l.lists)
	l.recorded.Clear()
	l.arcs = 0
}

func valid(survivor, alternative core.Ref) bool {
	return !survivor.IsZero() && !alternative.IsZero() && survivor != alternative
}

// refKey packs a full handle, generation included, so a recycled slot is a
// different key.
func refKey(r core.Ref) uint64 {
	return uint64(r.Slot)<<32 | uint64(r.Gen)
}

func compareRefs(a, b core.Ref) int {
	if c := cmp.Compare(a.Slot, b.Slot); c != 0 {
		return c
	}
	return cmp.Compare(a.Gen, b.Gen)
}

var _ Ledger = (*Log)(nil)
