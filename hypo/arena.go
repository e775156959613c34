package hypo

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/recycle"
)

var (
	// ErrAllocation is returned when the arena cannot provide a slot.
	ErrAllocation = errors.New("hypo: allocation failed")
	// ErrInvalidAntecedent is returned when an antecedent does not resolve.
	ErrInvalidAntecedent = errors.New("hypo: invalid antecedent")
	// ErrStaleRef is returned when a handle no longer resolves.
	ErrStaleRef = errors.New("hypo: stale reference")
	// ErrStaleAntecedent is returned by Walk when part of a derivation was freed.
	ErrStaleAntecedent = errors.New("hypo: stale antecedent")
	// ErrInvalidTransition is returned for an illegal status change.
	ErrInvalidTransition = errors.New("hypo: invalid status transition")
)

const (
	// DefaultChunkSlots is the default number of slots per chunk.
	DefaultChunkSlots = 1024
	// maxSlots bounds the slot space; MaxSlot itself is never issued.
	maxSlots = uint32(core.MaxSlot)
)

// slotBytes is the accounted size of one slot, excluding its buffers.
var slotBytes = int64(unsafe.Sizeof(Hypothesis{}))

// MemoryAcquirer reserves memory against a budget.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Stats tracks arena usage.
type Stats struct {
	Slots         int    // slots handed out since the last Reset
	Chunks        int    // chunks in use since the last Reset
	Fresh         uint64 // allocations served by growing
	Reused        uint64 // allocations served by the recycler
	ReservedBytes int64  // memory reserved against the acquirer
	Pending       int
	Live          int
	Alternative   int
	Released      int
}

// Arena stores hypotheses in fixed-size chunks addressed by core.Ref.
type Arena struct {
	chunkSlots int
	chunkShift uint
	chunkMask  uint32
	chunks     [][]Hypothesis
	next       uint32 // first never-used slot
	active     int    // chunks reserved since the last Reset
	seq        uint64
	acquirer   MemoryAcquirer
	reserved   int64
	counts     [numStatus]int
	fresh      uint64
	reused     uint64
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithChunkSlots sets the number of slots per chunk (rounded up to a power of 2).
func WithChunkSlots(n int) ArenaOption {
	return func(a *Arena) {
		a.chunkSlots = n
	}
}

// WithMemoryAcquirer sets the memory budget chunks are reserved against.
func WithMemoryAcquirer(m MemoryAcquirer) ArenaOption {
	return func(a *Arena) {
		a.acquirer = m
	}
}

// NewArena creates an empty arena.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{chunkSlots: DefaultChunkSlots}
	for _, opt := range opts {
		opt(a)
	}
	if a.chunkSlots <= 0 {
		a.chunkSlots = DefaultChunkSlots
	}
	shift := bits.Len(uint(a.chunkSlots - 1)) //nolint:gosec // chunkSlots > 0
	a.chunkSlots = 1 << shift
	a.chunkShift = uint(shift)             //nolint:gosec // shift < 64
	a.chunkMask = uint32(a.chunkSlots - 1) //nolint:gosec // bounded by shift
	return a
}

// New constructs a hypothesis, reusing a slot from rec when one is offered.
// rec may be nil.
func (a *Arena) New(rec recycle.Recycler[core.Slot], spec Spec) (core.Ref, error) {
	for _, ant := range spec.Antecedents {
		if _, ok := a.Get(ant); !ok {
			return core.NoRef, fmt.Errorf("%w: %s", ErrInvalidAntecedent, ant)
		}
	}

	h, err := a.alloc(rec)
	if err != nil {
		return core.NoRef, err
	}

	a.seq++
	h.key = spec.Key
	h.score = spec.Score
	h.state = append(h.state[:0], spec.State...)
	h.stateHash = xxhash.Sum64(h.state)
	h.antecedents = append(h.antecedents[:0], spec.Antecedents...)
	h.rule = spec.Rule
	h.seq = a.seq
	h.status = StatusPending
	a.counts[StatusPending]++

	return h.Ref(), nil
}

// Get resolves a handle. It returns false for zero, stale or released handles.
func (a *Arena) Get(ref core.Ref) (*Hypothesis, bool) {
	if ref.IsZero() || uint32(ref.Slot) >= a.next {
		return nil, false
	}
	h := a.slot(ref.Slot)
	if h.gen != ref.Gen || h.status == StatusReleased {
		return nil, false
	}
	return h, true
}

// SetStatus moves a hypothesis along its lifecycle:
// pending -> live, pending -> alternative, live -> alternative.
func (a *Arena) SetStatus(ref core.Ref, to Status) error {
	h, ok := a.Get(ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	from := h.status
	switch {
	case from == StatusPending && (to == StatusLive || to == StatusAlternative):
	case from == StatusLive && to == StatusAlternative:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	a.counts[from]--
	a.counts[to]++
	h.status = to
	return nil
}

// Free releases a hypothesis and returns its slot for recycling.
// The handle, and every copy of it, stops resolving.
func (a *Arena) Free(ref core.Ref) (core.Slot, error) {
	h, ok := a.Get(ref)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	a.counts[h.status]--
	a.counts[StatusReleased]++
	h.status = StatusReleased
	h.gen = nextGen(h.gen)
	h.key = Key{}
	h.state = h.state[:0]
	h.antecedents = h.antecedents[:0]
	return h.slot, nil
}

// Walk visits ref and its antecedents depth-first, each hypothesis once.
// Visiting stops early when fn returns false.
//
// Antecedents that no longer resolve (freed by pruning after their dependent
// was built) are skipped; the walk still completes and the returned error
// wraps ErrStaleAntecedent.
func (a *Arena) Walk(ref core.Ref, fn func(h *Hypothesis) bool) error {
	if _, ok := a.Get(ref); !ok {
		return fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}

	seen := roaring.New()
	var stale []core.Ref
	var visit func(r core.Ref) bool
	visit = func(r core.Ref) bool {
		h, ok := a.Get(r)
		if !ok {
			if !slices.Contains(stale, r) {
				stale = append(stale, r)
			}
			return true
		}
		if !seen.CheckedAdd(uint32(r.Slot)) {
			return true
		}
		if !fn(h) {
			return false
		}
		for _, ant := range h.antecedents {
			if !visit(ant) {
				return false
			}
		}
		return true
	}
	visit(ref)

	if len(stale) > 0 {
		return fmt.Errorf("%w: %d unresolved below %s, first %s", ErrStaleAntecedent, len(stale), ref, stale[0])
	}
	return nil
}

// Len returns the number of hypotheses that resolve (not released).
func (a *Arena) Len() int {
	return a.counts[StatusPending] + a.counts[StatusLive] + a.counts[StatusAlternative]
}

// Stats returns usage counters.
func (a *Arena) Stats() Stats {
	return Stats{
		Slots:         int(a.next),
		Chunks:        a.active,
		Fresh:         a.fresh,
		Reused:        a.reused,
		ReservedBytes: a.reserved,
		Pending:       a.counts[StatusPending],
		Live:          a.counts[StatusLive],
		Alternative:   a.counts[StatusAlternative],
		Released:      a.counts[StatusReleased],
	}
}

// Reset drops every hypothesis and returns the memory reservation.
// Chunks are kept for reuse; every handle issued before Reset stops resolving.
func (a *Arena) Reset() {
	a.next = 0
	a.active = 0
	a.counts = [numStatus]int{}
	a.fresh = 0
	a.reused = 0
	if a.acquirer != nil && a.reserved > 0 {
		a.acquirer.ReleaseMemory(a.reserved)
	}
	a.reserved = 0
}

func (a *Arena) alloc(rec recycle.Recycler[core.Slot]) (*Hypothesis, error) {
	if rec != nil {
		if s, ok := rec.Acquire(); ok && uint32(s) < a.next {
			// Slots released by another arena are ignored.
			if h := a.slot(s); h.status == StatusReleased {
				a.counts[StatusReleased]--
				a.reused++
				return h, nil
			}
		}
	}

	if a.next >= maxSlots {
		return nil, fmt.Errorf("%w: slot space exhausted", ErrAllocation)
	}

	ci := int(a.next >> a.chunkShift)
	if ci >= a.active {
		if err := a.reserveChunk(ci); err != nil {
			return nil, err
		}
	}

	h := &a.chunks[ci][a.next&a.chunkMask]
	h.slot = core.Slot(a.next)
	h.gen = nextGen(h.gen)
	a.next++
	a.fresh++
	return h, nil
}

func (a *Arena) reserveChunk(ci int) error {
	if a.acquirer != nil {
		n := slotBytes * int64(a.chunkSlots)
		if err := a.acquirer.AcquireMemory(n); err != nil {
			return fmt.Errorf("%w: %w", ErrAllocation, err)
		}
		a.reserved += n
	}
	if ci >= len(a.chunks) {
		a.chunks = append(a.chunks, make([]Hypothesis, a.chunkSlots))
	}
	a.active++
	return nil
}

func (a *Arena) slot(s core.Slot) *Hypothesis {
	return &a.chunks[uint32(s)>>a.chunkShift][uint32(s)&a.chunkMask]
}

func nextGen(g uint32) uint32 {
	g++
	if g == 0 {
		g = 1
	}
	return g
}
