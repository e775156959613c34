package beamgo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/recycle"
	"github.com/hupe1980/beamgo/stack"
)

// Span is a chart cell: the source range [Start, End) a stack covers.
type Span struct {
	Start int
	End   int
}

func (s Span) valid() bool {
	return s.Start >= 0 && s.Start <= s.End
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// arcLedger is a per-session ledger that can be cleared on close.
type arcLedger interface {
	arc.Ledger
	Reset()
}

// SessionStats is a snapshot of a session's counters.
type SessionStats struct {
	Stacks     int
	Live       int
	Admitted   uint64
	NewBest    uint64
	Added      uint64
	Recombined uint64
	Discarded  uint64
	Evicted    uint64
	Pruned     uint64
	Arcs       int
	Arena      hypo.Stats
	Recycler   recycle.Stats
}

// Session is one decoding state. It owns the hypotheses, the recycler, the
// arc ledger and one stack per span.
//
// A Session is not safe for concurrent use.
type Session struct {
	id     uuid.UUID
	dec    *Decoder
	arena  *hypo.Arena
	rec    *recycle.FreeList[core.Slot]
	ledger arcLedger // nil when arc logging is disabled
	stacks map[Span]*stack.Stack
	logger *Logger
	opened time.Time
	closed bool
	final  SessionStats
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Stack returns the stack of span, creating it on first use.
// The stack is borrowed and valid until Close.
func (s *Session) Stack(span Span) (*stack.Stack, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !span.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSpan, span)
	}
	return s.stackFor(span), nil
}

// Spans returns the spans that have a stack, ordered by start then end.
func (s *Session) Spans() []Span {
	spans := make([]Span, 0, len(s.stacks))
	for sp := range s.stacks {
		spans = append(spans, sp)
	}
	sortSpans(spans)
	return spans
}

// NewHypothesis constructs a pending hypothesis, reusing a recycled slot
// when one is available.
func (s *Session) NewHypothesis(spec hypo.Spec) (core.Ref, error) {
	if s.closed {
		return core.NoRef, ErrClosed
	}
	ref, err := s.arena.New(s.rec, spec)
	if err != nil {
		err = translateError("new", core.NoRef, err)
		s.logger.LogSessionError(context.Background(), "new", err)
		return core.NoRef, err
	}
	return ref, nil
}

// Admit offers a pending hypothesis to the stack of span.
func (s *Session) Admit(span Span, ref core.Ref) (stack.Result, error) {
	st, err := s.Stack(span)
	if err != nil {
		return stack.Result{}, err
	}
	var ledger arc.Ledger
	if s.ledger != nil {
		ledger = s.ledger
	}
	res, err := st.Admit(ref, s.rec, ledger)
	s.dec.opts.metricsCollector.RecordAdmit(res.Outcome, err)
	if err != nil {
		err = translateError("admit", ref, err)
		s.logger.WithSpan(span).LogSessionError(context.Background(), "admit", err)
		return res, err
	}
	return res, nil
}

// Prune applies the beam threshold to every bucket of span.
func (s *Session) Prune(span Span) (int, error) {
	st, err := s.Stack(span)
	if err != nil {
		return 0, err
	}
	n, err := st.Prune(s.rec)
	if err != nil {
		err = translateError("prune", core.NoRef, err)
		s.logger.WithSpan(span).LogSessionError(context.Background(), "prune", err)
	}
	return n, err
}

// Hypothesis resolves a handle. The result is borrowed and must not be
// retained past the next admission.
func (s *Session) Hypothesis(ref core.Ref) (*hypo.Hypothesis, error) {
	if s.closed {
		return nil, ErrClosed
	}
	h, ok := s.arena.Get(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return h, nil
}

// AlternativesOf returns the hypotheses recombined into survivor, in the
// order they were recorded. It is empty when arc logging is disabled.
func (s *Session) AlternativesOf(survivor core.Ref) ([]core.Ref, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.ledger == nil {
		return nil, nil
	}
	return s.ledger.AlternativesOf(survivor), nil
}

// Walk visits ref and its antecedents depth-first, each once.
//
// If part of the derivation was pruned after ref was built, the resolvable
// part is still visited and the returned error wraps ErrNotFound and
// hypo.ErrStaleAntecedent.
func (s *Session) Walk(ref core.Ref, fn func(h *hypo.Hypothesis) bool) error {
	if s.closed {
		return ErrClosed
	}
	return translateError("walk", ref, s.arena.Walk(ref, fn))
}

// Live returns the slots of all live hypotheses across the session's stacks.
func (s *Session) Live() (*roaring.Bitmap, error) {
	if s.closed {
		return nil, ErrClosed
	}
	live := roaring.New()
	for _, st := range s.stacks {
		for _, b := range st.All() {
			for _, ref := range b.Hypotheses() {
				live.Add(uint32(ref.Slot))
			}
		}
	}
	return live, nil
}

// Size returns the number of live hypotheses across all stacks.
// It is 0 after Close.
func (s *Session) Size() int {
	if s.closed {
		return 0
	}
	n := 0
	for _, st := range s.stacks {
		n += st.Size()
	}
	return n
}

// Stats returns the session counters. After Close it returns the final
// snapshot taken on close.
func (s *Session) Stats() SessionStats {
	if s.closed {
		return s.final
	}
	st := SessionStats{
		Stacks:   len(s.stacks),
		Arena:    s.arena.Stats(),
		Recycler: s.rec.Stats(),
	}
	for _, sk := range s.stacks {
		ss := sk.Stats()
		st.Live += ss.Size
		st.Admitted += ss.Admitted
		st.NewBest += ss.NewBest
		st.Added += ss.Added
		st.Recombined += ss.Recombined
		st.Discarded += ss.Discarded
		st.Evicted += ss.Evicted
		st.Pruned += ss.Pruned
	}
	if s.ledger != nil {
		st.Arcs = s.ledger.Len()
	}
	return st
}

// Close releases every hypothesis and returns the arena to the decoder.
// Every handle issued by the session stops resolving. Close is idempotent.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.final = s.Stats()
	s.closed = true

	duration := time.Since(s.opened)
	s.dec.opts.metricsCollector.RecordSession(duration, s.final)
	s.logger.LogSessionClose(context.Background(), s.final, duration)

	s.stacks = nil
	s.rec.Reset()
	if s.ledger != nil {
		s.ledger.Reset()
	}
	s.dec.release(s.arena)
	s.arena = nil
	return nil
}

func (s *Session) stackFor(span Span) *stack.Stack {
	st, ok := s.stacks[span]
	if !ok {
		st = stack.New(s.arena,
			stack.WithPolicy(s.dec.opts.policy),
			stack.WithEquivalence(s.dec.opts.equivalence),
		)
		s.stacks[span] = st
	}
	return st
}

func sortSpans(spans []Span) {
	slices.SortFunc(spans, func(a, b Span) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
}
