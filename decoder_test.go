package beamgo_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/beamgo"
	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/stack"
	"github.com/hupe1980/beamgo/testutil"
)

var cell = beamgo.Span{Start: 0, End: 2}

func newSession(t *testing.T, opts ...beamgo.Option) (*beamgo.Decoder, *beamgo.Session) {
	t.Helper()
	dec, err := beamgo.New(opts...)
	require.NoError(t, err)
	s, err := dec.NewSession(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return dec, s
}

func newHyp(t *testing.T, s *beamgo.Session, key, state string, score core.Score, ants ...core.Ref) core.Ref {
	t.Helper()
	ref, err := s.NewHypothesis(hypo.Spec{
		Key:         hypo.NewKey(key),
		Score:       score,
		State:       []byte(state),
		Antecedents: ants,
	})
	require.NoError(t, err)
	return ref
}

func admit(t *testing.T, s *beamgo.Session, span beamgo.Span, ref core.Ref) stack.Result {
	t.Helper()
	res, err := s.Admit(span, ref)
	require.NoError(t, err)
	return res
}

func TestSession_Admit(t *testing.T) {
	_, s := newSession(t, beamgo.WithCapacity(2), beamgo.WithThreshold(nil))

	h1 := newHyp(t, s, "NP", "a", 5)
	assert.Equal(t, stack.NewBest, admit(t, s, cell, h1).Outcome)

	h2 := newHyp(t, s, "NP", "b", 3)
	assert.Equal(t, stack.Added, admit(t, s, cell, h2).Outcome)

	h3 := newHyp(t, s, "NP", "a", 7)
	res := admit(t, s, cell, h3)
	assert.Equal(t, stack.Recombined, res.Outcome)
	assert.Equal(t, h1, res.Other)

	alts, err := s.AlternativesOf(h3)
	require.NoError(t, err)
	assert.Equal(t, []core.Ref{h1}, alts)

	// The alternative stays resolvable for n-best extraction.
	h, err := s.Hypothesis(h1)
	require.NoError(t, err)
	assert.Equal(t, hypo.StatusAlternative, h.Status())

	assert.Equal(t, 2, s.Size())

	st := s.Stats()
	assert.Equal(t, 1, st.Stacks)
	assert.Equal(t, 2, st.Live)
	assert.Equal(t, uint64(3), st.Admitted)
	assert.Equal(t, uint64(1), st.Recombined)
	assert.Equal(t, 1, st.Arcs)
	assert.Equal(t, 3, st.Arena.Slots)
}

func TestSession_Spans(t *testing.T) {
	_, s := newSession(t)

	left := beamgo.Span{Start: 0, End: 1}
	right := beamgo.Span{Start: 1, End: 2}

	admit(t, s, right, newHyp(t, s, "X", "a", 1))
	admit(t, s, left, newHyp(t, s, "X", "a", 2))

	// Same key and state in different spans do not recombine.
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, []beamgo.Span{left, right}, s.Spans())

	st, err := s.Stack(left)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Size())

	_, err = s.Stack(beamgo.Span{Start: 3, End: 1})
	assert.ErrorIs(t, err, beamgo.ErrInvalidSpan)

	_, err = s.Admit(beamgo.Span{Start: -1, End: 1}, newHyp(t, s, "X", "b", 0))
	assert.ErrorIs(t, err, beamgo.ErrInvalidSpan)
}

func TestSession_ArcLoggingDisabled(t *testing.T) {
	_, s := newSession(t, beamgo.WithArcLogging(false))

	h1 := newHyp(t, s, "NP", "a", 1)
	admit(t, s, cell, h1)
	h2 := newHyp(t, s, "NP", "a", 2)
	assert.Equal(t, stack.Recombined, admit(t, s, cell, h2).Outcome)

	_, err := s.Hypothesis(h1)
	assert.ErrorIs(t, err, beamgo.ErrNotFound)

	alts, err := s.AlternativesOf(h2)
	require.NoError(t, err)
	assert.Empty(t, alts)

	// The freed slot is handed out again.
	h3 := newHyp(t, s, "NP", "b", 0)
	assert.Equal(t, h1.Slot, h3.Slot)
	assert.NotEqual(t, h1, h3)

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Arena.Reused)
	assert.Equal(t, 0, st.Arcs)
}

func TestSession_ContractViolations(t *testing.T) {
	_, s := newSession(t)

	unset, err := s.NewHypothesis(hypo.Spec{Score: 1})
	require.NoError(t, err)

	_, err = s.Admit(cell, unset)
	var ce *beamgo.ErrContract
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "admit", ce.Op)
	assert.Equal(t, unset, ce.Ref)
	assert.ErrorIs(t, err, stack.ErrUnsetKey)

	h := newHyp(t, s, "NP", "a", 1)
	admit(t, s, cell, h)
	_, err = s.Admit(cell, h)
	assert.ErrorIs(t, err, stack.ErrAlreadyAdmitted)

	_, err = s.NewHypothesis(hypo.Spec{Key: hypo.NewKey("S"), Antecedents: []core.Ref{{Slot: 99, Gen: 1}}})
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, hypo.ErrInvalidAntecedent)

	assert.Equal(t, 1, s.Size())
}

func TestSession_Walk(t *testing.T) {
	_, s := newSession(t)

	a := newHyp(t, s, "NP", "a", -1)
	b := newHyp(t, s, "VP", "b", -2)
	top := newHyp(t, s, "S", "ab", -3, a, b)
	admit(t, s, cell, top)

	var seen []string
	require.NoError(t, s.Walk(top, func(h *hypo.Hypothesis) bool {
		seen = append(seen, h.Key().Label())
		return true
	}))
	assert.Equal(t, []string{"S", "NP", "VP"}, seen)

	err := s.Walk(core.NoRef, func(*hypo.Hypothesis) bool { return true })
	assert.ErrorIs(t, err, beamgo.ErrNotFound)
}

func TestSession_WalkAfterEviction(t *testing.T) {
	_, s := newSession(t, beamgo.WithCapacity(1))

	child := beamgo.Span{Start: 0, End: 1}
	parent := beamgo.Span{Start: 0, End: 2}

	a := newHyp(t, s, "NP", "a", -2)
	admit(t, s, child, a)
	top := newHyp(t, s, "S", "a", -3, a)
	admit(t, s, parent, top)

	// A better NP evicts the antecedent of top.
	res := admit(t, s, child, newHyp(t, s, "NP", "b", -1))
	require.Equal(t, a, res.Other)

	var seen []string
	err := s.Walk(top, func(h *hypo.Hypothesis) bool {
		seen = append(seen, h.Key().Label())
		return true
	})
	assert.ErrorIs(t, err, beamgo.ErrNotFound)
	assert.ErrorIs(t, err, hypo.ErrStaleAntecedent)
	assert.Equal(t, []string{"S"}, seen)
}

func TestSession_LiveAndPrune(t *testing.T) {
	_, s := newSession(t, beamgo.WithCapacity(0), beamgo.WithThreshold(stack.Margin(2)))

	h1 := newHyp(t, s, "NP", "a", -1)
	h2 := newHyp(t, s, "NP", "b", -2.5)
	admit(t, s, cell, h1)
	admit(t, s, cell, h2)

	live, err := s.Live()
	require.NoError(t, err)
	assert.True(t, live.Contains(uint32(h1.Slot)))
	assert.True(t, live.Contains(uint32(h2.Slot)))

	// A new best raises the threshold; Prune drops what fell below it.
	h3 := newHyp(t, s, "NP", "c", 0)
	assert.Equal(t, stack.NewBest, admit(t, s, cell, h3).Outcome)

	n, err := s.Prune(cell)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, uint64(1), s.Stats().Pruned)
}

func TestSession_Close(t *testing.T) {
	dec, err := beamgo.New(beamgo.WithChunkSlots(16))
	require.NoError(t, err)

	s, err := dec.NewSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID().String())
	assert.Equal(t, 1, dec.OpenSessions())

	h := newHyp(t, s, "NP", "a", 1)
	admit(t, s, cell, h)
	assert.Positive(t, dec.MemoryUsage())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 0, dec.OpenSessions())
	assert.Equal(t, int64(0), dec.MemoryUsage())
	assert.Positive(t, dec.PeakMemoryUsage())

	_, err = s.NewHypothesis(hypo.Spec{Key: hypo.NewKey("NP")})
	assert.ErrorIs(t, err, beamgo.ErrClosed)
	_, err = s.Admit(cell, h)
	assert.ErrorIs(t, err, beamgo.ErrClosed)
	_, err = s.Hypothesis(h)
	assert.ErrorIs(t, err, beamgo.ErrClosed)
	_, err = s.AlternativesOf(h)
	assert.ErrorIs(t, err, beamgo.ErrClosed)
	_, err = s.Live()
	assert.ErrorIs(t, err, beamgo.ErrClosed)
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, uint64(1), s.Stats().Admitted)

	// The pooled arena does not leak handles into the next session.
	s2, err := dec.NewSession(context.Background())
	require.NoError(t, err)
	defer s2.Close()
	_, err = s2.Hypothesis(h)
	assert.ErrorIs(t, err, beamgo.ErrNotFound)
}

func TestDecoder_MemoryLimit(t *testing.T) {
	_, s := newSession(t, beamgo.WithChunkSlots(16), beamgo.WithMemoryLimit(1))

	_, err := s.NewHypothesis(hypo.Spec{Key: hypo.NewKey("NP")})
	assert.ErrorIs(t, err, beamgo.ErrMemoryLimit)
	assert.ErrorIs(t, err, hypo.ErrAllocation)
}

func TestDecoder_Closed(t *testing.T) {
	dec, err := beamgo.New()
	require.NoError(t, err)
	require.NoError(t, dec.Close())

	_, err = dec.NewSession(context.Background())
	assert.ErrorIs(t, err, beamgo.ErrClosed)

	err = dec.DecodeBatch(context.Background(), 1, func(context.Context, int, *beamgo.Session) error { return nil })
	assert.ErrorIs(t, err, beamgo.ErrClosed)
}

func TestDecoder_InvalidOptions(t *testing.T) {
	_, err := beamgo.New(beamgo.WithMaxWorkers(-1))
	assert.ErrorIs(t, err, beamgo.ErrInvalidConfig)

	_, err = beamgo.New(beamgo.WithMemoryLimit(-1))
	assert.ErrorIs(t, err, beamgo.ErrInvalidConfig)
}

func TestDecodeBatch(t *testing.T) {
	metrics := &beamgo.BasicMetricsCollector{}
	dec, err := beamgo.New(
		beamgo.WithMaxWorkers(3),
		beamgo.WithCapacity(4),
		beamgo.WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	var running, peak atomic.Int64
	sizes := make([]int, 8)

	err = dec.DecodeBatch(context.Background(), len(sizes), func(_ context.Context, i int, s *beamgo.Session) error {
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}

		rng := testutil.NewRNG(int64(i))
		for _, spec := range rng.Candidates(testutil.CandidateConfig{N: 200, Keys: 3, States: 10}) {
			ref, err := s.NewHypothesis(spec)
			if err != nil {
				return err
			}
			if _, err := s.Admit(cell, ref); err != nil {
				return err
			}
		}
		sizes[i] = s.Size()
		return nil
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, peak.Load(), int64(3))
	for _, n := range sizes {
		assert.LessOrEqual(t, n, 3*4)
		assert.Positive(t, n)
	}
	assert.Equal(t, 0, dec.OpenSessions())
	assert.Equal(t, int64(0), dec.MemoryUsage())

	st := metrics.GetStats()
	assert.Equal(t, int64(1), st.BatchCount)
	assert.Equal(t, int64(8), st.BatchSessions)
	assert.Equal(t, int64(0), st.BatchFailed)
	assert.Equal(t, int64(8), st.SessionCount)
	assert.Equal(t, int64(8*200), st.Admitted)
	assert.Equal(t, st.Admitted, st.NewBest+st.Added+st.Recombined+st.Discarded)
}

func TestDecodeBatch_SharedArcLog(t *testing.T) {
	shared := arc.NewConcurrentLog()
	dec, err := beamgo.New(beamgo.WithMaxWorkers(4), beamgo.WithSharedArcLog(shared))
	require.NoError(t, err)

	const n = 6
	var total atomic.Int64
	err = dec.DecodeBatch(context.Background(), n, func(_ context.Context, _ int, s *beamgo.Session) error {
		var refs [2]core.Ref
		for i, score := range []core.Score{-3, -1} {
			ref, err := s.NewHypothesis(hypo.Spec{Key: hypo.NewKey("NP"), Score: score, State: []byte("x")})
			if err != nil {
				return err
			}
			if _, err := s.Admit(cell, ref); err != nil {
				return err
			}
			refs[i] = ref
		}
		worse, better := refs[0], refs[1]

		h, err := s.Hypothesis(worse)
		if err != nil {
			return err
		}
		if h.Status() != hypo.StatusAlternative {
			return errors.New("loser was not kept as an alternative")
		}
		alts, err := s.AlternativesOf(better)
		if err != nil {
			return err
		}
		if len(alts) != 1 || alts[0] != worse {
			return errors.New("alternatives do not belong to this session")
		}
		st := s.Stats()
		total.Add(int64(st.Arcs))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(n), total.Load())
	assert.Equal(t, 0, shared.Len())
}

func TestDecodeBatch_Error(t *testing.T) {
	metrics := &beamgo.BasicMetricsCollector{}
	dec, err := beamgo.New(beamgo.WithMaxWorkers(2), beamgo.WithMetricsCollector(metrics))
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = dec.DecodeBatch(context.Background(), 5, func(_ context.Context, i int, _ *beamgo.Session) error {
		if i == 2 {
			return errBoom
		}
		return nil
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, dec.OpenSessions())
	assert.GreaterOrEqual(t, metrics.GetStats().BatchFailed, int64(1))
}

func TestDecodeBatch_Canceled(t *testing.T) {
	dec, err := beamgo.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = dec.DecodeBatch(ctx, 3, func(context.Context, int, *beamgo.Session) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
