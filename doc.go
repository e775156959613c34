// Package beamgo provides the beam-management core of a chart-based
// (SCFG) decoder: hypothesis storage, recombination, beam pruning and
// alternative-arc bookkeeping.
//
// # Quick Start
//
//	dec, _ := beamgo.New(
//	    beamgo.WithCapacity(100),
//	    beamgo.WithThreshold(stack.Margin(5)),
//	)
//	s, _ := dec.NewSession(ctx)
//	defer s.Close()
//
//	span := beamgo.Span{Start: 0, End: 2}
//	ref, _ := s.NewHypothesis(hypo.Spec{
//	    Key:   hypo.NewKey("NP"),
//	    Score: -1.5,
//	    State: lmState,
//	})
//	res, _ := s.Admit(span, ref)
//	fmt.Println(res.Outcome) // new_best
//
// # Layout
//
//   - hypo: recombination keys, hypotheses and the generational arena
//   - recycle: free-slot recyclers
//   - arc: ledgers of alternatives kept for n-best extraction
//   - stack: buckets with recombination and pruning, routed by key
//
// A Session owns one arena, recycler and ledger and a stack per chart span.
// Closing the session invalidates every handle it issued and returns the
// arena to the Decoder for reuse.
//
// # Batches
//
// DecodeBatch decodes independent inputs in parallel, one session each:
//
//	err := dec.DecodeBatch(ctx, len(sentences), func(ctx context.Context, i int, s *beamgo.Session) error {
//	    return decodeSentence(ctx, s, sentences[i])
//	})
//
// # Configuration
//
// Options can be loaded from YAML:
//
//	cfg, _ := beamgo.LoadConfig(f)
//	dec, _ := beamgo.New(beamgo.WithConfig(cfg))
package beamgo
