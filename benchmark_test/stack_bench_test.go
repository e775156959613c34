package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/beamgo"
	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/recycle"
	"github.com/hupe1980/beamgo/stack"
	"github.com/hupe1980/beamgo/testutil"
)

// BenchmarkAdmit measures the admission path in isolation: arena
// construction plus routing, recombination and pruning.
func BenchmarkAdmit(b *testing.B) {
	cases := []struct {
		name     string
		capacity int
		keys     int
		states   int
		arcs     bool
	}{
		{"Beam10/Keys1", 10, 1, 1000, true},
		{"Beam100/Keys1", 100, 1, 1000, true},
		{"Beam100/Keys64", 100, 64, 1000, true},
		{"Beam100/Recombine", 100, 4, 16, true},
		{"Beam100/Recombine/NoArcs", 100, 4, 16, false},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			rng := testutil.NewRNG(4711)
			specs := rng.Candidates(testutil.CandidateConfig{N: 1 << 14, Keys: tc.keys, States: tc.states})

			arena := hypo.NewArena()
			rec := recycle.NewFreeList[core.Slot](0)
			newLedger := func() arc.Ledger {
				if tc.arcs {
					return arc.NewLog()
				}
				return nil
			}
			newStack := func() *stack.Stack {
				return stack.New(arena, stack.WithCapacity(tc.capacity), stack.WithThreshold(stack.Margin(5)))
			}
			ledger, st := newLedger(), newStack()

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if i > 0 && i%len(specs) == 0 {
					b.StopTimer()
					arena.Reset()
					rec.Reset()
					ledger, st = newLedger(), newStack()
					b.StartTimer()
				}
				ref, err := arena.New(rec, specs[i%len(specs)])
				if err != nil {
					b.Fatal(err)
				}
				if _, err := st.Admit(ref, rec, ledger); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDecodeBatch measures end-to-end sessions through the Decoder.
func BenchmarkDecodeBatch(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("Workers%d", workers), func(b *testing.B) {
			dec, err := beamgo.New(beamgo.WithMaxWorkers(workers), beamgo.WithCapacity(50))
			if err != nil {
				b.Fatal(err)
			}
			rng := testutil.NewRNG(42)
			specs := rng.Candidates(testutil.CandidateConfig{N: 5000, Keys: 8, States: 200})
			span := beamgo.Span{Start: 0, End: 1}

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				err := dec.DecodeBatch(context.Background(), 8, func(_ context.Context, _ int, s *beamgo.Session) error {
					for _, spec := range specs {
						ref, err := s.NewHypothesis(spec)
						if err != nil {
							return err
						}
						if _, err := s.Admit(span, ref); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
