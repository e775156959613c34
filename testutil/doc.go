// Package testutil provides testing utilities for beamgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for streams of
// candidate hypotheses with controllable key skew, state collisions and
// score ties.
//
// # Candidate Streams
//
//	rng := testutil.NewRNG(seed)
//	specs := rng.Candidates(testutil.CandidateConfig{
//	    N:      1000,
//	    Keys:   8,   // distinct recombination keys
//	    States: 16,  // distinct exact states per key
//	    Levels: 10,  // distinct score values (forces ties)
//	})
package testutil
