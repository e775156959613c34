// Package arc records the alternative derivations merged away by
// recombination, for k-best and lattice extraction after search.
//
// A Ledger maps each surviving hypothesis to the ordered list of hypotheses it
// recombined away. Lists are two-level: when a survivor is itself recombined
// away, its own alternatives move onto the new survivor right after it, so an
// alternative never heads a list.
//
//	ledger := arc.NewLog()
//	if !ledger.Record(winner, loser) {
//	    // rejected: the loser must be released instead
//	}
//	for _, alt := range ledger.AlternativesOf(winner) {
//	    // alt is in insertion order, not score order
//	}
//
// Refs are only unique within one arena. Log serves a single decoding state
// on one goroutine. ConcurrentLog is storage shared by states decoded in
// parallel; each state records through its own Scope:
//
//	shared := arc.NewConcurrentLog()
//	scope := shared.NewScope() // one per arena
//	scope.Record(winner, loser)
package arc
