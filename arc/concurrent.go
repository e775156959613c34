package arc

import (
	"slices"
	"sync/atomic"

	"github.com/hupe1980/beamgo/core"
	"github.com/puzpuzpuz/xsync/v3"
)

// ConcurrentLog is arc storage shared by decoding states searched in parallel.
//
// Each state records through its own Scope, so equal refs issued by different
// arenas never collide. Lists are copy-on-write: a slice returned by
// AlternativesOf is never modified afterwards.
type ConcurrentLog struct {
	lists    *xsync.MapOf[scopedRef, []core.Ref]
	recorded *xsync.MapOf[scopedRef, struct{}]
	scopes   atomic.Uint64
	arcs     atomic.Int64
}

type scopedRef struct {
	scope uint64
	ref   core.Ref
}

// NewConcurrentLog creates an empty ConcurrentLog.
func NewConcurrentLog() *ConcurrentLog {
	return &ConcurrentLog{
		lists:    xsync.NewMapOf[scopedRef, []core.Ref](),
		recorded: xsync.NewMapOf[scopedRef, struct{}](),
	}
}

// NewScope returns a Ledger view with a namespace of its own.
// Use one scope per arena.
func (l *ConcurrentLog) NewScope() *Scope {
	return &Scope{log: l, id: l.scopes.Add(1)}
}

// Len returns the number of arcs recorded across all scopes.
func (l *ConcurrentLog) Len() int {
	return int(l.arcs.Load())
}

// Scope is one arena's view of a ConcurrentLog. It implements Ledger.
//
// Different scopes may be used concurrently. A single scope may be too,
// provided each survivor is only fed by one goroutine.
type Scope struct {
	log  *ConcurrentLog
	id   uint64
	arcs atomic.Int64
}

// ID returns the scope namespace.
func (s *Scope) ID() uint64 {
	return s.id
}

// Record implements Ledger.
func (s *Scope) Record(survivor, alternative core.Ref) bool {
	if !valid(survivor, alternative) {
		return false
	}

	alt := scopedRef{scope: s.id, ref: alternative}
	if _, loaded := s.log.recorded.LoadOrStore(alt, struct{}{}); loaded {
		return false
	}

	moved, _ := s.log.lists.LoadAndDelete(alt)
	s.log.lists.Compute(scopedRef{scope: s.id, ref: survivor}, func(old []core.Ref, _ bool) ([]core.Ref, bool) {
		next := make([]core.Ref, 0, len(old)+1+len(moved))
		next = append(next, old...)
		next = append(next, alternative)
		next = append(next, moved...)
		return next, false
	})
	s.arcs.Add(1)
	s.log.arcs.Add(1)
	return true
}

// AlternativesOf implements Ledger.
func (s *Scope) AlternativesOf(survivor core.Ref) []core.Ref {
	list, _ := s.log.lists.Load(scopedRef{scope: s.id, ref: survivor})
	return list
}

// Len implements Ledger. It counts this scope's arcs only.
func (s *Scope) Len() int {
	return int(s.arcs.Load())
}

// Recorded reports whether ref was recorded as an alternative in this scope.
func (s *Scope) Recorded(ref core.Ref) bool {
	_, ok := s.log.recorded.Load(scopedRef{scope: s.id, ref: ref})
	return ok
}

// Survivors returns every hypothesis heading a list in this scope, ordered by slot.
func (s *Scope) Survivors() []core.Ref {
	var out []core.Ref
	s.log.lists.Range(func(k scopedRef, _ []core.Ref) bool {
		if k.scope == s.id {
			out = append(out, k.ref)
		}
		return true
	})
	slices.SortFunc(out, compareRefs)
	return out
}

// Reset drops this scope's arcs. Other scopes are untouched.
// The scope must not be recorded into concurrently with Reset.
func (s *Scope) Reset() {
	s.log.lists.Range(func(k scopedRef, _ []core.Ref) bool {
		if k.scope == s.id {
			s.log.lists.Delete(k)
		}
		return true
	})
	s.log.recorded.Range(func(k scopedRef, _ struct{}) bool {
		if k.scope == s.id {
			s.log.recorded.Delete(k)
		}
		return true
	})
	s.log.arcs.Add(-s.arcs.Swap(0))
}

var _ Ledger = (*Scope)(nil)
