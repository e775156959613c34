package beamgo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/core"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/internal/resource"
	"github.com/hupe1980/beamgo/recycle"
	"github.com/hupe1980/beamgo/stack"
)

// Decoder holds the configuration and services shared by decoding sessions.
// It is safe for concurrent use; each Session is not.
type Decoder struct {
	opts   options
	rc     *resource.Controller
	arenas sync.Pool
	open   atomic.Int64
	closed atomic.Bool
}

// New creates a Decoder.
//
// Example:
//
//	dec, _ := beamgo.New(beamgo.WithCapacity(50), beamgo.WithThreshold(stack.Margin(5)))
//	s, _ := dec.NewSession(ctx)
//	defer s.Close()
func New(optFns ...Option) (*Decoder, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		opts: o,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			MaxWorkers:       int64(o.maxWorkers),
		}),
	}
	d.arenas.New = func() any {
		return hypo.NewArena(hypo.WithChunkSlots(o.chunkSlots), hypo.WithMemoryAcquirer(d.rc))
	}

	return d, nil
}

// NewSession opens a decoding state (typically one input sentence).
func (d *Decoder) NewSession(ctx context.Context) (*Session, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New()
	s := &Session{
		id:     id,
		dec:    d,
		arena:  d.arenas.Get().(*hypo.Arena),
		rec:    recycle.NewFreeList[core.Slot](d.opts.recyclerCap),
		stacks: make(map[Span]*stack.Stack),
		logger: d.opts.logger.WithSession(id.String()),
		opened: time.Now(),
	}
	switch {
	case !d.opts.arcLogging:
	case d.opts.sharedArcs != nil:
		s.ledger = d.opts.sharedArcs.NewScope()
	default:
		s.ledger = arc.NewLog()
	}

	d.open.Add(1)
	s.logger.LogSessionOpen(ctx)
	return s, nil
}

// OpenSessions returns the number of sessions not yet closed.
func (d *Decoder) OpenSessions() int {
	return int(d.open.Load())
}

// MemoryUsage returns the arena memory reserved by open sessions.
func (d *Decoder) MemoryUsage() int64 {
	return d.rc.MemoryUsage()
}

// PeakMemoryUsage returns the highest arena memory reserved so far.
func (d *Decoder) PeakMemoryUsage() int64 {
	return d.rc.PeakMemoryUsage()
}

// Close rejects new sessions. Open sessions stay usable until closed.
func (d *Decoder) Close() error {
	if d == nil {
		return nil
	}
	d.closed.Store(true)
	return nil
}

func (d *Decoder) release(a *hypo.Arena) {
	a.Reset()
	d.arenas.Put(a)
	d.open.Add(-1)
}
