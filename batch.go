package beamgo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DecodeFunc decodes input i within session s.
type DecodeFunc func(ctx context.Context, i int, s *Session) error

// DecodeBatch decodes n independent inputs, each in its own session.
// At most MaxWorkers sessions run at once. The first error cancels the
// remaining work and is returned.
func (d *Decoder) DecodeBatch(ctx context.Context, n int, fn DecodeFunc) error {
	if d.closed.Load() {
		return ErrClosed
	}

	start := time.Now()
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		if err := d.rc.AcquireWorker(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer d.rc.ReleaseWorker()

			err := d.decodeOne(gctx, i, fn)
			if err != nil {
				failed.Add(1)
			}
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	nFailed := int(failed.Load())
	duration := time.Since(start)
	d.opts.metricsCollector.RecordBatch(n, nFailed, duration)
	d.opts.logger.LogBatch(ctx, n, nFailed, duration)

	return err
}

func (d *Decoder) decodeOne(ctx context.Context, i int, fn DecodeFunc) error {
	s, err := d.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("input %d: %w", i, err)
	}
	defer s.Close()

	if err := fn(ctx, i, s); err != nil {
		s.logger.LogSessionError(ctx, "decode", err)
		return fmt.Errorf("input %d: %w", i, err)
	}
	return nil
}
