package frame

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// StopToken is a cooperative cancellation signal the producer polls at
// instruction boundaries (never mid-instruction — the CPU core has no
// notion of a partially executed opcode). Unlike context.Context, the
// producer's hot loop only ever needs a single atomic load per step, not
// a channel select.
type StopToken struct {
	stop atomic.Bool
}

func (s *StopToken) Stop()         { s.stop.Store(true) }
func (s *StopToken) Stopped() bool { return s.stop.Load() }

// RunProducerConsumer runs produce and consume concurrently until either
// returns an error, the context is canceled, or stop is signaled; it
// returns the first error encountered (context.Canceled included).
// produce should perform one unit of work (e.g. one CPU step) and publish
// a Snapshot via flag.Publish when a frame completes; consume should block
// waiting for the next published Snapshot and render it.
func RunProducerConsumer(ctx context.Context, stop *StopToken, produce func() error, consume func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			if stop.Stopped() {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := produce(); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		for {
			if stop.Stopped() {
				return nil
			}
			if err := consume(ctx); err != nil {
				return err
			}
		}
	})

	return g.Wait()
}
