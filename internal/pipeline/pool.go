package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// Pool applies fn to items with a fixed number of workers and emits the
// results in the order the items were added. Items are processed a batch at
// a time, so output order never depends on the worker count. A Pool has a
// single caller; fn must be safe for concurrent use.
type Pool[In, Out any] struct {
	ctx     context.Context
	workers int
	size    int
	fn      func(In) Out
	emit    func(Out) error

	batch []In
	out   []Out
	added int
}

// NewPool returns a pool. Call Flush after the last Add.
func NewPool[In, Out any](ctx context.Context, workers, batchSize int, fn func(In) Out, emit func(Out) error) *Pool[In, Out] {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pool[In, Out]{
		ctx:     ctx,
		workers: workers,
		size:    batchSize,
		fn:      fn,
		emit:    emit,
		batch:   make([]In, 0, batchSize),
		out:     make([]Out, batchSize),
	}
}

// Add queues an item, processing the batch once it is full.
func (p *Pool[In, Out]) Add(item In) error {
	p.batch = append(p.batch, item)
	p.added++
	if len(p.batch) >= p.size {
		return p.Flush()
	}
	return nil
}

// Added is the number of items queued so far.
func (p *Pool[In, Out]) Added() int { return p.added }

// Flush processes and emits any queued items.
func (p *Pool[In, Out]) Flush() error {
	if len(p.batch) == 0 {
		return nil
	}
	out := p.out[:len(p.batch)]

	if p.workers == 1 || len(p.batch) == 1 {
		for i, item := range p.batch {
			if err := p.ctx.Err(); err != nil {
				return eris.Wrap(err, "pipeline: worker pool")
			}
			out[i] = p.fn(item)
		}
	} else {
		g, gCtx := errgroup.WithContext(p.ctx)
		g.SetLimit(p.workers)
		for i, item := range p.batch {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				out[i] = p.fn(item)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "pipeline: worker pool")
		}
	}

	var zero Out
	for i := range out {
		if err := p.emit(out[i]); err != nil {
			return err
		}
		out[i] = zero
	}
	p.batch = p.batch[:0]
	return nil
}
