// Package worker fills pixel buffers by running render tasks in parallel.
package worker

import (
	"context"
	"runtime"

	"github.com/BrugadaSyndrome/FractalServer/raster"
	"github.com/BrugadaSyndrome/FractalServer/task"
	"golang.org/x/sync/errgroup"
)

type Pool struct {
	workers int
}

// NewPool limits concurrent tasks to workers; values below one use every CPU.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	return p.workers
}

// Fill evaluates fn for every pixel of every task and stores the result at the pixel's slot in
// buffer. It stops handing out tasks once ctx is done and returns the context error.
func (p *Pool) Fill(ctx context.Context, buffer *raster.PixelBuffer, tasks []task.Task, fn raster.PixelFunc) error {
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, taskTodo := range tasks {
		if groupCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			for coordinate := range taskTodo.Coordinates() {
				buffer.Set(coordinate.Column, coordinate.Row, fn(coordinate.Column, coordinate.Row))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
