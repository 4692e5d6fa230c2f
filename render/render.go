// Package render assembles complete images from an evaluator and a camera.
package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/raster"
	"github.com/BrugadaSyndrome/FractalServer/task"
	"github.com/BrugadaSyndrome/FractalServer/worker"
	"github.com/BrugadaSyndrome/bslogger"
)

// Evaluator produces the pixel function for one request. The pixel function must be safe for
// concurrent use.
type Evaluator interface {
	Prepare(c camera.Camera) raster.PixelFunc
}

type Renderer struct {
	generation task.Generation
	logger     bslogger.Logger
	pool       *worker.Pool
}

func NewRenderer(pool *worker.Pool, generation task.Generation, logger bslogger.Logger) *Renderer {
	return &Renderer{
		generation: generation,
		logger:     logger,
		pool:       pool,
	}
}

// Render fills a buffer of exactly Width x Height pixels. The result does not depend on the task
// generation or the number of workers.
func (r *Renderer) Render(ctx context.Context, c camera.Camera, evaluator Evaluator) (*raster.PixelBuffer, error) {
	if err := c.Verify(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	buffer := raster.NewPixelBuffer(c.Width, c.Height)
	tasks := task.Split(buffer.Bounds(), r.generation)
	if err := r.pool.Fill(ctx, buffer, tasks, evaluator.Prepare(c)); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", c, err)
	}

	r.logger.Debugf("Rendered %d pixels in %d tasks for %s in %s", c.Pixels(), len(tasks), c, time.Since(startTime))
	return buffer, nil
}

// RenderTo renders and encodes the image into w.
func (r *Renderer) RenderTo(ctx context.Context, w io.Writer, c camera.Camera, evaluator Evaluator, format raster.Format) error {
	buffer, err := r.Render(ctx, c, evaluator)
	if err != nil {
		return err
	}
	return raster.Encode(w, buffer, format)
}
