package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/raster"
	"github.com/BrugadaSyndrome/FractalServer/render"
)

const (
	KindMandelbrot   = "mandelbrot"
	KindCheckerboard = "checkerboard"
)

var (
	ErrUnknownKind      = errors.New("unknown image kind")
	ErrTooLarge         = errors.New("image has too many pixels")
	ErrMissingParameter = errors.New("missing parameter")
)

// ParameterError names the query parameter that could not be bound.
type ParameterError struct {
	Name string
	Err  error
}

func (pe *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s: %s", pe.Name, pe.Err)
}

func (pe *ParameterError) Unwrap() error {
	return pe.Err
}

// isRequestError reports whether err was caused by the request rather than the server.
func isRequestError(err error) bool {
	var pe *ParameterError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, camera.ErrInvalidDimensions) ||
		errors.Is(err, raster.ErrUnknownFormat)
}

// RenderRequest is the transport independent form of a render. It is shared by the websocket and
// RPC endpoints.
type RenderRequest struct {
	Kind   string        `json:"kind"`
	Camera camera.Camera `json:"camera"`
	Format string        `json:"format,omitempty"`
}

type RenderReply struct {
	ContentType string
	Image       []byte
}

func parseFloat(query url.Values, name string) (float64, error) {
	value := query.Get(name)
	if value == "" {
		return 0, &ParameterError{Name: name, Err: ErrMissingParameter}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ParameterError{Name: name, Err: err}
	}
	return f, nil
}

func parseDimension(query url.Values, name string) (int, error) {
	value := query.Get(name)
	if value == "" {
		return 0, &ParameterError{Name: name, Err: ErrMissingParameter}
	}
	d, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, &ParameterError{Name: name, Err: err}
	}
	if d == 0 {
		return 0, &ParameterError{Name: name, Err: camera.ErrInvalidDimensions}
	}
	return int(d), nil
}

// ParseCamera binds center_x, center_y, width, height, scale and the optional palette_scale.
func ParseCamera(query url.Values) (camera.Camera, error) {
	var c camera.Camera
	var err error

	if c.CenterX, err = parseFloat(query, "center_x"); err != nil {
		return c, err
	}
	if c.CenterY, err = parseFloat(query, "center_y"); err != nil {
		return c, err
	}
	if c.Width, err = parseDimension(query, "width"); err != nil {
		return c, err
	}
	if c.Height, err = parseDimension(query, "height"); err != nil {
		return c, err
	}
	if c.Scale, err = parseFloat(query, "scale"); err != nil {
		return c, err
	}
	if query.Has("palette_scale") {
		paletteScale, err := parseFloat(query, "palette_scale")
		if err != nil {
			return c, err
		}
		c.PaletteScale = &paletteScale
	}
	return c, nil
}

func (s *Server) evaluator(kind string) (render.Evaluator, error) {
	switch kind {
	case KindMandelbrot:
		return &s.mandelbrot, nil
	case KindCheckerboard:
		return &s.checkerboard, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// RenderImage validates the request, renders it and returns the encoded image.
func (s *Server) RenderImage(ctx context.Context, request RenderRequest) (RenderReply, error) {
	evaluator, err := s.evaluator(request.Kind)
	if err != nil {
		return RenderReply{}, err
	}
	format, err := raster.ParseFormat(request.Format)
	if err != nil {
		return RenderReply{}, err
	}
	if err := request.Camera.Verify(); err != nil {
		return RenderReply{}, err
	}
	if request.Camera.Width > s.settings.MaxPixels/request.Camera.Height {
		return RenderReply{}, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, request.Camera.Width, request.Camera.Height, s.settings.MaxPixels)
	}

	var encoded bytes.Buffer
	if err := s.renderer.RenderTo(ctx, &encoded, request.Camera, evaluator, format); err != nil {
		return RenderReply{}, err
	}
	return RenderReply{
		ContentType: format.ContentType(),
		Image:       encoded.Bytes(),
	}, nil
}
