// Package checkerboard renders a two color tiling whose square size is the camera scale.
package checkerboard

import (
	"fmt"
	"image/color"
	"math"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/raster"
	"github.com/lucasb-eyer/go-colorful"
)

const DefaultMinSquareSize = 0.00001

type Settings struct {
	Dark          string
	Light         string
	MinSquareSize float64
}

func (s *Settings) Verify() error {
	if s.Dark == "" {
		s.Dark = "#555555"
	}
	if s.Light == "" {
		s.Light = "#a9a9a9"
	}
	if !(s.MinSquareSize > 0) {
		s.MinSquareSize = DefaultMinSquareSize
	}
	return nil
}

type Checkerboard struct {
	dark          color.RGBA
	light         color.RGBA
	minSquareSize float64
}

// NewCheckerboard expects verified settings.
func NewCheckerboard(settings Settings) (Checkerboard, error) {
	dark, err := parseHex(settings.Dark)
	if err != nil {
		return Checkerboard{}, err
	}
	light, err := parseHex(settings.Light)
	if err != nil {
		return Checkerboard{}, err
	}
	return Checkerboard{
		dark:          dark,
		light:         light,
		minSquareSize: settings.MinSquareSize,
	}, nil
}

func parseHex(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid checkerboard color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// frame holds the values shared by every pixel of one request.
type frame struct {
	squareSize float64
	xShift     float64
	yShift     float64
}

// The shift depends on the distance between the center and the image size, not on the center alone.
func (cb *Checkerboard) frame(c camera.Camera) frame {
	squareSize := c.Scale
	// NaN and anything below the floor fall back to the floor.
	if !(squareSize >= cb.minSquareSize) {
		squareSize = cb.minSquareSize
	}
	return frame{
		squareSize: squareSize,
		xShift:     math.Abs(c.CenterX-float64(c.Width)) * c.Scale,
		yShift:     math.Abs(c.CenterY-float64(c.Height)) * c.Scale,
	}
}

func (f frame) isLight(column int, row int) bool {
	period := 2 * f.squareSize
	x0 := float64(column) + f.xShift
	y0 := float64(row) + f.yShift
	return (math.Mod(x0, period) < f.squareSize) != (math.Mod(y0, period) < f.squareSize)
}

// IsLight classifies the pixel at a 0-based image coordinate with a top-left origin.
func (cb *Checkerboard) IsLight(c camera.Camera, column int, row int) bool {
	return cb.frame(c).isLight(column, row)
}

func (cb *Checkerboard) Prepare(c camera.Camera) raster.PixelFunc {
	f := cb.frame(c)
	return func(column int, row int) color.RGBA {
		if f.isLight(column, row) {
			return cb.light
		}
		return cb.dark
	}
}
