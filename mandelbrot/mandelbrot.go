// Package mandelbrot implements the escape-time renderer with smooth palette coloring.
package mandelbrot

import (
	"image/color"
	"math"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/raster"
)

type Mandelbrot struct {
	settings Settings
}

// NewMandelbrot expects verified settings.
func NewMandelbrot(settings Settings) Mandelbrot {
	return Mandelbrot{
		settings: settings,
	}
}

func (m *Mandelbrot) Palette() Palette {
	return m.settings.Palette
}

// EscapeResult is the state of an orbit when iteration stopped.
type EscapeResult struct {
	Iterations int
	Modulus    float64
}

// Smooth returns the normalized iteration count. It is only meaningful for escaped orbits; points
// that never left the unit disk yield NaN or a negative value.
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Continuous_(smooth)_coloring
func (er EscapeResult) Smooth() float64 {
	return float64(er.Iterations) - math.Log10(math.Log10(er.Modulus))/math.Log10(2)
}

// EscapeTime iterates z = z*z + c from z = 0 until the modulus reaches the escape radius or the
// iteration limit is hit.
func (m *Mandelbrot) EscapeTime(re0 float64, im0 float64) EscapeResult {
	re, im := 0.0, 0.0
	iteration, modulus := 0, 0.0
	for modulus < m.settings.EscapeRadius && iteration < m.settings.MaxIterations {
		re, im = re*re-im*im+re0, 2*re*im+im0
		modulus = math.Sqrt(re*re + im*im)
		iteration++
	}
	return EscapeResult{Iterations: iteration, Modulus: modulus}
}

func (m *Mandelbrot) SmoothIterations(re0 float64, im0 float64) float64 {
	return m.EscapeTime(re0, im0).Smooth()
}

// GetColor scales the smoothed iteration count before the palette lookup.
func (m *Mandelbrot) GetColor(mu float64, paletteScale float64) color.RGBA {
	return m.settings.Palette.Lookup(mu * paletteScale)
}

// Prepare binds the camera into a pixel function. The returned function only reads the camera.
func (m *Mandelbrot) Prepare(c camera.Camera) raster.PixelFunc {
	paletteScale := c.PaletteMultiplier()
	return func(column int, row int) color.RGBA {
		re, im := c.PlanePoint(c.Centered(column, row))
		return m.GetColor(m.SmoothIterations(re, im), paletteScale)
	}
}
