package mandelbrot

import (
	"image/color"
	"math"
	"testing"

	"github.com/BrugadaSyndrome/FractalServer/camera"
)

func newDefaultMandelbrot(t *testing.T) Mandelbrot {
	t.Helper()
	settings := Settings{}
	if err := settings.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return NewMandelbrot(settings)
}

func TestSettingsVerifyDefaults(t *testing.T) {
	settings := Settings{}
	if err := settings.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if settings.MaxIterations != 100 {
		t.Errorf("MaxIterations = %d, want 100", settings.MaxIterations)
	}
	if settings.EscapeRadius != 1e75 {
		t.Errorf("EscapeRadius = %v, want 1e75", settings.EscapeRadius)
	}
	if len(settings.Palette) != 11 {
		t.Errorf("len(Palette) = %d, want 11", len(settings.Palette))
	}
}

func TestSettingsVerifyRamps(t *testing.T) {
	settings := Settings{
		GeneratePaletteSettings: []PaletteRamp{
			{StartColor: "#000000", EndColor: "#ff0000", NumberColors: 3},
			{StartColor: "#ff0000", EndColor: "#ffffff", NumberColors: 2},
		},
	}
	if err := settings.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(settings.Palette) != 5 {
		t.Errorf("len(Palette) = %d, want 5", len(settings.Palette))
	}

	bad := Settings{GeneratePaletteSettings: []PaletteRamp{{StartColor: "nope", EndColor: "#ffffff", NumberColors: 2}}}
	if err := bad.Verify(); err == nil {
		t.Errorf("Verify with an invalid ramp succeeded, want error")
	}
}

func TestEscapeTimeOrigin(t *testing.T) {
	m := newDefaultMandelbrot(t)
	result := m.EscapeTime(0, 0)
	if result.Iterations != 100 {
		t.Errorf("Iterations = %d, want 100", result.Iterations)
	}
	if result.Modulus != 0 {
		t.Errorf("Modulus = %v, want 0", result.Modulus)
	}
	if mu := result.Smooth(); !math.IsNaN(mu) {
		t.Errorf("Smooth() = %v, want NaN", mu)
	}
}

func TestEscapeTimeFarPoint(t *testing.T) {
	m := newDefaultMandelbrot(t)
	result := m.EscapeTime(5, 5)
	if result.Iterations != 8 {
		t.Errorf("Iterations = %d, want 8", result.Iterations)
	}
	if result.Modulus < 1e75 {
		t.Errorf("Modulus = %v, want at least the escape radius", result.Modulus)
	}
	mu := result.Smooth()
	if math.IsNaN(mu) || mu < 1 || mu > 1.5 {
		t.Errorf("Smooth() = %v, want within [1, 1.5]", mu)
	}
}

func TestPrepareInsideSet(t *testing.T) {
	m := newDefaultMandelbrot(t)
	pixel := m.Prepare(camera.Camera{Width: 1, Height: 1, Scale: 1})
	if got := pixel(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel(0, 0) = %v, want black", got)
	}
}

func TestPrepareFarPoint(t *testing.T) {
	m := newDefaultMandelbrot(t)
	pixel := m.Prepare(camera.Camera{CenterX: 5, CenterY: 5, Width: 1, Height: 1, Scale: 1})
	got := pixel(0, 0)
	if got.R != 0 || got.G != 0 || got.B < 0x2F || got.B > 0x55 {
		t.Errorf("pixel(0, 0) = %v, want between the first two stops", got)
	}
}

func TestPreparePaletteScale(t *testing.T) {
	m := newDefaultMandelbrot(t)
	base := camera.Camera{CenterX: 5, CenterY: 5, Width: 1, Height: 1, Scale: 1}
	one := 1.0
	scaled := base
	scaled.PaletteScale = &one
	if a, b := m.Prepare(base)(0, 0), m.Prepare(scaled)(0, 0); a != b {
		t.Errorf("palette scale 1 = %v, default = %v, want equal", b, a)
	}

	zero := 0.0
	scaled.PaletteScale = &zero
	if got, want := m.Prepare(scaled)(0, 0), m.Palette().Lookup(0); got != want {
		t.Errorf("palette scale 0 = %v, want %v", got, want)
	}
}

func TestPrepareIsPure(t *testing.T) {
	m := newDefaultMandelbrot(t)
	c := camera.Camera{CenterX: -0.75, Width: 16, Height: 9, Scale: 0.35}
	first := m.Prepare(c)
	second := m.Prepare(c)
	for row := 0; row < c.Height; row++ {
		for column := 0; column < c.Width; column++ {
			if a, b := first(column, row), second(column, row); a != b {
				t.Fatalf("pixel (%d, %d) differs: %v vs %v", column, row, a, b)
			}
		}
	}
}

func TestPrepareZeroScale(t *testing.T) {
	m := newDefaultMandelbrot(t)
	pixel := m.Prepare(camera.Camera{Width: 3, Height: 3, Scale: 0})
	// The center maps to 0/0 and every orbit becomes NaN.
	if got := pixel(1, 1); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel(1, 1) = %v, want the last stop", got)
	}
}
