package mandelbrot

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"

	"github.com/BrugadaSyndrome/FractalServer/misc"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered sequence of color stops. The last stop doubles as the color of
// points whose smoothed iteration count is not finite.
type Palette []color.RGBA

// DefaultPalette runs from dark blue through yellow, orange and red back to black.
func DefaultPalette() Palette {
	return Palette{
		{R: 0x00, G: 0x00, B: 0x30, A: 255},
		{R: 0x00, G: 0x00, B: 0x55, A: 255},
		{R: 0x00, G: 0x00, B: 0x77, A: 255},
		{R: 0x00, G: 0x00, B: 0xBB, A: 255},
		{R: 0x30, G: 0x3F, B: 0xFF, A: 255},
		{R: 0xFF, G: 0xFF, B: 0x00, A: 255},
		{R: 0xFF, G: 0x7F, B: 0x00, A: 255},
		{R: 0x7F, G: 0x00, B: 0x00, A: 255},
		{R: 0x5C, G: 0x00, B: 0x00, A: 255},
		{R: 0x30, G: 0x00, B: 0x00, A: 255},
		{R: 0x00, G: 0x00, B: 0x00, A: 255},
	}
}

// Lookup advances one stop for every len-1 units of mu and blends the two bracketing stops in
// linear light. Non-finite mu yields the last stop unchanged.
func (p Palette) Lookup(mu float64) color.RGBA {
	last := len(p) - 1
	if math.IsNaN(mu) || math.IsInf(mu, 0) || last == 0 {
		return p[last]
	}

	t := mu / float64(last)
	_, fraction := math.Modf(t)
	a := p[clampIndex(math.Floor(t), last)]
	b := p[clampIndex(math.Ceil(t), last)]
	return misc.GammaInterpolationRGB(a, b, fraction)
}

func clampIndex(f float64, last int) int {
	return int(math.Min(math.Max(f, 0), float64(last)))
}

// ParsePalette builds a palette from hex colors such as "#0000BB".
func ParsePalette(hexColors ...string) (Palette, error) {
	palette := make(Palette, 0, len(hexColors))
	for _, hex := range hexColors {
		c, err := parseHex(hex)
		if err != nil {
			return nil, err
		}
		palette = append(palette, c)
	}
	return palette, nil
}

// LoadPalette reads a JSON array of hex colors.
func LoadPalette(fileName string) (Palette, error) {
	fileBytes, err := misc.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var hexColors []string
	if err := json.Unmarshal(fileBytes, &hexColors); err != nil {
		return nil, fmt.Errorf("palette file %s: %w", fileName, err)
	}
	return ParsePalette(hexColors...)
}

func parseHex(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid palette color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// PaletteRamp expands into NumberColors stops leading from StartColor toward EndColor.
type PaletteRamp struct {
	StartColor   string
	EndColor     string
	NumberColors int
}

func (pr *PaletteRamp) GeneratePalette() (Palette, error) {
	start, err := parseHex(pr.StartColor)
	if err != nil {
		return nil, err
	}
	end, err := parseHex(pr.EndColor)
	if err != nil {
		return nil, err
	}

	palette := make(Palette, 0, pr.NumberColors)
	for j := 0; j < pr.NumberColors; j++ {
		fraction := float64(j) / float64(pr.NumberColors)
		palette = append(palette, misc.GammaInterpolationRGB(start, end, fraction))
	}
	return palette, nil
}
