package mandelbrot

import (
	"errors"
	"fmt"
)

const (
	DefaultMaxIterations = 100
	DefaultEscapeRadius  = 1e75
)

type Settings struct {
	EscapeRadius            float64
	GeneratePaletteSettings []PaletteRamp
	MaxIterations           int
	Palette                 Palette
	PaletteFile             string
}

// Verify fills in defaults. A palette file wins over ramps, which win over an inline palette.
func (s *Settings) Verify() error {
	if s.EscapeRadius <= 1 {
		s.EscapeRadius = DefaultEscapeRadius
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if len(s.GeneratePaletteSettings) > 0 {
		s.Palette = make(Palette, 0)
		for i := 0; i < len(s.GeneratePaletteSettings); i++ {
			ramp, err := s.GeneratePaletteSettings[i].GeneratePalette()
			if err != nil {
				return fmt.Errorf("palette ramp %d: %w", i, err)
			}
			s.Palette = append(s.Palette, ramp...)
		}
	}
	if s.PaletteFile != "" {
		palette, err := LoadPalette(s.PaletteFile)
		if err != nil {
			return err
		}
		s.Palette = palette
	}
	if len(s.Palette) == 0 {
		if s.PaletteFile != "" || len(s.GeneratePaletteSettings) > 0 {
			return errors.New("configured palette has no colors")
		}
		s.Palette = DefaultPalette()
	}

	return nil
}
