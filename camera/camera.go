// Package camera describes a single render request and maps its pixels onto the plane.
package camera

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidDimensions = errors.New("width and height must be positive")

// Camera is an immutable render request. PaletteScale is optional and defaults to 1.
type Camera struct {
	CenterX      float64  `json:"center_x"`
	CenterY      float64  `json:"center_y"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Scale        float64  `json:"scale"`
	PaletteScale *float64 `json:"palette_scale,omitempty"`
}

func (c Camera) Verify() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, c.Width, c.Height)
	}
	return nil
}

func (c Camera) Pixels() int {
	return c.Width * c.Height
}

func (c Camera) PaletteMultiplier() float64 {
	if c.PaletteScale == nil {
		return 1
	}
	return *c.PaletteScale
}

func (c Camera) Aspect() float64 {
	return float64(c.Width) / float64(c.Height)
}

// ColumnRange returns the half open range of centered column offsets.
func (c Camera) ColumnRange() (int, int) {
	return centeredRange(c.Width)
}

// RowRange returns the half open range of centered row offsets.
func (c Camera) RowRange() (int, int) {
	return centeredRange(c.Height)
}

// The lower bound truncates toward zero and the upper bound rounds half away from zero, so the
// range always spans exactly size values.
func centeredRange(size int) (int, int) {
	return -size / 2, int(math.Round(float64(size) / 2))
}

// Centered converts a 0-based image coordinate into a centered pixel offset.
func (c Camera) Centered(column int, row int) (int, int) {
	lowX, _ := c.ColumnRange()
	lowY, _ := c.RowRange()
	return column + lowX, row + lowY
}

// PlanePoint maps a centered pixel offset to the complex plane.
func (c Camera) PlanePoint(px int, py int) (float64, float64) {
	re := c.CenterX + (float64(px)/float64(c.Width))*c.Aspect()/c.Scale
	im := c.CenterY + (float64(py)/float64(c.Height))/c.Scale
	return re, im
}

func (c Camera) String() string {
	output := "{Camera "
	output += fmt.Sprintf("CenterX: %f ", c.CenterX)
	output += fmt.Sprintf("CenterY: %f ", c.CenterY)
	output += fmt.Sprintf("Width: %d ", c.Width)
	output += fmt.Sprintf("Height: %d ", c.Height)
	output += fmt.Sprintf("Scale: %f ", c.Scale)
	output += fmt.Sprintf("PaletteScale: %f}", c.PaletteMultiplier())
	return output
}
