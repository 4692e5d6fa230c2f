// Package raster holds interleaved RGB pixel data and encodes it into image containers.
package raster

import (
	"image"
	"image/color"
)

// PixelFunc computes the color of a pixel at a 0-based image coordinate.
// Implementations must not depend on the order in which pixels are visited.
type PixelFunc func(column int, row int) color.RGBA

// PixelBuffer stores 3 bytes (R, G, B) per pixel, row-major, top-to-bottom and left-to-right.
type PixelBuffer struct {
	width  int
	height int
	pix    []byte
}

func NewPixelBuffer(width int, height int) *PixelBuffer {
	return &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]byte, 3*width*height),
	}
}

func (b *PixelBuffer) Width() int {
	return b.width
}

func (b *PixelBuffer) Height() int {
	return b.height
}

// Bytes returns the underlying interleaved RGB bytes.
func (b *PixelBuffer) Bytes() []byte {
	return b.pix
}

func (b *PixelBuffer) offset(column int, row int) int {
	return 3 * (row*b.width + column)
}

// Set writes the pixel at its fixed slot. Distinct pixels may be written concurrently.
func (b *PixelBuffer) Set(column int, row int, c color.RGBA) {
	i := b.offset(column, row)
	b.pix[i] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
}

func (b *PixelBuffer) RGB(column int, row int) color.RGBA {
	i := b.offset(column, row)
	return color.RGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: 255}
}

func (b *PixelBuffer) ColorModel() color.Model {
	return color.RGBAModel
}

func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

func (b *PixelBuffer) At(x int, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(b.Bounds()) {
		return color.RGBA{}
	}
	return b.RGB(x, y)
}

// Opaque lets encoders pick a 3 channel layout.
func (b *PixelBuffer) Opaque() bool {
	return true
}

// FromImage copies the color channels of any image into a new buffer. Alpha is dropped.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	buffer := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			buffer.Set(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return buffer
}

var _ image.Image = (*PixelBuffer)(nil)
