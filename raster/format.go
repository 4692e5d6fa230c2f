package raster

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnknownFormat = errors.New("unknown image format")

// Format is a lossless image container.
type Format int

const (
	PNG Format = iota
	BMP
	TIFF
)

func (f Format) String() string {
	return []string{
		"png", "bmp", "tiff",
	}[f]
}

func (f Format) ContentType() string {
	return []string{
		"image/png", "image/bmp", "image/tiff",
	}[f]
}

func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat accepts a format name. An empty name selects PNG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return PNG, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Encode writes the buffer as an 8 bit per channel image.
func Encode(w io.Writer, b *PixelBuffer, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, b)
	case BMP:
		err = bmp.Encode(w, b)
	case TIFF:
		err = tiff.Encode(w, b, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f, err)
	}
	return nil
}

// Decode reads any of the supported formats back into a pixel buffer.
func Decode(r io.Reader) (*PixelBuffer, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, PNG, fmt.Errorf("decoding image: %w", err)
	}
	f, err := ParseFormat(name)
	if err != nil {
		return nil, PNG, err
	}
	return FromImage(img), f, nil
}
