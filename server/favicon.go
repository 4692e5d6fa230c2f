package server

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/BrugadaSyndrome/FractalServer/camera"
	"github.com/BrugadaSyndrome/FractalServer/raster"
)

const faviconSize = 32

// iconDirEntry is the ICO directory entry for a single PNG image. Width and height of 0 mean 256.
type iconDirEntry struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// renderFavicon draws a small view of the whole set and wraps the PNG in an ICO container.
func (s *Server) renderFavicon() ([]byte, error) {
	paletteScale := 3.0
	c := camera.Camera{
		CenterX:      -0.75,
		Width:        faviconSize,
		Height:       faviconSize,
		Scale:        0.35,
		PaletteScale: &paletteScale,
	}

	var encoded bytes.Buffer
	if err := s.renderer.RenderTo(context.Background(), &encoded, c, &s.mandelbrot, raster.PNG); err != nil {
		return nil, err
	}
	return wrapIcon(encoded.Bytes(), faviconSize, faviconSize)
}

func wrapIcon(png []byte, width int, height int) ([]byte, error) {
	var icon bytes.Buffer
	header := [3]uint16{0, 1, 1}
	if err := binary.Write(&icon, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	entry := iconDirEntry{
		Width:       uint8(width % 256),
		Height:      uint8(height % 256),
		Planes:      1,
		BitCount:    32,
		BytesInRes:  uint32(len(png)),
		ImageOffset: 6 + 16,
	}
	if err := binary.Write(&icon, binary.LittleEndian, entry); err != nil {
		return nil, err
	}
	icon.Write(png)
	return icon.Bytes(), nil
}
