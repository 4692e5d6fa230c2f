package misc

import (
	"image/color"
	"math"
)

// DisplayGamma is the exponent relating stored byte intensities to linear light.
const DisplayGamma = 2.2

// degammaTable holds Degamma for every byte value.
var degammaTable [256]float64

func init() {
	for i := range degammaTable {
		degammaTable[i] = math.Pow(float64(i)/255, DisplayGamma)
	}
}

func LerpFloat64(v1 float64, v2 float64, fraction float64) float64 {
	return v1 + (v2-v1)*fraction
}

// Degamma converts an encoded channel byte to linear intensity in [0, 1].
func Degamma(b uint8) float64 {
	return degammaTable[b]
}

// Gamma converts a linear intensity back to an encoded channel byte, truncating toward zero.
// Values outside [0, 1] saturate and NaN maps to 0.
func Gamma(f float64) uint8 {
	v := math.Pow(f, 1/DisplayGamma) * 255
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// GammaInterpolationRGB blends two colors in linear light. A fraction of 0 yields color1 and 1 yields color2.
func GammaInterpolationRGB(color1 color.RGBA, color2 color.RGBA, fraction float64) color.RGBA {
	blend := func(a, b uint8) uint8 {
		return Gamma(fraction*Degamma(b) + (1-fraction)*Degamma(a))
	}
	return color.RGBA{
		R: blend(color1.R, color2.R),
		G: blend(color1.G, color2.G),
		B: blend(color1.B, color2.B),
		A: 255,
	}
}
