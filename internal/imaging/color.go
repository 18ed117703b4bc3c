package imaging

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// Describe converts a fill color to its reporting formats.
func Describe(c color.RGBA) ColorResult {
	cf := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	return ColorResult{
		Hex: cf.Hex(),
		RGB: RGBColor{R: c.R, G: c.G, B: c.B},
		HSL: HSLColor{
			H: int(h),
			S: int(s * 100),
			L: int(l * 100),
		},
	}
}

// BackgroundResult reports the fill color inferred around a region.
type BackgroundResult struct {
	Color       ColorResult `json:"color"`
	SampleCount int         `json:"sample_count"`
	// Fallback is true when no border pixel could be sampled and white was used.
	Fallback bool `json:"fallback"`
}

// DescribeBackground summarizes border samples and the color inferred from them.
func DescribeBackground(samples []color.RGBA) *BackgroundResult {
	return &BackgroundResult{
		Color:       Describe(InferColor(samples)),
		SampleCount: len(samples),
		Fallback:    len(samples) == 0,
	}
}
