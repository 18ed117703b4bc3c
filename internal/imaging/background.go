package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

// DefaultRingWidth is the distance in pixels between a region's edges and
// the strips sampled around it.
const DefaultRingWidth = 8

// White is the fill color used when no background sample is available.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// SampleBorder reads the pixels of four one-pixel strips lying ringWidth
// pixels outside each edge of r:
//   - rows y = YMin-ringWidth and y = YMax+ringWidth
//   - columns x = XMin-ringWidth and x = XMax+ringWidth
//
// Each strip spans its edge extended by ringWidth on both ends. Pixels that
// fall outside the image are skipped, never clamped back toward the region, so
// a region touching the image border may yield fewer samples or none.
func SampleBorder(img image.Image, r geometry.PixelRect, ringWidth int) []color.RGBA {
	if ringWidth < 1 {
		ringWidth = DefaultRingWidth
	}
	bounds := img.Bounds()
	inside := func(x, y int) bool {
		return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
	}

	samples := make([]color.RGBA, 0, 2*(r.Width()+r.Height()+4*ringWidth))

	top, bottom := r.YMin-ringWidth, r.YMax+ringWidth
	for x := r.XMin - ringWidth; x < r.XMax+ringWidth; x++ {
		if inside(x, top) {
			samples = append(samples, rgbaAt(img, x, top))
		}
		if inside(x, bottom) {
			samples = append(samples, rgbaAt(img, x, bottom))
		}
	}

	left, right := r.XMin-ringWidth, r.XMax+ringWidth
	for y := r.YMin - ringWidth; y < r.YMax+ringWidth; y++ {
		if inside(left, y) {
			samples = append(samples, rgbaAt(img, left, y))
		}
		if inside(right, y) {
			samples = append(samples, rgbaAt(img, right, y))
		}
	}

	return samples
}

// InferColor returns the per-channel arithmetic mean of samples, rounded to
// the nearest integer. With no samples it returns White.
func InferColor(samples []color.RGBA) color.RGBA {
	if len(samples) == 0 {
		return White
	}

	var sumR, sumG, sumB int
	for _, c := range samples {
		sumR += int(c.R)
		sumG += int(c.G)
		sumB += int(c.B)
	}
	n := float64(len(samples))
	return color.RGBA{
		R: uint8(math.Round(float64(sumR) / n)),
		G: uint8(math.Round(float64(sumG) / n)),
		B: uint8(math.Round(float64(sumB) / n)),
		A: 255,
	}
}

// Erase overwrites every pixel of dst inside r with c. The region's original
// texture is lost; translated text is drawn over the flat fill afterwards.
func Erase(dst draw.Image, r geometry.PixelRect, c color.RGBA) {
	rect := r.Image().Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba.RGBAAt(x, y)
	}
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
