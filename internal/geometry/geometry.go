package geometry

import (
	"fmt"
	"image"
	"math"
)

// NormalizedBox is a detector box in center format, every field in [0,1]
// relative to a reference image's width (CX, W) or height (CY, H).
type NormalizedBox struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

// Validate reports whether every component is a number in [0,1].
func (b NormalizedBox) Validate() error {
	for _, v := range []float64{b.CX, b.CY, b.W, b.H} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("normalized box %v has component outside [0,1]", b)
		}
	}
	return nil
}

// PixelRect is an integer rectangle with inclusive min and exclusive max.
type PixelRect struct {
	XMin int `json:"xmin"`
	YMin int `json:"ymin"`
	XMax int `json:"xmax"`
	YMax int `json:"ymax"`
}

// Width returns XMax - XMin.
func (r PixelRect) Width() int { return r.XMax - r.XMin }

// Height returns YMax - YMin.
func (r PixelRect) Height() int { return r.YMax - r.YMin }

// Empty reports whether the rectangle has zero or negative area.
func (r PixelRect) Empty() bool { return r.XMax <= r.XMin || r.YMax <= r.YMin }

// Image converts the rectangle to an image.Rectangle.
func (r PixelRect) Image() image.Rectangle {
	return image.Rect(r.XMin, r.YMin, r.XMax, r.YMax)
}

func (r PixelRect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.XMin, r.YMin, r.XMax, r.YMax)
}

// FromImage converts an image.Rectangle to a PixelRect.
func FromImage(r image.Rectangle) PixelRect {
	return PixelRect{XMin: r.Min.X, YMin: r.Min.Y, XMax: r.Max.X, YMax: r.Max.Y}
}

// ToPixelRect scales a normalized box by the reference dimensions and returns
// its corner rectangle, truncated to integers and clamped to
// [0,refW] x [0,refH].
//
// The returned flag is false when the clamped rectangle has no area; callers
// drop such regions.
func ToPixelRect(box NormalizedBox, refW, refH int) (PixelRect, bool) {
	cx := box.CX * float64(refW)
	cy := box.CY * float64(refH)
	w := box.W * float64(refW)
	h := box.H * float64(refH)

	r := PixelRect{
		XMin: int(cx - w/2),
		YMin: int(cy - h/2),
		XMax: int(cx + w/2),
		YMax: int(cy + h/2),
	}
	return Clamp(r, refW, refH)
}

// ToNormalized is the inverse of ToPixelRect, up to truncation.
func ToNormalized(r PixelRect, refW, refH int) NormalizedBox {
	if refW <= 0 || refH <= 0 {
		return NormalizedBox{}
	}
	return NormalizedBox{
		CX: float64(r.XMin+r.XMax) / 2 / float64(refW),
		CY: float64(r.YMin+r.YMax) / 2 / float64(refH),
		W:  float64(r.Width()) / float64(refW),
		H:  float64(r.Height()) / float64(refH),
	}
}

// Rescale maps a rectangle measured on a srcW x srcH image onto a dstW x dstH
// image. X and Y scale independently. Use it when detection ran on a resized
// copy and results must land on the original resolution.
func Rescale(r PixelRect, srcW, srcH, dstW, dstH int) (PixelRect, bool) {
	if srcW <= 0 || srcH <= 0 {
		return PixelRect{}, false
	}
	rW := float64(dstW) / float64(srcW)
	rH := float64(dstH) / float64(srcH)

	scaled := PixelRect{
		XMin: int(float64(r.XMin) * rW),
		YMin: int(float64(r.YMin) * rH),
		XMax: int(float64(r.XMax) * rW),
		YMax: int(float64(r.YMax) * rH),
	}
	return Clamp(scaled, dstW, dstH)
}

// ApplyPadding grows r by dX = floor(width*fraction) and dY =
// floor(height*fraction): the min corner moves out by (dX, dY) and the max
// corner by (2*dX, 2*dY). The result is clamped to the bounds. A fraction of
// zero (or less) returns r clamped.
func ApplyPadding(r PixelRect, fraction float64, boundsW, boundsH int) (PixelRect, bool) {
	if fraction <= 0 {
		return Clamp(r, boundsW, boundsH)
	}

	dX := int(float64(r.Width()) * fraction)
	dY := int(float64(r.Height()) * fraction)

	padded := PixelRect{
		XMin: r.XMin - dX,
		YMin: r.YMin - dY,
		XMax: r.XMax + dX*2,
		YMax: r.YMax + dY*2,
	}
	return Clamp(padded, boundsW, boundsH)
}

// Clamp restricts r to [0,w] x [0,h]. The flag reports whether the clamped
// rectangle still has positive area.
func Clamp(r PixelRect, w, h int) (PixelRect, bool) {
	r.XMin = clamp(r.XMin, 0, w)
	r.YMin = clamp(r.YMin, 0, h)
	r.XMax = clamp(r.XMax, 0, w)
	r.YMax = clamp(r.YMax, 0, h)
	return r, !r.Empty()
}

// ByTop orders rectangles by YMin, ascending. Ties keep their input order
// when used with sort.SliceStable.
func ByTop(a, b PixelRect) bool {
	return a.YMin < b.YMin
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
