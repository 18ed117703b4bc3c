package pipeline

import (
	"sort"

	"github.com/ironsheep/scan-trad-mcp/internal/detection"
	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/layout"
)

// TextRegion is one detection mapped onto the image, with the text found in
// it and the text drawn back. Each region belongs to a single request.
type TextRegion struct {
	// Index is the position of the detection in the request.
	Index     int
	Detection detection.Detection
	Rect      geometry.PixelRect

	RecognizedText string
	TranslatedText string

	// Background and Layout are set by the render terminal.
	Background *imaging.BackgroundResult
	Layout     *layout.Layout

	Outcome Kind
	Err     error
}

// Failed reports whether a stage failed on the region.
func (r *TextRegion) Failed() bool {
	return r.Outcome == KindRegion
}

// renderable reports whether the render terminal touches the region. Regions
// with nothing to draw, whether blank or failed, keep their original pixels.
func (r *TextRegion) renderable() bool {
	return r.TranslatedText != ""
}

func (r *TextRegion) fail(op string, err error) *Error {
	pe := &Error{Kind: KindRegion, Region: r.Index, Op: op, Err: err}
	r.Outcome = KindRegion
	r.Err = pe
	return pe
}

// MapRegions converts detections measured on a refW x refH image into pixel
// rectangles on an imgW x imgH image, grown by padding. A zero reference size
// means the image itself. Detections whose rectangle has no area once clamped
// are dropped; the others keep their input order.
func MapRegions(dets []detection.Detection, refW, refH, imgW, imgH int, padding float64) []TextRegion {
	if refW <= 0 || refH <= 0 {
		refW, refH = imgW, imgH
	}
	rescale := refW != imgW || refH != imgH

	regions := make([]TextRegion, 0, len(dets))
	for i, det := range dets {
		rect, ok := geometry.ToPixelRect(det.Box, refW, refH)
		if !ok {
			continue
		}
		if rescale {
			if rect, ok = geometry.Rescale(rect, refW, refH, imgW, imgH); !ok {
				continue
			}
		}
		if rect, ok = geometry.ApplyPadding(rect, padding, imgW, imgH); !ok {
			continue
		}
		regions = append(regions, TextRegion{Index: i, Detection: det, Rect: rect})
	}
	return regions
}

// SortByTop orders regions top to bottom by the top edge of their rectangle.
// Regions sharing a top edge keep their relative order.
func SortByTop(regions []TextRegion) {
	sort.SliceStable(regions, func(i, j int) bool {
		return geometry.ByTop(regions[i].Rect, regions[j].Rect)
	})
}
