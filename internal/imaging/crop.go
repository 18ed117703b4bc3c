package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

// ErrEmptyRegion is returned when a region has zero or negative width or height.
var ErrEmptyRegion = errors.New("empty region")

// Crop extracts the rectangular region of interest r from img.
//
// The returned image has bounds starting at (0,0). Parts of r that fall
// outside img are cut off; if nothing remains the call fails with
// ErrEmptyRegion, as it does for a rectangle with no area. The pipeline filters
// degenerate rectangles before cropping, so this is a last check.
func Crop(img image.Image, r geometry.PixelRect) (*image.NRGBA, error) {
	if r.Empty() {
		return nil, fmt.Errorf("crop %v: %w", r, ErrEmptyRegion)
	}
	rect := r.Image().Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop %v outside image bounds %v: %w", r, img.Bounds(), ErrEmptyRegion)
	}
	return imaging.Crop(img, rect), nil
}

// CropResult contains a cropped region encoded for transport.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeCrop encodes a region of interest as a base64 PNG.
func EncodeCrop(roi image.Image) (*CropResult, error) {
	data, err := EncodePNG(roi)
	if err != nil {
		return nil, err
	}
	return &CropResult{
		Width:       roi.Bounds().Dx(),
		Height:      roi.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}
