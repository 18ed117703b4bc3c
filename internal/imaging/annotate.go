package imaging

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

// AnnotateResult contains the image with region outlines drawn on it.
type AnnotateResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Regions     int    `json:"regions"`
}

// Annotate draws a one-pixel outline around every rectangle and labels it
// with its 0-based index, so that region order can be checked by eye.
// A scale other than 1 resizes the annotated image for previewing.
func Annotate(img image.Image, rects []geometry.PixelRect, outlineHex string, scale float64) (*AnnotateResult, error) {
	outline, err := parseHexColor(outlineHex)
	if err != nil {
		outline = color.RGBA{255, 0, 0, 255} // Default: red
	}

	result := Clone(img)
	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for i, r := range rects {
		drawOutline(result, r, outline)
		drawLabel(result, r.XMin+2, r.YMin+2, strconv.Itoa(i), labelColor, bgColor)
	}

	var out image.Image = result
	if scale > 0 && scale != 1.0 {
		newWidth := int(float64(result.Bounds().Dx()) * scale)
		newHeight := int(float64(result.Bounds().Dy()) * scale)
		out = imaging.Resize(result, newWidth, newHeight, imaging.Lanczos)
	}

	data, err := EncodePNG(out)
	if err != nil {
		return nil, err
	}

	return &AnnotateResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
		Regions:     len(rects),
	}, nil
}

func drawOutline(img *image.RGBA, r geometry.PixelRect, c color.RGBA) {
	rect := r.Image().Intersect(img.Bounds())
	if rect.Empty() {
		return
	}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.SetRGBA(x, rect.Min.Y, c)
		img.SetRGBA(x, rect.Max.Y-1, c)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.SetRGBA(rect.Min.X, y, c)
		img.SetRGBA(rect.Max.X-1, y, c)
	}
}

// parseHexColor parses "#RRGGBB" or "#RGB"; the leading '#' is optional.
func parseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// drawLabel writes text with its top-left corner at (x, y) in the 7x13
// bitmap face, over a filled box.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	box := image.Rect(x-1, y-1, x+width+1, y+face.Height+1)
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}
