package detection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

// ErrMalformedLabel is returned for a label line whose fields are not numbers.
var ErrMalformedLabel = errors.New("malformed label")

// Detection is one detected region.
type Detection struct {
	ID         string                 `json:"id"`
	Confidence float64                `json:"confidence"`
	Class      int                    `json:"class"`
	Box        geometry.NormalizedBox `json:"box"`
}

// Provider returns the regions of img in processing order.
type Provider interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// Static returns the same detections for every image.
type Static []Detection

// Detect returns a copy of s.
func (s Static) Detect(ctx context.Context, _ image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Detection, len(s))
	copy(out, s)
	return out, nil
}

// LabelFile reads detections from a YOLO label file.
type LabelFile struct {
	Path string
}

// Detect parses the label file. The image is not inspected.
func (l LabelFile) Detect(ctx context.Context, _ image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer f.Close()

	dets, err := ParseYOLOLabels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return dets, nil
}

// ParseYOLOLabels parses "class cx cy w h" lines. IDs are assigned 1, 2, ...
// in file order and confidence is 1.
func ParseYOLOLabels(r io.Reader) ([]Detection, error) {
	var dets []Detection

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 5 {
			continue
		}

		class, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: class %q: %w", lineNo, fields[0], ErrMalformedLabel)
		}
		var v [4]float64
		for i, field := range fields[1:] {
			v[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: value %q: %w", lineNo, field, ErrMalformedLabel)
			}
		}
		box := geometry.NormalizedBox{CX: v[0], CY: v[1], W: v[2], H: v[3]}
		if err := box.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", lineNo, err, ErrMalformedLabel)
		}

		dets = append(dets, Detection{
			ID:         strconv.Itoa(len(dets) + 1),
			Confidence: 1,
			Class:      class,
			Box:        box,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return dets, nil
}

// Demo lays out four boxes relative to the page size.
type Demo struct{}

// DemoRects returns the demo regions of a width x height page as pixel rectangles.
func DemoRects(width, height int) []geometry.PixelRect {
	rect := func(x, y, w, h int) geometry.PixelRect {
		return geometry.PixelRect{XMin: x, YMin: y, XMax: x + w, YMax: y + h}
	}
	return []geometry.PixelRect{
		rect(width/6, height/8, width/4, height/12),
		rect(width/2, height/4, width/5, height/15),
		rect(width/8, height/2, width/3, height/10),
		rect(3*width/5, 2*height/3, width/4, height/12),
	}
}

var demoConfidence = []float64{0.95, 0.88, 0.92, 0.87}

// Detect returns the demo boxes for img's size.
func (Demo) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	rects := DemoRects(w, h)
	dets := make([]Detection, 0, len(rects))
	for i, r := range rects {
		dets = append(dets, Detection{
			ID:         strconv.Itoa(i + 1),
			Confidence: demoConfidence[i],
			Box:        geometry.ToNormalized(r, w, h),
		})
	}
	return dets, nil
}
