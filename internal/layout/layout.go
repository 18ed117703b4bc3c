package layout

import (
	"strings"

	"golang.org/x/image/font"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

const (
	// MaxFontSize is the largest size tried by the size search.
	MaxFontSize = 40
	// MinFontSize is the smallest size tried by the size search.
	MinFontSize = 8
	// SizeStep is the decrement between candidate sizes.
	SizeStep = 2

	widthFill  = 0.95
	heightFill = 0.9
	lineGap    = 2
)

// Line is one wrapped line and its top-left position.
type Line struct {
	Text  string `json:"text"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Width int    `json:"width"`
}

// Layout is the placement of a text inside a rectangle.
type Layout struct {
	Rect       geometry.PixelRect `json:"rect"`
	Font       FontChoice         `json:"font"`
	Lines      []Line             `json:"lines"`
	LineHeight int                `json:"line_height"`
	// Attempts is the number of sizes measured by the size search.
	Attempts int `json:"attempts"`
}

// Engine computes and draws layouts.
type Engine struct {
	fonts *FontSet
}

// NewEngine returns an Engine resolving faces from fonts.
func NewEngine(fonts *FontSet) *Engine {
	return &Engine{fonts: fonts}
}

// Measure returns the pixel extent of s drawn on one line with face.
func Measure(face font.Face, s string) (width, height int) {
	bounds, _ := font.BoundString(face, s)
	return (bounds.Max.X - bounds.Min.X).Ceil(), (bounds.Max.Y - bounds.Min.Y).Ceil()
}

// FitFontSize returns the largest candidate size at which text fits in a
// boxW x boxH box, and how many sizes were measured. Candidates run from
// min(boxH-4, MaxFontSize) down to MinFontSize in steps of SizeStep; sizes
// without a face are skipped. If none fits the FontSet fallback is returned.
func (e *Engine) FitFontSize(text string, boxW, boxH int) (FontChoice, int) {
	maxSize := boxH - 4
	if maxSize > MaxFontSize {
		maxSize = MaxFontSize
	}

	attempts := 0
	for size := maxSize; size >= MinFontSize; size -= SizeStep {
		face, ok := e.fonts.Face(size)
		if !ok {
			continue
		}
		attempts++
		w, h := Measure(face, text)
		if float64(w) <= widthFill*float64(boxW) && float64(h) <= heightFill*float64(boxH) {
			return FontChoice{Face: face, Size: size}, attempts
		}
	}
	return e.fonts.Fallback(), attempts
}

// Wrap breaks text into lines no wider than maxWidth, greedily at whitespace.
// A word wider than maxWidth is kept whole on its own line. Runs of whitespace
// collapse to single spaces.
func Wrap(face font.Face, text string, maxWidth float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, _ := Measure(face, candidate); float64(w) <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// Plan computes the layout of text inside r. Text without any word yields a
// layout with no lines.
func (e *Engine) Plan(text string, r geometry.PixelRect) *Layout {
	boxW, boxH := r.Width(), r.Height()
	choice, attempts := e.FitFontSize(text, boxW, boxH)

	lines := Wrap(choice.Face, text, widthFill*float64(boxW))
	return &Layout{
		Rect:       r,
		Font:       choice,
		Lines:      Place(choice.Face, lines, r, choice.Size+lineGap),
		LineHeight: choice.Size + lineGap,
		Attempts:   attempts,
	}
}

// Place centers lines in r. Each line is then clamped into r; on an axis where
// the line does not fit the clamp range is inverted and the centered value is kept.
func Place(face font.Face, lines []string, r geometry.PixelRect, lineHeight int) []Line {
	boxW, boxH := r.Width(), r.Height()
	startY := r.YMin + floorDiv(boxH-len(lines)*lineHeight, 2)

	placed := make([]Line, 0, len(lines))
	for i, text := range lines {
		w, _ := Measure(face, text)
		x := r.XMin + floorDiv(boxW-w, 2)
		y := startY + i*lineHeight
		placed = append(placed, Line{
			Text:  text,
			X:     clamp(x, r.XMin, r.XMin+boxW-w),
			Y:     clamp(y, r.YMin, r.YMin+boxH-lineHeight),
			Width: w,
		})
	}
	return placed
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
