package layout

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Ink is the text color.
var Ink = color.RGBA{A: 255}

// Draw renders the lines of l onto dst in opaque black. Each line's Y is the
// top of its ascender; the baseline sits one ascent below it.
func (e *Engine) Draw(dst *image.RGBA, l *Layout) {
	if l == nil || len(l.Lines) == 0 || l.Font.Face == nil {
		return
	}

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(l.Font.Face)
	dc.SetColor(Ink)

	ascent := l.Font.Face.Metrics().Ascent.Ceil()
	for _, line := range l.Lines {
		dc.DrawString(line.Text, float64(line.X), float64(line.Y+ascent))
	}
}

