package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/layout"
)

// invisibleEngine lays text out like a bitmap font but draws no ink, so a
// rendered region holds nothing but its fill.
func invisibleEngine() *layout.Engine {
	return layout.NewEngine(layout.NewFontSet(func(size int) (font.Face, bool) {
		return &basicfont.Face{
			Advance: size / 2,
			Width:   size / 2,
			Height:  size,
			Ascent:  size * 3 / 4,
			Descent: size - size*3/4,
			Mask:    image.Transparent,
			Ranges:  []basicfont.Range{{Low: 0, High: unicode.MaxRune + 1}},
		}, true
	}))
}

// textRegions is regionsFor with every region translated to text.
func textRegions(text string, rects ...geometry.PixelRect) []TextRegion {
	regions := regionsFor(rects...)
	for i := range regions {
		regions[i].TranslatedText = text
	}
	return regions
}

func TestRender_ErasesToBackground(t *testing.T) {
	bg := color.RGBA{R: 30, G: 60, B: 90, A: 255}
	page := solidPage(120, 80, bg)
	for y := 30; y < 40; y++ {
		for x := 30; x < 70; x++ {
			page.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	before := append([]uint8(nil), page.Pix...)

	p := New(Deps{Engine: invisibleEngine()}, DefaultOptions())
	regions := textRegions("Hi", rect(20, 20, 80, 50))

	out, err := p.Render(context.Background(), page, regions)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for y := 20; y < 50; y++ {
		for x := 20; x < 80; x++ {
			if got := out.RGBAAt(x, y); got != bg {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, bg)
			}
		}
	}
	if !bytes.Equal(page.Pix, before) {
		t.Error("Render modified its input")
	}

	r := regions[0]
	if r.Background == nil || r.Background.Color.Hex != "#1e3c5a" || r.Background.Fallback {
		t.Errorf("background = %+v", r.Background)
	}
	if r.Layout == nil || len(r.Layout.Lines) != 1 || r.Outcome != KindNone {
		t.Errorf("layout %+v outcome %v", r.Layout, r.Outcome)
	}
}

func TestRender_WhiteWithoutRing(t *testing.T) {
	page := solidPage(40, 40, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	p := New(Deps{Engine: invisibleEngine()}, DefaultOptions())
	regions := textRegions("Hi", rect(0, 0, 40, 40))

	out, err := p.Render(context.Background(), page, regions)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := out.RGBAAt(20, 20); got != imaging.White {
		t.Errorf("fill = %v, want white", got)
	}
	if !regions[0].Background.Fallback || regions[0].Background.SampleCount != 0 {
		t.Errorf("background = %+v", regions[0].Background)
	}
}

func TestRender_DrawsInsideRegion(t *testing.T) {
	page := solidPage(300, 120, imaging.White)
	p := New(Deps{Engine: testEngine()}, DefaultOptions())
	regions := regionsFor(rect(50, 30, 250, 90))
	regions[0].TranslatedText = "Combattons ensemble !"

	out, err := p.Render(context.Background(), page, regions)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !hasInk(out, Rect{X: 50, Y: 30, Width: 200, Height: 60}) {
		t.Fatal("no text drawn")
	}
	// Nothing is drawn well outside the region.
	for y := 0; y < 120; y++ {
		for x := 0; x < 300; x++ {
			if x >= 48 && x < 252 && y >= 28 && y < 92 {
				continue
			}
			if got := out.RGBAAt(x, y); got != imaging.White {
				t.Fatalf("pixel (%d,%d) = %v outside the region", x, y, got)
			}
		}
	}

	l := regions[0].Layout
	if l.Font.Fallback || l.Font.Size < layout.MinFontSize || l.Font.Size > layout.MaxFontSize {
		t.Errorf("font = %+v", l.Font)
	}
}

func TestRender_FailedRegionKeepsPixels(t *testing.T) {
	page := gradientPage(100, 100)
	p := New(Deps{Engine: testEngine()}, DefaultOptions())

	regions := regionsFor(rect(20, 20, 60, 60))
	regions[0].fail("recognize", errors.New("engine crashed"))

	out, err := p.Render(context.Background(), page, regions)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(out.Pix, page.Pix) {
		t.Error("failed region was rendered")
	}
	if regions[0].Layout != nil {
		t.Error("failed region has a layout")
	}
}

func TestRender_BlankRegionKeepsPixels(t *testing.T) {
	page := gradientPage(100, 100)
	p := New(Deps{Engine: testEngine()}, DefaultOptions())

	regions := regionsFor(rect(20, 20, 60, 60))

	out, err := p.Render(context.Background(), page, regions)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(out.Pix, page.Pix) {
		t.Error("region without text was erased")
	}
	if regions[0].Layout != nil || regions[0].Background != nil || regions[0].Outcome != KindNone {
		t.Errorf("blank region = %+v", regions[0])
	}
}

func TestRender_FallbackFont(t *testing.T) {
	// A font set without candidates leaves only the fallback face.
	p := New(Deps{Engine: layout.NewEngine(layout.NewFontSet())}, DefaultOptions())

	regions := regionsFor(rect(10, 10, 110, 50))
	regions[0].TranslatedText = "Niemals!"

	if _, err := p.Render(context.Background(), solidPage(120, 60, imaging.White), regions); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if regions[0].Outcome != KindFallback || !regions[0].Layout.Font.Fallback {
		t.Errorf("outcome = %v, font = %+v", regions[0].Outcome, regions[0].Layout.Font)
	}
	if s := Summarize(1, regions); s.Degraded != 1 || s.Failed != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRender_OverlapLaterWins(t *testing.T) {
	a := rect(10, 10, 60, 60)
	b := rect(40, 40, 90, 90)

	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			page := gradientPage(100, 100)
			opts := DefaultOptions()
			opts.Parallel = parallel
			p := New(Deps{Engine: invisibleEngine()}, opts)

			// Expected fills, computed the way each mode samples.
			fillA := imaging.InferColor(imaging.SampleBorder(page, a, opts.RingWidth))
			sampled := page
			if !parallel {
				sampled = imaging.Clone(page)
				imaging.Erase(sampled, a, fillA)
			}
			fillB := imaging.InferColor(imaging.SampleBorder(sampled, b, opts.RingWidth))
			if fillA == fillB {
				t.Fatalf("test page gives both regions the fill %v", fillA)
			}

			out, err := p.Render(context.Background(), page, textRegions("Hi", a, b))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			if got := out.RGBAAt(50, 50); got != fillB {
				t.Errorf("overlap pixel = %v, want later region's %v", got, fillB)
			}
			if got := out.RGBAAt(20, 20); got != fillA {
				t.Errorf("first region pixel = %v, want %v", got, fillA)
			}
			if got := out.RGBAAt(80, 80); got != fillB {
				t.Errorf("second region pixel = %v, want %v", got, fillB)
			}

			again, err := p.Render(context.Background(), page, textRegions("Hi", a, b))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !bytes.Equal(out.Pix, again.Pix) {
				t.Error("rendering is not reproducible")
			}
		})
	}
}

func TestRender_ParallelMatchesSequentialWithoutOverlap(t *testing.T) {
	page := gradientPage(120, 120)
	var rects []Rect
	regions := regionsFor(rect(5, 5, 35, 35), rect(60, 5, 110, 35), rect(5, 70, 50, 110), rect(70, 70, 115, 115))
	for i := range regions {
		regions[i].TranslatedText = "Hi"
		r := regions[i].Rect
		rects = append(rects, Rect{X: r.XMin, Y: r.YMin, Width: r.Width(), Height: r.Height()})
	}

	render := func(parallel bool) *image.RGBA {
		opts := DefaultOptions()
		opts.Parallel = parallel
		opts.RingWidth = 2
		p := New(Deps{Engine: testEngine()}, opts)
		out, err := p.Render(context.Background(), page, append([]TextRegion(nil), regions...))
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return out
	}

	if !bytes.Equal(render(false).Pix, render(true).Pix) {
		t.Errorf("parallel and sequential results differ for disjoint regions %v", rects)
	}
}

func TestRender_CanceledContext(t *testing.T) {
	p := New(Deps{Engine: testEngine()}, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := p.Render(ctx, solidPage(20, 20, imaging.White), regionsFor(rect(0, 0, 10, 10)))
	if !errors.Is(err, context.Canceled) || out != nil {
		t.Errorf("got %v, %v", out, err)
	}
}
