package layout

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"
	"testing"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

// fixedFace is a bitmap face whose glyphs are all advance pixels wide and
// size pixels tall, covering every rune.
func fixedFace(advance, size int) font.Face {
	return &basicfont.Face{
		Advance: advance,
		Width:   advance,
		Height:  size,
		Ascent:  size * 3 / 4,
		Descent: size - size*3/4,
		Mask:    image.NewUniform(color.Alpha{A: 255}),
		Ranges:  []basicfont.Range{{Low: 0, High: unicode.MaxRune + 1}},
	}
}

// monoFace measures every rune as size/2 pixels wide and size pixels tall.
func monoFace(size int) (font.Face, bool) {
	return fixedFace(size/2, size), true
}

// wideFace measures every rune as size pixels wide.
func wideFace(size int) (font.Face, bool) {
	return fixedFace(size, size), true
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMeasure(t *testing.T) {
	face, _ := monoFace(20)
	w, h := Measure(face, "hello")
	if w != 50 || h != 20 {
		t.Errorf("got %dx%d, want 50x20", w, h)
	}
}

func TestMeasure_FallbackUnknownRunes(t *testing.T) {
	// Runes outside the 7x13 ranges measure as the replacement glyph.
	latinW, _ := Measure(basicfont.Face7x13, "ab")
	otherW, _ := Measure(basicfont.Face7x13, "日本")
	if latinW == 0 || otherW != latinW {
		t.Errorf("got width %d for non-Latin text, want %d", otherW, latinW)
	}
}

func TestFitFontSize(t *testing.T) {
	engine := NewEngine(NewFontSet(monoFace))

	tests := []struct {
		name         string
		text         string
		boxW, boxH   int
		wantSize     int
		wantAttempts int
		wantFallback bool
	}{
		{"largest size fits", "Hello", 200, 60, 40, 1, false},
		{"width bound", "Hello world", 100, 60, 16, 13, false},
		{"max limited by box height", "Hi", 400, 24, 20, 1, false},
		{"nothing fits", "a very long sentence that never fits", 30, 20, fallbackSize, 5, true},
		{"box too short to search", "Hi", 100, 10, fallbackSize, 0, true},
		{"full search", strings.Repeat("x", 500), 1000, 1000, fallbackSize, 17, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, attempts := engine.FitFontSize(tt.text, tt.boxW, tt.boxH)
			if choice.Size != tt.wantSize {
				t.Errorf("Size: got %d, want %d", choice.Size, tt.wantSize)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts: got %d, want %d", attempts, tt.wantAttempts)
			}
			if choice.Fallback != tt.wantFallback {
				t.Errorf("Fallback: got %v, want %v", choice.Fallback, tt.wantFallback)
			}
			if choice.Face == nil {
				t.Error("Face is nil")
			}
			if attempts > (MaxFontSize-MinFontSize)/SizeStep+1 {
				t.Errorf("attempts %d exceeds the candidate count", attempts)
			}
		})
	}
}

func TestFitFontSize_SkipsUnavailableSizes(t *testing.T) {
	capped := func(size int) (font.Face, bool) {
		if size > 20 {
			return nil, false
		}
		return monoFace(size)
	}
	engine := NewEngine(NewFontSet(capped))

	choice, attempts := engine.FitFontSize("Hi", 200, 100)
	if choice.Size != 20 || attempts != 1 {
		t.Errorf("got size %d after %d attempts, want 20 after 1", choice.Size, attempts)
	}

	empty := NewEngine(NewFontSet())
	choice, attempts = empty.FitFontSize("Hi", 200, 100)
	if !choice.Fallback || attempts != 0 {
		t.Errorf("no sources: got fallback=%v attempts=%d, want true 0", choice.Fallback, attempts)
	}
}

func TestFitFontSize_FirstSourceWins(t *testing.T) {
	engine := NewEngine(NewFontSet(wideFace, monoFace))

	// Wide runes need twice the width; the mono source is never consulted.
	choice, _ := engine.FitFontSize("Hello", 200, 60)
	if choice.Size != 38 {
		t.Errorf("Size: got %d, want 38", choice.Size)
	}
}

func TestWrap_NoWay(t *testing.T) {
	// 120x40 box at size 24: "No way!" is 168px against a 114px limit.
	face, _ := wideFace(24)
	limit := 0.95 * 120

	lines := Wrap(face, "No way!", limit)
	if len(lines) < 2 {
		t.Fatalf("got %q, want at least two lines", lines)
	}
	for _, line := range lines {
		if w, _ := Measure(face, line); float64(w) > limit {
			t.Errorf("line %q is %dpx, limit %.1f", line, w, limit)
		}
	}
}

func TestWrap_Rejoin(t *testing.T) {
	face, _ := monoFace(10)

	tests := []struct {
		name     string
		text     string
		maxWidth float64
	}{
		{"single word", "Bonjour", 100},
		{"fits on one line", "Ça va bien", 100},
		{"several lines", "the quick brown fox jumps over the lazy dog", 60},
		{"overlong word", "a supercalifragilistic word", 40},
		{"every word alone", "un deux trois quatre", 1},
		{"collapses whitespace", "  spaced \t out\n text ", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Wrap(face, tt.text, tt.maxWidth)

			want := strings.Join(strings.Fields(tt.text), " ")
			if got := strings.Join(lines, " "); got != want {
				t.Errorf("rejoined %q, want %q", got, want)
			}
			for _, line := range lines {
				if !strings.Contains(line, " ") {
					continue
				}
				if w, _ := Measure(face, line); float64(w) > tt.maxWidth {
					t.Errorf("multi-word line %q is %dpx, limit %.1f", line, w, tt.maxWidth)
				}
			}
		})
	}
}

func TestWrap_Empty(t *testing.T) {
	face, _ := monoFace(10)
	if lines := Wrap(face, " \t\n", 100); len(lines) != 0 {
		t.Errorf("got %q, want no lines", lines)
	}
}

func TestPlan_Centered(t *testing.T) {
	engine := NewEngine(NewFontSet(monoFace))
	r := geometry.PixelRect{XMin: 10, YMin: 20, XMax: 110, YMax: 80}

	l := engine.Plan("Hi", r)

	if l.Font.Size != 40 || l.LineHeight != 42 {
		t.Fatalf("size %d line height %d, want 40 and 42", l.Font.Size, l.LineHeight)
	}
	if len(l.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(l.Lines))
	}
	line := l.Lines[0]
	if line.X != 40 || line.Y != 29 || line.Width != 40 {
		t.Errorf("got x=%d y=%d w=%d, want x=40 y=29 w=40", line.X, line.Y, line.Width)
	}
}

func TestPlan_FallbackOverflow(t *testing.T) {
	engine := NewEngine(NewFontSet(monoFace))
	r := geometry.PixelRect{XMin: 0, YMin: 0, XMax: 30, YMax: 20}

	l := engine.Plan("Supercalifragilistic", r)

	if !l.Font.Fallback {
		t.Fatal("expected fallback font")
	}
	if len(l.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(l.Lines))
	}
	// 20 glyphs of the 7x13 face are 139px; centering floors -109/2 to -55 and
	// the inverted clamp range keeps it.
	line := l.Lines[0]
	if line.Width != 139 {
		t.Errorf("Width: got %d, want 139", line.Width)
	}
	if line.X != -55 {
		t.Errorf("X: got %d, want -55", line.X)
	}
	if line.Y != 2 {
		t.Errorf("Y: got %d, want 2", line.Y)
	}
}

func TestPlan_EmptyText(t *testing.T) {
	engine := NewEngine(NewFontSet(monoFace))
	l := engine.Plan("", geometry.PixelRect{XMin: 0, YMin: 0, XMax: 100, YMax: 50})
	if len(l.Lines) != 0 {
		t.Errorf("got %d lines, want 0", len(l.Lines))
	}
}

func TestPlace_ClampsLines(t *testing.T) {
	face, _ := monoFace(10)
	r := geometry.PixelRect{XMin: 0, YMin: 0, XMax: 40, YMax: 20}

	lines := Place(face, []string{"a", "b", "c"}, r, 15)

	// startY = floor((20-45)/2) = -13; y is clamped into [0, 5].
	wantY := []int{0, 2, 5}
	for i, line := range lines {
		if line.Y != wantY[i] {
			t.Errorf("line %d Y: got %d, want %d", i, line.Y, wantY[i])
		}
		if line.X != 17 {
			t.Errorf("line %d X: got %d, want 17", i, line.X)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 2, 3},
		{-7, 2, -4},
		{-8, 2, -4},
		{0, 2, 0},
		{-1, 2, -1},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want int }{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{12, 0, 10, 10},
		{4, 4, 4, 4},
		{-55, 0, -109, -55},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestLoadFontSet(t *testing.T) {
	fonts := LoadFontSet("", quietLogger())
	if _, ok := fonts.Face(20); !ok {
		t.Fatal("default font should serve size 20")
	}

	missing := LoadFontSet("/nonexistent/font.ttf", quietLogger())
	if _, ok := missing.Face(20); !ok {
		t.Error("missing preferred font should fall through to the default")
	}
}

func TestDraw(t *testing.T) {
	engine := NewEngine(LoadFontSet("", quietLogger()))
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	r := geometry.PixelRect{XMin: 20, YMin: 20, XMax: 180, YMax: 80}

	l := engine.Plan("Hello", r)
	if l.Font.Fallback {
		t.Fatal("Hello should fit without the fallback face")
	}
	engine.Draw(img, l)

	dark := 0
	for y := r.YMin; y < r.YMax; y++ {
		for x := r.XMin; x < r.XMax; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("no ink found inside the box")
	}
	if img.RGBAAt(2, 2) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("pixel outside the box changed")
	}
}

func TestDraw_NoLines(t *testing.T) {
	engine := NewEngine(NewFontSet(monoFace))
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	engine.Draw(img, nil)
	engine.Draw(img, &Layout{})
}
