package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
)

func TestInferColor(t *testing.T) {
	tests := []struct {
		name    string
		samples []color.RGBA
		want    color.RGBA
	}{
		{"empty falls back to white", nil, White},
		{"single", []color.RGBA{{12, 34, 56, 255}}, color.RGBA{12, 34, 56, 255}},
		{"rounds half up", []color.RGBA{{0, 0, 0, 255}, {1, 3, 255, 255}}, color.RGBA{1, 2, 128, 255}},
		{"rounds down", []color.RGBA{{0, 0, 0, 255}, {0, 0, 0, 255}, {1, 2, 1, 255}}, color.RGBA{0, 1, 0, 255}},
		{"alpha forced opaque", []color.RGBA{{100, 100, 100, 0}}, color.RGBA{100, 100, 100, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferColor(tt.samples); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleBorder_Uniform(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{200, 180, 160, 255})
	r := geometry.PixelRect{XMin: 40, YMin: 40, XMax: 60, YMax: 50}

	samples := SampleBorder(img, r, DefaultRingWidth)

	// Two rows of (20+16) pixels and two columns of (10+16) pixels.
	if want := 2*36 + 2*26; len(samples) != want {
		t.Errorf("sample count: got %d, want %d", len(samples), want)
	}
	if got := InferColor(samples); got != (color.RGBA{200, 180, 160, 255}) {
		t.Errorf("inferred color: got %v", got)
	}
}

func TestSampleBorder_IgnoresRegionInterior(t *testing.T) {
	// Gray page with a black region; the ring lies entirely on the page.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r := geometry.PixelRect{XMin: 30, YMin: 30, XMax: 70, YMax: 70}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{150, 150, 150, 255}
			if x >= r.XMin && x < r.XMax && y >= r.YMin && y < r.YMax {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	got := InferColor(SampleBorder(img, r, DefaultRingWidth))
	if got != (color.RGBA{150, 150, 150, 255}) {
		t.Errorf("got %v, want page gray", got)
	}
}

func TestSampleBorder_SkipsOutOfBounds(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{10, 10, 10, 255})

	// Touching the top-left corner: the top row and left column are off-image.
	r := geometry.PixelRect{XMin: 0, YMin: 0, XMax: 20, YMax: 20}
	samples := SampleBorder(img, r, 8)
	// Bottom row y=28, x in [-8,28) -> 28 in bounds; right column x=28, y in [-8,28) -> 28.
	if len(samples) != 56 {
		t.Errorf("sample count: got %d, want 56", len(samples))
	}

	// Whole image: every strip is outside.
	full := geometry.PixelRect{XMin: 0, YMin: 0, XMax: 50, YMax: 50}
	if samples := SampleBorder(img, full, 8); len(samples) != 0 {
		t.Errorf("full-image region: got %d samples, want 0", len(samples))
	}
}

func TestSampleBorder_DefaultRing(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{1, 2, 3, 255})
	r := geometry.PixelRect{XMin: 40, YMin: 40, XMax: 60, YMax: 60}
	if a, b := len(SampleBorder(img, r, 0)), len(SampleBorder(img, r, DefaultRingWidth)); a != b {
		t.Errorf("ring 0 sampled %d pixels, default sampled %d", a, b)
	}
}

func TestErase(t *testing.T) {
	img := createPatternImage(40, 40)
	fill := color.RGBA{9, 8, 7, 255}
	r := geometry.PixelRect{XMin: 10, YMin: 10, XMax: 30, YMax: 30}

	Erase(img, r, fill)

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			inside := x >= 10 && x < 30 && y >= 10 && y < 30
			got := img.RGBAAt(x, y)
			if inside && got != fill {
				t.Fatalf("(%d,%d) inside: got %v, want %v", x, y, got, fill)
			}
			if !inside && got == fill {
				t.Fatalf("(%d,%d) outside was erased", x, y)
			}
		}
	}
}

func TestErase_ClipsToImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Erase(img, geometry.PixelRect{XMin: 5, YMin: 5, XMax: 50, YMax: 50}, White)
	if img.RGBAAt(9, 9) != White {
		t.Error("in-bounds part should be erased")
	}
	// Entirely outside: no panic, no change.
	Erase(img, geometry.PixelRect{XMin: 20, YMin: 20, XMax: 30, YMax: 30}, color.RGBA{1, 1, 1, 255})
}
