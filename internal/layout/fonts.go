package layout

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// FaceFunc returns a face rendering at size pixels, or false when it cannot
// serve that size.
type FaceFunc func(size int) (font.Face, bool)

// FontChoice is the face selected for a region.
type FontChoice struct {
	Face font.Face `json:"-"`
	Size int       `json:"size"`
	// Fallback is set when no candidate size fit and the fallback face was used.
	Fallback bool `json:"fallback"`
}

// fallbackSize is the pixel height of basicfont.Face7x13.
const fallbackSize = 13

// FontSet resolves faces for the size search.
type FontSet struct {
	candidates []FaceFunc
	fallback   FontChoice
}

// NewFontSet returns a FontSet trying candidates in order. The fallback is the
// 7x13 bitmap face.
func NewFontSet(candidates ...FaceFunc) *FontSet {
	return &FontSet{
		candidates: candidates,
		fallback:   FontChoice{Face: basicfont.Face7x13, Size: fallbackSize, Fallback: true},
	}
}

// TrueType adapts a parsed TrueType font to a FaceFunc. Sizes are pixels at 72 DPI.
func TrueType(f *truetype.Font) FaceFunc {
	return func(size int) (font.Face, bool) {
		if f == nil || size <= 0 {
			return nil, false
		}
		return truetype.NewFace(f, &truetype.Options{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		}), true
	}
}

// LoadFontSet builds the font chain: the TrueType file at path when it can be
// loaded, then Go Regular. An unreadable preferred font is logged and skipped.
func LoadFontSet(path string, logger logrus.FieldLogger) *FontSet {
	var candidates []FaceFunc

	if path != "" {
		f, err := parseFontFile(path)
		if err != nil {
			logger.WithError(err).WithField("font", path).Warn("Preferred font unavailable, using default")
		} else {
			candidates = append(candidates, TrueType(f))
		}
	}

	if f, err := truetype.Parse(goregular.TTF); err != nil {
		logger.WithError(err).Error("Failed to parse default font")
	} else {
		candidates = append(candidates, TrueType(f))
	}

	return NewFontSet(candidates...)
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

// Face returns a face at size from the first candidate able to produce one.
func (s *FontSet) Face(size int) (font.Face, bool) {
	for _, candidate := range s.candidates {
		if face, ok := candidate(size); ok {
			return face, true
		}
	}
	return nil, false
}

// Fallback returns the choice used when the size search finds nothing.
func (s *FontSet) Fallback() FontChoice {
	return s.fallback
}
