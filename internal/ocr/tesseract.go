package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// DefaultLanguage is the Tesseract language used when none is configured.
	DefaultLanguage = "eng"
	// DefaultPageSegMode treats the region as a single uniform block of text.
	DefaultPageSegMode = int(gosseract.PSM_SINGLE_BLOCK)
)

// ErrRecognizerClosed is returned by Recognize after Close.
var ErrRecognizerClosed = errors.New("recognizer closed")

// Recognizer extracts text from a region image. The text may be empty.
type Recognizer interface {
	Recognize(ctx context.Context, roi image.Image, lang string, mode int) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, roi image.Image, lang string, mode int) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, roi image.Image, lang string, mode int) (string, error) {
	return f(ctx, roi, lang, mode)
}

// Tesseract is a Recognizer backed by one Tesseract engine handle.
//
// The handle is not reentrant, so calls are serialized. Create it once at
// startup and Close it at shutdown.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates the engine handle.
func NewTesseract() *Tesseract {
	return &Tesseract{client: gosseract.NewClient()}
}

// Recognize runs Tesseract over roi. The image is handed to the engine as PNG
// bytes; no temporary file is written.
func (t *Tesseract) Recognize(ctx context.Context, roi image.Image, lang string, mode int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if lang == "" {
		lang = DefaultLanguage
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, roi, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return "", ErrRecognizerClosed
	}
	if err := t.client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := t.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Close releases the engine. Further Recognize calls fail with ErrRecognizerClosed.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

var nonASCII = runes.Remove(runes.Predicate(func(r rune) bool { return r > 127 }))

// Clean drops every non-ASCII code point from text and trims surrounding whitespace.
func Clean(text string) string {
	stripped, _, _ := transform.String(nonASCII, text)
	return strings.TrimSpace(stripped)
}
