// Package dataset builds translation training data from labelled pages.
//
// Each labelled box is read with the collection terminal (preprocessing and
// grammar correction on) and its text is written as one JSON line:
//
//	{"translation":{"en":"What are you doing?"}}
//
// The destination is an io.Writer owned by the caller.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-trad-mcp/internal/detection"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/logging"
	"github.com/ironsheep/scan-trad-mcp/internal/pipeline"
)

// DefaultLanguage is the language key of exported entries.
const DefaultLanguage = "en"

// Entry is one exported line.
type Entry struct {
	Translation map[string]string `json:"translation"`
}

// Exporter writes entries as JSON lines. It is safe for concurrent use.
type Exporter struct {
	mu    sync.Mutex
	enc   *json.Encoder
	lang  string
	count int
}

// NewExporter returns an Exporter writing entries keyed by lang to w.
func NewExporter(w io.Writer, lang string) *Exporter {
	if lang == "" {
		lang = DefaultLanguage
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Exporter{enc: enc, lang: lang}
}

// Write appends one entry holding text.
func (e *Exporter) Write(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(Entry{Translation: map[string]string{e.lang: text}}); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	e.count++
	return nil
}

// Count returns the number of entries written.
func (e *Exporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Builder extracts the text of labelled boxes and exports it.
type Builder struct {
	pipeline *pipeline.Pipeline
	exporter *Exporter
	logger   logrus.FieldLogger
}

// NewBuilder returns a Builder recognizing with deps. Preprocessing and
// grammar correction are always enabled.
func NewBuilder(deps pipeline.Deps, opts pipeline.Options, exporter *Exporter) *Builder {
	opts.Preprocess = true
	opts.Grammar = true
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		pipeline: pipeline.New(deps, opts),
		exporter: exporter,
		logger:   logger,
	}
}

// ExportImage recognizes every labelled box of img, in label order, and
// writes the non-empty texts. Labels are relative to img itself. It returns
// the number of entries written.
func (b *Builder) ExportImage(ctx context.Context, img image.Image, labels []detection.Detection) (int, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	regions := pipeline.MapRegions(labels, w, h, w, h, b.pipeline.Options().Padding)
	if err := b.pipeline.Collect(ctx, img, regions); err != nil {
		return 0, err
	}

	written := 0
	for _, r := range regions {
		if r.RecognizedText == "" {
			continue
		}
		if err := b.exporter.Write(r.RecognizedText); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Pair is a page and its YOLO label file.
type Pair struct {
	Image  string `json:"image"`
	Labels string `json:"labels"`
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Pairs matches the images of imagesDir with the label files of labelsDir
// sharing their base name ("001.png" with "001.txt"), sorted by image name.
// Images without a label file are left out.
func Pairs(imagesDir, labelsDir string) ([]Pair, error) {
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	var pairs []Pair
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || !imageExtensions[ext] {
			continue
		}
		labels := filepath.Join(labelsDir, strings.TrimSuffix(name, filepath.Ext(name))+".txt")
		if _, err := os.Stat(labels); err != nil {
			continue
		}
		pairs = append(pairs, Pair{Image: filepath.Join(imagesDir, name), Labels: labels})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Image < pairs[j].Image })
	return pairs, nil
}

// Summary reports an export run.
type Summary struct {
	Pages   int      `json:"pages"`
	Entries int      `json:"entries"`
	Skipped []string `json:"skipped,omitempty"`
}

// ExportDir exports every page of imagesDir that has a label file in
// labelsDir. Pages that cannot be read are skipped and listed in the summary.
func (b *Builder) ExportDir(ctx context.Context, imagesDir, labelsDir string) (*Summary, error) {
	pairs, err := Pairs(imagesDir, labelsDir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		n, err := b.exportPair(ctx, pair)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			b.logger.WithError(err).WithField("image", pair.Image).Warn("Skipping page")
			summary.Skipped = append(summary.Skipped, pair.Image)
			continue
		}
		summary.Pages++
		summary.Entries += n
	}
	return summary, nil
}

func (b *Builder) exportPair(ctx context.Context, pair Pair) (int, error) {
	f, err := os.Open(pair.Image)
	if err != nil {
		return 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.DecodeReader(f)
	if err != nil {
		return 0, err
	}
	labels, err := detection.LabelFile{Path: pair.Labels}.Detect(ctx, img)
	if err != nil {
		return 0, err
	}
	return b.ExportImage(ctx, img, labels)
}
