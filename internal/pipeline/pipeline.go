package pipeline

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-trad-mcp/internal/detection"
	"github.com/ironsheep/scan-trad-mcp/internal/grammar"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/layout"
	"github.com/ironsheep/scan-trad-mcp/internal/logging"
	"github.com/ironsheep/scan-trad-mcp/internal/ocr"
	"github.com/ironsheep/scan-trad-mcp/internal/translate"
)

// Options tune region mapping and both terminals.
type Options struct {
	// Padding grows every mapped rectangle, as a fraction of its size.
	Padding float64
	// RingWidth is the distance of the background sampling strips.
	RingWidth int

	Language    string
	PageSegMode int
	// Preprocess binarizes and sharpens the page before regions are cropped
	// for recognition.
	Preprocess bool

	// Grammar passes recognized text through the corrector.
	Grammar      bool
	MaxNewTokens int

	// SortByTop orders reported regions top to bottom. Rendering always
	// follows input order.
	SortByTop bool
	// Parallel plans every region against the input image concurrently before
	// applying the plans in input order.
	Parallel bool

	DefaultLocale string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		RingWidth:     imaging.DefaultRingWidth,
		Language:      ocr.DefaultLanguage,
		PageSegMode:   ocr.DefaultPageSegMode,
		MaxNewTokens:  grammar.DefaultMaxNewTokens,
		SortByTop:     true,
		DefaultLocale: "fr",
	}
}

// Deps are the collaborators of a Pipeline. They are shared by every request
// and owned by the caller.
type Deps struct {
	Recognizer ocr.Recognizer
	// Corrector is used when Options.Grammar is set. Nil means Passthrough.
	Corrector  grammar.Corrector
	Translator translate.Provider
	// Detector supplies boxes for requests that carry none. Nil means such
	// requests have no regions.
	Detector detection.Provider
	Engine   *layout.Engine
	Logger   logrus.FieldLogger
}

// Pipeline runs the region stages over one image per call.
type Pipeline struct {
	recognizer ocr.Recognizer
	corrector  grammar.Corrector
	translator translate.Provider
	detector   detection.Provider
	engine     *layout.Engine
	opts       Options
	logger     logrus.FieldLogger
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	p := &Pipeline{
		recognizer: deps.Recognizer,
		corrector:  deps.Corrector,
		translator: deps.Translator,
		detector:   deps.Detector,
		engine:     deps.Engine,
		opts:       opts,
		logger:     deps.Logger,
	}
	if p.corrector == nil {
		p.corrector = grammar.Passthrough{}
	}
	if p.translator == nil {
		p.translator = translate.NewDemoTable()
	}
	if p.engine == nil {
		p.engine = layout.NewEngine(layout.NewFontSet())
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.opts.RingWidth <= 0 {
		p.opts.RingWidth = imaging.DefaultRingWidth
	}
	if p.opts.MaxNewTokens <= 0 {
		p.opts.MaxNewTokens = grammar.DefaultMaxNewTokens
	}
	return p
}

// Options returns the options the pipeline runs with.
func (p *Pipeline) Options() Options { return p.opts }

// Engine returns the layout engine used by the render terminal.
func (p *Pipeline) Engine() *layout.Engine { return p.engine }

// Detect returns the boxes of the configured detector, or none.
func (p *Pipeline) Detect(ctx context.Context, img image.Image) ([]detection.Detection, error) {
	if p.detector == nil {
		return nil, nil
	}
	return p.detector.Detect(ctx, img)
}

// Collect fills RecognizedText for every region, in order. A region whose crop
// or recognition fails keeps empty text; one whose correction fails keeps
// the uncorrected text. Only a canceled context stops the batch.
func (p *Pipeline) Collect(ctx context.Context, img image.Image, regions []TextRegion) error {
	return p.collect(ctx, p.logger, img, regions)
}

func (p *Pipeline) collect(ctx context.Context, log logrus.FieldLogger, img image.Image, regions []TextRegion) error {
	if p.recognizer == nil {
		return nil
	}

	source := img
	if p.opts.Preprocess {
		source = imaging.Preprocess(img)
	}

	for i := range regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := &regions[i]

		roi, err := imaging.Crop(source, r.Rect)
		if err != nil {
			p.logFailure(log, r.fail("crop", err))
			continue
		}

		text, err := p.recognizer.Recognize(ctx, roi, p.opts.Language, p.opts.PageSegMode)
		if err != nil {
			p.logFailure(log, r.fail("recognize", err))
			continue
		}
		text = ocr.Clean(text)

		if p.opts.Grammar && text != "" {
			corrected, err := p.corrector.Correct(ctx, text, p.opts.MaxNewTokens)
			if err != nil {
				p.logFailure(log, r.fail("correct", err))
			} else {
				text = corrected
			}
		}
		r.RecognizedText = text

		log.WithFields(logrus.Fields{
			"region": r.Index,
			"rect":   r.Rect.String(),
			"chars":  len(text),
		}).Debug("Region recognized")
	}
	return nil
}

// Translate fills TranslatedText for every region with recognized text. A
// region whose translation fails is marked failed and is not rendered.
func (p *Pipeline) Translate(ctx context.Context, regions []TextRegion, locale string) error {
	return p.translate(ctx, p.logger, regions, locale)
}

func (p *Pipeline) translate(ctx context.Context, log logrus.FieldLogger, regions []TextRegion, locale string) error {
	for i := range regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := &regions[i]
		if r.RecognizedText == "" {
			continue
		}

		translated, err := p.translator.Translate(ctx, r.RecognizedText, locale)
		if err != nil {
			p.logFailure(log, r.fail("translate", err))
			continue
		}
		r.TranslatedText = translated
	}
	return nil
}

func (p *Pipeline) logFailure(log logrus.FieldLogger, err *Error) {
	log.WithFields(logrus.Fields{
		"region": err.Region,
		"op":     err.Op,
		"kind":   err.Kind.String(),
	}).WithError(err.Err).Warn("Region failed")
}
