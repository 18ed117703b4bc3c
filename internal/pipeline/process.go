package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-trad-mcp/internal/detection"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/translate"
)

// Request is one page to translate.
type Request struct {
	// Image holds the encoded page (PNG, JPEG, GIF, BMP or TIFF).
	Image []byte
	// Detections are the boxes to process, in order. When nil the pipeline's
	// detector is asked for them.
	Detections []detection.Detection
	// RefWidth and RefHeight are the size of the image the detections were
	// measured on. Zero means the decoded image itself.
	RefWidth  int
	RefHeight int
	// Locale is the target language. Empty means Options.DefaultLocale.
	Locale string
}

// Rect is a rectangle reported by origin and size.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionReport describes what happened to one region.
type RegionReport struct {
	Index          int                  `json:"index"`
	ID             string               `json:"id"`
	Confidence     float64              `json:"confidence"`
	Rect           Rect                 `json:"rect"`
	OriginalText   string               `json:"original_text"`
	TranslatedText string               `json:"translated_text"`
	Background     *imaging.ColorResult `json:"background,omitempty"`
	FontSize       int                  `json:"font_size,omitempty"`
	Lines          int                  `json:"lines,omitempty"`
	Outcome        Kind                 `json:"outcome"`
	Error          string               `json:"error,omitempty"`
}

// Stats counts the regions of a request.
type Stats struct {
	RegionsDetected int `json:"regions_detected"`
	RegionsMapped   int `json:"regions_mapped"`
	TextsExtracted  int `json:"texts_extracted"`
	TextsTranslated int `json:"texts_translated"`
	Failed          int `json:"failed"`
	Degraded        int `json:"degraded"`
}

// Response is the translated page and its region reports.
type Response struct {
	RequestID string         `json:"request_id"`
	Locale    string         `json:"locale"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Image     []byte         `json:"-"`
	Regions   []RegionReport `json:"regions"`
	Stats     Stats          `json:"stats"`
}

// Process decodes the page, maps the detections, recognizes and translates
// each region, renders the translations and encodes the result as PNG.
//
// A decode failure returns an *Error of KindDecode and no response. Region
// failures never abort the request; they are reported per region.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Response, error) {
	requestID := uuid.NewString()
	log := p.logger.WithField("request_id", requestID)

	img, err := imaging.Decode(req.Image)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Region: -1, Op: "decode", Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}

	locale := req.Locale
	if locale == "" {
		locale = p.opts.DefaultLocale
	}
	locale, err = translate.ValidateLocale(locale)
	if err != nil {
		return nil, err
	}

	dets := req.Detections
	if dets == nil {
		if dets, err = p.Detect(ctx, img); err != nil {
			return nil, fmt.Errorf("detect regions: %w", err)
		}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	regions := MapRegions(dets, req.RefWidth, req.RefHeight, w, h, p.opts.Padding)
	log.WithFields(logrus.Fields{
		"width":    w,
		"height":   h,
		"detected": len(dets),
		"mapped":   len(regions),
		"locale":   locale,
	}).Info("Processing page")

	if err := p.collect(ctx, log, img, regions); err != nil {
		return nil, err
	}
	if err := p.translate(ctx, log, regions, locale); err != nil {
		return nil, err
	}
	out, err := p.render(ctx, log, img, regions)
	if err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	resp := &Response{
		RequestID: requestID,
		Locale:    locale,
		Width:     w,
		Height:    h,
		Image:     data,
		Regions:   Reports(regions, p.opts.SortByTop),
		Stats:     Summarize(len(dets), regions),
	}
	log.WithFields(logrus.Fields{
		"extracted":  resp.Stats.TextsExtracted,
		"translated": resp.Stats.TextsTranslated,
		"failed":     resp.Stats.Failed,
	}).Info("Page processed")
	return resp, nil
}

// Reports converts regions to reports, optionally ordered top to bottom.
// regions itself is not reordered.
func Reports(regions []TextRegion, sortByTop bool) []RegionReport {
	ordered := regions
	if sortByTop {
		ordered = append([]TextRegion(nil), regions...)
		SortByTop(ordered)
	}

	reports := make([]RegionReport, 0, len(ordered))
	for _, r := range ordered {
		rep := RegionReport{
			Index:      r.Index,
			ID:         r.Detection.ID,
			Confidence: r.Detection.Confidence,
			Rect: Rect{
				X:      r.Rect.XMin,
				Y:      r.Rect.YMin,
				Width:  r.Rect.Width(),
				Height: r.Rect.Height(),
			},
			OriginalText:   r.RecognizedText,
			TranslatedText: r.TranslatedText,
			Outcome:        r.Outcome,
		}
		if r.Background != nil {
			bg := r.Background.Color
			rep.Background = &bg
		}
		if r.Layout != nil {
			rep.FontSize = r.Layout.Font.Size
			rep.Lines = len(r.Layout.Lines)
		}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		reports = append(reports, rep)
	}
	return reports
}

// Summarize counts the outcomes of regions mapped from detected boxes.
func Summarize(detected int, regions []TextRegion) Stats {
	s := Stats{RegionsDetected: detected, RegionsMapped: len(regions)}
	for _, r := range regions {
		if r.RecognizedText != "" {
			s.TextsExtracted++
		}
		if r.TranslatedText != "" {
			s.TextsTranslated++
		}
		switch r.Outcome {
		case KindRegion:
			s.Failed++
		case KindFallback:
			s.Degraded++
		}
	}
	return s
}
