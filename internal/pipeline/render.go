package pipeline

import (
	"context"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/layout"
)

// plan is everything needed to apply one region to the output.
type plan struct {
	fill       color.RGBA
	background *imaging.BackgroundResult
	layout     *layout.Layout
}

// Render returns a copy of img where every region with translated text has
// been erased to its background color and that text drawn in. Regions without
// translated text are left untouched. Regions are applied in
// slice order, so a later region overwrites an earlier one where they overlap.
//
// Sequentially, each region samples the output as left by the regions before
// it. With Options.Parallel all plans are computed from img at once and then
// applied in order. Both modes are deterministic. Region rectangles are in
// coordinates relative to the top-left corner of img.
func (p *Pipeline) Render(ctx context.Context, img image.Image, regions []TextRegion) (*image.RGBA, error) {
	return p.render(ctx, p.logger, img, regions)
}

func (p *Pipeline) render(ctx context.Context, log logrus.FieldLogger, img image.Image, regions []TextRegion) (*image.RGBA, error) {
	out := imaging.Clone(img)

	var plans []*plan
	if p.opts.Parallel {
		src := img
		if img.Bounds().Min != (image.Point{}) {
			src = imaging.Clone(img)
		}
		plans = p.planAll(src, regions)
	}

	for i := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := &regions[i]
		if !r.renderable() {
			continue
		}

		var pl *plan
		if plans != nil {
			pl = plans[i]
		} else {
			pl = p.plan(out, r)
		}
		p.apply(log, out, r, pl)
	}
	return out, nil
}

// planAll computes the plan of every renderable region concurrently. Plans
// only read src.
func (p *Pipeline) planAll(src image.Image, regions []TextRegion) []*plan {
	plans := make([]*plan, len(regions))
	parallel.Line(len(regions), func(start, end int) {
		for i := start; i < end; i++ {
			if regions[i].renderable() {
				plans[i] = p.plan(src, &regions[i])
			}
		}
	})
	return plans
}

func (p *Pipeline) plan(src image.Image, r *TextRegion) *plan {
	samples := imaging.SampleBorder(src, r.Rect, p.opts.RingWidth)
	return &plan{
		fill:       imaging.InferColor(samples),
		background: imaging.DescribeBackground(samples),
		layout:     p.engine.Plan(r.TranslatedText, r.Rect),
	}
}

func (p *Pipeline) apply(log logrus.FieldLogger, dst *image.RGBA, r *TextRegion, pl *plan) {
	imaging.Erase(dst, r.Rect, pl.fill)
	p.engine.Draw(dst, pl.layout)

	r.Background = pl.background
	r.Layout = pl.layout

	fields := logrus.Fields{
		"region": r.Index,
		"rect":   r.Rect.String(),
		"fill":   pl.background.Color.Hex,
		"size":   pl.layout.Font.Size,
		"lines":  len(pl.layout.Lines),
	}
	if pl.layout.Font.Fallback && len(pl.layout.Lines) > 0 {
		if r.Outcome == KindNone {
			r.Outcome = KindFallback
		}
		fields["kind"] = KindFallback.String()
		log.WithFields(fields).Info("No font size fits, using fallback font")
		return
	}
	log.WithFields(fields).Debug("Region rendered")
}
