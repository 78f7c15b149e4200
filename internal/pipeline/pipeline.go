// Package pipeline runs one image through the whole HUD composition:
// stylize, detect, describe, annotate body and face, place the identity card,
// draw the border frame and save.
//
// Compose is the pure part. It takes decoded images and returns the result
// without touching the filesystem, so it can be previewed or tested directly.
// Run adds loading and saving around it. Images are processed one at a time;
// nothing is shared between runs except the injected collaborators.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/describe"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/imaging"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/logger"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/render"
)

// FaceCropPadding grows the detected face on each side before it is used as
// the card picture.
const FaceCropPadding = 0.25

// DateFormat is the layout of the border frame date.
const DateFormat = "2006-01-02"

// Stylizer gives the image its look before detection.
type Stylizer interface {
	Stylize(img image.Image) image.Image
}

// Describer never fails; describe.Fallback is the usual implementation.
type Describer interface {
	Describe(ctx context.Context, img image.Image) describe.LabelPair
}

// Saver persists a result next to its source.
type Saver interface {
	Save(img image.Image, original string) (string, error)
}

// Deps are the collaborators of a Pipeline. Nil fields get defaults: no
// detections, default labels, no stylizing, the default palette and layout,
// the default store, the process logger and the wall clock.
type Deps struct {
	Detector  detection.Detector
	Describer Describer
	Stylizer  Stylizer
	Renderer  *render.Renderer
	Planner   *layout.Planner
	Store     Saver
	Card      *render.CardOptions
	Frame     *render.FrameText
	Logger    *zap.Logger
	Now       func() time.Time
}

// Pipeline composes HUD images.
type Pipeline struct {
	detector  detection.Detector
	describer Describer
	stylizer  Stylizer
	renderer  *render.Renderer
	planner   *layout.Planner
	store     Saver
	card      render.CardOptions
	frame     render.FrameText
	log       *zap.Logger
	now       func() time.Time
}

// New creates a pipeline from d.
func New(d Deps) (*Pipeline, error) {
	p := &Pipeline{
		detector:  d.Detector,
		describer: d.Describer,
		stylizer:  d.Stylizer,
		renderer:  d.Renderer,
		planner:   d.Planner,
		store:     d.Store,
		card:      render.DefaultCardOptions(),
		frame:     render.DefaultFrameText(),
		log:       d.Logger,
		now:       d.Now,
	}
	if d.Card != nil {
		p.card = *d.Card
	}
	if d.Frame != nil {
		p.frame = *d.Frame
	}
	if p.log == nil {
		p.log = logger.Log()
	}
	if p.describer == nil {
		p.describer = describe.NewFallback(nil, 0, p.log)
	}
	if p.renderer == nil {
		p.renderer = render.New(nil, render.DefaultPalette())
	}
	if p.planner == nil {
		p.planner = layout.NewPlanner(layout.DefaultConfig())
	}
	if p.store == nil {
		s, err := imaging.NewStore(imaging.DefaultStoreConfig())
		if err != nil {
			return nil, err
		}
		p.store = s
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Result is the outcome of one composition.
type Result struct {
	RunID string `json:"run_id"`
	// Image is the final composition. Stylized is the image after styling,
	// before any annotation.
	Image    *image.RGBA `json:"-"`
	Stylized image.Image `json:"-"`

	Detections detection.Result `json:"detections"`
	Plan       *layout.Plan     `json:"plan"`
	// Labels is nil when no body was found.
	Labels     *describe.LabelPair `json:"labels,omitempty"`
	CardSource CardSource          `json:"card_source,omitempty"`
	Stages     []Stage             `json:"stages"`
	OutputPath string              `json:"output_path,omitempty"`
}

// Reached reports whether the run entered stage s.
func (r *Result) Reached(s Stage) bool {
	for _, st := range r.Stages {
		if st == s {
			return true
		}
	}
	return false
}

type run struct {
	res *Result
	log *zap.Logger
}

func (r *run) enter(s Stage) {
	r.res.Stages = append(r.res.Stages, s)
	r.log.Debug("stage reached", zap.String("stage", string(s)))
}

// Compose runs every in-memory stage on img.
//
// Parameters:
//   - ctx: bounds the description call; cancellation is absorbed like any
//     other description failure
//   - img: the decoded photo. Images whose bounds do not start at (0, 0),
//     such as sub-images, are copied to the origin first
//   - userFace: the card picture when no face is detected, or nil
//
// Returns:
//   - *Result: the composition, the stylized image, the detections, the
//     layout plan in origin-relative coordinates and the stages reached.
//     Result.Image always has its origin at (0, 0).
//
// Neither input is modified. A missing face skips FACE_ANNOTATED; a missing
// body skips DESCRIBED and BODY_ANNOTATED; no card picture makes CARD_PLACED
// a no-op. Description failures are absorbed by the Describer, so Compose
// never fails.
func (p *Pipeline) Compose(ctx context.Context, img image.Image, userFace image.Image) *Result {
	return p.compose(ctx, uuid.NewString(), img, userFace)
}

func (p *Pipeline) compose(ctx context.Context, runID string, img image.Image, userFace image.Image) *Result {
	r := &run{
		res: &Result{RunID: runID},
		log: p.log.With(zap.String("run_id", runID)),
	}
	r.enter(StageLoaded)

	img = imaging.AtOrigin(img)
	styled := img
	if p.stylizer != nil {
		styled = imaging.AtOrigin(p.stylizer.Stylize(img))
	}
	r.res.Stylized = styled
	r.enter(StageStyled)

	b := styled.Bounds()
	w, h := b.Dx(), b.Dy()

	det := detection.Detect(p.detector, styled)
	r.res.Detections = det
	r.enter(StageDetected)
	r.log.Debug("detections",
		zap.Bool("face", det.Face != nil),
		zap.Bool("body", det.Body != nil))

	var cardFace image.Image
	switch {
	case det.Face != nil:
		cardFace = imaging.CropRegion(styled, *det.Face, FaceCropPadding)
		r.res.CardSource = CardDetected
	case userFace != nil:
		cardFace = userFace
		r.res.CardSource = CardUser
	}

	plan := p.planner.Plan(layout.Input{
		Width:  w,
		Height: h,
		Face:   det.Face,
		Body:   det.Body,
		Card:   cardFace != nil,
	})
	r.res.Plan = plan
	if plan.Body != nil && plan.Body.Overflow {
		r.log.Info("label block does not fit, drawing past the image edge",
			zap.Stringer("labels", plan.Body.LabelBlock()))
	}

	var out image.Image = styled

	if plan.Body != nil {
		crop := imaging.CropRegion(styled, geometry.PaddedBBox(*det.Body, w, h, p.planner.Config().BodyPad), 0)
		labels := p.describer.Describe(ctx, crop)
		r.res.Labels = &labels
		r.enter(StageDescribed)

		top, bottom := labels.Display()
		out = p.renderer.Body(out, plan.Body, top, bottom)
		r.enter(StageBodyAnnotated)
	}

	if plan.Face != nil {
		out = p.renderer.Face(out, plan.Face)
		r.enter(StageFaceAnnotated)
	}

	if plan.Card != nil && cardFace != nil {
		card := p.renderer.BuildCard(cardFace, p.card)
		out = p.renderer.PlaceCard(out, card, plan)
		r.enter(StageCardPlaced)
	}

	text := p.frame
	if text.Date == "" {
		text.Date = p.now().Format(DateFormat)
	}
	r.res.Image = p.renderer.Frame(out, text)
	r.enter(StageBordered)

	return r.res
}

// Options are per-run inputs for Run.
type Options struct {
	// FaceImagePath is an optional picture for the identity card, used when
	// no face is detected.
	FaceImagePath string
}

// Run loads path, composes it and saves the result next to it. Only load
// and save failures are returned; a card picture that cannot be loaded is
// logged and ignored.
func (p *Pipeline) Run(ctx context.Context, path string, opts Options) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.With(zap.String("run_id", runID), zap.String("path", path))
	start := time.Now()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	var userFace image.Image
	if opts.FaceImagePath != "" {
		userFace, err = imaging.Open(opts.FaceImagePath)
		if err != nil {
			log.Warn("face image unavailable, card will use the detected face only",
				zap.String("face_path", opts.FaceImagePath),
				zap.Error(err))
			userFace = nil
		}
	}

	res := p.compose(ctx, runID, img, userFace)

	out, err := p.store.Save(res.Image, path)
	if err != nil {
		return res, fmt.Errorf("failed to save result for %s: %w", path, err)
	}
	res.OutputPath = out
	res.Stages = append(res.Stages, StageSaved)

	log.Info("image processed",
		zap.String("output", out),
		zap.Int("stages", len(res.Stages)),
		zap.String("card", string(res.CardSource)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// BatchItem is the outcome for one path of RunBatch.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// RunBatch runs paths strictly one after another. A failed image does not
// stop the batch; cancelling ctx does, and the remaining paths are reported
// with ctx's error.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string, opts Options) []BatchItem {
	items := make([]BatchItem, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			items = append(items, BatchItem{Path: path, Err: err})
			continue
		}
		res, err := p.Run(ctx, path, opts)
		if err != nil {
			p.log.Error("image failed", zap.String("path", path), zap.Error(err))
		}
		items = append(items, BatchItem{Path: path, Result: res, Err: err})
	}
	return items
}
