package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/textfit"
)

// TextInset is the left padding of label text inside its background.
const TextInset = 10

// Renderer draws HUD elements with one palette and font cache.
// It is not safe for concurrent use; faces share glyph caches.
type Renderer struct {
	faces    *textfit.FaceCache
	resolver *textfit.Resolver
	palette  Palette
}

// New creates a renderer. A nil cache gets a fresh one.
func New(faces *textfit.FaceCache, palette Palette) *Renderer {
	if faces == nil {
		faces = textfit.NewFaceCache()
	}
	return &Renderer{
		faces:    faces,
		resolver: textfit.NewResolver(textfit.FamilyMeasurer{Cache: faces, Family: textfit.Regular}, textfit.DefaultPadding),
		palette:  palette,
	}
}

// Palette returns the renderer colours.
func (r *Renderer) Palette() Palette {
	return r.palette
}

// FitLabel returns the font size label text is drawn at for a label of the
// given width.
func (r *Renderer) FitLabel(text string, width int) textfit.Fit {
	return r.resolver.FitDefault(text, width)
}

// Body draws the body annotation onto a copy of img.
//
// Parameters:
//   - img: the image to draw on. Its bounds must start at (0, 0) because
//     plan coordinates are drawn at those pixel positions; see
//     imaging.AtOrigin.
//   - plan: the resolved body layout, or nil to return a plain copy
//   - top, bottom: the label texts, each sized to its label with FitLabel
//
// Returns:
//   - *image.RGBA: the annotated copy. img is never modified.
//
// The connector is drawn first and antialiased; the outline and label
// backgrounds are then filled in the exact HUD colour on top of it, so the
// outline stays recoverable with detection.ExtractFrames.
func (r *Renderer) Body(img image.Image, plan *layout.BodyPlan, top, bottom string) *image.RGBA {
	dc := gg.NewContextForImage(img)
	if plan == nil {
		return canvas(dc)
	}

	t := plan.Style.Thickness
	r.connector(dc, plan.Connector, t)
	fillOutline(canvas(dc), plan.Outline, t, r.palette.HUD)

	r.label(dc, plan.TopLabel, top)
	r.label(dc, plan.BottomLabel, bottom)
	return canvas(dc)
}

// Face draws the face outline with corner ticks and header bars.
func (r *Renderer) Face(img image.Image, plan *layout.FacePlan) *image.RGBA {
	dc := gg.NewContextForImage(img)
	if plan == nil {
		return canvas(dc)
	}

	dst := canvas(dc)
	t := plan.Style.Thickness
	fillOutline(dst, plan.Box, t, r.palette.HUD)
	fillTicks(dst, plan.Box, plan.TickLen, 2*t, r.palette.HUD)
	for _, bar := range plan.Bars {
		fillRect(dst, bar, r.palette.HUD)
	}
	return dst
}

// PlaceCard draws the face-to-card connector (when the plan has one) and
// composites the card, resized to the planned rectangle.
func (r *Renderer) PlaceCard(img image.Image, card image.Image, plan *layout.Plan) *image.RGBA {
	dc := gg.NewContextForImage(img)
	if plan == nil || plan.Card == nil || card == nil {
		return canvas(dc)
	}

	if plan.FaceConnector != nil {
		t := geometry.MinThickness
		if plan.Face != nil {
			t = plan.Face.Style.Thickness
		}
		r.connector(dc, *plan.FaceConnector, t)
	}

	rect := plan.Card.Rect
	dc.DrawImage(resize(card, rect.Dx(), rect.Dy()), rect.X1, rect.Y1)
	return canvas(dc)
}

func (r *Renderer) connector(dc *gg.Context, c layout.Connector, thickness int) {
	dc.SetColor(r.palette.HUD)
	dc.SetLineWidth(float64(thickness))
	dc.DrawLine(float64(c.From.X), float64(c.From.Y), float64(c.To.X), float64(c.To.Y))
	dc.Stroke()
}

// label fills the label background and draws text at its fitted size. Blank
// text keeps the background but draws nothing.
func (r *Renderer) label(dc *gg.Context, rect geometry.Rect, text string) {
	fillRect(canvas(dc), rect, r.palette.HUD)
	if strings.TrimSpace(text) == "" {
		return
	}

	fit := r.FitLabel(text, rect.Dx())
	dc.SetFontFace(r.faces.MustFace(textfit.Regular, fit.Size))
	dc.SetColor(r.palette.Text)
	dc.DrawStringAnchored(text, float64(rect.X1+TextInset), float64(rect.Y1)+float64(rect.Dy())/2, 0, 0.35)
}

// canvas returns the RGBA backing a context created by gg.NewContextForImage.
func canvas(dc *gg.Context) *image.RGBA {
	return dc.Image().(*image.RGBA)
}

func fillRect(dst draw.Image, r geometry.Rect, c color.Color) {
	if r.Empty() {
		return
	}
	draw.Draw(dst, r.Image(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// fillOutline fills a t pixel border along the inside of r.
func fillOutline(dst draw.Image, r geometry.Rect, t int, c color.Color) {
	t = max(1, min(t, r.Dx()/2, r.Dy()/2))
	fillRect(dst, geometry.R(r.X1, r.Y1, r.X2, r.Y1+t), c)
	fillRect(dst, geometry.R(r.X1, r.Y2-t, r.X2, r.Y2), c)
	fillRect(dst, geometry.R(r.X1, r.Y1, r.X1+t, r.Y2), c)
	fillRect(dst, geometry.R(r.X2-t, r.Y1, r.X2, r.Y2), c)
}

// fillTicks fills L-shaped corner brackets of length n and thickness t
// inside each corner of r.
func fillTicks(dst draw.Image, r geometry.Rect, n, t int, c color.Color) {
	n = min(n, r.Dx(), r.Dy())
	t = max(1, min(t, n))
	for _, left := range []bool{true, false} {
		for _, top := range []bool{true, false} {
			hx, vx := r.X1, r.X1
			if !left {
				hx, vx = r.X2-n, r.X2-t
			}
			hy, vy := r.Y1, r.Y1
			if !top {
				hy, vy = r.Y2-t, r.Y2-n
			}
			fillRect(dst, geometry.R(hx, hy, hx+n, hy+t), c)
			fillRect(dst, geometry.R(vx, vy, vx+t, vy+n), c)
		}
	}
}

func roundInt(f float64) int {
	return int(math.Round(f))
}
