package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/textfit"
)

// Identity card geometry at its native 360x480 size.
const (
	CardWidth    = 360
	CardHeight   = 480
	cardFaceSide = 320
	cardFaceX    = 20
	cardFaceY    = 50
	cardOutline  = 4
	cardTitlePt  = 26
	cardLinePt   = 20
)

var cardLineY = []int{380, 410, 440}

// CardOptions configures the identity card text.
type CardOptions struct {
	Title string   `yaml:"title"`
	Lines []string `yaml:"lines"`
}

// DefaultCardOptions returns the standard card title and caption lines.
func DefaultCardOptions() CardOptions {
	return CardOptions{
		Title: "PROFILE",
		Lines: []string{"ID: UNKNOWN", "PROJECT: AI FILTER", "STATUS: ACTIVE"},
	}
}

// BuildCard renders a 360x480 identity card: a HUD coloured panel with a
// title, the face as a grayscale auto-contrasted 320x320 thumbnail with an
// outline, and up to three caption lines. Long captions shrink to fit.
func (r *Renderer) BuildCard(face image.Image, opts CardOptions) *image.RGBA {
	dc := gg.NewContext(CardWidth, CardHeight)
	dc.SetColor(r.palette.HUD)
	dc.Clear()

	dc.SetColor(r.palette.Ink)
	dc.SetFontFace(r.faces.MustFace(textfit.Bold, cardTitlePt))
	dc.DrawStringAnchored(opts.Title, 10, 10, 0, 1)

	if face != nil && !face.Bounds().Empty() {
		thumb := autoContrast(imaging.Resize(imaging.Grayscale(face), cardFaceSide, cardFaceSide, imaging.Lanczos))
		dc.DrawImage(thumb, cardFaceX, cardFaceY)
	}
	fillOutline(canvas(dc), geometry.R(cardFaceX, cardFaceY, cardFaceX+cardFaceSide, cardFaceY+cardFaceSide), cardOutline, r.palette.Ink)

	resolver := textfit.NewResolver(textfit.FamilyMeasurer{Cache: r.faces, Family: textfit.Regular}, cardFaceX)
	for i, line := range opts.Lines {
		if i >= len(cardLineY) {
			break
		}
		fit := resolver.Fit(line, CardWidth-cardFaceX, cardLinePt, textfit.DefaultMinSize)
		dc.SetFontFace(r.faces.MustFace(textfit.Regular, fit.Size))
		dc.DrawStringAnchored(line, cardFaceX, float64(cardLineY[i]), 0, 1)
	}
	return canvas(dc)
}

// autoContrast stretches a grayscale image so its darkest pixel becomes black
// and its brightest white.
func autoContrast(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		v := img.Pix[i]
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi <= lo {
		return img
	}
	span := float64(hi - lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := uint8(roundInt(float64(c.R-lo) * 255 / span))
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, max(w, 1), max(h, 1), imaging.Lanczos)
}
