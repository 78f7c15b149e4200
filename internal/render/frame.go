package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/textfit"
)

// FrameText holds the border frame captions.
type FrameText struct {
	Date     string `yaml:"date"`
	Battery  string `yaml:"battery"`
	Caption  string `yaml:"caption"`
	TagLeft  string `yaml:"tag_left"`
	TagRight string `yaml:"tag_right"`
}

// DefaultFrameText returns the standard captions. Date is left empty and is
// filled with the run date by the caller.
func DefaultFrameText() FrameText {
	return FrameText{
		Battery:  "69%",
		Caption:  "PICSART X KHACH",
		TagLeft:  "2025",
		TagRight: "PAX",
	}
}

// Frame draws viewfinder-style corner brackets inset 3% from each edge and
// the monospace captions around them.
//
// Bracket arms are proportional to the image: 20%x20% at the top corners,
// 25%x18% bottom-left and 20%x18% bottom-right. Strokes are 2 pixels on
// images whose short side is at least 600 pixels, 1 pixel otherwise.
func (r *Renderer) Frame(img image.Image, text FrameText) *image.RGBA {
	dc := gg.NewContextForImage(img)
	dst := canvas(dc)
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	short := math.Min(w, h)

	t := 1
	if short >= 600 {
		t = 2
	}
	mx, my := int(w*0.03), int(h*0.03)
	right, bottom := b.Dx()-mx, b.Dy()-my
	c := r.palette.Frame

	bracket := func(x, y, armW, armH int, dx, dy int) {
		hx := x
		if dx < 0 {
			hx = x + t - armW
		}
		vy := y
		if dy < 0 {
			vy = y + t - armH
		}
		fillRect(dst, geometry.R(hx, y, hx+armW, y+t), c)
		fillRect(dst, geometry.R(x, vy, x+t, vy+armH), c)
	}

	topW, topH := int(w*0.20), int(h*0.20)
	bottomLW, bottomH := int(w*0.25), int(h*0.18)
	bracket(mx, my, topW, topH, 1, 1)
	bracket(right-t, my, topW, topH, -1, 1)
	bracket(mx, bottom-t, bottomLW, bottomH, 1, -1)
	bracket(right-t, bottom-t, topW, bottomH, -1, -1)

	size := max(int(short*0.024), 6)
	pad := float64(int(short * 0.012))
	dc.SetFontFace(r.faces.MustFace(textfit.Mono, size))
	dc.SetColor(c)

	fmx, fmy := float64(mx), float64(my)
	if text.Date != "" {
		dc.DrawStringAnchored(text.Date, fmx+pad, fmy+pad, 0, 1)
	}
	if text.Battery != "" {
		mid := (fmx + float64(topW) + float64(right-topW)) / 2
		dc.DrawStringAnchored(text.Battery, mid, fmy, 0.5, 0.5)
	}
	if text.Caption != "" {
		dc.DrawStringAnchored(text.Caption, fmx+pad, float64(bottom)-pad, 0, 0)
	}
	if text.TagLeft != "" || text.TagRight != "" {
		lw, _ := dc.MeasureString(text.TagLeft)
		rw, _ := dc.MeasureString(text.TagRight)
		x := w/2 - (lw+pad+rw)/2
		dc.DrawStringAnchored(text.TagLeft, x, float64(bottom), 0, 0.5)
		dc.DrawStringAnchored(text.TagRight, x+lw+pad, float64(bottom), 0, 0.5)
	}
	return dst
}
