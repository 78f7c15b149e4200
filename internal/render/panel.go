package render

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// Face panel geometry.
const (
	PanelWidth  = 450
	panelPad    = 20
	panelBorder = 6
	panelCorner = 40
)

// FacePanel frames a face crop as a standalone HUD panel: the crop resized to
// width (PanelWidth when width <= 0) keeping its aspect ratio, on a black
// background with a 20 pixel margin, a HUD border and heavier corner
// brackets. It returns nil for an empty crop.
func (r *Renderer) FacePanel(crop image.Image, width int) *image.RGBA {
	if crop == nil || crop.Bounds().Empty() {
		return nil
	}
	if width <= 0 {
		width = PanelWidth
	}

	b := crop.Bounds()
	height := max(roundInt(float64(width)*float64(b.Dy())/float64(b.Dx())), 1)

	fw, fh := width+2*panelPad, height+2*panelPad
	dc := gg.NewContext(fw, fh)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.DrawImage(resize(crop, width, height), panelPad, panelPad)

	dst := canvas(dc)
	frame := geometry.R(0, 0, fw, fh)
	fillOutline(dst, frame, panelBorder, r.palette.HUD)
	fillTicks(dst, frame, panelCorner, 2*panelBorder, r.palette.HUD)
	return dst
}
