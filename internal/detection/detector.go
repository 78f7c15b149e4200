package detection

import (
	"image"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// Detector finds the single most prominent face and body in an image.
type Detector interface {
	DetectFace(img image.Image) (geometry.Rect, bool)
	DetectBody(img image.Image) (geometry.Rect, bool)
}

// Result holds the detections for one image. Nil fields mean nothing was found.
type Result struct {
	Face *geometry.Rect `json:"face,omitempty"`
	Body *geometry.Rect `json:"body,omitempty"`
}

// Detect runs both detections of d on img.
func Detect(d Detector, img image.Image) Result {
	var res Result
	if d == nil {
		return res
	}
	if face, ok := d.DetectFace(img); ok {
		res.Face = &face
	}
	if body, ok := d.DetectBody(img); ok {
		res.Body = &body
	}
	return res
}

// Largest returns the candidate with the largest area, preferring the earliest
// on ties. Coordinates are translated so the image origin is (0, 0).
// It returns false when there are no non-empty candidates.
func Largest(candidates []image.Rectangle, bounds image.Rectangle) (geometry.Rect, bool) {
	best := -1
	bestArea := 0
	for i, c := range candidates {
		c = c.Canon()
		area := c.Dx() * c.Dy()
		if area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return geometry.Rect{}, false
	}
	r := geometry.FromImage(candidates[best].Canon().Sub(bounds.Min))
	return geometry.Normalize(r, bounds.Dx(), bounds.Dy()), true
}

// Fixed is a Detector that returns preset rectangles.
type Fixed struct {
	Face *geometry.Rect
	Body *geometry.Rect
}

// DetectFace implements Detector.
func (f Fixed) DetectFace(img image.Image) (geometry.Rect, bool) {
	return f.pick(f.Face, img)
}

// DetectBody implements Detector.
func (f Fixed) DetectBody(img image.Image) (geometry.Rect, bool) {
	return f.pick(f.Body, img)
}

func (f Fixed) pick(r *geometry.Rect, img image.Image) (geometry.Rect, bool) {
	if r == nil {
		return geometry.Rect{}, false
	}
	b := img.Bounds()
	return geometry.Normalize(*r, b.Dx(), b.Dy()), true
}
