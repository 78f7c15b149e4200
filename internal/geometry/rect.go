package geometry

import (
	"fmt"
	"image"
	"math"
)

// Rect is an axis-aligned rectangle in pixel space.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive). Rectangles produced by this package are always normalized
// and clamped to the image they were computed for.
type Rect struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// R is shorthand for building a Rect from its four edges.
func R(x1, y1, x2, y2 int) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// FromImage converts an image.Rectangle into a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Image converts the rectangle into an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Dx returns the width of the rectangle.
func (r Rect) Dx() int { return r.X2 - r.X1 }

// Dy returns the height of the rectangle.
func (r Rect) Dy() int { return r.Y2 - r.Y1 }

// Area returns the area in square pixels. Reversed rectangles have zero area.
func (r Rect) Area() int {
	if r.X2 <= r.X1 || r.Y2 <= r.Y1 {
		return 0
	}
	return r.Dx() * r.Dy()
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Area() == 0 }

// Center returns the center of the rectangle.
func (r Rect) Center() (float64, float64) {
	return float64(r.X1+r.X2) / 2, float64(r.Y1+r.Y2) / 2
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return r.X1 < o.X2 && o.X1 < r.X2 && r.Y1 < o.Y2 && o.Y1 < r.Y2
}

// In reports whether r lies entirely inside a width x height image.
func (r Rect) In(width, height int) bool {
	return r.X1 >= 0 && r.Y1 >= 0 && r.X2 <= width && r.Y2 <= height
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// Normalize returns r with ordered corners, clamped to a width x height image.
//
// Reversed corners are swapped. Coordinates are clamped to [0, width] and
// [0, height]. If the result has zero width or height it is widened to a 1x1
// rectangle at the same location, sliding back inside the image when the
// location sits on the far edge. Images smaller than 1x1 are treated as 1x1.
func Normalize(r Rect, width, height int) Rect {
	width = max(width, 1)
	height = max(height, 1)

	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}

	r.X1 = clamp(r.X1, 0, width)
	r.X2 = clamp(r.X2, 0, width)
	r.Y1 = clamp(r.Y1, 0, height)
	r.Y2 = clamp(r.Y2, 0, height)

	if r.X1 == r.X2 {
		if r.X1 == width {
			r.X1 = width - 1
		}
		r.X2 = r.X1 + 1
	}
	if r.Y1 == r.Y2 {
		if r.Y1 == height {
			r.Y1 = height - 1
		}
		r.Y2 = r.Y1 + 1
	}
	return r
}

// SquareBBox converts r into a padded square centered on r's center.
//
// Parameters:
//   - r: Source rectangle (normalized first, so any input is accepted).
//   - width, height: Image dimensions used for clamping.
//   - padRatio: Padding added on each side, as a fraction of the square's side.
//
// The side length is max(r.Dx(), r.Dy()) * (1 + 2*padRatio). When the square
// overflows the image it slides back inside along the overflowing axis, keeping
// its side length. The side is only reduced when it exceeds the smaller image
// dimension, in which case it equals that dimension and the result is still square.
func SquareBBox(r Rect, width, height int, padRatio float64) Rect {
	width = max(width, 1)
	height = max(height, 1)
	r = Normalize(r, width, height)

	cx, cy := r.Center()
	side := float64(max(r.Dx(), r.Dy()))
	side += 2 * side * math.Max(padRatio, 0)

	s := int(math.Round(side))
	s = max(s, 1)
	s = min(s, width, height)

	x1 := int(math.Round(cx - float64(s)/2))
	y1 := int(math.Round(cy - float64(s)/2))

	x1 = slide(x1, s, width)
	y1 = slide(y1, s, height)

	return Rect{X1: x1, Y1: y1, X2: x1 + s, Y2: y1 + s}
}

// PaddedBBox expands r by padRatio of its own width and height on each side,
// then hard-clamps the result to the image.
//
// Unlike SquareBBox the aspect ratio of r is preserved (up to clamping), which
// suits full-body regions. Padding amounts are rounded to whole pixels, so
// PaddedBBox(R(100, 100, 400, 900), 1000, 1000, 0.10) is R(70, 20, 430, 980).
func PaddedBBox(r Rect, width, height int, padRatio float64) Rect {
	width = max(width, 1)
	height = max(height, 1)
	r = Normalize(r, width, height)

	padW := int(math.Round(float64(r.Dx()) * padRatio))
	padH := int(math.Round(float64(r.Dy()) * padRatio))

	out := Rect{
		X1: max(0, r.X1-padW),
		Y1: max(0, r.Y1-padH),
		X2: min(width, r.X2+padW),
		Y2: min(height, r.Y2+padH),
	}
	return Normalize(out, width, height)
}

// SizeRatio returns the area of r divided by the area of a width x height image.
//
// The result is 0 for empty rectangles or empty images.
func SizeRatio(r Rect, width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return float64(r.Area()) / float64(width*height)
}

// slide moves a segment [pos, pos+size) back inside [0, limit) without resizing it.
func slide(pos, size, limit int) int {
	if pos+size > limit {
		pos = limit - size
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
