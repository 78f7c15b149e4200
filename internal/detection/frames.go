package detection

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// Frame is an outline recovered from an image.
type Frame struct {
	// Bounds is the outer edge of the outline.
	Bounds geometry.Rect `json:"bounds"`

	// Thickness is the height of the top band in pixels. Corner ticks that
	// span the whole edge count towards it.
	Thickness int `json:"thickness"`

	// Color is the outline colour as hex.
	Color string `json:"color"`
}

// FramesResult contains all frames found in an image.
type FramesResult struct {
	// Frames is sorted by area, largest first.
	Frames []Frame `json:"frames"`

	// Count is the number of frames found.
	Count int `json:"count"`
}

// Contains reports whether a frame with exactly these bounds was found.
func (r *FramesResult) Contains(bounds geometry.Rect) bool {
	for _, f := range r.Frames {
		if f.Bounds == bounds {
			return true
		}
	}
	return false
}

type span struct{ x1, x2 int }

// band is a run of consecutive rows sharing one span.
type band struct{ y1, y2 int }

// ExtractFrames finds rectangular outlines drawn in exactly colour c.
//
// Parameters:
//   - img: Image to scan.
//   - c: Outline colour. Pixels match when their RGBA values are identical.
//   - minSide: Minimum width and height of a frame in pixels.
//
// # Algorithm
//
//  1. Run collection: every maximal horizontal run of c at least minSide long
//     is recorded under its (x1, x2) span
//  2. Banding: rows of one span are merged into bands of consecutive rows
//  3. Pairing: each band is paired with the nearest later band of the same
//     span for which columns x1 and x2-1 are c on every row in between
//
// Filled rectangles produce a single band and are not reported. Coordinates
// are relative to img.Bounds().Min.
func ExtractFrames(img image.Image, c color.Color, minSide int) *FramesResult {
	bounds := img.Bounds()
	minSide = max(minSide, 2)
	target := color.RGBAModel.Convert(c).(color.RGBA)

	match := func(x, y int) bool {
		return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA) == target
	}

	bands := make(map[span][]band)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		x := bounds.Min.X
		for x < bounds.Max.X {
			if !match(x, y) {
				x++
				continue
			}
			start := x
			for x < bounds.Max.X && match(x, y) {
				x++
			}
			if x-start < minSide {
				continue
			}
			s := span{start, x}
			list := bands[s]
			if n := len(list); n > 0 && list[n-1].y2 == y {
				list[n-1].y2 = y + 1
			} else {
				list = append(list, band{y, y + 1})
			}
			bands[s] = list
		}
	}

	frames := make([]Frame, 0)
	hex := fmt.Sprintf("#%02x%02x%02x", target.R, target.G, target.B)

	for s, list := range bands {
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				top, bottom := list[i].y1, list[j].y2
				if bottom-top < minSide {
					continue
				}
				if !columnsContinuous(match, s, top, bottom) {
					continue
				}
				frames = append(frames, Frame{
					Bounds:    geometry.R(s.x1, top, s.x2, bottom).Translate(-bounds.Min.X, -bounds.Min.Y),
					Thickness: list[i].y2 - list[i].y1,
					Color:     hex,
				})
				i = j
				break
			}
		}
	}

	sort.Slice(frames, func(i, j int) bool {
		ai, aj := frames[i].Bounds.Area(), frames[j].Bounds.Area()
		if ai != aj {
			return ai > aj
		}
		bi, bj := frames[i].Bounds, frames[j].Bounds
		if bi.Y1 != bj.Y1 {
			return bi.Y1 < bj.Y1
		}
		return bi.X1 < bj.X1
	})

	return &FramesResult{Frames: frames, Count: len(frames)}
}

func columnsContinuous(match func(x, y int) bool, s span, top, bottom int) bool {
	for y := top; y < bottom; y++ {
		if !match(s.x1, y) || !match(s.x2-1, y) {
			return false
		}
	}
	return true
}

// FindFrame returns the frame whose bounds best match want: an exact match if
// there is one, otherwise the frame with the largest overlap.
func FindFrame(img image.Image, c color.Color, want geometry.Rect) (Frame, bool) {
	res := ExtractFrames(img, c, min(want.Dx(), want.Dy())/2)
	best, bestOverlap := -1, 0
	for i, f := range res.Frames {
		if f.Bounds == want {
			return f, true
		}
		o := f.Bounds.Image().Intersect(want.Image())
		if a := o.Dx() * o.Dy(); a > bestOverlap {
			best, bestOverlap = i, a
		}
	}
	if best < 0 {
		return Frame{}, false
	}
	return res.Frames[best], true
}

