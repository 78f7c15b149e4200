// Package stylize applies the photographic look the HUD is drawn over: a cool
// green-cyan tint, a radial vignette, film grain, extra contrast, a slight
// blur and an unsharp mask.
package stylize

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/noise"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// Options controls each step. A zero strength skips its step.
type Options struct {
	TintColor string  `yaml:"tint_color"`
	Tint      float64 `yaml:"tint"`
	// Vignette scales the radial mask; VignetteDarken is how much the masked
	// area is darkened.
	Vignette       float64 `yaml:"vignette"`
	VignetteDarken float64 `yaml:"vignette_darken"`
	Noise          float64 `yaml:"noise"`
	// Contrast is a multiplier; 1 leaves contrast unchanged.
	Contrast      float64 `yaml:"contrast"`
	Blur          float64 `yaml:"blur"`
	SharpenRadius float64 `yaml:"sharpen_radius"`
	SharpenAmount float64 `yaml:"sharpen_amount"`
}

// DefaultOptions returns the standard look.
func DefaultOptions() Options {
	return Options{
		TintColor:      "#146e78",
		Tint:           0.22,
		Vignette:       0.85,
		VignetteDarken: 0.45,
		Noise:          0.06,
		Contrast:       1.18,
		Blur:           0.6,
		SharpenRadius:  1.2,
		SharpenAmount:  1.4,
	}
}

// Stylizer applies Options to images.
type Stylizer struct {
	opts Options
	tint colorful.Color
}

// New creates a stylizer. An unparsable tint colour falls back to the default.
func New(opts Options) *Stylizer {
	c, err := colorful.Hex(opts.TintColor)
	if err != nil {
		c, _ = colorful.Hex(DefaultOptions().TintColor)
	}
	return &Stylizer{opts: opts, tint: c}
}

// Stylize returns a stylized copy of img with its origin at (0, 0).
func (s *Stylizer) Stylize(img image.Image) image.Image {
	o := s.opts
	out := clone.AsRGBA(img)
	if out.Bounds().Empty() {
		return out
	}
	if out.Bounds().Min != (image.Point{}) {
		out = rebase(out)
	}

	if o.Tint > 0 {
		out = blend.Opacity(out, solid(out.Bounds(), s.tint), o.Tint)
	}
	if o.Vignette > 0 && o.VignetteDarken > 0 {
		vignette(out, o.Vignette, o.VignetteDarken)
	}
	if o.Noise > 0 {
		grain := noise.Generate(out.Bounds().Dx(), out.Bounds().Dy(), &noise.Options{
			Monochrome: true,
			NoiseFn:    noise.Uniform,
		})
		out = blend.Opacity(out, grain, o.Noise)
	}
	if o.Contrast > 0 && o.Contrast != 1 {
		out = adjust.Contrast(out, o.Contrast-1)
	}
	if o.Blur > 0 {
		out = blur.Gaussian(out, o.Blur)
	}
	if o.SharpenRadius > 0 && o.SharpenAmount > 0 {
		out = effect.UnsharpMask(out, o.SharpenRadius, o.SharpenAmount)
	}
	return out
}

// vignette darkens img in place by darken * (1 - mask), where mask grows
// from 0 at the centre to strength at the corners as t^1.5.
func vignette(img *image.RGBA, strength, darken float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	maxD := math.Hypot(cx, cy)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				t := math.Hypot(float64(x)-cx, float64(y)-cy) / maxD
				mask := math.Floor(255*math.Pow(t, 1.5)*strength) / 255
				k := 1 - darken*(1-mask)
				i := x * 4
				row[i] = uint8(float64(row[i]) * k)
				row[i+1] = uint8(float64(row[i+1]) * k)
				row[i+2] = uint8(float64(row[i+2]) * k)
			}
		}
	})
}

func solid(r image.Rectangle, c colorful.Color) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// rebase copies img into a new image whose origin is (0, 0).
func rebase(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
