package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colours of the HUD.
type Palette struct {
	HUD   color.NRGBA // outlines, ticks, connectors, label backgrounds, card
	Text  color.NRGBA // label text
	Frame color.NRGBA // border frame and captions
	Ink   color.NRGBA // card text and face outline
}

// DefaultPalette is green HUD elements with black text and a white frame.
func DefaultPalette() Palette {
	return Palette{
		HUD:   color.NRGBA{0, 255, 0, 255},
		Text:  color.NRGBA{0, 0, 0, 255},
		Frame: color.NRGBA{255, 255, 255, 255},
		Ink:   color.NRGBA{0, 0, 0, 255},
	}
}

// ParsePalette builds a palette from hex colours such as "#00ff00".
// Empty values keep the default. A text colour of "auto" picks black or white,
// whichever contrasts more with the HUD colour.
func ParsePalette(hud, text, frame string) (Palette, error) {
	p := DefaultPalette()

	if hud != "" {
		c, err := parseHex(hud)
		if err != nil {
			return p, err
		}
		p.HUD = c
		p.Ink = ContrastText(c)
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
	case "auto":
		p.Text = ContrastText(p.HUD)
	default:
		c, err := parseHex(text)
		if err != nil {
			return p, err
		}
		p.Text = c
	}

	if frame != "" {
		c, err := parseHex(frame)
		if err != nil {
			return p, err
		}
		p.Frame = c
	}
	return p, nil
}

// ContrastText returns black for light backgrounds and white for dark ones,
// judged by CIE L*.
func ContrastText(bg color.Color) color.NRGBA {
	c, _ := colorful.MakeColor(bg)
	l, _, _ := c.Lab()
	if l > 0.5 {
		return color.NRGBA{0, 0, 0, 255}
	}
	return color.NRGBA{255, 255, 255, 255}
}

func parseHex(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return toNRGBA(c), nil
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
