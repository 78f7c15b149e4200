package textfit

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Family names one of the embedded Go fonts.
type Family string

const (
	// Regular is the proportional face used for labels.
	Regular Family = "regular"
	// Bold is used for card titles.
	Bold Family = "bold"
	// Mono is used for the border frame captions.
	Mono Family = "mono"
)

var fontData = map[Family][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Mono:    gomono.TTF,
}

type faceKey struct {
	family Family
	size   int
}

// FaceCache parses the embedded fonts once and keeps one font.Face per
// family and point size.
//
// The renderer and the Resolver share a cache so text is drawn with exactly
// the face it was measured with. FaceCache is safe for concurrent use.
type FaceCache struct {
	mu    sync.Mutex
	fonts map[Family]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFaceCache creates an empty cache.
func NewFaceCache() *FaceCache {
	return &FaceCache{
		fonts: make(map[Family]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Face returns the face for family at size points (72 DPI, so points equal pixels).
// Sizes below 1 are raised to 1.
func (c *FaceCache) Face(family Family, size int) (font.Face, error) {
	size = max(size, 1)
	key := faceKey{family: family, size: size}

	c.mu.Lock()
	defer c.mu.Unlock()

	if face, ok := c.faces[key]; ok {
		return face, nil
	}

	fnt, ok := c.fonts[family]
	if !ok {
		data, known := fontData[family]
		if !known {
			return nil, fmt.Errorf("unknown font family: %s", family)
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s font: %w", family, err)
		}
		fnt = parsed
		c.fonts[family] = fnt
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face at %d: %w", family, size, err)
	}
	c.faces[key] = face
	return face, nil
}

// MustFace is Face for the embedded families, which always parse.
func (c *FaceCache) MustFace(family Family, size int) font.Face {
	face, err := c.Face(family, size)
	if err != nil {
		panic(err)
	}
	return face
}

// Measure returns the advance width and line height of text in pixels.
func (c *FaceCache) Measure(family Family, size int, text string) (int, int, error) {
	face, err := c.Face(family, size)
	if err != nil {
		return 0, 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	width := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	return width, (m.Ascent + m.Descent).Ceil(), nil
}
