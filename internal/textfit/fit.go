// Package textfit picks font sizes so label text fits a target width.
package textfit

import (
	"strings"
)

const (
	// DefaultStartSize is the first size tried.
	DefaultStartSize = 22
	// DefaultMinSize is the smallest size tried and the fallback size.
	DefaultMinSize = 10
	// DefaultPadding is the horizontal padding counted against the width.
	DefaultPadding = 20
)

// Measurer reports the rendered width of text at a point size.
type Measurer interface {
	Width(text string, size int) (int, error)
}

// Fit is the outcome of a fit search.
type Fit struct {
	// Size is the chosen font size in points.
	Size int `json:"size"`
	// Fits is false when even Size (the minimum) overflows. Callers still render
	// at Size; overflowing is preferred to dropping a label.
	Fits bool `json:"fits"`
	// Width is the measured text width at Size, without padding.
	Width int `json:"width"`
}

// Resolver finds the largest font size at which text fits a width.
type Resolver struct {
	measurer Measurer
	padding  int
}

// NewResolver creates a resolver measuring with m and counting padding pixels
// of horizontal padding against the available width.
func NewResolver(m Measurer, padding int) *Resolver {
	if padding < 0 {
		padding = 0
	}
	return &Resolver{measurer: m, padding: padding}
}

// Fit searches sizes from startSize down to minSize and returns the first
// whose measured width plus padding is <= maxWidth.
//
// If no size fits, the result is minSize with Fits false. Empty or
// whitespace-only text fits trivially at startSize and is never measured.
// A measurement error is treated like an overflow at that size. The search
// makes at most startSize-minSize+1 measurements and is a pure function of
// its inputs.
func (r *Resolver) Fit(text string, maxWidth, startSize, minSize int) Fit {
	if minSize < 1 {
		minSize = 1
	}
	if startSize < minSize {
		startSize = minSize
	}

	if strings.TrimSpace(text) == "" {
		return Fit{Size: startSize, Fits: true}
	}

	lastWidth := 0
	for size := startSize; size >= minSize; size-- {
		w, err := r.measurer.Width(text, size)
		if err != nil {
			continue
		}
		lastWidth = w
		if w+r.padding <= maxWidth {
			return Fit{Size: size, Fits: true, Width: w}
		}
	}

	return Fit{Size: minSize, Fits: false, Width: lastWidth}
}

// FitDefault is Fit with the default start and minimum sizes.
func (r *Resolver) FitDefault(text string, maxWidth int) Fit {
	return r.Fit(text, maxWidth, DefaultStartSize, DefaultMinSize)
}

// FamilyMeasurer measures with one family of a FaceCache.
type FamilyMeasurer struct {
	Cache  *FaceCache
	Family Family
}

// Width implements Measurer.
func (m FamilyMeasurer) Width(text string, size int) (int, error) {
	w, _, err := m.Cache.Measure(m.Family, size, text)
	return w, err
}
