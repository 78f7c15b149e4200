// Package describe turns a cropped body image into two short clothing
// descriptions, one for the upper body and one for the lower body.
//
// OpenAI talks to an OpenAI-compatible chat completions endpoint with vision
// input. Fallback wraps any Describer so that failures of any kind produce a
// fixed default label pair instead of an error.
package describe

import (
	"context"
	"image"

	"github.com/pkg/errors"
)

var (
	// ErrNoAPIKey is returned by NewOpenAI when no API key is configured.
	ErrNoAPIKey = errors.New("describe: no API key configured")

	// ErrMalformedResponse is returned when the model reply is not a JSON
	// object with non-empty "top" and "bottom" strings.
	ErrMalformedResponse = errors.New("describe: malformed response")
)

// Describer describes the clothing in a body crop.
type Describer interface {
	Describe(ctx context.Context, img image.Image) (top, bottom string, err error)
}

// Default label texts used when no description is available.
const (
	DefaultTop    = "AI GENERATED TOP"
	DefaultBottom = "AI GENERATED BOTTOM"
)

// LabelPair is the text of the two body labels. It is never empty.
type LabelPair struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
	// Fallback marks the default pair.
	Fallback bool `json:"fallback"`
}

// DefaultLabels returns the placeholder pair.
func DefaultLabels() LabelPair {
	return LabelPair{Top: DefaultTop, Bottom: DefaultBottom, Fallback: true}
}

// Display returns the label texts as drawn: "TOP: ..." and "BOTTOM: ..." for
// real descriptions, the placeholder texts unchanged.
func (p LabelPair) Display() (string, string) {
	if p.Fallback {
		return p.Top, p.Bottom
	}
	return "TOP: " + p.Top, "BOTTOM: " + p.Bottom
}
