// Package layout resolves where every HUD annotation goes.
//
// A Planner turns the detected face and body rectangles of one image into an
// immutable Plan: the outlines to draw, label and card rectangles, connector
// anchors and the chosen sides. The result is a deterministic function of its
// Input; nothing is drawn here.
//
// # Resolution order
//
// The face plan is computed first, then the identity card (its side depends on
// the body position), then the body labels, which must clear both the face box
// and the card. Label overflow is never an error: when the label block cannot
// fit its minimum width the block is allowed to cross the image edge and
// BodyPlan.Overflow is set.
package layout

import (
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// Side is the horizontal side an annotation is placed on.
type Side int

const (
	// Left of the anchor or image.
	Left Side = iota
	// Right of the anchor or image.
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Right {
		return Left
	}
	return Right
}

// MarshalJSON encodes the side as its name.
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Connector is a line from an anchor on an annotated rectangle to the near
// edge of its target.
type Connector struct {
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

// Input is everything the planner needs for one image.
type Input struct {
	Width  int
	Height int
	// Face and Body are raw detections; nil means nothing was detected.
	Face *geometry.Rect
	Body *geometry.Rect
	// Card requests an identity card placement.
	Card bool
}

// FacePlan is the resolved face HUD.
type FacePlan struct {
	Box     geometry.Rect  `json:"box"`
	Style   geometry.Style `json:"style"`
	TickLen int            `json:"tick_len"`
	// Bars are the header double-bars drawn just above the box (or just
	// inside it when the box touches the top edge).
	Bars [2]geometry.Rect `json:"bars"`
}

// Extent is the area the face HUD covers: the box and its header bars.
func (f *FacePlan) Extent() geometry.Rect {
	e := f.Box
	for _, b := range f.Bars {
		e.X1, e.Y1 = min(e.X1, b.X1), min(e.Y1, b.Y1)
		e.X2, e.Y2 = max(e.X2, b.X2), max(e.Y2, b.Y2)
	}
	return e
}

// CardPlan is the resolved identity card placement.
type CardPlan struct {
	Rect geometry.Rect `json:"rect"`
	Side Side          `json:"side"`
}

// BodyPlan is the resolved body HUD.
type BodyPlan struct {
	Outline       geometry.Rect  `json:"outline"`
	Style         geometry.Style `json:"style"`
	LabelsOnRight bool           `json:"labels_on_right"`
	TopLabel      geometry.Rect  `json:"top_label"`
	BottomLabel   geometry.Rect  `json:"bottom_label"`
	Connector     Connector      `json:"connector"`
	// Overflow is set when the label block was widened to its minimum width
	// past the image edge.
	Overflow bool `json:"overflow"`
}

// Side returns the side the labels are on.
func (b *BodyPlan) Side() Side {
	if b.LabelsOnRight {
		return Right
	}
	return Left
}

// LabelBlock returns the rectangle spanning both labels.
func (b *BodyPlan) LabelBlock() geometry.Rect {
	return geometry.R(b.TopLabel.X1, b.TopLabel.Y1, b.TopLabel.X2, b.BottomLabel.Y2)
}

// Plan is the resolved layout of one composition. Absent annotations are nil.
type Plan struct {
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Face          *FacePlan  `json:"face,omitempty"`
	Card          *CardPlan  `json:"card,omitempty"`
	Body          *BodyPlan  `json:"body,omitempty"`
	FaceConnector *Connector `json:"face_connector,omitempty"`
}
