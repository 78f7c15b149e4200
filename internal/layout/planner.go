package layout

import (
	"math"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// Planner resolves layout plans. It holds only constants and is safe for
// concurrent use.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner with the given constants.
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Config returns the planner constants.
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan resolves the full layout for in.
//
// Parameters:
//   - in: image size, the optional raw face and body rectangles and whether
//     an identity card is wanted
//
// Returns:
//   - *Plan: the face HUD, card, body labels and connectors, all in image
//     coordinates with the origin at the top-left corner. Absent regions
//     are nil. The result is a pure function of in.
//
// Order matters: the card is placed from the body position and moved off the
// face HUD if it lands on it, and the body labels are then pushed below both
// the face box and the card.
func (p *Planner) Plan(in Input) *Plan {
	w, h := max(in.Width, 1), max(in.Height, 1)
	plan := &Plan{Width: w, Height: h}

	var rawFace *geometry.Rect
	if in.Face != nil {
		f := geometry.Normalize(*in.Face, w, h)
		rawFace = &f
		plan.Face = p.PlanFace(f, w, h)
	}

	var body *geometry.Rect
	if in.Body != nil {
		b := geometry.PaddedBBox(*in.Body, w, h, p.cfg.BodyPad)
		body = &b
	}

	if in.Card {
		plan.Card = p.PlaceCard(body, w, h)
		if plan.Face != nil {
			p.clearFace(plan.Card, plan.Face.Extent(), w, h)
		}
	}

	if body != nil {
		plan.Body = p.planBody(*body, rawFace, plan.Face, plan.Card, w, h)
	}

	if plan.Face != nil && plan.Card != nil {
		c := FaceConnector(plan.Face.Box, plan.Card.Rect)
		plan.FaceConnector = &c
	}
	return plan
}

// SelectSide returns the side labels go on for a region: away from the half
// of the image the region's center lies in.
func SelectSide(r geometry.Rect, width int) Side {
	cx, _ := r.Center()
	if cx < float64(width)/2 {
		return Right
	}
	return Left
}

// PlanFace squares and pads the face rectangle and sizes its decorations
// from the resulting box.
func (p *Planner) PlanFace(face geometry.Rect, width, height int) *FacePlan {
	box := geometry.SquareBBox(face, width, height, p.cfg.FacePad)
	style := geometry.StyleForRect(box, width, height)
	side := box.Dx()

	tick := int(math.Round(float64(side) * 0.2))
	tick = max(tick, style.TickLen)
	tick = min(tick, side/2)
	tick = max(tick, 1)

	return &FacePlan{
		Box:     box,
		Style:   style,
		TickLen: tick,
		Bars:    headerBars(box, style.Thickness),
	}
}

// headerBars places two bars of half and three tenths of the box width above
// the box, stacked with a gap equal to the thickness. Boxes touching the top
// of the image get the bars just inside the top edge instead.
func headerBars(box geometry.Rect, t int) [2]geometry.Rect {
	side := box.Dx()
	w1 := max(int(math.Round(float64(side)*0.5)), 1)
	w2 := max(int(math.Round(float64(side)*0.3)), 1)

	if box.Y1 >= 4*t {
		return [2]geometry.Rect{
			geometry.R(box.X1, box.Y1-2*t, box.X1+w1, box.Y1-t),
			geometry.R(box.X1, box.Y1-4*t, box.X1+w2, box.Y1-3*t),
		}
	}
	y := box.Y1 + 3*t
	return [2]geometry.Rect{
		geometry.R(box.X1+3*t, y, box.X1+3*t+w1/2, y+t),
		geometry.R(box.X1+3*t, y+2*t, box.X1+3*t+w2/2, y+3*t),
	}
}

// CardSize returns the identity card size for a width x height image: the
// 3:4 base size scaled down so the card takes at most 30% of the width and
// 70% of the height.
func (p *Planner) CardSize(width, height int) (int, int) {
	cw, ch := float64(p.cfg.CardWidth), float64(p.cfg.CardHeight)
	scale := math.Min(1, math.Min(0.3*float64(width)/cw, 0.7*float64(height)/ch))
	return max(int(math.Round(cw*scale)), 1), max(int(math.Round(ch*scale)), 1)
}

// PlaceCard places the identity card on the side of the image opposite the
// body center, or on the left when there is no body.
func (p *Planner) PlaceCard(body *geometry.Rect, width, height int) *CardPlan {
	cw, ch := p.CardSize(width, height)
	mx, my := cardMargins(width, height)

	side := Left
	if body != nil {
		cx, _ := body.Center()
		if cx < float64(width)/2 {
			side = Right
		}
	}

	x := mx
	if side == Right {
		x = width - mx - cw
	}
	r := geometry.R(x, my, x+cw, my+ch)
	if !r.In(width, height) {
		r = geometry.Normalize(r.Translate(-max(0, r.X2-width), -max(0, r.Y2-height)), width, height)
	}
	return &CardPlan{Rect: r, Side: side}
}

func cardMargins(width, height int) (int, int) {
	return clamp(int(math.Round(0.04*float64(width))), 4, 40),
		clamp(int(math.Round(0.10*float64(height))), 4, 100)
}

// clearFace moves a card that covers the face HUD. Candidates are tried in
// order: below the face on the same side, the other side at the top margin,
// then above the face. A card that fits nowhere stays where it was.
func (p *Planner) clearFace(card *CardPlan, hud geometry.Rect, width, height int) {
	if !card.Rect.Overlaps(hud) {
		return
	}
	r := card.Rect
	ch := r.Dy()
	gap := p.cfg.CardGap

	below := geometry.R(r.X1, hud.Y2+gap, r.X2, hud.Y2+gap+ch)
	if below.In(width, height) {
		card.Rect = below
		return
	}

	mx, _ := cardMargins(width, height)
	other := card.Side.Opposite()
	x := mx
	if other == Right {
		x = width - mx - r.Dx()
	}
	flipped := geometry.R(x, r.Y1, x+r.Dx(), r.Y2)
	if flipped.In(width, height) && !flipped.Overlaps(hud) {
		card.Rect, card.Side = flipped, other
		return
	}

	above := geometry.R(r.X1, hud.Y1-gap-ch, r.X2, hud.Y1-gap)
	if above.In(width, height) {
		card.Rect = above
	}
}

// planBody resolves the body outline, labels and connector. outline is the
// already padded body rectangle.
func (p *Planner) planBody(outline geometry.Rect, rawFace *geometry.Rect, face *FacePlan, card *CardPlan, width, height int) *BodyPlan {
	c := p.cfg
	origin := outline.Y1
	floor := 0

	if face != nil {
		faceBottom := face.Box.Y2
		if rawFace != nil {
			faceBottom = max(faceBottom, rawFace.Y2)
		}
		floor = faceBottom + c.FaceClearance
		if origin < faceBottom {
			origin = floor
			if origin < outline.Y2 {
				outline.Y1 = origin
			}
		}
	}

	onRight := SelectSide(outline, width) == Right
	x1, x2, overflow := p.labelSpan(outline, onRight, width)

	blockH := 2*c.LabelHeight + c.StackGap
	top := origin + c.TopOffset

	collides := func(y int) bool {
		if card == nil {
			return false
		}
		block := geometry.R(x1, y, x2, y+blockH)
		return block.Overlaps(card.Rect)
	}

	if collides(top) {
		top = card.Rect.Y2 + c.CardGap
		floor = max(floor, top)
	}

	if top+blockH > height {
		slid := max(height-blockH, floor)
		if !collides(slid) {
			top = slid
		}
		if top+blockH > height {
			overflow = true
		}
	}

	topLabel := geometry.R(x1, top, x2, top+c.LabelHeight)
	bottomY := top + c.LabelHeight + c.StackGap
	bottomLabel := geometry.R(x1, bottomY, x2, bottomY+c.LabelHeight)

	return &BodyPlan{
		Outline:       outline,
		Style:         geometry.StyleForRect(outline, width, height),
		LabelsOnRight: onRight,
		TopLabel:      topLabel,
		BottomLabel:   bottomLabel,
		Connector:     p.bodyConnector(outline, bottomLabel, onRight),
		Overflow:      overflow,
	}
}

// labelSpan returns the horizontal extent of the label block. The block is
// first shifted back inside the image with the edge margin, then clamped;
// if that leaves it narrower than the minimum width it is widened to the
// right and overflow is reported.
func (p *Planner) labelSpan(outline geometry.Rect, onRight bool, width int) (int, int, bool) {
	c := p.cfg
	lw := c.LabelWidth

	var x1 int
	if onRight {
		x1 = outline.X2 + c.LabelGap
	} else {
		x1 = outline.X1 - c.LabelGap - lw
	}
	x2 := x1 + lw

	if x1 < 0 {
		shift := -x1 + c.EdgeMargin
		x1 += shift
		x2 += shift
	}
	if x2 > width {
		shift := x2 - width + c.EdgeMargin
		x1 -= shift
		x2 -= shift
	}

	x1 = max(x1, 0)
	x2 = min(x2, width)
	if x2-x1 < c.MinLabelWidth {
		x2 = x1 + c.MinLabelWidth
	}
	return x1, x2, x2 > width
}

// bodyConnector runs from the outline edge facing the labels, slightly below
// the outline's vertical middle, to the facing edge of the bottom label.
func (p *Planner) bodyConnector(outline, bottom geometry.Rect, onRight bool) Connector {
	y := (outline.Y1+outline.Y2)/2 + p.cfg.ConnectorOffset
	y = clamp(y, outline.Y1, outline.Y2-1)

	to := geometry.Point{X: bottom.X2, Y: bottom.Y1 + bottom.Dy()/2}
	from := geometry.Point{X: outline.X1, Y: y}
	if onRight {
		from.X = outline.X2
		to.X = bottom.X1
	}
	return Connector{From: from, To: to}
}

// FaceConnector links the face box to the card between the edges that face
// each other. A card beside the box is joined side edge to side edge at the
// vertical centres; a card above or below it is joined by a vertical line
// through the middle of their shared columns. The line never enters the box.
func FaceConnector(box, card geometry.Rect) Connector {
	_, by := box.Center()
	_, cy := card.Center()

	switch {
	case card.X1 >= box.X2:
		return Connector{
			From: geometry.Point{X: box.X2, Y: int(by)},
			To:   geometry.Point{X: card.X1, Y: int(cy)},
		}
	case card.X2 <= box.X1:
		return Connector{
			From: geometry.Point{X: box.X1, Y: int(by)},
			To:   geometry.Point{X: card.X2, Y: int(cy)},
		}
	}

	x := (max(box.X1, card.X1) + min(box.X2, card.X2)) / 2
	if card.Y1 >= box.Y2 {
		return Connector{
			From: geometry.Point{X: x, Y: box.Y2},
			To:   geometry.Point{X: x, Y: card.Y1},
		}
	}
	return Connector{
		From: geometry.Point{X: x, Y: box.Y1},
		To:   geometry.Point{X: x, Y: card.Y2},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
