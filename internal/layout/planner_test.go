package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

func rp(r geometry.Rect) *geometry.Rect { return &r }

func TestPlan_BodyScenario(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	plan := p.Plan(Input{Width: 1000, Height: 1000, Body: rp(geometry.R(100, 100, 400, 900))})

	require.NotNil(t, plan.Body)
	assert.Nil(t, plan.Face)
	assert.Nil(t, plan.Card)
	assert.Nil(t, plan.FaceConnector)

	b := plan.Body
	assert.True(t, b.LabelsOnRight)
	assert.Equal(t, geometry.R(70, 20, 430, 980), b.Outline)
	assert.Equal(t, geometry.R(455, 60, 715, 95), b.TopLabel)
	assert.Equal(t, geometry.R(455, 110, 715, 145), b.BottomLabel)
	assert.False(t, b.Overflow)

	assert.Equal(t, geometry.Point{X: 430, Y: 520}, b.Connector.From)
	assert.Equal(t, geometry.Point{X: 455, Y: 127}, b.Connector.To)
}

func TestPlan_SideSelection(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	left := p.Plan(Input{Width: 1000, Height: 800, Body: rp(geometry.R(50, 100, 300, 700))})
	right := p.Plan(Input{Width: 1000, Height: 800, Body: rp(geometry.R(700, 100, 950, 700))})

	assert.True(t, left.Body.LabelsOnRight)
	assert.Equal(t, Right, left.Body.Side())
	assert.False(t, right.Body.LabelsOnRight)
	assert.Equal(t, Left, right.Body.Side())

	// Connectors start at the facing edge and end at the facing label edge.
	assert.Equal(t, left.Body.Outline.X2, left.Body.Connector.From.X)
	assert.Equal(t, left.Body.BottomLabel.X1, left.Body.Connector.To.X)
	assert.Equal(t, right.Body.Outline.X1, right.Body.Connector.From.X)
	assert.Equal(t, right.Body.BottomLabel.X2, right.Body.Connector.To.X)
}

func TestPlan_LabelsClearFace(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlanner(cfg)
	face := geometry.R(150, 80, 250, 200)

	plan := p.Plan(Input{
		Width:  1000,
		Height: 1000,
		Face:   rp(face),
		Body:   rp(geometry.R(100, 100, 400, 900)),
	})
	require.NotNil(t, plan.Face)
	require.NotNil(t, plan.Body)

	faceBottom := max(face.Y2, plan.Face.Box.Y2)
	assert.GreaterOrEqual(t, plan.Body.TopLabel.Y1, faceBottom+cfg.FaceClearance)
	assert.GreaterOrEqual(t, plan.Body.Outline.Y1, faceBottom)
	assert.False(t, plan.Body.LabelBlock().Overlaps(plan.Face.Box))
}

func TestPlan_LabelsClearCard(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlanner(cfg)

	// Body on the left puts both the labels and the card on the right.
	plan := p.Plan(Input{
		Width:  1000,
		Height: 1000,
		Body:   rp(geometry.R(250, 100, 450, 900)),
		Card:   true,
	})
	require.NotNil(t, plan.Card)
	require.NotNil(t, plan.Body)

	assert.Equal(t, Right, plan.Card.Side)
	assert.True(t, plan.Body.LabelsOnRight)
	assert.False(t, plan.Body.LabelBlock().Overlaps(plan.Card.Rect))
	assert.Equal(t, plan.Card.Rect.Y2+cfg.CardGap, plan.Body.TopLabel.Y1)
}

func TestPlaceCard(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	tests := []struct {
		name     string
		body     *geometry.Rect
		w, h     int
		wantSide Side
		wantRect geometry.Rect
	}{
		{"no body", nil, 2000, 1500, Left, geometry.R(40, 100, 400, 580)},
		{"body left", rp(geometry.R(0, 0, 500, 1500)), 2000, 1500, Right, geometry.R(1600, 100, 1960, 580)},
		{"body right", rp(geometry.R(1500, 0, 2000, 1500)), 2000, 1500, Left, geometry.R(40, 100, 400, 580)},
		// 0.3*1000/360 scales the card to 300x400
		{"scaled", nil, 1000, 1000, Left, geometry.R(40, 100, 340, 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.PlaceCard(tt.body, tt.w, tt.h)
			assert.Equal(t, tt.wantSide, got.Side)
			assert.Equal(t, tt.wantRect, got.Rect)
		})
	}
}

func TestPlan_CardClearsFace(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	face := geometry.R(600, 150, 700, 250)

	tests := []struct {
		name     string
		h        int
		wantSide Side
		wantCard geometry.Rect
		wantConn Connector
	}{
		// The body centre is just left of the middle, so the card starts on
		// the right, over the face box (585,135)-(715,265).
		{
			name:     "moved below the face",
			h:        1000,
			wantSide: Right,
			wantCard: geometry.R(660, 285, 960, 685),
			wantConn: Connector{From: geometry.Point{X: 687, Y: 265}, To: geometry.Point{X: 687, Y: 285}},
		},
		{
			name:     "no room below, flipped",
			h:        600,
			wantSide: Left,
			wantCard: geometry.R(40, 60, 340, 460),
			wantConn: Connector{From: geometry.Point{X: 585, Y: 200}, To: geometry.Point{X: 340, Y: 260}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Plan(Input{
				Width:  1000,
				Height: tt.h,
				Face:   rp(face),
				Body:   rp(geometry.R(100, 100, 880, tt.h)),
				Card:   true,
			})
			require.NotNil(t, plan.Face)
			require.NotNil(t, plan.Card)
			require.NotNil(t, plan.FaceConnector)

			assert.Equal(t, geometry.R(585, 135, 715, 265), plan.Face.Box)
			assert.False(t, plan.Card.Rect.Overlaps(plan.Face.Extent()), "card %v covers face HUD", plan.Card.Rect)
			assert.True(t, plan.Card.Rect.In(1000, tt.h))
			assert.Equal(t, tt.wantSide, plan.Card.Side)
			assert.Equal(t, tt.wantCard, plan.Card.Rect)
			assert.Equal(t, tt.wantConn, *plan.FaceConnector)

			if plan.Body != nil {
				assert.False(t, plan.Body.LabelBlock().Overlaps(plan.Card.Rect))
			}
		})
	}
}

func TestPlaceCard_TinyImage(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	got := p.PlaceCard(nil, 30, 20)
	assert.True(t, got.Rect.In(30, 20), "card %v outside image", got.Rect)
	assert.False(t, got.Rect.Empty())
}

func TestPlan_BoundaryShift(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlanner(cfg)

	// Labels go left of a body near the right edge, but the body is wide
	// enough that there is no room, so the block shifts back inside.
	plan := p.Plan(Input{Width: 600, Height: 800, Body: rp(geometry.R(250, 100, 590, 700))})
	b := plan.Body
	require.NotNil(t, b)

	assert.False(t, b.LabelsOnRight)
	assert.Equal(t, cfg.EdgeMargin, b.TopLabel.X1)
	assert.Equal(t, cfg.LabelWidth, b.TopLabel.Dx())
	assert.False(t, b.Overflow)
}

func TestPlan_MinimumLabelWidth(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlanner(cfg)

	for _, width := range []int{150, 199, 230, 400} {
		plan := p.Plan(Input{Width: width, Height: 400, Body: rp(geometry.R(10, 10, width/2, 390))})
		b := plan.Body
		require.NotNil(t, b)
		assert.GreaterOrEqual(t, b.TopLabel.Dx(), cfg.MinLabelWidth, "width %d", width)
		assert.GreaterOrEqual(t, b.BottomLabel.Dx(), cfg.MinLabelWidth, "width %d", width)
		assert.GreaterOrEqual(t, b.TopLabel.X1, 0)
		assert.Equal(t, b.TopLabel.X2 > width, b.Overflow, "width %d", width)
	}
}

func TestPlan_LabelsStayInsideVertically(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	plan := p.Plan(Input{Width: 1000, Height: 300, Body: rp(geometry.R(100, 220, 300, 300))})
	b := plan.Body
	require.NotNil(t, b)
	assert.LessOrEqual(t, b.BottomLabel.Y2, 300)
	assert.False(t, b.Overflow)
}

func TestPlanFace(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	f := p.PlanFace(geometry.R(400, 300, 500, 450), 1000, 1000)

	assert.Equal(t, f.Box.Dx(), f.Box.Dy())
	assert.True(t, f.Box.In(1000, 1000))
	assert.GreaterOrEqual(t, f.Style.Thickness, geometry.MinThickness)
	assert.GreaterOrEqual(t, f.TickLen, f.Style.TickLen)
	assert.LessOrEqual(t, f.TickLen, f.Box.Dx()/2)

	for _, bar := range f.Bars {
		assert.Less(t, bar.Y2, f.Box.Y1+1, "bar %v should sit above the box", bar)
		assert.Equal(t, f.Style.Thickness, bar.Dy())
	}
	assert.Greater(t, f.Bars[0].Dx(), f.Bars[1].Dx())
}

func TestPlanFace_AtTopEdge(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	f := p.PlanFace(geometry.R(400, 0, 500, 100), 1000, 1000)
	for _, bar := range f.Bars {
		assert.True(t, bar.In(1000, 1000), "bar %v outside image", bar)
		assert.GreaterOrEqual(t, bar.Y1, f.Box.Y1)
	}
}

func TestFaceConnector(t *testing.T) {
	box := geometry.R(100, 100, 200, 200)

	toRight := FaceConnector(box, geometry.R(600, 50, 900, 450))
	assert.Equal(t, geometry.Point{X: 200, Y: 150}, toRight.From)
	assert.Equal(t, geometry.Point{X: 600, Y: 250}, toRight.To)

	toLeft := FaceConnector(geometry.R(700, 100, 800, 200), geometry.R(40, 50, 340, 450))
	assert.Equal(t, geometry.Point{X: 700, Y: 150}, toLeft.From)
	assert.Equal(t, geometry.Point{X: 340, Y: 250}, toLeft.To)

	below := FaceConnector(box, geometry.R(150, 260, 450, 660))
	assert.Equal(t, geometry.Point{X: 175, Y: 200}, below.From)
	assert.Equal(t, geometry.Point{X: 175, Y: 260}, below.To)

	above := FaceConnector(geometry.R(100, 500, 200, 600), geometry.R(0, 40, 300, 440))
	assert.Equal(t, geometry.Point{X: 150, Y: 500}, above.From)
	assert.Equal(t, geometry.Point{X: 150, Y: 440}, above.To)

	// no endpoint lies strictly inside the box
	for _, c := range []Connector{toRight, below} {
		for _, pt := range []geometry.Point{c.From, c.To} {
			inside := pt.X > box.X1 && pt.X < box.X2-1 && pt.Y > box.Y1 && pt.Y < box.Y2-1
			assert.False(t, inside, "endpoint %v inside %v", pt, box)
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	in := Input{
		Width:  1280,
		Height: 960,
		Face:   rp(geometry.R(600, 100, 700, 230)),
		Body:   rp(geometry.R(500, 80, 800, 940)),
		Card:   true,
	}

	a, err := json.Marshal(p.Plan(in))
	require.NoError(t, err)
	b, err := json.Marshal(p.Plan(in))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestPlan_Empty(t *testing.T) {
	plan := NewPlanner(DefaultConfig()).Plan(Input{Width: 640, Height: 480})
	assert.Nil(t, plan.Face)
	assert.Nil(t, plan.Body)
	assert.Nil(t, plan.Card)
}
