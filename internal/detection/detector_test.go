package detection

import (
	"image"
	"testing"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

func TestLargest(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)

	tests := []struct {
		name   string
		cands  []image.Rectangle
		want   geometry.Rect
		wantOK bool
	}{
		{"none", nil, geometry.Rect{}, false},
		{"only empty", []image.Rectangle{image.Rect(5, 5, 5, 20)}, geometry.Rect{}, false},
		{"single", []image.Rectangle{image.Rect(10, 10, 50, 60)}, geometry.R(10, 10, 50, 60), true},
		{
			"largest wins",
			[]image.Rectangle{image.Rect(0, 0, 10, 10), image.Rect(100, 100, 200, 300), image.Rect(0, 0, 50, 50)},
			geometry.R(100, 100, 200, 300), true,
		},
		{
			"tie keeps first",
			[]image.Rectangle{image.Rect(0, 0, 20, 10), image.Rect(300, 300, 310, 320)},
			geometry.R(0, 0, 20, 10), true,
		},
		{"clamped", []image.Rectangle{image.Rect(600, 400, 700, 500)}, geometry.R(600, 400, 640, 480), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Largest(tt.cands, bounds)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLargest_OffsetBounds(t *testing.T) {
	got, ok := Largest([]image.Rectangle{image.Rect(110, 60, 130, 90)}, image.Rect(100, 50, 200, 150))
	if !ok {
		t.Fatal("expected a candidate")
	}
	if want := geometry.R(10, 10, 30, 40); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDetect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	face := geometry.R(10, 10, 30, 30)
	res := Detect(Fixed{Face: &face}, img)
	if res.Face == nil || *res.Face != face {
		t.Errorf("face: got %v, want %v", res.Face, face)
	}
	if res.Body != nil {
		t.Errorf("body: got %v, want none", res.Body)
	}

	body := geometry.R(50, 20, 150, 120)
	res = Detect(Fixed{Body: &body}, img)
	if res.Body == nil || *res.Body != geometry.R(50, 20, 100, 100) {
		t.Errorf("body should be clamped to the image, got %v", res.Body)
	}

	if res := Detect(nil, img); res.Face != nil || res.Body != nil {
		t.Errorf("nil detector: got %+v", res)
	}
}
