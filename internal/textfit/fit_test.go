package textfit

import (
	"testing"
)

// fixedMeasurer reports len(text)*size/2 pixels and counts calls.
type fixedMeasurer struct {
	calls int
}

func (m *fixedMeasurer) Width(text string, size int) (int, error) {
	m.calls++
	return len(text) * size / 2, nil
}

func TestResolver_Fit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		wantSize int
		wantFits bool
	}{
		// 10 chars: width = 5*size, +20 padding
		{"fits at start", "ABCDEFGHIJ", 200, 22, true},
		{"shrinks", "ABCDEFGHIJ", 100, 16, true},
		{"exactly at min", "ABCDEFGHIJ", 70, 10, true},
		{"overflows", "ABCDEFGHIJ", 69, 10, false},
		{"zero width", "ABCDEFGHIJ", 0, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&fixedMeasurer{}, DefaultPadding)
			got := r.FitDefault(tt.text, tt.maxWidth)
			if got.Size != tt.wantSize || got.Fits != tt.wantFits {
				t.Errorf("Fit(%q, %d): got size=%d fits=%v, want size=%d fits=%v",
					tt.text, tt.maxWidth, got.Size, got.Fits, tt.wantSize, tt.wantFits)
			}
		})
	}
}

func TestResolver_Fit_EmptyTextSkipsMeasurement(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		m := &fixedMeasurer{}
		got := NewResolver(m, DefaultPadding).Fit(text, 0, 22, 10)
		if !got.Fits || got.Size != 22 {
			t.Errorf("Fit(%q): got %+v, want size 22 fitting", text, got)
		}
		if m.calls != 0 {
			t.Errorf("Fit(%q): measured %d times, want 0", text, m.calls)
		}
	}
}

func TestResolver_Fit_BoundedMeasurements(t *testing.T) {
	m := &fixedMeasurer{}
	NewResolver(m, DefaultPadding).Fit("A VERY LONG LABEL THAT NEVER FITS", 10, 22, 10)
	if m.calls != 13 {
		t.Errorf("measurements: got %d, want 13", m.calls)
	}
}

func TestResolver_Fit_SwappedSizes(t *testing.T) {
	got := NewResolver(&fixedMeasurer{}, 0).Fit("AB", 1000, 5, 12)
	if got.Size != 12 || !got.Fits {
		t.Errorf("got %+v, want size 12 fitting", got)
	}
}

func TestResolver_Fit_Idempotent(t *testing.T) {
	cache := NewFaceCache()
	r := NewResolver(FamilyMeasurer{Cache: cache, Family: Regular}, DefaultPadding)

	for _, width := range []int{40, 120, 260} {
		a := r.FitDefault("TOP: BLACK LEATHER JACKET", width)
		b := r.FitDefault("TOP: BLACK LEATHER JACKET", width)
		if a != b {
			t.Errorf("width %d: first %+v, second %+v", width, a, b)
		}
	}
}

func TestResolver_Fit_RealFont(t *testing.T) {
	cache := NewFaceCache()
	r := NewResolver(FamilyMeasurer{Cache: cache, Family: Regular}, DefaultPadding)

	wide := r.FitDefault("BOTTOM: JEANS", 1000)
	if !wide.Fits || wide.Size != DefaultStartSize {
		t.Errorf("wide label: got %+v, want start size", wide)
	}

	narrow := r.FitDefault("BOTTOM: DISTRESSED WIDE LEG DENIM TROUSERS", 260)
	if narrow.Fits && narrow.Width+DefaultPadding > 260 {
		t.Errorf("fit reported but width %d + padding exceeds 260", narrow.Width)
	}
	if narrow.Size > wide.Size {
		t.Errorf("narrow size %d larger than wide size %d", narrow.Size, wide.Size)
	}

	tiny := r.FitDefault("BOTTOM: DISTRESSED WIDE LEG DENIM TROUSERS", 30)
	if tiny.Fits || tiny.Size != DefaultMinSize {
		t.Errorf("tiny label: got %+v, want min size overflow", tiny)
	}
}

func TestFaceCache(t *testing.T) {
	cache := NewFaceCache()

	for _, fam := range []Family{Regular, Bold, Mono} {
		a, err := cache.Face(fam, 16)
		if err != nil {
			t.Fatalf("Face(%s): %v", fam, err)
		}
		b, _ := cache.Face(fam, 16)
		if a != b {
			t.Errorf("Face(%s) not cached", fam)
		}
	}

	if _, err := cache.Face("cursive", 12); err == nil {
		t.Error("expected error for unknown family")
	}

	small, _, _ := cache.Measure(Regular, 10, "HELLO")
	large, _, _ := cache.Measure(Regular, 30, "HELLO")
	if small <= 0 || large <= small {
		t.Errorf("width should grow with size: 10pt=%d 30pt=%d", small, large)
	}
}
