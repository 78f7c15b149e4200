package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
	imageio "github.com/khkhachatur/Ai-CyberStyle-filter/internal/imaging"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
)

// DefaultMatchThreshold is the similarity at or above which a reading counts
// as a match for the drawn text.
const DefaultMatchThreshold = 0.8

// Config configures a Reader.
type Config struct {
	// Language is a Tesseract language code such as "eng".
	Language string `yaml:"language"`
	// TessdataPrefix overrides the language data directory when set.
	TessdataPrefix string `yaml:"tessdata_prefix"`
	// Scale is the upscale factor applied to each label crop before OCR.
	// Label text is 10-22px tall, which Tesseract reads poorly at 1x.
	Scale int `yaml:"scale"`
	// Threshold is the minimum similarity for Reading.Match.
	Threshold float64 `yaml:"threshold"`
}

// DefaultConfig reads English at 3x.
func DefaultConfig() Config {
	return Config{Language: "eng", Scale: 3, Threshold: DefaultMatchThreshold}
}

// Label is one text rectangle to read back.
type Label struct {
	Name string        `json:"name"`
	Rect geometry.Rect `json:"rect"`
	// Want is the text that was drawn. Empty skips the comparison.
	Want string `json:"want,omitempty"`
}

// Reading is the OCR result for one Label.
type Reading struct {
	Name       string        `json:"name"`
	Rect       geometry.Rect `json:"rect"`
	Text       string        `json:"text"`
	Want       string        `json:"want,omitempty"`
	Confidence float64       `json:"confidence"` // mean word confidence, 0..1
	Similarity float64       `json:"similarity"`
	Match      bool          `json:"match"`
}

// Reader runs Tesseract over label regions.
type Reader struct {
	cfg Config
}

// NewReader creates a reader. Zero fields of cfg take their defaults.
func NewReader(cfg Config) *Reader {
	def := DefaultConfig()
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.Scale < 1 {
		cfg.Scale = def.Scale
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	return &Reader{cfg: cfg}
}

// Available reports whether Tesseract can be initialised with the reader's
// language, by reading a small blank image.
func (r *Reader) Available() error {
	client, err := r.client()
	if err != nil {
		return err
	}
	defer client.Close()

	blank := imaging.New(32, 16, color.White)
	data, err := encode(blank)
	if err != nil {
		return err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		return fmt.Errorf("tesseract unavailable: %w", err)
	}
	return nil
}

// ReadRegions reads every label of img. Rectangles are relative to img's
// origin and are clipped to the image. Readings are returned in label order.
func (r *Reader) ReadRegions(img image.Image, labels []Label) ([]Reading, error) {
	if len(labels) == 0 {
		return []Reading{}, nil
	}

	client, err := r.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	b := img.Bounds()
	readings := make([]Reading, 0, len(labels))
	for _, l := range labels {
		rect := geometry.Normalize(l.Rect, b.Dx(), b.Dy())
		text, conf, err := r.readOne(client, r.prepare(img, rect))
		if err != nil {
			return nil, fmt.Errorf("failed to read label %q: %w", l.Name, err)
		}

		reading := Reading{
			Name:       l.Name,
			Rect:       rect,
			Text:       text,
			Want:       l.Want,
			Confidence: conf,
		}
		if l.Want != "" {
			reading.Similarity = Similarity(text, l.Want)
			reading.Match = reading.Similarity >= r.cfg.Threshold
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// ReadFile opens the image at path and reads labels from it.
func (r *Reader) ReadFile(path string, labels []Label) ([]Reading, error) {
	img, err := imageio.Open(path)
	if err != nil {
		return nil, err
	}
	return r.ReadRegions(img, labels)
}

func (r *Reader) client() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if r.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(r.cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// prepare crops rect, converts it to grayscale and upscales it. A white
// margin keeps glyphs off the crop edge.
func (r *Reader) prepare(img image.Image, rect geometry.Rect) image.Image {
	crop := imaging.Grayscale(imaging.Crop(img, rect.Image().Add(img.Bounds().Min)))
	w, h := crop.Bounds().Dx()*r.cfg.Scale, crop.Bounds().Dy()*r.cfg.Scale
	crop = imaging.Resize(crop, w, h, imaging.Lanczos)

	margin := 8 * r.cfg.Scale
	canvas := imaging.New(w+2*margin, h+2*margin, color.White)
	return imaging.Paste(canvas, crop, image.Pt(margin, margin))
}

func (r *Reader) readOne(client *gosseract.Client, img image.Image) (string, float64, error) {
	data, err := encode(img)
	if err != nil {
		return "", 0, err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}

	// Confidence is best effort; the text is still useful without it.
	conf := 0.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		n := 0
		for _, box := range boxes {
			if strings.TrimSpace(box.Word) == "" {
				continue
			}
			conf += float64(box.Confidence) / 100.0
			n++
		}
		if n > 0 {
			conf /= float64(n)
		}
	}

	return strings.Join(strings.Fields(text), " "), conf, nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}
	return buf.Bytes(), nil
}

// Similarity compares two strings after Normalize, as
// 1 - levenshtein(a, b) / max(len(a), len(b)). Two empty strings are
// identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(Normalize(a)), []rune(Normalize(b))
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// Normalize upper-cases s, keeps only letters, digits, ':' and '%', and
// collapses whitespace. It removes the usual OCR noise around label text.
func Normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToUpper(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ':' || r == '%':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// BodyLabels returns the two label rectangles of plan with the text drawn in
// them. A nil plan has no labels.
func BodyLabels(plan *layout.BodyPlan, top, bottom string) []Label {
	if plan == nil {
		return nil
	}
	return []Label{
		{Name: "top", Rect: plan.TopLabel, Want: top},
		{Name: "bottom", Rect: plan.BottomLabel, Want: bottom},
	}
}
