// Package cvdetect implements detection.Detector with OpenCV: a Haar cascade
// for faces and the default HOG people detector for bodies.
package cvdetect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// Config configures the OpenCV detector.
type Config struct {
	// FaceCascade is the path to a Haar cascade XML file, for example
	// haarcascade_frontalface_default.xml. Empty disables face detection.
	FaceCascade string `yaml:"face_cascade"`
	// Body enables HOG people detection.
	Body bool `yaml:"body"`
	// MinSize drops candidates whose width or height is below this many pixels.
	MinSize int `yaml:"min_size"`
}

// Detector runs OpenCV classifiers. Calls are serialized; the underlying
// classifiers are not safe for concurrent use.
type Detector struct {
	mu      sync.Mutex
	cfg     Config
	face    *gocv.CascadeClassifier
	hog     *gocv.HOGDescriptor
	svmData gocv.Mat
}

var _ detection.Detector = (*Detector)(nil)

// New loads the configured classifiers. Close must be called to release them.
func New(cfg Config) (*Detector, error) {
	d := &Detector{cfg: cfg}

	if cfg.FaceCascade != "" {
		if _, err := os.Stat(cfg.FaceCascade); err != nil {
			return nil, fmt.Errorf("failed to find face cascade: %w", err)
		}
		classifier := gocv.NewCascadeClassifier()
		if !classifier.Load(cfg.FaceCascade) {
			classifier.Close()
			return nil, fmt.Errorf("failed to load face cascade %s", cfg.FaceCascade)
		}
		d.face = &classifier
	}

	if cfg.Body {
		hog := gocv.NewHOGDescriptor()
		d.svmData = gocv.HOGDefaultPeopleDetector()
		if err := hog.SetSVMDetector(d.svmData); err != nil {
			hog.Close()
			d.svmData.Close()
			d.Close()
			return nil, fmt.Errorf("failed to set people detector: %w", err)
		}
		d.hog = &hog
	}

	return d, nil
}

// Close releases the classifiers.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.face != nil {
		d.face.Close()
		d.face = nil
	}
	if d.hog != nil {
		d.hog.Close()
		d.svmData.Close()
		d.hog = nil
	}
	return nil
}

// DetectFace returns the largest face found by the cascade.
func (d *Detector) DetectFace(img image.Image) (geometry.Rect, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.face == nil {
		return geometry.Rect{}, false
	}

	gray, err := toGray(img)
	if err != nil {
		return geometry.Rect{}, false
	}
	defer gray.Close()

	return d.largest(d.face.DetectMultiScale(gray), img.Bounds())
}

// DetectBody returns the largest person found by the HOG detector.
func (d *Detector) DetectBody(img image.Image) (geometry.Rect, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hog == nil {
		return geometry.Rect{}, false
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return geometry.Rect{}, false
	}
	defer mat.Close()

	return d.largest(d.hog.DetectMultiScale(mat), img.Bounds())
}

// largest filters out undersized candidates and picks the biggest. OpenCV
// reports rectangles relative to the Mat, whose origin is (0, 0).
func (d *Detector) largest(found []image.Rectangle, bounds image.Rectangle) (geometry.Rect, bool) {
	kept := found[:0]
	for _, r := range found {
		if r.Dx() >= d.cfg.MinSize && r.Dy() >= d.cfg.MinSize {
			kept = append(kept, r)
		}
	}
	return detection.Largest(kept, image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
}

func toGray(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)
	return gray, nil
}
