package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/geometry"
)

// CropRegion returns a copy of the part of img inside r, grown by padding
// times r's width and height on each side and clipped to the image. The
// result's origin is (0, 0). Coordinates of r are relative to img's origin.
//
// CropRegion(img, face, 0.25) is the face crop used for the identity card.
func CropRegion(img image.Image, r geometry.Rect, padding float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	r = geometry.Normalize(r, w, h)

	padX := float64(r.Dx()) * padding
	padY := float64(r.Dy()) * padding

	x1 := max(0, int(math.Trunc(float64(r.X1)-padX)))
	y1 := max(0, int(math.Trunc(float64(r.Y1)-padY)))
	x2 := min(w, int(math.Trunc(float64(r.X2)+padX)))
	y2 := min(h, int(math.Trunc(float64(r.Y2)+padY)))

	return imaging.Crop(img, image.Rect(x1, y1, x2, y2).Add(b.Min))
}

// AtOrigin returns img unchanged when its bounds start at (0, 0) and a copy
// moved to (0, 0) otherwise. Layout coordinates are origin-relative, while
// drawing uses absolute pixel positions, so images are moved before either
// is computed.
func AtOrigin(img image.Image) image.Image {
	if img.Bounds().Min == (image.Point{}) {
		return img
	}
	return imaging.Clone(img)
}

// EncodedImage is an image encoded for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG, optionally scaled by scale.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	if scale > 0 && scale != 1.0 {
		w := max(1, int(float64(img.Bounds().Dx())*scale))
		h := max(1, int(float64(img.Bounds().Dy())*scale))
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
