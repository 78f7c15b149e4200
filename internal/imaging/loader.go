package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded source images keyed by path.
//
// The batch CLI loads each image once, but the MCP server is asked about the
// same file repeatedly (dimensions, plan, apply), so decoded images are kept
// until evicted. ImageCache is safe for concurrent use.
//
// # Memory Management
//
// Cached images stay in memory until Evict or Clear. The server evicts every
// output it writes so a follow-up request reads the new file.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/photos/street.jpg")
//	if err != nil {
//	    return err
//	}
//	w, h := img.Bounds().Dx(), img.Bounds().Dy()
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it on first use.
//
// Parameters:
//   - path: file path of the image. The exact string is the cache key, so a
//     relative and an absolute path to one file are cached separately.
//
// Returns:
//   - image.Image: the decoded image, upright after EXIF auto-orientation so
//     detections line up with what the user sees
//   - error: non-nil if the file cannot be opened or decoded
//
// # Errors
//
//   - "failed to open image" if the file does not exist or cannot be read
//   - "failed to decode image" if it is not a JPEG, PNG, GIF, TIFF or BMP
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict drops path from the cache. Saved outputs are evicted so a later load
// sees the new file.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Open decodes the image at path with auto-orientation and without caching.
func Open(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ImageInfo describes an image file.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"` // from the file extension
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its size and format.
// Width and height are after auto-orientation.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of the image at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}

// baseName returns path without its extension.
func baseName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
