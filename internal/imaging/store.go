package imaging

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Collision decides what Save does when the output path already exists.
type Collision string

const (
	// Overwrite replaces the existing file.
	Overwrite Collision = "overwrite"
	// Increment appends 1, 2, ... to the suffix until the path is free.
	Increment Collision = "increment"
)

// StoreConfig configures output naming.
type StoreConfig struct {
	Suffix    string    `yaml:"suffix"`
	Format    string    `yaml:"format"`
	Collision Collision `yaml:"collision"`
}

// DefaultStoreConfig writes "<name>_filtered.png" next to the source,
// overwriting earlier results.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{Suffix: "_filtered", Format: "png", Collision: Overwrite}
}

// Store writes results alongside their source images.
type Store struct {
	suffix    string
	ext       string
	format    imaging.Format
	collision Collision
}

// NewStore validates cfg. Empty fields take their defaults.
func NewStore(cfg StoreConfig) (*Store, error) {
	def := DefaultStoreConfig()
	if cfg.Suffix == "" {
		cfg.Suffix = def.Suffix
	}
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.Collision == "" {
		cfg.Collision = def.Collision
	}

	ext := "." + strings.TrimPrefix(strings.ToLower(cfg.Format), ".")
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("unsupported output format %q: %w", cfg.Format, err)
	}

	switch cfg.Collision {
	case Overwrite, Increment:
	default:
		return nil, fmt.Errorf("unknown collision policy %q (want %q or %q)", cfg.Collision, Overwrite, Increment)
	}

	return &Store{suffix: cfg.Suffix, ext: ext, format: format, collision: cfg.Collision}, nil
}

// OutputPath returns where the result for original will be written.
func (s *Store) OutputPath(original string) (string, error) {
	base := baseName(original) + s.suffix
	out := base + s.ext
	if s.collision == Overwrite {
		return out, nil
	}

	for i := 1; ; i++ {
		_, err := os.Stat(out)
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check output path: %w", err)
		}
		out = base + strconv.Itoa(i) + s.ext
	}
}

// Save encodes img next to original and returns the path written.
//
// Parameters:
//   - img: the finished composition
//   - original: path of the source photo. The output goes in the same
//     directory as "<name><suffix>.<format>".
//
// Returns:
//   - string: the path written. With the increment policy this may carry a
//     number ("street_filtered1.png") when the plain name is taken.
//   - error: non-nil if the directory is missing or the file cannot be
//     created or encoded
//
// With the overwrite policy an existing output is replaced. JPEG output is
// written at quality 95.
//
// # Errors
//
//   - "failed to create output file" if the directory does not exist or is
//     not writable
//   - "failed to encode output image" or "failed to write output file" if
//     the write fails part way; a partial file may remain
func (s *Store) Save(img image.Image, original string) (string, error) {
	out, err := s.OutputPath(original)
	if err != nil {
		return "", err
	}

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if err := imaging.Encode(f, img, s.format, imaging.JPEGQuality(95)); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode output image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return out, nil
}
