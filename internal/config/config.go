// Package config loads cyberstyle settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then a
// .env file in the working directory, then environment variables. The .env
// file only fills variables that are not already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/describe"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/detection/cvdetect"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/imaging"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/layout"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/ocr"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/render"
	"github.com/khkhachatur/Ai-CyberStyle-filter/internal/stylize"
)

// DefaultFaceCascade is where distribution OpenCV packages install the
// frontal face cascade.
const DefaultFaceCascade = "/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml"

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig           `yaml:"log"`
	Describer describe.Config     `yaml:"describer"`
	Detector  cvdetect.Config     `yaml:"detector"`
	Layout    layout.Config       `yaml:"layout"`
	Palette   PaletteConfig       `yaml:"palette"`
	Card      render.CardOptions  `yaml:"card"`
	Frame     render.FrameText    `yaml:"frame"`
	Output    imaging.StoreConfig `yaml:"output"`
	Style     stylize.Options     `yaml:"style"`
	OCR       ocr.Config          `yaml:"ocr"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// PaletteConfig holds HUD colours as hex strings. LabelText may be "auto".
type PaletteConfig struct {
	HUD       string `yaml:"hud"`
	LabelText string `yaml:"label_text"`
	Frame     string `yaml:"frame"`
}

// Parse converts the colours to a render.Palette.
func (p PaletteConfig) Parse() (render.Palette, error) {
	return render.ParsePalette(p.HUD, p.LabelText, p.Frame)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info"},
		Describer: describe.DefaultConfig(),
		Detector: cvdetect.Config{
			FaceCascade: DefaultFaceCascade,
			Body:        true,
			MinSize:     24,
		},
		Layout:  layout.DefaultConfig(),
		Palette: PaletteConfig{HUD: "#00ff00", LabelText: "#000000", Frame: "#ffffff"},
		Card:    render.DefaultCardOptions(),
		Frame:   render.DefaultFrameText(),
		Output:  imaging.DefaultStoreConfig(),
		Style:   stylize.DefaultOptions(),
		OCR:     ocr.DefaultConfig(),
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it, but a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("CYBERSTYLE_LOG_LEVEL", c.Log.Level)

	c.Describer.APIKey = getEnv("OPENAI_API_KEY", c.Describer.APIKey)
	c.Describer.BaseURL = getEnv("CYBERSTYLE_OPENAI_BASE_URL", c.Describer.BaseURL)
	c.Describer.Model = getEnv("CYBERSTYLE_OPENAI_MODEL", c.Describer.Model)
	c.Describer.Enabled = getEnvBool("CYBERSTYLE_DESCRIBER_ENABLED", c.Describer.Enabled)
	c.Describer.Timeout = getEnvDuration("CYBERSTYLE_DESCRIBER_TIMEOUT", c.Describer.Timeout)

	c.Detector.FaceCascade = getEnv("CYBERSTYLE_FACE_CASCADE", c.Detector.FaceCascade)
	c.Detector.Body = getEnvBool("CYBERSTYLE_BODY_DETECTOR", c.Detector.Body)
	c.Detector.MinSize = getEnvInt("CYBERSTYLE_DETECTOR_MIN_SIZE", c.Detector.MinSize)

	c.Output.Suffix = getEnv("CYBERSTYLE_OUTPUT_SUFFIX", c.Output.Suffix)
	c.Output.Format = getEnv("CYBERSTYLE_OUTPUT_FORMAT", c.Output.Format)
	c.Output.Collision = imaging.Collision(getEnv("CYBERSTYLE_OUTPUT_COLLISION", string(c.Output.Collision)))

	c.OCR.Language = getEnv("CYBERSTYLE_OCR_LANGUAGE", c.OCR.Language)
	c.OCR.TessdataPrefix = getEnv("TESSDATA_PREFIX", c.OCR.TessdataPrefix)
}

// Validate checks the settings that would otherwise fail late, in the middle
// of a batch.
func (c *Config) Validate() error {
	if _, err := c.Palette.Parse(); err != nil {
		return fmt.Errorf("invalid palette: %w", err)
	}
	if _, err := imaging.NewStore(c.Output); err != nil {
		return fmt.Errorf("invalid output: %w", err)
	}
	if c.Describer.Timeout < 0 {
		return fmt.Errorf("invalid describer timeout %s", c.Describer.Timeout)
	}
	if c.Layout.LabelWidth <= 0 || c.Layout.LabelHeight <= 0 {
		return fmt.Errorf("invalid label size %dx%d", c.Layout.LabelWidth, c.Layout.LabelHeight)
	}
	if c.Layout.MinLabelWidth > c.Layout.LabelWidth {
		return fmt.Errorf("min_label_width %d exceeds label_width %d", c.Layout.MinLabelWidth, c.Layout.LabelWidth)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
