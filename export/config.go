package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gogpu/sdftext"
)

// Format is an output image encoding.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ParseFormat parses a format name or file extension, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Ext returns the file extension of f without the leading dot.
func (f Format) Ext() string { return string(f) }

// Limits.
const (
	maxDimension = 16384
	maxFPS       = 1000
	maxDigits    = 12
)

// Config describes one image sequence. It is read-only during Render.
type Config struct {
	// Width and Height are the frame size in pixels.
	// Default: 3840x2160
	Width  int
	Height int

	// FPS is the frame rate.
	// Default: 60
	FPS float64

	// Duration is the length of the sequence.
	// Default: 24s
	Duration time.Duration

	// OutputDir receives the frames. It is created if missing.
	// Default: "."
	OutputDir string

	// FilenamePrefix precedes the frame index in file names.
	// Default: "frame_"
	FilenamePrefix string

	// Format is the image encoding.
	// Default: FormatPNG
	Format Format

	// Digits zero-pads the frame index to at least this many digits.
	// 0 writes the index unpadded (frame_0, frame_1, ... frame_10).
	Digits int

	// Background is the color every frame is cleared to before drawing.
	// Default: black
	Background sdftext.Color
}

// DefaultConfig returns a 4K, 60 fps, 24 second PNG sequence.
func DefaultConfig() Config {
	return Config{
		Width:          3840,
		Height:         2160,
		FPS:            60,
		Duration:       24 * time.Second,
		OutputDir:      ".",
		FilenamePrefix: "frame_",
		Format:         FormatPNG,
		Background:     sdftext.Black,
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Width > maxDimension {
		return &ConfigError{Field: "Width", Reason: fmt.Sprintf("must be in [1, %d]", maxDimension)}
	}
	if c.Height <= 0 || c.Height > maxDimension {
		return &ConfigError{Field: "Height", Reason: fmt.Sprintf("must be in [1, %d]", maxDimension)}
	}
	if c.FPS <= 0 || c.FPS > maxFPS || math.IsNaN(c.FPS) {
		return &ConfigError{Field: "FPS", Reason: fmt.Sprintf("must be in (0, %d]", maxFPS)}
	}
	if c.Duration < 0 {
		return &ConfigError{Field: "Duration", Reason: "must not be negative"}
	}
	if c.OutputDir == "" {
		return &ConfigError{Field: "OutputDir", Reason: "must not be empty"}
	}
	if strings.ContainsAny(c.FilenamePrefix, `/\`) {
		return &ConfigError{Field: "FilenamePrefix", Reason: "must not contain path separators"}
	}
	switch c.Format {
	case FormatPNG, FormatBMP, FormatTIFF:
	default:
		return &ConfigError{Field: "Format", Reason: fmt.Sprintf("%q is not png, bmp or tiff", c.Format)}
	}
	if c.Digits < 0 || c.Digits > maxDigits {
		return &ConfigError{Field: "Digits", Reason: fmt.Sprintf("must be in [0, %d]", maxDigits)}
	}
	return nil
}

// TotalFrames returns round(duration * fps).
func (c *Config) TotalFrames() int {
	return int(math.Round(c.Duration.Seconds() * c.FPS))
}

// FrameTime returns the time of frame i in seconds.
func (c *Config) FrameTime(i int) float64 {
	return float64(i) / c.FPS
}

// FileName returns the file name of frame i.
func (c *Config) FileName(i int) string {
	return fmt.Sprintf("%s%0*d.%s", c.FilenamePrefix, c.Digits, i, c.Format.Ext())
}
