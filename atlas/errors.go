package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for atlas package.
var (
	// ErrAtlasOverflow is matched by every *OverflowError.
	ErrAtlasOverflow = errors.New("atlas: charset does not fit the atlas")

	// ErrEmptyCharset is returned when no codepoint of the charset could
	// be rasterized.
	ErrEmptyCharset = errors.New("atlas: no glyphs in charset")

	// ErrCacheMiss is returned by the disk cache when no usable entry exists.
	ErrCacheMiss = errors.New("atlas: cache miss")
)

// OverflowError reports a charset too large for the configured atlas.
// Generation fails as a whole; no glyph is silently dropped.
type OverflowError struct {
	// Glyphs is the number of glyph cells that needed placing.
	Glyphs int

	// Placed is the number of cells that fit before packing stopped.
	Placed int

	// AtlasSize is the configured atlas width and height.
	AtlasSize int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("atlas: %d of %d glyphs fit a %dx%d atlas", e.Placed, e.Glyphs, e.AtlasSize, e.AtlasSize)
}

// Is reports whether target is ErrAtlasOverflow.
func (e *OverflowError) Is(target error) bool {
	return target == ErrAtlasOverflow
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}
