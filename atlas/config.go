package atlas

// Default configuration values.
const (
	DefaultAtlasSize = 2048
	DefaultSpread    = 4
	DefaultPadding   = 1
)

// Config holds atlas generation parameters. Zero fields other than
// PixelSize select their defaults.
type Config struct {
	// PixelSize is the rasterization size in pixels per em.
	PixelSize float64

	// AtlasSize is the atlas width and height in pixels.
	// Default: 2048
	AtlasSize int

	// Spread is the distance field search radius in pixels. It bounds how
	// far glow and outline effects can reach outside the glyph.
	// Default: 4
	Spread int

	// Padding is the number of empty pixels between packed cells.
	// Default: 1
	Padding int

	// Extra lists codepoints packed in addition to printable ASCII.
	Extra []rune
}

// DefaultConfig returns the default configuration at the given pixel size.
func DefaultConfig(pixelSize float64) Config {
	return Config{
		PixelSize: pixelSize,
		AtlasSize: DefaultAtlasSize,
		Spread:    DefaultSpread,
		Padding:   DefaultPadding,
	}
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	if c.AtlasSize == 0 {
		c.AtlasSize = DefaultAtlasSize
	}
	if c.Spread == 0 {
		c.Spread = DefaultSpread
	}
	if c.Padding == 0 {
		c.Padding = DefaultPadding
	}
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.PixelSize <= 0 {
		return &ConfigError{Field: "PixelSize", Reason: "must be positive"}
	}
	if c.PixelSize > 1024 {
		return &ConfigError{Field: "PixelSize", Reason: "must be at most 1024"}
	}
	if c.AtlasSize < 64 {
		return &ConfigError{Field: "AtlasSize", Reason: "must be at least 64"}
	}
	if c.AtlasSize > 8192 {
		return &ConfigError{Field: "AtlasSize", Reason: "must be at most 8192"}
	}
	if c.Spread < 1 || c.Spread > 32 {
		return &ConfigError{Field: "Spread", Reason: "must be in [1, 32]"}
	}
	if c.Padding < 0 || c.Padding > 16 {
		return &ConfigError{Field: "Padding", Reason: "must be in [0, 16]"}
	}
	return nil
}
