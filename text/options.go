package text

import (
	"github.com/gogpu/sdftext/atlas"
	"github.com/gogpu/sdftext/raster"
	"github.com/gogpu/sdftext/render"
)

// DefaultMaxChars is the default batch capacity in quads.
const DefaultMaxChars = 4096

// DefaultAlias is the font alias used when an empty alias is given.
const DefaultAlias = "default"

// Option configures a Renderer.
type Option func(*config)

// config holds renderer configuration.
type config struct {
	maxChars  int
	atlasOpts []atlas.Option
	extra     []rune
	normalize bool
}

// defaultConfig returns the default configuration.
func defaultConfig() config {
	return config{
		maxChars: DefaultMaxChars,
	}
}

// WithMaxChars sets the number of quads a batch holds before it is
// flushed. Values are clamped to [1, render.MaxQuadsPerDraw]; n <= 0
// keeps the default.
//
// Default: 4096
func WithMaxChars(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxChars = min(n, render.MaxQuadsPerDraw)
		}
	}
}

// WithSource sets the rasterizer backend used to build font atlases.
//
// Default: raster.Default()
func WithSource(name string, s raster.Source) Option {
	return func(c *config) {
		c.atlasOpts = append(c.atlasOpts, atlas.WithSource(name, s))
	}
}

// WithAtlasOptions passes options to the atlas builder, for example
// atlas.WithCacheDir. The renderer always supplies its own device.
func WithAtlasOptions(opts ...atlas.Option) Option {
	return func(c *config) {
		c.atlasOpts = append(c.atlasOpts, opts...)
	}
}

// WithExtraRunes adds codepoints to every loaded atlas in addition to
// printable ASCII.
func WithExtraRunes(runes ...rune) Option {
	return func(c *config) {
		c.extra = append(c.extra, runes...)
	}
}

// WithNormalization composes text to NFC before codepoints are looked
// up, so decomposed input such as "e\u0301" draws the precomposed glyph.
//
// Default: false
func WithNormalization(enabled bool) Option {
	return func(c *config) {
		c.normalize = enabled
	}
}
