package atlas

import (
	"cmp"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/raster"
	"github.com/gogpu/sdftext/render"
)

// Builder generates font atlases.
//
// A Builder is safe for concurrent use; each Generate call opens its own
// face.
type Builder struct {
	source     raster.Source
	sourceName string
	device     render.Device
	cache      *DiskCache
}

// Option configures a Builder.
type Option func(*Builder)

// WithSource selects the rasterizer backend. name is recorded in cache
// keys so atlases from different backends never collide.
func WithSource(name string, s raster.Source) Option {
	return func(b *Builder) {
		if s != nil {
			b.source = s
			b.sourceName = name
		}
	}
}

// WithDevice uploads generated atlases to dev. Without a device the
// atlas carries CPU pixels only.
func WithDevice(dev render.Device) Option {
	return func(b *Builder) {
		b.device = dev
	}
}

// WithCacheDir enables the on-disk atlas cache rooted at dir.
func WithCacheDir(dir string) Option {
	return func(b *Builder) {
		if dir != "" {
			b.cache = NewDiskCache(dir)
		}
	}
}

// NewBuilder creates a builder using the default rasterizer backend.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		source:     raster.Default(),
		sourceName: raster.DefaultSourceName,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generate builds the atlas of ref with the printable ASCII charset plus
// cfg.Extra.
//
// Generation is all or nothing: if the charset does not fit, the result is
// an *OverflowError and no texture is created. The texture is created
// only after every cell is placed; if the upload fails it is released.
func (b *Builder) Generate(ref raster.FontRef, cfg Config) (*FontAtlas, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	face, err := b.source.Open(ref, cfg.PixelSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	charset := Charset(cfg.Extra)
	var key string
	if b.cache != nil {
		key = cacheKey(face.Data(), b.sourceName, cfg, charset)
		a, err := b.cache.Load(key)
		switch {
		case err == nil:
			sdftext.Logger().Debug("atlas: cache hit", "font", ref.String(), "key", key)
			return b.finish(a, ref)
		case !errors.Is(err, ErrCacheMiss):
			sdftext.Logger().Warn("atlas: cache load failed", "key", key, "err", err)
		}
	}

	a, err := build(face, cfg, charset)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		if err := b.cache.Store(key, a); err != nil {
			sdftext.Logger().Warn("atlas: cache store failed", "key", key, "err", err)
		}
	}
	return b.finish(a, ref)
}

func (b *Builder) finish(a *FontAtlas, ref raster.FontRef) (*FontAtlas, error) {
	if b.device == nil {
		return a, nil
	}
	if err := a.upload(b.device, "sdf-atlas:"+ref.String()); err != nil {
		return nil, fmt.Errorf("atlas: upload: %w", err)
	}
	return a, nil
}

// Generate builds an atlas with a default Builder.
func Generate(ref raster.FontRef, cfg Config, opts ...Option) (*FontAtlas, error) {
	return NewBuilder(opts...).Generate(ref, cfg)
}

// cell is one glyph on its way into the atlas.
type cell struct {
	glyph *raster.Glyph
	w, h  int // grown cell size, 0 for blank glyphs
	x, y  int
}

// build rasterizes, packs and encodes every glyph of charset.
func build(face raster.Face, cfg Config, charset []rune) (*FontAtlas, error) {
	spread := cfg.Spread

	// Faces are not safe for concurrent use, so rasterization is sequential.
	cells := make([]*cell, 0, len(charset))
	for _, r := range charset {
		g, err := face.Rasterize(r)
		if errors.Is(err, raster.ErrGlyphNotFound) {
			sdftext.Logger().Debug("atlas: glyph not in font", "rune", string(r))
			continue
		} else if err != nil {
			return nil, fmt.Errorf("atlas: rasterize %q: %w", r, err)
		}
		c := &cell{glyph: g}
		if g.Width() > 0 && g.Height() > 0 {
			c.w, c.h = g.Width()+2*spread, g.Height()+2*spread
		}
		cells = append(cells, c)
	}
	if len(cells) == 0 {
		return nil, ErrEmptyCharset
	}

	// Tallest first keeps shelves tight; the codepoint tie-break makes the
	// layout deterministic.
	order := make([]*cell, 0, len(cells))
	for _, c := range cells {
		if c.w > 0 {
			order = append(order, c)
		}
	}
	slices.SortStableFunc(order, func(a, b *cell) int {
		if c := cmp.Compare(b.h, a.h); c != 0 {
			return c
		}
		return cmp.Compare(a.glyph.Rune, b.glyph.Rune)
	})

	packer := NewShelfPacker(cfg.AtlasSize, cfg.AtlasSize, cfg.Padding)
	for i, c := range order {
		x, y, ok := packer.Place(c.w, c.h)
		if !ok {
			return nil, &OverflowError{Glyphs: len(order), Placed: i, AtlasSize: cfg.AtlasSize}
		}
		c.x, c.y = x, y
	}

	size := cfg.AtlasSize
	pixels := make([]byte, size*size)

	// Cells occupy disjoint atlas regions, so workers write in place.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, c := range order {
		g.Go(func() error {
			gl := c.glyph
			field := DistanceField(gl.Covered, gl.Width(), gl.Height(), spread)
			texels := quantize(field)
			for row := 0; row < c.h; row++ {
				off := (c.y+row)*size + c.x
				copy(pixels[off:off+c.w], texels[row*c.w:(row+1)*c.w])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := face.Metrics()
	a := &FontAtlas{
		family:     face.Family(),
		pixelSize:  cfg.PixelSize,
		size:       size,
		spread:     spread,
		pixels:     pixels,
		glyphs:     make(map[rune]GlyphInfo, len(cells)),
		runes:      make([]rune, 0, len(cells)),
		lineHeight: m.LineHeight,
		ascender:   m.Ascender,
		descender:  m.Descender,
	}

	fs := float32(size)
	for _, c := range cells {
		gl := c.glyph
		info := GlyphInfo{Advance: gl.Advance}
		if c.w > 0 {
			info.X, info.Y = c.x, c.y
			info.Width, info.Height = c.w, c.h
			info.U0 = float32(c.x) / fs
			info.V0 = float32(c.y) / fs
			info.U1 = float32(c.x+c.w) / fs
			info.V1 = float32(c.y+c.h) / fs
			info.BearingX = float32(gl.BearingX - spread)
			info.BearingY = float32(gl.BearingY + spread)
		}
		a.glyphs[gl.Rune] = info
		a.runes = append(a.runes, gl.Rune)
	}

	sdftext.Logger().Debug("atlas: generated",
		"family", a.family,
		"glyphs", len(cells),
		"size", size,
		"utilization", packer.Utilization())
	return a, nil
}
