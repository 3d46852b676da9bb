package text

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/atlas"
	"github.com/gogpu/sdftext/raster"
	"github.com/gogpu/sdftext/render"
)

// Stats counts the work submitted during a frame.
type Stats struct {
	DrawCalls int
	Quads     int
}

// batchKey identifies the draw call a quad belongs to.
type batchKey struct {
	alias string
	style resolvedStyle
}

// batch accumulates quads that share one atlas and one resolved style.
type batch struct {
	key      batchKey
	atlas    *atlas.FontAtlas
	vertices []render.Vertex
	indices  []uint16
}

func (b *batch) quads() int { return len(b.vertices) / render.VerticesPerQuad }

func (b *batch) reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.atlas = nil
}

// Renderer draws text from loaded font atlases in batches.
//
// A Renderer is not safe for concurrent use. All calls must come from the
// goroutine that owns the device.
type Renderer struct {
	dev       render.Device
	cfg       config
	builder   *atlas.Builder
	pipelines [3]render.Pipeline
	fonts     map[string]*atlas.FontAtlas
	state     State

	// Current frame.
	pass       render.Pass
	width      int
	height     int
	projection [16]float32
	batch      batch
	stats      Stats

	closed bool
}

// NewRenderer creates a renderer drawing on dev and compiles the
// pipelines of every style. Pipeline failures are *render.PipelineError.
func NewRenderer(dev render.Device, opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Renderer{
		dev:     dev,
		cfg:     cfg,
		builder: atlas.NewBuilder(append(slices.Clone(cfg.atlasOpts), atlas.WithDevice(dev))...),
		fonts:   make(map[string]*atlas.FontAtlas),
		state:   DefaultState(),
	}
	for _, v := range render.Variants() {
		p, err := dev.CreatePipeline(v)
		if err != nil {
			r.destroyPipelines()
			return nil, err
		}
		r.pipelines[v] = p
	}

	r.batch.vertices = make([]render.Vertex, 0, cfg.maxChars*render.VerticesPerQuad)
	r.batch.indices = make([]uint16, 0, cfg.maxChars*render.IndicesPerQuad)
	return r, nil
}

func (r *Renderer) destroyPipelines() {
	for i, p := range r.pipelines {
		if p != nil {
			p.Destroy()
			r.pipelines[i] = nil
		}
	}
}

func aliasOrDefault(alias string) string {
	if alias == "" {
		return DefaultAlias
	}
	return alias
}

// LoadFont builds an atlas of the font family name at size pixels and
// registers it under alias. An empty alias is DefaultAlias.
//
// Errors are scoped to alias: on failure every loaded font, including a
// previous atlas under the same alias, stays usable.
func (r *Renderer) LoadFont(name string, size float64, alias string) error {
	return r.load(raster.Family(name), atlas.Config{PixelSize: size}, alias)
}

// LoadFontFromFile is like LoadFont for a .ttf or .otf file. A zero
// atlasSize selects atlas.DefaultAtlasSize; ornate fonts may need more.
func (r *Renderer) LoadFontFromFile(path string, size float64, alias string, atlasSize int) error {
	return r.load(raster.File(path), atlas.Config{PixelSize: size, AtlasSize: atlasSize}, alias)
}

func (r *Renderer) load(ref raster.FontRef, cfg atlas.Config, alias string) error {
	if r.closed {
		return ErrClosed
	}
	alias = aliasOrDefault(alias)
	cfg.Extra = r.cfg.extra

	a, err := r.builder.Generate(ref, cfg)
	if err != nil {
		sdftext.Logger().Warn("text: font load failed", "alias", alias, "font", ref.String(), "err", err)
		return fmt.Errorf("text: load font %q: %w", alias, err)
	}

	if err := r.release(alias); err != nil {
		a.Close()
		return err
	}
	r.fonts[alias] = a

	sdftext.Logger().Info("text: font loaded",
		"alias", alias,
		"font", ref.String(),
		"size", cfg.PixelSize,
		"glyphs", a.Len(),
		"atlas", a.Size())
	return nil
}

// release closes the atlas under alias, flushing quads that still
// reference it.
func (r *Renderer) release(alias string) error {
	old, ok := r.fonts[alias]
	if !ok {
		return nil
	}
	if r.batch.atlas == old {
		if err := r.flush(); err != nil {
			return err
		}
	}
	delete(r.fonts, alias)
	old.Close()
	return nil
}

// UnloadFont closes the atlas registered under alias.
func (r *Renderer) UnloadFont(alias string) error {
	alias = aliasOrDefault(alias)
	if _, ok := r.fonts[alias]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFont, alias)
	}
	return r.release(alias)
}

// HasFont reports whether alias has a loaded font.
func (r *Renderer) HasFont(alias string) bool {
	_, ok := r.fonts[aliasOrDefault(alias)]
	return ok
}

// Fonts returns the loaded aliases, sorted.
func (r *Renderer) Fonts() []string {
	aliases := make([]string, 0, len(r.fonts))
	for alias := range r.fonts {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Atlas returns the atlas registered under alias.
func (r *Renderer) Atlas(alias string) (*atlas.FontAtlas, bool) {
	a, ok := r.fonts[aliasOrDefault(alias)]
	return a, ok
}

// LineHeight returns the scaled line height of alias, or 0 if alias has
// no font.
func (r *Renderer) LineHeight(alias string) float32 {
	a, ok := r.fonts[aliasOrDefault(alias)]
	if !ok {
		return 0
	}
	return a.LineHeight() * r.state.Scale
}

// BeginFrame starts drawing into target. Existing target contents are
// kept; text is blended over them.
func (r *Renderer) BeginFrame(target render.RenderTarget) error {
	if r.closed {
		return ErrClosed
	}
	if r.pass != nil {
		return ErrFrameInProgress
	}
	if target == nil {
		return render.ErrNilTarget
	}

	pass, err := r.dev.BeginPass(target, nil)
	if err != nil {
		return fmt.Errorf("text: begin frame: %w", err)
	}
	r.pass = pass
	r.width = target.Width()
	r.height = target.Height()
	r.projection = render.Ortho(float32(r.width), float32(r.height))
	r.batch.reset()
	r.stats = Stats{}
	return nil
}

// EndFrame flushes the pending batch and submits the frame.
func (r *Renderer) EndFrame() error {
	if r.pass == nil {
		return ErrNotInFrame
	}
	flushErr := r.flush()
	endErr := r.pass.End()
	r.pass = nil
	r.batch.reset()

	if endErr != nil {
		endErr = fmt.Errorf("text: end frame: %w", endErr)
	}
	if err := errors.Join(flushErr, endErr); err != nil {
		return err
	}

	sdftext.Logger().Debug("text: frame done", "draws", r.stats.DrawCalls, "quads", r.stats.Quads)
	return nil
}

// InFrame reports whether a frame is in progress.
func (r *Renderer) InFrame() bool { return r.pass != nil }

// Stats returns the counters of the current or last frame.
func (r *Renderer) Stats() Stats { return r.stats }

// DrawText draws s with its baseline at y. x is the left edge, center or
// right edge of the string depending on the alignment. Codepoints
// missing from the font are skipped.
func (r *Renderer) DrawText(s string, x, y float32, alias string) error {
	if r.pass == nil {
		return ErrNotInFrame
	}
	alias = aliasOrDefault(alias)
	a, ok := r.fonts[alias]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFont, alias)
	}

	key := batchKey{alias: alias, style: r.state.resolve()}
	if !key.style.variant.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownStyle, r.state.Style)
	}
	runes := r.codepoints(s)
	scale := r.state.Scale
	pen := x + r.state.Align.offset(a.Measure(runes)*scale)
	color := r.state.Color.Array()

	for _, c := range runes {
		g, ok := a.Glyph(c)
		if !ok {
			continue
		}
		if g.Visible() {
			if err := r.appendQuad(a, key, &g, pen, y, scale, color); err != nil {
				return err
			}
		}
		pen += g.Advance * scale
	}
	return nil
}

func (r *Renderer) appendQuad(a *atlas.FontAtlas, key batchKey, g *atlas.GlyphInfo, pen, baseline, scale float32, color [4]float32) error {
	b := &r.batch
	if n := b.quads(); n > 0 && (b.key != key || n >= r.cfg.maxChars) {
		if err := r.flush(); err != nil {
			return err
		}
	}
	b.key = key
	b.atlas = a

	x0 := pen + g.BearingX*scale
	y0 := baseline - g.BearingY*scale
	x1 := x0 + float32(g.Width)*scale
	y1 := y0 + float32(g.Height)*scale

	b.indices = render.AppendQuadIndices(b.indices, b.quads(), 1)
	b.vertices = append(b.vertices,
		render.Vertex{Position: [2]float32{x0, y0}, TexCoord: [2]float32{g.U0, g.V0}, Color: color},
		render.Vertex{Position: [2]float32{x1, y0}, TexCoord: [2]float32{g.U1, g.V0}, Color: color},
		render.Vertex{Position: [2]float32{x1, y1}, TexCoord: [2]float32{g.U1, g.V1}, Color: color},
		render.Vertex{Position: [2]float32{x0, y1}, TexCoord: [2]float32{g.U0, g.V1}, Color: color},
	)
	return nil
}

// flush submits the pending batch as one draw call. The uniforms are
// those of the style the batch was drawn with.
func (r *Renderer) flush() error {
	b := &r.batch
	n := b.quads()
	if n == 0 {
		return nil
	}
	defer b.reset()

	u := b.key.style.uniforms(r.projection, r.width, r.height)
	p := r.pipelines[b.key.style.variant]
	if err := r.pass.Draw(p, b.atlas.Texture(), b.vertices, b.indices, &u); err != nil {
		return fmt.Errorf("text: draw %q: %w", b.key.alias, err)
	}

	r.stats.DrawCalls++
	r.stats.Quads += n
	sdftext.Logger().Debug("text: batch flushed",
		"alias", b.key.alias,
		"style", b.key.style.variant.String(),
		"quads", n)
	return nil
}

// MeasureText returns the scaled advance width of s in the font of
// alias, or 0 if alias has no font. It draws nothing and may be called
// outside a frame.
func (r *Renderer) MeasureText(s, alias string) float32 {
	a, ok := r.fonts[aliasOrDefault(alias)]
	if !ok {
		return 0
	}
	return a.Measure(r.codepoints(s)) * r.state.Scale
}

// codepoints decodes s, composing it to NFC first when normalization is
// enabled.
func (r *Renderer) codepoints(s string) []rune {
	if r.cfg.normalize {
		s = norm.NFC.String(s)
	}
	return []rune(s)
}

// Close ends any frame in progress without drawing its pending batch and
// releases every atlas and pipeline. Close is idempotent.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.pass != nil {
		r.batch.reset()
		if err := r.pass.End(); err != nil {
			sdftext.Logger().Warn("text: end frame on close", "err", err)
		}
		r.pass = nil
	}
	for alias, a := range r.fonts {
		a.Close()
		delete(r.fonts, alias)
	}
	r.destroyPipelines()
}
