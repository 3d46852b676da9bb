package atlas

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/sdftext/raster"
	"github.com/gogpu/sdftext/render"
)

func testBuilder(opts ...Option) *Builder {
	src := raster.NewXImage(raster.NewResolver(raster.WithSystemFonts(false)))
	return NewBuilder(append([]Option{WithSource("ximage", src)}, opts...)...)
}

func generate(t *testing.T, b *Builder, cfg Config) *FontAtlas {
	t.Helper()
	a, err := b.Generate(raster.Family("Go"), cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

// --- DistanceField Tests ---

func TestDistanceFieldSquare(t *testing.T) {
	const w, h, spread = 6, 6, 4
	full := func(x, y int) bool { return x >= 0 && x < w && y >= 0 && y < h }
	field := DistanceField(full, w, h, spread)

	cw := w + 2*spread
	if len(field) != cw*(h+2*spread) {
		t.Fatalf("expected %d values, got %d", cw*(h+2*spread), len(field))
	}

	at := func(x, y int) float32 { return field[y*cw+x] }

	if got := at(0, 0); got != 0 {
		t.Errorf("far corner: expected 0, got %v", got)
	}
	if got := at(spread, spread); got != 0.625 {
		t.Errorf("first inside texel: expected 0.625, got %v", got)
	}
	if got := at(spread-1, spread); got != 0.375 {
		t.Errorf("first outside texel: expected 0.375, got %v", got)
	}
	if got := at(cw/2, cw/2); got <= 0.5 {
		t.Errorf("center: expected inside value, got %v", got)
	}
}

func TestDistanceFieldSignMatchesCoverage(t *testing.T) {
	face, err := raster.NewGoText(raster.NewResolver(raster.WithSystemFonts(false))).Open(raster.Family("Go"), 48)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer face.Close()

	g, err := face.Rasterize('R')
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	const spread = 4
	field := DistanceField(g.Covered, g.Width(), g.Height(), spread)
	cw := g.Width() + 2*spread
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			v := field[(y+spread)*cw+x+spread]
			if g.Covered(x, y) != (v > 0.5) {
				t.Fatalf("texel (%d,%d): covered=%v but value %v", x, y, g.Covered(x, y), v)
			}
		}
	}
}

func TestQuantize(t *testing.T) {
	got := quantize([]float32{0, 0.5, 1})
	want := []byte{0, 128, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("quantize: expected %v, got %v", want, got)
	}
}

// --- ShelfPacker Tests ---

func TestShelfPacker_Basic(t *testing.T) {
	p := NewShelfPacker(100, 100, 2)

	x, y, ok := p.Place(20, 20)
	if !ok || x != 0 || y != 0 {
		t.Fatalf("expected (0,0), got (%d,%d) ok=%v", x, y, ok)
	}
	x, y, ok = p.Place(20, 10)
	if !ok || x != 22 || y != 0 { // 20 + 2 padding
		t.Errorf("expected (22,0), got (%d,%d) ok=%v", x, y, ok)
	}
}

func TestShelfPacker_NewShelf(t *testing.T) {
	p := NewShelfPacker(50, 100, 2)
	p.Place(20, 20)
	p.Place(20, 15)

	x, y, ok := p.Place(20, 20)
	if !ok {
		t.Fatal("failed to place third rectangle")
	}
	if x != 0 || y != 22 { // tallest on first shelf + padding
		t.Errorf("expected (0,22), got (%d,%d)", x, y)
	}
	if p.ShelfCount() != 2 {
		t.Errorf("expected 2 shelves, got %d", p.ShelfCount())
	}
}

func TestShelfPacker_Full(t *testing.T) {
	p := NewShelfPacker(50, 50, 2)
	count := 0
	for {
		if _, _, ok := p.Place(20, 20); !ok {
			break
		}
		count++
		if count > 100 {
			t.Fatal("packer never filled up")
		}
	}
	if count != 4 {
		t.Errorf("expected 4 rectangles, got %d", count)
	}

	p.Reset()
	if p.UsedArea() != 0 || p.ShelfCount() != 0 {
		t.Errorf("Reset did not clear state")
	}
	if _, _, ok := p.Place(20, 20); !ok {
		t.Error("expected placement after Reset")
	}
}

func TestShelfPacker_Invalid(t *testing.T) {
	p := NewShelfPacker(50, 50, 0)
	for _, tc := range [][2]int{{0, 10}, {10, 0}, {51, 10}, {10, 51}} {
		if _, _, ok := p.Place(tc[0], tc[1]); ok {
			t.Errorf("Place(%d, %d): expected failure", tc[0], tc[1])
		}
	}
}

// --- Charset and Config Tests ---

func TestCharset(t *testing.T) {
	cs := Charset([]rune{'é', 'A', 'é'})
	if len(cs) != 96 {
		t.Fatalf("expected 95 ASCII + 1 extra, got %d", len(cs))
	}
	if cs[0] != ' ' || cs[94] != '~' || cs[95] != 'é' {
		t.Errorf("unexpected ordering: first %q, 95th %q, last %q", cs[0], cs[94], cs[95])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"valid", DefaultConfig(48), ""},
		{"zero pixel size", Config{AtlasSize: 512, Spread: 4}, "PixelSize"},
		{"huge pixel size", Config{PixelSize: 2000, AtlasSize: 512, Spread: 4}, "PixelSize"},
		{"tiny atlas", Config{PixelSize: 16, AtlasSize: 32, Spread: 4}, "AtlasSize"},
		{"huge atlas", Config{PixelSize: 16, AtlasSize: 16384, Spread: 4}, "AtlasSize"},
		{"zero spread", Config{PixelSize: 16, AtlasSize: 512}, "Spread"},
		{"negative padding", Config{PixelSize: 16, AtlasSize: 512, Spread: 4, Padding: -1}, "Padding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ce.Field)
			}
		})
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	_, err := testBuilder().Generate(raster.Family("Go"), Config{PixelSize: -1})
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestGenerateUnknownFont(t *testing.T) {
	_, err := testBuilder().Generate(raster.Family("No Such Family"), DefaultConfig(32))
	if !errors.Is(err, raster.ErrFontNotFound) {
		t.Fatalf("expected ErrFontNotFound, got %v", err)
	}
	var le *raster.FontLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *raster.FontLoadError, got %T", err)
	}
}

// --- Generate Tests ---

func TestGenerateASCII(t *testing.T) {
	a := generate(t, testBuilder(), Config{PixelSize: 32, AtlasSize: 512})

	if a.Len() != 95 {
		t.Fatalf("expected 95 glyphs, got %d", a.Len())
	}
	if a.Size() != 512 || len(a.Pixels()) != 512*512 {
		t.Errorf("unexpected atlas size %d with %d texels", a.Size(), len(a.Pixels()))
	}
	if a.Texture() != nil {
		t.Error("expected no texture without a device")
	}
	if a.LineHeight() <= 0 || a.Ascender() <= 0 || a.Descender() >= 0 {
		t.Errorf("unexpected metrics: line %v asc %v desc %v", a.LineHeight(), a.Ascender(), a.Descender())
	}

	space, ok := a.Glyph(' ')
	if !ok {
		t.Fatal("space missing")
	}
	if space.Visible() || space.Advance <= 0 {
		t.Errorf("space: expected blank glyph with advance, got %+v", space)
	}

	for _, r := range a.Runes() {
		g, _ := a.Glyph(r)
		if !g.Visible() {
			continue
		}
		for _, v := range []float32{g.U0, g.V0, g.U1, g.V1} {
			if v < 0 || v > 1 {
				t.Errorf("%q: UV %v out of [0,1]", r, v)
			}
		}
		if g.U0 >= g.U1 || g.V0 >= g.V1 {
			t.Errorf("%q: degenerate UV rect %+v", r, g)
		}
		if g.Width <= 2*a.Spread() || g.Height <= 2*a.Spread() {
			t.Errorf("%q: cell %dx%d smaller than spread margin", r, g.Width, g.Height)
		}
	}
}

func TestGenerateCellsDoNotOverlap(t *testing.T) {
	a := generate(t, testBuilder(), Config{PixelSize: 24, AtlasSize: 512})

	var cells []GlyphInfo
	for _, r := range a.Runes() {
		if g, _ := a.Glyph(r); g.Visible() {
			cells = append(cells, g)
		}
	}
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			p, q := cells[i], cells[j]
			if p.X < q.X+q.Width && q.X < p.X+p.Width && p.Y < q.Y+q.Height && q.Y < p.Y+p.Height {
				t.Fatalf("cells overlap: %+v and %+v", p, q)
			}
		}
	}
}

func TestGenerateExtraAndMissing(t *testing.T) {
	a := generate(t, testBuilder(), Config{PixelSize: 24, AtlasSize: 512, Extra: []rune{'é', '\uE000'}})
	if _, ok := a.Glyph('é'); !ok {
		t.Error("expected extra codepoint é")
	}
	if _, ok := a.Glyph('\uE000'); ok {
		t.Error("expected codepoint missing from the font to be skipped")
	}
}

func TestGenerateOverflow(t *testing.T) {
	dev := &countingDevice{SoftwareDevice: render.NewSoftwareDevice()}
	_, err := testBuilder(WithDevice(dev)).Generate(raster.Family("Go"), Config{PixelSize: 64, AtlasSize: 64})
	if !errors.Is(err, ErrAtlasOverflow) {
		t.Fatalf("expected ErrAtlasOverflow, got %v", err)
	}
	var oe *OverflowError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *OverflowError, got %T", err)
	}
	if oe.Placed >= oe.Glyphs || oe.AtlasSize != 64 {
		t.Errorf("unexpected overflow report %+v", oe)
	}
	if dev.created != 0 {
		t.Errorf("expected no texture on overflow, %d created", dev.created)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{PixelSize: 20, AtlasSize: 512}
	a := generate(t, testBuilder(), cfg)
	b := generate(t, testBuilder(), cfg)

	if diff := cmp.Diff(a.Metadata(), b.Metadata()); diff != "" {
		t.Errorf("metadata differs (-first +second):\n%s", diff)
	}
	if !bytes.Equal(a.Pixels(), b.Pixels()) {
		t.Error("pixels differ between identical generations")
	}
}

func TestGenerateUpload(t *testing.T) {
	dev := render.NewSoftwareDevice()
	a := generate(t, testBuilder(WithDevice(dev)), Config{PixelSize: 16, AtlasSize: 512})

	tex := a.Texture()
	if tex == nil {
		t.Fatal("expected texture")
	}
	if tex.Width() != 512 || tex.Format() != render.AtlasTextureDescriptor("", 512).Format {
		t.Errorf("unexpected texture %dx%d %v", tex.Width(), tex.Height(), tex.Format())
	}
	a.Close()
	a.Close()
	if a.Texture() != nil {
		t.Error("expected texture released after Close")
	}
}

func TestGenerateUploadFailureReleasesTexture(t *testing.T) {
	dev := &countingDevice{SoftwareDevice: render.NewSoftwareDevice(), fail: true}
	_, err := testBuilder(WithDevice(dev)).Generate(raster.Family("Go"), Config{PixelSize: 16, AtlasSize: 512})
	if !errors.Is(err, errUploadFailed) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if dev.created != 1 || dev.destroyed != 1 {
		t.Errorf("expected the partial texture released: created %d destroyed %d", dev.created, dev.destroyed)
	}
}

// --- Cache and Metadata Tests ---

func TestGenerateCache(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{PixelSize: 20, AtlasSize: 512}

	first := generate(t, testBuilder(WithCacheDir(dir)), cfg)
	entries, err := filepath.Glob(filepath.Join(dir, "*"+cacheExt))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache entry, got %v (%v)", entries, err)
	}

	second := generate(t, testBuilder(WithCacheDir(dir)), cfg)
	if diff := cmp.Diff(first.Metadata(), second.Metadata()); diff != "" {
		t.Errorf("cached atlas differs (-built +cached):\n%s", diff)
	}
	if !bytes.Equal(first.Pixels(), second.Pixels()) {
		t.Error("cached pixels differ")
	}
}

func TestCacheMissAndCorrupt(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	if _, err := c.Load("missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := os.WriteFile(c.path("bad"), []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load("bad"); err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected decode error, got %v", err)
	}

	// A corrupt entry is rebuilt, not fatal.
	b := testBuilder(WithCacheDir(c.Dir()))
	if _, err := b.Generate(raster.Family("Go"), Config{PixelSize: 12, AtlasSize: 512}); err != nil {
		t.Errorf("Generate with cache dir failed: %v", err)
	}
}

func TestWriteMetadata(t *testing.T) {
	a := generate(t, testBuilder(), Config{PixelSize: 16, AtlasSize: 512})

	var buf bytes.Buffer
	if err := a.WriteMetadata(&buf); err != nil {
		t.Fatalf("WriteMetadata failed: %v", err)
	}
	var md Metadata
	if err := json.Unmarshal(buf.Bytes(), &md); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if md.Atlas.Type != "sdf" || md.Atlas.Width != 512 || md.Atlas.DistanceRange != 2*a.Spread() {
		t.Errorf("unexpected atlas section %+v", md.Atlas)
	}
	if len(md.Glyphs) != a.Len() {
		t.Errorf("expected %d glyphs, got %d", a.Len(), len(md.Glyphs))
	}
	if md.Glyphs[0].Unicode != ' ' || md.Glyphs[0].AtlasBounds != nil {
		t.Errorf("expected blank space glyph first, got %+v", md.Glyphs[0])
	}
	if !strings.Contains(buf.String(), `"yOrigin": "top"`) {
		t.Error("expected yOrigin in output")
	}
}

// --- Helpers ---

var errUploadFailed = errors.New("upload failed")

// countingDevice counts texture lifetimes and can fail uploads after the
// texture has been allocated.
type countingDevice struct {
	*render.SoftwareDevice
	fail      bool
	created   int
	destroyed int
}

func (d *countingDevice) CreateTexture(desc render.TextureDescriptor, data []byte) (render.Texture, error) {
	tex, err := d.SoftwareDevice.CreateTexture(desc, data)
	if err != nil {
		return nil, err
	}
	d.created++
	ct := &countedTexture{Texture: tex, dev: d}
	if d.fail {
		return ct, errUploadFailed
	}
	return ct, nil
}

type countedTexture struct {
	render.Texture
	dev *countingDevice
}

func (t *countedTexture) Destroy() {
	t.dev.destroyed++
	t.Texture.Destroy()
}
