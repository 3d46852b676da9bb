package atlas

import (
	"image"
	"slices"
	"sync"

	"github.com/gogpu/sdftext/render"
)

// GlyphInfo is the atlas record of one codepoint. Immutable once the
// atlas is built.
type GlyphInfo struct {
	// UV rectangle in normalized [0, 1] atlas coordinates.
	U0, V0, U1, V1 float32

	// X and Y are the top-left of the cell in atlas pixels.
	X, Y int

	// Width and Height are the cell size in pixels. Zero for blank
	// glyphs, which only advance the pen.
	Width, Height int

	// BearingX is the offset from the pen to the left edge of the cell.
	BearingX float32

	// BearingY is the distance from the baseline up to the top of the cell.
	BearingY float32

	// Advance is the pen movement after the glyph, in pixels.
	Advance float32
}

// Visible reports whether the glyph has a cell to draw.
func (g GlyphInfo) Visible() bool {
	return g.Width > 0 && g.Height > 0
}

// FontAtlas is a packed distance field atlas of one font at one size.
//
// FontAtlas is read-only after Generate and safe for concurrent reads.
// It exclusively owns its texture; Close releases it.
type FontAtlas struct {
	family    string
	pixelSize float64
	size      int
	spread    int

	pixels []byte // size*size R8 texels, row-major
	glyphs map[rune]GlyphInfo
	runes  []rune

	lineHeight float32
	ascender   float32
	descender  float32

	texture   render.Texture
	closeOnce sync.Once
}

// Glyph returns the record of r.
func (a *FontAtlas) Glyph(r rune) (GlyphInfo, bool) {
	g, ok := a.glyphs[r]
	return g, ok
}

// Runes returns the packed codepoints in ascending order.
func (a *FontAtlas) Runes() []rune {
	return slices.Clone(a.runes)
}

// Len returns the number of codepoints in the atlas.
func (a *FontAtlas) Len() int {
	return len(a.runes)
}

// Texture returns the GPU texture, or nil if the atlas was built without
// a device or has been closed.
func (a *FontAtlas) Texture() render.Texture {
	return a.texture
}

// Pixels returns the R8 atlas texels, row-major, Size()*Size() bytes.
// The slice must not be modified.
func (a *FontAtlas) Pixels() []byte {
	return a.pixels
}

// Image returns a copy of the atlas as a grayscale image.
func (a *FontAtlas) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, a.size, a.size))
	copy(img.Pix, a.pixels)
	return img
}

// Size returns the atlas width and height in pixels.
func (a *FontAtlas) Size() int { return a.size }

// Spread returns the distance field search radius used for the cells.
func (a *FontAtlas) Spread() int { return a.spread }

// PixelSize returns the rasterization size.
func (a *FontAtlas) PixelSize() float64 { return a.pixelSize }

// Family returns the font family name, if known.
func (a *FontAtlas) Family() string { return a.family }

// LineHeight returns the face line height in pixels.
func (a *FontAtlas) LineHeight() float32 { return a.lineHeight }

// Ascender returns the face ascender in pixels (positive).
func (a *FontAtlas) Ascender() float32 { return a.ascender }

// Descender returns the face descender in pixels (negative).
func (a *FontAtlas) Descender() float32 { return a.descender }

// Measure returns the sum of advances of the codepoints of s present in
// the atlas. Missing codepoints contribute nothing.
func (a *FontAtlas) Measure(s []rune) float32 {
	var w float32
	for _, r := range s {
		if g, ok := a.glyphs[r]; ok {
			w += g.Advance
		}
	}
	return w
}

// Close releases the GPU texture. Safe to call more than once.
func (a *FontAtlas) Close() {
	a.closeOnce.Do(func() {
		if a.texture != nil {
			a.texture.Destroy()
			a.texture = nil
		}
	})
}

// upload creates the atlas texture on dev. On failure the atlas keeps no
// texture and nothing is leaked.
func (a *FontAtlas) upload(dev render.Device, label string) error {
	tex, err := dev.CreateTexture(render.AtlasTextureDescriptor(label, a.size), a.pixels)
	if err != nil {
		if tex != nil {
			tex.Destroy()
		}
		return err
	}
	a.texture = tex
	return nil
}
