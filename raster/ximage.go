package raster

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// XImage is a Source backed by golang.org/x/image/font/opentype.
type XImage struct {
	resolver *Resolver
}

// NewXImage creates an x/image source. A nil resolver uses DefaultResolver.
func NewXImage(r *Resolver) *XImage {
	return &XImage{resolver: r}
}

// Open implements Source.
func (s *XImage) Open(ref FontRef, pixelSize float64) (Face, error) {
	if pixelSize <= 0 {
		return nil, ErrInvalidSize
	}
	res := s.resolver
	if res == nil {
		res = DefaultResolver()
	}
	data, err := res.Load(ref)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &FontLoadError{Ref: ref, Err: fmt.Errorf("parse: %w", err)}
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pixelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &FontLoadError{Ref: ref, Err: fmt.Errorf("new face: %w", err)}
	}

	xf := &ximageFace{font: f, face: face, data: data}
	ppem := fixed.Int26_6(pixelSize * 64)
	if m, err := f.Metrics(&xf.buf, ppem, font.HintingFull); err == nil {
		xf.metrics = FaceMetrics{
			Ascender:   fixedToFloat32(m.Ascent),
			Descender:  -fixedToFloat32(m.Descent),
			LineHeight: fixedToFloat32(m.Height),
		}
	}
	if name, err := f.Name(&xf.buf, sfnt.NameIDFamily); err == nil {
		xf.family = name
	}
	return xf, nil
}

type ximageFace struct {
	font    *opentype.Font
	face    font.Face
	buf     sfnt.Buffer
	data    []byte
	family  string
	metrics FaceMetrics
}

func (f *ximageFace) Rasterize(r rune) (*Glyph, error) {
	idx, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil || idx == 0 {
		return nil, ErrGlyphNotFound
	}
	bounds, advance, ok := f.face.GlyphBounds(r)
	if !ok {
		return nil, ErrGlyphNotFound
	}

	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	g := &Glyph{
		Rune:     r,
		BearingX: minX,
		BearingY: -minY,
		Advance:  fixedToFloat32(advance),
	}
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		g.Mask = image.NewAlpha(image.Rectangle{})
		g.BearingX, g.BearingY = 0, 0
		return g, nil
	}

	g.Mask = image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  g.Mask,
		Src:  image.White,
		Face: f.face,
		Dot:  fixed.Point26_6{X: fixed.I(-minX), Y: fixed.I(-minY)},
	}
	d.DrawString(string(r))
	return g, nil
}

func (f *ximageFace) Metrics() FaceMetrics { return f.metrics }
func (f *ximageFace) Family() string       { return f.family }
func (f *ximageFace) Data() []byte         { return f.data }
func (f *ximageFace) Close() error         { return f.face.Close() }

func fixedToFloat32(x fixed.Int26_6) float32 {
	return float32(x) / 64
}
