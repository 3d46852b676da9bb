package raster

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// GoText is a Source that reads glyph outlines with go-text/typesetting
// and scan converts them with golang.org/x/image/vector.
type GoText struct {
	resolver *Resolver
}

// NewGoText creates a go-text source. A nil resolver uses DefaultResolver.
func NewGoText(r *Resolver) *GoText {
	return &GoText{resolver: r}
}

// Open implements Source.
func (s *GoText) Open(ref FontRef, pixelSize float64) (Face, error) {
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

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, &FontLoadError{Ref: ref, Err: fmt.Errorf("parse: %w", err)}
	}
	upem := float32(face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	scale := float32(pixelSize) / upem

	gf := &gotextFace{face: face, scale: scale, data: data}
	if ext, ok := face.FontHExtents(); ok {
		gf.metrics = FaceMetrics{
			Ascender:   ext.Ascender * scale,
			Descender:  ext.Descender * scale,
			LineHeight: (ext.Ascender - ext.Descender + ext.LineGap) * scale,
		}
	} else {
		gf.metrics = FaceMetrics{
			Ascender:   0.8 * float32(pixelSize),
			Descender:  -0.2 * float32(pixelSize),
			LineHeight: float32(pixelSize),
		}
	}
	gf.family = face.Describe().Family
	return gf, nil
}

type gotextFace struct {
	face    *font.Face
	scale   float32
	data    []byte
	family  string
	metrics FaceMetrics
}

// segmentArgs is the number of points used by each segment op.
func segmentArgs(op opentype.SegmentOp) int {
	switch op {
	case opentype.SegmentOpQuadTo:
		return 2
	case opentype.SegmentOpCubeTo:
		return 3
	}
	return 1
}

func (f *gotextFace) Rasterize(r rune) (*Glyph, error) {
	gid, ok := f.face.NominalGlyph(r)
	if !ok || gid == 0 {
		return nil, ErrGlyphNotFound
	}
	g := &Glyph{
		Rune:    r,
		Advance: f.face.HorizontalAdvance(gid) * f.scale,
	}

	outline, ok := f.face.GlyphData(gid).(font.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		g.Mask = image.NewAlpha(image.Rectangle{})
		return g, nil
	}

	// Control points bound the curves, so their box is a safe mask size.
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, seg := range outline.Segments {
		for i := 0; i < segmentArgs(seg.Op); i++ {
			x, y := seg.Args[i].X*f.scale, -seg.Args[i].Y*f.scale
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	x0, y0 := int(math.Floor(float64(minX))), int(math.Floor(float64(minY)))
	x1, y1 := int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY)))
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		g.Mask = image.NewAlpha(image.Rectangle{})
		return g, nil
	}

	ox, oy := float32(x0), float32(y0)
	pt := func(p opentype.SegmentPoint) (float32, float32) {
		return p.X*f.scale - ox, -p.Y*f.scale - oy
	}

	z := vector.NewRasterizer(w, h)
	started := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			if started {
				z.ClosePath()
			}
			z.MoveTo(pt(seg.Args[0]))
			started = true
		case opentype.SegmentOpLineTo:
			z.LineTo(pt(seg.Args[0]))
		case opentype.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case opentype.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		z.ClosePath()
	}

	g.Mask = image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(g.Mask, g.Mask.Bounds(), image.Opaque, image.Point{})
	g.BearingX = x0
	g.BearingY = -y0
	return g, nil
}

func (f *gotextFace) Metrics() FaceMetrics { return f.metrics }
func (f *gotextFace) Family() string       { return f.family }
func (f *gotextFace) Data() []byte         { return f.data }
func (f *gotextFace) Close() error         { return nil }
