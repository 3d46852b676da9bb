package raster

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// Glyph is the coverage mask and pixel metrics of one codepoint.
type Glyph struct {
	Rune rune

	// Mask holds coverage in [0, 255], origin at (0, 0). Blank glyphs
	// such as space have an empty mask.
	Mask *image.Alpha

	// BearingX is the offset from the pen to the left edge of the mask.
	BearingX int

	// BearingY is the distance from the baseline up to the top of the mask.
	BearingY int

	// Advance is the pen movement after the glyph, in pixels.
	Advance float32
}

// Width returns the mask width in pixels.
func (g *Glyph) Width() int {
	if g.Mask == nil {
		return 0
	}
	return g.Mask.Rect.Dx()
}

// Height returns the mask height in pixels.
func (g *Glyph) Height() int {
	if g.Mask == nil {
		return 0
	}
	return g.Mask.Rect.Dy()
}

// Covered reports whether the mask pixel at (x, y) is inside the glyph
// silhouette (coverage of at least one half).
func (g *Glyph) Covered(x, y int) bool {
	if g.Mask == nil || x < 0 || y < 0 || x >= g.Width() || y >= g.Height() {
		return false
	}
	return g.Mask.Pix[y*g.Mask.Stride+x] >= 128
}

// FaceMetrics holds face-wide line metrics in pixels.
type FaceMetrics struct {
	// Ascender is the distance above the baseline (positive).
	Ascender float32

	// Descender is the distance below the baseline (negative).
	Descender float32

	// LineHeight is the recommended baseline-to-baseline distance.
	LineHeight float32
}

// Face rasterizes glyphs of one font at one pixel size.
// A Face is not safe for concurrent use.
type Face interface {
	// Rasterize returns the coverage mask of r, or ErrGlyphNotFound.
	Rasterize(r rune) (*Glyph, error)

	// Metrics returns the face line metrics as reported by the font.
	Metrics() FaceMetrics

	// Family returns the font family name, if the font declares one.
	Family() string

	// Data returns the raw font file the face was opened from.
	Data() []byte

	Close() error
}

// Source opens faces. Open fails with *FontLoadError when the font
// cannot be found, read or parsed.
type Source interface {
	Open(ref FontRef, pixelSize float64) (Face, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Source{}
)

// DefaultSourceName is the name of the default rasterizer backend.
const DefaultSourceName = "ximage"

func init() {
	RegisterSource("ximage", NewXImage(nil))
	RegisterSource("gotext", NewGoText(nil))
}

// RegisterSource registers a rasterizer backend under name, replacing any
// previous registration.
func RegisterSource(name string, s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = s
}

// LookupSource returns the backend registered under name.
func LookupSource(name string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if s, ok := registry[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("raster: unknown source %q", name)
}

// Sources returns the registered backend names, sorted.
func Sources() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the default backend.
func Default() Source {
	s, _ := LookupSource(DefaultSourceName)
	return s
}
