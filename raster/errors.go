package raster

import "errors"

// Sentinel errors for raster package.
var (
	// ErrFontNotFound is returned when a family name or path does not
	// resolve to a font file.
	ErrFontNotFound = errors.New("raster: font not found")

	// ErrGlyphNotFound is returned by Face.Rasterize when the font has no
	// glyph for the requested codepoint. Callers skip such codepoints.
	ErrGlyphNotFound = errors.New("raster: glyph not found")

	// ErrEmptyFontData is returned when a font file is empty.
	ErrEmptyFontData = errors.New("raster: empty font data")

	// ErrInvalidSize is returned when a face is opened with a non-positive
	// pixel size.
	ErrInvalidSize = errors.New("raster: invalid pixel size")
)

// FontLoadError reports a font that could not be found, read or parsed.
type FontLoadError struct {
	Ref FontRef
	Err error
}

func (e *FontLoadError) Error() string {
	return "raster: load font " + e.Ref.String() + ": " + e.Err.Error()
}

func (e *FontLoadError) Unwrap() error {
	return e.Err
}
