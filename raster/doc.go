// Package raster resolves fonts and rasterizes glyphs to coverage masks.
//
// A [FontRef] names a font either by family ("Go", "Go Mono", or any
// installed system family) or by file path. A [Source] opens a [Face] at a
// pixel size; the face turns codepoints into [Glyph] coverage masks with
// pixel metrics. Two backends are provided:
//
//   - "ximage": golang.org/x/image/font/opentype (default)
//   - "gotext": go-text/typesetting outlines scanned with golang.org/x/image/vector
//
// Backends are registered by name; see [RegisterSource] and [LookupSource].
//
// Coordinates follow the text convention used by the rest of sdftext:
// masks are y-down, BearingY is the distance from the baseline up to the
// top row of the mask.
package raster
