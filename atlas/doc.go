// Package atlas builds signed distance field glyph atlases.
//
// For every codepoint of a charset the builder asks a raster.Face for a
// coverage mask, converts it to a single-channel distance field cell and
// packs the cells into one square texture with a shelf packer. The
// resulting [FontAtlas] maps codepoints to normalized UV rectangles and
// pixel metrics, and owns the GPU texture the cells were uploaded to.
//
// # Distance encoding
//
// A cell is the glyph mask grown by Spread pixels on every side. Each
// cell texel stores
//
//	0.5 + sign * distance / (2 * Spread)
//
// clamped to [0, 1], where distance is the Euclidean distance to the
// nearest texel of opposite coverage found within Spread pixels, and sign
// is +1 inside the silhouette and -1 outside. Values above 0.5 are inside.
//
// # Metrics
//
// GlyphInfo.Width and Height are the cell size, so BearingX and BearingY
// already include the Spread margin: drawing the cell at pen+bearing puts
// the silhouette exactly where the rasterizer placed it. Advances and
// face metrics are carried through from the rasterizer unchanged.
//
// # Example
//
//	b := atlas.NewBuilder(atlas.WithDevice(dev))
//	fa, err := b.Generate(raster.Family("Go"), atlas.Config{PixelSize: 64})
//	if err != nil {
//	    return err
//	}
//	defer fa.Close()
//	g, ok := fa.Glyph('A')
package atlas
