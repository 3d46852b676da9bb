package atlas

import (
	"encoding/json"
	"io"
)

// Metadata is the JSON description of an atlas, laid out like
// msdf-atlas-gen output so external tools can consume it. All values are
// in pixels; atlas bounds have their origin at the top-left.
type Metadata struct {
	Atlas   MetadataAtlas   `json:"atlas"`
	Metrics MetadataMetrics `json:"metrics"`
	Glyphs  []MetadataGlyph `json:"glyphs"`
}

// MetadataAtlas describes the texture.
type MetadataAtlas struct {
	Type          string  `json:"type"`
	DistanceRange int     `json:"distanceRange"`
	Size          float64 `json:"size"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	YOrigin       string  `json:"yOrigin"`
}

// MetadataMetrics holds the face metrics.
type MetadataMetrics struct {
	Family     string  `json:"family,omitempty"`
	EmSize     float64 `json:"emSize"`
	LineHeight float32 `json:"lineHeight"`
	Ascender   float32 `json:"ascender"`
	Descender  float32 `json:"descender"`
}

// MetadataRect is an axis-aligned rectangle.
type MetadataRect struct {
	Left   float32 `json:"left"`
	Top    float32 `json:"top"`
	Right  float32 `json:"right"`
	Bottom float32 `json:"bottom"`
}

// MetadataGlyph describes one codepoint. Bounds are omitted for blank
// glyphs.
type MetadataGlyph struct {
	Unicode     int32         `json:"unicode"`
	Advance     float32       `json:"advance"`
	PlaneBounds *MetadataRect `json:"planeBounds,omitempty"`
	AtlasBounds *MetadataRect `json:"atlasBounds,omitempty"`
}

// Metadata returns the JSON description of the atlas. Plane bounds are
// relative to the pen on the baseline, y growing down.
func (a *FontAtlas) Metadata() Metadata {
	md := Metadata{
		Atlas: MetadataAtlas{
			Type:          "sdf",
			DistanceRange: 2 * a.spread,
			Size:          a.pixelSize,
			Width:         a.size,
			Height:        a.size,
			YOrigin:       "top",
		},
		Metrics: MetadataMetrics{
			Family:     a.family,
			EmSize:     a.pixelSize,
			LineHeight: a.lineHeight,
			Ascender:   a.ascender,
			Descender:  a.descender,
		},
		Glyphs: make([]MetadataGlyph, 0, len(a.runes)),
	}
	for _, r := range a.runes {
		g := a.glyphs[r]
		mg := MetadataGlyph{Unicode: r, Advance: g.Advance}
		if g.Visible() {
			mg.PlaneBounds = &MetadataRect{
				Left:   g.BearingX,
				Top:    -g.BearingY,
				Right:  g.BearingX + float32(g.Width),
				Bottom: float32(g.Height) - g.BearingY,
			}
			mg.AtlasBounds = &MetadataRect{
				Left:   float32(g.X),
				Top:    float32(g.Y),
				Right:  float32(g.X + g.Width),
				Bottom: float32(g.Y + g.Height),
			}
		}
		md.Glyphs = append(md.Glyphs, mg)
	}
	return md
}

// WriteMetadata writes the indented JSON metadata to w.
func (a *FontAtlas) WriteMetadata(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a.Metadata())
}
