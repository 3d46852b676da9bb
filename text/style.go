package text

import (
	"fmt"

	"github.com/gogpu/sdftext/render"
)

// Style selects the shading of subsequently drawn text.
type Style int

const (
	// Standard is a clean distance field fill with an optional glow.
	Standard Style = iota

	// Neon draws lit tubes: a whitened core, a pulsing glow and an
	// emphasized outline.
	Neon

	// Title adds an outline and glow around the fill, with softness
	// for cinematic edges.
	Title
)

// Variant returns the shader variant the style draws with, or
// render.VariantUnknown for a style outside the defined set.
func (s Style) Variant() render.ShaderVariant {
	switch s {
	case Standard:
		return render.VariantStandard
	case Neon:
		return render.VariantNeon
	case Title:
		return render.VariantTitle
	}
	return render.VariantUnknown
}

func (s Style) String() string {
	switch s {
	case Standard:
		return "standard"
	case Neon:
		return "neon"
	case Title:
		return "title"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle parses a style name as returned by String.
func ParseStyle(name string) (Style, error) {
	for _, s := range []Style{Standard, Neon, Title} {
		if s.String() == name {
			return s, nil
		}
	}
	return Standard, fmt.Errorf("text: unknown style %q", name)
}

// Align is the horizontal alignment of a string around its x position.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// offset returns the pen start relative to x for a string of width w.
func (a Align) offset(w float32) float32 {
	switch a {
	case AlignCenter:
		return -w / 2
	case AlignRight:
		return -w
	default:
		return 0
	}
}

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign parses an alignment name as returned by String.
func ParseAlign(name string) (Align, error) {
	for _, a := range []Align{AlignLeft, AlignCenter, AlignRight} {
		if a.String() == name {
			return a, nil
		}
	}
	return AlignLeft, fmt.Errorf("text: unknown alignment %q", name)
}
