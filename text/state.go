package text

import (
	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/render"
)

// State is the render context applied to subsequently drawn text.
// It is a value: save it with Renderer.State and restore it with
// Renderer.SetState.
type State struct {
	// Color is the text fill color.
	Color sdftext.Color

	GlowColor    sdftext.Color
	OutlineColor sdftext.Color

	// GlowIntensity scales the glow, 0 disables it.
	GlowIntensity float32

	// GlowRadius is the glow reach in distance field units (0..0.5).
	GlowRadius float32

	// OutlineWidth is the outline band width in distance field units.
	OutlineWidth float32

	// Softness widens edges in distance field units.
	Softness float32

	// LightIntensity dims the fill and outline, 0 is unlit and 1 is
	// fully lit.
	LightIntensity float32

	// Time drives animated styles, in seconds.
	Time float32

	// Scale multiplies glyph geometry and advances.
	Scale float32

	Style Style
	Align Align
}

// DefaultState returns white, unscaled, left-aligned standard text.
func DefaultState() State {
	return State{
		Color:          sdftext.White,
		GlowColor:      sdftext.RGB(0.3, 0.6, 1),
		OutlineColor:   sdftext.Black,
		GlowIntensity:  0.5,
		GlowRadius:     0.25,
		OutlineWidth:   0.1,
		LightIntensity: 1,
		Scale:          1,
		Style:          Standard,
		Align:          AlignLeft,
	}
}

// resolvedStyle is everything that selects the pipeline and uniform
// block of a draw call. Two glyphs share a batch only if their resolved
// styles are equal.
type resolvedStyle struct {
	variant       render.ShaderVariant
	glowColor     [4]float32
	outlineColor  [4]float32
	glowIntensity float32
	glowRadius    float32
	outlineWidth  float32
	softness      float32
	light         float32
	time          float32
}

func (s *State) resolve() resolvedStyle {
	return resolvedStyle{
		variant:       s.Style.Variant(),
		glowColor:     s.GlowColor.Array(),
		outlineColor:  s.OutlineColor.Array(),
		glowIntensity: s.GlowIntensity,
		glowRadius:    s.GlowRadius,
		outlineWidth:  s.OutlineWidth,
		softness:      s.Softness,
		light:         s.LightIntensity,
		time:          s.Time,
	}
}

// uniforms returns the uniform block of s for a width x height viewport.
func (s resolvedStyle) uniforms(projection [16]float32, width, height int) render.Uniforms {
	return render.Uniforms{
		Projection:     projection,
		GlowColor:      s.glowColor,
		OutlineColor:   s.outlineColor,
		Time:           s.time,
		GlowIntensity:  s.glowIntensity,
		GlowRadius:     s.glowRadius,
		OutlineWidth:   s.outlineWidth,
		Softness:       s.softness,
		LightIntensity: s.light,
		Resolution:     [2]float32{float32(width), float32(height)},
	}
}

// State returns the current render context.
func (r *Renderer) State() State { return r.state }

// SetState replaces the render context.
func (r *Renderer) SetState(s State) { r.state = s }

// SetColor sets the text color.
func (r *Renderer) SetColor(c sdftext.Color) { r.state.Color = c }

// SetGlowColor sets the glow color.
func (r *Renderer) SetGlowColor(c sdftext.Color) { r.state.GlowColor = c }

// SetOutlineColor sets the outline color.
func (r *Renderer) SetOutlineColor(c sdftext.Color) { r.state.OutlineColor = c }

// SetGlowIntensity sets the glow intensity.
func (r *Renderer) SetGlowIntensity(v float32) { r.state.GlowIntensity = v }

// SetGlowRadius sets the glow radius in distance field units.
func (r *Renderer) SetGlowRadius(v float32) { r.state.GlowRadius = v }

// SetOutlineWidth sets the outline width in distance field units.
func (r *Renderer) SetOutlineWidth(v float32) { r.state.OutlineWidth = v }

// SetSoftness sets the edge softness in distance field units.
func (r *Renderer) SetSoftness(v float32) { r.state.Softness = v }

// SetLightIntensity sets the light intensity, 0 (unlit) to 1 (lit).
func (r *Renderer) SetLightIntensity(v float32) { r.state.LightIntensity = v }

// SetTime sets the animation time in seconds.
func (r *Renderer) SetTime(t float32) { r.state.Time = t }

// SetScale sets the geometry scale.
func (r *Renderer) SetScale(v float32) { r.state.Scale = v }

// SetStyle sets the shading style.
func (r *Renderer) SetStyle(s Style) { r.state.Style = s }

// SetAlignment sets the horizontal alignment.
func (r *Renderer) SetAlignment(a Align) { r.state.Align = a }
