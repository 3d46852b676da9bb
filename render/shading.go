// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "math"

// minEdgeWidth is the narrowest edge transition in distance units, used
// when Softness is zero. It matches about one texel at spread 4.
const minEdgeWidth = 0.03

// Shade evaluates the fragment shader of variant for a sampled distance
// d (0.5 at the glyph edge, above inside) and a straight-alpha vertex
// color. It returns premultiplied RGBA. This is the reference of the
// fs_* entry points in sdf_text.wgsl and is used by SoftwareDevice.
func Shade(variant ShaderVariant, d float32, color [4]float32, u *Uniforms) [4]float32 {
	aa := max(u.Softness, minEdgeWidth)
	fill := smoothstep(0.5-aa, 0.5+aa, d)
	light := u.LightIntensity
	body := layer([3]float32{color[0] * light, color[1] * light, color[2] * light}, color[3]*fill)

	switch variant {
	case VariantNeon:
		pulse := float32(0.85 + 0.15*math.Sin(float64(u.Time)*4))
		edge := 0.5 - u.OutlineWidth
		ring := smoothstep(edge-aa, edge+aa, d)
		glow := glowFalloff(d, edge, u.GlowRadius) * u.GlowIntensity * pulse
		// The core is pushed toward white so the tube reads as lit.
		core := [3]float32{
			lerp(color[0], 1, 0.35*light),
			lerp(color[1], 1, 0.35*light),
			lerp(color[2], 1, 0.35*light),
		}
		out := layer(rgb(u.GlowColor), u.GlowColor[3]*min(glow, 1)*(1-ring))
		out = over(layer(rgb(u.OutlineColor), u.OutlineColor[3]*ring*light), out)
		return over(layer(core, color[3]*fill), out)

	case VariantTitle:
		edge := 0.5 - u.OutlineWidth
		ring := smoothstep(edge-aa, edge+aa, d)
		glow := glowFalloff(d, edge, u.GlowRadius) * u.GlowIntensity
		out := layer(rgb(u.GlowColor), u.GlowColor[3]*min(glow, 1)*(1-ring))
		out = over(layer(rgb(u.OutlineColor), u.OutlineColor[3]*ring), out)
		return over(body, out)

	default:
		glow := glowFalloff(d, 0.5, u.GlowRadius) * u.GlowIntensity
		out := layer(rgb(u.GlowColor), u.GlowColor[3]*min(glow, 1)*(1-fill))
		return over(body, out)
	}
}

// glowFalloff ramps from 0 at edge-radius to 1 at edge.
func glowFalloff(d, edge, radius float32) float32 {
	if radius <= 0 {
		return 0
	}
	return smoothstep(edge-radius, edge, d)
}

func smoothstep(e0, e1, x float32) float32 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	t = min(max(t, 0), 1)
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*min(max(t, 0), 1)
}

func rgb(c [4]float32) [3]float32 {
	return [3]float32{c[0], c[1], c[2]}
}

// layer premultiplies a color by coverage alpha a.
func layer(c [3]float32, a float32) [4]float32 {
	a = min(max(a, 0), 1)
	return [4]float32{c[0] * a, c[1] * a, c[2] * a, a}
}

// over composites premultiplied src over dst.
func over(src, dst [4]float32) [4]float32 {
	k := 1 - src[3]
	return [4]float32{
		src[0] + dst[0]*k,
		src[1] + dst[1]*k,
		src[2] + dst[2]*k,
		src[3] + dst[3]*k,
	}
}
