// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"
)

// UniformSize is the byte size of the encoded uniform block.
// Layout (std140-compatible, matches Uniforms in sdf_text.wgsl):
//
//	projection    mat4x4<f32>  offset 0
//	glow_color    vec4<f32>    offset 64
//	outline_color vec4<f32>    offset 80
//	params0       vec4<f32>    offset 96   time, glow_intensity, glow_radius, outline_width
//	params1       vec4<f32>    offset 112  softness, light_intensity, resolution.xy
const UniformSize = 128

// Uniforms holds per-draw shader parameters. One snapshot is taken per
// batch flush. Uniforms is comparable; two flushes with equal Uniforms
// shade identically.
type Uniforms struct {
	// Projection maps target pixels to clip space, column-major.
	Projection [16]float32

	GlowColor    [4]float32
	OutlineColor [4]float32

	Time float32

	// GlowIntensity scales the glow contribution, 0 disables it.
	GlowIntensity float32

	// GlowRadius is the glow reach in distance field units (0..0.5).
	GlowRadius float32

	// OutlineWidth is the outline band width in distance field units.
	OutlineWidth float32

	// Softness widens the edge transition in distance field units.
	Softness float32

	LightIntensity float32
	Resolution     [2]float32
}

// Ortho returns a column-major orthographic projection mapping
// x in [0, width] to [-1, 1] and y in [0, height] to [1, -1].
func Ortho(width, height float32) [16]float32 {
	var m [16]float32
	if width <= 0 || height <= 0 {
		return m
	}
	m[0] = 2 / width
	m[5] = -2 / height
	m[10] = 1
	m[12] = -1
	m[13] = 1
	m[15] = 1
	return m
}

// Project transforms a point by the column-major matrix m and returns
// clip space x and y.
func Project(m *[16]float32, x, y float32) (float32, float32) {
	cx := m[0]*x + m[4]*y + m[12]
	cy := m[1]*x + m[5]*y + m[13]
	w := m[3]*x + m[7]*y + m[15]
	if w != 0 && w != 1 {
		cx /= w
		cy /= w
	}
	return cx, cy
}

// Bytes returns the little-endian GPU encoding of u.
func (u *Uniforms) Bytes() []byte {
	buf := make([]byte, 0, UniformSize)
	put := func(vs ...float32) {
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	put(u.Projection[:]...)
	put(u.GlowColor[:]...)
	put(u.OutlineColor[:]...)
	put(u.Time, u.GlowIntensity, u.GlowRadius, u.OutlineWidth)
	put(u.Softness, u.LightIntensity, u.Resolution[0], u.Resolution[1])
	return buf
}
