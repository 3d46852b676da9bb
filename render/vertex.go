// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"
)

// Vertex is one corner of a glyph quad. Matches VertexInput in
// sdf_text.wgsl:
//
//	location 0: position  (vec2<f32>) offset 0
//	location 1: tex_coord (vec2<f32>) offset 8
//	location 2: color     (vec4<f32>) offset 16
type Vertex struct {
	// Position in target pixels, y down.
	Position [2]float32

	// TexCoord is the normalized atlas coordinate.
	TexCoord [2]float32

	// Color is the straight-alpha text color.
	Color [4]float32
}

// VertexStride is the byte size of an encoded Vertex.
const VertexStride = 32

// Quad geometry sizes.
const (
	VerticesPerQuad = 4
	IndicesPerQuad  = 6
)

// MaxQuadsPerDraw is the largest quad count addressable with 16-bit indices.
const MaxQuadsPerDraw = 65536 / VerticesPerQuad

// EncodeVertices appends the little-endian GPU encoding of vs to dst.
func EncodeVertices(dst []byte, vs []Vertex) []byte {
	for i := range vs {
		v := &vs[i]
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Position[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Position[1]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.TexCoord[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.TexCoord[1]))
		for _, c := range v.Color {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(c))
		}
	}
	return dst
}

// AppendQuadIndices appends the indices of quads [first, first+n) using
// the pattern 0,1,2, 2,3,0 for each quad.
func AppendQuadIndices(dst []uint16, first, n int) []uint16 {
	for i := first; i < first+n; i++ {
		v := uint16(i * VerticesPerQuad) //nolint:gosec // bounded by MaxQuadsPerDraw
		dst = append(dst, v, v+1, v+2, v+2, v+3, v)
	}
	return dst
}

// EncodeIndices appends the little-endian encoding of idx to dst, padded
// to a multiple of 4 bytes as buffer writes require.
func EncodeIndices(dst []byte, idx []uint16) []byte {
	for _, i := range idx {
		dst = binary.LittleEndian.AppendUint16(dst, i)
	}
	if len(idx)%2 == 1 {
		dst = append(dst, 0, 0)
	}
	return dst
}

// ValidateGeometry checks that indices form whole triangles that reference
// existing vertices.
func ValidateGeometry(vertices []Vertex, indices []uint16) error {
	if len(indices)%3 != 0 || len(vertices) > 65536 {
		return ErrInvalidGeometry
	}
	n := len(vertices)
	for _, i := range indices {
		if int(i) >= n {
			return ErrInvalidGeometry
		}
	}
	return nil
}
