// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdftext"
)

func TestOrthoProject(t *testing.T) {
	m := Ortho(800, 600)
	tests := []struct {
		x, y   float32
		cx, cy float32
	}{
		{0, 0, -1, 1},
		{800, 600, 1, -1},
		{400, 300, 0, 0},
	}
	for _, tt := range tests {
		cx, cy := Project(&m, tt.x, tt.y)
		if math.Abs(float64(cx-tt.cx)) > 1e-6 || math.Abs(float64(cy-tt.cy)) > 1e-6 {
			t.Errorf("Project(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, cx, cy, tt.cx, tt.cy)
		}
	}
	if z := Ortho(0, 10); z != ([16]float32{}) {
		t.Errorf("expected zero matrix for empty viewport, got %v", z)
	}
}

func TestUniformBytesLayout(t *testing.T) {
	u := Uniforms{
		Projection:     Ortho(100, 50),
		GlowColor:      [4]float32{0.1, 0.2, 0.3, 0.4},
		OutlineColor:   [4]float32{1, 0, 0, 1},
		Time:           2.5,
		GlowIntensity:  0.8,
		GlowRadius:     0.25,
		OutlineWidth:   0.1,
		Softness:       0.05,
		LightIntensity: 1.5,
		Resolution:     [2]float32{100, 50},
	}
	b := u.Bytes()
	if len(b) != UniformSize {
		t.Fatalf("expected %d bytes, got %d", UniformSize, len(b))
	}
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	checks := []struct {
		off  int
		want float32
	}{
		{0, 2.0 / 100},
		{64, 0.1},
		{80, 1},
		{96, 2.5},
		{100, 0.8},
		{104, 0.25},
		{108, 0.1},
		{112, 0.05},
		{116, 1.5},
		{120, 100},
		{124, 50},
	}
	for _, c := range checks {
		if got := f(c.off); got != c.want {
			t.Errorf("offset %d = %v, want %v", c.off, got, c.want)
		}
	}
}

func TestEncodeVertices(t *testing.T) {
	v := []Vertex{{Position: [2]float32{1, 2}, TexCoord: [2]float32{0.25, 0.5}, Color: [4]float32{1, 0, 0, 1}}}
	b := EncodeVertices(nil, v)
	if len(b) != VertexStride {
		t.Fatalf("expected %d bytes, got %d", VertexStride, len(b))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[8:])); got != 0.25 {
		t.Errorf("tex_coord.x = %v, want 0.25", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[28:])); got != 1 {
		t.Errorf("color.a = %v, want 1", got)
	}
}

func TestAppendQuadIndices(t *testing.T) {
	idx := AppendQuadIndices(nil, 0, 2)
	want := []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	if len(idx) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(idx))
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Errorf("index %d = %d, want %d", i, idx[i], want[i])
		}
	}
	if b := EncodeIndices(nil, []uint16{1, 2, 3}); len(b) != 8 {
		t.Errorf("expected odd index count padded to 8 bytes, got %d", len(b))
	}
}

func TestShadeVariants(t *testing.T) {
	u := &Uniforms{
		GlowColor:      [4]float32{0, 1, 0, 1},
		OutlineColor:   [4]float32{0, 0, 1, 1},
		GlowIntensity:  1,
		GlowRadius:     0.3,
		OutlineWidth:   0.1,
		LightIntensity: 1,
	}
	white := [4]float32{1, 1, 1, 1}
	for _, v := range Variants() {
		in := Shade(v, 1, white, u)
		if in[3] < 0.99 {
			t.Errorf("%v: expected opaque inside, got alpha %v", v, in[3])
		}
		out := Shade(v, 0, white, u)
		if out[3] != 0 {
			t.Errorf("%v: expected transparent far outside, got alpha %v", v, out[3])
		}
		edge := Shade(v, 0.5, white, u)
		if edge[3] <= 0 || edge[3] > 1 {
			t.Errorf("%v: expected partial coverage at the edge, got alpha %v", v, edge[3])
		}
	}

	none := *u
	none.GlowIntensity = 0
	if c := Shade(VariantStandard, 0.4, white, &none); c[3] != 0 {
		t.Errorf("expected no glow with zero intensity, got %v", c)
	}
	if c := Shade(VariantStandard, 0.4, white, u); c[1] <= 0 {
		t.Errorf("expected green glow outside the edge, got %v", c)
	}
	if c := Shade(VariantTitle, 0.45, white, u); c[2] <= c[0] {
		t.Errorf("expected blue outline band to dominate just outside the edge, got %v", c)
	}
}

func TestVariantStrings(t *testing.T) {
	for _, v := range Variants() {
		if v.FragmentEntryPoint() == "" {
			t.Errorf("%v has no entry point", v)
		}
	}
	if ShaderVariant(7).Valid() {
		t.Error("variant 7 should be invalid")
	}
	if s := ShaderVariant(7).String(); s != "ShaderVariant(7)" {
		t.Errorf("unexpected string %q", s)
	}
}

func TestPipelineError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&PipelineError{Variant: VariantNeon, Err: cause})
	if !errors.Is(err, ErrPipeline) || !errors.Is(err, cause) {
		t.Errorf("PipelineError should match ErrPipeline and its cause")
	}
	if err.Error() != "render: create neon pipeline: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestPixmapTargetReadPixelsUnpremultiplies(t *testing.T) {
	target := NewPixmapTarget(1, 1)
	target.Clear(sdftext.RGBA(1, 0, 0, 0.5))
	px := make([]byte, 4)
	if err := target.ReadPixels(px); err != nil {
		t.Fatal(err)
	}
	if px[0] != 255 || px[3] != 128 {
		t.Errorf("expected straight red at half alpha, got %v", px)
	}
	if err := target.ReadPixels(make([]byte, 2)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize for short buffer, got %v", err)
	}
	if target.Format() != gputypes.TextureFormatRGBA8Unorm || target.TextureView() != nil {
		t.Error("unexpected pixmap target format or view")
	}
}

func TestBytesPerPixel(t *testing.T) {
	if BytesPerPixel(gputypes.TextureFormatR8Unorm) != 1 || BytesPerPixel(gputypes.TextureFormatRGBA8Unorm) != 4 {
		t.Error("unexpected texel sizes")
	}
}

func TestNullDeviceHandle(t *testing.T) {
	var h DeviceHandle = NullDeviceHandle{}
	if h.Device() != nil || h.Queue() != nil || h.Adapter() != nil {
		t.Error("NullDeviceHandle should return nil objects")
	}
}
