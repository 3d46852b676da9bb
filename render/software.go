// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdftext"
)

// maxSoftwareTextureSize bounds software textures and targets.
const maxSoftwareTextureSize = 16384

// SoftwareDevice is a CPU implementation of Device.
//
// Triangles are scan converted at pixel centers with a top-left fill
// rule, textures are sampled bilinearly with clamp-to-edge addressing,
// and fragments are shaded with Shade and blended source-over into
// premultiplied RGBA8 targets. Output is deterministic.
//
// Example:
//
//	dev := render.NewSoftwareDevice()
//	target, _ := dev.CreateTarget(800, 600)
//	pass, _ := dev.BeginPass(target, &sdftext.Transparent)
//	_ = pass.Draw(pipeline, atlasTexture, vertices, indices, &uniforms)
//	_ = pass.End()
type SoftwareDevice struct {
	destroyed bool
	drawCalls int
}

// NewSoftwareDevice creates a CPU device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// DrawCalls returns the number of draw calls recorded since creation.
func (d *SoftwareDevice) DrawCalls() int {
	return d.drawCalls
}

type softwareTexture struct {
	owner     *SoftwareDevice
	desc      TextureDescriptor
	pix       []byte
	bpp       int
	destroyed bool
}

func (t *softwareTexture) Width() uint32                  { return t.desc.Width }
func (t *softwareTexture) Height() uint32                 { return t.desc.Height }
func (t *softwareTexture) Format() gputypes.TextureFormat { return t.desc.Format }

func (t *softwareTexture) Destroy() {
	t.destroyed = true
	t.pix = nil
}

// sample returns the bilinearly filtered first channel at (u, v).
func (t *softwareTexture) sample(u, v float32) float32 {
	w, h := int(t.desc.Width), int(t.desc.Height)
	x := u*float32(w) - 0.5
	y := v*float32(h) - 0.5
	x0f, y0f := float32(math.Floor(float64(x))), float32(math.Floor(float64(y)))
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)

	at := func(px, py int) float32 {
		px = min(max(px, 0), w-1)
		py = min(max(py, 0), h-1)
		return float32(t.pix[(py*w+px)*t.bpp]) / 255
	}
	top := at(x0, y0)*(1-fx) + at(x0+1, y0)*fx
	bottom := at(x0, y0+1)*(1-fx) + at(x0+1, y0+1)*fx
	return top*(1-fy) + bottom*fy
}

type softwarePipeline struct {
	owner   *SoftwareDevice
	variant ShaderVariant
}

func (p *softwarePipeline) Variant() ShaderVariant { return p.variant }
func (p *softwarePipeline) Destroy()               {}

// CreateTexture implements Device.
func (d *SoftwareDevice) CreateTexture(desc TextureDescriptor, data []byte) (Texture, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if desc.Width == 0 || desc.Height == 0 || desc.Width > maxSoftwareTextureSize || desc.Height > maxSoftwareTextureSize {
		return nil, fmt.Errorf("%w: texture %dx%d", ErrInvalidSize, desc.Width, desc.Height)
	}
	bpp := BytesPerPixel(desc.Format)
	if bpp == 0 || len(data) != int(desc.Width)*int(desc.Height)*bpp {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d format %v", ErrInvalidTexture, len(data), desc.Width, desc.Height, desc.Format)
	}
	pix := make([]byte, len(data))
	copy(pix, data)
	return &softwareTexture{owner: d, desc: desc, pix: pix, bpp: bpp}, nil
}

// CreatePipeline implements Device.
func (d *SoftwareDevice) CreatePipeline(variant ShaderVariant) (Pipeline, error) {
	if d.destroyed {
		return nil, &PipelineError{Variant: variant, Err: ErrDestroyed}
	}
	if !variant.Valid() {
		return nil, &PipelineError{Variant: variant, Err: fmt.Errorf("unknown shader variant")}
	}
	return &softwarePipeline{owner: d, variant: variant}, nil
}

// CreateTarget implements Device.
func (d *SoftwareDevice) CreateTarget(width, height int) (OffscreenTarget, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if width <= 0 || height <= 0 || width > maxSoftwareTextureSize || height > maxSoftwareTextureSize {
		return nil, fmt.Errorf("%w: target %dx%d", ErrInvalidSize, width, height)
	}
	return NewPixmapTarget(width, height), nil
}

// BeginPass implements Device. Any RGBA8 target exposing Pixels is accepted.
func (d *SoftwareDevice) BeginPass(target RenderTarget, clear *sdftext.Color) (Pass, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if target == nil {
		return nil, ErrNilTarget
	}
	pix := target.Pixels()
	if pix == nil || target.Format() != gputypes.TextureFormatRGBA8Unorm {
		return nil, ErrUnsupportedTarget
	}
	p := &softwarePass{
		dev:    d,
		pix:    pix,
		stride: target.Stride(),
		width:  target.Width(),
		height: target.Height(),
	}
	if clear != nil {
		p.clear(*clear)
	}
	return p, nil
}

// Destroy implements Device.
func (d *SoftwareDevice) Destroy() {
	d.destroyed = true
}

type softwarePass struct {
	dev           *SoftwareDevice
	pix           []byte
	stride        int
	width, height int
	ended         bool
}

func (p *softwarePass) clear(c sdftext.Color) {
	pm := c.Premultiply()
	px := [4]byte{unit8(pm.R), unit8(pm.G), unit8(pm.B), unit8(pm.A)}
	for y := 0; y < p.height; y++ {
		row := p.pix[y*p.stride : y*p.stride+p.width*4]
		for x := 0; x < len(row); x += 4 {
			copy(row[x:x+4], px[:])
		}
	}
}

// screenVertex is a vertex after projection to target pixels.
type screenVertex struct {
	x, y  float32
	u, v  float32
	color [4]float32
}

// Draw implements Pass.
func (p *softwarePass) Draw(pipeline Pipeline, texture Texture, vertices []Vertex, indices []uint16, uniforms *Uniforms) error {
	if p.ended {
		return ErrPassEnded
	}
	pipe, ok := pipeline.(*softwarePipeline)
	if !ok || pipe.owner != p.dev {
		return fmt.Errorf("render: pipeline %T not created by this device", pipeline)
	}
	tex, ok := texture.(*softwareTexture)
	if !ok || tex.owner != p.dev {
		return ErrInvalidTexture
	}
	if tex.destroyed {
		return ErrDestroyed
	}
	if uniforms == nil {
		return fmt.Errorf("render: nil uniforms")
	}
	if err := ValidateGeometry(vertices, indices); err != nil {
		return err
	}
	p.dev.drawCalls++

	screen := make([]screenVertex, len(vertices))
	w, h := float32(p.width), float32(p.height)
	for i, v := range vertices {
		cx, cy := Project(&uniforms.Projection, v.Position[0], v.Position[1])
		screen[i] = screenVertex{
			x:     (cx + 1) * 0.5 * w,
			y:     (1 - cy) * 0.5 * h,
			u:     v.TexCoord[0],
			v:     v.TexCoord[1],
			color: v.Color,
		}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		p.triangle(pipe.variant, tex, uniforms, screen[indices[i]], screen[indices[i+1]], screen[indices[i+2]])
	}
	return nil
}

// End implements Pass. Software draws complete immediately.
func (p *softwarePass) End() error {
	if p.ended {
		return ErrPassEnded
	}
	p.ended = true
	return nil
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether the directed edge a->b of a clockwise (y down)
// triangle is a top or left edge.
func topLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func inside(w float32, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

func (p *softwarePass) triangle(variant ShaderVariant, tex *softwareTexture, u *Uniforms, a, b, c screenVertex) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(int(math.Floor(float64(min(a.x, b.x, c.x)))), 0)
	maxX := min(int(math.Ceil(float64(max(a.x, b.x, c.x)))), p.width-1)
	minY := max(int(math.Floor(float64(min(a.y, b.y, c.y)))), 0)
	maxY := min(int(math.Ceil(float64(max(a.y, b.y, c.y)))), p.height-1)

	tlA, tlB, tlC := topLeft(b, c), topLeft(c, a), topLeft(a, b)
	inv := 1 / area

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		row := p.pix[y*p.stride:]
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, c, px, py)
			w1 := edge(c, a, px, py)
			w2 := edge(a, b, px, py)
			if !inside(w0, tlA) || !inside(w1, tlB) || !inside(w2, tlC) {
				continue
			}
			l0, l1, l2 := w0*inv, w1*inv, w2*inv

			tu := a.u*l0 + b.u*l1 + c.u*l2
			tv := a.v*l0 + b.v*l1 + c.v*l2
			var col [4]float32
			for i := range col {
				col[i] = a.color[i]*l0 + b.color[i]*l1 + c.color[i]*l2
			}

			src := Shade(variant, tex.sample(tu, tv), col, u)
			if src[3] <= 0 {
				continue
			}
			blendPixel(row[x*4:x*4+4], src)
		}
	}
}

// blendPixel composites premultiplied src over a premultiplied RGBA8 pixel.
func blendPixel(dst []byte, src [4]float32) {
	k := 1 - min(src[3], 1)
	for i := 0; i < 4; i++ {
		v := src[i] + float32(dst[i])/255*k
		dst[i] = unit8(v)
	}
}

var (
	_ Device   = (*SoftwareDevice)(nil)
	_ Texture  = (*softwareTexture)(nil)
	_ Pipeline = (*softwarePipeline)(nil)
)
