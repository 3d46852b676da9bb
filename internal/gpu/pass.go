//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/render"
)

// drawResources holds the per-draw GPU buffers and bind group.
type drawResources struct {
	pipeline   hal.RenderPipeline
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
	indexCount uint32
}

// Pass records draws for one render pass on a HAL target.
type Pass struct {
	dev   *Device
	clear *sdftext.Color

	target *Target

	// cpu is the CPU target receiving the scratch contents on End.
	cpu render.RenderTarget

	draws []*drawResources
	ended bool
}

// Draw implements render.Pass. Buffers are created and uploaded now;
// commands are encoded on End.
func (p *Pass) Draw(pipeline render.Pipeline, texture render.Texture, vertices []render.Vertex, indices []uint16, uniforms *render.Uniforms) error {
	if p.ended {
		return render.ErrPassEnded
	}
	pipe, ok := pipeline.(*Pipeline)
	if !ok || pipe.owner != p.dev {
		return fmt.Errorf("gpu: pipeline %T not created by this device", pipeline)
	}
	if pipe.destroyed {
		return render.ErrDestroyed
	}
	tex, ok := texture.(*Texture)
	if !ok || tex.owner != p.dev {
		return render.ErrInvalidTexture
	}
	if tex.destroyed {
		return render.ErrDestroyed
	}
	if uniforms == nil {
		return errors.New("gpu: nil uniforms")
	}
	if err := render.ValidateGeometry(vertices, indices); err != nil {
		return err
	}

	rp, err := pipe.forFormat(p.target.Format())
	if err != nil {
		return err
	}
	res, err := p.dev.buildDrawResources(tex, vertices, indices, uniforms)
	if err != nil {
		return err
	}
	res.pipeline = rp
	p.draws = append(p.draws, res)
	return nil
}

// End implements render.Pass.
func (p *Pass) End() error {
	if p.ended {
		return render.ErrPassEnded
	}
	p.ended = true
	defer p.release()

	if len(p.draws) == 0 && p.clear == nil {
		return nil
	}
	if err := p.encode(); err != nil {
		return err
	}
	if p.cpu != nil {
		return p.target.readback(p.cpu.Pixels(), p.cpu.Stride())
	}
	return nil
}

func (p *Pass) encode() error {
	d := p.dev
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label + "_text_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("text_pass"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	att := hal.RenderPassColorAttachment{
		View:    p.target.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if p.clear != nil {
		c := p.clear.Premultiply()
		att.LoadOp = gputypes.LoadOpClear
		att.ClearValue = gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            d.label + "_text_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{att},
	})
	for _, r := range p.draws {
		rp.SetPipeline(r.pipeline)
		rp.SetBindGroup(0, r.bindGroup, nil)
		rp.SetVertexBuffer(0, r.vertBuf, 0)
		rp.SetIndexBuffer(r.idxBuf, gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(r.indexCount, 1, 0, 0, 0)
	}
	rp.End()

	if err := d.submit(encoder); err != nil {
		return err
	}
	slogger().Debug("gpu: text pass submitted", "draws", len(p.draws))
	return nil
}

// release destroys the per-draw resources in reverse creation order.
func (p *Pass) release() {
	for _, r := range p.draws {
		p.dev.releaseDrawResources(r)
	}
	p.draws = nil
}

// buildDrawResources uploads one draw's geometry and uniforms.
func (d *Device) buildDrawResources(tex *Texture, vertices []render.Vertex, indices []uint16, uniforms *render.Uniforms) (*drawResources, error) {
	vertBuf, err := d.createAndUploadBuffer(d.label+"_text_verts", render.EncodeVertices(nil, vertices),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	idxBuf, err := d.createAndUploadBuffer(d.label+"_text_indices", render.EncodeIndices(nil, indices),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		d.device.DestroyBuffer(vertBuf)
		return nil, err
	}
	uniformBuf, err := d.createAndUploadBuffer(d.label+"_text_uniforms", uniforms.Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		d.device.DestroyBuffer(idxBuf)
		d.device.DestroyBuffer(vertBuf)
		return nil, err
	}

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  d.label + "_text_bind",
		Layout: d.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: render.UniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: gputypes.TextureViewHandle(tex.view.NativeHandle()),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: gputypes.SamplerHandle(d.sampler.NativeHandle()),
			}},
		},
	})
	if err != nil {
		d.device.DestroyBuffer(uniformBuf)
		d.device.DestroyBuffer(idxBuf)
		d.device.DestroyBuffer(vertBuf)
		return nil, fmt.Errorf("create text bind group: %w", err)
	}

	return &drawResources{
		vertBuf:    vertBuf,
		idxBuf:     idxBuf,
		uniformBuf: uniformBuf,
		bindGroup:  bindGroup,
		indexCount: uint32(len(indices)), //nolint:gosec // bounded by ValidateGeometry
	}, nil
}

func (d *Device) releaseDrawResources(r *drawResources) {
	d.device.DestroyBindGroup(r.bindGroup)
	d.device.DestroyBuffer(r.uniformBuf)
	d.device.DestroyBuffer(r.idxBuf)
	d.device.DestroyBuffer(r.vertBuf)
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (d *Device) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
