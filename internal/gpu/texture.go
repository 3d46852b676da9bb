//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sdftext/render"
)

// Texture is a sampled HAL texture with its view.
type Texture struct {
	owner     *Device
	desc      render.TextureDescriptor
	tex       hal.Texture
	view      hal.TextureView
	destroyed bool
}

func (t *Texture) Width() uint32                  { return t.desc.Width }
func (t *Texture) Height() uint32                 { return t.desc.Height }
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Destroy implements render.Texture.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.owner.device.DestroyTextureView(t.view)
	t.owner.device.DestroyTexture(t.tex)
	t.view, t.tex = nil, nil
}

// Pipeline is a render pipeline of one shader variant, built per target
// color format.
type Pipeline struct {
	owner     *Device
	variant   render.ShaderVariant
	pipelines map[gputypes.TextureFormat]hal.RenderPipeline
	destroyed bool
}

// Variant implements render.Pipeline.
func (p *Pipeline) Variant() render.ShaderVariant { return p.variant }

// forFormat returns the pipeline for format, building it on first use.
func (p *Pipeline) forFormat(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if rp, ok := p.pipelines[format]; ok {
		return rp, nil
	}
	rp, err := p.owner.createRenderPipeline(p.variant, format)
	if err != nil {
		return nil, &render.PipelineError{Variant: p.variant, Err: err}
	}
	p.pipelines[format] = rp
	return rp, nil
}

// Destroy implements render.Pipeline.
func (p *Pipeline) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	for _, rp := range p.pipelines {
		p.owner.device.DestroyRenderPipeline(rp)
	}
	p.pipelines = nil
}
