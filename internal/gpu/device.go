//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/render"
)

// fenceTimeout bounds every wait on a submission.
const fenceTimeout = 5 * time.Second

// maxTextureSize is the largest texture or target edge accepted.
const maxTextureSize = 16384

// Option configures a Device.
type Option func(*Device)

// WithSPIRV compiles the shader to SPIR-V with naga before handing it to
// the HAL, for backends that do not accept WGSL.
func WithSPIRV(enabled bool) Option {
	return func(d *Device) {
		d.spirv = enabled
	}
}

// WithLabel sets the prefix of GPU object debug labels.
func WithLabel(prefix string) Option {
	return func(d *Device) {
		if prefix != "" {
			d.label = prefix
		}
	}
}

// Device is a render.Device on a HAL device and queue.
//
// Device is not safe for concurrent use; it is owned by one rendering
// goroutine like every render.Device.
type Device struct {
	device hal.Device
	queue  hal.Queue

	// Set when the device was opened by NewStandalone and must be closed
	// with it.
	instance hal.Instance
	owned    bool

	spirv bool
	label string

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler

	// scratch renders passes on CPU targets.
	scratch *Target

	destroyOnce sync.Once
	destroyed   bool
}

var _ render.Device = (*Device)(nil)

// NewDevice wraps an open HAL device and queue. The caller keeps
// ownership of both.
func NewDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNoHAL
	}
	d := &Device{device: device, queue: queue, label: "sdftext"}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NewDeviceFromProvider wraps the HAL device of a provider exposing
// HalDevice() any and HalQueue() any, such as a gogpu window.
func NewDeviceFromProvider(provider any, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	return NewDevice(device, queue, opts...)
}

// NewStandalone opens a device of its own on the first discrete or
// integrated GPU of backend. Destroy closes it.
func NewStandalone(backend gputypes.Backend, opts ...Option) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("gpu: backend %v not available", backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	return openInstance(instance, opts...)
}

// openInstance opens the preferred adapter of instance and takes
// ownership of both.
func openInstance(instance hal.Instance, opts ...Option) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	d, err := NewDevice(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	slogger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// ensureBase creates the shader, layouts and sampler shared by every
// pipeline.
func (d *Device) ensureBase() error {
	if d.shader != nil {
		return nil
	}

	src, err := shaderModuleSource(d.spirv)
	if err != nil {
		return err
	}
	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  d.label + "_sdf_text_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile sdf_text shader: %w", err)
	}

	// Binding 0: uniforms (vertex+fragment)
	// Binding 1: atlas texture (fragment)
	// Binding 2: sampler (fragment)
	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: d.label + "_sdf_text_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		d.device.DestroyShaderModule(shader)
		return fmt.Errorf("create sdf_text bind group layout: %w", err)
	}

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            d.label + "_sdf_text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(bindLayout)
		d.device.DestroyShaderModule(shader)
		return fmt.Errorf("create sdf_text pipeline layout: %w", err)
	}

	// Linear filtering interpolates distances between texels.
	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        d.label + "_sdf_text_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		d.device.DestroyPipelineLayout(pipeLayout)
		d.device.DestroyBindGroupLayout(bindLayout)
		d.device.DestroyShaderModule(shader)
		return fmt.Errorf("create sdf_text sampler: %w", err)
	}

	d.shader, d.bindLayout, d.pipeLayout, d.sampler = shader, bindLayout, pipeLayout, sampler
	return nil
}

// createRenderPipeline builds the pipeline of variant for color format.
func (d *Device) createRenderPipeline(variant render.ShaderVariant, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	return d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s_sdf_text_%s", d.label, variant),
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     d.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     d.shader,
			EntryPoint: variant.FragmentEntryPoint(),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
}

// vertexLayout matches VertexInput in sdf_text.wgsl:
//
//	location 0: position  (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
//	location 2: color     (vec4<f32>)
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: render.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
			},
		},
	}
}

// CreatePipeline implements render.Device. The pipeline for RGBA8 targets
// is built eagerly so shader errors surface here; other target formats
// are built on first use.
func (d *Device) CreatePipeline(variant render.ShaderVariant) (render.Pipeline, error) {
	if d.destroyed {
		return nil, &render.PipelineError{Variant: variant, Err: render.ErrDestroyed}
	}
	if !variant.Valid() {
		return nil, &render.PipelineError{Variant: variant, Err: fmt.Errorf("unknown shader variant")}
	}
	if err := d.ensureBase(); err != nil {
		return nil, &render.PipelineError{Variant: variant, Err: err}
	}
	rp, err := d.createRenderPipeline(variant, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, &render.PipelineError{Variant: variant, Err: err}
	}
	return &Pipeline{
		owner:     d,
		variant:   variant,
		pipelines: map[gputypes.TextureFormat]hal.RenderPipeline{gputypes.TextureFormatRGBA8Unorm: rp},
	}, nil
}

// CreateTexture implements render.Device.
func (d *Device) CreateTexture(desc render.TextureDescriptor, data []byte) (render.Texture, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	bpp := render.BytesPerPixel(desc.Format)
	if bpp == 0 || desc.Width == 0 || desc.Height == 0 || desc.Width > maxTextureSize || desc.Height > maxTextureSize {
		return nil, fmt.Errorf("%w: %dx%d format %v", render.ErrInvalidTexture, desc.Width, desc.Height, desc.Format)
	}
	if len(data) != int(desc.Width)*int(desc.Height)*bpp {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d format %v", render.ErrInvalidTexture, len(data), desc.Width, desc.Height, desc.Format)
	}

	size := hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         textureUsage(desc.Usage) | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %q: %w", desc.Label, err)
	}

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  desc.Width * uint32(bpp), //nolint:gosec // bpp is at most 4
			RowsPerImage: desc.Height,
		},
		&size,
	)

	return &Texture{owner: d, desc: desc, tex: tex, view: view}, nil
}

// CreateTarget implements render.Device.
func (d *Device) CreateTarget(width, height int) (render.OffscreenTarget, error) {
	return d.createTarget(width, height, d.label+"_target")
}

// BeginPass implements render.Device. Targets created by this device are
// drawn into directly; RGBA8 CPU targets are drawn through a scratch
// texture and receive the result when the pass ends.
func (d *Device) BeginPass(target render.RenderTarget, clear *sdftext.Color) (render.Pass, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	if target == nil {
		return nil, render.ErrNilTarget
	}

	p := &Pass{dev: d}
	if clear != nil {
		c := *clear
		p.clear = &c
	}

	switch t := target.(type) {
	case *Target:
		if t.owner != d {
			return nil, render.ErrUnsupportedTarget
		}
		if t.destroyed {
			return nil, render.ErrDestroyed
		}
		p.target = t
	default:
		if target.Pixels() == nil || target.Format() != gputypes.TextureFormatRGBA8Unorm {
			return nil, render.ErrUnsupportedTarget
		}
		scratch, err := d.scratchTarget(target.Width(), target.Height())
		if err != nil {
			return nil, err
		}
		if clear == nil {
			scratch.upload(target.Pixels(), target.Stride())
		}
		p.target = scratch
		p.cpu = target
	}
	return p, nil
}

// scratchTarget returns the scratch target resized to width x height.
func (d *Device) scratchTarget(width, height int) (*Target, error) {
	if d.scratch != nil && d.scratch.width == width && d.scratch.height == height {
		return d.scratch, nil
	}
	if d.scratch != nil {
		d.scratch.Destroy()
		d.scratch = nil
	}
	t, err := d.createTarget(width, height, d.label+"_scratch")
	if err != nil {
		return nil, err
	}
	d.scratch = t
	return t, nil
}

// Destroy implements render.Device. Shared resources are released; the
// HAL device itself is closed only when it was opened by NewStandalone.
func (d *Device) Destroy() {
	d.destroyOnce.Do(func() {
		if d.scratch != nil {
			d.scratch.Destroy()
			d.scratch = nil
		}
		if d.sampler != nil {
			d.device.DestroySampler(d.sampler)
		}
		if d.pipeLayout != nil {
			d.device.DestroyPipelineLayout(d.pipeLayout)
		}
		if d.bindLayout != nil {
			d.device.DestroyBindGroupLayout(d.bindLayout)
		}
		if d.shader != nil {
			d.device.DestroyShaderModule(d.shader)
		}
		d.sampler, d.pipeLayout, d.bindLayout, d.shader = nil, nil, nil, nil

		if d.owned {
			d.device.Destroy()
			if d.instance != nil {
				d.instance.Destroy()
			}
		}
		d.destroyed = true
	})
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// submit ends encoding, submits the commands and waits for completion.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	return nil
}

func textureUsage(u render.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&render.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&render.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&render.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&render.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}
