// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdftext"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (for example a gogpu.App) owns the GPU device and hands it to
// sdftext; sdftext never creates an adapter of its own. See gpu.NewDevice
// for the wgpu-backed Device built from a handle.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width and Height are the texture size in pixels.
	Width  uint32
	Height uint32

	// Format is the pixel format. Distance field atlases use R8Unorm.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage
}

// TextureUsage specifies how a texture can be used.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be sampled in shaders.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be a render target.
	TextureUsageRenderAttachment
)

// AtlasTextureDescriptor returns the descriptor of a square single-channel
// atlas texture.
func AtlasTextureDescriptor(label string, size int) TextureDescriptor {
	return TextureDescriptor{
		Label:  label,
		Width:  uint32(size), //nolint:gosec // atlas size is validated to be at most 8192
		Height: uint32(size), //nolint:gosec // atlas size is validated to be at most 8192
		Format: gputypes.TextureFormatR8Unorm,
		Usage:  TextureUsageTextureBinding | TextureUsageCopyDst,
	}
}

// BytesPerPixel returns the texel size of the formats sdftext uploads,
// or 0 for formats it does not handle.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	}
	return 0
}

// Texture is an immutable texture owned by exactly one holder, which is
// responsible for calling Destroy.
type Texture interface {
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat

	// Destroy releases the texture. Calling Destroy more than once is a no-op.
	Destroy()
}

// TextureView represents a view into a texture.
type TextureView interface {
	Destroy()
}

// Pipeline is a compiled shading configuration for one ShaderVariant.
type Pipeline interface {
	Variant() ShaderVariant
	Destroy()
}

// Device allocates textures, pipelines and offscreen targets, and records
// draw passes. Implementations are not safe for concurrent use; a Device
// is owned by one rendering goroutine.
type Device interface {
	// CreateTexture creates a texture and uploads data, which must hold
	// Width*Height texels of the descriptor format, tightly packed.
	CreateTexture(desc TextureDescriptor, data []byte) (Texture, error)

	// CreatePipeline compiles the pipeline of a shader variant.
	// Failures are *PipelineError.
	CreatePipeline(variant ShaderVariant) (Pipeline, error)

	// CreateTarget creates an RGBA8 offscreen render target.
	CreateTarget(width, height int) (OffscreenTarget, error)

	// BeginPass starts recording draws into target. A nil clear keeps the
	// existing contents; otherwise the target is cleared to *clear first.
	BeginPass(target RenderTarget, clear *sdftext.Color) (Pass, error)

	// Destroy releases device-owned resources. Resources created by the
	// device must be destroyed before the device.
	Destroy()
}

// Pass records indexed triangle draws into one render target.
type Pass interface {
	// Draw records one draw call: the triangles of indices over vertices,
	// textured by texture and shaded by pipeline with uniforms. The slices
	// are copied; the caller may reuse them after Draw returns.
	Draw(pipeline Pipeline, texture Texture, vertices []Vertex, indices []uint16, uniforms *Uniforms) error

	// End submits the recorded draws and waits for them to complete.
	End() error
}

// NullDeviceHandle is a DeviceHandle with no GPU behind it. Use it to
// select the software device where a handle is required.
type NullDeviceHandle struct{}

// Device returns nil.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns TextureFormatUndefined.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}
