//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sdftext/render"
)

// copyPitchAlignment is the row alignment of texture to buffer copies.
const copyPitchAlignment = 256

// Target is an RGBA8 offscreen render target with CPU readback.
type Target struct {
	owner         *Device
	width, height int
	tex           hal.Texture
	view          hal.TextureView
	destroyed     bool
}

var _ render.OffscreenTarget = (*Target)(nil)

func (d *Device) createTarget(width, height int, label string) (*Target, error) {
	if d.destroyed {
		return nil, render.ErrDestroyed
	}
	if width <= 0 || height <= 0 || width > maxTextureSize || height > maxTextureSize {
		return nil, fmt.Errorf("%w: target %dx%d", render.ErrInvalidSize, width, height)
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}, //nolint:gosec // bounded above
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create target texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create target view: %w", err)
	}
	return &Target{owner: d, width: width, height: height, tex: tex, view: view}, nil
}

func (t *Target) Width() int                     { return t.width }
func (t *Target) Height() int                    { return t.height }
func (t *Target) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (t *Target) Pixels() []byte                 { return nil }
func (t *Target) Stride() int                    { return 0 }

// TextureView implements render.RenderTarget.
func (t *Target) TextureView() render.TextureView {
	return targetView{t}
}

// targetView exposes a target's view; the target owns it.
type targetView struct{ t *Target }

func (targetView) Destroy() {}

// upload replaces the target contents with premultiplied RGBA8 rows.
func (t *Target) upload(pix []byte, stride int) {
	w, h := uint32(t.width), uint32(t.height) //nolint:gosec // bounded at creation
	t.owner.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		pix[:stride*t.height],
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(stride), RowsPerImage: h}, //nolint:gosec // stride of an in-memory image
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// readback copies the target into dst as premultiplied RGBA8 rows of
// dstStride bytes.
func (t *Target) readback(dst []byte, dstStride int) error {
	d := t.owner
	w, h := uint32(t.width), uint32(t.height) //nolint:gosec // bounded at creation

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label + "_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label + "_readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// The texture is left in render attachment layout after a pass.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := d.submit(encoder); err != nil {
		return err
	}

	data := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, data); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	row := int(bytesPerRow)
	for y := 0; y < t.height; y++ {
		src := data[y*int(alignedBytesPerRow):]
		copy(dst[y*dstStride:y*dstStride+row], src[:row])
	}
	return nil
}

// ReadPixels implements render.OffscreenTarget.
func (t *Target) ReadPixels(dst []byte) error {
	if t.destroyed {
		return render.ErrDestroyed
	}
	row := t.width * 4
	if len(dst) < row*t.height {
		return render.ErrInvalidSize
	}
	if err := t.readback(dst, row); err != nil {
		return err
	}
	for y := 0; y < t.height; y++ {
		line := dst[y*row : (y+1)*row]
		render.UnpremultiplyRow(line, line)
	}
	return nil
}

// Destroy implements render.OffscreenTarget.
func (t *Target) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.owner.device.DestroyTextureView(t.view)
	t.owner.device.DestroyTexture(t.tex)
	t.view, t.tex = nil, nil
	if t.owner.scratch == t {
		t.owner.scratch = nil
	}
}
