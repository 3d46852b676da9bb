// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdftext"
)

// RenderTarget is a surface text is drawn into.
//
// CPU-backed targets return their pixels from Pixels; GPU-backed targets
// return nil and expose a TextureView instead.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// TextureView returns the GPU texture view, or nil for CPU targets.
	TextureView() TextureView

	// Pixels returns direct access to CPU pixel data, or nil for GPU targets.
	Pixels() []byte

	// Stride returns the bytes per row, or 0 for GPU targets.
	Stride() int
}

// OffscreenTarget is a render target whose pixels can be read back after
// a pass on it has ended.
type OffscreenTarget interface {
	RenderTarget

	// ReadPixels copies the target into dst as tightly packed,
	// straight-alpha RGBA8 rows. dst must hold Width*Height*4 bytes.
	ReadPixels(dst []byte) error

	// Destroy releases the target.
	Destroy()
}

// PixmapTarget is a CPU render target backed by an *image.RGBA holding
// premultiplied pixels.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing image.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

func (t *PixmapTarget) Width() int                     { return t.img.Bounds().Dx() }
func (t *PixmapTarget) Height() int                    { return t.img.Bounds().Dy() }
func (t *PixmapTarget) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (t *PixmapTarget) TextureView() TextureView       { return nil }
func (t *PixmapTarget) Pixels() []byte                 { return t.img.Pix }
func (t *PixmapTarget) Stride() int                    { return t.img.Stride }

// Image returns the underlying image.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Clear fills the target with a solid color.
func (t *PixmapTarget) Clear(c sdftext.Color) {
	p := c.Premultiply()
	px := [4]byte{unit8(p.R), unit8(p.G), unit8(p.B), unit8(p.A)}
	pix := t.img.Pix
	for y := 0; y < t.Height(); y++ {
		row := pix[y*t.img.Stride : y*t.img.Stride+t.Width()*4]
		for x := 0; x < len(row); x += 4 {
			copy(row[x:x+4], px[:])
		}
	}
}

// ReadPixels copies the target as straight-alpha RGBA8.
func (t *PixmapTarget) ReadPixels(dst []byte) error {
	w, h := t.Width(), t.Height()
	if len(dst) < w*h*4 {
		return ErrInvalidSize
	}
	for y := 0; y < h; y++ {
		src := t.img.Pix[y*t.img.Stride : y*t.img.Stride+w*4]
		UnpremultiplyRow(dst[y*w*4:(y+1)*w*4], src)
	}
	return nil
}

// Destroy is a no-op; the image is garbage collected.
func (t *PixmapTarget) Destroy() {}

// UnpremultiplyRow converts a premultiplied RGBA8 row to straight alpha.
// dst and src may be the same slice.
func UnpremultiplyRow(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := src[i+3]
		switch a {
		case 0:
			dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
		case 255:
			copy(dst[i:i+4], src[i:i+4])
		default:
			for c := 0; c < 3; c++ {
				dst[i+c] = uint8(min((uint32(src[i+c])*255+uint32(a)/2)/uint32(a), 255))
			}
			dst[i+3] = a
		}
	}
}

func unit8(x float32) uint8 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 255
	}
	return uint8(x*255 + 0.5)
}

var _ OffscreenTarget = (*PixmapTarget)(nil)
