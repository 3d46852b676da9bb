//go:build !nogpu

// Package gpu selects the render.Device text is drawn with.
//
// A handle from a windowing host (such as a gogpu app) that exposes its
// HAL device yields a GPU device sharing that device. No handle, or a
// render.NullDeviceHandle, yields the software device.
//
// Usage:
//
//	dev, err := gpu.NewDevice(app.DeviceProvider())
//	if err != nil {
//	    return err
//	}
//	defer dev.Destroy()
package gpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/sdftext"
	gpuimpl "github.com/gogpu/sdftext/internal/gpu"
	"github.com/gogpu/sdftext/render"
)

// Option configures a GPU device.
type Option = gpuimpl.Option

// WithSPIRV compiles the text shader to SPIR-V before handing it to the
// HAL.
func WithSPIRV(enabled bool) Option { return gpuimpl.WithSPIRV(enabled) }

// WithLabel sets the prefix of GPU object debug labels.
func WithLabel(prefix string) Option { return gpuimpl.WithLabel(prefix) }

// NewDevice returns the device for handle. The caller owns the result and
// must Destroy it; a shared HAL device is left open.
func NewDevice(handle render.DeviceHandle, opts ...Option) (render.Device, error) {
	switch handle.(type) {
	case nil, render.NullDeviceHandle, *render.NullDeviceHandle:
		return render.NewSoftwareDevice(), nil
	}
	d, err := gpuimpl.NewDeviceFromProvider(handle, opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NewStandalone opens a Vulkan device of its own. If no GPU is available
// it returns the software device and logs the reason.
func NewStandalone(opts ...Option) render.Device {
	d, err := gpuimpl.NewStandalone(gputypes.BackendVulkan, opts...)
	if err != nil {
		sdftext.Logger().Warn("gpu: GPU not available, using software device", "err", err)
		return render.NewSoftwareDevice()
	}
	return d
}
