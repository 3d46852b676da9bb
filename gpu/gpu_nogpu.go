//go:build nogpu

package gpu

import (
	"errors"

	"github.com/gogpu/sdftext/render"
)

// ErrDisabled is returned for GPU handles in builds tagged nogpu.
var ErrDisabled = errors.New("gpu: built with nogpu")

// Option configures a GPU device. Options are ignored in nogpu builds.
type Option func()

// WithSPIRV is a no-op in nogpu builds.
func WithSPIRV(bool) Option { return func() {} }

// WithLabel is a no-op in nogpu builds.
func WithLabel(string) Option { return func() {} }

// NewDevice returns the software device for a nil or null handle and
// ErrDisabled otherwise.
func NewDevice(handle render.DeviceHandle, _ ...Option) (render.Device, error) {
	switch handle.(type) {
	case nil, render.NullDeviceHandle, *render.NullDeviceHandle:
		return render.NewSoftwareDevice(), nil
	}
	return nil, ErrDisabled
}

// NewStandalone returns the software device.
func NewStandalone(...Option) render.Device {
	return render.NewSoftwareDevice()
}
