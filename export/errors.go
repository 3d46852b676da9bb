package export

import (
	"errors"
	"fmt"
)

// Sentinel errors for export package.
var (
	// ErrNoDevice is returned by New when no device is given.
	ErrNoDevice = errors.New("export: nil render device")

	// ErrNoRenderFunc is returned by New when no render function is set.
	ErrNoRenderFunc = errors.New("export: no render function")

	// ErrAlreadyRendering is returned by Render while another Render runs.
	ErrAlreadyRendering = errors.New("export: already rendering")

	// ErrRenderPanic wraps a panic raised by the render function.
	ErrRenderPanic = errors.New("export: render function panicked")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("export: invalid config: %s %s", e.Field, e.Reason)
}

// FrameError reports the frame and step at which a sequence failed.
type FrameError struct {
	Frame int

	// Op is "render", "readback" or "write".
	Op  string
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("export: frame %d: %s: %v", e.Frame, e.Op, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
