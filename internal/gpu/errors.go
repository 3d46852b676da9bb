//go:build !nogpu

package gpu

import "errors"

var (
	// ErrNoHAL is returned when a provider does not expose HAL types.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL device and queue")

	// ErrNoAdapter is returned when no GPU adapter is available.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrGPUTimeout is returned when a submission does not complete in time.
	ErrGPUTimeout = errors.New("gpu: timed out waiting for GPU")
)
