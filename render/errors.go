// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Sentinel errors for render package.
var (
	// ErrNilTarget is returned when a pass is started without a target.
	ErrNilTarget = errors.New("render: nil render target")

	// ErrUnsupportedTarget is returned when a device cannot draw into the
	// given target (wrong format or a target owned by another device).
	ErrUnsupportedTarget = errors.New("render: unsupported render target")

	// ErrInvalidSize is returned for non-positive or oversized dimensions.
	ErrInvalidSize = errors.New("render: invalid size")

	// ErrInvalidTexture is returned when texture data does not match its
	// descriptor, or a draw uses a texture from another device.
	ErrInvalidTexture = errors.New("render: invalid texture")

	// ErrInvalidGeometry is returned when indices do not form triangles
	// or reference vertices out of range.
	ErrInvalidGeometry = errors.New("render: invalid geometry")

	// ErrPassEnded is returned when drawing into a pass after End.
	ErrPassEnded = errors.New("render: pass already ended")

	// ErrDestroyed is returned when using a destroyed device or resource.
	ErrDestroyed = errors.New("render: resource destroyed")

	// ErrPipeline is the sentinel matched by every *PipelineError.
	ErrPipeline = errors.New("render: pipeline creation failed")
)

// PipelineError reports that a shading pipeline could not be created.
type PipelineError struct {
	Variant ShaderVariant
	Err     error
}

func (e *PipelineError) Error() string {
	return "render: create " + e.Variant.String() + " pipeline: " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPipeline.
func (e *PipelineError) Is(target error) bool {
	return target == ErrPipeline
}
