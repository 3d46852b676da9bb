// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the device boundary text is drawn through.
//
// This package holds the abstractions shared by every backend: the GPU
// layouts of vertices and uniforms, the shader variants, and the Device,
// Pass and RenderTarget interfaces.
//
// # Key Principle
//
// sdftext RECEIVES a GPU device from the host application, it does NOT
// create its own. A host hands over a DeviceHandle; gpu.NewDevice turns it
// into a Device. Without a GPU, SoftwareDevice draws the same passes on
// the CPU.
//
// # Core Interfaces
//
//   - Device: allocates textures, pipelines and offscreen targets
//   - Pass: records indexed quad draws into one target
//   - RenderTarget: where output goes (CPU pixmap or GPU texture)
//   - OffscreenTarget: a RenderTarget whose pixels can be read back
//
// # Device Implementations
//
//   - SoftwareDevice: CPU rasterization with the reference shading of
//     every variant (see Shade)
//   - internal/gpu Device: wgpu HAL pipelines compiled from WGSL
//
// # Layouts
//
// Vertex and Uniforms mirror the structs of sdf_text.wgsl byte for byte.
// Uniforms.Bytes encodes the 128-byte uniform block; EncodeVertices and
// EncodeIndices produce buffer contents.
//
// # Thread Safety
//
// Devices, passes and targets are owned by one rendering goroutine.
// Textures are immutable after creation and may be drawn by any number of
// passes of their device.
package render
