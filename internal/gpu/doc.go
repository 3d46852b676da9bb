//go:build !nogpu

// Package gpu implements render.Device on a wgpu HAL device.
//
// The device compiles sdf_text.wgsl once and builds one render pipeline
// per shader variant and color format. Draws recorded into a pass are
// uploaded as per-draw vertex, index and uniform buffers and encoded into
// a single render pass on End, which submits and waits on a fence.
//
// Offscreen targets are RGBA8 textures read back through a staging
// buffer with 256-byte aligned rows. CPU targets are rendered through a
// scratch texture and copied back at the end of the pass.
package gpu
