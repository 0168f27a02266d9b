// Package gpu draws the line segment with gogpu/wgpu and reads it back.
//
// # Pipeline
//
// A RenderSurface owns one device (opened on the Vulkan HAL backend, or
// shared with a host), one ShaderProgram, one LineGeometry and one
// offscreen BGRA8 texture with its staging buffer. Every frame is:
//
//	update vertices -> clear -> draw line list -> copy to staging -> fence wait -> read back
//
// # Shaders
//
// Stages are WGSL, compiled to SPIR-V by gogpu/naga. The built-in pair
// lives in shaders/. Uniforms are found by scanning `var<uniform>`
// declarations in @group(0), so a program can be addressed by uniform
// name; only mat4x4<f32> uniforms can be set.
//
// # Testing
//
// Unit tests run against the wgpu noop backend. Tests that check pixels
// need a Vulkan device and are skipped without one.
package gpu
