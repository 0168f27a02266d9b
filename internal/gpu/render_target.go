package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the color format of the offscreen target and of every
// FrameBuffer handed to a sink.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// copyPitchAlignment is the WebGPU requirement for BytesPerRow in
// texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedBytesPerRow rounds width*4 up to copyPitchAlignment.
func alignedBytesPerRow(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// renderTarget is the single-sample color texture the line is drawn into,
// plus the staging buffer it is copied to for readback.
type renderTarget struct {
	tex     hal.Texture
	view    hal.TextureView
	staging hal.Buffer
	width   uint32
	height  uint32
	pitch   uint32
}

// create allocates the texture, its view and the staging buffer.
// On error everything created so far is destroyed.
func (rt *renderTarget) create(device hal.Device, w, h uint32) error {
	rt.destroy(device)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "line_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	rt.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "line_target_view",
	})
	if err != nil {
		rt.destroy(device)
		return fmt.Errorf("create target view: %w", err)
	}
	rt.view = view

	pitch := alignedBytesPerRow(w)
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "line_staging",
		Size:  uint64(pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		rt.destroy(device)
		return fmt.Errorf("create staging buffer: %w", err)
	}
	rt.staging = staging

	rt.width = w
	rt.height = h
	rt.pitch = pitch
	return nil
}

// encodeCopy records the texture-to-staging copy, bracketed by the layout
// transitions Vulkan needs. A no-op on backends without explicit layouts.
func (rt *renderTarget) encodeCopy(encoder hal.CommandEncoder) {
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(rt.tex, rt.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rt.pitch, RowsPerImage: rt.height},
		TextureBase:  hal.ImageCopyTexture{Texture: rt.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: rt.width, Height: rt.height, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

// readPixels maps the staging buffer and copies it into dst, dropping row
// padding. dst must hold width*height*4 bytes. Must only be called after
// the copy submission has completed.
func (rt *renderTarget) readPixels(device hal.Device, dst []byte) error {
	size := uint64(rt.pitch) * uint64(rt.height)
	mapping, err := device.MapBuffer(rt.staging, 0, size)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(mapping.Ptr), size)
	unpadRows(dst, src, int(rt.width)*4, int(rt.pitch), int(rt.height))
	if err := device.UnmapBuffer(rt.staging); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	return nil
}

// unpadRows copies rows of rowBytes from src, spaced pitch apart, into dst
// packed tightly.
func unpadRows(dst, src []byte, rowBytes, pitch, rows int) {
	for row := 0; row < rows; row++ {
		copy(dst[row*rowBytes:(row+1)*rowBytes], src[row*pitch:row*pitch+rowBytes])
	}
}

// destroy releases everything and resets the dimensions.
func (rt *renderTarget) destroy(device hal.Device) {
	if rt.staging != nil {
		device.DestroyBuffer(rt.staging)
		rt.staging = nil
	}
	if rt.view != nil {
		device.DestroyTextureView(rt.view)
		rt.view = nil
	}
	if rt.tex != nil {
		device.DestroyTexture(rt.tex)
		rt.tex = nil
	}
	rt.width = 0
	rt.height = 0
	rt.pitch = 0
}
