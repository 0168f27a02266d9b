// Package gpu creates GPU render surfaces for lineview.
//
// A surface draws one line segment into an offscreen BGRA8 texture and
// reads each frame back to the CPU, so it satisfies lineview.Renderer:
//
//	surf, err := gpu.NewSurface(800, 450)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer surf.Dispose()
//
//	frame, err := surf.RenderFrame(lineview.Segment(100, 100, 300, 300))
//
// By default the surface opens its own Vulkan device. A host that already
// owns one (for example a gogpu window) can share it with WithDeviceProvider.
package gpu

import (
	"fmt"
	"os"

	"github.com/gogpu/gpucontext"

	"github.com/lineview/lineview"
	gpuimpl "github.com/lineview/lineview/internal/gpu"
)

// Surface is a GPU-backed lineview.Renderer.
type Surface = gpuimpl.RenderSurface

// SurfaceOption configures a Surface.
type SurfaceOption = gpuimpl.SurfaceOption

// SurfaceState is the lifecycle state of a Surface.
type SurfaceState = gpuimpl.SurfaceState

// Surface states.
const (
	StateUninitialized = gpuimpl.StateUninitialized
	StateReady         = gpuimpl.StateReady
	StateRendering     = gpuimpl.StateRendering
	StateDisposed      = gpuimpl.StateDisposed
)

// Options re-exported from the implementation.
var (
	WithShaderSources  = gpuimpl.WithShaderSources
	WithClearColor     = gpuimpl.WithClearColor
	WithInitialSegment = gpuimpl.WithInitialSegment
	WithDevice         = gpuimpl.WithDevice
	WithWaitTimeout    = gpuimpl.WithWaitTimeout
)

var _ lineview.Renderer = (*Surface)(nil)

// NewSurface creates and initializes a width×height surface.
func NewSurface(width, height int, opts ...SurfaceOption) (*Surface, error) {
	s := gpuimpl.NewRenderSurface(opts...)
	if err := s.Initialize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// WithDeviceProvider shares the GPU device of a host application instead
// of opening a new one. The provider must also expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue; the surface never
// destroys them.
func WithDeviceProvider(provider gpucontext.DeviceProvider) SurfaceOption {
	return gpuimpl.WithHalProvider(provider)
}

// LoadShaderFiles reads a vertex and a fragment WGSL file. Missing files
// are reported with an error wrapping fs.ErrNotExist.
func LoadShaderFiles(vertexPath, fragmentPath string) (vertex, fragment string, err error) {
	vs, err := os.ReadFile(vertexPath)
	if err != nil {
		return "", "", fmt.Errorf("load vertex shader: %w", err)
	}
	fs, err := os.ReadFile(fragmentPath)
	if err != nil {
		return "", "", fmt.Errorf("load fragment shader: %w", err)
	}
	return string(vs), string(fs), nil
}

// DefaultShaderSources returns the built-in vertex and fragment stages.
func DefaultShaderSources() (vertex, fragment string) {
	return gpuimpl.DefaultVertexShaderSource(), gpuimpl.DefaultFragmentShaderSource()
}
