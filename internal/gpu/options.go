package gpu

import (
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/lineview/lineview"
)

// defaultWaitTimeout bounds how long RenderFrame blocks on the GPU.
const defaultWaitTimeout = 5 * time.Second

// SurfaceOption configures a RenderSurface during creation.
//
// Example:
//
//	rs := gpu.NewRenderSurface(
//	    gpu.WithClearColor(lineview.BGRA{A: 255}),
//	    gpu.WithInitialSegment(lineview.Segment(0, 0, 100, 100)),
//	)
type SurfaceOption func(*surfaceOptions)

type surfaceOptions struct {
	vertexSource   string
	fragmentSource string
	clearColor     lineview.BGRA
	initial        lineview.LineSegment
	device         hal.Device
	queue          hal.Queue
	provider       any
	waitTimeout    time.Duration
}

func defaultSurfaceOptions() surfaceOptions {
	return surfaceOptions{
		vertexSource:   lineVertexShaderSource,
		fragmentSource: lineFragmentShaderSource,
		clearColor:     lineview.BGRA{A: 255},
		waitTimeout:    defaultWaitTimeout,
	}
}

// WithShaderSources replaces the built-in WGSL stages. Empty strings keep
// the corresponding default.
func WithShaderSources(vertex, fragment string) SurfaceOption {
	return func(o *surfaceOptions) {
		if vertex != "" {
			o.vertexSource = vertex
		}
		if fragment != "" {
			o.fragmentSource = fragment
		}
	}
}

// WithClearColor sets the background every frame is cleared to.
func WithClearColor(c lineview.BGRA) SurfaceOption {
	return func(o *surfaceOptions) {
		o.clearColor = c
	}
}

// WithInitialSegment sets the segment uploaded by Initialize.
func WithInitialSegment(seg lineview.LineSegment) SurfaceOption {
	return func(o *surfaceOptions) {
		o.initial = seg
	}
}

// WithDevice renders on an existing device and queue. The surface does
// not destroy them on Dispose.
func WithDevice(device hal.Device, queue hal.Queue) SurfaceOption {
	return func(o *surfaceOptions) {
		o.device = device
		o.queue = queue
	}
}

// WithHalProvider renders on the device of a host that exposes
// HalDevice() any and HalQueue() any. The surface does not own it.
func WithHalProvider(provider any) SurfaceOption {
	return func(o *surfaceOptions) {
		o.provider = provider
	}
}

// WithWaitTimeout bounds how long RenderFrame waits for its submission to
// complete. Non-positive values keep the default of 5s.
func WithWaitTimeout(d time.Duration) SurfaceOption {
	return func(o *surfaceOptions) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}
