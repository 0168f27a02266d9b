package gpu

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/lineview/lineview"
)

// projectionUniform is the uniform the vertex stage reads the
// logical-to-clip matrix from.
const projectionUniform = "projection"

// SurfaceState is the lifecycle state of a RenderSurface.
type SurfaceState int

const (
	// StateUninitialized is the state before Initialize succeeds.
	StateUninitialized SurfaceState = iota
	// StateReady accepts RenderFrame calls.
	StateReady
	// StateRendering is held for the duration of one RenderFrame.
	StateRendering
	// StateDisposed is terminal.
	StateDisposed
)

// String returns the state name.
func (s SurfaceState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateRendering:
		return "Rendering"
	case StateDisposed:
		return "Disposed"
	default:
		return fmt.Sprintf("SurfaceState(%d)", int(s))
	}
}

// RenderSurface owns the GPU device, the line program, the vertex buffer
// and the offscreen target, and turns a LineSegment into a FrameBuffer.
//
// RenderSurface is NOT safe for concurrent use. All calls must come from
// the thread that called Initialize.
type RenderSurface struct {
	opts  surfaceOptions
	state SurfaceState

	ctx      *gpuContext
	program  *ShaderProgram
	geometry LineGeometry
	target   renderTarget

	width, height int
	projection    mgl32.Mat4
}

// NewRenderSurface returns an uninitialized surface.
func NewRenderSurface(opts ...SurfaceOption) *RenderSurface {
	o := defaultSurfaceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RenderSurface{opts: o}
}

// Initialize acquires a device and creates every GPU resource needed to
// draw into a width×height target. On failure everything created so far
// is released and the surface stays Uninitialized.
func (rs *RenderSurface) Initialize(width, height int) error {
	switch rs.state {
	case StateDisposed:
		return lineview.ErrDisposed
	case StateUninitialized:
	default:
		return fmt.Errorf("initialize in state %s: %w", rs.state, lineview.ErrNotReady)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, lineview.ErrInvalidDimensions)
	}

	ctx, err := rs.acquireContext()
	if err != nil {
		return err
	}
	rs.ctx = ctx

	if err := rs.createResources(width, height); err != nil {
		rs.releaseResources()
		return err
	}

	rs.width = width
	rs.height = height
	rs.state = StateReady
	lineview.Logger().Info("gpu: render surface ready",
		"width", width, "height", height, "adapter", rs.ctx.adapter)
	return nil
}

func (rs *RenderSurface) acquireContext() (*gpuContext, error) {
	switch {
	case rs.opts.device != nil || rs.opts.queue != nil:
		return sharedContext(rs.opts.device, rs.opts.queue, "external")
	case rs.opts.provider != nil:
		return contextFromProvider(rs.opts.provider)
	default:
		return openContext()
	}
}

func (rs *RenderSurface) createResources(width, height int) error {
	device, queue := rs.ctx.device, rs.ctx.queue

	if err := rs.target.create(device, uint32(width), uint32(height)); err != nil { //nolint:gosec // validated positive
		return &lineview.ContextCreationError{Reason: "create render target", Err: err}
	}

	vs, err := CompileStage(device, lineview.StageVertex, rs.opts.vertexSource)
	if err != nil {
		return err
	}
	fs, err := CompileStage(device, lineview.StageFragment, rs.opts.fragmentSource)
	if err != nil {
		vs.Release()
		return err
	}
	program, err := LinkProgram(device, queue, vs, fs, targetFormat)
	if err != nil {
		return err
	}
	rs.program = program

	if err := rs.geometry.Initialize(device, queue, rs.opts.initial); err != nil {
		return &lineview.ContextCreationError{Reason: "create line geometry", Err: err}
	}

	rs.projection = lineview.Projection(width, height)
	rs.program.SetUniform(projectionUniform, rs.projection)
	return nil
}

// RenderFrame draws seg over a cleared target and reads the result back.
// It blocks until the pixels are on the CPU and returns a fresh buffer of
// width*height*4 bytes, top row first.
func (rs *RenderSurface) RenderFrame(seg lineview.LineSegment) (*lineview.FrameBuffer, error) {
	switch rs.state {
	case StateReady:
	case StateDisposed:
		return nil, lineview.ErrDisposed
	default:
		return nil, lineview.ErrNotReady
	}
	rs.state = StateRendering
	defer func() { rs.state = StateReady }()

	device := rs.ctx.device

	if err := rs.geometry.Update(seg); err != nil {
		return nil, err
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "line_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("line_frame"); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	c := rs.opts.clearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "line_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    rs.target.view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(c.R) / 255,
				G: float64(c.G) / 255,
				B: float64(c.B) / 255,
				A: float64(c.A) / 255,
			},
		}},
	})
	rs.program.Use(rp)
	rs.geometry.BindForDraw(rp)
	rs.geometry.Draw(rp)
	rp.End()

	rs.target.encodeCopy(encoder)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}

	if err := rs.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	frame := lineview.NewFrameBuffer(rs.width, rs.height)
	if err := rs.target.readPixels(device, frame.Pix); err != nil {
		return nil, err
	}
	return frame, nil
}

// submitAndWait submits cmdBuf and blocks until the queue reports it
// complete, then frees it. If the wait times out the device is drained
// before the buffer is freed.
func (rs *RenderSurface) submitAndWait(cmdBuf hal.CommandBuffer) error {
	device, queue := rs.ctx.device, rs.ctx.queue

	// Offscreen work on a host's device must not take the host's swapchain
	// semaphores.
	if rs.ctx.external {
		queue.SetSwapchainSuppressed(true)
		defer queue.SetSwapchainSuppressed(false)
	}

	idx, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("submit: %w", err)
	}
	if !waitForSubmission(queue, idx, rs.opts.waitTimeout) {
		if err := device.WaitIdle(); err != nil {
			lineview.Logger().Warn("gpu: wait idle failed", "err", err)
		}
		device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("wait for GPU: submission %d not complete after %v", idx, rs.opts.waitTimeout)
	}
	device.FreeCommandBuffer(cmdBuf)
	return nil
}

// waitForSubmission polls until queue has completed idx. It reports false
// if timeout passes first.
func waitForSubmission(queue hal.Queue, idx uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	delay := 50 * time.Microsecond
	for queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(delay)
		if delay < 2*time.Millisecond {
			delay *= 2
		}
	}
	return true
}

// Dispose releases the program, geometry, target and, if owned, the
// device. Calling it again is a no-op.
func (rs *RenderSurface) Dispose() {
	if rs.state == StateDisposed {
		return
	}
	rs.releaseResources()
	rs.state = StateDisposed
	lineview.Logger().Debug("gpu: render surface disposed")
}

func (rs *RenderSurface) releaseResources() {
	if rs.ctx == nil {
		return
	}
	if rs.program != nil {
		rs.program.Dispose()
		rs.program = nil
	}
	rs.geometry.Dispose()
	rs.target.destroy(rs.ctx.device)
	rs.ctx.release()
	rs.ctx = nil
}

// State returns the lifecycle state.
func (rs *RenderSurface) State() SurfaceState { return rs.state }

// Size returns the target dimensions, or zeros before Initialize.
func (rs *RenderSurface) Size() (width, height int) { return rs.width, rs.height }

// Projection returns the logical-to-clip matrix uploaded at Initialize.
func (rs *RenderSurface) Projection() mgl32.Mat4 { return rs.projection }

// AdapterName describes the device in use, or "" before Initialize.
func (rs *RenderSurface) AdapterName() string {
	if rs.ctx == nil {
		return ""
	}
	return rs.ctx.adapter
}
