package lineview

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Renderer produces one frame for a segment. internal/gpu.RenderSurface is
// the GPU implementation; RenderFrame blocks until the pixels are on the CPU.
type Renderer interface {
	RenderFrame(seg LineSegment) (*FrameBuffer, error)
}

// PixelSink stages a finished frame on a host display surface. Every call
// replaces the whole frame; the stride is always Width*4.
type PixelSink interface {
	Present(frame *FrameBuffer) error
}

// Offset is a (dx, dy) nudge applied to both endpoints.
type Offset struct {
	DX float32 `yaml:"dx"`
	DY float32 `yaml:"dy"`
}

// LineController owns the segment and turns user actions into renders.
//
// LineController is NOT safe for concurrent use. It is meant to be driven
// from the host's UI thread, the same thread that owns the GPU device.
type LineController struct {
	segment  LineSegment
	renderer Renderer
	sink     PixelSink
	bindings map[gpucontext.Key]Offset
}

// NewLineController creates a controller that starts at initial. step is
// bound to the Space key; more bindings can be added with Bind.
func NewLineController(r Renderer, s PixelSink, initial LineSegment, step Offset) *LineController {
	return &LineController{
		segment:  initial,
		renderer: r,
		sink:     s,
		bindings: map[gpucontext.Key]Offset{gpucontext.KeySpace: step},
	}
}

// Segment returns a copy of the current segment.
func (c *LineController) Segment() LineSegment {
	return c.segment
}

// Bind maps key to an offset for HandleKey.
func (c *LineController) Bind(key gpucontext.Key, off Offset) {
	c.bindings[key] = off
}

// MoveLine adds (dx, dy) to both endpoints, renders one frame and hands it
// to the sink. Every call produces exactly one render and one present.
func (c *LineController) MoveLine(dx, dy float32) error {
	c.segment.Translate(dx, dy)
	Logger().Debug("lineview: move line",
		"dx", dx, "dy", dy,
		"start", c.segment.Start, "end", c.segment.End)
	return c.Refresh()
}

// Refresh renders the current segment without moving it.
func (c *LineController) Refresh() error {
	if c.renderer == nil {
		return ErrNoRenderer
	}
	if c.sink == nil {
		return ErrNoSink
	}
	frame, err := c.renderer.RenderFrame(c.segment)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	if err := c.sink.Present(frame); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

// HandleKey is a host key-press adapter. It reports whether key was bound
// and, if so, the result of the resulting MoveLine.
func (c *LineController) HandleKey(key gpucontext.Key, _ gpucontext.Modifiers) (bool, error) {
	off, ok := c.bindings[key]
	if !ok {
		return false, nil
	}
	return true, c.MoveLine(off.DX, off.DY)
}
