package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/lineview/lineview"
)

const (
	// lineVertexCount is the number of vertices in the line list.
	lineVertexCount = 2

	// lineVertexStride is one Float32x2 position.
	lineVertexStride = 8

	lineBufferSize = lineVertexCount * lineVertexStride
)

// lineVertexLayout describes attribute location 0 as two float32 per vertex
// with no padding.
func lineVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: lineVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

// LineGeometry is the GPU vertex buffer holding the two endpoints.
// The buffer is created once and overwritten in place on every Update.
type LineGeometry struct {
	device hal.Device
	queue  hal.Queue
	buf    hal.Buffer
}

// Initialize allocates the vertex buffer and uploads seg.
func (g *LineGeometry) Initialize(device hal.Device, queue hal.Queue, seg lineview.LineSegment) error {
	if g.buf != nil {
		g.Dispose()
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "line_vertices",
		Size:  lineBufferSize,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	g.device = device
	g.queue = queue
	g.buf = buf
	if err := g.Update(seg); err != nil {
		g.Dispose()
		return err
	}
	return nil
}

// Update replaces the buffer contents with the endpoints of seg. The
// write is ordered before any later submission on the same queue.
// Before Initialize it does nothing.
func (g *LineGeometry) Update(seg lineview.LineSegment) error {
	if g.buf == nil {
		return nil
	}
	data := encodeVertices(seg)
	if err := g.queue.WriteBuffer(g.buf, 0, data[:]); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	return nil
}

// BindForDraw sets the vertex buffer on slot 0 of the render pass.
func (g *LineGeometry) BindForDraw(rp hal.RenderPassEncoder) {
	rp.SetVertexBuffer(0, g.buf, 0)
}

// Draw records the line list draw call.
func (g *LineGeometry) Draw(rp hal.RenderPassEncoder) {
	rp.Draw(lineVertexCount, 1, 0, 0)
}

// Dispose destroys the vertex buffer.
func (g *LineGeometry) Dispose() {
	if g.buf != nil {
		g.device.DestroyBuffer(g.buf)
		g.buf = nil
	}
}

// encodeVertices packs the segment as little-endian float32 x0, y0, x1, y1.
func encodeVertices(seg lineview.LineSegment) [lineBufferSize]byte {
	var data [lineBufferSize]byte
	for i, f := range seg.Vertices() {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	return data
}
