package lineview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection returns the orthographic transform that maps logical pixel
// space [0,width]×[0,height] onto clip space [-1,1]². The matrix is
// column-major, matching the WGSL mat4x4<f32> memory layout.
func Projection(width, height int) mgl32.Mat4 {
	return mgl32.Ortho(0, float32(width), 0, float32(height), -1, 1)
}

// ProjectEndpoint applies m to p and returns the clip-space position.
func ProjectEndpoint(m mgl32.Mat4, p Endpoint) mgl32.Vec2 {
	v := m.Mul4x1(mgl32.Vec4{p.X, p.Y, 0, 1})
	return mgl32.Vec2{v.X() / v.W(), v.Y() / v.W()}
}

// ToImagePoint converts a logical endpoint to the column and row of the
// FrameBuffer pixel that covers it. Rows count down from the top of the
// image, so logical y = 0 falls on the last row. ok is false when the
// point lies outside the surface.
func ToImagePoint(p Endpoint, width, height int) (col, row int, ok bool) {
	col = int(math.Floor(float64(p.X)))
	row = height - 1 - int(math.Floor(float64(p.Y)))
	ok = col >= 0 && col < width && row >= 0 && row < height
	return col, row, ok
}
