package lineview

// Endpoint is one end of the line in logical pixel space.
// The origin is the bottom-left corner of the surface and Y points up.
type Endpoint struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// Pt is a convenience function to create an Endpoint.
func Pt(x, y float32) Endpoint {
	return Endpoint{X: x, Y: y}
}

// Add returns the endpoint offset by (dx, dy).
func (p Endpoint) Add(dx, dy float32) Endpoint {
	return Endpoint{X: p.X + dx, Y: p.Y + dy}
}

// LineSegment is the ordered pair of endpoints that makes up the scene.
// Coordinates may be negative or exceed the surface bounds; the GPU clips.
type LineSegment struct {
	Start, End Endpoint
}

// Segment is a convenience function to create a LineSegment.
func Segment(x0, y0, x1, y1 float32) LineSegment {
	return LineSegment{Start: Pt(x0, y0), End: Pt(x1, y1)}
}

// Translate moves both endpoints by (dx, dy) in place.
func (s *LineSegment) Translate(dx, dy float32) {
	s.Start = s.Start.Add(dx, dy)
	s.End = s.End.Add(dx, dy)
}

// Vertices returns the four coordinates in upload order: start x, start y,
// end x, end y.
func (s LineSegment) Vertices() [4]float32 {
	return [4]float32{s.Start.X, s.Start.Y, s.End.X, s.End.Y}
}
