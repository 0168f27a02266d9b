package lineview

import (
	"bytes"
	"image"
	"image/color"
)

// BGRA is one FrameBuffer pixel in memory order.
type BGRA struct {
	B, G, R, A uint8
}

// RGBA implements color.Color. Pixels are treated as straight alpha.
func (c BGRA) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// FrameBuffer is the CPU-side copy of one rendered frame.
//
// Pix holds Height rows of Width BGRA8 pixels, Stride bytes apart. Row 0 is
// the top of the image. A new FrameBuffer is allocated for every render; the
// previous one is never reused.
type FrameBuffer struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewFrameBuffer allocates a zeroed width×height BGRA8 buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Stride: width * 4,
		Pix:    make([]byte, width*height*4),
	}
}

// PixelAt returns the pixel at image column x and row y (top-left origin).
// Out-of-range coordinates return the zero pixel.
func (f *FrameBuffer) PixelAt(x, y int) BGRA {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return BGRA{}
	}
	i := y*f.Stride + x*4
	return BGRA{B: f.Pix[i+0], G: f.Pix[i+1], R: f.Pix[i+2], A: f.Pix[i+3]}
}

// SetPixel sets the pixel at image column x and row y.
func (f *FrameBuffer) SetPixel(x, y int, c BGRA) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	i := y*f.Stride + x*4
	f.Pix[i+0] = c.B
	f.Pix[i+1] = c.G
	f.Pix[i+2] = c.R
	f.Pix[i+3] = c.A
}

// LogicalAt returns the pixel covering logical point p (bottom-left origin).
func (f *FrameBuffer) LogicalAt(p Endpoint) BGRA {
	col, row, ok := ToImagePoint(p, f.Width, f.Height)
	if !ok {
		return BGRA{}
	}
	return f.PixelAt(col, row)
}

// Fill sets every pixel to c.
func (f *FrameBuffer) Fill(c BGRA) {
	for i := 0; i+3 < len(f.Pix); i += 4 {
		f.Pix[i+0] = c.B
		f.Pix[i+1] = c.G
		f.Pix[i+2] = c.R
		f.Pix[i+3] = c.A
	}
}

// CountNot returns how many pixels differ from c.
func (f *FrameBuffer) CountNot(c BGRA) int {
	n := 0
	for i := 0; i+3 < len(f.Pix); i += 4 {
		if f.Pix[i] != c.B || f.Pix[i+1] != c.G || f.Pix[i+2] != c.R || f.Pix[i+3] != c.A {
			n++
		}
	}
	return n
}

// Equal reports whether two frames have the same size and pixels.
func (f *FrameBuffer) Equal(o *FrameBuffer) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Width == o.Width && f.Height == o.Height && f.Stride == o.Stride &&
		bytes.Equal(f.Pix, o.Pix)
}

// Clone returns a deep copy.
func (f *FrameBuffer) Clone() *FrameBuffer {
	c := *f
	c.Pix = append([]byte(nil), f.Pix...)
	return &c
}

// At implements the image.Image interface.
func (f *FrameBuffer) At(x, y int) color.Color {
	return f.PixelAt(x, y)
}

// Bounds implements the image.Image interface.
func (f *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// ColorModel implements the image.Image interface.
func (f *FrameBuffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// ToImage converts the frame to an image.NRGBA, swapping B and R.
func (f *FrameBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(f.Bounds())
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride : y*f.Stride+f.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		for i := 0; i < len(src); i += 4 {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
	return img
}
