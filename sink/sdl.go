//go:build sdl2

// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/lineview/lineview"
)

var _ Interactive = (*SDLSink)(nil)

// SDLSink shows frames in an SDL window through a streaming texture.
// ARGB8888 is B,G,R,A in memory on little-endian hosts, the same layout
// as FrameBuffer, so rows are copied without conversion.
//
// All methods must be called from the thread that created the sink.
// go-sdl2 needs cgo, so like FramebufferSink it cannot be linked together
// with the GPU renderer; hosts built with CGO_ENABLED=0 use WindowSink.
type SDLSink struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int
	height   int
}

// NewSDLSink initializes SDL video and opens a width×height window.
func NewSDLSink(title string, width, height int) (*SDLSink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("sink: %dx%d: %w", width, height, lineview.ErrInvalidDimensions)
	}
	if title == "" {
		title = DefaultTitle
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sink: init SDL: %w", err)
	}
	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),  //nolint:gosec // window sizes fit int32
		int32(height), //nolint:gosec // window sizes fit int32
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sink: create window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sink: create renderer: %w", err)
	}
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width),  //nolint:gosec // window sizes fit int32
		int32(height), //nolint:gosec // window sizes fit int32
	)
	if err != nil {
		_ = renderer.Destroy()
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sink: create texture: %w", err)
	}
	return &SDLSink{
		window:   window,
		renderer: renderer,
		texture:  texture,
		width:    width,
		height:   height,
	}, nil
}

// Present uploads frame to the texture and presents the window.
func (s *SDLSink) Present(frame *lineview.FrameBuffer) error {
	if s.texture == nil {
		return ErrClosed
	}
	if frame == nil {
		return ErrNilFrame
	}
	if frame.Width != s.width || frame.Height != s.height {
		return fmt.Errorf("sink: frame %dx%d does not match window %dx%d",
			frame.Width, frame.Height, s.width, s.height)
	}

	pixels, pitch, err := s.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("sink: lock texture: %w", err)
	}
	rowBytes := frame.Width * 4
	for row := 0; row < frame.Height; row++ {
		copy(pixels[row*pitch:row*pitch+rowBytes], frame.Pix[row*frame.Stride:row*frame.Stride+rowBytes])
	}
	s.texture.Unlock()

	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("sink: clear: %w", err)
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return fmt.Errorf("sink: copy: %w", err)
	}
	s.renderer.Present()
	return nil
}

// PollEvents drains the SDL event queue. Escape and closing the window
// both request quit.
func (s *SDLSink) PollEvents() (keys []KeyEvent, quit bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if ev.Type != sdl.KEYDOWN {
				continue
			}
			switch ev.Keysym.Sym {
			case sdl.K_ESCAPE:
				quit = true
			case sdl.K_SPACE:
				keys = append(keys, KeyEvent{Key: gpucontext.KeySpace})
			}
		}
	}
	return keys, quit
}

// Close destroys the texture, renderer and window and shuts SDL down.
func (s *SDLSink) Close() error {
	if s.texture == nil {
		return nil
	}
	_ = s.texture.Destroy()
	_ = s.renderer.Destroy()
	_ = s.window.Destroy()
	s.texture, s.renderer, s.window = nil, nil, nil
	sdl.Quit()
	return nil
}

func init() {
	Register("sdl", 100, func(opts Options) (Sink, error) {
		return NewSDLSink(opts.Title, opts.Width, opts.Height)
	}, nil)
}
