//go:build linux && fbdev

// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"fmt"
	"image"
	"image/color"
	"os"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"

	"github.com/lineview/lineview"
)

// DefaultFramebufferDevice is the console framebuffer opened when
// Options.Device is empty.
const DefaultFramebufferDevice = "/dev/fb0"

// FramebufferSink shows frames on a Linux console framebuffer, scaled to
// the full screen with nearest-neighbour sampling.
//
// Built only with -tags fbdev. gonutz/framebuffer needs cgo, and the Vulkan
// loader behind internal/gpu only builds with CGO_ENABLED=0, so this sink
// cannot share a binary with the GPU renderer.
type FramebufferSink struct {
	dev    *fb.Device
	canvas *image.NRGBA
}

// NewFramebufferSink opens device, or /dev/fb0 if device is empty.
func NewFramebufferSink(device string) (*FramebufferSink, error) {
	if device == "" {
		device = DefaultFramebufferDevice
	}
	dev, err := fb.Open(device)
	if err != nil {
		return nil, fmt.Errorf("sink: open framebuffer %s: %w", device, err)
	}
	bounds := dev.Bounds()
	lineview.Logger().Info("sink: framebuffer open",
		"device", device, "width", bounds.Dx(), "height", bounds.Dy())
	return &FramebufferSink{
		dev:    dev,
		canvas: image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
	}, nil
}

// Present scales frame onto the screen.
func (s *FramebufferSink) Present(frame *lineview.FrameBuffer) error {
	if s.dev == nil {
		return ErrClosed
	}
	if frame == nil {
		return ErrNilFrame
	}
	xdraw.NearestNeighbor.Scale(s.canvas, s.canvas.Bounds(), frame.ToImage(), frame.Bounds(), xdraw.Src, nil)

	bounds := s.dev.Bounds()
	for y := 0; y < s.canvas.Rect.Dy(); y++ {
		for x := 0; x < s.canvas.Rect.Dx(); x++ {
			p := s.canvas.NRGBAAt(x, y)
			s.dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF})
		}
	}
	return nil
}

// Close unmaps the framebuffer.
func (s *FramebufferSink) Close() error {
	if s.dev != nil {
		s.dev.Close()
		s.dev = nil
	}
	return nil
}

func framebufferAvailable() bool {
	_, err := os.Stat(DefaultFramebufferDevice)
	return err == nil
}

func init() {
	Register("framebuffer", 50, func(opts Options) (Sink, error) {
		return NewFramebufferSink(opts.Device)
	}, framebufferAvailable)
}
