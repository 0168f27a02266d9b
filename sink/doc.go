// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

// Package sink provides lineview.PixelSink implementations.
//
// A sink receives every rendered frame as a BGRA8 FrameBuffer and puts it
// somewhere a person can see it. Each Present replaces the whole frame.
//
// # Sinks
//
//   - MemorySink: keeps a copy of the last frame (tests, headless hosts)
//   - FileSink: writes PNG or BMP files
//   - WindowSink: textures for a gogpu window (or any gpucontext.TextureDrawer)
//   - FramebufferSink: Linux console framebuffer (/dev/fb0), built with -tags fbdev
//   - SDLSink: SDL2 window, built with -tags sdl2
//
// The fbdev and sdl2 sinks need cgo. The Vulkan loader used by the gpu
// package builds only with CGO_ENABLED=0, so those two sinks cannot be
// linked into a binary that also renders with it.
//
// # Registry
//
// Sinks register themselves by name and priority so a host can pick one
// from configuration:
//
//	s, err := sink.New(cfg.Sink, sink.Options{Width: cfg.Width, Height: cfg.Height})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// NewBest opens the highest priority sink that is available and opens
// without error.
package sink
