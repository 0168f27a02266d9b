// Package lineview renders a single 2D line segment on the GPU and hands the
// frame to a CPU-side pixel sink.
//
// # Overview
//
// The GPU pipeline (package gpu, built on gogpu/wgpu) draws into an offscreen
// BGRA8 texture and reads the result back synchronously. The host never sees
// a GPU surface, only a FrameBuffer of width*height*4 bytes. A LineController
// ties a user action ("move line") to exactly one render and one present.
//
// # Quick Start
//
//	cfg := lineview.DefaultConfig()
//	surf, err := gpu.NewSurface(cfg.Width, cfg.Height, gpu.WithClearColor(cfg.ClearColor.BGRA()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer surf.Dispose()
//
//	out := sink.NewMemorySink()
//	ctrl := lineview.NewLineController(surf, out, cfg.Segment(), cfg.Step)
//	if err := ctrl.MoveLine(10, 10); err != nil {
//	    log.Fatal(err)
//	}
//
// # Coordinates
//
// Endpoints live in logical pixel space: origin at the bottom-left corner,
// Y up, [0,width]×[0,height]. Projection maps that space to clip space.
// FrameBuffer rows are stored top row first, so logical y = 0 is the last
// row of the buffer; use FrameBuffer.LogicalAt or ToImagePoint to convert.
//
// # Architecture
//
//   - lineview: data model, errors, logging, config, LineController
//   - gpu: RenderSurface construction and shader file loading
//   - internal/gpu: ShaderProgram, LineGeometry, RenderSurface
//   - sink: PixelSink implementations (memory, file, framebuffer, SDL)
//   - cmd/lineview: demo host
package lineview
