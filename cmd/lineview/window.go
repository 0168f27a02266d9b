package main

import (
	"fmt"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/lineview/lineview"
	"github.com/lineview/lineview/gpu"
	"github.com/lineview/lineview/sink"
)

// runWindow opens a gogpu window and shows frames through win. The render
// surface is created on the window's device at the first draw; if the
// window cannot share its device the surface opens its own.
//
// Space moves the line, Escape or closing the window quits.
func runWindow(cfg lineview.Config, opts []gpu.SurfaceOption, win *sink.WindowSink) error {
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(win.Title()).
		WithSize(cfg.Width, cfg.Height))

	app.EventSource().OnKeyPress(func(key gpucontext.Key, mods gpucontext.Modifiers) {
		win.KeyPressed(key, mods)
	})

	var (
		surf   *gpu.Surface
		ctrl   *lineview.LineController
		runErr error
	)
	fail := func(err error) {
		runErr = err
		app.Quit()
	}

	app.OnDraw(func(dc *gogpu.Context) {
		if runErr != nil {
			return
		}
		if surf == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			s, err := newWindowSurface(cfg, opts, provider)
			if err != nil {
				fail(err)
				return
			}
			surf = s
			ctrl = lineview.NewLineController(surf, win, cfg.Segment(), cfg.Step)
			if err := ctrl.Refresh(); err != nil {
				fail(err)
				return
			}
		}

		more, err := drainInput(ctrl, win)
		if err != nil {
			fail(err)
			return
		}
		if !more {
			app.Quit()
			return
		}
		if err := win.Draw(dc.AsTextureDrawer()); err != nil {
			lineview.Logger().Warn("window: draw failed", "err", err)
		}
	})

	app.OnClose(func() {
		if surf != nil {
			surf.Dispose()
			surf = nil
		}
	})

	if err := app.Run(); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return runErr
}

// newWindowSurface renders on the window's device when the provider
// exposes its HAL objects, and on a private device otherwise.
func newWindowSurface(cfg lineview.Config, opts []gpu.SurfaceOption, provider gpucontext.DeviceProvider) (*gpu.Surface, error) {
	shared := append(append([]gpu.SurfaceOption{}, opts...), gpu.WithDeviceProvider(provider))
	surf, err := gpu.NewSurface(cfg.Width, cfg.Height, shared...)
	if err == nil {
		return surf, nil
	}
	lineview.Logger().Warn("window: cannot share the window device, opening a private one", "err", err)

	surf, err = gpu.NewSurface(cfg.Width, cfg.Height, opts...)
	if err != nil {
		return nil, fmt.Errorf("create render surface: %w", err)
	}
	return surf, nil
}

// drainInput feeds queued key presses to ctrl. It reports false once the
// user asked to quit.
func drainInput(ctrl *lineview.LineController, src sink.Interactive) (bool, error) {
	keys, quit := src.PollEvents()
	if quit {
		return false, nil
	}
	for _, k := range keys {
		if _, err := ctrl.HandleKey(k.Key, k.Mods); err != nil {
			return false, err
		}
	}
	return true, nil
}
