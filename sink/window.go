// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/lineview/lineview"
)

// DefaultTitle is the window title used when Options.Title is empty.
const DefaultTitle = "lineview"

var _ Interactive = (*WindowSink)(nil)

// textureDestroyer matches gogpu's Texture.Destroy.
type textureDestroyer interface {
	Destroy()
}

// WindowSink stages frames for a host window that draws textures through
// gpucontext, such as a gogpu App. Present only converts and stores the
// frame; the host calls Draw from its draw callback and feeds key presses
// in through KeyPressed.
//
// Present, KeyPressed and PollEvents may be called from any goroutine.
// Draw must be called from the host's render thread.
type WindowSink struct {
	title string

	mu     sync.Mutex
	rgba   []byte
	width  int
	height int
	dirty  bool
	tex    gpucontext.Texture
	keys   []KeyEvent
	quit   bool
	closed bool
}

// NewWindowSink returns an empty sink. title is only reported through
// Title for the host to use; an empty title means DefaultTitle.
func NewWindowSink(title string) *WindowSink {
	if title == "" {
		title = DefaultTitle
	}
	return &WindowSink{title: title}
}

// Title returns the window title the host should use.
func (w *WindowSink) Title() string { return w.title }

// Present stores frame as RGBA for the next Draw.
func (w *WindowSink) Present(frame *lineview.FrameBuffer) error {
	if frame == nil {
		return ErrNilFrame
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	n := frame.Width * frame.Height * 4
	if len(w.rgba) != n {
		w.rgba = make([]byte, n)
	}
	bgraToRGBA(w.rgba, frame.Pix)
	w.width = frame.Width
	w.height = frame.Height
	w.dirty = true
	return nil
}

// Draw uploads the latest frame if it changed and draws it at the origin.
// It does nothing before the first Present.
func (w *WindowSink) Draw(drawer gpucontext.TextureDrawer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.rgba == nil {
		return nil
	}
	if w.dirty || w.tex == nil {
		if err := w.upload(drawer); err != nil {
			return err
		}
		w.dirty = false
	}
	return drawer.DrawTexture(w.tex, 0, 0)
}

// upload updates the texture in place, or creates a new one on first use,
// after a size change, or when the texture cannot be updated. Must be
// called with w.mu held.
func (w *WindowSink) upload(drawer gpucontext.TextureDrawer) error {
	if w.tex != nil && w.tex.Width() == w.width && w.tex.Height() == w.height {
		if updater, ok := w.tex.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(w.rgba); err != nil {
				return fmt.Errorf("sink: update window texture: %w", err)
			}
			return nil
		}
	}

	creator := drawer.TextureCreator()
	if creator == nil {
		return ErrNoTextureCreator
	}
	tex, err := creator.NewTextureFromRGBA(w.width, w.height, w.rgba)
	if err != nil {
		return fmt.Errorf("sink: create window texture: %w", err)
	}
	// The old texture is only destroyed once its replacement exists.
	destroyTexture(w.tex)
	w.tex = tex
	lineview.Logger().Debug("sink: window texture created", "width", w.width, "height", w.height)
	return nil
}

// KeyPressed queues a key press for PollEvents. Escape requests quit.
// Its signature matches gpucontext.EventSource.OnKeyPress.
func (w *WindowSink) KeyPressed(key gpucontext.Key, mods gpucontext.Modifiers) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if key == gpucontext.KeyEscape {
		w.quit = true
		return
	}
	w.keys = append(w.keys, KeyEvent{Key: key, Mods: mods})
}

// PollEvents returns the queued key presses and whether Escape was pressed.
func (w *WindowSink) PollEvents() (keys []KeyEvent, quit bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	keys, w.keys = w.keys, nil
	return keys, w.quit
}

// Close destroys the window texture. The window itself belongs to the host.
func (w *WindowSink) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	destroyTexture(w.tex)
	w.tex = nil
	w.rgba = nil
	w.closed = true
	return nil
}

func destroyTexture(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// bgraToRGBA swaps the red and blue channels of src into dst.
func bgraToRGBA(dst, src []byte) {
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}

// windowAvailable reports whether a display server is reachable. Only
// Linux and BSDs need one named in the environment.
func windowAvailable() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != ""
}

func init() {
	Register("window", 90, func(opts Options) (Sink, error) {
		return NewWindowSink(opts.Title), nil
	}, windowAvailable)
}
