// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import "github.com/gogpu/gpucontext"

// KeyEvent is one key press, ready for LineController.HandleKey.
type KeyEvent struct {
	Key  gpucontext.Key
	Mods gpucontext.Modifiers
}

// Interactive is implemented by sinks that own a window and can deliver
// user input. Hosts poll it between frames.
type Interactive interface {
	Sink

	// PollEvents returns the key presses since the last call and whether
	// the user asked to quit.
	PollEvents() (keys []KeyEvent, quit bool)
}
