// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"sync"

	"github.com/lineview/lineview"
)

// MemorySink keeps a private copy of the most recent frame.
// It is the sink used by tests and by headless hosts.
type MemorySink struct {
	mu       sync.Mutex
	last     *lineview.FrameBuffer
	presents int
	closed   bool
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Present replaces the stored frame with a copy of frame.
func (m *MemorySink) Present(frame *lineview.FrameBuffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if frame == nil {
		return ErrNilFrame
	}
	m.last = frame.Clone()
	m.presents++
	return nil
}

// Last returns a copy of the most recent frame, or nil before the first
// Present.
func (m *MemorySink) Last() *lineview.FrameBuffer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return nil
	}
	return m.last.Clone()
}

// Presents returns the number of frames presented so far.
func (m *MemorySink) Presents() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.presents
}

// Close drops the stored frame.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = nil
	m.closed = true
	return nil
}

func init() {
	Register("memory", 10, func(Options) (Sink, error) {
		return NewMemorySink(), nil
	}, nil)
}
