// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/lineview/lineview"
)

// encoder writes one image in a file format.
type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	".png": png.Encode,
	".bmp": bmp.Encode,
}

// FileSink writes every presented frame to an image file. The format is
// chosen by the extension of the path (.png or .bmp). A path containing a
// %d verb gets the 1-based frame number, so each frame lands in its own
// file; otherwise the file is overwritten.
type FileSink struct {
	path   string
	enc    encoder
	frames int
	closed bool
}

// NewFileSink returns a FileSink writing to path.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, ErrNoOutput
	}
	ext := strings.ToLower(filepath.Ext(path))
	enc, ok := encoders[ext]
	if !ok {
		return nil, fmt.Errorf("sink: unsupported image format %q", ext)
	}
	return &FileSink{path: path, enc: enc}, nil
}

// Present encodes frame and writes it out.
func (f *FileSink) Present(frame *lineview.FrameBuffer) error {
	if f.closed {
		return ErrClosed
	}
	if frame == nil {
		return ErrNilFrame
	}
	f.frames++
	path := f.Path(f.frames)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink: create %s: %w", path, err)
	}
	w := bufio.NewWriter(out)
	if err := f.enc(w, frame.ToImage()); err != nil {
		_ = out.Close()
		return fmt.Errorf("sink: encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("sink: close %s: %w", path, err)
	}
	lineview.Logger().Debug("sink: frame written", "path", path, "frame", f.frames)
	return nil
}

// Path returns the file name used for the n-th frame. The first "%d" in
// the output path is replaced by n; any other '%' is kept as is.
func (f *FileSink) Path(n int) string {
	return strings.Replace(f.path, "%d", strconv.Itoa(n), 1)
}

// Frames returns how many frames have been written.
func (f *FileSink) Frames() int { return f.frames }

// Close marks the sink closed. Files are closed after every Present.
func (f *FileSink) Close() error {
	f.closed = true
	return nil
}

func init() {
	Register("file", 20, func(opts Options) (Sink, error) {
		return NewFileSink(opts.Output)
	}, nil)
}
