// Copyright 2026 The lineview Authors
// SPDX-License-Identifier: MIT

package sink

import (
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	_ "golang.org/x/image/bmp"

	"github.com/lineview/lineview"
)

func testFrame() *lineview.FrameBuffer {
	f := lineview.NewFrameBuffer(8, 4)
	f.Fill(lineview.BGRA{A: 255})
	f.SetPixel(1, 0, lineview.BGRA{B: 10, G: 20, R: 200, A: 255})
	f.SetPixel(6, 3, lineview.BGRA{B: 255, G: 128, R: 0, A: 255})
	return f
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	img, _, err := image.Decode(in)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestFileSinkRoundTrip(t *testing.T) {
	for _, ext := range []string{".png", ".bmp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "frame"+ext)
			s, err := NewFileSink(path)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			frame := testFrame()
			if err := s.Present(frame); err != nil {
				t.Fatalf("Present: %v", err)
			}

			img := decodeFile(t, path)
			if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
				t.Fatalf("decoded bounds %v", img.Bounds())
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 8; x++ {
					p := frame.PixelAt(x, y)
					want := color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
					got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
					if got != want {
						t.Errorf("(%d,%d) = %+v, want %+v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestFileSinkNumberedFrames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(filepath.Join(dir, "frame-%d.png"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Present(testFrame()); err != nil {
			t.Fatal(err)
		}
	}
	if s.Frames() != 3 {
		t.Errorf("Frames() = %d", s.Frames())
	}
	for _, name := range []string{"frame-1.png", "frame-2.png", "frame-3.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestFileSinkPathKeepsOtherPercents(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"50%-%d.png", "50%-7.png"},
		{"%s-%d.png", "%s-7.png"},
		{"100%.png", "100%.png"},
		{"a-%d-%d.png", "a-7-%d.png"},
	}
	for _, tt := range tests {
		s, err := NewFileSink(tt.path)
		if err != nil {
			t.Fatal(err)
		}
		if got := s.Path(7); got != tt.want {
			t.Errorf("Path(7) for %q = %q, want %q", tt.path, got, tt.want)
		}
	}

	dir := t.TempDir()
	s, err := NewFileSink(filepath.Join(dir, "50%-%d.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Present(testFrame()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "50%-1.png")); err != nil {
		t.Errorf("missing 50%%-1.png: %v", err)
	}
}

func TestFileSinkErrors(t *testing.T) {
	if _, err := NewFileSink("frame.gif"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := NewFileSink(""); err != ErrNoOutput {
		t.Errorf("empty path: got %v", err)
	}

	s, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "frame.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Present(testFrame()); err == nil {
		t.Error("expected error writing into a missing directory")
	}
	if err := s.Present(nil); err != ErrNilFrame {
		t.Errorf("Present(nil): got %v", err)
	}
	_ = s.Close()
	if err := s.Present(testFrame()); err != ErrClosed {
		t.Errorf("Present after Close: got %v", err)
	}
}
