package lineview

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 450 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Segment() != Segment(100, 100, 300, 300) {
		t.Errorf("segment = %+v", cfg.Segment())
	}
	if cfg.Step != (Offset{DX: 10, DY: 10}) {
		t.Errorf("step = %+v", cfg.Step)
	}
	if cfg.ClearColor.BGRA() != (BGRA{A: 255}) {
		t.Errorf("clear color = %+v", cfg.ClearColor)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
width: 320
height: 240
start: {x: 10, y: 20}
step: {dx: -1, dy: 0.5}
clear_color: {r: 255, g: 255, b: 255, a: 255}
sink: file
output: out.png
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Start != Pt(10, 20) {
		t.Errorf("start = %+v", cfg.Start)
	}
	if cfg.End != Pt(300, 300) {
		t.Errorf("end should keep its default, got %+v", cfg.End)
	}
	if cfg.Step != (Offset{DX: -1, DY: 0.5}) {
		t.Errorf("step = %+v", cfg.Step)
	}
	if cfg.ClearColor.BGRA() != (BGRA{B: 255, G: 255, R: 255, A: 255}) {
		t.Errorf("clear color = %+v", cfg.ClearColor)
	}
	if cfg.Sink != "file" || cfg.Output != "out.png" {
		t.Errorf("sink = %q output = %q", cfg.Sink, cfg.Output)
	}
	if cfg.FramebufferDevice != "/dev/fb0" {
		t.Errorf("framebuffer device = %q", cfg.FramebufferDevice)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"zero width", "width: 0\n", ErrInvalidDimensions},
		{"negative height", "height: -4\n", ErrInvalidDimensions},
		{"one shader", "vertex_shader: a.wgsl\n", nil},
		{"empty sink", "sink: \"\"\n", nil},
		{"bad yaml", "width: [\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want fs.ErrNotExist", err)
	}
}
