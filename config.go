package lineview

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default scene values.
const (
	DefaultWidth  = 800
	DefaultHeight = 450
	DefaultSink   = "memory"

	// AutoSink asks the host to pick the best sink available.
	AutoSink = "auto"
)

// Config describes one line view: surface size, the starting segment, the
// per-action step and where frames go. It is loaded from YAML by the demo
// command and can be built directly by library users.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Start Endpoint `yaml:"start"`
	End   Endpoint `yaml:"end"`
	Step  Offset   `yaml:"step"`

	// ClearColor is the background, as 8-bit straight RGBA.
	ClearColor ColorConfig `yaml:"clear_color"`

	// VertexShader and FragmentShader are WGSL file paths. Empty means the
	// built-in shaders.
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`

	Sink              string `yaml:"sink"`
	Output            string `yaml:"output"`
	FramebufferDevice string `yaml:"framebuffer_device"`
}

// ColorConfig is an 8-bit RGBA color in config files.
type ColorConfig struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

// BGRA converts the color to pixel memory order.
func (c ColorConfig) BGRA() BGRA {
	return BGRA{B: c.B, G: c.G, R: c.R, A: c.A}
}

// DefaultConfig returns the 800×450 scene with the segment (100,100)→(300,300)
// moving by (10,10) per action over an opaque black background.
func DefaultConfig() Config {
	return Config{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Start:             Pt(100, 100),
		End:               Pt(300, 300),
		Step:              Offset{DX: 10, DY: 10},
		ClearColor:        ColorConfig{A: 255},
		Sink:              DefaultSink,
		FramebufferDevice: "/dev/fb0",
	}
}

// Segment returns the configured initial segment.
func (c Config) Segment() LineSegment {
	return LineSegment{Start: c.Start, End: c.End}
}

// Validate checks the values that would otherwise fail deep inside the GPU
// setup.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, c.Width, c.Height)
	}
	if (c.VertexShader == "") != (c.FragmentShader == "") {
		return errors.New("lineview: vertex_shader and fragment_shader must be set together")
	}
	if c.Sink == "" {
		return errors.New("lineview: sink must not be empty")
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
