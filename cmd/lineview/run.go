package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/lineview/lineview"
	"github.com/lineview/lineview/gpu"
	"github.com/lineview/lineview/sink"
)

func run(ctx *cli.Context) error {
	level := slog.LevelInfo
	if ctx.Bool("v") {
		level = slog.LevelDebug
	}
	lineview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if ctx.Bool("list-sinks") {
		listSinks(os.Stdout)
		return nil
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	opts := []gpu.SurfaceOption{
		gpu.WithClearColor(cfg.ClearColor.BGRA()),
		gpu.WithInitialSegment(cfg.Segment()),
	}
	if cfg.VertexShader != "" {
		vs, fs, err := gpu.LoadShaderFiles(cfg.VertexShader, cfg.FragmentShader)
		if err != nil {
			return err
		}
		opts = append(opts, gpu.WithShaderSources(vs, fs))
	}

	out, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	if win, ok := out.(*sink.WindowSink); ok {
		return runWindow(cfg, opts, win)
	}

	surf, err := gpu.NewSurface(cfg.Width, cfg.Height, opts...)
	if err != nil {
		return fmt.Errorf("create render surface: %w", err)
	}
	defer surf.Dispose()

	ctrl := lineview.NewLineController(surf, out, cfg.Segment(), cfg.Step)
	if err := ctrl.Refresh(); err != nil {
		return err
	}
	return runHeadless(ctrl, cfg.Step, ctx.Int("moves"))
}

// openSink opens the configured sink. "auto" picks the highest priority
// sink that opens on this system.
func openSink(cfg lineview.Config) (sink.Sink, error) {
	opts := sink.Options{
		Width:  cfg.Width,
		Height: cfg.Height,
		Output: cfg.Output,
		Device: cfg.FramebufferDevice,
		Title:  "lineview",
	}
	if cfg.Sink == lineview.AutoSink {
		s, err := sink.NewBest(opts)
		if err != nil {
			return nil, fmt.Errorf("open sink (tried %v): %w", sink.Available(), err)
		}
		return s, nil
	}
	s, err := sink.New(cfg.Sink, opts)
	if err != nil {
		return nil, fmt.Errorf("open sink %q: %w", cfg.Sink, err)
	}
	return s, nil
}

// listSinks prints every registered sink, best first.
func listSinks(w io.Writer) {
	available := map[string]bool{}
	for _, name := range sink.Available() {
		available[name] = true
	}
	for _, name := range sink.List() {
		state := "unavailable"
		if available[name] {
			state = "available"
		}
		fmt.Fprintf(w, "%-12s %s\n", name, state)
	}
}

// loadConfig reads --config (or the defaults) and applies flag overrides.
func loadConfig(ctx *cli.Context) (lineview.Config, error) {
	cfg := lineview.DefaultConfig()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = lineview.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if s := ctx.String("sink"); s != "" {
		cfg.Sink = s
	}
	if o := ctx.String("output"); o != "" {
		cfg.Output = o
	}
	return cfg, cfg.Validate()
}

func runHeadless(ctrl *lineview.LineController, step lineview.Offset, moves int) error {
	for i := 0; i < moves; i++ {
		if err := ctrl.MoveLine(step.DX, step.DY); err != nil {
			return err
		}
	}
	seg := ctrl.Segment()
	lineview.Logger().Info("done",
		"moves", moves,
		"start", seg.Start, "end", seg.End)
	return nil
}
