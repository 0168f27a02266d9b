// Command lineview renders a line segment on the GPU and moves it on demand.
//
// Headless sinks (memory, file) render the initial frame and then apply
// --moves steps. The window sink opens a gogpu window where Space moves the
// line and Escape quits. --sink auto picks the best sink that opens.
//
// The Vulkan loader only builds with CGO_ENABLED=0, so the cgo-only sdl and
// framebuffer sinks are not part of this command.
//
// Usage:
//
//	lineview --sink file --output frame-%d.png --moves 3
//	lineview --sink window
//	lineview --list-sinks
//	lineview --config lineview.yaml
package main

import (
	"log"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func init() {
	// The GPU device and the window must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	app := cli.NewApp()
	app.Name = "lineview"
	app.Usage = "render a movable line segment on the GPU"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML config file",
		},
		cli.StringFlag{
			Name:  "sink, s",
			Usage: "pixel sink: memory, file, window or auto (default from config)",
		},
		cli.BoolFlag{
			Name:  "list-sinks",
			Usage: "list registered sinks and exit",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "output file for the file sink; %d is replaced by the frame number",
		},
		cli.IntFlag{
			Name:  "moves, n",
			Value: 1,
			Usage: "number of move-line steps in headless mode",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
