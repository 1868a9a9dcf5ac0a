package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/kellandavis/lumenmlt/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "lumenmlt"
	app.Usage = "render scenes with a tiled path tracer or a Metropolis Light Transport chain driver"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "v", Usage: "enable verbose logging"},
		cli.BoolFlag{Name: "vv", Usage: "enable even more verbose logging"},
	}
	app.Commands = []cli.Command{
		{
			Name:        "render",
			Usage:       "render a single still frame",
			Description: "Render a scene (built-in Cornell box, or a scene text file) to a PNG file.",
			Flags:       cmd.RenderFrameFlags,
			Action:      cmd.RenderFrame,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
