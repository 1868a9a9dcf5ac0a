package main

import (
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/kellandavis/lumenmlt/pkg/config"
	"github.com/kellandavis/lumenmlt/pkg/integrator"
	"github.com/kellandavis/lumenmlt/pkg/renderer"
	"github.com/kellandavis/lumenmlt/pkg/scene"
	"github.com/kellandavis/lumenmlt/web/server"

	"github.com/kellandavis/lumenmlt/log"
)

var logger = log.New("web-main")

func main() {
	app := cli.NewApp()
	app.Name = "lumenmlt-web"
	app.Usage = "serve a progressively-rendered scene over a websocket"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP port to serve on"},
		cli.IntFlag{Name: "width", Value: 400, Usage: "frame width"},
		cli.IntFlag{Name: "height", Value: 400, Usage: "frame height"},
		cli.IntFlag{Name: "workers", Value: 0, Usage: "thread pool size (0 = runtime.NumCPU())"},
		cli.IntFlag{Name: "chains", Value: 64, Usage: "MLT chain count (mlt integrator only)"},
		cli.StringFlag{Name: "integrator", Value: "pathtracer", Usage: "pathtracer|mlt"},
		cli.StringFlag{Name: "mutations", Value: "", Usage: "comma-separated MLT mutation kinds, empty = all"},
		cli.BoolFlag{Name: "v", Usage: "enable verbose logging"},
	}
	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("web server exited: %v", err)
		os.Exit(1)
	}
}

func serve(ctx *cli.Context) error {
	if ctx.Bool("v") {
		log.SetLevel(log.Debug)
	}

	integ, err := config.ParseIntegrator(ctx.String("integrator"))
	if err != nil {
		return err
	}
	mutations, err := config.ParseMutations(ctx.String("mutations"))
	if err != nil {
		return err
	}

	width, height := ctx.Int("width"), ctx.Int("height")

	sc, err := scene.NewCornellBox(width, height, 5)
	if err != nil {
		return err
	}

	pool := renderer.NewThreadPool(ctx.Int("workers"))

	var engine renderer.Integrator
	switch integ {
	case config.MLT:
		engine = integrator.NewMLT(width, height, ctx.Int("chains"), uint64(time.Now().UnixNano()), mutations)
	default:
		engine = integrator.NewPathTracer(width, height, uint64(time.Now().UnixNano()))
	}

	driver := server.NewProgressiveDriver(sc, engine, pool, width, height)
	stop := make(chan struct{})
	go driver.Run(stop)
	defer close(stop)
	defer pool.Stop()

	webServer := server.NewServer(ctx.Int("port"), driver)

	logger.Noticef("lumenmlt web server: visit http://localhost:%d to watch the render", ctx.Int("port"))
	return webServer.Start()
}
